// Package preg reads and writes the Windows Group Policy Registry
// Preferences file format (PReg, also called POL).
//
// A PReg file is a flat, byte-exact serialization of registry-style policy
// instructions. Each instruction carries a registry key path, a value
// name, a typed value, and associated data. Parse consumes a byte stream
// and produces a PolicyFile; Write serializes a PolicyFile back to bytes
// such that a round trip on any well-formed input reproduces the original
// bytes exactly.
//
// # Usage
//
//	p := preg.NewParser()
//	file, err := p.Parse(r)
//	if err != nil {
//	    return err
//	}
//	for _, inst := range file.Body {
//	    fmt.Println(inst.Key, inst.Value, inst.Type)
//	}
//	err = p.Write(w, file)
//
// # Scope
//
// This package implements the PReg wire grammar and its in-memory data
// model only. It has no knowledge of registry semantics (merging,
// precedence, inheritance), performs no on-disk file management, and does
// not validate policy content beyond what the PReg grammar itself
// prescribes. A single Parser is not safe for concurrent use: parse and
// write calls against the same Parser must not overlap.
package preg
