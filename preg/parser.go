package preg

import "golang.org/x/text/encoding"

// Parser is a PReg codec instance. It owns one UTF-16LE decoder and one
// UTF-16LE encoder for its lifetime, reused across every Parse and Write
// call the way spec.md's design notes call for: these contexts are not
// thread-safe, so a single Parser must not be used for overlapping parse
// or write calls, and must not be shared between goroutines without
// external synchronization.
type Parser struct {
	decoder *encoding.Decoder
	encoder *encoding.Encoder
}

// NewParser constructs a codec instance. Its lifetime is bounded by the
// caller; there is nothing to close or release.
func NewParser() *Parser {
	return &Parser{
		decoder: utf16LE.NewDecoder(),
		encoder: utf16LE.NewEncoder(),
	}
}
