package preg

import "errors"

// Error kinds returned by Parse and Write. Callers should match against
// these with errors.Is; the concrete error returned always wraps one of
// them with positional context via fmt.Errorf's %w verb.
var (
	// ErrShortRead indicates the underlying stream ended before a
	// complete field could be read.
	ErrShortRead = errors.New("preg: unexpected end of stream")

	// ErrWriteError indicates the underlying stream rejected a write.
	ErrWriteError = errors.New("preg: write failed")

	// ErrBadHeader indicates the 8-byte file header did not match the
	// required "PReg" signature and version-1 word.
	ErrBadHeader = errors.New("preg: bad file header")

	// ErrBadDelimiter indicates an expected bracket or semicolon
	// delimiter was not present at the expected position.
	ErrBadDelimiter = errors.New("preg: bad delimiter")

	// ErrBadKey indicates an empty key segment, an empty key path, or a
	// character outside the permitted key-segment class.
	ErrBadKey = errors.New("preg: bad key path")

	// ErrBadValue indicates a value name longer than 259 code units or
	// containing a character outside [0x20,0x7E].
	ErrBadValue = errors.New("preg: bad value name")

	// ErrBadType indicates a type tag outside {1..12}, including the
	// forbidden REG_NONE (0) tag. Validate and Write also return it when
	// an instruction's Data payload shape does not match its Type.
	ErrBadType = errors.New("preg: bad registry type tag")

	// ErrBadSize indicates a declared data size inconsistent with the
	// type's fixed width, or an odd size on a text/list payload.
	ErrBadSize = errors.New("preg: bad data size")

	// ErrEncoding indicates a UTF-16LE/UTF-8 transcoding failure, or a
	// text/list payload missing its required trailing NUL16.
	ErrEncoding = errors.New("preg: utf-16 encoding error")
)
