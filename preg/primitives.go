package preg

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// utf16LE is the transcoding used to build per-Parser decoder/encoder
// contexts (see Parser in parser.go). IgnoreBOM means a leading U+FEFF is
// treated as ordinary data, not stripped: the PReg grammar has no notion
// of a byte-order mark.
var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// readRawU16 reads one little-endian uint16, used for wire punctuation
// (brackets, semicolons, backslashes) and for the individual code units
// of key paths and value names.
func readRawU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, shortReadErr("reading u16", err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// writeRawU16 writes one little-endian uint16.
func writeRawU16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return writeErr("writing u16", err)
	}
	return nil
}

// readU32 reads a uint32 under the given byte order.
func readU32(r io.Reader, order binary.ByteOrder) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, shortReadErr("reading u32", err)
	}
	return order.Uint32(buf[:]), nil
}

// writeU32 writes a uint32 under the given byte order.
func writeU32(w io.Writer, order binary.ByteOrder, v uint32) error {
	var buf [4]byte
	order.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return writeErr("writing u32", err)
	}
	return nil
}

// readU64 reads a uint64 under the given byte order.
func readU64(r io.Reader, order binary.ByteOrder) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, shortReadErr("reading u64", err)
	}
	return order.Uint64(buf[:]), nil
}

// writeU64 writes a uint64 under the given byte order.
func writeU64(w io.Writer, order binary.ByteOrder, v uint64) error {
	var buf [8]byte
	order.PutUint64(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return writeErr("writing u64", err)
	}
	return nil
}

// readBytes reads exactly n raw bytes.
func readBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, shortReadErr(fmt.Sprintf("reading %d bytes", n), err)
	}
	return buf, nil
}

// writeBytes writes b verbatim.
func writeBytes(w io.Writer, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if _, err := w.Write(b); err != nil {
		return writeErr(fmt.Sprintf("writing %d bytes", len(b)), err)
	}
	return nil
}

// readString reads exactly sizeBytes bytes, interprets them as a
// UTF-16LE sequence whose final code unit must be U+0000, strips the
// terminator, and transcodes the remainder to UTF-8. sizeBytes == 2
// yields the empty string.
func readString(r io.Reader, sizeBytes int, dec *encoding.Decoder) (string, error) {
	if sizeBytes < 2 || sizeBytes%2 != 0 {
		return "", fmt.Errorf("preg: text payload size %d is not even and >= 2: %w", sizeBytes, ErrEncoding)
	}
	buf, err := readBytes(r, sizeBytes)
	if err != nil {
		return "", err
	}
	if buf[len(buf)-2] != 0 || buf[len(buf)-1] != 0 {
		return "", fmt.Errorf("preg: text payload missing trailing NUL16: %w", ErrEncoding)
	}
	payload := buf[:len(buf)-2]
	if len(payload) == 0 {
		return "", nil
	}
	out, err := dec.Bytes(payload)
	if err != nil {
		return "", fmt.Errorf("preg: transcoding utf-16le payload: %w", ErrEncoding)
	}
	return string(out), nil
}

// writeString transcodes text from UTF-8 to UTF-16LE, appends a U+0000
// terminator, and emits it. It returns the total byte count written,
// always even and at least 2.
func writeString(w io.Writer, text string, enc *encoding.Encoder) (int, error) {
	encoded, err := enc.Bytes([]byte(text))
	if err != nil {
		return 0, fmt.Errorf("preg: transcoding %q to utf-16le: %w", text, ErrEncoding)
	}
	if err := writeBytes(w, encoded); err != nil {
		return 0, err
	}
	if err := writeRawU16(w, 0); err != nil {
		return len(encoded), err
	}
	return len(encoded) + 2, nil
}

// readStrings reads exactly sizeBytes bytes as UTF-16LE, splits on
// U+0000 code units, and transcodes each piece to UTF-8. The block must
// end with a trailing U+0000 beyond the last element's own terminator
// (an empty block, sizeBytes == 2, denotes the empty list).
func readStrings(r io.Reader, sizeBytes int, dec *encoding.Decoder) ([]string, error) {
	if sizeBytes < 2 || sizeBytes%2 != 0 {
		return nil, fmt.Errorf("preg: list payload size %d is not even and >= 2: %w", sizeBytes, ErrEncoding)
	}
	buf, err := readBytes(r, sizeBytes)
	if err != nil {
		return nil, err
	}
	if buf[len(buf)-2] != 0 || buf[len(buf)-1] != 0 {
		return nil, fmt.Errorf("preg: list payload missing trailing NUL16: %w", ErrEncoding)
	}
	decoded, err := dec.Bytes(buf)
	if err != nil {
		return nil, fmt.Errorf("preg: transcoding utf-16le list payload: %w", ErrEncoding)
	}
	parts := strings.Split(string(decoded), "\x00")
	if len(parts) < 2 || parts[len(parts)-1] != "" || parts[len(parts)-2] != "" {
		return nil, fmt.Errorf("preg: list payload missing extra trailing NUL16: %w", ErrEncoding)
	}
	elems := parts[:len(parts)-2]
	if len(elems) == 0 {
		return []string{}, nil
	}
	return elems, nil
}

// writeStrings writes each element of list via writeString, then emits
// one additional U+0000 terminator closing the block. An empty list
// emits only that single terminator.
func writeStrings(w io.Writer, list []string, enc *encoding.Encoder) (int, error) {
	total := 0
	for _, s := range list {
		n, err := writeString(w, s, enc)
		total += n
		if err != nil {
			return total, err
		}
	}
	if err := writeRawU16(w, 0); err != nil {
		return total, err
	}
	return total + 2, nil
}

func shortReadErr(context string, err error) error {
	return fmt.Errorf("preg: %s: %w (%v)", context, ErrShortRead, err)
}

func writeErr(context string, err error) error {
	return fmt.Errorf("preg: %s: %w (%v)", context, ErrWriteError, err)
}
