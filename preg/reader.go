package preg

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Wire punctuation. All fixed punctuation is one UTF-16LE code unit.
const (
	unitLBR       uint16 = '['
	unitRBR       uint16 = ']'
	unitSEP       uint16 = ';'
	unitBackslash uint16 = '\\'
)

var fileSignature = [4]byte{'P', 'R', 'e', 'g'}

const fileVersion uint32 = 1

// Parse reads a PReg byte stream and returns the document it describes,
// or a structured error naming which grammar rule was violated. On any
// failure the returned PolicyFile is nil and must not be treated as
// partially valid.
func (p *Parser) Parse(r io.Reader) (*PolicyFile, error) {
	br := bufio.NewReader(r)

	if err := readHeader(br); err != nil {
		return nil, err
	}

	file := NewPolicyFile()
	for {
		_, err := br.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, shortReadErr("peeking next instruction", err)
		}
		inst, err := p.readInstruction(br)
		if err != nil {
			return nil, err
		}
		file.Body = append(file.Body, inst)
	}
	return file, nil
}

// ParseBytes is a convenience wrapper around Parse for callers already
// holding the whole file in memory.
func (p *Parser) ParseBytes(b []byte) (*PolicyFile, error) {
	return p.Parse(bytes.NewReader(b))
}

func readHeader(r io.Reader) error {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return fmt.Errorf("preg: reading file header: %w", ErrBadHeader)
	}
	if [4]byte(buf[:4]) != fileSignature {
		return fmt.Errorf("preg: signature %q, want %q: %w", buf[:4], fileSignature[:], ErrBadHeader)
	}
	if binary.LittleEndian.Uint32(buf[4:]) != fileVersion {
		return fmt.Errorf("preg: version word %#x, want %#x: %w", binary.LittleEndian.Uint32(buf[4:]), fileVersion, ErrBadHeader)
	}
	return nil
}

// readInstruction reads one bracketed [key;value;type;size;data] record.
func (p *Parser) readInstruction(r io.Reader) (PolicyInstruction, error) {
	if err := expectUnit(r, unitLBR, "'['"); err != nil {
		return PolicyInstruction{}, err
	}

	key, err := readKeyPath(r)
	if err != nil {
		return PolicyInstruction{}, err
	}
	if err := expectUnit(r, unitSEP, "';'"); err != nil {
		return PolicyInstruction{}, err
	}

	value, err := readValueName(r)
	if err != nil {
		return PolicyInstruction{}, err
	}
	if err := expectUnit(r, unitSEP, "';'"); err != nil {
		return PolicyInstruction{}, err
	}

	typeTag, err := readU32(r, binary.LittleEndian)
	if err != nil {
		return PolicyInstruction{}, err
	}
	regType := PolicyRegType(typeTag)
	if !regType.valid() {
		return PolicyInstruction{}, fmt.Errorf("preg: type tag %d outside {1..12}: %w", typeTag, ErrBadType)
	}
	if err := expectUnit(r, unitSEP, "';'"); err != nil {
		return PolicyInstruction{}, err
	}

	size, err := readU32(r, binary.LittleEndian)
	if err != nil {
		return PolicyInstruction{}, err
	}
	if err := expectUnit(r, unitSEP, "';'"); err != nil {
		return PolicyInstruction{}, err
	}

	data, err := p.readPayload(r, regType, int(size))
	if err != nil {
		return PolicyInstruction{}, err
	}

	if err := expectUnit(r, unitRBR, "']'"); err != nil {
		return PolicyInstruction{}, err
	}

	return PolicyInstruction{Key: key, Value: value, Type: regType, Data: data}, nil
}

// readKeyPath reads segments separated by a backslash code unit,
// terminated by the first NUL16. An empty segment — including a leading
// or doubled backslash — is ErrBadKey.
func readKeyPath(r io.Reader) (string, error) {
	buf := make([]byte, 0, 32)
	segLen := 0
	for {
		u, err := readRawU16(r)
		if err != nil {
			return "", err
		}
		switch {
		case u == 0:
			if segLen == 0 {
				return "", fmt.Errorf("preg: key path has an empty segment: %w", ErrBadKey)
			}
			return string(buf), nil
		case u == unitBackslash:
			if segLen == 0 {
				return "", fmt.Errorf("preg: key path has an empty segment: %w", ErrBadKey)
			}
			buf = append(buf, '\\')
			segLen = 0
		case u < keyMin || u > keyMax:
			return "", fmt.Errorf("preg: illegal key character %#x: %w", u, ErrBadKey)
		default:
			buf = append(buf, byte(u))
			segLen++
		}
	}
}

// readValueName reads characters up to the first NUL16, capping at 259
// code units. The value may be empty.
func readValueName(r io.Reader) (string, error) {
	buf := make([]byte, 0, 16)
	for {
		u, err := readRawU16(r)
		if err != nil {
			return "", err
		}
		if u == 0 {
			return string(buf), nil
		}
		if u < keyMin || u > keyMax {
			return "", fmt.Errorf("preg: illegal value character %#x: %w", u, ErrBadValue)
		}
		if len(buf) >= maxValueLen {
			return "", fmt.Errorf("preg: value name exceeds %d characters: %w", maxValueLen, ErrBadValue)
		}
		buf = append(buf, byte(u))
	}
}

// readPayload interprets exactly size bytes per the type/payload
// correspondence table (spec §4.2.4).
func (p *Parser) readPayload(r io.Reader, t PolicyRegType, size int) (PolicyData, error) {
	switch t {
	case RegSZ, RegExpandSZ, RegLink:
		if size < 2 || size%2 != 0 {
			return nil, fmt.Errorf("preg: %s payload size %d must be even and >= 2: %w", t, size, ErrBadSize)
		}
		s, err := readString(r, size, p.decoder)
		if err != nil {
			return nil, err
		}
		return TextValue(s), nil

	case RegBinary:
		b, err := readBytes(r, size)
		if err != nil {
			return nil, err
		}
		return BinaryValue(b), nil

	case RegDWordLittleEndian, RegDWordBigEndian:
		if size != 4 {
			return nil, fmt.Errorf("preg: %s payload size %d, want 4: %w", t, size, ErrBadSize)
		}
		v, err := readU32(r, dwordOrder(t))
		if err != nil {
			return nil, err
		}
		return DWordValue(v), nil

	case RegQWordLittleEndian, RegQWordBigEndian:
		if size != 8 {
			return nil, fmt.Errorf("preg: %s payload size %d, want 8: %w", t, size, ErrBadSize)
		}
		v, err := readU64(r, qwordOrder(t))
		if err != nil {
			return nil, err
		}
		return QWordValue(v), nil

	case RegMultiSZ, RegResourceList, RegFullResourceDescriptor, RegResourceRequirementsList:
		if size < 2 || size%2 != 0 {
			return nil, fmt.Errorf("preg: %s payload size %d must be even and >= 2: %w", t, size, ErrBadSize)
		}
		list, err := readStrings(r, size, p.decoder)
		if err != nil {
			return nil, err
		}
		return MultiTextValue(list), nil

	default:
		// unreachable: t.valid() was already checked by the caller.
		return nil, fmt.Errorf("preg: unsupported type tag %d: %w", uint32(t), ErrBadType)
	}
}

func dwordOrder(t PolicyRegType) binary.ByteOrder {
	if t == RegDWordBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func qwordOrder(t PolicyRegType) binary.ByteOrder {
	if t == RegQWordBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// expectUnit reads one code unit and fails with ErrBadDelimiter if it
// does not match want.
func expectUnit(r io.Reader, want uint16, label string) error {
	got, err := readRawU16(r)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("preg: expected %s, got %#x: %w", label, got, ErrBadDelimiter)
	}
	return nil
}
