package preg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Write serializes f to w. A nil f or one with HasBody == false emits no
// bytes at all — the empty document has no header. Every instruction is
// validated before being emitted, so Write never produces a byte stream
// whose (type, data) pairs disagree.
func (p *Parser) Write(w io.Writer, f *PolicyFile) error {
	if f == nil || !f.HasBody {
		return nil
	}
	if err := writeBytes(w, fileSignature[:]); err != nil {
		return err
	}
	if err := writeU32(w, binary.LittleEndian, fileVersion); err != nil {
		return err
	}
	for idx, inst := range f.Body {
		if err := p.writeInstruction(w, inst); err != nil {
			return fmt.Errorf("preg: instruction %d: %w", idx, err)
		}
	}
	return nil
}

// WriteBytes is a convenience wrapper around Write for callers who want
// the serialized document as a byte slice.
func (p *Parser) WriteBytes(f *PolicyFile) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Parser) writeInstruction(w io.Writer, inst PolicyInstruction) error {
	if err := inst.Validate(); err != nil {
		return err
	}

	payload, err := p.encodePayload(inst.Type, inst.Data)
	if err != nil {
		return err
	}

	if err := writeRawU16(w, unitLBR); err != nil {
		return err
	}
	if err := writeKeyPath(w, inst.Key); err != nil {
		return err
	}
	if err := writeRawU16(w, unitSEP); err != nil {
		return err
	}
	if err := writeValueName(w, inst.Value); err != nil {
		return err
	}
	if err := writeRawU16(w, unitSEP); err != nil {
		return err
	}
	if err := writeU32(w, binary.LittleEndian, uint32(inst.Type)); err != nil {
		return err
	}
	if err := writeRawU16(w, unitSEP); err != nil {
		return err
	}
	if err := writeU32(w, binary.LittleEndian, uint32(len(payload))); err != nil {
		return err
	}
	if err := writeRawU16(w, unitSEP); err != nil {
		return err
	}
	if err := writeBytes(w, payload); err != nil {
		return err
	}
	return writeRawU16(w, unitRBR)
}

// writeKeyPath transcodes key, including its embedded '\' separators,
// to UTF-16LE and terminates it with NUL16.
func writeKeyPath(w io.Writer, key string) error {
	segs := strings.Split(key, "\\")
	for i, seg := range segs {
		if i > 0 {
			if err := writeRawU16(w, unitBackslash); err != nil {
				return err
			}
		}
		for j := 0; j < len(seg); j++ {
			if err := writeRawU16(w, uint16(seg[j])); err != nil {
				return err
			}
		}
	}
	return writeRawU16(w, 0)
}

// writeValueName transcodes value to UTF-16LE and terminates it with
// NUL16. An empty value emits just the terminator.
func writeValueName(w io.Writer, value string) error {
	for i := 0; i < len(value); i++ {
		if err := writeRawU16(w, uint16(value[i])); err != nil {
			return err
		}
	}
	return writeRawU16(w, 0)
}

// encodePayload builds the data field for inst into a temporary buffer so
// its byte length is known before the size field is emitted.
func (p *Parser) encodePayload(t PolicyRegType, data PolicyData) ([]byte, error) {
	var buf bytes.Buffer
	switch t {
	case RegSZ, RegExpandSZ, RegLink:
		if _, err := writeString(&buf, string(data.(TextValue)), p.encoder); err != nil {
			return nil, err
		}
	case RegBinary:
		buf.Write([]byte(data.(BinaryValue)))
	case RegDWordLittleEndian, RegDWordBigEndian:
		if err := writeU32(&buf, dwordOrder(t), uint32(data.(DWordValue))); err != nil {
			return nil, err
		}
	case RegQWordLittleEndian, RegQWordBigEndian:
		if err := writeU64(&buf, qwordOrder(t), uint64(data.(QWordValue))); err != nil {
			return nil, err
		}
	case RegMultiSZ, RegResourceList, RegFullResourceDescriptor, RegResourceRequirementsList:
		if _, err := writeStrings(&buf, []string(data.(MultiTextValue)), p.encoder); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("preg: unsupported type tag %d: %w", uint32(t), ErrBadType)
	}
	return buf.Bytes(), nil
}
