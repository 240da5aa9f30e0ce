package preg_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gppreg/preg"
)

func TestParseEmptyStreamIsBadHeader(t *testing.T) {
	p := preg.NewParser()
	_, err := p.Parse(bytes.NewReader(nil))
	require.Error(t, err)
	require.True(t, errors.Is(err, preg.ErrBadHeader))
}

func TestParseHeaderOnly(t *testing.T) {
	p := preg.NewParser()
	wire := []byte{0x50, 0x52, 0x65, 0x67, 0x01, 0x00, 0x00, 0x00}
	file, err := p.Parse(bytes.NewReader(wire))
	require.NoError(t, err)
	require.True(t, file.HasBody)
	require.Empty(t, file.Body)

	// round trip reproduces the exact 8 bytes.
	out, err := p.WriteBytes(file)
	require.NoError(t, err)
	require.Equal(t, wire, out)
}

func TestParseBadSignature(t *testing.T) {
	p := preg.NewParser()
	wire := []byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}
	_, err := p.Parse(bytes.NewReader(wire))
	require.True(t, errors.Is(err, preg.ErrBadHeader))
}

func TestParseBadVersion(t *testing.T) {
	p := preg.NewParser()
	wire := []byte{0x50, 0x52, 0x65, 0x67, 0x02, 0x00, 0x00, 0x00}
	_, err := p.Parse(bytes.NewReader(wire))
	require.True(t, errors.Is(err, preg.ErrBadHeader))
}

// spec.md §8 scenario 3: a single REG_SZ instruction.
func TestParseSingleRegSZ(t *testing.T) {
	wire := []byte{
		0x50, 0x52, 0x65, 0x67, 0x01, 0x00, 0x00, 0x00, // header
		0x5B, 0x00, // [
		0x41, 0x00, 0x00, 0x00, // "A" + NUL16
		0x3B, 0x00, // ;
		0x42, 0x00, 0x00, 0x00, // "B" + NUL16
		0x3B, 0x00, // ;
		0x01, 0x00, 0x00, 0x00, // type REG_SZ
		0x3B, 0x00, // ;
		0x04, 0x00, 0x00, 0x00, // size 4
		0x3B, 0x00, // ;
		0x58, 0x00, 0x00, 0x00, // "X" + NUL16
		0x5D, 0x00, // ]
	}

	p := preg.NewParser()
	file, err := p.Parse(bytes.NewReader(wire))
	require.NoError(t, err)
	require.Len(t, file.Body, 1)

	inst := file.Body[0]
	require.Equal(t, "A", inst.Key)
	require.Equal(t, "B", inst.Value)
	require.Equal(t, preg.RegSZ, inst.Type)
	require.Equal(t, preg.TextValue("X"), inst.Data)

	out, err := p.WriteBytes(file)
	require.NoError(t, err)
	require.Equal(t, wire, out)
}

// spec.md §8 scenario 4: REG_DWORD_LITTLE_ENDIAN.
func TestParseSingleDWordLE(t *testing.T) {
	wire := []byte{
		0x50, 0x52, 0x65, 0x67, 0x01, 0x00, 0x00, 0x00,
		0x5B, 0x00,
		0x4B, 0x00, 0x00, 0x00, // "K"
		0x3B, 0x00,
		0x56, 0x00, 0x00, 0x00, // "V"
		0x3B, 0x00,
		0x04, 0x00, 0x00, 0x00, // type REG_DWORD_LITTLE_ENDIAN
		0x3B, 0x00,
		0x04, 0x00, 0x00, 0x00, // size 4
		0x3B, 0x00,
		0x01, 0x00, 0x00, 0x00, // data 1
		0x5D, 0x00,
	}

	p := preg.NewParser()
	file, err := p.Parse(bytes.NewReader(wire))
	require.NoError(t, err)
	require.Len(t, file.Body, 1)
	require.Equal(t, preg.DWordValue(1), file.Body[0].Data)

	out, err := p.WriteBytes(file)
	require.NoError(t, err)
	require.Equal(t, wire, out)
}

// spec.md §8 scenario 6: key with a separator.
func TestParseKeyWithSeparator(t *testing.T) {
	wire := []byte{
		0x50, 0x52, 0x65, 0x67, 0x01, 0x00, 0x00, 0x00,
		0x5B, 0x00,
		0x41, 0x00, 0x5C, 0x00, 0x42, 0x00, 0x00, 0x00, // "A\B"
		0x3B, 0x00,
		0x00, 0x00, // empty value
		0x3B, 0x00,
		0x01, 0x00, 0x00, 0x00, // REG_SZ
		0x3B, 0x00,
		0x02, 0x00, 0x00, 0x00, // size 2 (empty string)
		0x3B, 0x00,
		0x00, 0x00, // NUL16 only
		0x5D, 0x00,
	}

	p := preg.NewParser()
	file, err := p.Parse(bytes.NewReader(wire))
	require.NoError(t, err)
	require.Equal(t, `A\B`, file.Body[0].Key)
	require.Equal(t, "", file.Body[0].Value)
	require.Equal(t, preg.TextValue(""), file.Body[0].Data)
}

func TestParseRejectsEmptyKeySegment(t *testing.T) {
	wire := []byte{
		0x50, 0x52, 0x65, 0x67, 0x01, 0x00, 0x00, 0x00,
		0x5B, 0x00,
		0x5C, 0x00, 0x41, 0x00, 0x00, 0x00, // "\A" — leading backslash, empty first segment
		0x3B, 0x00,
		0x00, 0x00,
		0x3B, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x3B, 0x00,
		0x02, 0x00, 0x00, 0x00,
		0x3B, 0x00,
		0x00, 0x00,
		0x5D, 0x00,
	}
	p := preg.NewParser()
	_, err := p.Parse(bytes.NewReader(wire))
	require.True(t, errors.Is(err, preg.ErrBadKey))
}

func TestParseRejectsBadTypeTag(t *testing.T) {
	wire := []byte{
		0x50, 0x52, 0x65, 0x67, 0x01, 0x00, 0x00, 0x00,
		0x5B, 0x00,
		0x41, 0x00, 0x00, 0x00,
		0x3B, 0x00,
		0x00, 0x00,
		0x3B, 0x00,
		0x00, 0x00, 0x00, 0x00, // REG_NONE, forbidden on wire
		0x3B, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x3B, 0x00,
		0x5D, 0x00,
	}
	p := preg.NewParser()
	_, err := p.Parse(bytes.NewReader(wire))
	require.True(t, errors.Is(err, preg.ErrBadType))
}

func TestParseRejectsMissingDelimiter(t *testing.T) {
	wire := []byte{
		0x50, 0x52, 0x65, 0x67, 0x01, 0x00, 0x00, 0x00,
		0x28, 0x00, // not '['
	}
	p := preg.NewParser()
	_, err := p.Parse(bytes.NewReader(wire))
	require.True(t, errors.Is(err, preg.ErrBadDelimiter))
}

func TestParseValueLength260Rejected(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x50, 0x52, 0x65, 0x67, 0x01, 0x00, 0x00, 0x00})
	buf.Write([]byte{0x5B, 0x00})                   // [
	buf.Write([]byte{0x41, 0x00, 0x00, 0x00})        // key "A"
	buf.Write([]byte{0x3B, 0x00})                   // ;
	for i := 0; i < 260; i++ {
		buf.Write([]byte{'V', 0x00})
	}
	buf.Write([]byte{0x00, 0x00}) // NUL16 terminator for value
	buf.Write([]byte{0x3B, 0x00})
	buf.Write([]byte{0x01, 0x00, 0x00, 0x00}) // REG_SZ
	buf.Write([]byte{0x3B, 0x00})
	buf.Write([]byte{0x02, 0x00, 0x00, 0x00}) // size 2
	buf.Write([]byte{0x3B, 0x00})
	buf.Write([]byte{0x00, 0x00})
	buf.Write([]byte{0x5D, 0x00})

	p := preg.NewParser()
	_, err := p.Parse(bytes.NewReader(buf.Bytes()))
	require.True(t, errors.Is(err, preg.ErrBadValue))
}
