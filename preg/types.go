package preg

import "fmt"

// PolicyRegType identifies the wire encoding of a PolicyInstruction's
// data. Only tags 1 through 12 may appear on the wire; RegNone exists so
// the enum is complete for switch statements, but it is never valid on a
// parsed or written instruction.
type PolicyRegType uint32

// Registry value types, matching the tags defined by the PReg grammar.
const (
	RegNone                     PolicyRegType = 0
	RegSZ                       PolicyRegType = 1
	RegExpandSZ                 PolicyRegType = 2
	RegBinary                   PolicyRegType = 3
	RegDWordLittleEndian        PolicyRegType = 4
	RegDWordBigEndian           PolicyRegType = 5
	RegLink                     PolicyRegType = 6
	RegMultiSZ                  PolicyRegType = 7
	RegResourceList             PolicyRegType = 8
	RegFullResourceDescriptor   PolicyRegType = 9
	RegResourceRequirementsList PolicyRegType = 10
	RegQWordLittleEndian        PolicyRegType = 11
	RegQWordBigEndian           PolicyRegType = 12
)

func (t PolicyRegType) String() string {
	switch t {
	case RegNone:
		return "REG_NONE"
	case RegSZ:
		return "REG_SZ"
	case RegExpandSZ:
		return "REG_EXPAND_SZ"
	case RegBinary:
		return "REG_BINARY"
	case RegDWordLittleEndian:
		return "REG_DWORD_LITTLE_ENDIAN"
	case RegDWordBigEndian:
		return "REG_DWORD_BIG_ENDIAN"
	case RegLink:
		return "REG_LINK"
	case RegMultiSZ:
		return "REG_MULTI_SZ"
	case RegResourceList:
		return "REG_RESOURCE_LIST"
	case RegFullResourceDescriptor:
		return "REG_FULL_RESOURCE_DESCRIPTOR"
	case RegResourceRequirementsList:
		return "REG_RESOURCE_REQUIREMENTS_LIST"
	case RegQWordLittleEndian:
		return "REG_QWORD_LITTLE_ENDIAN"
	case RegQWordBigEndian:
		return "REG_QWORD_BIG_ENDIAN"
	default:
		return fmt.Sprintf("PolicyRegType(%d)", uint32(t))
	}
}

// valid reports whether t is a wire-legal type tag (1..12).
func (t PolicyRegType) valid() bool {
	return t >= RegSZ && t <= RegQWordBigEndian
}

// PolicyData is a closed tagged union over the payload shapes a
// PolicyInstruction may carry. The concrete type implementing PolicyData
// IS the tag; there is no separate discriminant to fall out of sync.
type PolicyData interface {
	// Equal reports whether other holds the same concrete type and value.
	Equal(other PolicyData) bool

	isPolicyData()
}

// TextValue is the payload shape for REG_SZ, REG_EXPAND_SZ, and REG_LINK.
type TextValue string

func (TextValue) isPolicyData() {}

// Equal implements PolicyData.
func (v TextValue) Equal(other PolicyData) bool {
	o, ok := other.(TextValue)
	return ok && v == o
}

// MultiTextValue is the payload shape for REG_MULTI_SZ, REG_RESOURCE_LIST,
// REG_FULL_RESOURCE_DESCRIPTOR, and REG_RESOURCE_REQUIREMENTS_LIST.
type MultiTextValue []string

func (MultiTextValue) isPolicyData() {}

// Equal implements PolicyData.
func (v MultiTextValue) Equal(other PolicyData) bool {
	o, ok := other.(MultiTextValue)
	if !ok || len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// BinaryValue is the payload shape for REG_BINARY.
type BinaryValue []byte

func (BinaryValue) isPolicyData() {}

// Equal implements PolicyData.
func (v BinaryValue) Equal(other PolicyData) bool {
	o, ok := other.(BinaryValue)
	if !ok || len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// DWordValue is the payload shape for REG_DWORD_LITTLE_ENDIAN and
// REG_DWORD_BIG_ENDIAN. Endianness is not part of the value; it lives in
// the instruction's PolicyRegType.
type DWordValue uint32

func (DWordValue) isPolicyData() {}

// Equal implements PolicyData.
func (v DWordValue) Equal(other PolicyData) bool {
	o, ok := other.(DWordValue)
	return ok && v == o
}

// QWordValue is the payload shape for REG_QWORD_LITTLE_ENDIAN and
// REG_QWORD_BIG_ENDIAN.
type QWordValue uint64

func (QWordValue) isPolicyData() {}

// Equal implements PolicyData.
func (v QWordValue) Equal(other PolicyData) bool {
	o, ok := other.(QWordValue)
	return ok && v == o
}

// PolicyInstruction is one bracketed PReg record: a registry key path, a
// value name, a type tag, and the data that tag describes.
type PolicyInstruction struct {
	Key   string
	Value string
	Type  PolicyRegType
	Data  PolicyData
}

// Equal reports whether i and other describe the same instruction.
func (i PolicyInstruction) Equal(other PolicyInstruction) bool {
	if i.Key != other.Key || i.Value != other.Value || i.Type != other.Type {
		return false
	}
	if i.Data == nil || other.Data == nil {
		return i.Data == nil && other.Data == nil
	}
	return i.Data.Equal(other.Data)
}

// Validate checks the invariants from the PReg data model: the key path is
// non-empty and segment-well-formed, the value name is in range, and the
// (Type, Data) pair agrees per the type/payload correspondence table.
func (i PolicyInstruction) Validate() error {
	if err := validateKey(i.Key); err != nil {
		return err
	}
	if err := validateValue(i.Value); err != nil {
		return err
	}
	return i.validatePayloadShape()
}

func (i PolicyInstruction) validatePayloadShape() error {
	switch i.Type {
	case RegSZ, RegExpandSZ, RegLink:
		if _, ok := i.Data.(TextValue); !ok {
			return fmt.Errorf("preg: %s requires a text payload, got %T: %w", i.Type, i.Data, ErrBadType)
		}
	case RegBinary:
		if _, ok := i.Data.(BinaryValue); !ok {
			return fmt.Errorf("preg: %s requires a binary payload, got %T: %w", i.Type, i.Data, ErrBadType)
		}
	case RegDWordLittleEndian, RegDWordBigEndian:
		if _, ok := i.Data.(DWordValue); !ok {
			return fmt.Errorf("preg: %s requires a dword payload, got %T: %w", i.Type, i.Data, ErrBadType)
		}
	case RegQWordLittleEndian, RegQWordBigEndian:
		if _, ok := i.Data.(QWordValue); !ok {
			return fmt.Errorf("preg: %s requires a qword payload, got %T: %w", i.Type, i.Data, ErrBadType)
		}
	case RegMultiSZ, RegResourceList, RegFullResourceDescriptor, RegResourceRequirementsList:
		if _, ok := i.Data.(MultiTextValue); !ok {
			return fmt.Errorf("preg: %s requires a multi-text payload, got %T: %w", i.Type, i.Data, ErrBadType)
		}
	default:
		return fmt.Errorf("preg: unsupported type tag %d: %w", uint32(i.Type), ErrBadType)
	}
	return nil
}

// PolicyFile is a PReg document: an optional, ordered sequence of
// instructions. HasBody is false only for the empty document (no header,
// no bytes on the wire); Parse never produces that state, since parsing
// an empty byte stream fails with ErrBadHeader.
type PolicyFile struct {
	HasBody bool
	Body    []PolicyInstruction
}

// NewPolicyFile returns an empty-but-present document: a header with zero
// instructions.
func NewPolicyFile() *PolicyFile {
	return &PolicyFile{HasBody: true}
}

// Equal reports whether f and other describe the same document: same
// presence, same instruction count, same instructions in the same order.
func (f *PolicyFile) Equal(other *PolicyFile) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.HasBody != other.HasBody {
		return false
	}
	if len(f.Body) != len(other.Body) {
		return false
	}
	for i := range f.Body {
		if !f.Body[i].Equal(other.Body[i]) {
			return false
		}
	}
	return true
}

// Validate checks every instruction in the document.
func (f *PolicyFile) Validate() error {
	if f == nil || !f.HasBody {
		return nil
	}
	for idx, inst := range f.Body {
		if err := inst.Validate(); err != nil {
			return fmt.Errorf("preg: instruction %d: %w", idx, err)
		}
	}
	return nil
}
