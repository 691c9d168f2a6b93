package classfile

import "fmt"

// ConstantType is the tag byte of a constant-pool entry.
type ConstantType uint8

const (
	ConstantUTF8               ConstantType = 1
	ConstantInteger            ConstantType = 3
	ConstantFloat              ConstantType = 4
	ConstantLong               ConstantType = 5
	ConstantDouble             ConstantType = 6
	ConstantClass              ConstantType = 7
	ConstantString             ConstantType = 8
	ConstantFieldRef           ConstantType = 9
	ConstantMethodRef          ConstantType = 10
	ConstantInterfaceMethodRef ConstantType = 11
	ConstantNameAndType        ConstantType = 12
	ConstantMethodHandle       ConstantType = 15
	ConstantMethodType         ConstantType = 16
	ConstantDynamic            ConstantType = 17
	ConstantInvokeDynamic      ConstantType = 18
	ConstantModule             ConstantType = 19
	ConstantPackage            ConstantType = 20
)

var constantTypeNames = map[ConstantType]string{
	ConstantUTF8:               "Utf8",
	ConstantInteger:            "Integer",
	ConstantFloat:              "Float",
	ConstantLong:               "Long",
	ConstantDouble:             "Double",
	ConstantClass:              "Class",
	ConstantString:             "String",
	ConstantFieldRef:           "Fieldref",
	ConstantMethodRef:          "Methodref",
	ConstantInterfaceMethodRef: "InterfaceMethodref",
	ConstantNameAndType:        "NameAndType",
	ConstantMethodHandle:       "MethodHandle",
	ConstantMethodType:         "MethodType",
	ConstantDynamic:            "Dynamic",
	ConstantInvokeDynamic:      "InvokeDynamic",
	ConstantModule:             "Module",
	ConstantPackage:            "Package",
}

func (t ConstantType) String() string {
	if name, ok := constantTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ConstantType(%d)", uint8(t))
}

// Wide reports whether the constant occupies two pool slots.
func (t ConstantType) Wide() bool {
	return t == ConstantLong || t == ConstantDouble
}

// Constant is a single decoded constant-pool entry.
type Constant struct {
	Index int          // JVM pool index (1-based)
	Type  ConstantType // tag
	// Value holds the text of Utf8 entries and the resolved text of String,
	// Class, MethodType, Module and Package entries. Numeric entries carry
	// their decimal rendering.
	Value string
	Refs  []uint16 // raw pool references, in declaration order
}

// Text returns the literal text of the constant and whether it has one.
func (c Constant) Text() (string, bool) {
	switch c.Type {
	case ConstantUTF8, ConstantString, ConstantClass, ConstantMethodType, ConstantModule, ConstantPackage:
		return c.Value, true
	default:
		return "", false
	}
}
