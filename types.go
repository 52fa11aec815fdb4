package dbus

// DBusType is a tag drawn from the closed set of D-Bus type markers used in
// a vectorized Signature. The LENGTH variants carry a child count and only
// ever appear inside a parsed Signature, never as a signature string byte.
type DBusType int

const (
	TypeByte DBusType = iota
	TypeBoolean
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeDouble
	TypeUnixFD
	TypeString
	TypeObjectPath
	TypeSignature
	TypeVariant
	TypeStruct
	TypeStructLength
	TypeArray
	TypeDictEntry
	TypeDictEntryLength
)

var typeNames = map[DBusType]string{
	TypeByte:            "BYTE",
	TypeBoolean:         "BOOLEAN",
	TypeInt16:           "INT16",
	TypeUint16:          "UINT16",
	TypeInt32:           "INT32",
	TypeUint32:          "UINT32",
	TypeInt64:           "INT64",
	TypeUint64:          "UINT64",
	TypeDouble:          "DOUBLE",
	TypeUnixFD:          "UNIX_FD",
	TypeString:          "STRING",
	TypeObjectPath:      "OBJECT_PATH",
	TypeSignature:       "SIGNATURE",
	TypeVariant:         "VARIANT",
	TypeStruct:          "STRUCT",
	TypeStructLength:    "STRUCT_LENGTH",
	TypeArray:           "ARRAY",
	TypeDictEntry:       "DICT_ENTRY",
	TypeDictEntryLength: "DICT_ENTRY_LENGTH",
}

func (t DBusType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "INVALID"
}

// typeCode maps a signature-string byte to its DBusType tag. Container
// opener/closer bytes ('(', ')', '{', '}', 'a') are handled separately by
// the parser and don't appear here.
var typeCode = map[byte]DBusType{
	'y': TypeByte,
	'b': TypeBoolean,
	'n': TypeInt16,
	'q': TypeUint16,
	'i': TypeInt32,
	'u': TypeUint32,
	'x': TypeInt64,
	't': TypeUint64,
	'd': TypeDouble,
	'h': TypeUnixFD,
	's': TypeString,
	'o': TypeObjectPath,
	'g': TypeSignature,
	'v': TypeVariant,
}

// alignment is the natural alignment, in bytes, of a fixed-size or
// length-prefixed type. STRUCT and DICT_ENTRY always align to 8; ARRAY's
// length prefix aligns to 4 (the element alignment is applied separately
// once the element type is known).
func alignment(t DBusType) int {
	switch t {
	case TypeByte, TypeSignature:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeBoolean, TypeInt32, TypeUint32, TypeUnixFD, TypeString, TypeObjectPath, TypeArray:
		return 4
	case TypeInt64, TypeUint64, TypeDouble, TypeStruct, TypeDictEntry:
		return 8
	case TypeVariant:
		return 1
	default:
		return 1
	}
}

// fixedSize returns the size in bytes of a fixed-width scalar type, or 0 if
// the type is not fixed-width (strings, containers, variants).
func fixedSize(t DBusType) int {
	switch t {
	case TypeByte:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeBoolean, TypeInt32, TypeUint32, TypeUnixFD:
		return 4
	case TypeInt64, TypeUint64, TypeDouble:
		return 8
	default:
		return 0
	}
}

// isBasic reports whether t is a basic (non-container, non-variant) type,
// as required for dict-entry keys.
func isBasic(t DBusType) bool {
	switch t {
	case TypeByte, TypeBoolean, TypeInt16, TypeUint16, TypeInt32, TypeUint32,
		TypeInt64, TypeUint64, TypeDouble, TypeUnixFD, TypeString, TypeObjectPath, TypeSignature:
		return true
	default:
		return false
	}
}

// ObjectPath is a D-Bus object path, e.g. "/org/freedesktop/DBus".
type ObjectPath string

// IsValid reports whether the path conforms to the D-Bus object path
// grammar: non-empty, starts with '/', elements drawn from
// [A-Za-z0-9_], no empty elements, and no trailing '/' unless the whole
// path is "/".
func (p ObjectPath) IsValid() bool {
	return IsValidObjectPath(string(p))
}

// Variant is a self-describing value carrying its own signature inline.
// Signature is the single complete type of Value.
type Variant struct {
	Signature Signature
	Value     any
}
