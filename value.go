package dbus

// DBusValue is a tagged union holding one decoded D-Bus value. Exactly one
// value field is meaningful, selected by Type; a variant additionally
// records its inner signature in Sig.
type DBusValue struct {
	Type DBusType

	Byte    byte
	Bool    bool
	Int16   int16
	Uint16  uint16
	Int32   int32
	Uint32  uint32
	Int64   int64
	Uint64  uint64
	Float64 float64
	UnixFD  uint32
	String  string
	Path    ObjectPath
	Sig     Signature

	// Array holds decoded ARRAY elements, Struct holds STRUCT members, and
	// DictEntry holds a DICT_ENTRY's [key, value] pair.
	Array     []DBusValue
	Struct    []DBusValue
	DictEntry []DBusValue

	// Variant points to the decoded inner value when Type is TypeVariant.
	// A pointer is used to break the type's self-reference.
	Variant *DBusValue
}

// DecodeValue decodes a single value tree from r according to elems, a
// vectorized signature produced by Parse, returning the elems consumed
// past the leading complete type. Callers walking a multi-type Signature
// call DecodeValue repeatedly, advancing through elems by the count each
// call reports.
func DecodeValue(r *Reader, elems []Elem) (DBusValue, int, error) {
	if len(elems) == 0 {
		return DBusValue{}, 0, ErrEmptySignature
	}
	e := elems[0]

	switch e.Type {
	case TypeByte:
		v, err := r.Uint8()
		return DBusValue{Type: e.Type, Byte: v}, 1, err
	case TypeBoolean:
		v, err := r.Bool()
		return DBusValue{Type: e.Type, Bool: v}, 1, err
	case TypeInt16:
		v, err := r.Int16()
		return DBusValue{Type: e.Type, Int16: v}, 1, err
	case TypeUint16:
		v, err := r.Uint16()
		return DBusValue{Type: e.Type, Uint16: v}, 1, err
	case TypeInt32:
		v, err := r.Int32()
		return DBusValue{Type: e.Type, Int32: v}, 1, err
	case TypeUint32:
		v, err := r.Uint32()
		return DBusValue{Type: e.Type, Uint32: v}, 1, err
	case TypeInt64:
		v, err := r.Int64()
		return DBusValue{Type: e.Type, Int64: v}, 1, err
	case TypeUint64:
		v, err := r.Uint64()
		return DBusValue{Type: e.Type, Uint64: v}, 1, err
	case TypeDouble:
		v, err := r.Float64()
		return DBusValue{Type: e.Type, Float64: v}, 1, err
	case TypeUnixFD:
		v, err := r.UnixFD()
		return DBusValue{Type: e.Type, UnixFD: v}, 1, err
	case TypeString:
		v, err := r.ReadString(TypeString)
		return DBusValue{Type: e.Type, String: v}, 1, err
	case TypeObjectPath:
		v, err := r.ReadString(TypeObjectPath)
		return DBusValue{Type: e.Type, Path: ObjectPath(v)}, 1, err
	case TypeSignature:
		v, err := r.ReadSignatureBytes()
		if err != nil {
			return DBusValue{}, 1, err
		}
		sig, err := Parse(v)
		return DBusValue{Type: e.Type, Sig: sig}, 1, err
	case TypeVariant:
		return decodeVariant(r)
	case TypeStruct:
		return decodeStruct(r, elems)
	case TypeArray:
		return decodeArray(r, elems)
	default:
		return DBusValue{}, 1, ErrUnknownTypeCode
	}
}

func decodeVariant(r *Reader) (DBusValue, int, error) {
	sig, err := r.ReadVariant()
	if err != nil {
		return DBusValue{}, 1, err
	}
	inner, _, err := DecodeValue(r, sig.elems)
	if err != nil {
		return DBusValue{}, 1, err
	}
	return DBusValue{Type: TypeVariant, Sig: sig, Variant: &inner}, 1, nil
}

func decodeStruct(r *Reader, elems []Elem) (DBusValue, int, error) {
	n := elems[1].N
	if err := r.AlignTo(alignment(TypeStruct)); err != nil {
		return DBusValue{}, 0, err
	}
	members := make([]DBusValue, 0, n)
	i := 2
	for c := 0; c < n; c++ {
		v, consumed, err := DecodeValue(r, elems[i:])
		if err != nil {
			return DBusValue{}, 0, err
		}
		members = append(members, v)
		i += consumed
	}
	return DBusValue{Type: TypeStruct, Struct: members}, i, nil
}

func decodeDictEntry(r *Reader, elems []Elem) (DBusValue, int, error) {
	if err := r.AlignTo(alignment(TypeDictEntry)); err != nil {
		return DBusValue{}, 0, err
	}
	i := 2
	key, consumed, err := DecodeValue(r, elems[i:])
	if err != nil {
		return DBusValue{}, 0, err
	}
	i += consumed
	val, consumed, err := DecodeValue(r, elems[i:])
	if err != nil {
		return DBusValue{}, 0, err
	}
	i += consumed
	return DBusValue{Type: TypeDictEntry, DictEntry: []DBusValue{key, val}}, i, nil
}

func decodeArray(r *Reader, elems []Elem) (DBusValue, int, error) {
	elemElems := elems[1:]
	elemAlign := alignment(elemElems[0].Type)
	child, err := r.ReadArrayFrame(elemAlign)
	if err != nil {
		return DBusValue{}, 0, err
	}

	var values []DBusValue
	for child.Remaining() > 0 {
		var (
			v        DBusValue
			consumed int
		)
		if elemElems[0].Type == TypeDictEntry {
			v, consumed, err = decodeDictEntry(child, elemElems)
		} else {
			v, consumed, err = DecodeValue(child, elemElems)
		}
		if err != nil {
			return DBusValue{}, 0, err
		}
		values = append(values, v)
		_ = consumed
	}

	i := elemTypeLen(elemElems) + 1
	return DBusValue{Type: TypeArray, Array: values}, i, nil
}

// elemTypeLen returns the number of Elem slots a single complete type
// occupies, used to advance past an ARRAY's element type without decoding.
func elemTypeLen(elems []Elem) int {
	switch elems[0].Type {
	case TypeStruct:
		n := elems[1].N
		i := 2
		for c := 0; c < n; c++ {
			i += elemTypeLen(elems[i:])
		}
		return i
	case TypeDictEntry:
		i := 2
		i += elemTypeLen(elems[i:])
		i += elemTypeLen(elems[i:])
		return i
	case TypeArray:
		return 1 + elemTypeLen(elems[1:])
	default:
		return 1
	}
}
