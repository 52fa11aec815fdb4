package dbus

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestReader_primitivesLittleEndian(t *testing.T) {
	buf := []byte{
		0x2a,             // Uint8
		0x00, 0x00, 0x00, // padding to 4
		0x01, 0x00, 0x00, 0x00, // Uint32 = 1 (Bool true)
		0x34, 0x12, // Uint16 = 0x1234
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // padding to 16
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // Uint64 = 1
	}
	r := NewReader(buf, binary.LittleEndian, NewConfig())

	b, err := r.Uint8()
	if err != nil || b != 0x2a {
		t.Fatalf("Uint8() = %v, %v", b, err)
	}
	v, err := r.Bool()
	if err != nil || !v {
		t.Fatalf("Bool() = %v, %v", v, err)
	}
	u16, err := r.Uint16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("Uint16() = %v, %v", u16, err)
	}
	u64, err := r.Uint64()
	if err != nil || u64 != 1 {
		t.Fatalf("Uint64() = %v, %v", u64, err)
	}
	if r.Pos() != len(buf) {
		t.Errorf("Pos() = %d, want %d", r.Pos(), len(buf))
	}
}

func TestReader_primitiveSequenceWithPadding(t *testing.T) {
	buf := []byte{0x12, 0x00, 0x34, 0x56, 0x78}
	r := NewReader(buf, binary.LittleEndian, NewConfig())

	b, err := r.Uint8()
	if err != nil || b != 0x12 {
		t.Fatalf("Uint8() = %#x, %v", b, err)
	}
	i16, err := r.Int16()
	if err != nil || i16 != 0x5634 {
		t.Fatalf("Int16() = %#x, %v, want 0x5634", i16, err)
	}
	b, err = r.Uint8()
	if err != nil || b != 0x78 {
		t.Fatalf("Uint8() = %#x, %v", b, err)
	}
	if r.Pos() != 5 {
		t.Errorf("Pos() = %d, want 5", r.Pos())
	}
}

func TestReader_variantUint64BigEndian(t *testing.T) {
	buf := []byte{
		0x01, 0x74, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
	}
	r := NewReader(buf, binary.BigEndian, NewConfig())
	sig, err := r.ReadVariant()
	if err != nil {
		t.Fatal(err)
	}
	v, _, err := DecodeValue(r, sig.Elems())
	if err != nil {
		t.Fatal(err)
	}
	if v.Uint64 != 5 {
		t.Errorf("Uint64 = %d, want 5", v.Uint64)
	}
	if r.Pos() != 16 {
		t.Errorf("Pos() = %d, want 16", r.Pos())
	}
}

func TestReader_bigEndian(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x01, 0x00}
	r := NewReader(buf, binary.BigEndian, NewConfig())
	v, err := r.Uint32()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x100 {
		t.Errorf("Uint32() = %#x, want 0x100", v)
	}
}

func TestReader_string(t *testing.T) {
	buf := []byte{5, 0, 0, 0, 'h', 'e', 'l', 'l', 'o', 0}
	r := NewReader(buf, binary.LittleEndian, NewConfig())
	s, err := r.ReadString(TypeString)
	if err != nil {
		t.Fatal(err)
	}
	if s != "hello" {
		t.Errorf("ReadString() = %q, want %q", s, "hello")
	}
}

func TestReader_stringMissingNul(t *testing.T) {
	buf := []byte{1, 0, 0, 0, 'h', 'i'}
	r := NewReader(buf, binary.LittleEndian, NewConfig())
	_, err := r.ReadString(TypeString)
	if !errors.Is(err, ErrMissingNul) {
		t.Errorf("ReadString() = %v, want ErrMissingNul", err)
	}
}

func TestReader_signature(t *testing.T) {
	buf := []byte{1, 's', 0}
	r := NewReader(buf, binary.LittleEndian, NewConfig())
	s, err := r.ReadSignatureBytes()
	if err != nil {
		t.Fatal(err)
	}
	if s != "s" {
		t.Errorf("ReadSignatureBytes() = %q, want %q", s, "s")
	}
}

func TestReader_endOfStream(t *testing.T) {
	r := NewReader(nil, binary.LittleEndian, NewConfig())
	if _, err := r.Uint8(); err != ErrEndOfStream {
		t.Errorf("Uint8() on empty buffer = %v, want ErrEndOfStream", err)
	}
}

func TestReader_invalidAlignment(t *testing.T) {
	r := NewReader([]byte{1, 2, 3}, binary.LittleEndian, NewConfig())
	if _, err := r.Uint32(); err != ErrInvalidAlignment {
		t.Errorf("Uint32() on short buffer = %v, want ErrInvalidAlignment", err)
	}
}

func TestReader_strictAlignmentRejectsNonZeroPadding(t *testing.T) {
	buf := []byte{1, 1, 1, 1, 0, 0, 0, 0}
	cfg := NewConfig(WithAlignmentPolicy(StrictAlignment))
	r := NewReader(buf, binary.LittleEndian, cfg)
	if _, err := r.Uint8(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Uint32(); err != ErrNonZeroPadding {
		t.Errorf("Uint32() with dirty padding = %v, want ErrNonZeroPadding", err)
	}
}

func TestReader_lenientAlignmentAcceptsNonZeroPadding(t *testing.T) {
	buf := []byte{1, 1, 1, 1, 0, 0, 0, 0}
	r := NewReader(buf, binary.LittleEndian, NewConfig())
	if _, err := r.Uint8(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Uint32(); err != nil {
		t.Errorf("Uint32() with dirty padding under lenient policy = %v, want nil", err)
	}
}

func TestReader_invalidBoolean(t *testing.T) {
	buf := []byte{2, 0, 0, 0}
	r := NewReader(buf, binary.LittleEndian, NewConfig())
	if _, err := r.Bool(); err != ErrInvalidBoolean {
		t.Errorf("Bool() = %v, want ErrInvalidBoolean", err)
	}
}

func TestReader_arrayFrame(t *testing.T) {
	buf := []byte{
		4, 0, 0, 0, // array length in bytes
		0x01, 0x00, 0x00, 0x00,
	}
	r := NewReader(buf, binary.LittleEndian, NewConfig())
	child, err := r.ReadArrayFrame(4)
	if err != nil {
		t.Fatal(err)
	}
	if child.Remaining() != 4 {
		t.Errorf("child.Remaining() = %d, want 4", child.Remaining())
	}
	v, err := child.Uint32()
	if err != nil || v != 1 {
		t.Errorf("child.Uint32() = %v, %v", v, err)
	}
}

func TestReader_arrayFrameExceedsMaxPayload(t *testing.T) {
	buf := []byte{0xff, 0xff, 0xff, 0x7f}
	cfg := NewConfig(WithMaxArrayPayload(8))
	r := NewReader(buf, binary.LittleEndian, cfg)
	if _, err := r.ReadArrayFrame(4); err != ErrInvalidLength {
		t.Errorf("ReadArrayFrame() = %v, want ErrInvalidLength", err)
	}
}
