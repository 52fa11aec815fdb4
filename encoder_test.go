package dbus

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncoder_roundTripPrimitives(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, binary.LittleEndian)
	enc.Byte(0x7f)
	enc.Bool(true)
	enc.Int16(-2)
	enc.Uint64(1 << 40)
	enc.String("hello")
	enc.Signature("ai")

	r := NewReader(buf.Bytes(), binary.LittleEndian, NewConfig())
	if v, err := r.Uint8(); err != nil || v != 0x7f {
		t.Fatalf("Uint8() = %v, %v", v, err)
	}
	if v, err := r.Bool(); err != nil || !v {
		t.Fatalf("Bool() = %v, %v", v, err)
	}
	if v, err := r.Int16(); err != nil || v != -2 {
		t.Fatalf("Int16() = %v, %v", v, err)
	}
	if v, err := r.Uint64(); err != nil || v != 1<<40 {
		t.Fatalf("Uint64() = %v, %v", v, err)
	}
	if s, err := r.ReadString(TypeString); err != nil || s != "hello" {
		t.Fatalf("ReadString() = %q, %v", s, err)
	}
	if s, err := r.ReadSignatureBytes(); err != nil || s != "ai" {
		t.Fatalf("ReadSignatureBytes() = %q, %v", s, err)
	}
}

func TestEncoder_array(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, binary.LittleEndian)

	lenOffset := enc.BeginArray(4)
	payloadStart := enc.Offset()
	enc.Uint32(1)
	enc.Uint32(2)
	enc.Uint32(3)
	enc.EndArray(lenOffset, payloadStart)

	r := NewReader(buf.Bytes(), binary.LittleEndian, NewConfig())
	child, err := r.ReadArrayFrame(4)
	if err != nil {
		t.Fatal(err)
	}
	var got []uint32
	for child.Remaining() > 0 {
		v, err := child.Uint32()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
	}
	want := []uint32{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestEncoder_alignment(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, binary.LittleEndian)
	enc.Byte(1)
	enc.Uint32(2)
	if enc.Offset() != 8 {
		t.Errorf("Offset() = %d, want 8", enc.Offset())
	}
	b := buf.Bytes()
	if b[1] != 0 || b[2] != 0 || b[3] != 0 {
		t.Errorf("padding bytes not zero: %v", b[1:4])
	}
}
