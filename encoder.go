package dbus

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Encoder appends aligned D-Bus wire data to an internal buffer. It is the
// write-side counterpart of Reader, used to build test fixtures and, in
// the transport package, to frame outgoing messages.
type Encoder struct {
	order  binary.ByteOrder
	dst    *bytes.Buffer
	offset int
}

// NewEncoder creates an Encoder writing to dst in order, starting at
// offset 0.
func NewEncoder(dst *bytes.Buffer, order binary.ByteOrder) *Encoder {
	return &Encoder{order: order, dst: dst}
}

// Offset returns the number of bytes written so far.
func (e *Encoder) Offset() int { return e.offset }

// Align writes zero padding until the offset is a multiple of n.
func (e *Encoder) Align(n int) {
	target := alignUp(e.offset, n)
	if target == e.offset {
		return
	}
	e.dst.Write(make([]byte, target-e.offset))
	e.offset = target
}

// Byte encodes a BYTE.
func (e *Encoder) Byte(b byte) {
	e.dst.WriteByte(b)
	e.offset++
}

// Bool encodes a BOOLEAN as a 4-byte-aligned UINT32 of 0 or 1.
func (e *Encoder) Bool(v bool) {
	if v {
		e.Uint32(1)
	} else {
		e.Uint32(0)
	}
}

// Int16 encodes a 2-byte-aligned INT16.
func (e *Encoder) Int16(v int16) { e.Uint16(uint16(v)) }

// Uint16 encodes a 2-byte-aligned UINT16.
func (e *Encoder) Uint16(v uint16) {
	e.Align(2)
	b := make([]byte, 2)
	e.order.PutUint16(b, v)
	e.dst.Write(b)
	e.offset += 2
}

// Int32 encodes a 4-byte-aligned INT32.
func (e *Encoder) Int32(v int32) { e.Uint32(uint32(v)) }

// Uint32 encodes a 4-byte-aligned UINT32.
func (e *Encoder) Uint32(v uint32) {
	e.Align(4)
	b := make([]byte, 4)
	e.order.PutUint32(b, v)
	e.dst.Write(b)
	e.offset += 4
}

// Int64 encodes an 8-byte-aligned INT64.
func (e *Encoder) Int64(v int64) { e.Uint64(uint64(v)) }

// Uint64 encodes an 8-byte-aligned UINT64.
func (e *Encoder) Uint64(v uint64) {
	e.Align(8)
	b := make([]byte, 8)
	e.order.PutUint64(b, v)
	e.dst.Write(b)
	e.offset += 8
}

// Float64 encodes an 8-byte-aligned DOUBLE.
func (e *Encoder) Float64(v float64) { e.Uint64(math.Float64bits(v)) }

// String encodes a STRING or OBJECT_PATH: a 4-byte-aligned UINT32 length
// followed by the bytes and a NUL terminator.
func (e *Encoder) String(s string) {
	e.Uint32(uint32(len(s)))
	e.dst.WriteString(s)
	e.dst.WriteByte(0)
	e.offset += len(s) + 1
}

// Signature encodes a SIGNATURE: a single length byte, the bytes, and a
// NUL terminator.
func (e *Encoder) Signature(s string) {
	e.Byte(byte(len(s)))
	e.dst.WriteString(s)
	e.dst.WriteByte(0)
	e.offset += len(s) + 1
}

// Uint32At overwrites the 4 bytes at byte offset at in the already-written
// buffer, used to backfill an array or header fields length once its
// payload has been written.
func (e *Encoder) Uint32At(v uint32, at int) {
	b := e.dst.Bytes()
	e.order.PutUint32(b[at:at+4], v)
}

// BeginArray writes the array's (placeholder) length prefix and aligns to
// elementAlignment, returning the byte offset of the placeholder so the
// caller can backfill it via Uint32At once the payload is written.
func (e *Encoder) BeginArray(elementAlignment int) int {
	lenOffset := e.offset
	e.Uint32(0)
	e.Align(elementAlignment)
	return lenOffset
}

// EndArray backfills the length prefix written by BeginArray with the
// number of payload bytes written since payloadStart.
func (e *Encoder) EndArray(lenOffset, payloadStart int) {
	e.Uint32At(uint32(e.offset-payloadStart), lenOffset)
}

// AlignStruct aligns to the 8-byte boundary STRUCT and DICT_ENTRY require.
func (e *Encoder) AlignStruct() { e.Align(8) }
