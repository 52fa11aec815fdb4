package dbus

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
	"unsafe"
)

// Reader is a position-tracked view over a borrowed byte slice. It never
// copies the underlying buffer; strings and signatures it returns are
// sub-slices of buf and share its lifetime.
type Reader struct {
	buf   []byte
	order binary.ByteOrder
	pos   int
	cfg   Config
}

// NewReader wraps buf for aligned reading starting at position 0, using
// order for multi-byte scalars and cfg for policy limits. NewConfig() with
// no options is a reasonable choice when the caller has no specific policy
// needs; a zero Config{} has a max array payload of 0.
func NewReader(buf []byte, order binary.ByteOrder, cfg Config) *Reader {
	return &Reader{buf: buf, order: order, cfg: cfg}
}

// Pos returns the current read position.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// align advances pos to the next multiple of n, relative to the start of
// the buffer. It returns ErrEndOfStream if the padding would run past the
// buffer, and under StrictAlignment, ErrNonZeroPadding if any skipped byte
// is non-zero.
func (r *Reader) align(n int) error {
	target := alignUp(r.pos, n)
	if target > len(r.buf) {
		return ErrEndOfStream
	}
	if r.cfg.alignmentPolicy == StrictAlignment {
		for i := r.pos; i < target; i++ {
			if r.buf[i] != 0 {
				return ErrNonZeroPadding
			}
		}
	}
	r.pos = target
	return nil
}

// AlignTo is the exported form of align, for callers (such as the header
// decoder) that need to skip to a boundary without reading a value.
func (r *Reader) AlignTo(n int) error { return r.align(n) }

func alignUp(pos, n int) int {
	if n <= 1 {
		return pos
	}
	rem := pos % n
	if rem == 0 {
		return pos
	}
	return pos + (n - rem)
}

// primitive aligns to align bytes then returns the next size bytes,
// advancing pos past them. EndOfStream is reported if pos already sits at
// the end of the buffer before alignment is attempted; InvalidAlignment if
// the fixed-size read would run past the buffer after alignment.
func (r *Reader) primitive(align, size int) ([]byte, error) {
	if r.pos == len(r.buf) {
		return nil, ErrEndOfStream
	}
	if err := r.align(align); err != nil {
		return nil, err
	}
	if r.pos+size > len(r.buf) {
		return nil, ErrInvalidAlignment
	}
	b := r.buf[r.pos : r.pos+size]
	r.pos += size
	return b, nil
}

// Uint8 reads a single BYTE. BYTE has no alignment requirement.
func (r *Reader) Uint8() (byte, error) {
	b, err := r.primitive(1, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool reads a BOOLEAN, a 4-byte-aligned UINT32 that must be 0 or 1.
func (r *Reader) Bool() (bool, error) {
	v, err := r.Uint32()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrInvalidBoolean
	}
}

// Int16 reads a 2-byte-aligned INT16.
func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

// Uint16 reads a 2-byte-aligned UINT16.
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.primitive(2, 2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// Int32 reads a 4-byte-aligned INT32.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Uint32 reads a 4-byte-aligned UINT32.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.primitive(4, 4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// Int64 reads an 8-byte-aligned INT64.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// Uint64 reads an 8-byte-aligned UINT64.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.primitive(8, 8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

// Float64 reads an 8-byte-aligned DOUBLE.
func (r *Reader) Float64() (float64, error) {
	v, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// UnixFD reads a 4-byte-aligned UNIX_FD, an index into the message's
// out-of-band file descriptor array. The codec treats it as an opaque
// UINT32; descriptor passing itself is out of scope.
func (r *Reader) UnixFD() (uint32, error) {
	return r.Uint32()
}

// ReadString reads a length-prefixed textual value, kind being TypeString,
// TypeObjectPath, or TypeSignature. STRING and OBJECT_PATH carry a 4-byte
// aligned UINT32 length; SIGNATURE carries a single unaligned length byte.
// The returned string shares memory with the Reader's underlying buffer.
func (r *Reader) ReadString(kind DBusType) (string, error) {
	var n int
	if kind == TypeSignature {
		b, err := r.Uint8()
		if err != nil {
			return "", err
		}
		n = int(b)
	} else {
		u, err := r.Uint32()
		if err != nil {
			return "", err
		}
		n = int(u)
	}

	if r.pos+n+1 > len(r.buf) {
		return "", ErrInvalidLength
	}
	data := r.buf[r.pos : r.pos+n]
	if r.buf[r.pos+n] != 0 {
		return "", newErr(KindMissingNul, fmt.Sprintf("offset %d", r.pos+n))
	}
	r.pos += n + 1

	if kind != TypeSignature && !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	if kind == TypeObjectPath && !IsValidObjectPath(string(data)) {
		return "", ErrInvalidLength
	}
	if n == 0 {
		return "", nil
	}
	return unsafe.String(&data[0], n), nil
}

// ReadSignatureBytes reads a SIGNATURE value's raw text without parsing it,
// for callers that want to defer parsing (e.g. header field dispatch).
func (r *Reader) ReadSignatureBytes() (string, error) {
	return r.ReadString(TypeSignature)
}

// ReadVariant reads a VARIANT's inline signature and parses it as a single
// complete type. The caller is responsible for then decoding a value of
// that type from r; ReadVariant only consumes the signature prefix.
func (r *Reader) ReadVariant() (Signature, error) {
	sig, err := r.ReadSignatureBytes()
	if err != nil {
		return Signature{}, err
	}
	elems, err := parseSingle([]byte(sig))
	if err != nil {
		return Signature{}, err
	}
	return Signature{elems: elems}, nil
}

// ReadArrayFrame reads an array's 4-byte-aligned UINT32 byte-length prefix,
// aligns to elementAlignment (the element type's natural alignment, applied
// after the length prefix per the wire format), validates the payload
// against the configured max array payload, and returns a child Reader
// scoped to exactly the array's payload bytes.
func (r *Reader) ReadArrayFrame(elementAlignment int) (*Reader, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if n > r.cfg.maxArrayPayload {
		return nil, ErrInvalidLength
	}
	if err := r.align(elementAlignment); err != nil {
		return nil, err
	}
	if r.pos+int(n) > len(r.buf) {
		return nil, ErrInvalidAlignment
	}
	child := &Reader{
		buf:   r.buf[r.pos : r.pos+int(n)],
		order: r.order,
		cfg:   r.cfg,
	}
	r.pos += int(n)
	return child, nil
}

// Skip advances pos by k bytes without alignment, failing with
// ErrEndOfStream if that would run past the buffer.
func (r *Reader) Skip(k int) error {
	if r.pos+k > len(r.buf) {
		return ErrEndOfStream
	}
	r.pos += k
	return nil
}

// Take returns the next k bytes without interpreting them, advancing pos.
func (r *Reader) Take(k int) ([]byte, error) {
	if r.pos+k > len(r.buf) {
		return nil, ErrEndOfStream
	}
	b := r.buf[r.pos : r.pos+k]
	r.pos += k
	return b, nil
}
