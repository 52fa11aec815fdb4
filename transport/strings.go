package transport

import (
	"bytes"
	"unsafe"
)

// stringConverter batches small strings into a shared backing buffer,
// trading one extra copy per string for far fewer allocations than one
// per value — the same tradeoff the core codec's teacher made for the
// strings it decodes off the wire. It's used here rather than in the core
// package because core's Reader intentionally returns strings that alias
// the caller's borrowed byte slice; a retained alias would keep the whole
// message frame alive, so values the transport layer hands back to
// callers are copied out first, and batching the copies keeps that cheap.
//
// Once the buffer fills past its capacity, a fresh one is allocated; the
// old one is released once every string it backs is unreachable.
type stringConverter struct {
	buf    *bytes.Buffer
	cap    int
	offset int
}

func newStringConverter(cap int) *stringConverter {
	return &stringConverter{
		buf: bytes.NewBuffer(make([]byte, 0, cap)),
		cap: cap,
	}
}

// String returns a copy of s backed by the converter's batching buffer.
func (c *stringConverter) String(s string) string {
	if s == "" {
		return ""
	}
	if c.buf.Len() > c.cap {
		c.buf = bytes.NewBuffer(make([]byte, 0, c.cap))
		c.offset = 0
	}

	n, _ := c.buf.WriteString(s)
	b := c.buf.Bytes()[c.offset:]
	out := unsafe.String(&b[0], len(b))
	c.offset += n
	return out
}
