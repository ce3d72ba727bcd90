// Package scalebuf contains low-level, bounds-checked SCALE byte-cursor
// helpers: fixed-width little-endian reads/writes and variable-length
// "compact" integer encoding. It is the structural analogue of the
// teacher's internal/buf package (endian.go, bounds.go), generalized from
// fixed registry-cell offsets to a monotonically advancing decode cursor.
package scalebuf

import (
	"encoding/binary"

	"github.com/dynascale/scalekit/chainerr"
)

// Cursor reads from an underlying byte slice without copying, advancing
// its position by exactly the number of bytes consumed by each read. The
// codec does not enforce end-of-input; that is the boundary consumer's
// job (spec: a block extrinsic or storage key reports leftover bytes).
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps b for reading starting at position 0.
func NewCursor(b []byte) *Cursor { return &Cursor{buf: b} }

// Pos returns the current read position.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Rest returns the unread tail of the underlying slice without advancing.
func (c *Cursor) Rest() []byte { return c.buf[c.pos:] }

// Take advances by n bytes and returns them, or an Input error if fewer
// than n bytes remain.
func (c *Cursor) Take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, chainerr.Inputf("scalebuf.Take", "unexpected end of input: need %d bytes, have %d", n, c.Remaining())
	}
	out := c.buf[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// Byte reads a single byte.
func (c *Cursor) Byte() (byte, error) {
	b, err := c.Take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Buffer is a growable output buffer for encoding, pre-allocated to avoid
// repeated reallocation for the common case of moderately sized values
// (spec: "encoders must pre-allocate growth-amortized output").
type Buffer struct {
	buf []byte
}

// NewBuffer returns a Buffer with capacity hinted by sizeHint.
func NewBuffer(sizeHint int) *Buffer {
	if sizeHint < 16 {
		sizeHint = 16
	}
	return &Buffer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated output.
func (b *Buffer) Bytes() []byte { return b.buf }

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(v byte) { b.buf = append(b.buf, v) }

// Write appends raw bytes.
func (b *Buffer) Write(p []byte) { b.buf = append(b.buf, p...) }

// --- fixed-width little-endian helpers ---

func (c *Cursor) U16LE() (uint16, error) {
	b, err := c.Take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) U32LE() (uint32, error) {
	b, err := c.Take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) U64LE() (uint64, error) {
	b, err := c.Take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (b *Buffer) PutU16LE(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.Write(tmp[:])
}

func (b *Buffer) PutU32LE(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

func (b *Buffer) PutU64LE(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.Write(tmp[:])
}
