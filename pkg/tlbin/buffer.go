package tlbin

import (
	"encoding/binary"
	"math"
)

// Buffer is a TL encoding and decoding cursor. Writes append to Buf, reads
// consume from the front of Buf.
type Buffer struct {
	Buf []byte
}

// NewBuffer returns a buffer reading from (or appending to) data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{Buf: data}
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int { return len(b.Buf) }

// Raw returns the underlying bytes.
func (b *Buffer) Raw() []byte { return b.Buf }

// Reset truncates the buffer keeping its capacity.
func (b *Buffer) Reset() { b.Buf = b.Buf[:0] }

// Copy returns a copy of the unread bytes.
func (b *Buffer) Copy() []byte {
	out := make([]byte, len(b.Buf))
	copy(out, b.Buf)
	return out
}

// PutID writes a constructor id.
func (b *Buffer) PutID(id uint32) { b.PutUint32(id) }

// PutUint32 writes v as four little-endian bytes.
func (b *Buffer) PutUint32(v uint32) {
	b.Buf = binary.LittleEndian.AppendUint32(b.Buf, v)
}

// PutInt writes a TL int.
func (b *Buffer) PutInt(v int32) { b.PutUint32(uint32(v)) }

// PutLong writes a TL long.
func (b *Buffer) PutLong(v int64) {
	b.Buf = binary.LittleEndian.AppendUint64(b.Buf, uint64(v))
}

// PutDouble writes a TL double.
func (b *Buffer) PutDouble(v float64) {
	b.Buf = binary.LittleEndian.AppendUint64(b.Buf, math.Float64bits(v))
}

// PutBool writes a boxed Bool.
func (b *Buffer) PutBool(v bool) {
	if v {
		b.PutID(BoolTrueTypeID)
		return
	}
	b.PutID(BoolFalseTypeID)
}

// PutInt128 writes a TL int128.
func (b *Buffer) PutInt128(v Int128) { b.Buf = append(b.Buf, v[:]...) }

// PutInt256 writes a TL int256.
func (b *Buffer) PutInt256(v Int256) { b.Buf = append(b.Buf, v[:]...) }

// PutString writes a TL string. Strings longer than MaxBytesLen are
// rejected with ErrInvalidLength and nothing is written.
func (b *Buffer) PutString(s string) error { return b.putBytes([]byte(s)) }

// PutBytes writes TL bytes under the same length limit as PutString.
func (b *Buffer) PutBytes(v []byte) error { return b.putBytes(v) }

// PutVectorHeader writes the boxed vector id and the element count.
func (b *Buffer) PutVectorHeader(n int) {
	b.PutID(VectorTypeID)
	b.PutInt(int32(n))
}

// PutBareVectorHeader writes only the element count.
func (b *Buffer) PutBareVectorHeader(n int) {
	b.PutInt(int32(n))
}

// MaxBytesLen is the longest string or bytes value the 3-byte length
// header can describe.
const MaxBytesLen = 1<<24 - 1

const (
	maxSmallLen = 253
	largeMarker = 254
)

func (b *Buffer) putBytes(v []byte) error {
	n := len(v)
	if n > MaxBytesLen {
		return ErrInvalidLength
	}
	header := 1
	if n <= maxSmallLen {
		b.Buf = append(b.Buf, byte(n))
	} else {
		header = 4
		b.Buf = append(b.Buf, largeMarker, byte(n), byte(n>>8), byte(n>>16))
	}
	b.Buf = append(b.Buf, v...)
	for pad := padding(header + n); pad > 0; pad-- {
		b.Buf = append(b.Buf, 0)
	}
	return nil
}

func padding(n int) int {
	return (4 - n%4) % 4
}
