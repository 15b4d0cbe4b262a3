package tlbin

import (
	"encoding/binary"
	"math"
)

// PeekID returns the next constructor id without consuming it.
func (b *Buffer) PeekID() (uint32, error) {
	if len(b.Buf) < 4 {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint32(b.Buf), nil
}

// ID consumes a constructor id.
func (b *Buffer) ID() (uint32, error) { return b.Uint32() }

// ConsumeID consumes a constructor id and checks it equals want.
func (b *Buffer) ConsumeID(want uint32) error {
	got, err := b.ID()
	if err != nil {
		return err
	}
	if got != want {
		return &UnexpectedIDError{Expected: want, Got: got}
	}
	return nil
}

// Uint32 consumes four little-endian bytes.
func (b *Buffer) Uint32() (uint32, error) {
	if len(b.Buf) < 4 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint32(b.Buf)
	b.Buf = b.Buf[4:]
	return v, nil
}

// Int consumes a TL int.
func (b *Buffer) Int() (int32, error) {
	v, err := b.Uint32()
	return int32(v), err
}

// Long consumes a TL long.
func (b *Buffer) Long() (int64, error) {
	if len(b.Buf) < 8 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint64(b.Buf)
	b.Buf = b.Buf[8:]
	return int64(v), nil
}

// Double consumes a TL double.
func (b *Buffer) Double() (float64, error) {
	v, err := b.Long()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

// Bool consumes a boxed Bool.
func (b *Buffer) Bool() (bool, error) {
	id, err := b.ID()
	if err != nil {
		return false, err
	}
	switch id {
	case BoolTrueTypeID:
		return true, nil
	case BoolFalseTypeID:
		return false, nil
	default:
		return false, ErrInvalidBool
	}
}

// Int128 consumes a TL int128.
func (b *Buffer) Int128() (Int128, error) {
	var v Int128
	if len(b.Buf) < len(v) {
		return v, ErrTruncated
	}
	copy(v[:], b.Buf)
	b.Buf = b.Buf[len(v):]
	return v, nil
}

// Int256 consumes a TL int256.
func (b *Buffer) Int256() (Int256, error) {
	var v Int256
	if len(b.Buf) < len(v) {
		return v, ErrTruncated
	}
	copy(v[:], b.Buf)
	b.Buf = b.Buf[len(v):]
	return v, nil
}

// String consumes a TL string.
func (b *Buffer) String() (string, error) {
	v, err := b.bytes()
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// Bytes consumes TL bytes. The result does not alias the buffer.
func (b *Buffer) Bytes() ([]byte, error) {
	v, err := b.bytes()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// VectorHeader consumes a boxed vector header and returns the element count.
func (b *Buffer) VectorHeader() (int, error) {
	if err := b.ConsumeID(VectorTypeID); err != nil {
		return 0, err
	}
	return b.BareVectorHeader()
}

// BareVectorHeader consumes a bare vector element count. Every TL element
// takes at least four bytes, so counts the remaining data cannot hold are
// rejected before any allocation.
func (b *Buffer) BareVectorHeader() (int, error) {
	n, err := b.Int()
	if err != nil {
		return 0, err
	}
	if n < 0 || int(n) > len(b.Buf)/4 {
		return 0, ErrInvalidLength
	}
	return int(n), nil
}

func (b *Buffer) bytes() ([]byte, error) {
	if len(b.Buf) < 1 {
		return nil, ErrTruncated
	}
	n := int(b.Buf[0])
	header := 1
	switch {
	case n <= maxSmallLen:
	case n == largeMarker:
		if len(b.Buf) < 4 {
			return nil, ErrTruncated
		}
		n = int(b.Buf[1]) | int(b.Buf[2])<<8 | int(b.Buf[3])<<16
		header = 4
	default:
		return nil, ErrInvalidLength
	}
	total := header + n + padding(header+n)
	if len(b.Buf) < total {
		return nil, ErrTruncated
	}
	v := b.Buf[header : header+n]
	b.Buf = b.Buf[total:]
	return v, nil
}
