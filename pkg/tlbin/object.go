package tlbin

// Well-known constructor ids of the builtin boxed types.
const (
	VectorTypeID    uint32 = 0x1cb5c415
	BoolTrueTypeID  uint32 = 0x997275b5
	BoolFalseTypeID uint32 = 0xbc799737
	TrueTypeID      uint32 = 0x3fedd339
)

// Int128 is the TL int128 value.
type Int128 [16]byte

// Int256 is the TL int256 value.
type Int256 [32]byte

// Encoder writes a boxed value: constructor id followed by the body.
type Encoder interface {
	Encode(b *Buffer) error
}

// Decoder reads a boxed value and checks its constructor id.
type Decoder interface {
	Decode(b *Buffer) error
}

// BareEncoder writes the body of a value without its constructor id.
type BareEncoder interface {
	EncodeBare(b *Buffer) error
}

// BareDecoder reads the body of a value without its constructor id.
type BareDecoder interface {
	DecodeBare(b *Buffer) error
}

// Object is implemented by every generated combinator.
type Object interface {
	Encoder
	Decoder
	TypeID() uint32
	TypeName() string
}
