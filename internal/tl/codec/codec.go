package codec

import (
	"errors"
	"fmt"

	"github.com/danmuck/tlgen/internal/tl/registry"
	"github.com/danmuck/tlgen/internal/tl/resolve"
	"github.com/danmuck/tlgen/pkg/tlbin"
)

var (
	ErrValueType     = errors.New("codec: value type mismatch")
	ErrGroupMismatch = errors.New("codec: object does not belong to the field type")
)

// MissingFieldError indicates a required field was not present.
type MissingFieldError struct {
	Combinator string
	Field      string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("codec: %s: missing required field %s", e.Combinator, e.Field)
}

// Object is one combinator value. Fields maps field names to values:
// int32, int64, float64, string, []byte, bool, tlbin.Int128, tlbin.Int256,
// *Object for boxed objects and []any for vectors. Absent optional fields
// have no key; the flag word is computed and never stored.
type Object struct {
	Combinator *resolve.Combinator
	Fields     map[string]any
}

// NewObject returns an empty object of c.
func NewObject(c *resolve.Combinator) *Object {
	return &Object{Combinator: c, Fields: make(map[string]any)}
}

// Codec encodes and decodes objects of one registry.
type Codec struct {
	reg *registry.Registry
}

// New builds a codec over reg.
func New(reg *registry.Registry) *Codec {
	return &Codec{reg: reg}
}

// Encode writes obj boxed: constructor id then body.
func (c *Codec) Encode(b *tlbin.Buffer, obj *Object) error {
	if obj == nil || obj.Combinator == nil {
		return tlbin.ErrNilObject
	}
	b.PutID(obj.Combinator.ID)
	return c.EncodeBare(b, obj)
}

// EncodeBare writes the body of obj: [flags] field1 field2 ...
func (c *Codec) EncodeBare(b *tlbin.Buffer, obj *Object) error {
	comb := obj.Combinator
	flags := flagWord(obj)
	for _, f := range comb.Fields {
		if f.IsFlags() {
			b.PutUint32(flags)
			continue
		}
		v, ok := obj.Fields[f.Name]
		if f.Optional {
			if !ok || isTrue(f.Type) {
				continue
			}
		} else if !ok {
			return MissingFieldError{Combinator: comb.FullName(), Field: f.Name}
		}
		if err := c.encodeValue(b, f.Type, v); err != nil {
			return &tlbin.FieldError{Type: comb.FullName(), Field: f.Name, Err: err}
		}
	}
	return nil
}

// Decode reads a boxed object and dispatches on its constructor id.
func (c *Codec) Decode(b *tlbin.Buffer) (*Object, error) {
	id, err := b.ID()
	if err != nil {
		return nil, err
	}
	comb, ok := c.reg.Lookup(id)
	if !ok {
		return nil, &tlbin.UnknownTypeError{ID: id}
	}
	return c.DecodeBare(b, comb)
}

// DecodeBare reads the body of a comb value.
func (c *Codec) DecodeBare(b *tlbin.Buffer, comb *resolve.Combinator) (*Object, error) {
	obj := NewObject(comb)
	var flags uint32
	for _, f := range comb.Fields {
		if f.IsFlags() {
			v, err := b.Uint32()
			if err != nil {
				return nil, &tlbin.FieldError{Type: comb.FullName(), Field: f.Name, Err: err}
			}
			flags = v
			continue
		}
		if f.Optional {
			if flags&(1<<f.Bit) == 0 {
				continue
			}
			if isTrue(f.Type) {
				obj.Fields[f.Name] = true
				continue
			}
		}
		v, err := c.decodeValue(b, f.Type)
		if err != nil {
			return nil, &tlbin.FieldError{Type: comb.FullName(), Field: f.Name, Err: err}
		}
		obj.Fields[f.Name] = v
	}
	return obj, nil
}

// flagWord sets the bit of every present optional field. Fields sharing a
// bit are expected to be set together.
func flagWord(obj *Object) uint32 {
	var flags uint32
	for _, f := range obj.Combinator.Fields {
		if !f.Optional {
			continue
		}
		v, ok := obj.Fields[f.Name]
		if !ok || isAbsentTrue(f, v) {
			continue
		}
		flags |= 1 << f.Bit
	}
	return flags
}

func isTrue(t resolve.Type) bool {
	return t.Kind == resolve.KindPrimitive && t.Primitive == resolve.PrimTrue
}

func isAbsentTrue(f resolve.Field, v any) bool {
	if !isTrue(f.Type) {
		return false
	}
	set, _ := v.(bool)
	return !set
}
