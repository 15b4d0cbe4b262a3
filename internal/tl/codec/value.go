package codec

import (
	"github.com/danmuck/tlgen/internal/tl/resolve"
	"github.com/danmuck/tlgen/internal/tl/schema"
	"github.com/danmuck/tlgen/pkg/tlbin"
)

func (c *Codec) encodeValue(b *tlbin.Buffer, t resolve.Type, v any) error {
	switch t.Kind {
	case resolve.KindPrimitive:
		return encodePrimitive(b, t.Primitive, v)
	case resolve.KindGroup, resolve.KindObject:
		obj, ok := v.(*Object)
		if !ok || obj == nil {
			return ErrValueType
		}
		if t.Kind == resolve.KindGroup && !inGroup(obj.Combinator, t.Name) {
			return ErrGroupMismatch
		}
		return c.Encode(b, obj)
	case resolve.KindVector:
		items, ok := v.([]any)
		if !ok {
			return ErrValueType
		}
		if t.Bare {
			b.PutBareVectorHeader(len(items))
		} else {
			b.PutVectorHeader(len(items))
		}
		for _, item := range items {
			if err := c.encodeValue(b, *t.Elem, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return ErrValueType
	}
}

func encodePrimitive(b *tlbin.Buffer, p resolve.Primitive, v any) error {
	switch p {
	case resolve.PrimInt:
		x, ok := v.(int32)
		if !ok {
			return ErrValueType
		}
		b.PutInt(x)
	case resolve.PrimLong:
		x, ok := v.(int64)
		if !ok {
			return ErrValueType
		}
		b.PutLong(x)
	case resolve.PrimDouble:
		x, ok := v.(float64)
		if !ok {
			return ErrValueType
		}
		b.PutDouble(x)
	case resolve.PrimString:
		x, ok := v.(string)
		if !ok {
			return ErrValueType
		}
		return b.PutString(x)
	case resolve.PrimBytes:
		x, ok := v.([]byte)
		if !ok {
			return ErrValueType
		}
		return b.PutBytes(x)
	case resolve.PrimInt128:
		x, ok := v.(tlbin.Int128)
		if !ok {
			return ErrValueType
		}
		b.PutInt128(x)
	case resolve.PrimInt256:
		x, ok := v.(tlbin.Int256)
		if !ok {
			return ErrValueType
		}
		b.PutInt256(x)
	case resolve.PrimBool:
		x, ok := v.(bool)
		if !ok {
			return ErrValueType
		}
		b.PutBool(x)
	default:
		return ErrValueType
	}
	return nil
}

func (c *Codec) decodeValue(b *tlbin.Buffer, t resolve.Type) (any, error) {
	switch t.Kind {
	case resolve.KindPrimitive:
		return decodePrimitive(b, t.Primitive)
	case resolve.KindGroup, resolve.KindObject:
		obj, err := c.Decode(b)
		if err != nil {
			return nil, err
		}
		if t.Kind == resolve.KindGroup && !inGroup(obj.Combinator, t.Name) {
			return nil, ErrGroupMismatch
		}
		return obj, nil
	case resolve.KindVector:
		var (
			n   int
			err error
		)
		if t.Bare {
			n, err = b.BareVectorHeader()
		} else {
			n, err = b.VectorHeader()
		}
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, n)
		for i := 0; i < n; i++ {
			item, err := c.decodeValue(b, *t.Elem)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	default:
		return nil, ErrValueType
	}
}

func decodePrimitive(b *tlbin.Buffer, p resolve.Primitive) (any, error) {
	switch p {
	case resolve.PrimInt:
		return b.Int()
	case resolve.PrimLong:
		return b.Long()
	case resolve.PrimDouble:
		return b.Double()
	case resolve.PrimString:
		return b.String()
	case resolve.PrimBytes:
		return b.Bytes()
	case resolve.PrimInt128:
		return b.Int128()
	case resolve.PrimInt256:
		return b.Int256()
	case resolve.PrimBool:
		return b.Bool()
	default:
		return nil, ErrValueType
	}
}

func inGroup(c *resolve.Combinator, group string) bool {
	return c != nil && c.Kind == schema.KindType && c.Result.Kind == resolve.KindGroup && c.Result.Name == group
}
