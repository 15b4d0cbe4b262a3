package resolve

import (
	"strings"

	"github.com/danmuck/tlgen/internal/tl/schema"
)

// Primitive is a builtin TL scalar.
type Primitive uint8

const (
	PrimInvalid Primitive = iota
	PrimInt
	PrimLong
	PrimDouble
	PrimString
	PrimBytes
	PrimInt128
	PrimInt256
	PrimBool
	// PrimTrue is the presence-only `true` type of optional fields.
	PrimTrue
)

var primitiveNames = map[string]Primitive{
	"int":    PrimInt,
	"long":   PrimLong,
	"double": PrimDouble,
	"string": PrimString,
	"bytes":  PrimBytes,
	"int128": PrimInt128,
	"int256": PrimInt256,
	"Bool":   PrimBool,
	"true":   PrimTrue,
}

func (p Primitive) String() string {
	for name, prim := range primitiveNames {
		if prim == p {
			return name
		}
	}
	return "invalid"
}

// TypeKind discriminates Type.
type TypeKind uint8

const (
	KindPrimitive TypeKind = iota + 1
	// KindGroup references a TypeGroup by name.
	KindGroup
	KindVector
	// KindObject is any boxed object (`!X`, a generic parameter, or Object).
	KindObject
	// KindFlags is the 32-bit flag word.
	KindFlags
)

// Type is a fully resolved field or result type.
type Type struct {
	Kind      TypeKind
	Primitive Primitive
	// Name is the group name for KindGroup and the generic parameter for
	// KindObject.
	Name string
	Elem *Type
	// Bare marks a vector written without its boxed header.
	Bare bool
}

func (t Type) String() string {
	switch t.Kind {
	case KindPrimitive:
		return t.Primitive.String()
	case KindGroup:
		return t.Name
	case KindVector:
		if t.Bare {
			return "vector<" + t.Elem.String() + ">"
		}
		return "Vector<" + t.Elem.String() + ">"
	case KindObject:
		if t.Name == "" {
			return "Object"
		}
		return "!" + t.Name
	case KindFlags:
		return "#"
	default:
		return "invalid"
	}
}

// Field is a resolved combinator field.
type Field struct {
	Name string
	Type Type
	// Optional fields are serialized only when Bit is set in the flag word.
	Optional bool
	Bit      int
	// Implicit marks a flag word injected by the resolver.
	Implicit bool
}

// IsFlags reports whether the field is the flag word.
func (f Field) IsFlags() bool { return f.Type.Kind == KindFlags }

// Combinator is one resolved definition.
type Combinator struct {
	Namespace string
	Name      string
	ID        uint32
	// Declared is set when the id was written in the schema.
	Declared  bool
	Kind      schema.Kind
	Fields    []Field
	Result    Type
	Params    []string
	Canonical string
	File      string
	Line      int
}

// FullName returns the namespaced name.
func (c *Combinator) FullName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "." + c.Name
}

// FlagIndex returns the index of the flag word in Fields, or -1.
func (c *Combinator) FlagIndex() int {
	for i, f := range c.Fields {
		if f.IsFlags() {
			return i
		}
	}
	return -1
}

// TypeGroup is an abstract result type and its constructors.
type TypeGroup struct {
	Name         string
	Constructors []*Combinator
}

// Namespace returns the namespace prefix of the group name.
func (g *TypeGroup) Namespace() string {
	ns, _, ok := strings.Cut(g.Name, ".")
	if !ok {
		return ""
	}
	return ns
}

// Schema is the resolved object model of a TL schema.
type Schema struct {
	Layer       int
	Combinators []*Combinator
	Groups      []*TypeGroup
	groups      map[string]*TypeGroup
}

// Group looks up a type group by name.
func (s *Schema) Group(name string) (*TypeGroup, bool) {
	g, ok := s.groups[name]
	return g, ok
}

// Types returns type constructors in declaration order.
func (s *Schema) Types() []*Combinator { return s.filter(schema.KindType) }

// Functions returns function combinators in declaration order.
func (s *Schema) Functions() []*Combinator { return s.filter(schema.KindFunction) }

func (s *Schema) filter(kind schema.Kind) []*Combinator {
	out := make([]*Combinator, 0, len(s.Combinators))
	for _, c := range s.Combinators {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
