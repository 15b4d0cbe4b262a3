package schema

import "strings"

// Kind tells constructors of values from callable functions.
type Kind uint8

const (
	KindType Kind = iota
	KindFunction
)

func (k Kind) String() string {
	if k == KindFunction {
		return "function"
	}
	return "type"
}

// FlagWordType is the TL spelling of a flag word field type.
const FlagWordType = "#"

// TypeRef is a type expression as written in the schema.
type TypeRef struct {
	Name string
	// Param is the element type of Vector<T> / vector<T>.
	Param *TypeRef
	// Bare is set for `%Type` and for lower-case `vector<T>`.
	Bare bool
	// Generic is set for `!X`: any boxed object of the generic type X.
	Generic bool
}

func (r TypeRef) String() string {
	var sb strings.Builder
	r.write(&sb, false)
	return sb.String()
}

// canonical renders the type the way the id checksum expects it:
// `Vector<T>` becomes `Vector T` and bytes is spelled string.
func (r TypeRef) canonical() string {
	var sb strings.Builder
	r.write(&sb, true)
	return sb.String()
}

func (r TypeRef) write(sb *strings.Builder, canonical bool) {
	if r.Generic {
		sb.WriteByte('!')
	}
	if r.Bare && r.Name != "vector" {
		sb.WriteByte('%')
	}
	name := r.Name
	if canonical && name == "bytes" {
		name = "string"
	}
	sb.WriteString(name)
	if r.Param == nil {
		return
	}
	if canonical {
		sb.WriteByte(' ')
		r.Param.write(sb, canonical)
		return
	}
	sb.WriteByte('<')
	r.Param.write(sb, canonical)
	sb.WriteByte('>')
}

// IsFlagWord reports whether the type is the `#` flag word.
func (r TypeRef) IsFlagWord() bool {
	return r.Name == FlagWordType && r.Param == nil && !r.Generic
}

// Cond is the `flags.N?` prefix of an optional field.
type Cond struct {
	Flag string
	Bit  int
}

// Arg is one field of a definition.
type Arg struct {
	Name string
	Type TypeRef
	Cond *Cond
}

// Optional reports whether the field is gated by a flag bit.
func (a Arg) Optional() bool { return a.Cond != nil }

// GenericParam is a `{X:Type}` declaration.
type GenericParam struct {
	Name string
	Type string
}

// Definition is one combinator line of the schema.
type Definition struct {
	Namespace string
	Name      string
	ID        uint32
	HasID     bool
	Params    []GenericParam
	Args      []Arg
	Result    TypeRef
	Kind      Kind
	File      string
	Line      int
}

// FullName returns the namespaced name, e.g. `messages.sendMessage`.
func (d Definition) FullName() string {
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + "." + d.Name
}

// File is the parsed content of one or more schema sources.
type File struct {
	Name        string
	Layer       int
	Definitions []Definition
	// Aliases maps boxed builtin type names to their primitive, e.g. Int -> int.
	Aliases map[string]string
}
