package apigen

import (
	"fmt"

	"github.com/danmuck/tlgen/internal/gen"
	"github.com/danmuck/tlgen/internal/tl/resolve"
)

func (e *emitter) typesFile() (gen.File, error) {
	var w gen.Writer
	e.header(&w, len(e.structs) > 0)
	for _, sd := range e.structs {
		w.Blank()
		e.writeStruct(&w, sd)
	}
	return w.Render(TypesFile)
}

func (e *emitter) writeStruct(w *gen.Writer, sd *structDef) {
	c := sd.comb
	kind := "constructor"
	if !isType(c) {
		kind = "method"
	}
	w.Line("// %s is the TL %s %s.", sd.name, kind, c.FullName())
	w.Line("//")
	w.Line("//\t%s", signature(c))
	w.Line("type %s struct {", sd.name)
	for _, f := range sd.fields {
		if f.IsFlags() {
			continue
		}
		w.Line("%s %s", f.goName, f.goType())
	}
	w.Line("}")
	w.Blank()

	w.Line("// %sTypeID is the constructor id of %s.", sd.name, c.FullName())
	w.Line("const %sTypeID uint32 = 0x%08x", sd.name, c.ID)
	w.Blank()

	e.writeConstructor(w, sd)
	e.writeSetters(w, sd)

	w.Line("// TypeID returns %sTypeID.", sd.name)
	w.Line("func (*%s) TypeID() uint32 { return %sTypeID }", sd.name, sd.name)
	w.Blank()
	w.Line("// TypeName returns the TL name %q.", c.FullName())
	w.Line("func (*%s) TypeName() string { return %q }", sd.name, c.FullName())
	w.Blank()
	if isType(c) {
		w.Line("func (*%s) is%s() {}", sd.name, className(c.Result.Name))
		w.Blank()
	}

	e.writeEncode(w, sd)
	e.writeDecode(w, sd)
}

func (e *emitter) writeConstructor(w *gen.Writer, sd *structDef) {
	var params, inits []string
	for _, f := range sd.fields {
		if f.IsFlags() || f.Optional {
			continue
		}
		params = append(params, f.param+" "+f.goType())
		inits = append(inits, f.goName+": "+f.param)
	}
	w.Line("// New%s returns a %s with its required fields set.", sd.name, sd.name)
	w.Line("func New%s(%s) *%s {", sd.name, join(params), sd.name)
	w.Line("return &%s{%s}", sd.name, join(inits))
	w.Line("}")
	w.Blank()
}

func (e *emitter) writeSetters(w *gen.Writer, sd *structDef) {
	for _, f := range sd.fields {
		if !f.Optional {
			continue
		}
		w.Line("// %s sets the optional field %s.", f.setter, f.Name)
		switch {
		case isTrue(f.Type) || nilable(f.Type):
			w.Line("func (o *%s) %s(v %s) { o.%s = v }", sd.name, f.setter, goType(f.Type), f.goName)
		default:
			w.Line("func (o *%s) %s(v %s) { o.%s = &v }", sd.name, f.setter, goType(f.Type), f.goName)
		}
		w.Blank()
	}
}

func (e *emitter) writeEncode(w *gen.Writer, sd *structDef) {
	w.Line("// Encode writes the constructor id followed by the body.")
	w.Line("func (o *%s) Encode(b *tlbin.Buffer) error {", sd.name)
	w.Line("if o == nil {")
	w.Line("return tlbin.ErrNilObject")
	w.Line("}")
	w.Line("b.PutID(%sTypeID)", sd.name)
	w.Line("return o.EncodeBare(b)")
	w.Line("}")
	w.Blank()

	w.Line("// EncodeBare writes the body without the constructor id.")
	w.Line("func (o *%s) EncodeBare(b *tlbin.Buffer) error {", sd.name)
	w.Line("if o == nil {")
	w.Line("return tlbin.ErrNilObject")
	w.Line("}")
	if sd.hasOptional {
		w.Line("var flags uint32")
		for _, f := range sd.fields {
			if !f.Optional {
				continue
			}
			w.Line("if %s {", f.present())
			w.Line("flags |= 1 << %d", f.Bit)
			w.Line("}")
		}
	}
	for _, f := range sd.fields {
		fieldErr := fieldErrorf(sd.comb, f.Name)
		switch {
		case f.IsFlags() && sd.hasOptional:
			w.Line("b.PutUint32(flags)")
		case f.IsFlags():
			w.Line("b.PutUint32(0)")
		case f.Optional && isTrue(f.Type):
		case f.Optional:
			w.Line("if %s {", f.present())
			encodeValue(w, f.Type, f.value(), fieldErr, 0)
			w.Line("}")
		default:
			encodeValue(w, f.Type, f.value(), fieldErr, 0)
		}
	}
	w.Line("return nil")
	w.Line("}")
	w.Blank()
}

// fieldErrorf returns a format wrapping %s (an error expression) into a
// *tlbin.FieldError for one field.
func fieldErrorf(c *resolve.Combinator, field string) string {
	return fmt.Sprintf("&tlbin.FieldError{Type: %q, Field: %q, Err: %%s}", c.FullName(), field)
}

func encodeValue(w *gen.Writer, t resolve.Type, expr, fieldErr string, depth int) {
	switch t.Kind {
	case resolve.KindPrimitive:
		if t.Primitive == resolve.PrimString || t.Primitive == resolve.PrimBytes {
			w.Line("if err := b.%s(%s); err != nil {", putter(t.Primitive), expr)
			w.Line("return "+fieldErr, "err")
			w.Line("}")
			return
		}
		w.Line("b.%s(%s)", putter(t.Primitive), expr)
	case resolve.KindGroup, resolve.KindObject:
		w.Line("if %s == nil {", expr)
		w.Line("return "+fieldErr, "tlbin.ErrNilObject")
		w.Line("}")
		w.Line("if err := %s.Encode(b); err != nil {", expr)
		w.Line("return "+fieldErr, "err")
		w.Line("}")
	case resolve.KindVector:
		if t.Bare {
			w.Line("b.PutBareVectorHeader(len(%s))", expr)
		} else {
			w.Line("b.PutVectorHeader(len(%s))", expr)
		}
		elem := fmt.Sprintf("v%d", depth)
		w.Line("for _, %s := range %s {", elem, expr)
		encodeValue(w, *t.Elem, elem, fieldErr, depth+1)
		w.Line("}")
	}
}

func (e *emitter) writeDecode(w *gen.Writer, sd *structDef) {
	w.Line("// Decode checks the constructor id and reads the body.")
	w.Line("func (o *%s) Decode(b *tlbin.Buffer) error {", sd.name)
	w.Line("if o == nil {")
	w.Line("return tlbin.ErrNilObject")
	w.Line("}")
	w.Line("if err := b.ConsumeID(%sTypeID); err != nil {", sd.name)
	w.Line("return err")
	w.Line("}")
	w.Line("return o.DecodeBare(b)")
	w.Line("}")
	w.Blank()

	w.Line("// DecodeBare reads the body without the constructor id.")
	w.Line("func (o *%s) DecodeBare(b *tlbin.Buffer) error {", sd.name)
	w.Line("if o == nil {")
	w.Line("return tlbin.ErrNilObject")
	w.Line("}")
	w.Line("*o = %s{}", sd.name)
	for _, f := range sd.fields {
		fieldErr := fieldErrorf(sd.comb, f.Name)
		switch {
		case f.IsFlags() && sd.hasOptional:
			w.Line("flags, err := b.Uint32()")
			w.Line("if err != nil {")
			w.Line("return "+fieldErr, "err")
			w.Line("}")
		case f.IsFlags():
			w.Line("if _, err := b.Uint32(); err != nil {")
			w.Line("return "+fieldErr, "err")
			w.Line("}")
		case f.Optional && isTrue(f.Type):
			w.Line("o.%s = flags&(1<<%d) != 0", f.goName, f.Bit)
		case f.Optional:
			w.Line("if flags&(1<<%d) != 0 {", f.Bit)
			assign := "o." + f.goName + " = %s"
			if !nilable(f.Type) {
				assign = "o." + f.goName + " = &%s"
			}
			decodeValue(w, f.Type, assign, fieldErr, 0)
			w.Line("}")
		default:
			decodeValue(w, f.Type, "o."+f.goName+" = %s", fieldErr, 0)
		}
	}
	w.Line("return nil")
	w.Line("}")
}

// decodeValue reads one value into a fresh variable and hands it to assign,
// a format with a single %s.
func decodeValue(w *gen.Writer, t resolve.Type, assign, fieldErr string, depth int) {
	v := fmt.Sprintf("v%d", depth)
	w.Line("{")
	switch t.Kind {
	case resolve.KindPrimitive:
		w.Line("%s, err := b.%s()", v, getter(t.Primitive))
	case resolve.KindGroup:
		w.Line("%s, err := Decode%s(b)", v, className(t.Name))
	case resolve.KindObject:
		w.Line("%s, err := DecodeObject(b)", v)
	case resolve.KindVector:
		n := fmt.Sprintf("n%d", depth)
		if t.Bare {
			w.Line("%s, err := b.BareVectorHeader()", n)
		} else {
			w.Line("%s, err := b.VectorHeader()", n)
		}
		w.Line("if err != nil {")
		w.Line("return "+fieldErr, "err")
		w.Line("}")
		w.Line("%s := make(%s, 0, %s)", v, goType(t), n)
		w.Line("for i := 0; i < %s; i++ {", n)
		decodeValue(w, *t.Elem, v+" = append("+v+", %s)", fieldErr, depth+1)
		w.Line("}")
		w.Line(assign, v)
		w.Line("}")
		return
	}
	w.Line("if err != nil {")
	w.Line("return "+fieldErr, "err")
	w.Line("}")
	w.Line(assign, v)
	w.Line("}")
}

func putter(p resolve.Primitive) string {
	switch p {
	case resolve.PrimInt:
		return "PutInt"
	case resolve.PrimLong:
		return "PutLong"
	case resolve.PrimDouble:
		return "PutDouble"
	case resolve.PrimString:
		return "PutString"
	case resolve.PrimBytes:
		return "PutBytes"
	case resolve.PrimInt128:
		return "PutInt128"
	case resolve.PrimInt256:
		return "PutInt256"
	default:
		return "PutBool"
	}
}

func getter(p resolve.Primitive) string {
	switch p {
	case resolve.PrimInt:
		return "Int"
	case resolve.PrimLong:
		return "Long"
	case resolve.PrimDouble:
		return "Double"
	case resolve.PrimString:
		return "String"
	case resolve.PrimBytes:
		return "Bytes"
	case resolve.PrimInt128:
		return "Int128"
	case resolve.PrimInt256:
		return "Int256"
	default:
		return "Bool"
	}
}

func join(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
