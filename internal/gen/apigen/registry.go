package apigen

import (
	"fmt"

	"github.com/danmuck/tlgen/internal/gen"
)

func (e *emitter) registryFile() (gen.File, error) {
	var w gen.Writer
	e.header(&w, true)
	w.Blank()
	w.Line("// Layer is the schema layer the types were generated from.")
	w.Line("const Layer = %d", e.schema.Layer)
	w.Blank()

	w.Line("// constructors maps every constructor id to a factory. It is never")
	w.Line("// modified after initialization.")
	w.Line("var constructors = map[uint32]func() tlbin.Object{")
	for _, sd := range e.structs {
		w.Line("%sTypeID: func() tlbin.Object { return &%s{} },", sd.name, sd.name)
	}
	w.Line("}")
	w.Blank()

	w.Line("// TypesMap returns the schema name of every known constructor id.")
	w.Line("func TypesMap() map[uint32]string {")
	w.Line("return map[uint32]string{")
	for _, sd := range e.structs {
		w.Line("%sTypeID: %q,", sd.name, fmt.Sprintf("%s#%08x", sd.comb.FullName(), sd.comb.ID))
	}
	w.Line("}")
	w.Line("}")
	w.Blank()

	w.Line("// NewObject returns an empty object for id.")
	w.Line("func NewObject(id uint32) (tlbin.Object, bool) {")
	w.Line("f, ok := constructors[id]")
	w.Line("if !ok {")
	w.Line("return nil, false")
	w.Line("}")
	w.Line("return f(), true")
	w.Line("}")
	w.Blank()

	w.Line("// DecodeObject decodes any boxed object, dispatching on its constructor id.")
	w.Line("func DecodeObject(b *tlbin.Buffer) (tlbin.Object, error) {")
	w.Line("id, err := b.PeekID()")
	w.Line("if err != nil {")
	w.Line("return nil, err")
	w.Line("}")
	w.Line("obj, ok := NewObject(id)")
	w.Line("if !ok {")
	w.Line("return nil, &tlbin.UnknownTypeError{ID: id}")
	w.Line("}")
	w.Line("if err := obj.Decode(b); err != nil {")
	w.Line("return nil, err")
	w.Line("}")
	w.Line("return obj, nil")
	w.Line("}")
	return w.Render(RegistryFile)
}
