package apigen

import (
	"strings"

	"github.com/danmuck/tlgen/internal/gen"
)

func (e *emitter) classesFile() (gen.File, error) {
	var w gen.Writer
	e.header(&w, len(e.schema.Groups) > 0)
	for _, g := range e.schema.Groups {
		name := className(g.Name)
		var names []string
		for _, c := range g.Constructors {
			names = append(names, e.byComb[c].name)
		}
		w.Blank()
		w.Line("// %s is any value of the TL type %s: %s.", name, g.Name, strings.Join(names, ", "))
		w.Line("type %s interface {", name)
		w.Line("tlbin.Object")
		w.Line("is%s()", name)
		w.Line("}")
		w.Blank()

		w.Line("// Decode%s decodes a boxed %s, dispatching on its constructor id.", name, g.Name)
		w.Line("func Decode%s(b *tlbin.Buffer) (%s, error) {", name, name)
		w.Line("id, err := b.PeekID()")
		w.Line("if err != nil {")
		w.Line("return nil, err")
		w.Line("}")
		w.Line("switch id {")
		for _, c := range g.Constructors {
			sd := e.byComb[c]
			w.Line("case %sTypeID:", sd.name)
			w.Line("v := &%s{}", sd.name)
			w.Line("if err := v.Decode(b); err != nil {")
			w.Line("return nil, err")
			w.Line("}")
			w.Line("return v, nil")
		}
		w.Line("default:")
		w.Line("return nil, &tlbin.UnknownTypeError{ID: id, Class: %q}", g.Name)
		w.Line("}")
		w.Line("}")
	}
	return w.Render(ClassesFile)
}
