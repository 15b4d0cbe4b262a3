// Package apigen renders a resolved TL schema as Go source: one struct per
// combinator, one interface per type group and the id registry.
package apigen

import (
	"fmt"

	"github.com/danmuck/tlgen/internal/gen"
	"github.com/danmuck/tlgen/internal/tl/registry"
	"github.com/danmuck/tlgen/internal/tl/resolve"
	"github.com/danmuck/tlgen/internal/tl/schema"
	"github.com/rs/zerolog/log"
)

// Output file names.
const (
	TypesFile    = "tl_types_gen.go"
	ClassesFile  = "tl_classes_gen.go"
	RegistryFile = "tl_registry_gen.go"
)

// DefaultRuntimeImport is the import path of the encoding runtime the
// generated code calls into.
const DefaultRuntimeImport = "github.com/danmuck/tlgen/pkg/tlbin"

// Options configure the emitted package.
type Options struct {
	Package       string
	RuntimeImport string
}

func (o Options) withDefaults() Options {
	if o.Package == "" {
		o.Package = "tl"
	}
	if o.RuntimeImport == "" {
		o.RuntimeImport = DefaultRuntimeImport
	}
	return o
}

// NameCollisionError reports two schema names that map to the same Go
// identifier.
type NameCollisionError struct {
	Ident  string
	First  string
	Second string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("apigen: %s and %s both map to Go identifier %s", e.First, e.Second, e.Ident)
}

// reserved identifiers of the registry file.
var reserved = []string{"Layer", "TypesMap", "NewObject", "DecodeObject", "constructors"}

type emitter struct {
	opts    Options
	schema  *resolve.Schema
	reg     *registry.Registry
	structs []*structDef
	byComb  map[*resolve.Combinator]*structDef
}

// Generate renders the types, classes and registry files. Output depends on
// the inputs only, so identical schemas give byte-identical files.
func Generate(s *resolve.Schema, reg *registry.Registry, opts Options) ([]gen.File, error) {
	e := &emitter{
		opts:   opts.withDefaults(),
		schema: s,
		reg:    reg,
		byComb: make(map[*resolve.Combinator]*structDef),
	}
	if err := e.plan(); err != nil {
		return nil, err
	}

	var files []gen.File
	for _, render := range []func() (gen.File, error){e.typesFile, e.classesFile, e.registryFile} {
		f, err := render()
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	log.Debug().
		Int("structs", len(e.structs)).
		Int("classes", len(s.Groups)).
		Int("files", len(files)).
		Msg("apigen.Generate")
	return files, nil
}

// plan names every struct, field and class and rejects collisions.
func (e *emitter) plan() error {
	idents := make(map[string]string)
	claim := func(ident, owner string) error {
		if prev, ok := idents[ident]; ok {
			return &NameCollisionError{Ident: ident, First: prev, Second: owner}
		}
		idents[ident] = owner
		return nil
	}
	for _, r := range reserved {
		idents[r] = "registry"
	}
	for _, g := range e.schema.Groups {
		name := className(g.Name)
		if err := claim(name, g.Name); err != nil {
			return err
		}
		if err := claim("Decode"+name, g.Name); err != nil {
			return err
		}
	}
	for _, c := range e.reg.Entries() {
		sd := newStructDef(c)
		for _, ident := range []string{sd.name, sd.name + "TypeID", "New" + sd.name} {
			if err := claim(ident, c.FullName()); err != nil {
				return err
			}
		}
		e.structs = append(e.structs, sd)
		e.byComb[c] = sd
	}
	return nil
}

// header writes the file preamble. The runtime import is left out of files
// that would not reference it.
func (e *emitter) header(w *gen.Writer, runtime bool) {
	w.Line("%s", gen.Header)
	w.Blank()
	w.Line("package %s", e.opts.Package)
	if !runtime {
		return
	}
	w.Blank()
	w.Line("import (")
	w.Line("tlbin %q", e.opts.RuntimeImport)
	w.Line(")")
}

func className(group string) string { return gen.GoName(group) + "Class" }

func isType(c *resolve.Combinator) bool { return c.Kind == schema.KindType }
