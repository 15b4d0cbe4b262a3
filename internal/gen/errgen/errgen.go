// Package errgen renders grouped RPC error classes as Go source: code
// constants, errors.Is sentinels, a static classification table and the
// Classify entry point.
package errgen

import (
	"strconv"
	"strings"

	"github.com/danmuck/tlgen/internal/gen"
	"github.com/danmuck/tlgen/pkg/rpcerr"
	"github.com/rs/zerolog/log"
)

// File is the name of the emitted file.
const File = "errors_gen.go"

// DefaultRuntimeImport is the import path of the classifier runtime.
const DefaultRuntimeImport = "github.com/danmuck/tlgen/pkg/rpcerr"

// Options configure the emitted package.
type Options struct {
	Package       string
	RuntimeImport string
}

type sentinel struct {
	ident string
	code  int
	class string
	id    string
}

// Generate renders classes, which must be in ascending code order as
// errtable.Group returns them. The classes are validated again so a bad
// table never reaches the generated MustTable call.
func Generate(classes []rpcerr.Class, opts Options) (gen.File, error) {
	if opts.Package == "" {
		opts.Package = "rpcerrors"
	}
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = DefaultRuntimeImport
	}
	if _, err := rpcerr.NewTable(classes...); err != nil {
		return gen.File{}, err
	}

	taken := map[string]bool{"Classify": true, "Table": true, "table": true}
	claim := func(base string, code int) string {
		ident := base
		if taken[ident] {
			ident = base + strconv.Itoa(code)
		}
		for n := 2; taken[ident]; n++ {
			ident = base + strconv.Itoa(code) + "_" + strconv.Itoa(n)
		}
		taken[ident] = true
		return ident
	}

	var classSentinels, entrySentinels []sentinel
	codeConsts := make([]string, len(classes))
	for i, c := range classes {
		codeConsts[i] = claim("Code"+gen.GoName(c.Name), c.Code)
		classSentinels = append(classSentinels, sentinel{
			ident: claim("Err"+gen.GoName(c.Name), c.Code),
			code:  c.Code,
			class: c.Name,
		})
	}
	for _, c := range classes {
		for _, e := range c.Entries {
			entrySentinels = append(entrySentinels, sentinel{
				ident: claim("Err"+entryName(e.ID), c.Code),
				code:  c.Code,
				class: c.Name,
				id:    e.ID,
			})
		}
	}

	var w gen.Writer
	w.Line("%s", gen.Header)
	w.Blank()
	w.Line("package %s", opts.Package)
	w.Blank()
	w.Line("import (")
	w.Line("rpcerr %q", opts.RuntimeImport)
	w.Line(")")

	if len(classes) > 0 {
		w.Blank()
		w.Line("// RPC error codes.")
		w.Line("const (")
		for i, c := range classes {
			w.Line("%s = %d", codeConsts[i], c.Code)
		}
		w.Line(")")
		w.Blank()
		w.Line("// Class sentinels match every error of their code with errors.Is.")
		writeSentinels(&w, classSentinels)
	}
	if len(entrySentinels) > 0 {
		w.Blank()
		w.Line("// Entry sentinels match one table entry with errors.Is.")
		writeSentinels(&w, entrySentinels)
	}

	w.Blank()
	w.Line("var table = rpcerr.MustTable(")
	for _, c := range classes {
		w.Line("rpcerr.Class{")
		w.Line("Code: %d,", c.Code)
		w.Line("Name: %q,", c.Name)
		if c.Description != "" {
			w.Line("Description: %q,", c.Description)
		}
		if len(c.Entries) > 0 {
			w.Line("Entries: []rpcerr.Entry{")
			for _, e := range c.Entries {
				if e.Description == "" {
					w.Line("{ID: %q},", e.ID)
					continue
				}
				w.Line("{ID: %q, Description: %q},", e.ID, e.Description)
			}
			w.Line("},")
		}
		w.Line("},")
	}
	w.Line(")")
	w.Blank()
	w.Line("// Classify maps an RPC error code and message to a classified error.")
	w.Line("// Exact names win over patterns and the longest pattern prefix wins;")
	w.Line("// unknown messages get the generic error of their code.")
	w.Line("func Classify(code int, message string) *rpcerr.Error {")
	w.Line("return table.Classify(code, message)")
	w.Line("}")
	w.Blank()
	w.Line("// Table returns the classifier behind Classify.")
	w.Line("func Table() *rpcerr.Table { return table }")

	f, err := w.Render(File)
	if err != nil {
		return gen.File{}, err
	}
	log.Debug().
		Int("classes", len(classes)).
		Int("entries", len(entrySentinels)).
		Msg("errgen.Generate")
	return f, nil
}

func writeSentinels(w *gen.Writer, sentinels []sentinel) {
	w.Line("var (")
	for _, s := range sentinels {
		if s.id == "" {
			w.Line("%s = &rpcerr.Error{Code: %d, Class: %q}", s.ident, s.code, s.class)
			continue
		}
		w.Line("%s = &rpcerr.Error{Code: %d, Class: %q, ID: %q}", s.ident, s.code, s.class, s.id)
	}
	w.Line(")")
}

// entryName drops the placeholder token, so FLOOD_WAIT_X becomes FloodWait.
func entryName(id string) string {
	var kept []string
	for _, tok := range strings.Split(id, "_") {
		if tok != rpcerr.Placeholder {
			kept = append(kept, tok)
		}
	}
	if len(kept) == 0 {
		return gen.GoName(id)
	}
	return gen.GoName(strings.Join(kept, "_"))
}
