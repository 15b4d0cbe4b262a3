package apigen

import (
	"fmt"
	"strings"

	"github.com/danmuck/tlgen/internal/gen"
	"github.com/danmuck/tlgen/internal/tl/resolve"
)

// methods every generated struct carries; fields may not reuse them.
var methodNames = map[string]bool{
	"TypeID":     true,
	"TypeName":   true,
	"Encode":     true,
	"EncodeBare": true,
	"Decode":     true,
	"DecodeBare": true,
}

type structDef struct {
	comb   *resolve.Combinator
	name   string
	fields []fieldDef
	// hasOptional is set when the flag word carries at least one bit.
	hasOptional bool
}

type fieldDef struct {
	resolve.Field
	goName string
	param  string
	setter string
}

func newStructDef(c *resolve.Combinator) *structDef {
	sd := &structDef{comb: c, name: gen.GoName(c.FullName())}
	if !isType(c) {
		sd.name += "Request"
	}

	taken := make(map[string]bool, len(methodNames))
	for m := range methodNames {
		taken[m] = true
	}
	for _, f := range c.Fields {
		if f.Optional {
			sd.hasOptional = true
			taken["Set"+gen.GoName(f.Name)] = true
		}
	}
	params := make(map[string]bool)
	for _, f := range c.Fields {
		fd := fieldDef{Field: f}
		if f.IsFlags() {
			sd.fields = append(sd.fields, fd)
			continue
		}
		fd.goName = gen.GoName(f.Name)
		if f.Optional {
			fd.setter = "Set" + fd.goName
		}
		for taken[fd.goName] {
			fd.goName += "Field"
		}
		taken[fd.goName] = true
		if !f.Optional {
			fd.param = gen.LocalName(f.Name)
			for params[fd.param] {
				fd.param += "_"
			}
			params[fd.param] = true
		}
		sd.fields = append(sd.fields, fd)
	}
	return sd
}

// goType maps a resolved type to its Go spelling.
func goType(t resolve.Type) string {
	switch t.Kind {
	case resolve.KindPrimitive:
		switch t.Primitive {
		case resolve.PrimInt:
			return "int32"
		case resolve.PrimLong:
			return "int64"
		case resolve.PrimDouble:
			return "float64"
		case resolve.PrimString:
			return "string"
		case resolve.PrimBytes:
			return "[]byte"
		case resolve.PrimInt128:
			return "tlbin.Int128"
		case resolve.PrimInt256:
			return "tlbin.Int256"
		default:
			return "bool"
		}
	case resolve.KindGroup:
		return className(t.Name)
	case resolve.KindVector:
		return "[]" + goType(*t.Elem)
	default:
		return "tlbin.Object"
	}
}

// nilable types encode absence as nil and need no pointer when optional.
func nilable(t resolve.Type) bool {
	switch t.Kind {
	case resolve.KindGroup, resolve.KindObject, resolve.KindVector:
		return true
	case resolve.KindPrimitive:
		return t.Primitive == resolve.PrimBytes
	}
	return false
}

func isTrue(t resolve.Type) bool {
	return t.Kind == resolve.KindPrimitive && t.Primitive == resolve.PrimTrue
}

func (f fieldDef) goType() string {
	if f.Optional && !isTrue(f.Type) && !nilable(f.Type) {
		return "*" + goType(f.Type)
	}
	return goType(f.Type)
}

// present is the Go condition for an optional field being set.
func (f fieldDef) present() string {
	if isTrue(f.Type) {
		return "o." + f.goName
	}
	return "o." + f.goName + " != nil"
}

// value is the expression holding a set field's value.
func (f fieldDef) value() string {
	if f.Optional && !nilable(f.Type) {
		return "*o." + f.goName
	}
	return "o." + f.goName
}

// signature renders the combinator the way a schema line declares it.
func signature(c *resolve.Combinator) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s#%08x", c.FullName(), c.ID)
	for _, p := range c.Params {
		fmt.Fprintf(&sb, " {%s:Type}", p)
	}
	flagName := ""
	for _, f := range c.Fields {
		if f.IsFlags() {
			flagName = f.Name
			break
		}
	}
	for _, f := range c.Fields {
		switch {
		case f.IsFlags():
			fmt.Fprintf(&sb, " %s:#", f.Name)
		case f.Optional:
			fmt.Fprintf(&sb, " %s:%s.%d?%s", f.Name, flagName, f.Bit, f.Type)
		default:
			fmt.Fprintf(&sb, " %s:%s", f.Name, f.Type)
		}
	}
	result := c.Result.String()
	if c.Result.Kind == resolve.KindObject && c.Result.Name != "" {
		result = c.Result.Name
	}
	fmt.Fprintf(&sb, " = %s", result)
	return sb.String()
}
