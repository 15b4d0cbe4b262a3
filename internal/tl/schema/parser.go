package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	sectionTypes     = "---types---"
	sectionFunctions = "---functions---"
	layerMarker      = "LAYER"
)

// builtinAliases are the boxed names of primitive types. Core declarations
// such as `int ? = Int;` add to this set.
var builtinAliases = map[string]string{
	"Int":    "int",
	"Long":   "long",
	"Double": "double",
	"String": "string",
	"Bytes":  "bytes",
	"Int128": "int128",
	"Int256": "int256",
	"Bool":   "Bool",
	"True":   "true",
	"Vector": "Vector",
}

type parser struct {
	file  *File
	kind  Kind
	stmt  strings.Builder
	start int
}

// Parse reads one schema source. name is used in diagnostics only.
func Parse(name string, src []byte) (*File, error) {
	p := &parser{file: &File{Name: name, Aliases: make(map[string]string)}}
	for k, v := range builtinAliases {
		p.file.Aliases[k] = v
	}

	lines := strings.Split(string(src), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))

		if comment, ok := strings.CutPrefix(line, "//"); ok {
			p.readComment(comment)
			continue
		}
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}
		switch line {
		case sectionTypes:
			if err := p.setSection(KindType, lineNo); err != nil {
				return nil, err
			}
			continue
		case sectionFunctions:
			if err := p.setSection(KindFunction, lineNo); err != nil {
				return nil, err
			}
			continue
		}
		if strings.HasPrefix(line, "---") {
			return nil, p.errorf(lineNo, "unknown section marker %q", line)
		}

		if p.stmt.Len() == 0 {
			p.start = lineNo
		} else {
			p.stmt.WriteByte(' ')
		}
		p.stmt.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			continue
		}
		if err := p.flush(); err != nil {
			return nil, err
		}
	}
	if p.stmt.Len() > 0 {
		return nil, p.errorf(p.start, "unterminated definition (missing ';')")
	}

	log.Debug().
		Str("file", name).
		Int("definitions", len(p.file.Definitions)).
		Int("layer", p.file.Layer).
		Msg("schema.Parse")
	return p.file, nil
}

// Merge concatenates parsed sources in order. The highest layer wins.
func Merge(files ...*File) *File {
	out := &File{Aliases: make(map[string]string)}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if f == nil {
			continue
		}
		names = append(names, f.Name)
		if f.Layer > out.Layer {
			out.Layer = f.Layer
		}
		out.Definitions = append(out.Definitions, f.Definitions...)
		for k, v := range f.Aliases {
			out.Aliases[k] = v
		}
	}
	out.Name = strings.Join(names, ",")
	return out
}

func (p *parser) setSection(kind Kind, line int) error {
	if p.stmt.Len() > 0 {
		return p.errorf(p.start, "unterminated definition before section marker on line %d", line)
	}
	p.kind = kind
	return nil
}

func (p *parser) readComment(comment string) {
	fields := strings.Fields(comment)
	if len(fields) != 2 || !strings.EqualFold(fields[0], layerMarker) {
		return
	}
	if layer, err := strconv.Atoi(fields[1]); err == nil {
		p.file.Layer = layer
	}
}

func (p *parser) flush() error {
	stmt := strings.TrimSpace(strings.TrimSuffix(p.stmt.String(), ";"))
	p.stmt.Reset()

	if isCoreDeclaration(stmt) {
		p.readCoreDeclaration(stmt)
		return nil
	}
	def, err := parseDefinition(stmt)
	if err != nil {
		return p.errorf(p.start, "%s", err.Error())
	}
	def.Kind = p.kind
	def.File = p.file.Name
	def.Line = p.start
	p.file.Definitions = append(p.file.Definitions, def)
	return nil
}

// isCoreDeclaration detects the builtin lines of the TL prelude: the
// `int ? = Int` form and the `vector#1cb5c415 {t:Type} # [ t ] = Vector t`
// form. Any other use of those tokens is left to parseDefinition.
func isCoreDeclaration(stmt string) bool {
	lhs, rhs, ok := strings.Cut(stmt, "=")
	if !ok {
		return false
	}
	head, result := strings.Fields(lhs), strings.Fields(rhs)
	switch {
	case len(head) == 2 && head[1] == "?":
		return len(result) == 1
	case len(head) == 6 && head[2] == "#" && head[3] == "[" && head[5] == "]":
		if !strings.HasPrefix(head[1], "{") {
			return false
		}
		param, err := parseGenericParam(head[1])
		return err == nil && head[4] == param.Name && len(result) == 2 && result[1] == param.Name
	}
	return false
}

func (p *parser) readCoreDeclaration(stmt string) {
	lhs, rhs, ok := strings.Cut(stmt, "=")
	if !ok {
		return
	}
	head := strings.Fields(lhs)
	result := strings.Fields(rhs)
	if len(head) == 0 || len(result) == 0 {
		return
	}
	name, _, _ := strings.Cut(head[0], "#")
	if _, known := p.file.Aliases[result[0]]; !known {
		p.file.Aliases[result[0]] = name
	}
}

func parseDefinition(stmt string) (Definition, error) {
	lhs, rhs, ok := strings.Cut(stmt, "=")
	if !ok {
		return Definition{}, errors.New("missing '=' before result type")
	}
	if strings.Contains(rhs, "=") {
		return Definition{}, errors.New("unexpected second '='")
	}
	head := strings.Fields(lhs)
	if len(head) == 0 {
		return Definition{}, errors.New("missing combinator name")
	}

	var def Definition
	if err := parseHead(head[0], &def); err != nil {
		return Definition{}, err
	}
	for _, tok := range head[1:] {
		if strings.HasPrefix(tok, "{") {
			param, err := parseGenericParam(tok)
			if err != nil {
				return Definition{}, err
			}
			def.Params = append(def.Params, param)
			continue
		}
		arg, err := parseArg(tok)
		if err != nil {
			return Definition{}, err
		}
		def.Args = append(def.Args, arg)
	}

	result, err := parseResult(strings.TrimSpace(rhs))
	if err != nil {
		return Definition{}, err
	}
	def.Result = result
	return def, nil
}

func parseHead(tok string, def *Definition) error {
	name, id, hasID := strings.Cut(tok, "#")
	if hasID {
		if id == "" || len(id) > 8 {
			return fmt.Errorf("invalid constructor id %q", id)
		}
		v, err := strconv.ParseUint(id, 16, 32)
		if err != nil {
			return fmt.Errorf("invalid constructor id %q", id)
		}
		def.ID = uint32(v)
		def.HasID = true
	}
	ns, local, err := splitName(name)
	if err != nil {
		return err
	}
	if !isLower(local[0]) {
		return fmt.Errorf("combinator name must start with a lower-case letter: %q", name)
	}
	def.Namespace = ns
	def.Name = local
	return nil
}

func parseGenericParam(tok string) (GenericParam, error) {
	if !strings.HasSuffix(tok, "}") {
		return GenericParam{}, fmt.Errorf("unterminated generic parameter %q", tok)
	}
	name, typ, ok := strings.Cut(tok[1:len(tok)-1], ":")
	if !ok || !isIdent(name) || typ != "Type" {
		return GenericParam{}, fmt.Errorf("invalid generic parameter %q", tok)
	}
	return GenericParam{Name: name, Type: typ}, nil
}

func parseArg(tok string) (Arg, error) {
	name, typ, ok := strings.Cut(tok, ":")
	if !ok {
		return Arg{}, fmt.Errorf("field %q has no type", tok)
	}
	if !isIdent(name) {
		return Arg{}, fmt.Errorf("invalid field name %q", name)
	}
	arg := Arg{Name: name}
	if cond, rest, ok := strings.Cut(typ, "?"); ok {
		c, err := parseCond(cond)
		if err != nil {
			return Arg{}, err
		}
		arg.Cond = &c
		typ = rest
	}
	ref, err := parseTypeRef(typ)
	if err != nil {
		return Arg{}, err
	}
	if ref.IsFlagWord() && arg.Cond != nil {
		return Arg{}, fmt.Errorf("flag word %q cannot be optional", name)
	}
	arg.Type = ref
	return arg, nil
}

func parseCond(s string) (Cond, error) {
	flag, bit, ok := strings.Cut(s, ".")
	if !ok || !isIdent(flag) {
		return Cond{}, fmt.Errorf("invalid flag condition %q", s)
	}
	n, err := strconv.Atoi(bit)
	if err != nil || n < 0 {
		return Cond{}, fmt.Errorf("invalid flag bit %q", bit)
	}
	return Cond{Flag: flag, Bit: n}, nil
}

func parseTypeRef(s string) (TypeRef, error) {
	if s == "" {
		return TypeRef{}, errors.New("empty type")
	}
	if s == FlagWordType {
		return TypeRef{Name: FlagWordType}, nil
	}
	var ref TypeRef
	if rest, ok := strings.CutPrefix(s, "!"); ok {
		if !isIdent(rest) {
			return TypeRef{}, fmt.Errorf("invalid generic reference %q", s)
		}
		return TypeRef{Name: rest, Generic: true}, nil
	}
	if rest, ok := strings.CutPrefix(s, "%"); ok {
		ref.Bare = true
		s = rest
	}
	if open := strings.IndexByte(s, '<'); open >= 0 {
		if !strings.HasSuffix(s, ">") {
			return TypeRef{}, fmt.Errorf("unbalanced '<' in type %q", s)
		}
		param, err := parseTypeRef(s[open+1 : len(s)-1])
		if err != nil {
			return TypeRef{}, err
		}
		ref.Param = &param
		s = s[:open]
		if s != "Vector" && s != "vector" {
			return TypeRef{}, fmt.Errorf("only Vector takes a type parameter, got %q", s)
		}
	} else if strings.ContainsAny(s, ">") {
		return TypeRef{}, fmt.Errorf("unbalanced '>' in type %q", s)
	}
	if _, _, err := splitName(s); err != nil {
		return TypeRef{}, err
	}
	ref.Name = s
	if s == "vector" {
		ref.Bare = true
	}
	return ref, nil
}

// parseResult accepts `Type`, `Vector<T>` and the prelude spelling `Vector t`.
func parseResult(s string) (TypeRef, error) {
	if s == "" {
		return TypeRef{}, errors.New("missing result type")
	}
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		ref, err := parseTypeRef(fields[0])
		if err != nil {
			return TypeRef{}, err
		}
		if ref.Generic || ref.IsFlagWord() {
			return TypeRef{}, fmt.Errorf("invalid result type %q", s)
		}
		return ref, nil
	case 2:
		param, err := parseTypeRef(fields[1])
		if err != nil {
			return TypeRef{}, err
		}
		if fields[0] != "Vector" {
			return TypeRef{}, fmt.Errorf("invalid result type %q", s)
		}
		return TypeRef{Name: "Vector", Param: &param}, nil
	default:
		return TypeRef{}, fmt.Errorf("invalid result type %q", s)
	}
}

func splitName(name string) (string, string, error) {
	ns, local, ok := strings.Cut(name, ".")
	if !ok {
		local, ns = ns, ""
	}
	if (ok && !isIdent(ns)) || !isIdent(local) {
		return "", "", fmt.Errorf("invalid name %q", name)
	}
	return ns, local, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if !(isLetter || isDigit || c == '_') {
			return false
		}
	}
	return true
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

func (p *parser) errorf(line int, format string, args ...any) error {
	return &SyntaxError{File: p.file.Name, Line: line, Reason: fmt.Sprintf(format, args...)}
}
