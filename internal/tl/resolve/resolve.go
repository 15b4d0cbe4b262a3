package resolve

import (
	"hash/crc32"

	"github.com/danmuck/tlgen/internal/tl/schema"
	"github.com/rs/zerolog/log"
)

// maxFlagBit is the highest bit of the 32-bit flag word.
const maxFlagBit = 31

// Options tune resolution. The zero value verifies declared ids.
type Options struct {
	// TrustDeclaredIDs skips the check of declared ids against the derived
	// checksum, for schemas whose ids were assigned by hand.
	TrustDeclaredIDs bool
}

// DeriveID returns the CRC-32 (IEEE) of the canonical signature.
func DeriveID(def schema.Definition) uint32 {
	return crc32.ChecksumIEEE([]byte(def.Canonical()))
}

type resolver struct {
	file   *schema.File
	opts   Options
	out    *Schema
	byName map[string]schema.Definition
}

// Resolve builds the typed schema from parsed definitions. It fails on the
// first dangling type, flag misuse or id mismatch.
func Resolve(file *schema.File, opts Options) (*Schema, error) {
	r := &resolver{
		file: file,
		opts: opts,
		out: &Schema{
			Layer:  file.Layer,
			groups: make(map[string]*TypeGroup),
		},
		byName: make(map[string]schema.Definition),
	}

	// Pass 1: names and result-type groups.
	defs := make([]schema.Definition, 0, len(file.Definitions))
	skipped := 0
	for _, def := range file.Definitions {
		if prev, ok := r.byName[def.FullName()]; ok {
			return nil, &DuplicateNameError{Name: def.FullName(), FirstLine: prev.Line, SecondLine: def.Line}
		}
		r.byName[def.FullName()] = def
		if def.Kind == schema.KindType && r.isAlias(def.Result.Name) {
			skipped++
			continue
		}
		if def.Kind == schema.KindType {
			if def.Result.Param != nil || def.Result.Bare {
				return nil, &UnresolvedTypeError{Combinator: def.FullName(), TypeName: def.Result.String()}
			}
			r.group(def.Result.Name)
		}
		defs = append(defs, def)
	}

	// Pass 2: fields, flags, result types and ids.
	for _, def := range defs {
		c, err := r.combinator(def)
		if err != nil {
			return nil, err
		}
		r.out.Combinators = append(r.out.Combinators, c)
		if c.Kind == schema.KindType {
			g := r.out.groups[c.Result.Name]
			g.Constructors = append(g.Constructors, c)
		}
	}

	log.Debug().
		Int("combinators", len(r.out.Combinators)).
		Int("groups", len(r.out.Groups)).
		Int("builtin", skipped).
		Msg("resolve.Resolve")
	return r.out, nil
}

func (r *resolver) isAlias(name string) bool {
	_, ok := r.file.Aliases[name]
	return ok
}

func (r *resolver) group(name string) *TypeGroup {
	if g, ok := r.out.groups[name]; ok {
		return g
	}
	g := &TypeGroup{Name: name}
	r.out.groups[name] = g
	r.out.Groups = append(r.out.Groups, g)
	return g
}

func (r *resolver) combinator(def schema.Definition) (*Combinator, error) {
	c := &Combinator{
		Namespace: def.Namespace,
		Name:      def.Name,
		Kind:      def.Kind,
		Canonical: def.Canonical(),
		File:      def.File,
		Line:      def.Line,
	}
	params := make(map[string]bool, len(def.Params))
	for _, p := range def.Params {
		params[p.Name] = true
		c.Params = append(c.Params, p.Name)
	}

	fields, err := r.fields(def, params)
	if err != nil {
		return nil, err
	}
	c.Fields = fields

	if def.Kind == schema.KindType {
		c.Result = Type{Kind: KindGroup, Name: def.Result.Name}
	} else {
		res, ok := r.resolveRef(def.Result, params)
		if !ok {
			return nil, &UnresolvedTypeError{Combinator: def.FullName(), TypeName: def.Result.String()}
		}
		c.Result = res
	}

	derived := DeriveID(def)
	c.ID = derived
	if def.HasID {
		c.ID = def.ID
		c.Declared = true
		if def.ID != derived && !r.opts.TrustDeclaredIDs {
			return nil, &IDMismatchError{
				Combinator: def.FullName(),
				Declared:   def.ID,
				Derived:    derived,
				Canonical:  c.Canonical,
			}
		}
	}
	return c, nil
}

func (r *resolver) fields(def schema.Definition, params map[string]bool) ([]Field, error) {
	flagWord := ""
	for _, a := range def.Args {
		if !a.Type.IsFlagWord() {
			continue
		}
		if flagWord != "" {
			return nil, &FlagError{Combinator: def.FullName(), Field: a.Name, Reason: "second flag word (only one is allowed)"}
		}
		flagWord = a.Name
	}
	inject := flagWord == "" && def.HasOptional()

	// active is the flag word already laid out before the current field.
	active := ""
	out := make([]Field, 0, len(def.Args)+1)
	for _, a := range def.Args {
		if a.Type.IsFlagWord() {
			active = a.Name
			out = append(out, Field{Name: a.Name, Type: Type{Kind: KindFlags}})
			continue
		}
		if a.Optional() && inject {
			flagWord = a.Cond.Flag
			active = flagWord
			out = append(out, Field{Name: flagWord, Type: Type{Kind: KindFlags}, Implicit: true})
			inject = false
		}

		t, ok := r.resolveRef(a.Type, params)
		if !ok {
			return nil, &UnresolvedTypeError{Combinator: def.FullName(), Field: a.Name, TypeName: a.Type.String()}
		}
		f := Field{Name: a.Name, Type: t}
		if a.Optional() {
			if a.Cond.Flag != flagWord {
				return nil, &FlagError{Combinator: def.FullName(), Field: a.Name, Reason: "unknown flag word " + a.Cond.Flag}
			}
			if active == "" {
				return nil, &FlagError{Combinator: def.FullName(), Field: a.Name, Reason: "optional field precedes its flag word"}
			}
			if a.Cond.Bit > maxFlagBit {
				return nil, &FlagError{Combinator: def.FullName(), Field: a.Name, Reason: "flag bit out of range"}
			}
			f.Optional = true
			f.Bit = a.Cond.Bit
		} else if t.Kind == KindPrimitive && t.Primitive == PrimTrue {
			return nil, &FlagError{Combinator: def.FullName(), Field: a.Name, Reason: "true is only valid behind a flag bit"}
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *resolver) resolveRef(ref schema.TypeRef, params map[string]bool) (Type, bool) {
	if ref.Generic {
		if !params[ref.Name] {
			return Type{}, false
		}
		return Type{Kind: KindObject, Name: ref.Name}, true
	}
	if ref.Param != nil {
		elem, ok := r.resolveRef(*ref.Param, params)
		if !ok || elem.Kind == KindFlags || (elem.Kind == KindPrimitive && elem.Primitive == PrimTrue) {
			return Type{}, false
		}
		return Type{Kind: KindVector, Elem: &elem, Bare: ref.Name == "vector"}, true
	}
	if ref.IsFlagWord() {
		return Type{}, false
	}
	name := ref.Name
	if prim, ok := r.file.Aliases[name]; ok {
		name = prim
	}
	if p, ok := primitiveNames[name]; ok {
		return Type{Kind: KindPrimitive, Primitive: p}, true
	}
	if params[name] {
		return Type{Kind: KindObject, Name: name}, true
	}
	if name == "Object" {
		return Type{Kind: KindObject}, true
	}
	if _, ok := r.out.groups[name]; ok {
		return Type{Kind: KindGroup, Name: name}, true
	}
	return Type{}, false
}
