package schema

import (
	"strconv"
	"strings"
)

// HasFlagWord reports whether a `name:#` field is declared.
func (d Definition) HasFlagWord() bool {
	for _, a := range d.Args {
		if a.Type.IsFlagWord() {
			return true
		}
	}
	return false
}

// HasOptional reports whether any field is gated by a flag bit.
func (d Definition) HasOptional() bool {
	for _, a := range d.Args {
		if a.Optional() {
			return true
		}
	}
	return false
}

// Canonical returns the signature text the constructor id checksum is
// computed over: the id is dropped, generic braces removed, presence-only
// `?true` fields omitted and vector brackets flattened. A flag word that is
// only implied by optional fields is spelled out before the first of them,
// so `foo a:flags.0?int = Foo` and `foo flags:# a:flags.0?int = Foo` share
// one id.
func (d Definition) Canonical() string {
	var sb strings.Builder
	sb.WriteString(d.FullName())
	for _, p := range d.Params {
		sb.WriteByte(' ')
		sb.WriteString(p.Name)
		sb.WriteByte(':')
		sb.WriteString(p.Type)
	}
	inject := d.HasOptional() && !d.HasFlagWord()
	for _, a := range d.Args {
		if inject && a.Optional() {
			sb.WriteString(" " + a.Cond.Flag + ":" + FlagWordType)
			inject = false
		}
		if a.Optional() && a.Type.Name == "true" {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteByte(':')
		if a.Cond != nil {
			sb.WriteString(a.Cond.Flag + "." + strconv.Itoa(a.Cond.Bit) + "?")
		}
		sb.WriteString(a.Type.canonical())
	}
	sb.WriteString(" = ")
	sb.WriteString(d.Result.canonical())
	return sb.String()
}
