package resolve

import "fmt"

// UnresolvedTypeError reports a dangling type reference. Field is empty when
// the result type failed to resolve.
type UnresolvedTypeError struct {
	Combinator string
	Field      string
	TypeName   string
}

func (e *UnresolvedTypeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("resolve: %s: unresolved result type %q", e.Combinator, e.TypeName)
	}
	return fmt.Sprintf("resolve: %s.%s: unresolved type %q", e.Combinator, e.Field, e.TypeName)
}

// IDMismatchError reports a declared id that differs from the derived one.
type IDMismatchError struct {
	Combinator string
	Declared   uint32
	Derived    uint32
	Canonical  string
}

func (e *IDMismatchError) Error() string {
	return fmt.Sprintf(
		"resolve: %s: declared id %#08x does not match derived id %#08x of %q",
		e.Combinator,
		e.Declared,
		e.Derived,
		e.Canonical,
	)
}

// FlagError reports an invalid flag word or flag bit.
type FlagError struct {
	Combinator string
	Field      string
	Reason     string
}

func (e *FlagError) Error() string {
	return fmt.Sprintf("resolve: %s.%s: %s", e.Combinator, e.Field, e.Reason)
}

// DuplicateNameError reports two definitions sharing a namespaced name.
type DuplicateNameError struct {
	Name       string
	FirstLine  int
	SecondLine int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("resolve: %s defined twice (lines %d and %d)", e.Name, e.FirstLine, e.SecondLine)
}
