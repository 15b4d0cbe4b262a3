package tlbin

import (
	"errors"
	"fmt"
)

var (
	ErrTruncated     = errors.New("tlbin: truncated data")
	ErrInvalidLength = errors.New("tlbin: invalid length")
	ErrInvalidBool   = errors.New("tlbin: invalid bool value")
	ErrNilObject     = errors.New("tlbin: nil object")
)

// UnexpectedIDError reports a constructor id that differs from the one a
// decoder was asked to read.
type UnexpectedIDError struct {
	Expected uint32
	Got      uint32
}

func (e *UnexpectedIDError) Error() string {
	return fmt.Sprintf("tlbin: unexpected id %#08x (want %#08x)", e.Got, e.Expected)
}

// UnknownTypeError reports a constructor id that no registry entry claims.
type UnknownTypeError struct {
	ID    uint32
	Class string
}

func (e *UnknownTypeError) Error() string {
	if e.Class == "" {
		return fmt.Sprintf("tlbin: unknown type id %#08x", e.ID)
	}
	return fmt.Sprintf("tlbin: unknown type id %#08x for %s", e.ID, e.Class)
}

// FieldError attaches the combinator and field name to a decode or encode
// failure.
type FieldError struct {
	Type  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("tlbin: %s.%s: %v", e.Type, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
