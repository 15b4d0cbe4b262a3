package rpcerr

import (
	"fmt"
	"sort"
)

// Entry is one named error within a class.
type Entry struct {
	ID          string
	Description string
}

// Class groups the entries sharing one numeric code.
type Class struct {
	Code        int
	Name        string
	Description string
	Entries     []Entry
}

// DuplicateNameError reports an entry that collides with another entry of the
// same code: an equal name, an equal pattern, or an exact name a pattern
// would also match.
type DuplicateNameError struct {
	Code  int
	Name  string
	Other string
}

func (e *DuplicateNameError) Error() string {
	if e.Name == e.Other {
		return fmt.Sprintf("rpcerr: code %d: duplicate error name %q", e.Code, e.Name)
	}
	return fmt.Sprintf("rpcerr: code %d: error name %q overlaps %q", e.Code, e.Name, e.Other)
}

type patternEntry struct {
	entry   Entry
	pattern Pattern
}

type class struct {
	code        int
	name        string
	description string
	exact       map[string]Entry
	patterns    []patternEntry
}

// Table is an immutable classifier.
type Table struct {
	classes map[int]*class
}

// NewTable validates classes and builds a Table. Class codes must be unique.
func NewTable(classes ...Class) (*Table, error) {
	t := &Table{classes: make(map[int]*class, len(classes))}
	for _, c := range classes {
		if _, ok := t.classes[c.Code]; ok {
			return nil, fmt.Errorf("rpcerr: duplicate class code %d", c.Code)
		}
		built, err := buildClass(c)
		if err != nil {
			return nil, err
		}
		t.classes[c.Code] = built
	}
	return t, nil
}

// MustTable is NewTable for static tables; it panics on invalid input.
func MustTable(classes ...Class) *Table {
	t, err := NewTable(classes...)
	if err != nil {
		panic(err)
	}
	return t
}

// CheckClass runs the overlap checks of NewTable on a single class.
func CheckClass(c Class) error {
	_, err := buildClass(c)
	return err
}

func buildClass(c Class) (*class, error) {
	out := &class{
		code:        c.Code,
		name:        c.Name,
		description: c.Description,
		exact:       make(map[string]Entry),
	}
	for _, e := range c.Entries {
		if p, ok := SplitPattern(e.ID); ok {
			for _, prev := range out.patterns {
				if prev.pattern == p {
					return nil, &DuplicateNameError{Code: c.Code, Name: e.ID, Other: prev.entry.ID}
				}
			}
			for name := range out.exact {
				if p.Covers(name) {
					return nil, &DuplicateNameError{Code: c.Code, Name: e.ID, Other: name}
				}
			}
			out.patterns = append(out.patterns, patternEntry{entry: e, pattern: p})
			continue
		}
		if CountPlaceholders(e.ID) > 1 {
			return nil, fmt.Errorf("rpcerr: code %d: %q has more than one placeholder", c.Code, e.ID)
		}
		if _, ok := out.exact[e.ID]; ok {
			return nil, &DuplicateNameError{Code: c.Code, Name: e.ID, Other: e.ID}
		}
		for _, prev := range out.patterns {
			if prev.pattern.Covers(e.ID) {
				return nil, &DuplicateNameError{Code: c.Code, Name: e.ID, Other: prev.entry.ID}
			}
		}
		out.exact[e.ID] = e
	}
	sort.SliceStable(out.patterns, func(i, j int) bool {
		a, b := out.patterns[i], out.patterns[j]
		if len(a.pattern.Prefix) != len(b.pattern.Prefix) {
			return len(a.pattern.Prefix) > len(b.pattern.Prefix)
		}
		if len(a.pattern.Suffix) != len(b.pattern.Suffix) {
			return len(a.pattern.Suffix) > len(b.pattern.Suffix)
		}
		return a.entry.ID < b.entry.ID
	})
	return out, nil
}

// Classify maps an observed (code, message) pair to an *Error.
func (t *Table) Classify(code int, message string) *Error {
	c, ok := t.classes[code]
	if !ok {
		return &Error{Code: code, Class: UnknownClass, Message: message}
	}
	if e, ok := c.exact[message]; ok {
		return &Error{
			Code:        code,
			Class:       c.name,
			ID:          e.ID,
			Message:     message,
			Description: e.Description,
		}
	}
	for _, p := range c.patterns {
		v, ok := p.pattern.Match(message)
		if !ok {
			continue
		}
		return &Error{
			Code:        code,
			Class:       c.name,
			ID:          p.entry.ID,
			Message:     message,
			Description: describe(p.entry.Description, v),
			Value:       v,
		}
	}
	return &Error{Code: code, Class: c.name, Message: message, Description: c.description}
}

// Codes returns the known codes in ascending order.
func (t *Table) Codes() []int {
	codes := make([]int, 0, len(t.classes))
	for code := range t.classes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
