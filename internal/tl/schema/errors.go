package schema

import "fmt"

// SyntaxError reports a malformed schema statement.
type SyntaxError struct {
	File   string
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("schema: line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("schema: %s:%d: %s", e.File, e.Line, e.Reason)
}
