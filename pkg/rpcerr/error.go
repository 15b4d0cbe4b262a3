package rpcerr

import (
	"fmt"
	"strconv"
	"strings"
)

// UnknownClass names the class of codes absent from a table.
const UnknownClass = "UNKNOWN"

// Error is one classified RPC error.
type Error struct {
	Code        int
	Class       string
	ID          string
	Message     string
	Description string
	// Value is the integer extracted by a pattern entry, such as the number
	// of seconds of a FLOOD_WAIT_X.
	Value int
}

func (e *Error) Error() string {
	id := e.ID
	if id == "" {
		id = e.Message
	}
	if e.Description == "" {
		return fmt.Sprintf("rpc error %d %s", e.Code, id)
	}
	return fmt.Sprintf("rpc error %d %s: %s", e.Code, id, e.Description)
}

// Generic reports whether no table entry matched the message.
func (e *Error) Generic() bool { return e.ID == "" }

// Is matches sentinels of the same code; a sentinel with an ID must also
// match the entry.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.ID == "" || t.ID == e.ID
}

func describe(template string, value int) string {
	return strings.ReplaceAll(template, "{value}", strconv.Itoa(value))
}
