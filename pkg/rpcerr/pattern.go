package rpcerr

import (
	"strconv"
	"strings"
)

// Placeholder is the entry-name token standing for an embedded integer.
const Placeholder = "X"

// Pattern is the literal prefix and suffix around a placeholder.
type Pattern struct {
	Prefix string
	Suffix string
}

// SplitPattern reports whether name holds exactly one placeholder token and
// returns the literals around it. Tokens are separated by underscores, so
// FLOOD_WAIT_X has prefix "FLOOD_WAIT_" and no suffix.
func SplitPattern(name string) (Pattern, bool) {
	tokens := strings.Split(name, "_")
	at := -1
	for i, tok := range tokens {
		if tok != Placeholder {
			continue
		}
		if at >= 0 {
			return Pattern{}, false
		}
		at = i
	}
	if at < 0 {
		return Pattern{}, false
	}
	var p Pattern
	if at > 0 {
		p.Prefix = strings.Join(tokens[:at], "_") + "_"
	}
	if at < len(tokens)-1 {
		p.Suffix = "_" + strings.Join(tokens[at+1:], "_")
	}
	return p, true
}

// CountPlaceholders returns the number of placeholder tokens in name.
func CountPlaceholders(name string) int {
	n := 0
	for _, tok := range strings.Split(name, "_") {
		if tok == Placeholder {
			n++
		}
	}
	return n
}

// Match extracts the integer embedded in message.
func (p Pattern) Match(message string) (int, bool) {
	if len(message) <= len(p.Prefix)+len(p.Suffix) {
		return 0, false
	}
	if !strings.HasPrefix(message, p.Prefix) || !strings.HasSuffix(message, p.Suffix) {
		return 0, false
	}
	digits := message[len(p.Prefix) : len(message)-len(p.Suffix)]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Covers reports whether an exact name would be matched by the pattern.
func (p Pattern) Covers(name string) bool {
	_, ok := p.Match(name)
	return ok
}
