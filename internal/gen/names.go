package gen

import (
	"strings"
	"unicode"
)

// initialisms are upper-cased as a whole when they form a name segment.
var initialisms = map[string]string{
	"id":   "ID",
	"ids":  "IDs",
	"url":  "URL",
	"api":  "API",
	"dc":   "DC",
	"ip":   "IP",
	"http": "HTTP",
	"json": "JSON",
	"rpc":  "RPC",
	"ttl":  "TTL",
	"uri":  "URI",
}

// GoName converts a TL or error identifier such as `messages.sendMessage`,
// `reply_to_msg_id` or `FLOOD_WAIT_X` into an exported Go identifier
// (`MessagesSendMessage`, `ReplyToMsgID`, `FloodWaitX`).
func GoName(name string) string {
	var sb strings.Builder
	for _, seg := range segments(name) {
		if v, ok := initialisms[strings.ToLower(seg)]; ok {
			sb.WriteString(v)
			continue
		}
		if strings.ToUpper(seg) == seg {
			seg = strings.ToLower(seg)
		}
		r := []rune(seg)
		r[0] = unicode.ToUpper(r[0])
		sb.WriteString(string(r))
	}
	out := sb.String()
	if out == "" {
		return "X"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "X" + out
	}
	return out
}

// LocalName is GoName with a lower-case first letter, for parameters.
func LocalName(name string) string {
	g := GoName(name)
	if v, ok := initialisms[strings.ToLower(g)]; ok && v == g {
		return strings.ToLower(g)
	}
	r := []rune(g)
	r[0] = unicode.ToLower(r[0])
	out := string(r)
	if keywords[out] {
		return out + "_"
	}
	return out
}

// segments splits on separators and on lower-to-upper case transitions.
func segments(name string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range name {
		switch {
		case r == '_' || r == '.' || r == '-':
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return out
}

var keywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
	// identifiers used by the emitted method bodies
	"b": true, "o": true, "v": true, "err": true, "flags": true,
}
