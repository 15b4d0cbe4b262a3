// Package errtable parses RPC error tables: a line-oriented `code name
// description` format and per-code TSV files named `<code>_<CLASS>.tsv`.
package errtable

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/danmuck/tlgen/pkg/rpcerr"
	"github.com/rs/zerolog/log"
)

// SyntaxError reports a malformed table line.
type SyntaxError struct {
	File   string
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("errtable: %s: %s", e.File, e.Reason)
	}
	return fmt.Sprintf("errtable: %s:%d: %s", e.File, e.Line, e.Reason)
}

// DuplicateErrorNameError reports an error name that repeats or overlaps
// another name of the same code.
type DuplicateErrorNameError = rpcerr.DuplicateNameError

// Entry is one table row.
type Entry struct {
	Code        int
	Name        string
	Description string
	// Class is the class name carried by a TSV file name, if any.
	Class string
	File  string
	Line  int
}

// Parse reads the `code name description` format. Blank lines and lines
// starting with `#` or `//` are skipped.
func Parse(name string, src []byte) ([]Entry, error) {
	var out []Entry
	for i, raw := range strings.Split(string(src), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, &SyntaxError{File: name, Line: i + 1, Reason: "expected code and name"}
		}
		code, err := parseCode(fields[0])
		if err != nil {
			return nil, &SyntaxError{File: name, Line: i + 1, Reason: err.Error()}
		}
		e := Entry{
			Code: code,
			Name: fields[1],
			File: name,
			Line: i + 1,
		}
		if len(fields) > 2 {
			rest := strings.TrimSpace(line[len(fields[0]):])
			e.Description = strings.TrimSpace(rest[len(fields[1]):])
		}
		if err := checkName(e.Name); err != nil {
			return nil, &SyntaxError{File: name, Line: i + 1, Reason: err.Error()}
		}
		out = append(out, e)
	}
	log.Debug().Str("file", name).Int("entries", len(out)).Msg("errtable.Parse")
	return out, nil
}

// ParseTSV reads one per-code table. The file name carries the code and
// class (`420_FLOOD.tsv`); the first row is the `id<TAB>message` header.
func ParseTSV(name string, src []byte) ([]Entry, error) {
	code, class, err := splitFileName(name)
	if err != nil {
		return nil, &SyntaxError{File: name, Reason: err.Error()}
	}
	var out []Entry
	header := false
	for i, raw := range strings.Split(string(src), "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.SplitN(line, "\t", 2)
		if !header {
			if len(cols) != 2 || strings.TrimSpace(cols[0]) != "id" || strings.TrimSpace(cols[1]) != "message" {
				return nil, &SyntaxError{File: name, Line: i + 1, Reason: "expected header id<TAB>message"}
			}
			header = true
			continue
		}
		if len(cols) != 2 {
			return nil, &SyntaxError{File: name, Line: i + 1, Reason: "expected id<TAB>message"}
		}
		e := Entry{
			Code:        code,
			Name:        strings.TrimSpace(cols[0]),
			Description: strings.TrimSpace(cols[1]),
			Class:       class,
			File:        name,
			Line:        i + 1,
		}
		if err := checkName(e.Name); err != nil {
			return nil, &SyntaxError{File: name, Line: i + 1, Reason: err.Error()}
		}
		out = append(out, e)
	}
	if !header {
		return nil, &SyntaxError{File: name, Reason: "missing header id<TAB>message"}
	}
	log.Debug().Str("file", name).Int("code", code).Int("entries", len(out)).Msg("errtable.ParseTSV")
	return out, nil
}

// Group builds one class per code in ascending code order. names overrides
// class names; otherwise the TSV class or DefaultClassName is used. Every
// class is checked for duplicate and overlapping names.
func Group(entries []Entry, names map[int]string) ([]rpcerr.Class, error) {
	byCode := make(map[int]*rpcerr.Class)
	var codes []int
	for _, e := range entries {
		c, ok := byCode[e.Code]
		if !ok {
			c = &rpcerr.Class{
				Code:        e.Code,
				Name:        e.Class,
				Description: DefaultDescription(e.Code),
			}
			byCode[e.Code] = c
			codes = append(codes, e.Code)
		}
		if c.Name == "" {
			c.Name = e.Class
		}
		c.Entries = append(c.Entries, rpcerr.Entry{ID: e.Name, Description: e.Description})
	}
	sort.Ints(codes)

	out := make([]rpcerr.Class, 0, len(codes))
	for _, code := range codes {
		c := byCode[code]
		if n, ok := names[code]; ok && n != "" {
			c.Name = n
		}
		if c.Name == "" {
			c.Name = DefaultClassName(code)
		}
		if err := rpcerr.CheckClass(*c); err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func parseCode(s string) (int, error) {
	code, err := strconv.Atoi(s)
	if err != nil || code <= 0 {
		return 0, fmt.Errorf("invalid error code %q", s)
	}
	return code, nil
}

// checkName accepts upper-case names of letters, digits and underscores with
// at most one placeholder.
func checkName(name string) error {
	if name == "" {
		return errors.New("empty error name")
	}
	for _, r := range name {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return fmt.Errorf("invalid error name %q", name)
		}
	}
	if rpcerr.CountPlaceholders(name) > 1 {
		return fmt.Errorf("error name %q has more than one placeholder", name)
	}
	return nil
}

func splitFileName(name string) (int, string, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	codePart, class, ok := strings.Cut(base, "_")
	if !ok || class == "" {
		return 0, "", fmt.Errorf("file name %q is not <code>_<CLASS>", filepath.Base(name))
	}
	code, err := parseCode(codePart)
	if err != nil {
		return 0, "", err
	}
	return code, class, nil
}
