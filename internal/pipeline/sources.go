package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type source struct {
	Path string
	Data []byte
}

// readSources expands every path: directories contribute their files with
// one of exts, sorted by name; plain files are read as given.
func readSources(paths []string, exts ...string) ([]source, error) {
	var out []source
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("read sources: %w", err)
		}
		if !info.IsDir() {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("read sources: %w", err)
			}
			out = append(out, source{Path: p, Data: data})
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read sources: %w", err)
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || !hasExt(e.Name(), exts) {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			path := filepath.Join(p, name)
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read sources: %w", err)
			}
			out = append(out, source{Path: path, Data: data})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("read sources: no input files in %s", strings.Join(paths, ", "))
	}
	return out, nil
}

func hasExt(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
