package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

// Header marks every emitted file as generated so tools skip it.
const Header = "// Code generated by tlgen. DO NOT EDIT."

// File is one rendered output file. Name is relative to the output directory.
type File struct {
	Name    string
	Content []byte
}

// Format gofmt-formats src and sorts its import block. Imports are never
// added or removed, so the result depends on src only.
func Format(name string, src []byte) ([]byte, error) {
	out, err := imports.Process(name, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gen: format %s: %w", name, err)
	}
	return out, nil
}

// Write stores files under dir, creating it when needed.
func Write(dir string, files []File) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("gen: create %s: %w", dir, err)
	}
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return fmt.Errorf("gen: write %s: %w", path, err)
		}
	}
	return nil
}

// Diff returns the names of files whose content under dir differs from the
// rendered one, including files missing on disk.
func Diff(dir string, files []File) ([]string, error) {
	var stale []string
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		current, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			stale = append(stale, f.Name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("gen: read %s: %w", path, err)
		}
		if !bytes.Equal(current, f.Content) {
			stale = append(stale, f.Name)
		}
	}
	return stale, nil
}
