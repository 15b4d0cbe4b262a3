package gen

import (
	"bytes"
	"fmt"
)

// Writer accumulates generated source line by line. Indentation is left to
// Format.
type Writer struct {
	buf bytes.Buffer
}

// Line writes one formatted line.
func (w *Writer) Line(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

// Blank writes an empty line.
func (w *Writer) Blank() { w.buf.WriteByte('\n') }

// Bytes returns the accumulated source.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Render formats the accumulated source into a File.
func (w *Writer) Render(name string) (File, error) {
	src, err := Format(name, w.Bytes())
	if err != nil {
		return File{}, err
	}
	return File{Name: name, Content: src}, nil
}
