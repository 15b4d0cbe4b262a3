// Package gen holds the pieces shared by the source emitters: the generated
// file model, a line writer, Go identifier helpers and formatting.
package gen
