// Package tlbin owns the TL binary wire primitives used by generated code.
//
// Ownership boundary:
// - little-endian scalar encoding (int, long, double, int128, int256)
// - padded string/bytes encoding
// - boxed Bool and Vector headers
// - the Object contract implemented by every generated combinator
package tlbin
