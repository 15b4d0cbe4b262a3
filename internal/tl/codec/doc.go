// Package codec encodes and decodes TL objects directly from a resolved
// schema, without generated code. It backs schema inspection tooling and is
// the reference the generated encoders are checked against.
package codec
