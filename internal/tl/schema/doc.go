// Package schema parses TL schema text into combinator definitions.
//
// Ownership boundary:
// - line grammar `name[#id] (field:type)* = Result;`
// - section markers (---types---, ---functions---) and layer markers
// - builtin core declarations (`int ? = Int;`) recorded as aliases
// - canonical signature text used for constructor id derivation
//
// Parsing is pure; name and type resolution belong to package resolve.
package schema
