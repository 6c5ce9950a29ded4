// Package lexer provides the minimal tokenizer that feeds the parser: it
// recognizes MJ's keywords, identifiers, literals, operators and
// delimiters, matches reserved words case-insensitively, leaves identifier
// text as written (the parser interns it), and hands back a flat token
// stream.
package lexer

import "strconv"

// Position is a line/column location in the source text, used to stamp
// every token so the parser can set AST node line numbers for diagnostics.
//
// DESIGN CHOICE: a value type, not a pointer - it's small, immutable once
// created, and the zero value (Line 0) is a usable "no position" sentinel.
type Position struct {
	Line   int
	Column int
}

// String renders a position as "line:column", the format error messages
// that don't go through the diagnostic reporter use.
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether p names an actual line (the zero Position does
// not).
func (p Position) IsValid() bool {
	return p.Line > 0
}
