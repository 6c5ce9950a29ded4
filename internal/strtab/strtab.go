// Package strtab implements the string interner shared by the lexer and
// the semantic analyzer.
//
// DESIGN PHILOSOPHY:
// Every identifier and string literal the lexer sees is reduced to a
// small integer handle (a NameId) the moment it's first encountered. This
// buys two things downstream:
//   - Symbol-table lookups and AST leaves compare integers, not strings.
//   - The language is case-insensitive, so interning is also where
//     "FooBar" and "foobar" become the same handle - the rest of the
//     front-end never has to think about case again.
//
// DESIGN CHOICE: a slice-backed table plus a map, rather than just a map,
// because the analyzer and the debug dump need to go from NameId back to
// text (Lookup) at least as often as they go from text to NameId (Intern);
// a map alone would need an auxiliary index for the reverse direction
// anyway, so we keep the IDs as plain slice indices instead of inventing a
// denser form.
package strtab

import "strings"

// NameId is a non-negative handle into the table, unique per distinct
// (case-folded) lexeme. The zero value is a valid id (the first interned
// name gets NameId 0); callers that need an "absent" sentinel use -1, as
// Find does.
type NameId int

// Table is the interner. The zero value is not ready to use - call New.
type Table struct {
	names []string
	index map[string]NameId
}

// New creates an empty interner.
func New() *Table {
	return &Table{index: make(map[string]NameId)}
}

// Intern returns the NameId for text, case-folded, allocating a new one if
// this is the first time text has been seen (under any casing).
func (t *Table) Intern(text string) NameId {
	key := strings.ToLower(text)
	if id, ok := t.index[key]; ok {
		return id
	}
	id := NameId(len(t.names))
	t.names = append(t.names, key)
	t.index[key] = id
	return id
}

// Find returns the NameId for text if it has already been interned, or -1
// if not. The analyzer uses this during bootstrap to resolve the
// well-known names "main" and "length" without interning them afresh (and
// without inserting anything if the program never mentions them).
func (t *Table) Find(text string) NameId {
	if id, ok := t.index[strings.ToLower(text)]; ok {
		return id
	}
	return -1
}

// Text returns the canonical (lower-cased) spelling for id. Accessing an
// id that was never interned returns "" - this only happens for a
// programmer error (a stale or fabricated NameId), not for any input the
// lexer or analyzer can produce on their own.
func (t *Table) Text(id NameId) string {
	if id < 0 || int(id) >= len(t.names) {
		return ""
	}
	return t.names[id]
}

// Len reports how many distinct names have been interned so far.
func (t *Table) Len() int {
	return len(t.names)
}
