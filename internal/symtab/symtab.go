// Package symtab implements the symbol table, its attribute store, and the
// scope stack used for lexical name resolution.
//
// DESIGN PHILOSOPHY:
// The symbol table tracks every declared name, its kind, its nesting depth,
// and a small set of further attributes (type, value, dimension count, and
// so on) set on demand as the analyzer learns more about a declaration.
// The scope stack is a separate structure: it records which bindings are
// currently visible, and is popped wholesale when a block closes, while
// the symbol table itself is append-only and never forgets an entry once
// created (a SymId, once issued, stays valid and keeps its attributes for
// the life of the compilation - the scope stack only controls whether a
// *name* resolves to it).
//
// KEY DESIGN CHOICES, inherited from the teacher's symtab package but
// reshaped around a single flat table instead of a scope tree:
//   - Fixed capacities for the stack, the table and the attribute pool,
//     enforced as abort-level overflow errors. This mirrors a real
//     bootstrapping compiler more than an "unbounded until we run out of
//     memory" design, and makes the boundary behavior in the
//     specification's test suite (501st symbol, 101st scope) directly
//     testable without exhausting real memory.
//   - Attributes live in one shared, append-only pool of cells
//     (kind, value, next), each symbol table entry storing only the head
//     index of its own attribute list. This keeps Symbol itself small and
//     keeps iteration order sorted by AttrKind for free, because SetAttr
//     inserts into the list in ascending-kind order.
package symtab

import (
	"fmt"
	"io"

	"github.com/hassandahiru/mj-frontend/internal/ast"
	"github.com/hassandahiru/mj-frontend/internal/diag"
	"github.com/hassandahiru/mj-frontend/internal/strtab"
)

// SymId identifies a symbol-table entry. Entries are numbered from 1 so
// that 0 can mean "no symbol" (the value Lookup returns on failure, and
// the zero value of a SymId field that was never assigned).
type SymId int

// AttrKind is the closed set of attributes an entry can carry, numbered so
// that the more commonly-set attributes sort first when an entry's
// attribute list is iterated or dumped.
type AttrKind int

const (
	Name AttrKind = iota + 1
	Nest
	Tree
	Predefined
	Kind
	Type
	Value
	Offset
	Dimen
	ArgNum
)

// SymKind is the closed set of roles a symbol-table entry can play.
type SymKind int

const (
	Const SymKind = iota
	Var
	FuncForward
	Func
	RefArg
	ValueArg
	Field
	TypeDef
	ProcForward
	Proc
	Class
	Arr
)

var symKindNames = [...]string{
	Const:       "constant",
	Var:         "variable",
	FuncForward: "funcforw",
	Func:        "function",
	RefArg:      "ref_arg",
	ValueArg:    "val_arg",
	Field:       "field",
	TypeDef:     "typedef",
	ProcForward: "procforw",
	Proc:        "procedure",
	Class:       "class",
	Arr:         "array",
}

// String renders a SymKind using exactly the strings the debug dump's Kind
// column is pinned to.
func (k SymKind) String() string {
	if k >= 0 && int(k) < len(symKindNames) {
		return symKindNames[k]
	}
	return "unknown"
}

// AttrValueKind discriminates which field of an AttrValue is meaningful,
// standing in for the source's habit of stashing an AST pointer inside an
// int by casting it. Keeping the union explicit (and type-safe) is the
// "integer-encoded pointers" redesign called for when porting this design.
type AttrValueKind int

const (
	AVInt AttrValueKind = iota
	AVNode
	AVSym
	AVName
)

// AttrValue is a tagged union: exactly one field is meaningful, selected by
// Kind. IntAttr/NodeAttr/SymAttr/NameAttr are the constructors; AsInt,
// AsNode, AsSym and AsName are the matching accessors.
type AttrValue struct {
	Kind AttrValueKind
	Int  int
	Node *ast.Node
	Sym  SymId
	Name strtab.NameId
}

func IntAttr(v int) AttrValue            { return AttrValue{Kind: AVInt, Int: v} }
func NodeAttr(n *ast.Node) AttrValue     { return AttrValue{Kind: AVNode, Node: n} }
func SymAttr(s SymId) AttrValue          { return AttrValue{Kind: AVSym, Sym: s} }
func NameAttr(n strtab.NameId) AttrValue { return AttrValue{Kind: AVName, Name: n} }

func (v AttrValue) AsInt() int            { return v.Int }
func (v AttrValue) AsNode() *ast.Node     { return v.Node }
func (v AttrValue) AsSym() SymId          { return v.Sym }
func (v AttrValue) AsName() strtab.NameId { return v.Name }

// attrCell is one node of a symbol's attribute list, held in the table's
// shared pool. Cells are never freed individually; the whole pool goes
// away with the Table.
type attrCell struct {
	kind  AttrKind
	value AttrValue
	next  int // index into pool, 0 means "no further cell"
}

// entry is one symbol-table row: the head of its attribute list plus
// nothing else, since every other fact about the symbol (name, nesting,
// kind, type, ...) lives in that attribute list.
type entry struct {
	attrHead int // index into pool, 0 means empty
}

// frame is one scope-stack slot: either a block marker (IsMarker) opening
// a new scope, or a binding tying a name to a symbol within the current
// scope.
type frame struct {
	IsMarker bool
	Name     strtab.NameId
	Sym      SymId
	Dummy    bool // pushed to suppress repeat "undeclared" reports
	Used     bool
}

// Limits are the documented safety thresholds. An implementation is free
// to raise them but must still detect and report overflow once they are
// exceeded.
type Limits struct {
	Stack   int
	Symbols int
	Attrs   int
}

// DefaultLimits matches the specification's stated capacities.
var DefaultLimits = Limits{Stack: 100, Symbols: 500, Attrs: 2000}

// Table is the symbol table, its attribute pool, and the scope stack,
// bundled into one explicit, passable value instead of the process-wide
// globals the source uses - see DESIGN.md for why.
type Table struct {
	Names  *strtab.Table
	Report *diag.Reporter
	Limits Limits

	entries []entry     // index 0 unused; SymId 1..len(entries)-1 are valid
	pool    []attrCell  // index 0 unused, acts as the nil cell
	stack   []frame
	nesting int
}

// New creates an empty table bound to names for text resolution and rep
// for diagnostics, using the default capacities. Call Init to install the
// predefined bootstrap names before first use.
func New(names *strtab.Table, rep *diag.Reporter) *Table {
	return NewWithLimits(names, rep, DefaultLimits)
}

func NewWithLimits(names *strtab.Table, rep *diag.Reporter, limits Limits) *Table {
	return &Table{
		Names:   names,
		Report:  rep,
		Limits:  limits,
		entries: make([]entry, 1, limits.Symbols+1),
		pool:    make([]attrCell, 1, limits.Attrs+1),
	}
}

// Init resets the table and stack to empty, then installs the predefined
// names every MJ program has visible from the outermost scope: the class
// "system", and the procedures "readln" and "println".
func (t *Table) Init() {
	t.entries = t.entries[:1]
	t.pool = t.pool[:1]
	t.stack = t.stack[:0]
	t.nesting = 0

	sys := t.insertPredefined("system")
	t.SetAttr(sys, Kind, IntAttr(int(Class)))
	t.SetAttr(sys, Predefined, IntAttr(1))

	t.nesting++
	readln := t.insertPredefined("readln")
	t.SetAttr(readln, Kind, IntAttr(int(Proc)))
	t.SetAttr(readln, Predefined, IntAttr(1))

	println_ := t.insertPredefined("println")
	t.SetAttr(println_, Kind, IntAttr(int(Proc)))
	t.SetAttr(println_, Predefined, IntAttr(1))
	t.nesting--
}

// insertPredefined creates a bootstrap symbol directly, bypassing the
// usual redeclaration check (there is nothing to collide with yet) and
// without pushing a scope frame, since predefined names are visible
// everywhere rather than scoped to a binding site.
func (t *Table) insertPredefined(text string) SymId {
	id := t.Names.Intern(text)
	sym := t.allocEntry()
	t.SetAttr(sym, Name, NameAttr(id))
	t.SetAttr(sym, Nest, IntAttr(t.nesting))
	return sym
}

func (t *Table) allocEntry() SymId {
	if len(t.entries) > t.Limits.Symbols {
		t.Report.Report(0, diag.STOverflow, diag.Abort, -1, -1)
		return 0
	}
	t.entries = append(t.entries, entry{})
	return SymId(len(t.entries) - 1)
}

// OpenBlock increases the current nesting depth and pushes a block marker,
// the boundary CloseBlock pops back down to.
func (t *Table) OpenBlock() {
	if len(t.stack) >= t.Limits.Stack {
		t.Report.Report(0, diag.StackOverflow, diag.Abort, -1, -1)
		return
	}
	t.nesting++
	t.stack = append(t.stack, frame{IsMarker: true})
}

// CloseBlock pops every frame down to and including the most recent block
// marker, and decrements the nesting depth. Calling CloseBlock without a
// matching OpenBlock is a no-op on an empty stack.
func (t *Table) CloseBlock() {
	for len(t.stack) > 0 {
		top := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		if top.IsMarker {
			break
		}
	}
	if t.nesting > 0 {
		t.nesting--
	}
}

// Nesting reports the current scope depth.
func (t *Table) Nesting() int {
	return t.nesting
}

// Count reports how many symbol-table entries have been issued so far.
// The analyzer's class-field scan uses this as the upper bound when
// walking forward from a class symbol looking for a matching member.
func (t *Table) Count() int {
	return len(t.entries) - 1
}

// InsertEntry declares name in the current scope. It fails (returning 0)
// and reports Redeclaration if a non-dummy binding for name already
// exists in the current scope (per LookupHere); otherwise it allocates a
// fresh entry, records its Name and Nest attributes, pushes a binding
// frame, and returns the new SymId.
func (t *Table) InsertEntry(name strtab.NameId, line int) SymId {
	if existing := t.LookupHere(name); existing != 0 {
		t.Report.Report(line, diag.Redeclaration, diag.Continue, name, -1)
		return 0
	}

	sym := t.allocEntry()
	if sym == 0 {
		return 0
	}
	t.SetAttr(sym, Name, NameAttr(name))
	t.SetAttr(sym, Nest, IntAttr(t.nesting))

	if len(t.stack) >= t.Limits.Stack {
		t.Report.Report(line, diag.StackOverflow, diag.Abort, -1, -1)
		return sym
	}
	t.stack = append(t.stack, frame{Name: name, Sym: sym})
	return sym
}

// Lookup resolves name by scanning the scope stack top-down across every
// frame (innermost scope first, through enclosing scopes, to the
// predefined bootstrap names that precede any frame at all). A match marks
// the frame Used and returns its symbol. A miss reports Undeclared and
// pushes a dummy frame so repeated uses of the same undeclared name in the
// same scope don't repeat the report, then returns 0.
func (t *Table) Lookup(name strtab.NameId, line int) SymId {
	for i := len(t.stack) - 1; i >= 0; i-- {
		f := &t.stack[i]
		if f.IsMarker {
			continue
		}
		if f.Name == name {
			if f.Dummy {
				// Already reported as undeclared; stay quiet.
				return 0
			}
			f.Used = true
			return f.Sym
		}
	}
	if sym := t.lookupPredefined(name); sym != 0 {
		return sym
	}

	t.Report.Report(line, diag.Undeclared, diag.Continue, name, -1)
	if len(t.stack) < t.Limits.Stack {
		t.stack = append(t.stack, frame{Name: name, Dummy: true})
	}
	return 0
}

// lookupPredefined scans entries directly for a Name attribute equal to
// name among entries marked Predefined, covering system/readln/println which
// are installed by Init without ever occupying a scope-stack frame.
func (t *Table) lookupPredefined(name strtab.NameId) SymId {
	for sym := SymId(1); int(sym) < len(t.entries); sym++ {
		if !t.IsAttr(sym, Predefined) {
			continue
		}
		if n, ok := t.tryGetAttr(sym, Name); ok && n.AsName() == name {
			return sym
		}
	}
	return 0
}

// LookupHere resolves name only within the current scope: it scans
// top-down and stops at the first block marker, ignoring dummy frames (an
// undeclared-name placeholder never blocks a later real declaration of the
// same name in the same scope).
func (t *Table) LookupHere(name strtab.NameId) SymId {
	for i := len(t.stack) - 1; i >= 0; i-- {
		f := t.stack[i]
		if f.IsMarker {
			break
		}
		if f.Dummy {
			continue
		}
		if f.Name == name {
			return f.Sym
		}
	}
	return 0
}

// ForEachSymbol calls fn for every symbol in insertion order, 1..N. The
// method_def handler's cross-scope main-uniqueness scan and PrintTable
// both use this instead of duplicating the iteration.
func (t *Table) ForEachSymbol(fn func(SymId)) {
	for sym := SymId(1); int(sym) < len(t.entries); sym++ {
		fn(sym)
	}
}

// IsAttr reports whether sym carries an attribute of the given kind.
func (t *Table) IsAttr(sym SymId, kind AttrKind) bool {
	_, ok := t.tryGetAttr(sym, kind)
	return ok
}

// GetAttr returns the value of attribute kind on sym. If the attribute was
// never set, it reports a diagnostic (this is a programmer error in the
// analyzer, not a recoverable language-level condition) and returns the
// zero AttrValue.
func (t *Table) GetAttr(sym SymId, kind AttrKind) AttrValue {
	if v, ok := t.tryGetAttr(sym, kind); ok {
		return v
	}
	if t.Report != nil && t.Report.Out != nil {
		fmt.Fprintf(t.Report.Out, "internal error: symbol %d has no attribute %d\n", sym, kind)
	}
	return AttrValue{}
}

func (t *Table) tryGetAttr(sym SymId, kind AttrKind) (AttrValue, bool) {
	if int(sym) <= 0 || int(sym) >= len(t.entries) {
		return AttrValue{}, false
	}
	for idx := t.entries[sym].attrHead; idx != 0; idx = t.pool[idx].next {
		if t.pool[idx].kind == kind {
			return t.pool[idx].value, true
		}
		if t.pool[idx].kind > kind {
			break // list is sorted ascending by kind; no point scanning further
		}
	}
	return AttrValue{}, false
}

// SetAttr installs value under kind on sym, overwriting any existing
// attribute of that kind, or inserting a new cell in the correct position
// to keep the attribute list sorted by ascending AttrKind. Exceeding the
// attribute pool's capacity aborts with AttrOverflow.
func (t *Table) SetAttr(sym SymId, kind AttrKind, value AttrValue) {
	if int(sym) <= 0 || int(sym) >= len(t.entries) {
		return
	}

	headPtr := &t.entries[sym].attrHead
	prev := 0
	for idx := *headPtr; idx != 0; idx = t.pool[idx].next {
		if t.pool[idx].kind == kind {
			t.pool[idx].value = value
			return
		}
		if t.pool[idx].kind > kind {
			break
		}
		prev = idx
	}

	if len(t.pool) > t.Limits.Attrs {
		t.Report.Report(0, diag.AttrOverflow, diag.Abort, -1, -1)
		return
	}

	next := 0
	if prev == 0 {
		next = *headPtr
	} else {
		next = t.pool[prev].next
	}
	t.pool = append(t.pool, attrCell{kind: kind, value: value, next: next})
	newIdx := len(t.pool) - 1
	if prev == 0 {
		*headPtr = newIdx
	} else {
		t.pool[prev].next = newIdx
	}
}

// PrintTable writes the fixed-column human-readable dump the test harness
// diffs against: one row per SymId in insertion order, columns
// Name | Nest | Tree | Predefined | Kind | Type | Value | Offset | Dimension | ArgNum,
// with unset attributes omitted.
func (t *Table) PrintTable(w io.Writer) {
	fmt.Fprintln(w, "Name | Nest | Tree | Predefined | Kind | Type | Value | Offset | Dimension | ArgNum")
	t.ForEachSymbol(func(sym SymId) {
		fmt.Fprintln(w, t.row(sym))
	})
}

func (t *Table) row(sym SymId) string {
	col := func(kind AttrKind, render func(AttrValue) string) string {
		v, ok := t.tryGetAttr(sym, kind)
		if !ok {
			return ""
		}
		return render(v)
	}

	name := col(Name, func(v AttrValue) string { return t.Names.Text(v.AsName()) })
	nest := col(Nest, func(v AttrValue) string { return fmt.Sprint(v.AsInt()) })
	tree := col(Tree, func(v AttrValue) string { return fmt.Sprintf("%p", v.AsNode()) })
	predefined := col(Predefined, func(AttrValue) string { return "yes" })
	if predefined == "" && t.IsAttr(sym, Name) {
		predefined = "no"
	}
	kind := col(Kind, func(v AttrValue) string { return SymKind(v.AsInt()).String() })
	typ := col(Type, func(v AttrValue) string { return fmt.Sprintf("%p", v.AsNode()) })
	value := col(Value, func(v AttrValue) string { return fmt.Sprintf("%p", v.AsNode()) })
	offset := col(Offset, func(v AttrValue) string { return fmt.Sprint(v.AsInt()) })
	dimen := col(Dimen, func(v AttrValue) string { return fmt.Sprint(v.AsInt()) })
	argnum := col(ArgNum, func(v AttrValue) string { return fmt.Sprint(v.AsInt()) })

	return fmt.Sprintf("%s | %s | %s | %s | %s | %s | %s | %s | %s | %s",
		name, nest, tree, predefined, kind, typ, value, offset, dimen, argnum)
}
