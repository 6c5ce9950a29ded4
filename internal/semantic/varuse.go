package semantic

import (
	"github.com/hassandahiru/mj-frontend/internal/ast"
	"github.com/hassandahiru/mj-frontend/internal/diag"
	"github.com/hassandahiru/mj-frontend/internal/strtab"
	"github.com/hassandahiru/mj-frontend/internal/symtab"
)

// varUse handles VarOp, the analyzer's most intricate rule. A VarOp carries
// (IdRef base, access_chain), where access_chain is a spine of SelectOp
// nodes whose left children are either FieldOp(IdRef) or IndexOp(expr) and
// whose right children continue the spine (Dummy at the end).
//
// The walk keeps an "anchor" - the symbol currently focused as the chain is
// consumed - and retargets it as field and array access move from a
// variable into the class or element type it denotes.
func (a *Analyzer) varUse(n *ast.Node, ctx Context) {
	base := ast.Left(n)
	chain := ast.Right(n)

	name := strtab.NameId(ast.IntOf(base))
	line := ast.LineOf(base)

	sym := a.Syms.Lookup(name, line)
	if sym == 0 {
		return
	}
	ast.SetLeft(n, ast.MakeLeaf(ast.SymRef, int(sym)))

	nest := a.Syms.GetAttr(sym, symtab.Nest).AsInt()

	for {
		kind := symtab.SymKind(a.Syms.GetAttr(sym, symtab.Kind).AsInt())
		switch kind {
		case symtab.Var:
			typeNode := a.Syms.GetAttr(sym, symtab.Type).AsNode()
			baseType := ast.Left(typeNode)
			if ast.KindOf(baseType) == ast.IntType {
				if !ast.IsNull(chain) {
					varName := a.Syms.GetAttr(sym, symtab.Name).AsName()
					a.Report.Report(ast.LineOf(chain), diag.FieldMismatch, diag.Continue, varName, -1)
				}
				return
			}
			// baseType is a SymRef to a class: retarget the anchor so
			// field resolution continues inside that class.
			sym = symtab.SymId(ast.IntOf(baseType))
			nest = a.Syms.GetAttr(sym, symtab.Nest).AsInt()
			continue

		case symtab.Proc, symtab.Func:
			if ast.IsNull(chain) {
				return
			}
			// The one fatal semantic error: dereferencing a routine.
			a.Report.Report(line, diag.VariableMisuse, diag.Abort, name, -1)
			return

		case symtab.Class:
			if ast.IsNull(chain) {
				return
			}
			step := ast.Left(chain)
			if ast.OpOf(step) == ast.IndexOp {
				if ctx != InDeclaration {
					a.Report.Report(ast.LineOf(step), diag.TypeMismatch, diag.Continue, -1, -1)
					return
				}
				chain = ast.Right(chain)
				continue
			}

			found, _ := a.resolveField(sym, nest, step)
			if found == 0 {
				return
			}
			sym = found
			nest = a.Syms.GetAttr(sym, symtab.Nest).AsInt()
			chain = ast.Right(chain)
			continue

		case symtab.Arr:
			dim := a.Syms.GetAttr(sym, symtab.Dimen).AsInt()
			count := 0
			for !ast.IsNull(chain) && ast.OpOf(ast.Left(chain)) == ast.IndexOp {
				idx := ast.Left(chain)
				if expr := ast.Left(idx); ast.KindOf(expr) == ast.Op {
					a.Analyze(expr)
				}
				count++
				chain = ast.Right(chain)
			}

			if count > dim {
				a.Report.Report(line, diag.IndexMismatch, diag.Continue, -1, -1)
				return
			}
			if ast.IsNull(chain) {
				if count < dim {
					a.Report.Report(line, diag.IndexMismatch, diag.Continue, -1, -1)
				}
				return
			}

			step := ast.Left(chain)
			if ast.OpOf(step) != ast.FieldOp {
				a.Report.Report(line, diag.TypeMismatch, diag.Continue, -1, -1)
				return
			}

			fieldNameNode := ast.Left(step)
			fieldName := strtab.NameId(ast.IntOf(fieldNameNode))
			fieldLine := ast.LineOf(fieldNameNode)

			if fieldName == a.lengthID {
				if !ast.IsNull(ast.Right(chain)) {
					a.Report.Report(fieldLine, diag.TypeMismatch, diag.Continue, -1, -1)
				}
				// .length has no symbol-table entry to retarget to; the
				// chain ends here either way.
				return
			}

			elemTypeNode := a.Syms.GetAttr(sym, symtab.Type).AsNode()
			elemType := ast.Left(elemTypeNode)
			if ast.KindOf(elemType) != ast.SymRef {
				a.Report.Report(fieldLine, diag.TypeMismatch, diag.Continue, -1, -1)
				return
			}

			classSym := symtab.SymId(ast.IntOf(elemType))
			classNest := a.Syms.GetAttr(classSym, symtab.Nest).AsInt()
			found, _ := a.resolveField(classSym, classNest, step)
			if found == 0 {
				return
			}
			sym = found
			nest = a.Syms.GetAttr(sym, symtab.Nest).AsInt()
			chain = ast.Right(chain)
			continue

		default:
			// Const, Field, TypeDef, ValueArg, RefArg, and the rest all
			// land here: the language places no further access rules on
			// them, so a scalar use (an empty chain) is accepted outright.
			// Mirrors original_source/src/seman.c's "default: break" inside
			// its do/while walk, which is a no-op rather than a diagnostic.
			return
		}
	}
}

// resolveField scans symbol-table entries forward from classSym+1 while
// their Nest is greater than classNest, looking for one whose Name matches
// the field named by step (a FieldOp) and whose Nest is exactly
// classNest+1 - i.e. a direct member of that class, not a member of some
// further-nested construct. On a match the field's IdRef is replaced with
// a SymRef and the matching SymId is returned; on a miss, Undeclared is
// reported and the zero SymId is returned.
func (a *Analyzer) resolveField(classSym symtab.SymId, classNest int, step *ast.Node) (symtab.SymId, int) {
	fieldNameNode := ast.Left(step)
	fieldName := strtab.NameId(ast.IntOf(fieldNameNode))
	fieldLine := ast.LineOf(fieldNameNode)

	for s := classSym + 1; int(s) <= a.Syms.Count(); s++ {
		sNest := a.Syms.GetAttr(s, symtab.Nest).AsInt()
		if sNest <= classNest {
			break
		}
		if sNest != classNest+1 {
			continue
		}
		if a.Syms.IsAttr(s, symtab.Name) && a.Syms.GetAttr(s, symtab.Name).AsName() == fieldName {
			ast.SetLeft(step, ast.MakeLeaf(ast.SymRef, int(s)))
			return s, fieldLine
		}
	}

	a.Report.Report(fieldLine, diag.Undeclared, diag.Continue, fieldName, -1)
	return 0, fieldLine
}
