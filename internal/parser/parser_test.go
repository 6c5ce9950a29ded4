package parser

import (
	"testing"

	"github.com/hassandahiru/mj-frontend/internal/ast"
	"github.com/hassandahiru/mj-frontend/internal/strtab"
)

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	names := strtab.New()
	root, err := New(src, names).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return root
}

// firstClass and firstMember navigate to the first class of a parsed
// program and the first member of that class - ClassDefOp puts the body on
// the left and the name on the right, and the body is itself a one-deep
// BodyOp wrapper around the member, so reaching the member takes two Lefts
// past the class.
func firstClass(root *ast.Node) *ast.Node {
	return ast.Left(ast.Right(root))
}

func firstMember(root *ast.Node) *ast.Node {
	return ast.Left(ast.Left(firstClass(root)))
}

func TestParse_EmptyProgramHasNoClasses(t *testing.T) {
	root := parse(t, "program Empty;")
	if ast.OpOf(root) != ast.ProgramOp {
		t.Fatalf("got OpKind %v, want ProgramOp", ast.OpOf(root))
	}
	if !ast.IsNull(ast.Right(root)) {
		t.Fatalf("expected no classes, got a non-empty spine")
	}
}

func TestParse_SingleClassWithField(t *testing.T) {
	root := parse(t, `
		program P;
		class A {
			int x;
		}
	`)
	spine := ast.Right(root)
	if ast.OpOf(spine) != ast.BodyOp {
		t.Fatalf("got OpKind %v, want BodyOp", ast.OpOf(spine))
	}
	classDef := ast.Left(spine)
	if ast.OpOf(classDef) != ast.ClassDefOp {
		t.Fatalf("got OpKind %v, want ClassDefOp", ast.OpOf(classDef))
	}
	if !ast.IsNull(ast.Right(spine)) {
		t.Fatalf("expected exactly one class in the program")
	}

	name := ast.Right(classDef)
	if ast.KindOf(name) != ast.IdRef {
		t.Fatalf("got NodeKind %v, want IdRef", ast.KindOf(name))
	}

	body := ast.Left(classDef)
	if ast.OpOf(body) != ast.BodyOp {
		t.Fatalf("got OpKind %v, want BodyOp for class body", ast.OpOf(body))
	}
	field := ast.Left(body)
	if ast.OpOf(field) != ast.DeclOp {
		t.Fatalf("got OpKind %v, want DeclOp for field", ast.OpOf(field))
	}
}

func TestParse_MethodWithParamsAndReturnType(t *testing.T) {
	root := parse(t, `
		program P;
		class A {
			method int sum(val int a, ref int b) {
				return a + b;
			}
		}
	`)
	method := firstMember(root)
	if ast.OpOf(method) != ast.MethodOp {
		t.Fatalf("got OpKind %v, want MethodOp", ast.OpOf(method))
	}

	head := ast.Left(method)
	if ast.OpOf(head) != ast.HeadOp {
		t.Fatalf("got OpKind %v, want HeadOp", ast.OpOf(head))
	}
	spec := ast.Right(head)
	if ast.OpOf(spec) != ast.SpecOp {
		t.Fatalf("got OpKind %v, want SpecOp", ast.OpOf(spec))
	}

	returnType := ast.Right(spec)
	if ast.OpOf(returnType) != ast.TypeIdOp {
		t.Fatalf("expected a declared return type, got OpKind %v", ast.OpOf(returnType))
	}

	firstParam := ast.Left(spec)
	if ast.OpOf(firstParam) != ast.VArgTypeOp {
		t.Fatalf("got OpKind %v, want VArgTypeOp for the first (val) parameter", ast.OpOf(firstParam))
	}
	secondParam := ast.Right(firstParam)
	if ast.OpOf(secondParam) != ast.RArgTypeOp {
		t.Fatalf("got OpKind %v, want RArgTypeOp for the second (ref) parameter", ast.OpOf(secondParam))
	}

	body := ast.Right(method)
	if ast.OpOf(body) != ast.StmtOp {
		t.Fatalf("got OpKind %v, want StmtOp for the method body", ast.OpOf(body))
	}
	ret := ast.Left(body)
	if ast.OpOf(ret) != ast.ReturnOp {
		t.Fatalf("got OpKind %v, want ReturnOp", ast.OpOf(ret))
	}
}

func TestParse_VoidMethodHasDummyReturnType(t *testing.T) {
	root := parse(t, `
		program P;
		class A {
			method void run() {
			}
		}
	`)
	method := firstMember(root)
	spec := ast.Right(ast.Left(method))
	if !ast.IsNull(ast.Right(spec)) {
		t.Fatalf("expected void method to carry a Dummy return type")
	}
}

func TestParse_ArrayTypeCountsDimensions(t *testing.T) {
	root := parse(t, `
		program P;
		class A {
			int m[10][20];
		}
	`)
	field := firstMember(root)
	declarator := ast.Right(field)
	typeNode := ast.Left(ast.Right(declarator))

	dims := 0
	for dim := ast.Right(typeNode); ast.OpOf(dim) == ast.IndexOp; dim = ast.Right(dim) {
		dims++
	}
	if dims != 2 {
		t.Fatalf("got %d array dimensions, want 2", dims)
	}
}

func TestParse_ChainedFieldAndIndexAccess(t *testing.T) {
	root := parse(t, `
		program P;
		class A {
			method void run() {
				x := a.b[1].c;
			}
		}
	`)
	method := firstMember(root)
	body := ast.Right(method)
	assign := ast.Left(body)
	if ast.OpOf(assign) != ast.AssignOp {
		t.Fatalf("got OpKind %v, want AssignOp", ast.OpOf(assign))
	}

	rhsVar := ast.Right(assign)
	if ast.OpOf(rhsVar) != ast.VarOp {
		t.Fatalf("got OpKind %v, want VarOp", ast.OpOf(rhsVar))
	}

	chain := ast.Right(rhsVar)
	steps := 0
	for !ast.IsNull(chain) {
		steps++
		chain = ast.Right(chain)
	}
	if steps != 3 {
		t.Fatalf("got %d access steps, want 3 (.b, [1], .c)", steps)
	}
}

func TestParse_IfElseBuildsBothBranches(t *testing.T) {
	root := parse(t, `
		program P;
		class A {
			method void run() {
				if (1 < 2) {
					return;
				} else {
					return;
				}
			}
		}
	`)
	method := firstMember(root)
	ifNode := ast.Left(ast.Right(method))
	if ast.OpOf(ifNode) != ast.IfElseOp {
		t.Fatalf("got OpKind %v, want IfElseOp", ast.OpOf(ifNode))
	}
	branches := ast.Right(ifNode)
	if ast.IsNull(ast.Left(branches)) || ast.IsNull(ast.Right(branches)) {
		t.Fatalf("expected both then and else branches to be present")
	}
}

func TestParse_RoutineCallWithArguments(t *testing.T) {
	root := parse(t, `
		program P;
		class A {
			method void run() {
				println(1, 2, 3);
			}
		}
	`)
	method := firstMember(root)
	call := ast.Left(ast.Right(method))
	if ast.OpOf(call) != ast.RoutineCallOp {
		t.Fatalf("got OpKind %v, want RoutineCallOp", ast.OpOf(call))
	}
	args := ast.Right(call)
	count := 0
	for !ast.IsNull(args) {
		count++
		args = ast.Right(args)
	}
	if count != 3 {
		t.Fatalf("got %d arguments, want 3", count)
	}
}

func TestParse_ExpressionPrecedence(t *testing.T) {
	root := parse(t, `
		program P;
		class A {
			method void run() {
				x := 1 + 2 * 3;
			}
		}
	`)
	method := firstMember(root)
	assign := ast.Left(ast.Right(method))
	rhs := ast.Right(assign)
	if ast.OpOf(rhs) != ast.AddOp {
		t.Fatalf("got OpKind %v, want AddOp at the top (lowest-precedence last)", ast.OpOf(rhs))
	}
	if ast.OpOf(ast.Right(rhs)) != ast.MultOp {
		t.Fatalf("expected the multiplication to bind tighter than the addition")
	}
}

// declaratorTypes walks a left-recursive DeclOp spine (as built by
// parseDeclStmt and consumed by the analyzer's decl/declarator pair) and
// returns the type node carried by each declarator, outermost-last.
func declaratorTypes(n *ast.Node) []*ast.Node {
	if ast.OpOf(n) != ast.DeclOp {
		return nil
	}
	declarator := ast.Right(n)
	typeNode := ast.Left(ast.Right(declarator))
	return append(declaratorTypes(ast.Left(n)), typeNode)
}

func TestParse_MultipleDeclaratorsShareDistinctTypeNodes(t *testing.T) {
	root := parse(t, `
		program P;
		class A {
			int a, b;
		}
	`)
	field := firstMember(root)
	if ast.OpOf(field) != ast.DeclOp {
		t.Fatalf("got OpKind %v, want DeclOp", ast.OpOf(field))
	}

	types := declaratorTypes(field)
	if len(types) != 2 {
		t.Fatalf("got %d declarators, want 2", len(types))
	}
	if types[0] == types[1] {
		t.Fatalf("expected each declarator to own its own type node, not share one")
	}
}

func TestParse_TrailingDimsDoNotLeakOntoLaterDeclarators(t *testing.T) {
	root := parse(t, `
		program P;
		class A {
			int a[2], b;
		}
	`)
	field := firstMember(root)
	types := declaratorTypes(field)
	if len(types) != 2 {
		t.Fatalf("got %d declarators, want 2", len(types))
	}

	dimsOf := func(typeNode *ast.Node) int {
		count := 0
		for dim := ast.Right(typeNode); ast.OpOf(dim) == ast.IndexOp; dim = ast.Right(dim) {
			count++
		}
		return count
	}
	if got := dimsOf(types[0]); got != 1 {
		t.Fatalf("a has %d dims, want 1", got)
	}
	if got := dimsOf(types[1]); got != 0 {
		t.Fatalf("b has %d dims, want 0 (a's [2] must not leak onto b)", got)
	}
}
