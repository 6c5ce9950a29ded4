// Package parser implements a small recursive-descent parser for MJ. It is
// deliberately minimal: just enough grammar to build real programs bottom-up
// through the ast package's constructors, so the semantic analyzer has
// something genuine to walk. Grammar rules, error recovery, and diagnostics
// for malformed syntax are not the subject under test here - a syntax error
// simply panics with a parseError, recovered at the top of Parse.
//
// DESIGN PHILOSOPHY:
// Every production returns an *ast.Node built with MakeLeaf/MakeOp, mirroring
// how the teacher's parser builds its own node types one production at a
// time; the difference is that here there is only one node shape to build,
// selected by OpKind instead of by which concrete struct gets allocated.
// Lists (classes, members, statements, parameters, call arguments) are
// assembled with ast.AttachRightmost and declarators are chained into a
// left-recursive DeclOp spine with ast.MakeOp, rather than accumulated into
// a slice and converted afterwards.
package parser

import (
	"fmt"

	"github.com/hassandahiru/mj-frontend/internal/ast"
	"github.com/hassandahiru/mj-frontend/internal/lexer"
	"github.com/hassandahiru/mj-frontend/internal/strtab"
)

// parseError is recovered at the top level, turning a malformed-syntax
// panic into a normal error return from Parse.
type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

// Parser consumes a token stream from lexer.Lexer and builds an AST,
// interning every identifier and string literal it sees along the way.
type Parser struct {
	lex   *lexer.Lexer
	names *strtab.Table
	tok   lexer.Token
}

// New creates a Parser over src, interning identifiers into names.
func New(src string, names *strtab.Table) *Parser {
	p := &Parser{lex: lexer.New(src), names: names}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.tok = p.lex.Next()
}

func (p *Parser) at(tt lexer.TokenType) bool {
	return p.tok.Type == tt
}

func (p *Parser) expect(tt lexer.TokenType, what string) lexer.Token {
	if p.tok.Type != tt {
		panic(&parseError{msg: fmt.Sprintf("line %d: expected %s", p.tok.Pos.Line, what)})
	}
	tok := p.tok
	p.advance()
	return tok
}

func (p *Parser) line() int { return p.tok.Pos.Line }

// Parse consumes the whole token stream and returns the program's root
// node, or a non-nil error if the source is not well-formed.
func (p *Parser) Parse() (root *ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*parseError); ok {
				err = pe
				return
			}
			panic(r)
		}
	}()
	return p.parseProgram(), nil
}

// program ::= "program" ident ";" classDecl*
func (p *Parser) parseProgram() *ast.Node {
	p.expect(lexer.KwProgram, "'program'")
	p.expect(lexer.Ident, "program name")
	p.expect(lexer.Semicolon, "';'")

	var classes *ast.Node
	for p.at(lexer.KwClass) {
		cls := p.parseClassDecl()
		wrapper := ast.MakeOp(ast.BodyOp, cls, ast.Null())
		classes = ast.AttachRightmost(wrapper, classes)
	}
	return ast.MakeOp(ast.ProgramOp, ast.Null(), classes)
}

// classDecl ::= "class" ident "{" member* "}"
func (p *Parser) parseClassDecl() *ast.Node {
	line := p.line()
	p.expect(lexer.KwClass, "'class'")
	name := p.expect(lexer.Ident, "class name")

	p.expect(lexer.LBrace, "'{'")
	var body *ast.Node
	for !p.at(lexer.RBrace) {
		member := p.parseMember()
		wrapper := ast.MakeOp(ast.BodyOp, member, ast.Null())
		body = ast.AttachRightmost(wrapper, body)
	}
	p.expect(lexer.RBrace, "'}'")

	nameNode := ast.SetLineNo(ast.MakeLeaf(ast.IdRef, int(p.intern(name.Text))), name.Pos.Line)
	n := ast.MakeOp(ast.ClassDefOp, body, nameNode)
	return ast.SetLineNo(n, line)
}

func (p *Parser) intern(text string) strtab.NameId {
	return p.names.Intern(text)
}

// member ::= methodDecl | fieldDecl
func (p *Parser) parseMember() *ast.Node {
	if p.at(lexer.KwMethod) {
		return p.parseMethodDecl()
	}
	return p.parseDeclStmt()
}

// methodDecl ::= "method" (type | "void") ident "(" paramList? ")" block
func (p *Parser) parseMethodDecl() *ast.Node {
	line := p.line()
	p.expect(lexer.KwMethod, "'method'")

	var returnType *ast.Node
	if p.at(lexer.KwVoid) {
		p.advance()
		returnType = ast.Null()
	} else {
		returnType = p.parseTypeID()
	}

	name := p.expect(lexer.Ident, "method name")
	nameNode := ast.SetLineNo(ast.MakeLeaf(ast.IdRef, int(p.intern(name.Text))), name.Pos.Line)

	p.expect(lexer.LParen, "'('")
	params := p.parseParamList()
	p.expect(lexer.RParen, "')'")

	spec := ast.MakeOp(ast.SpecOp, params, returnType)
	head := ast.MakeOp(ast.HeadOp, nameNode, spec)

	body := p.parseBlock()
	n := ast.MakeOp(ast.MethodOp, head, body)
	return ast.SetLineNo(n, line)
}

// paramList ::= (param ("," param)*)?
func (p *Parser) parseParamList() *ast.Node {
	if p.at(lexer.RParen) {
		return ast.Null()
	}
	var spine *ast.Node
	for {
		spine = ast.AttachRightmost(p.parseParam(), spine)
		if !p.at(lexer.Comma) {
			break
		}
		p.advance()
	}
	return spine
}

// param ::= ("val" | "ref") typeID ident ("[" boundExpr "]")*
func (p *Parser) parseParam() *ast.Node {
	line := p.line()
	byRef := false
	if p.at(lexer.KwRef) {
		byRef = true
		p.advance()
	} else {
		p.expect(lexer.KwVal, "'val' or 'ref'")
	}

	typeNode := p.parseTypeID()
	name := p.expect(lexer.Ident, "parameter name")
	nameNode := ast.SetLineNo(ast.MakeLeaf(ast.IdRef, int(p.intern(name.Text))), name.Pos.Line)
	p.parseDims(typeNode)

	inner := ast.MakeOp(ast.CommaOp, nameNode, typeNode)
	op := ast.VArgTypeOp
	if byRef {
		op = ast.RArgTypeOp
	}
	wrapper := ast.MakeOp(op, inner, ast.Null())
	return ast.SetLineNo(wrapper, line)
}

// typeID ::= "int" | ident
//
// A bare type never carries its own brackets - array dimensions are always
// written after the declared name (the declarator or the parameter), never
// after the type keyword. That keeps "name[expr] := ..." (an indexed
// assignment) and "ClassName name[expr];" (an array-of-class declaration)
// distinguishable with a single token of lookahead: both start with two
// identifiers in a row only in the declaration case.
func (p *Parser) parseTypeID() *ast.Node {
	line := p.line()
	var base *ast.Node
	if p.at(lexer.KwInt) {
		p.advance()
		base = ast.MakeLeaf(ast.IntType, 0)
	} else {
		name := p.expect(lexer.Ident, "type name")
		base = ast.SetLineNo(ast.MakeLeaf(ast.IdRef, int(p.intern(name.Text))), name.Pos.Line)
	}

	n := ast.MakeOp(ast.TypeIdOp, base, ast.Null())
	return ast.SetLineNo(n, line)
}

// parseDims consumes zero or more "[" bound "]" suffixes trailing a
// declared name and appends them to typeNode's dimension chain.
func (p *Parser) parseDims(typeNode *ast.Node) {
	for p.at(lexer.LBracket) {
		p.advance()
		bound := p.parseBoundExpr()
		p.expect(lexer.RBracket, "']'")
		dim := ast.MakeOp(ast.IndexOp, bound, ast.Null())
		ast.SetRight(typeNode, ast.AttachRightmost(dim, ast.Right(typeNode)))
	}
}

// parseBoundExpr allows an array bound to be either a literal or a named
// constant, matching the analyzer's type_id handler which resolves an
// identifier bound via lookup.
func (p *Parser) parseBoundExpr() *ast.Node {
	if p.at(lexer.Ident) {
		tok := p.tok
		p.advance()
		return ast.SetLineNo(ast.MakeLeaf(ast.IdRef, int(p.intern(tok.Text))), tok.Pos.Line)
	}
	tok := p.expect(lexer.IntLiteral, "array bound")
	return ast.SetLineNo(ast.MakeLeaf(ast.IntLit, tok.IntVal), tok.Pos.Line)
}

// block ::= "{" stmt* "}"
func (p *Parser) parseBlock() *ast.Node {
	p.expect(lexer.LBrace, "'{'")
	var spine *ast.Node
	for !p.at(lexer.RBrace) {
		stmt := p.parseStmt()
		wrapper := ast.MakeOp(ast.StmtOp, stmt, ast.Null())
		spine = ast.AttachRightmost(wrapper, spine)
	}
	p.expect(lexer.RBrace, "'}'")
	return spine
}

// stmt dispatches on the leading token.
func (p *Parser) parseStmt() *ast.Node {
	switch p.tok.Type {
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwReturn:
		return p.parseReturn()
	case lexer.LBrace:
		return p.parseBlock()
	case lexer.KwInt:
		return p.parseDeclStmt()
	case lexer.Ident:
		// Could be a local declaration with a class-typed variable, or an
		// assignment / call. A class type name and a variable reference
		// both start with an identifier; disambiguate by whether a second
		// identifier follows immediately (a declarator), which this
		// grammar resolves with one token of lookahead via the lexer's
		// own position rather than a second lexer instance.
		return p.parseIdentStmt()
	default:
		panic(&parseError{msg: fmt.Sprintf("line %d: unexpected token in statement", p.tok.Pos.Line)})
	}
}

// parseIdentStmt disambiguates "ClassName x;" (a declaration) from
// "x := expr;" / "x[i] := expr;" / "x.f();" (a variable use) by checking
// whether a second identifier directly follows the first - the only shape a
// declaration can take that a variable use cannot, since array dimensions
// always trail the declared name rather than the type name.
func (p *Parser) parseIdentStmt() *ast.Node {
	save := *p.lex
	saveTok := p.tok

	p.advance()
	isDecl := p.at(lexer.Ident)

	*p.lex = save
	p.tok = saveTok

	if isDecl {
		return p.parseDeclStmt()
	}
	return p.parseAssignOrCall()
}

// declStmt ::= typeID declarator ("," declarator)* ";"
func (p *Parser) parseDeclStmt() *ast.Node {
	line := p.line()
	baseType := p.parseTypeID()

	var spine *ast.Node
	for {
		declarator := p.parseDeclarator(cloneType(baseType))
		spine = ast.MakeOp(ast.DeclOp, spine, declarator)
		if !p.at(lexer.Comma) {
			break
		}
		p.advance()
	}
	p.expect(lexer.Semicolon, "';'")
	return ast.SetLineNo(spine, line)
}

// cloneType makes an independent copy of a type subtree so that several
// declarators sharing one written type ("int a, b;") each own their own
// TypeIdOp node - the analyzer resolves and mutates each declarator's type
// in place, and sharing one node between declarators would double-resolve
// (harmlessly, since Lookup on an already-SymRef base never runs again) but
// is the wrong aliasing discipline to model for an AST whose ownership is
// meant to be a tree, not a DAG.
func cloneType(n *ast.Node) *ast.Node {
	if ast.IsNull(n) {
		return ast.Null()
	}
	if ast.KindOf(n) != ast.Op {
		return ast.SetLineNo(ast.MakeLeaf(ast.KindOf(n), ast.IntOf(n)), ast.LineOf(n))
	}
	clone := ast.MakeOp(ast.OpOf(n), cloneType(ast.Left(n)), cloneType(ast.Right(n)))
	return ast.SetLineNo(clone, ast.LineOf(n))
}

// declarator ::= ident ("[" boundExpr "]")* (":=" expr)?
func (p *Parser) parseDeclarator(typeNode *ast.Node) *ast.Node {
	name := p.expect(lexer.Ident, "declarator name")
	nameNode := ast.SetLineNo(ast.MakeLeaf(ast.IdRef, int(p.intern(name.Text))), name.Pos.Line)

	p.parseDims(typeNode)

	var init *ast.Node = ast.Null()
	if p.at(lexer.Assign) {
		p.advance()
		init = p.parseExpr()
	}

	rest := ast.MakeOp(ast.CommaOp, typeNode, init)
	n := ast.MakeOp(ast.CommaOp, nameNode, rest)
	return ast.SetLineNo(n, name.Pos.Line)
}

// ifStmt ::= "if" "(" expr ")" stmt ("else" stmt)?
func (p *Parser) parseIf() *ast.Node {
	line := p.line()
	p.expect(lexer.KwIf, "'if'")
	p.expect(lexer.LParen, "'('")
	cond := p.parseExpr()
	p.expect(lexer.RParen, "')'")
	thenStmt := p.parseStmt()

	elseStmt := ast.Null()
	if p.at(lexer.KwElse) {
		p.advance()
		elseStmt = p.parseStmt()
	}

	branches := ast.MakeOp(ast.CommaOp, thenStmt, elseStmt)
	n := ast.MakeOp(ast.IfElseOp, cond, branches)
	return ast.SetLineNo(n, line)
}

// whileStmt ::= "while" "(" expr ")" stmt
func (p *Parser) parseWhile() *ast.Node {
	line := p.line()
	p.expect(lexer.KwWhile, "'while'")
	p.expect(lexer.LParen, "'('")
	cond := p.parseExpr()
	p.expect(lexer.RParen, "')'")
	body := p.parseStmt()
	n := ast.MakeOp(ast.LoopOp, cond, body)
	return ast.SetLineNo(n, line)
}

// returnStmt ::= "return" expr? ";"
func (p *Parser) parseReturn() *ast.Node {
	line := p.line()
	p.expect(lexer.KwReturn, "'return'")
	value := ast.Null()
	if !p.at(lexer.Semicolon) {
		value = p.parseExpr()
	}
	p.expect(lexer.Semicolon, "';'")
	n := ast.MakeOp(ast.ReturnOp, value, ast.Null())
	return ast.SetLineNo(n, line)
}

// assignOrCall ::= var (":=" expr | "(" argList ")") ";"
func (p *Parser) parseAssignOrCall() *ast.Node {
	line := p.line()
	v := p.parseVar()

	if p.at(lexer.LParen) {
		p.advance()
		args := p.parseArgList()
		p.expect(lexer.RParen, "')'")
		p.expect(lexer.Semicolon, "';'")
		n := ast.MakeOp(ast.RoutineCallOp, v, args)
		return ast.SetLineNo(n, line)
	}

	p.expect(lexer.Assign, "':='")
	rhs := p.parseExpr()
	p.expect(lexer.Semicolon, "';'")
	n := ast.MakeOp(ast.AssignOp, v, rhs)
	return ast.SetLineNo(n, line)
}

// argList ::= (expr ("," expr)*)?
func (p *Parser) parseArgList() *ast.Node {
	if p.at(lexer.RParen) {
		return ast.Null()
	}
	var spine *ast.Node
	for {
		wrapper := ast.MakeOp(ast.CommaOp, p.parseExpr(), ast.Null())
		spine = ast.AttachRightmost(wrapper, spine)
		if !p.at(lexer.Comma) {
			break
		}
		p.advance()
	}
	return spine
}

// var ::= ident ( "." ident | "[" expr "]" )*
func (p *Parser) parseVar() *ast.Node {
	line := p.line()
	name := p.expect(lexer.Ident, "identifier")
	base := ast.SetLineNo(ast.MakeLeaf(ast.IdRef, int(p.intern(name.Text))), name.Pos.Line)

	var chain *ast.Node
	for {
		switch p.tok.Type {
		case lexer.Dot:
			p.advance()
			fname := p.expect(lexer.Ident, "field name")
			fnode := ast.SetLineNo(ast.MakeLeaf(ast.IdRef, int(p.intern(fname.Text))), fname.Pos.Line)
			field := ast.SetLineNo(ast.MakeOp(ast.FieldOp, fnode, ast.Null()), fname.Pos.Line)
			step := ast.MakeOp(ast.SelectOp, field, ast.Null())
			chain = ast.AttachRightmost(step, chain)
		case lexer.LBracket:
			p.advance()
			idxLine := p.line()
			expr := p.parseExpr()
			p.expect(lexer.RBracket, "']'")
			idx := ast.SetLineNo(ast.MakeOp(ast.IndexOp, expr, ast.Null()), idxLine)
			step := ast.MakeOp(ast.SelectOp, idx, ast.Null())
			chain = ast.AttachRightmost(step, chain)
		default:
			n := ast.MakeOp(ast.VarOp, base, chain)
			return ast.SetLineNo(n, line)
		}
	}
}

// Expression grammar, lowest to highest precedence:
//
//	expr    ::= and ("or" and)*
//	and     ::= rel ("and" rel)*
//	rel     ::= add (relOp add)?
//	add     ::= mul (("+" | "-") mul)*
//	mul     ::= unary (("*" | "/") unary)*
//	unary   ::= ("-" | "not")? primary
//	primary ::= intLit | stringLit | charLit | var | "(" expr ")"
func (p *Parser) parseExpr() *ast.Node { return p.parseOr() }

func (p *Parser) parseOr() *ast.Node {
	left := p.parseAnd()
	for p.at(lexer.Or) {
		line := p.line()
		p.advance()
		right := p.parseAnd()
		left = ast.SetLineNo(ast.MakeOp(ast.OrOp, left, right), line)
	}
	return left
}

func (p *Parser) parseAnd() *ast.Node {
	left := p.parseRel()
	for p.at(lexer.And) {
		line := p.line()
		p.advance()
		right := p.parseRel()
		left = ast.SetLineNo(ast.MakeOp(ast.AndOp, left, right), line)
	}
	return left
}

func (p *Parser) parseRel() *ast.Node {
	left := p.parseAdd()
	op, ok := relOp(p.tok.Type)
	if !ok {
		return left
	}
	line := p.line()
	p.advance()
	right := p.parseAdd()
	return ast.SetLineNo(ast.MakeOp(op, left, right), line)
}

func relOp(tt lexer.TokenType) (ast.OpKind, bool) {
	switch tt {
	case lexer.Lt:
		return ast.LTOp, true
	case lexer.Gt:
		return ast.GTOp, true
	case lexer.Le:
		return ast.LEOp, true
	case lexer.Ge:
		return ast.GEOp, true
	case lexer.Eq:
		return ast.EQOp, true
	case lexer.Ne:
		return ast.NEOp, true
	default:
		return 0, false
	}
}

func (p *Parser) parseAdd() *ast.Node {
	left := p.parseMul()
	for p.at(lexer.Plus) || p.at(lexer.Minus) {
		line := p.line()
		op := ast.AddOp
		if p.at(lexer.Minus) {
			op = ast.SubOp
		}
		p.advance()
		right := p.parseMul()
		left = ast.SetLineNo(ast.MakeOp(op, left, right), line)
	}
	return left
}

func (p *Parser) parseMul() *ast.Node {
	left := p.parseUnary()
	for p.at(lexer.Star) || p.at(lexer.Slash) {
		line := p.line()
		op := ast.MultOp
		if p.at(lexer.Slash) {
			op = ast.DivOp
		}
		p.advance()
		right := p.parseUnary()
		left = ast.SetLineNo(ast.MakeOp(op, left, right), line)
	}
	return left
}

func (p *Parser) parseUnary() *ast.Node {
	if p.at(lexer.Minus) {
		line := p.line()
		p.advance()
		operand := p.parseUnary()
		return ast.SetLineNo(ast.MakeOp(ast.UnaryNegOp, operand, ast.Null()), line)
	}
	if p.at(lexer.Not) {
		line := p.line()
		p.advance()
		operand := p.parseUnary()
		return ast.SetLineNo(ast.MakeOp(ast.NotOp, operand, ast.Null()), line)
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() *ast.Node {
	tok := p.tok
	switch tok.Type {
	case lexer.IntLiteral:
		p.advance()
		return ast.SetLineNo(ast.MakeLeaf(ast.IntLit, tok.IntVal), tok.Pos.Line)
	case lexer.CharLiteral:
		p.advance()
		return ast.SetLineNo(ast.MakeLeaf(ast.CharLit, tok.IntVal), tok.Pos.Line)
	case lexer.StringLiteral:
		p.advance()
		return ast.SetLineNo(ast.MakeLeaf(ast.StringLit, int(p.intern(tok.Text))), tok.Pos.Line)
	case lexer.LParen:
		p.advance()
		n := p.parseExpr()
		p.expect(lexer.RParen, "')'")
		return n
	case lexer.Ident:
		return p.parseVar()
	default:
		panic(&parseError{msg: fmt.Sprintf("line %d: unexpected token in expression", tok.Pos.Line)})
	}
}
