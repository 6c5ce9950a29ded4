// Command mjfront drives the MJ front-end end to end: lex, parse, resolve,
// then, with -dump-symbols, dump the symbol table. It exists so the rest of the module has
// something real to run against, not as a production compiler driver.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hassandahiru/mj-frontend/internal/ast"
	"github.com/hassandahiru/mj-frontend/internal/diag"
	"github.com/hassandahiru/mj-frontend/internal/parser"
	"github.com/hassandahiru/mj-frontend/internal/semantic"
	"github.com/hassandahiru/mj-frontend/internal/strtab"
	"github.com/hassandahiru/mj-frontend/internal/symtab"
)

func main() {
	var (
		dumpSymbols = flag.Bool("dump-symbols", false, "print the symbol table after analysis")
		dumpTree    = flag.Bool("dump-tree", false, "print the parsed AST before analysis")
		maxStack    = flag.Int("max-stack", symtab.DefaultLimits.Stack, "scope stack capacity")
		maxSymbols  = flag.Int("max-symbols", symtab.DefaultLimits.Symbols, "symbol table capacity")
		maxAttrs    = flag.Int("max-attrs", symtab.DefaultLimits.Attrs, "attribute pool capacity")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mjfront [flags] <source-file>")
		os.Exit(1)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mjfront: %v\n", err)
		os.Exit(1)
	}

	names := strtab.New()
	p := parser.New(string(src), names)
	root, err := p.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mjfront: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Parsing successful")

	if *dumpTree {
		ast.PrintTree(os.Stdout, root)
	}

	rep := diag.New(names)
	limits := symtab.Limits{Stack: *maxStack, Symbols: *maxSymbols, Attrs: *maxAttrs}
	syms := symtab.NewWithLimits(names, rep, limits)
	syms.Init()

	a := semantic.New(names, syms, rep)
	a.Analyze(root)

	if rep.Errors > 0 {
		os.Exit(1)
	}
	fmt.Println("✓ Semantic analysis successful")

	if *dumpSymbols {
		syms.PrintTable(os.Stdout)
	}
}
