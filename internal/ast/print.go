package ast

import (
	"fmt"
	"io"
	"strings"
)

// PrintTree writes an indented dump of n to w, in the shape classic
// recursive-descent compilers use for debugging parse trees: the right
// subtree is printed first (deeper indentation), then the node itself,
// then the left subtree - so reading top to bottom gives a left-to-right
// visual tree when you tilt your head.
//
// DESIGN CHOICE: this takes an io.Writer rather than returning a string
// because dumps are only ever consumed by tests or a CLI's -dump-tree flag,
// both of which already have a natural writer (a bytes.Buffer or os.Stdout)
// - there's no need to build an intermediate string just to discard it.
func PrintTree(w io.Writer, n *Node) {
	printTreeIndent(w, n, 0)
}

func printTreeIndent(w io.Writer, n *Node, indent int) {
	if IsNull(n) {
		return
	}
	printTreeIndent(w, Right(n), indent+1)
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", indent), describe(n))
	printTreeIndent(w, Left(n), indent+1)
}

func describe(n *Node) string {
	if n.Kind == Op {
		return n.OpKind.String()
	}
	return fmt.Sprintf("%s(%d)", n.Kind.String(), n.Value)
}

// TreeString is a convenience wrapper around PrintTree for callers (mainly
// tests) that want the dump as a string instead of writing to a stream.
func TreeString(n *Node) string {
	var b strings.Builder
	PrintTree(&b, n)
	return b.String()
}
