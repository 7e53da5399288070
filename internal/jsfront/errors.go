package jsfront

import (
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"awaitlint/internal/diag"
)

const maxSnippet = 24

// reportSyntaxErrors reports every ERROR and MISSING node under root and
// returns how many it found. Subtrees without errors are skipped.
func reportSyntaxErrors(root *sitter.Node, c *converter, r diag.Reporter) int {
	if root == nil || !root.HasError() {
		return 0
	}
	count := 0
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch {
		case n.IsMissing():
			count++
			diag.ReportError(r, diag.SynMissingToken, c.span(n),
				fmt.Sprintf("Missing `%s`.", n.Type())).
				Emit()
			return
		case n.Type() == nodeError:
			count++
			diag.ReportError(r, diag.SynSyntaxError, c.span(n),
				fmt.Sprintf("Unexpected `%s`.", snippet(c.text(n)))).
				WithPrimaryText("not valid JavaScript here").
				Emit()
			return
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil {
				visit(child)
			}
		}
	}
	visit(root)
	return count
}

// snippet shortens text to one line of at most maxSnippet code points.
func snippet(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + "…"
	}
	if utf8.RuneCountInString(text) <= maxSnippet {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxSnippet]) + "…"
}
