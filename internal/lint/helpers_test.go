package lint

import (
	"strings"
	"testing"

	"awaitlint/internal/ast"
	"awaitlint/internal/source"
)

// treeBuilder builds trees by hand over a source string; spans are found
// by searching the text so tests stay readable.
type treeBuilder struct {
	t   *testing.T
	src string
	b   *ast.Builder
	// next search position per needle, for repeated tokens
	cursor map[string]int
}

func newTreeBuilder(t *testing.T, src string) *treeBuilder {
	t.Helper()
	return &treeBuilder{t: t, src: src, b: ast.NewBuilder(ast.Hints{}), cursor: map[string]int{}}
}

// span returns the span of the next occurrence of needle.
func (tb *treeBuilder) span(needle string) source.Span {
	tb.t.Helper()
	from := tb.cursor[needle]
	idx := strings.Index(tb.src[from:], needle)
	if idx < 0 {
		tb.t.Fatalf("%q not found after offset %d", needle, from)
	}
	start := from + idx
	tb.cursor[needle] = start + len(needle)
	return source.Span{Start: uint32(start), End: uint32(start + len(needle))}
}

func (tb *treeBuilder) other(text string) ast.ExprID {
	return tb.b.Exprs.NewOther(tb.span(text), "identifier")
}

// await builds `await <arg>` where arg is the next occurrence of argText.
func (tb *treeBuilder) await(argText string) ast.ExprID {
	kw := tb.span("await")
	arg := tb.other(argText)
	full := source.Span{Start: kw.Start, End: tb.b.Exprs.Get(arg).Span.End}
	return tb.b.Exprs.NewAwait(full, kw, arg)
}

func (tb *treeBuilder) logical(op ast.LogicalOp, l, r ast.ExprID) ast.ExprID {
	return tb.b.Exprs.NewLogical(tb.cover(l, r), op, l, r)
}

func (tb *treeBuilder) seq(items ...ast.ExprID) ast.ExprID {
	return tb.b.Exprs.NewSequence(tb.cover(items[0], items[len(items)-1]), items)
}

func (tb *treeBuilder) cond(test, cons, alt ast.ExprID) ast.ExprID {
	return tb.b.Exprs.NewConditional(tb.cover(test, alt), test, cons, alt)
}

func (tb *treeBuilder) cover(a, b ast.ExprID) source.Span {
	return tb.b.Exprs.Get(a).Span.Cover(tb.b.Exprs.Get(b).Span)
}

func (tb *treeBuilder) ret(arg ast.ExprID) ast.StmtID {
	return tb.b.Stmts.NewReturn(tb.span("return"), arg)
}

func (tb *treeBuilder) block(stmts ...ast.StmtID) ast.StmtID {
	return tb.b.Stmts.NewBlock(source.Span{}, stmts)
}

func (tb *treeBuilder) fnDecl(async bool, body ...ast.StmtID) ast.StmtID {
	return tb.b.NewFnDecl(ast.Fn{IsAsync: async, Body: tb.block(body...)})
}

func (tb *treeBuilder) fnExpr(kind ast.FnKind, async bool, body ...ast.StmtID) ast.ExprID {
	return tb.b.NewFnExpr(ast.Fn{Kind: kind, IsAsync: async, Body: tb.block(body...)})
}

func (tb *treeBuilder) file(stmts ...ast.StmtID) ast.FileID {
	id := tb.b.NewFile(source.Span{End: uint32(len(tb.src))})
	for _, st := range stmts {
		tb.b.PushStmt(id, st)
	}
	return id
}

// starts checks every span covers `await` and returns their offsets.
func (tb *treeBuilder) starts(spans []source.Span) []uint32 {
	out := make([]uint32, 0, len(spans))
	for _, sp := range spans {
		if got := tb.src[sp.Start:sp.End]; got != "await" {
			tb.t.Fatalf("span %v covers %q, want await", sp, got)
		}
		out = append(out, sp.Start)
	}
	return out
}

func (tb *treeBuilder) offsetOf(needle string, nth int) uint32 {
	tb.t.Helper()
	pos := 0
	for i := 0; ; i++ {
		idx := strings.Index(tb.src[pos:], needle)
		if idx < 0 {
			tb.t.Fatalf("occurrence %d of %q not found", nth, needle)
		}
		if i == nth {
			return uint32(pos + idx)
		}
		pos += idx + len(needle)
	}
}
