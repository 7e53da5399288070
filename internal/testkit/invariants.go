package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"awaitlint/internal/ast"
	"awaitlint/internal/source"
)

// CheckSpanInvariants validates the spans of a converted file:
// 1) file.Span points at sf and lies within its content
// 2) every statement, expression and function span nests inside its parent
// 3) every await keyword span is exactly the text "await" inside its expression
// 4) children of Other nodes follow source order
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.Start > f.Span.End || f.Span.End > lenContent {
		return fmt.Errorf("file span %v outside content of %d bytes", f.Span, lenContent)
	}

	c := &spanChecker{b: b, sf: sf}
	for _, st := range f.Stmts {
		c.stmt(st, f.Span)
	}
	return c.err
}

type spanChecker struct {
	b   *ast.Builder
	sf  *source.File
	err error
}

func (c *spanChecker) check(what string, sp, parent source.Span) bool {
	if c.err != nil {
		return false
	}
	if sp.File != c.sf.ID {
		c.err = fmt.Errorf("%s span %v: file mismatch, want %d", what, sp, c.sf.ID)
		return false
	}
	if sp.Start > sp.End {
		c.err = fmt.Errorf("%s span %v is inverted", what, sp)
		return false
	}
	if !parent.Contains(sp) {
		c.err = fmt.Errorf("%s span %v is outside parent %v", what, sp, parent)
		return false
	}
	return true
}

func (c *spanChecker) stmts(ids []ast.StmtID, parent source.Span) {
	for _, id := range ids {
		c.stmt(id, parent)
	}
}

func (c *spanChecker) exprs(ids []ast.ExprID, parent source.Span) {
	for _, id := range ids {
		c.expr(id, parent)
	}
}

// children also checks that siblings do not go backwards.
func (c *spanChecker) children(children []ast.Child, parent source.Span) {
	prev := parent.Start
	for _, ch := range children {
		var sp source.Span
		if ch.IsStmt() {
			if st := c.b.Stmts.Get(ch.Stmt); st != nil {
				sp = st.Span
			}
			c.stmt(ch.Stmt, parent)
		} else {
			if e := c.b.Exprs.Get(ch.Expr); e != nil {
				sp = e.Span
			}
			c.expr(ch.Expr, parent)
		}
		if c.err != nil {
			return
		}
		if sp.Start < prev {
			c.err = fmt.Errorf("child %v starts before its previous sibling ends in %v", sp, parent)
			return
		}
		prev = sp.End
	}
}

func (c *spanChecker) stmt(id ast.StmtID, parent source.Span) {
	st := c.b.Stmts.Get(id)
	if st == nil || !c.check("stmt "+st.Kind.String(), st.Span, parent) {
		return
	}
	sp := st.Span
	switch st.Kind {
	case ast.StmtBlock:
		data, _ := c.b.Stmts.Block(id)
		c.stmts(data.Stmts, sp)
	case ast.StmtExpr:
		data, _ := c.b.Stmts.Expr(id)
		c.expr(data.X, sp)
	case ast.StmtReturn:
		data, _ := c.b.Stmts.Return(id)
		c.expr(data.Arg, sp)
	case ast.StmtTry:
		data, _ := c.b.Stmts.Try(id)
		c.stmt(data.Block, sp)
		c.expr(data.Param, sp)
		c.stmt(data.Handler, sp)
		c.stmt(data.Finalizer, sp)
	case ast.StmtFunc:
		data, _ := c.b.Stmts.Func(id)
		c.fn(data.Fn, sp)
	case ast.StmtOther:
		data, _ := c.b.Stmts.Other(id)
		c.children(data.Children, sp)
	}
}

func (c *spanChecker) fn(id ast.FnID, parent source.Span) {
	fn := c.b.Fns.Get(id)
	if fn == nil || !c.check("fn", fn.Span, parent) {
		return
	}
	c.exprs(fn.Head, fn.Span)
	c.stmt(fn.Body, fn.Span)
	c.expr(fn.ExprBody, fn.Span)
}

func (c *spanChecker) expr(id ast.ExprID, parent source.Span) {
	e := c.b.Exprs.Get(id)
	if e == nil || !c.check("expr "+e.Kind.String(), e.Span, parent) {
		return
	}
	sp := e.Span
	switch e.Kind {
	case ast.ExprAwait:
		data, _ := c.b.Exprs.Await(id)
		if !c.check("await keyword", data.Keyword, sp) {
			return
		}
		if kw := c.sf.Slice(data.Keyword); kw != "await" {
			c.err = fmt.Errorf("await keyword span %v covers %q", data.Keyword, kw)
			return
		}
		c.expr(data.Arg, sp)
	case ast.ExprLogical:
		data, _ := c.b.Exprs.Logical(id)
		c.expr(data.Left, sp)
		c.expr(data.Right, sp)
	case ast.ExprSequence:
		data, _ := c.b.Exprs.Sequence(id)
		if len(data.Items) == 0 {
			c.err = fmt.Errorf("empty sequence at %v", sp)
			return
		}
		c.exprs(data.Items, sp)
	case ast.ExprConditional:
		data, _ := c.b.Exprs.Conditional(id)
		c.expr(data.Test, sp)
		c.expr(data.Consequent, sp)
		c.expr(data.Alternate, sp)
	case ast.ExprFunc:
		data, _ := c.b.Exprs.Func(id)
		c.fn(data.Fn, sp)
	case ast.ExprOther:
		data, _ := c.b.Exprs.Other(id)
		c.children(data.Children, sp)
	}
}
