package ast

import (
	"awaitlint/internal/source"
)

type Hints struct{ Files, Stmts, Exprs, Fns uint }

// Builder owns every arena of a parsed program. It is not safe for
// concurrent use; each file being linted gets its own Builder.
type Builder struct {
	Files *Files
	Stmts *Stmts
	Exprs *Exprs
	Fns   *Fns
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Fns == 0 {
		hints.Fns = 1 << 5
	}
	return &Builder{
		Files: NewFiles(hints.Files),
		Stmts: NewStmts(hints.Stmts),
		Exprs: NewExprs(hints.Exprs),
		Fns:   NewFns(hints.Fns),
	}
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return b.Files.New(sp)
}

func (b *Builder) PushStmt(file FileID, stmt StmtID) {
	b.Files.Append(file, stmt)
}

// NewFnDecl creates a function declaration statement.
func (b *Builder) NewFnDecl(fn Fn) StmtID {
	fn.Kind = FnDecl
	return b.Stmts.NewFunc(fn.Span, b.Fns.New(fn))
}

// NewFnExpr creates a function-valued expression (function expression,
// arrow or method).
func (b *Builder) NewFnExpr(fn Fn) ExprID {
	return b.Exprs.NewFunc(fn.Span, b.Fns.New(fn))
}
