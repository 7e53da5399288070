package lint

import (
	"awaitlint/internal/ast"
	"awaitlint/internal/source"
)

// returnFunc is called for every return statement, before its argument is
// walked, with the frame of the innermost enclosing function.
type returnFunc func(id ast.StmtID, ret *ast.ReturnStmt, fr *frame) error

// walker visits the whole tree depth-first in pre-order, keeping the
// scope stack in sync with function and try boundaries. Nested functions
// are reached wherever they appear: parameters, call arguments, class
// bodies, object literals.
type walker struct {
	b        *ast.Builder
	rule     string
	scopes   scopeStack
	onReturn returnFunc
}

func newWalker(b *ast.Builder, rule string, onReturn returnFunc) *walker {
	return &walker{
		b:        b,
		rule:     rule,
		scopes:   newScopeStack(),
		onReturn: onReturn,
	}
}

func (w *walker) walkFile(id ast.FileID) error {
	f := w.b.Files.Get(id)
	if f == nil {
		return internalErrorf(w.rule, source.Span{}, "unknown file %d", id)
	}
	for _, st := range f.Stmts {
		if err := w.walkStmt(st); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkStmts(ids []ast.StmtID) error {
	for _, id := range ids {
		if err := w.walkStmt(id); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkExprs(ids []ast.ExprID) error {
	for _, id := range ids {
		if err := w.walkExpr(id); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkChildren(children []ast.Child) error {
	for _, ch := range children {
		var err error
		if ch.IsStmt() {
			err = w.walkStmt(ch.Stmt)
		} else {
			err = w.walkExpr(ch.Expr)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkStmt(id ast.StmtID) error {
	st := w.b.Stmts.Get(id)
	if st == nil {
		return nil
	}
	switch st.Kind {
	case ast.StmtBlock:
		data, _ := w.b.Stmts.Block(id)
		return w.walkStmts(data.Stmts)
	case ast.StmtExpr:
		data, _ := w.b.Stmts.Expr(id)
		return w.walkExpr(data.X)
	case ast.StmtReturn:
		data, _ := w.b.Stmts.Return(id)
		if !w.scopes.inFunction() {
			return internalErrorf(w.rule, st.Span, "return statement outside of any function")
		}
		if w.onReturn != nil {
			if err := w.onReturn(id, data, w.scopes.top()); err != nil {
				return err
			}
		}
		return w.walkExpr(data.Arg)
	case ast.StmtTry:
		data, _ := w.b.Stmts.Try(id)
		return w.walkTry(data)
	case ast.StmtFunc:
		data, _ := w.b.Stmts.Func(id)
		return w.walkFn(data.Fn)
	case ast.StmtOther:
		data, _ := w.b.Stmts.Other(id)
		return w.walkChildren(data.Children)
	default:
		return nil
	}
}

// walkTry counts the try block as protected when there is a handler or a
// finalizer, and the handler as protected when a finalizer follows it.
func (w *walker) walkTry(data *ast.TryStmt) error {
	if err := w.walkGuarded(data.Block, data.Protected()); err != nil {
		return err
	}
	if err := w.walkExpr(data.Param); err != nil {
		return err
	}
	if err := w.walkGuarded(data.Handler, data.Finalizer.IsValid()); err != nil {
		return err
	}
	return w.walkStmt(data.Finalizer)
}

func (w *walker) walkGuarded(id ast.StmtID, guarded bool) error {
	if guarded && id.IsValid() {
		defer w.scopes.enterTry()()
	}
	return w.walkStmt(id)
}

func (w *walker) walkFn(id ast.FnID) error {
	fn := w.b.Fns.Get(id)
	if fn == nil {
		return nil
	}
	defer w.scopes.enterFn(fn.IsAsync)()

	if err := w.walkExprs(fn.Head); err != nil {
		return err
	}
	if fn.Body.IsValid() {
		return w.walkStmt(fn.Body)
	}
	return w.walkExpr(fn.ExprBody)
}

func (w *walker) walkExpr(id ast.ExprID) error {
	expr := w.b.Exprs.Get(id)
	if expr == nil {
		return nil
	}
	switch expr.Kind {
	case ast.ExprAwait:
		data, _ := w.b.Exprs.Await(id)
		return w.walkExpr(data.Arg)
	case ast.ExprLogical:
		data, _ := w.b.Exprs.Logical(id)
		if err := w.walkExpr(data.Left); err != nil {
			return err
		}
		return w.walkExpr(data.Right)
	case ast.ExprSequence:
		data, _ := w.b.Exprs.Sequence(id)
		return w.walkExprs(data.Items)
	case ast.ExprConditional:
		data, _ := w.b.Exprs.Conditional(id)
		if err := w.walkExpr(data.Test); err != nil {
			return err
		}
		if err := w.walkExpr(data.Consequent); err != nil {
			return err
		}
		return w.walkExpr(data.Alternate)
	case ast.ExprFunc:
		data, _ := w.b.Exprs.Func(id)
		return w.walkFn(data.Fn)
	case ast.ExprOther:
		data, _ := w.b.Exprs.Other(id)
		return w.walkChildren(data.Children)
	default:
		return nil
	}
}
