package jsfront

import (
	"fmt"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"awaitlint/internal/ast"
	"awaitlint/internal/diag"
	"awaitlint/internal/source"
)

type converter struct {
	b       *ast.Builder
	r       diag.Reporter
	file    source.FileID
	content []byte
	// fnDepth считает функции вокруг текущего узла
	fnDepth int
	// commonJS allows a top-level return, as Node's module wrapper does.
	commonJS bool
}

func (c *converter) span(n *sitter.Node) source.Span {
	return source.Span{File: c.file, Start: n.StartByte(), End: n.EndByte()}
}

func (c *converter) text(n *sitter.Node) string {
	return string(c.content[n.StartByte():n.EndByte()])
}

// program converts the root node. The file span always covers the whole
// content; tree-sitter starts the root after leading whitespace.
func (c *converter) program(root *sitter.Node) ast.FileID {
	end, err := safecast.Conv[uint32](len(c.content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	id := c.b.NewFile(source.Span{File: c.file, Start: 0, End: end})
	for _, st := range c.statements(root) {
		c.b.PushStmt(id, st)
	}
	return id
}

// statements converts every named, non-comment child in statement position.
func (c *converter) statements(n *sitter.Node) []ast.StmtID {
	out := make([]ast.StmtID, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || isTrivia(child.Type()) {
			continue
		}
		out = append(out, c.stmt(child))
	}
	return out
}

// children converts the named children of n in source order, skipping the
// node passed as skip (usually a body handled separately).
func (c *converter) children(n *sitter.Node, skip *sitter.Node) []ast.Child {
	var out []ast.Child
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || isTrivia(child.Type()) || child.IsMissing() {
			continue
		}
		if skip != nil && child.Equal(skip) {
			continue
		}
		if isStatement(child.Type()) {
			out = append(out, ast.StmtChild(c.stmt(child)))
		} else {
			out = append(out, ast.ExprChild(c.expr(child)))
		}
	}
	return out
}

// insideError reports whether n sits under an ERROR node; recovery has
// already been reported there.
func insideError(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == nodeError {
			return true
		}
	}
	return false
}

// firstNamed returns the first named child that is not trivia.
func firstNamed(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child != nil && !isTrivia(child.Type()) && !child.IsMissing() {
			return child
		}
	}
	return nil
}

func (c *converter) stmt(n *sitter.Node) ast.StmtID {
	sp := c.span(n)
	switch n.Type() {
	case nodeStatementBlock:
		return c.b.Stmts.NewBlock(sp, c.statements(n))
	case nodeExprStatement:
		x := firstNamed(n)
		if x == nil {
			return c.b.Stmts.NewExpr(sp, ast.NoExprID)
		}
		return c.b.Stmts.NewExpr(sp, c.expr(x))
	case nodeReturn:
		arg := ast.NoExprID
		if x := firstNamed(n); x != nil {
			arg = c.expr(x)
		}
		if c.fnDepth == 0 {
			return c.strayReturn(n, arg)
		}
		return c.b.Stmts.NewReturn(sp, arg)
	case nodeTry:
		return c.try(n)
	case nodeFnDecl, nodeGenFnDecl:
		return c.b.NewFnDecl(c.fn(n, ast.FnDecl))
	default:
		return c.b.Stmts.NewOther(sp, n.Type(), c.children(n, nil)...)
	}
}

// strayReturn handles a return outside of any function. tree-sitter
// accepts it; the lint tree must not contain it, so it becomes an Other
// statement that still keeps its argument reachable.
func (c *converter) strayReturn(n *sitter.Node, arg ast.ExprID) ast.StmtID {
	if !c.commonJS && !insideError(n) {
		diag.ReportError(c.r, diag.SynStrayReturn, c.span(n),
			"A 'return' statement can only be used within a function body.").
			Emit()
	}
	if !arg.IsValid() {
		return c.b.Stmts.NewOther(c.span(n), n.Type())
	}
	return c.b.Stmts.NewOther(c.span(n), n.Type(), ast.ExprChild(arg))
}

func (c *converter) try(n *sitter.Node) ast.StmtID {
	data := ast.TryStmt{}
	if body := n.ChildByFieldName("body"); body != nil {
		data.Block = c.stmt(body)
	}
	if handler := n.ChildByFieldName("handler"); handler != nil {
		if param := handler.ChildByFieldName("parameter"); param != nil {
			data.Param = c.expr(param)
		}
		if body := handler.ChildByFieldName("body"); body != nil {
			data.Handler = c.stmt(body)
		}
	}
	if finalizer := n.ChildByFieldName("finalizer"); finalizer != nil {
		if body := finalizer.ChildByFieldName("body"); body != nil {
			data.Finalizer = c.stmt(body)
		}
	}
	return c.b.Stmts.NewTry(c.span(n), data)
}

// fn converts any function-like node. Everything except the body goes to
// Head so nested functions in default values stay reachable.
func (c *converter) fn(n *sitter.Node, kind ast.FnKind) ast.Fn {
	fn := ast.Fn{Kind: kind, Span: c.span(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.Type() == nodeAsync && !child.IsNamed() {
			fn.IsAsync = true
			break
		}
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = c.text(name)
	}

	c.fnDepth++
	defer func() { c.fnDepth-- }()

	body := n.ChildByFieldName("body")
	for _, ch := range c.children(n, body) {
		if !ch.IsStmt() {
			fn.Head = append(fn.Head, ch.Expr)
		}
	}
	switch {
	case body == nil:
	case body.Type() == nodeStatementBlock:
		fn.Body = c.stmt(body)
	default:
		fn.ExprBody = c.expr(body)
	}
	return fn
}

func (c *converter) expr(n *sitter.Node) ast.ExprID {
	sp := c.span(n)
	switch n.Type() {
	case nodeParen:
		if inner := firstNamed(n); inner != nil {
			return c.expr(inner)
		}
	case nodeAwait:
		return c.await(n)
	case nodeBinary:
		if op, ok := logicalOp(n); ok {
			left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
			if left != nil && right != nil {
				return c.b.Exprs.NewLogical(sp, op, c.expr(left), c.expr(right))
			}
		}
	case nodeTernary:
		test := n.ChildByFieldName("condition")
		cons := n.ChildByFieldName("consequence")
		alt := n.ChildByFieldName("alternative")
		if test != nil && cons != nil && alt != nil {
			return c.b.Exprs.NewConditional(sp, c.expr(test), c.expr(cons), c.expr(alt))
		}
	case nodeSequence:
		if items := c.sequence(n, nil); len(items) > 0 {
			return c.b.Exprs.NewSequence(sp, items)
		}
	case nodeFnExpr, nodeFnExprLegacy, nodeGenFnExpr:
		return c.b.NewFnExpr(c.fn(n, ast.FnExpr))
	case nodeArrow:
		return c.b.NewFnExpr(c.fn(n, ast.FnArrow))
	case nodeMethod:
		return c.b.NewFnExpr(c.fn(n, ast.FnMethod))
	}
	return c.b.Exprs.NewOther(sp, n.Type(), c.children(n, nil)...)
}

func (c *converter) await(n *sitter.Node) ast.ExprID {
	keyword := c.span(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.Type() == nodeAwaitKeyword && !child.IsNamed() {
			keyword = c.span(child)
			break
		}
	}
	arg := ast.NoExprID
	if x := firstNamed(n); x != nil {
		arg = c.expr(x)
	}
	return c.b.Exprs.NewAwait(c.span(n), keyword, arg)
}

// sequence flattens nested sequence_expression nodes; older grammars nest
// them through left/right fields.
func (c *converter) sequence(n *sitter.Node, out []ast.ExprID) []ast.ExprID {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || isTrivia(child.Type()) || child.IsMissing() {
			continue
		}
		if child.Type() == nodeSequence {
			out = c.sequence(child, out)
			continue
		}
		out = append(out, c.expr(child))
	}
	return out
}

func logicalOp(n *sitter.Node) (ast.LogicalOp, bool) {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return 0, false
	}
	switch op.Type() {
	case "&&":
		return ast.LogicalAnd, true
	case "||":
		return ast.LogicalOr, true
	case "??":
		return ast.LogicalCoalesce, true
	}
	return 0, false
}
