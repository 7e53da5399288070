package lint

import (
	"awaitlint/internal/ast"
	"awaitlint/internal/source"
)

// TailAwaits returns the keyword spans of every await whose value is the
// value of the expression id. Only value-preserving wrappers are looked
// through: the right operand of &&, || and ??, the last item of a comma
// sequence and both branches of a conditional. Spans come out in source
// order.
func TailAwaits(exprs *ast.Exprs, id ast.ExprID) []source.Span {
	return appendTailAwaits(nil, exprs, id)
}

func appendTailAwaits(out []source.Span, exprs *ast.Exprs, id ast.ExprID) []source.Span {
	expr := exprs.Get(id)
	if expr == nil {
		return out
	}
	switch expr.Kind {
	case ast.ExprAwait:
		data, _ := exprs.Await(id)
		return append(out, data.Keyword)
	case ast.ExprLogical:
		data, _ := exprs.Logical(id)
		return appendTailAwaits(out, exprs, data.Right)
	case ast.ExprSequence:
		data, _ := exprs.Sequence(id)
		if len(data.Items) == 0 {
			return out
		}
		return appendTailAwaits(out, exprs, data.Items[len(data.Items)-1])
	case ast.ExprConditional:
		data, _ := exprs.Conditional(id)
		out = appendTailAwaits(out, exprs, data.Consequent)
		return appendTailAwaits(out, exprs, data.Alternate)
	case ast.ExprFunc, ast.ExprOther:
		return out
	default:
		return out
	}
}
