package lint

import (
	"slices"
	"testing"

	"awaitlint/internal/ast"
)

func TestTailAwaits(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		build func(tb *treeBuilder) ast.ExprID
		// indexes of the `await` occurrences expected, in order
		want []int
	}{
		{
			name:  "plain await",
			src:   "await p1",
			build: func(tb *treeBuilder) ast.ExprID { return tb.await("p1") },
			want:  []int{0},
		},
		{
			name: "logical right operand",
			src:  "c1 && await p1",
			build: func(tb *treeBuilder) ast.ExprID {
				return tb.logical(ast.LogicalAnd, tb.other("c1"), tb.await("p1"))
			},
			want: []int{0},
		},
		{
			name: "logical left operand ignored",
			src:  "await p1 || c1",
			build: func(tb *treeBuilder) ast.ExprID {
				return tb.logical(ast.LogicalOr, tb.await("p1"), tb.other("c1"))
			},
			want: nil,
		},
		{
			name: "coalesce right operand",
			src:  "c1 ?? await p1",
			build: func(tb *treeBuilder) ast.ExprID {
				return tb.logical(ast.LogicalCoalesce, tb.other("c1"), tb.await("p1"))
			},
			want: []int{0},
		},
		{
			name: "sequence last item",
			src:  "c1, await p1",
			build: func(tb *treeBuilder) ast.ExprID {
				return tb.seq(tb.other("c1"), tb.await("p1"))
			},
			want: []int{0},
		},
		{
			name: "sequence earlier item ignored",
			src:  "await p1, c1",
			build: func(tb *treeBuilder) ast.ExprID {
				return tb.seq(tb.await("p1"), tb.other("c1"))
			},
			want: nil,
		},
		{
			name: "conditional consequent",
			src:  "t1 ? await p1 : c1",
			build: func(tb *treeBuilder) ast.ExprID {
				return tb.cond(tb.other("t1"), tb.await("p1"), tb.other("c1"))
			},
			want: []int{0},
		},
		{
			name: "conditional alternate",
			src:  "t1 ? c1 : await p1",
			build: func(tb *treeBuilder) ast.ExprID {
				return tb.cond(tb.other("t1"), tb.other("c1"), tb.await("p1"))
			},
			want: []int{0},
		},
		{
			name: "conditional both branches in order",
			src:  "t1 ? await p1 : await p2",
			build: func(tb *treeBuilder) ast.ExprID {
				return tb.cond(tb.other("t1"), tb.await("p1"), tb.await("p2"))
			},
			want: []int{0, 1},
		},
		{
			name: "conditional test ignored",
			src:  "await t1 ? c1 : c2",
			build: func(tb *treeBuilder) ast.ExprID {
				return tb.cond(tb.await("t1"), tb.other("c1"), tb.other("c2"))
			},
			want: nil,
		},
		{
			name: "deep nesting",
			src:  "c1 && (c2, t1 ? (c3 || await p1) : (c4, await p2))",
			build: func(tb *treeBuilder) ast.ExprID {
				c1, c2, t1, c3 := tb.other("c1"), tb.other("c2"), tb.other("t1"), tb.other("c3")
				cons := tb.logical(ast.LogicalOr, c3, tb.await("p1"))
				alt := tb.seq(tb.other("c4"), tb.await("p2"))
				return tb.logical(ast.LogicalAnd, c1, tb.seq(c2, tb.cond(t1, cons, alt)))
			},
			want: []int{0, 1},
		},
		{
			name: "await nested in await stops at outer",
			src:  "await await p1",
			build: func(tb *treeBuilder) ast.ExprID {
				outer := tb.span("await")
				inner := tb.await("p1")
				return tb.b.Exprs.NewAwait(outer.Cover(tb.b.Exprs.Get(inner).Span), outer, inner)
			},
			want: []int{0},
		},
		{
			name: "call argument ignored",
			src:  "f1(await p1)",
			build: func(tb *treeBuilder) ast.ExprID {
				callee := tb.other("f1")
				arg := tb.await("p1")
				return tb.b.Exprs.NewOther(tb.cover(callee, arg), "call_expression", ast.ExprChild(callee), ast.ExprChild(arg))
			},
			want: nil,
		},
		{
			name: "function expression ignored",
			src:  "async () => { return await p1 }",
			build: func(tb *treeBuilder) ast.ExprID {
				return tb.fnExpr(ast.FnArrow, true, tb.ret(tb.await("p1")))
			},
			want: nil,
		},
		{
			name:  "absent expression",
			src:   "",
			build: func(*treeBuilder) ast.ExprID { return ast.NoExprID },
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTreeBuilder(t, tt.src)
			id := tt.build(tb)
			got := tb.starts(TailAwaits(tb.b.Exprs, id))

			want := make([]uint32, 0, len(tt.want))
			for _, n := range tt.want {
				want = append(want, tb.offsetOf("await", n))
			}
			if !slices.Equal(got, want) {
				t.Fatalf("TailAwaits offsets = %v, want %v", got, want)
			}
		})
	}
}

func TestTailAwaitsIsPure(t *testing.T) {
	tb := newTreeBuilder(t, "t1 ? await p1 : await p2")
	id := tb.cond(tb.other("t1"), tb.await("p1"), tb.await("p2"))
	before := tb.b.Exprs.Arena.Len()

	first := TailAwaits(tb.b.Exprs, id)
	second := TailAwaits(tb.b.Exprs, id)
	if !slices.Equal(first, second) {
		t.Fatalf("results differ: %v vs %v", first, second)
	}
	if tb.b.Exprs.Arena.Len() != before {
		t.Fatalf("classifier allocated nodes")
	}
}
