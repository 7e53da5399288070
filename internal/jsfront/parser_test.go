package jsfront

import (
	"context"
	"errors"
	"strings"
	"testing"

	"awaitlint/internal/ast"
	"awaitlint/internal/diag"
	"awaitlint/internal/source"
	"awaitlint/internal/testkit"
)

func parseSource(t *testing.T, src string) (*source.FileSet, *Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.js", []byte(src))
	bag := diag.NewBag(0)
	res, err := Parse(context.Background(), fs, id, diag.BagReporter{Bag: bag}, DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := testkit.CheckSpanInvariants(res.Builder, res.File, fs.Get(id)); err != nil {
		t.Fatalf("span invariants: %v", err)
	}
	return fs, res, bag
}

// only returns the single top-level statement of the file.
func only(t *testing.T, res *Result) *ast.Stmt {
	t.Helper()
	f := res.Builder.Files.Get(res.File)
	if f == nil || len(f.Stmts) != 1 {
		t.Fatalf("want one top-level statement, got %+v", f)
	}
	return res.Builder.Stmts.Get(f.Stmts[0])
}

// returnArg digs the argument of the first return statement inside fn's body.
func returnArg(t *testing.T, b *ast.Builder, fn *ast.Fn) ast.ExprID {
	t.Helper()
	body, ok := b.Stmts.Block(fn.Body)
	if !ok || len(body.Stmts) == 0 {
		t.Fatalf("function body is not a non-empty block")
	}
	ret, ok := b.Stmts.Return(body.Stmts[0])
	if !ok {
		t.Fatalf("first body statement is %v, want return", b.Stmts.Get(body.Stmts[0]).Kind)
	}
	return ret.Arg
}

func fnDecl(t *testing.T, res *Result) *ast.Fn {
	t.Helper()
	st := only(t, res)
	if st.Kind != ast.StmtFunc {
		t.Fatalf("kind = %v, want Func", st.Kind)
	}
	data, _ := res.Builder.Stmts.Func(res.Builder.Files.Get(res.File).Stmts[0])
	return res.Builder.Fns.Get(data.Fn)
}

func TestParseAsyncFunction(t *testing.T) {
	src := "\nasync function foo() {\n    return await bar();\n}"
	fs, res, bag := parseSource(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	fn := fnDecl(t, res)
	if !fn.IsAsync || fn.Name != "foo" || fn.Kind != ast.FnDecl {
		t.Fatalf("fn = %+v", fn)
	}
	arg := returnArg(t, res.Builder, fn)
	await, ok := res.Builder.Exprs.Await(arg)
	if !ok {
		t.Fatalf("return argument is %v, want await", res.Builder.Exprs.Get(arg).Kind)
	}
	start, _ := fs.Resolve(await.Keyword)
	if start.Line != 3 || start.Col != 12 || await.Keyword.Len() != 5 {
		t.Fatalf("keyword at %d:%d len %d, want 3:12 len 5", start.Line, start.Col, await.Keyword.Len())
	}
	if call := res.Builder.Exprs.Get(await.Arg); call == nil || call.Kind != ast.ExprOther {
		t.Fatalf("await argument = %+v", call)
	}
}

func TestParseNonAsyncFunction(t *testing.T) {
	_, res, _ := parseSource(t, "function foo() { return 1; }")
	if fn := fnDecl(t, res); fn.IsAsync {
		t.Fatalf("plain function marked async")
	}
}

func TestParseFileSpanCoversLeadingWhitespace(t *testing.T) {
	src := "\n\n  foo();\n"
	_, res, _ := parseSource(t, src)
	f := res.Builder.Files.Get(res.File)
	if f.Span.Start != 0 || int(f.Span.End) != len(src) {
		t.Fatalf("file span = %v, want 0..%d", f.Span, len(src))
	}
}

func TestParseSequenceIsFlat(t *testing.T) {
	_, res, _ := parseSource(t, "async function f() { return (a, b, await c); }")
	b := res.Builder
	seq, ok := b.Exprs.Sequence(returnArg(t, b, fnDecl(t, res)))
	if !ok {
		t.Fatalf("return argument is not a sequence")
	}
	if len(seq.Items) != 3 {
		t.Fatalf("sequence has %d items, want 3", len(seq.Items))
	}
	if last := b.Exprs.Get(seq.Items[2]); last.Kind != ast.ExprAwait {
		t.Fatalf("last item = %v, want await", last.Kind)
	}
}

func TestParseBinaryOperators(t *testing.T) {
	tests := []struct {
		src  string
		kind ast.ExprKind
		op   ast.LogicalOp
	}{
		{"async function f() { return a && await b; }", ast.ExprLogical, ast.LogicalAnd},
		{"async function f() { return a || await b; }", ast.ExprLogical, ast.LogicalOr},
		{"async function f() { return a ?? await b; }", ast.ExprLogical, ast.LogicalCoalesce},
		{"async function f() { return a + await b; }", ast.ExprOther, 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, res, _ := parseSource(t, tt.src)
			b := res.Builder
			id := returnArg(t, b, fnDecl(t, res))
			if got := b.Exprs.Get(id).Kind; got != tt.kind {
				t.Fatalf("kind = %v, want %v", got, tt.kind)
			}
			if tt.kind != ast.ExprLogical {
				return
			}
			data, _ := b.Exprs.Logical(id)
			if data.Op != tt.op {
				t.Fatalf("op = %v, want %v", data.Op, tt.op)
			}
			if b.Exprs.Get(data.Right).Kind != ast.ExprAwait {
				t.Fatalf("right operand is not await")
			}
		})
	}
}

func TestParseConditional(t *testing.T) {
	_, res, _ := parseSource(t, "async function f() { return t ? await a : b; }")
	b := res.Builder
	data, ok := b.Exprs.Conditional(returnArg(t, b, fnDecl(t, res)))
	if !ok {
		t.Fatalf("return argument is not a conditional")
	}
	if b.Exprs.Get(data.Consequent).Kind != ast.ExprAwait || b.Exprs.Get(data.Alternate).Kind != ast.ExprOther {
		t.Fatalf("branches = %v / %v", b.Exprs.Get(data.Consequent).Kind, b.Exprs.Get(data.Alternate).Kind)
	}
}

func TestParseTry(t *testing.T) {
	tests := []struct {
		name                       string
		src                        string
		handler, param, finalizer bool
	}{
		{"catch", "try { a(); } catch (e) { b(); }", true, true, false},
		{"optional binding", "try { a(); } catch { b(); }", true, false, false},
		{"finally", "try { a(); } finally { c(); }", false, false, true},
		{"both", "try { a(); } catch (e) { b(); } finally { c(); }", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res, _ := parseSource(t, tt.src)
			st := only(t, res)
			if st.Kind != ast.StmtTry {
				t.Fatalf("kind = %v, want Try", st.Kind)
			}
			data, _ := res.Builder.Stmts.Try(res.Builder.Files.Get(res.File).Stmts[0])
			if !data.Block.IsValid() {
				t.Fatalf("try block missing")
			}
			if data.Handler.IsValid() != tt.handler || data.Param.IsValid() != tt.param || data.Finalizer.IsValid() != tt.finalizer {
				t.Fatalf("try = %+v", data)
			}
			if !data.Protected() {
				t.Fatalf("try with handler or finalizer must be protected")
			}
		})
	}
}

func TestParseFunctionForms(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kind  ast.FnKind
		async bool
		// concise arrow bodies land in ExprBody
		exprBody bool
	}{
		{"function expression", "const f = async function () { return 1; };", ast.FnExpr, true, false},
		{"arrow block", "const f = async () => { return 1; };", ast.FnArrow, true, false},
		{"arrow concise", "const f = async x => await x;", ast.FnArrow, true, true},
		{"plain arrow", "const f = () => 1;", ast.FnArrow, false, true},
		{"class method", "class A { async run() { return 1; } }", ast.FnMethod, true, false},
		{"object method", "const o = { run() { return 1; } };", ast.FnMethod, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res, _ := parseSource(t, tt.src)
			fns := res.Builder.Fns.Arena.Slice()
			if len(fns) != 1 {
				t.Fatalf("got %d functions, want 1", len(fns))
			}
			fn := fns[0]
			if fn.Kind != tt.kind || fn.IsAsync != tt.async {
				t.Fatalf("fn kind=%v async=%v, want %v %v", fn.Kind, fn.IsAsync, tt.kind, tt.async)
			}
			if fn.ExprBody.IsValid() != tt.exprBody || fn.Body.IsValid() == tt.exprBody {
				t.Fatalf("body=%v exprBody=%v", fn.Body, fn.ExprBody)
			}
		})
	}
}

func TestParseDefaultParamKeepsNestedFunction(t *testing.T) {
	_, res, _ := parseSource(t, "function f(cb = async () => { return await x; }) {}")
	fns := res.Builder.Fns.Arena.Slice()
	if len(fns) != 2 {
		t.Fatalf("got %d functions, want 2", len(fns))
	}
	if !fns[0].IsAsync || fns[0].Kind != ast.FnArrow {
		t.Fatalf("nested arrow = %+v", fns[0])
	}
	if len(fns[1].Head) == 0 {
		t.Fatalf("outer function has no head expressions")
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	src := "async function foo( {\n  return await bar();\n"
	_, res, bag := parseSource(t, src)
	if res.SyntaxErrors == 0 || bag.Len() != res.SyntaxErrors {
		t.Fatalf("syntax errors = %d, diagnostics = %d", res.SyntaxErrors, bag.Len())
	}
	for _, d := range bag.Items() {
		if d.Severity != diag.SevError {
			t.Fatalf("syntax diagnostic severity = %v", d.Severity)
		}
		if d.Code != diag.SynSyntaxError && d.Code != diag.SynMissingToken {
			t.Fatalf("unexpected code %v", d.Code)
		}
	}
}

func TestParseStrayReturn(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		src      string
		wantDiag bool
	}{
		{"script", "a.js", "if (done) return;\nfoo();", true},
		{"module", "a.mjs", "return await x;", true},
		{"commonjs", "a.cjs", "if (module.parent) return;", false},
		{"inside function", "a.js", "function f() { return 1; }", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual(tt.path, []byte(tt.src))
			bag := diag.NewBag(0)
			res, err := Parse(context.Background(), fs, id, diag.BagReporter{Bag: bag}, DefaultOptions())
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if err := testkit.CheckSpanInvariants(res.Builder, res.File, fs.Get(id)); err != nil {
				t.Fatalf("span invariants: %v", err)
			}
			if got := bag.Len() == 1; got != tt.wantDiag {
				t.Fatalf("diagnostics = %+v, want one: %v", bag.Items(), tt.wantDiag)
			}
			if tt.wantDiag {
				d := bag.Items()[0]
				if d.Code != diag.SynStrayReturn || d.Severity != diag.SevError {
					t.Fatalf("got %v %v, want SYN2003 error", d.Code, d.Severity)
				}
				if got := fs.Get(id).Slice(d.Primary); !strings.HasPrefix(got, "return") {
					t.Fatalf("primary covers %q", got)
				}
			}
			if res.SyntaxErrors != 0 {
				t.Fatalf("SyntaxErrors = %d, want 0", res.SyntaxErrors)
			}
			// в дереве не остаётся Return вне функции
			if res.Builder.Fns.Arena.Len() == 0 {
				for _, st := range res.Builder.Stmts.Arena.Slice() {
					if st.Kind == ast.StmtReturn {
						t.Fatalf("top-level return kept in the tree")
					}
				}
			}
		})
	}
}

func TestParseKeepsChildOrder(t *testing.T) {
	_, res, _ := parseSource(t, "if (a) x(); else y();")
	st := only(t, res)
	data, ok := res.Builder.Stmts.Other(res.Builder.Files.Get(res.File).Stmts[0])
	if !ok {
		t.Fatalf("kind = %v, want Other", st.Kind)
	}
	var prev uint32
	for i, ch := range data.Children {
		var sp source.Span
		if ch.IsStmt() {
			sp = res.Builder.Stmts.Get(ch.Stmt).Span
		} else {
			sp = res.Builder.Exprs.Get(ch.Expr).Span
		}
		if sp.Start < prev {
			t.Fatalf("child %d at %v comes before the previous one", i, sp)
		}
		prev = sp.End
	}
	if len(data.Children) < 3 {
		t.Fatalf("got %d children, want condition, consequence and else", len(data.Children))
	}
}

func TestParseTooLarge(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("big.js", []byte(strings.Repeat("a;", 64)))
	_, err := Parse(context.Background(), fs, id, nil, Options{MaxFileSize: 16})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestParseCanceled(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.js", []byte("a();"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Parse(ctx, fs, id, nil, DefaultOptions()); err == nil {
		t.Fatalf("expected an error for a canceled context")
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc", "abc"},
		{"ab\ncd", "ab…"},
		{strings.Repeat("я", 30), strings.Repeat("я", 24) + "…"},
	}
	for _, tt := range tests {
		if got := snippet(tt.in); got != tt.want {
			t.Fatalf("snippet(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
