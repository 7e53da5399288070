package lint

import (
	"strconv"

	"awaitlint/internal/ast"
	"awaitlint/internal/diag"
	"awaitlint/internal/trace"
)

const (
	noReturnAwaitMsg  = "Redundant use of `await` on a return value."
	noReturnAwaitHelp = "Remove redundant `await`."
)

// NoReturnAwait flags `return await x` in async functions, including awaits
// reached through &&, ||, ??, comma sequences and conditional branches.
//
// Returns inside try, catch and finally are reported too, even though
// there removing the await changes which handler observes a rejection.
type NoReturnAwait struct{}

func (NoReturnAwait) Name() string    { return diag.LintNoReturnAwait.Name() }
func (NoReturnAwait) Code() diag.Code { return diag.LintNoReturnAwait }

func (r NoReturnAwait) Check(p *Pass) error {
	w := newWalker(p.Builder, r.Name(), func(_ ast.StmtID, ret *ast.ReturnStmt, fr *frame) error {
		if !fr.isAsync || !ret.Arg.IsValid() {
			return nil
		}
		for _, sp := range TailAwaits(p.Builder.Exprs, ret.Arg) {
			diag.NewReportBuilder(p.Reporter, p.Severity, r.Code(), sp, noReturnAwaitMsg).
				WithHelp(noReturnAwaitHelp).
				Emit()
			trace.Point(p.Tracer, trace.ScopeNode, r.Name(), p.Parent, sp.String(), map[string]string{
				"in-try": strconv.Itoa(fr.tryDepth),
			})
		}
		return nil
	})
	return w.walkFile(p.File)
}
