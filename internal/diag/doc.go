// Package diag defines the diagnostic model shared by the front end and
// the lint rules.
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error.
//   - Code: compact numeric identifier with a rule name ("no-return-await")
//     and a scope ("eslint"); Code.String() gives "eslint(no-return-await)".
//   - Message: one short sentence.
//   - Primary: the span the finding is about.
//   - Labels: ordered annotations; Labels[0] covers Primary.
//   - Help: optional remediation text. Rules never rewrite source.
//
// Producers emit through a Reporter, usually via ReportBuilder:
//
//	diag.ReportWarning(r, diag.LintNoReturnAwait, sp, msg).WithHelp(help).Emit()
//
// BagReporter collects into a Bag, which supports limits, sorting,
// deduplication and filtering. Rendering lives in internal/diagfmt.
package diag
