package diag

import "awaitlint/internal/source"

// Reporter принимает диагностики от парсера и правил.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter пишет в *Bag; nil Bag глотает всё.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) {
	if f != nil {
		f(d)
	}
}

type identity struct {
	code    Code
	sev     Severity
	primary source.Span
	msg     string
}

// Unique forwards each distinct diagnostic to next once. Two diagnostics
// are the same when code, severity, primary span and message match.
// The result is not safe for concurrent use.
func Unique(next Reporter) Reporter {
	seen := make(map[identity]struct{})
	return ReporterFunc(func(d Diagnostic) {
		key := identity{code: d.Code, sev: d.Severity, primary: d.Primary, msg: d.Message}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		if next != nil {
			next.Report(d)
		}
	})
}

// ReportBuilder assembles one diagnostic and sends it on Emit.
type ReportBuilder struct {
	to   Reporter
	d    Diagnostic
	sent bool
}

// NewReportBuilder starts a diagnostic bound for r.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(sev, code, primary, msg)}
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

func (b *ReportBuilder) WithLabel(sp source.Span, msg string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithLabel(sp, msg)
	}
	return b
}

func (b *ReportBuilder) WithPrimaryText(msg string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithPrimaryText(msg)
	}
	return b
}

func (b *ReportBuilder) WithHelp(help string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithHelp(help)
	}
	return b
}

// Emit reports the diagnostic; repeated calls are no-ops.
func (b *ReportBuilder) Emit() {
	if b == nil || b.sent {
		return
	}
	b.sent = true
	if b.to != nil {
		b.to.Report(b.d)
	}
}

// Diagnostic returns what Emit would report.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.d
}
