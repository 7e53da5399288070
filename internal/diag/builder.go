package diag

import "awaitlint/internal/source"

// New constructs a diagnostic with a single unlabeled primary annotation.
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
		Labels:   []Label{{Span: primary}},
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

// WithLabel appends a secondary label.
func (d Diagnostic) WithLabel(sp source.Span, msg string) Diagnostic {
	labels := make([]Label, len(d.Labels), len(d.Labels)+1)
	copy(labels, d.Labels)
	d.Labels = append(labels, Label{Span: sp, Msg: msg})
	return d
}

// WithPrimaryText sets the text drawn after the primary underline.
func (d Diagnostic) WithPrimaryText(msg string) Diagnostic {
	labels := make([]Label, len(d.Labels))
	copy(labels, d.Labels)
	if len(labels) == 0 {
		labels = []Label{{Span: d.Primary}}
	}
	labels[0].Msg = msg
	d.Labels = labels
	return d
}

func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}
