package diag

import (
	"awaitlint/internal/source"
)

// Label is an annotated source range. An empty Msg draws only the underline.
type Label struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// Labels[0] always annotates Primary.
	Labels []Label
	Help   string
}

// Secondary returns every label after the primary one.
func (d *Diagnostic) Secondary() []Label {
	if len(d.Labels) <= 1 {
		return nil
	}
	return d.Labels[1:]
}
