package diagfmt

import (
	"encoding/json"
	"io"

	"awaitlint/internal/diag"
	"awaitlint/internal/source"
)

// LocationJSON is a span with its file; line and column are 1-based and
// present only with JSONOpts.IncludePositions.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type LabelJSON struct {
	Message  string       `json:"message,omitempty"`
	Primary  bool         `json:"primary,omitempty"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON: Location и Labels пустые у диагностик без позиции.
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Rule     string        `json:"rule"`
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
	Labels   []LabelJSON   `json:"labels,omitempty"`
	Help     string        `json:"help,omitempty"`
}

// DiagnosticsOutput is the document written for one bag.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	// Dropped counts diagnostics cut by the per-file limit or by JSONOpts.Max.
	Dropped int `json:"dropped,omitempty"`
}

type jsonBuilder struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (b jsonBuilder) location(sp source.Span) LocationJSON {
	loc := LocationJSON{
		File:      formatPath(b.fs, b.fs.Get(sp.File), b.opts.PathMode),
		StartByte: sp.Start,
		EndByte:   sp.End,
	}
	if b.opts.IncludePositions {
		start, end := b.fs.Resolve(sp)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

func (b jsonBuilder) diagnostic(d *diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Rule:     d.Code.String(),
		Message:  d.Message,
		Help:     d.Help,
	}
	if !hasLocation(d, b.fs) {
		return out
	}
	primary := b.location(d.Primary)
	out.Location = &primary
	for i, l := range d.Labels {
		if b.fs.HasFile(l.Span.File) {
			out.Labels = append(out.Labels, LabelJSON{Message: l.Msg, Primary: i == 0, Location: b.location(l.Span)})
		}
	}
	return out
}

// hasLocation reports whether d points into a file of fs.
func hasLocation(d *diag.Diagnostic, fs *source.FileSet) bool {
	return fs != nil && len(d.Labels) > 0 && fs.HasFile(d.Primary.File)
}

// BuildDiagnosticsOutput converts bag without serialising it, keeping at
// most opts.Max entries when Max is positive.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 {
		n = min(n, opts.Max)
	}
	b := jsonBuilder{fs: fs, opts: opts}
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, n),
		Count:       n,
		Dropped:     bag.Dropped() + len(items) - n,
	}
	for i := range n {
		out.Diagnostics[i] = b.diagnostic(&items[i])
	}
	return out
}

// JSON writes bag as an indented document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
