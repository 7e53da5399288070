package driver

import (
	"fmt"
	"strings"

	"awaitlint/internal/diag"
	"awaitlint/internal/observ"
	"awaitlint/internal/source"
)

// appendTimingDiagnostic adds an info diagnostic with the phase breakdown of
// one file. It has no labels, so renderers print only the header.
func appendTimingDiagnostic(bag *diag.Bag, path string, report observ.Report) {
	if bag == nil || len(report.Phases) == 0 {
		return
	}
	parts := make([]string, 0, len(report.Phases))
	for _, p := range report.Phases {
		parts = append(parts, fmt.Sprintf("%s %.2f ms", p.Name, p.DurationMS))
	}
	msg := fmt.Sprintf("timings (%s): %s, total %.2f ms", path, strings.Join(parts, ", "), report.TotalMS)

	entry := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  msg,
		Primary:  source.Span{},
	}
	// при переполненном bag тайминги теряются вместе с остальным
	bag.Add(entry)
}
