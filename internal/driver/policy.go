package driver

import "awaitlint/internal/diag"

// Policy adjusts severities after rules ran.
type Policy struct {
	// WarningsAsErrors promotes every warning to an error.
	WarningsAsErrors bool
	// NoWarnings drops warnings entirely. It wins over WarningsAsErrors.
	NoWarnings bool
}

// Apply rewrites bag in place.
func (p Policy) Apply(bag *diag.Bag) {
	if bag == nil {
		return
	}
	if p.NoWarnings {
		bag.Filter(func(d *diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
		return
	}
	if p.WarningsAsErrors {
		bag.Transform(func(d *diag.Diagnostic) {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
		})
	}
}

// ExitCode is 1 when any result carries an error-severity diagnostic and 0
// otherwise. Internal failures are reported as errors by the caller.
func ExitCode(results []Result) int {
	for i := range results {
		if results[i].Bag != nil && results[i].Bag.HasErrors() {
			return 1
		}
	}
	return 0
}

// Count sums diagnostics by severity across results.
func Count(results []Result) (errs, warnings int) {
	for i := range results {
		if results[i].Bag == nil {
			continue
		}
		for _, d := range results[i].Bag.Items() {
			switch d.Severity {
			case diag.SevError:
				errs++
			case diag.SevWarning:
				warnings++
			}
		}
	}
	return errs, warnings
}
