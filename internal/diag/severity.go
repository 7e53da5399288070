package diag

import "strings"

// Severity orders diagnostics; larger is more serious.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{
	SevInfo:    "info",
	SevWarning: "warning",
	SevError:   "error",
}

// Label is the lower-case name used by short output.
func (s Severity) Label() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

// String is the upper-case form written to JSON and SARIF properties.
func (s Severity) String() string {
	return strings.ToUpper(s.Label())
}
