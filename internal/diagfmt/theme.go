package diagfmt

import (
	"fmt"
	"strings"

	"awaitlint/internal/diag"
)

// Theme is the glyph set of the pretty renderer.
type Theme struct {
	Name string

	ErrorGlyph   string
	WarningGlyph string
	InfoGlyph    string

	LocatorOpen  string // before path:line:col
	LocatorClose string
	Gutter       string // between line number and text
	Annotation   string // starts an underline row
	Underline    string // one per column of a label
	Close        string // closes the box
}

var (
	ThemeUnicode = Theme{
		Name:         "unicode",
		ErrorGlyph:   "×",
		WarningGlyph: "⚠",
		InfoGlyph:    "ℹ",
		LocatorOpen:  "╭─[",
		LocatorClose: "]",
		Gutter:       "│",
		Annotation:   "·",
		Underline:    "─",
		Close:        "╰────",
	}

	ThemeASCII = Theme{
		Name:         "ascii",
		ErrorGlyph:   "x",
		WarningGlyph: "!",
		InfoGlyph:    "i",
		LocatorOpen:  ",-[",
		LocatorClose: "]",
		Gutter:       "|",
		Annotation:   ":",
		Underline:    "-",
		Close:        "`----",
	}
)

// ParseTheme looks a theme up by name.
func ParseTheme(name string) (*Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "unicode":
		return &ThemeUnicode, nil
	case "ascii":
		return &ThemeASCII, nil
	}
	return nil, fmt.Errorf("invalid theme %q (expected: unicode|ascii)", name)
}

func (t *Theme) glyph(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return t.ErrorGlyph
	case diag.SevWarning:
		return t.WarningGlyph
	default:
		return t.InfoGlyph
	}
}
