package lint

import (
	"fmt"
	"strings"

	"awaitlint/internal/ast"
	"awaitlint/internal/diag"
	"awaitlint/internal/trace"
)

// Rule is a single syntactic check over one file.
type Rule interface {
	Name() string
	Code() diag.Code
	Check(p *Pass) error
}

// Pass is everything a rule sees while checking one file.
type Pass struct {
	Builder  *ast.Builder
	File     ast.FileID
	Reporter diag.Reporter
	// Severity is the configured severity for the running rule.
	Severity diag.Severity
	Tracer   trace.Tracer
	// Parent is the trace span findings are attached to.
	Parent uint64
}

// Level is a rule setting as written in configuration.
type Level uint8

const (
	LevelDefault Level = iota
	LevelOff
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "default"
	}
}

// ParseLevel accepts off, warn and error (also 0, 1, 2 and "warning").
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "0":
		return LevelOff, nil
	case "warn", "warning", "1":
		return LevelWarn, nil
	case "error", "2":
		return LevelError, nil
	case "", "default":
		return LevelDefault, nil
	}
	return LevelDefault, fmt.Errorf("invalid rule level %q (expected: off|warn|error)", s)
}

var registry = []Rule{
	NoReturnAwait{},
}

// Rules returns every known rule in a stable order.
func Rules() []Rule {
	out := make([]Rule, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a rule by name.
func Lookup(name string) (Rule, bool) {
	for _, r := range registry {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}
