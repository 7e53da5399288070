package lint

import (
	"awaitlint/internal/ast"
	"awaitlint/internal/diag"
	"awaitlint/internal/trace"
)

type Options struct {
	// Levels overrides rule settings by rule name.
	Levels map[string]Level
	Tracer trace.Tracer
	Parent uint64
}

func DefaultOptions() Options {
	return Options{Tracer: trace.Nop}
}

type Linter struct {
	opts  Options
	rules []Rule
}

func New() *Linter {
	return NewWithOptions(DefaultOptions())
}

func NewWithOptions(opts Options) *Linter {
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	return &Linter{opts: opts, rules: Rules()}
}

// Run lints one file with default options.
func Run(b *ast.Builder, file ast.FileID, r diag.Reporter) error {
	return New().Run(b, file, r)
}

// Run checks file with every enabled rule, reporting findings to r in
// traversal order. A non-nil error is always an *InternalError.
func (l *Linter) Run(b *ast.Builder, file ast.FileID, r diag.Reporter) error {
	if b == nil {
		return nil
	}
	for _, rule := range l.rules {
		sev, enabled := l.severity(rule)
		if !enabled {
			continue
		}
		p := &Pass{
			Builder:  b,
			File:     file,
			Reporter: r,
			Severity: sev,
			Tracer:   l.opts.Tracer,
			Parent:   l.opts.Parent,
		}
		if err := rule.Check(p); err != nil {
			return err
		}
	}
	return nil
}

func (l *Linter) severity(rule Rule) (diag.Severity, bool) {
	switch l.opts.Levels[rule.Name()] {
	case LevelOff:
		return diag.SevInfo, false
	case LevelError:
		return diag.SevError, true
	default:
		return diag.SevWarning, true
	}
}
