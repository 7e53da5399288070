package trace

import "time"

// Kind says whether an event opens a span, closes it or stands alone.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event; smaller values are coarser.
type Scope uint8

const (
	// ScopeDriver is a whole lint run.
	ScopeDriver Scope = iota + 1
	// ScopePass is one phase over all inputs (load, lint, render).
	ScopePass
	// ScopeFile is per-file processing.
	ScopeFile
	// ScopeNode is a single syntax node, e.g. a rule finding.
	ScopeNode
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeFile:
		return "file"
	case ScopeNode:
		return "node"
	default:
		return "unknown"
	}
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // монотонный по всему процессу
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 для корня
	Name     string // "lint", "src/a.js", "no-return-await"
	Detail   string
	// Elapsed is set on KindSpanEnd only.
	Elapsed time.Duration
	Extra   map[string]string
}
