package ast

import (
	"awaitlint/internal/source"
)

type ExprKind uint8

const (
	// ExprAwait is `await <arg>`.
	ExprAwait ExprKind = iota
	// ExprLogical is a short-circuit binary: &&, || or ??.
	ExprLogical
	// ExprSequence is a comma expression `a, b, c`.
	ExprSequence
	// ExprConditional is `test ? consequent : alternate`.
	ExprConditional
	// ExprFunc is a function expression, arrow function or method.
	ExprFunc
	// ExprOther is any expression the rules don't look into; its
	// children are still recorded for traversal.
	ExprOther
)

var exprKindNames = [...]string{
	ExprAwait:       "Await",
	ExprLogical:     "Logical",
	ExprSequence:    "Sequence",
	ExprConditional: "Conditional",
	ExprFunc:        "Func",
	ExprOther:       "Other",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Expr(?)"
}

type LogicalOp uint8

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
	LogicalCoalesce
)

func (op LogicalOp) String() string {
	switch op {
	case LogicalAnd:
		return "&&"
	case LogicalOr:
		return "||"
	case LogicalCoalesce:
		return "??"
	default:
		return "?op"
	}
}

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type ExprAwaitData struct {
	// Keyword covers exactly the `await` token.
	Keyword source.Span
	Arg     ExprID
}

type ExprLogicalData struct {
	Op    LogicalOp
	Left  ExprID
	Right ExprID
}

type ExprSequenceData struct {
	Items []ExprID
}

type ExprConditionalData struct {
	Test       ExprID
	Consequent ExprID
	Alternate  ExprID
}

type ExprFuncData struct {
	Fn FnID
}

type ExprOtherData struct {
	// Label is the parser's name for the node, kept for dumps.
	Label    string
	Children []Child
}

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena        *Arena[Expr]
	Awaits       *Arena[ExprAwaitData]
	Logicals     *Arena[ExprLogicalData]
	Sequences    *Arena[ExprSequenceData]
	Conditionals *Arena[ExprConditionalData]
	Funcs        *Arena[ExprFuncData]
	Others       *Arena[ExprOtherData]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:        NewArena[Expr](capHint),
		Awaits:       NewArena[ExprAwaitData](capHint >> 3),
		Logicals:     NewArena[ExprLogicalData](capHint >> 3),
		Sequences:    NewArena[ExprSequenceData](capHint >> 4),
		Conditionals: NewArena[ExprConditionalData](capHint >> 4),
		Funcs:        NewArena[ExprFuncData](capHint >> 3),
		Others:       NewArena[ExprOtherData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// NewAwait creates `await arg`; keyword is the span of the `await` token.
func (e *Exprs) NewAwait(span, keyword source.Span, arg ExprID) ExprID {
	payload := e.Awaits.Allocate(ExprAwaitData{Keyword: keyword, Arg: arg})
	return e.new(ExprAwait, span, PayloadID(payload))
}

func (e *Exprs) Await(id ExprID) (*ExprAwaitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprAwait {
		return nil, false
	}
	return e.Awaits.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewLogical(span source.Span, op LogicalOp, left, right ExprID) ExprID {
	payload := e.Logicals.Allocate(ExprLogicalData{Op: op, Left: left, Right: right})
	return e.new(ExprLogical, span, PayloadID(payload))
}

func (e *Exprs) Logical(id ExprID) (*ExprLogicalData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLogical {
		return nil, false
	}
	return e.Logicals.Get(uint32(expr.Payload)), true
}

// NewSequence creates a comma expression. items must be non-empty.
func (e *Exprs) NewSequence(span source.Span, items []ExprID) ExprID {
	payload := e.Sequences.Allocate(ExprSequenceData{Items: items})
	return e.new(ExprSequence, span, PayloadID(payload))
}

func (e *Exprs) Sequence(id ExprID) (*ExprSequenceData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprSequence {
		return nil, false
	}
	return e.Sequences.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewConditional(span source.Span, test, consequent, alternate ExprID) ExprID {
	payload := e.Conditionals.Allocate(ExprConditionalData{
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
	})
	return e.new(ExprConditional, span, PayloadID(payload))
}

func (e *Exprs) Conditional(id ExprID) (*ExprConditionalData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprConditional {
		return nil, false
	}
	return e.Conditionals.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewFunc(span source.Span, fn FnID) ExprID {
	payload := e.Funcs.Allocate(ExprFuncData{Fn: fn})
	return e.new(ExprFunc, span, PayloadID(payload))
}

func (e *Exprs) Func(id ExprID) (*ExprFuncData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprFunc {
		return nil, false
	}
	return e.Funcs.Get(uint32(expr.Payload)), true
}

// NewOther records an opaque expression together with its children in
// source order; statements appear for class bodies, for example.
func (e *Exprs) NewOther(span source.Span, label string, children ...Child) ExprID {
	payload := e.Others.Allocate(ExprOtherData{Label: label, Children: children})
	return e.new(ExprOther, span, PayloadID(payload))
}

func (e *Exprs) Other(id ExprID) (*ExprOtherData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprOther {
		return nil, false
	}
	return e.Others.Get(uint32(expr.Payload)), true
}
