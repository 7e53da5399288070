package ast

import "awaitlint/internal/source"

type FnKind uint8

const (
	FnDecl FnKind = iota
	FnExpr
	FnArrow
	FnMethod
)

func (k FnKind) String() string {
	switch k {
	case FnDecl:
		return "decl"
	case FnExpr:
		return "expr"
	case FnArrow:
		return "arrow"
	case FnMethod:
		return "method"
	default:
		return "fn(?)"
	}
}

// Fn is any function-like construct. Exactly one of Body and ExprBody is
// set: arrows with a concise body carry ExprBody.
type Fn struct {
	Kind    FnKind
	IsAsync bool
	Name    string
	// Head holds expressions evaluated outside the body: parameters,
	// default values, computed method keys.
	Head     []ExprID
	Body     StmtID
	ExprBody ExprID
	Span     source.Span
}

type Fns struct {
	Arena *Arena[Fn]
}

func NewFns(capHint uint) *Fns {
	return &Fns{
		Arena: NewArena[Fn](capHint),
	}
}

func (f *Fns) New(fn Fn) FnID {
	return FnID(f.Arena.Allocate(fn))
}

func (f *Fns) Get(id FnID) *Fn {
	return f.Arena.Get(uint32(id))
}
