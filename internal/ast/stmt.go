package ast

import (
	"awaitlint/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtExpr
	StmtReturn
	StmtTry
	// StmtFunc is a function declaration.
	StmtFunc
	// StmtOther is any statement without its own kind (if, for, class,
	// variable declarations and so on).
	StmtOther
)

var stmtKindNames = [...]string{
	StmtBlock:  "Block",
	StmtExpr:   "Expr",
	StmtReturn: "Return",
	StmtTry:    "Try",
	StmtFunc:   "Func",
	StmtOther:  "Other",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "Stmt(?)"
}

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type BlockStmt struct {
	Stmts []StmtID
}

type ExprStmt struct {
	X ExprID
}

type ReturnStmt struct {
	// Arg is NoExprID for a bare `return`.
	Arg ExprID
}

type TryStmt struct {
	Block StmtID
	// Handler is the catch body; NoStmtID when there is no catch.
	Handler StmtID
	// Param is the catch binding; NoExprID when absent.
	Param ExprID
	// Finalizer is NoStmtID when there is no finally.
	Finalizer StmtID
}

// Protected reports whether the try has a handler or a finalizer.
func (t *TryStmt) Protected() bool {
	return t.Handler.IsValid() || t.Finalizer.IsValid()
}

type FuncStmt struct {
	Fn FnID
}

type OtherStmt struct {
	Label    string
	Children []Child
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[BlockStmt]
	Exprs   *Arena[ExprStmt]
	Returns *Arena[ReturnStmt]
	Tries   *Arena[TryStmt]
	Funcs   *Arena[FuncStmt]
	Others  *Arena[OtherStmt]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[BlockStmt](capHint >> 2),
		Exprs:   NewArena[ExprStmt](capHint >> 1),
		Returns: NewArena[ReturnStmt](capHint >> 3),
		Tries:   NewArena[TryStmt](capHint >> 5),
		Funcs:   NewArena[FuncStmt](capHint >> 4),
		Others:  NewArena[OtherStmt](capHint >> 1),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	payload := s.Blocks.Allocate(BlockStmt{Stmts: stmts})
	return s.new(StmtBlock, span, PayloadID(payload))
}

func (s *Stmts) Block(id StmtID) (*BlockStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtBlock {
		return nil, false
	}
	return s.Blocks.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewExpr(span source.Span, x ExprID) StmtID {
	payload := s.Exprs.Allocate(ExprStmt{X: x})
	return s.new(StmtExpr, span, PayloadID(payload))
}

func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtExpr {
		return nil, false
	}
	return s.Exprs.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewReturn(span source.Span, arg ExprID) StmtID {
	payload := s.Returns.Allocate(ReturnStmt{Arg: arg})
	return s.new(StmtReturn, span, PayloadID(payload))
}

func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewTry(span source.Span, data TryStmt) StmtID {
	payload := s.Tries.Allocate(data)
	return s.new(StmtTry, span, PayloadID(payload))
}

func (s *Stmts) Try(id StmtID) (*TryStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtTry {
		return nil, false
	}
	return s.Tries.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewFunc(span source.Span, fn FnID) StmtID {
	payload := s.Funcs.Allocate(FuncStmt{Fn: fn})
	return s.new(StmtFunc, span, PayloadID(payload))
}

func (s *Stmts) Func(id StmtID) (*FuncStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtFunc {
		return nil, false
	}
	return s.Funcs.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewOther(span source.Span, label string, children ...Child) StmtID {
	payload := s.Others.Allocate(OtherStmt{Label: label, Children: children})
	return s.new(StmtOther, span, PayloadID(payload))
}

func (s *Stmts) Other(id StmtID) (*OtherStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtOther {
		return nil, false
	}
	return s.Others.Get(uint32(stmt.Payload)), true
}
