package ast

// Child is one sub-node of an Other node. Exactly one of Expr and Stmt is
// valid; children keep their source order.
type Child struct {
	Expr ExprID
	Stmt StmtID
}

func ExprChild(id ExprID) Child { return Child{Expr: id} }

func StmtChild(id StmtID) Child { return Child{Stmt: id} }

// IsStmt reports whether the child is a statement.
func (c Child) IsStmt() bool { return c.Stmt.IsValid() }
