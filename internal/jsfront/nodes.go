package jsfront

import "strings"

// tree-sitter-javascript node types the converter treats specially.
const (
	nodeProgram        = "program"
	nodeComment        = "comment"
	nodeHashBang       = "hash_bang_line"
	nodeError          = "ERROR"
	nodeStatementBlock = "statement_block"
	nodeExprStatement  = "expression_statement"
	nodeReturn         = "return_statement"
	nodeTry            = "try_statement"
	nodeFnDecl         = "function_declaration"
	nodeGenFnDecl      = "generator_function_declaration"
	nodeFnExpr         = "function_expression"
	nodeFnExprLegacy   = "function"
	nodeGenFnExpr      = "generator_function"
	nodeArrow          = "arrow_function"
	nodeMethod         = "method_definition"
	nodeAwait          = "await_expression"
	nodeBinary         = "binary_expression"
	nodeTernary        = "ternary_expression"
	nodeSequence       = "sequence_expression"
	nodeParen          = "parenthesized_expression"
	nodeAsync          = "async"
	nodeAwaitKeyword   = "await"
)

// isStatement reports whether a node type sits in statement position.
func isStatement(typ string) bool {
	return typ == nodeStatementBlock ||
		strings.HasSuffix(typ, "_statement") ||
		strings.HasSuffix(typ, "_declaration")
}

func isTrivia(typ string) bool {
	return typ == nodeComment || typ == nodeHashBang
}
