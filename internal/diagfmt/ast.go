package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"awaitlint/internal/ast"
	"awaitlint/internal/source"
)

type treeNode struct {
	label    string
	kind     string
	detail   string
	edge     string // имя поля родителя, если есть
	span     source.Span
	children []*treeNode
}

// ASTNodeOutput is the JSON form of a dumped tree.
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Detail   string          `json:"detail,omitempty"`
	Field    string          `json:"field,omitempty"`
	Span     source.Span     `json:"span"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// formatSpan formats a source.Span into a string.
// If fs is non-nil, it resolves the span to "startLine:startCol-endLine:endCol";
// otherwise it returns "span(start-end)".
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil && fs.HasFile(span.File) {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}

// DumpAST prints the converted tree of fileID, one node per line.
func DumpAST(w io.Writer, b *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	root, err := buildFileTree(b, fileID, fs)
	if err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString(root.label + "\n")
	if fs != nil && fs.HasFile(root.span.File) && !fs.Get(root.span.File).IsNFC() {
		sb.WriteString("note: source is not in NFC; columns count code points as stored\n")
	}
	for i, child := range root.children {
		writeTree(&sb, child, "", i == len(root.children)-1)
	}
	_, err = io.WriteString(w, sb.String())
	return err
}

// DumpASTJSON writes the same tree as JSON.
func DumpASTJSON(w io.Writer, b *ast.Builder, fileID ast.FileID) error {
	root, err := buildFileTree(b, fileID, nil)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toOutput(root))
}

func toOutput(n *treeNode) ASTNodeOutput {
	out := ASTNodeOutput{Type: n.kind, Detail: n.detail, Field: n.edge, Span: n.span}
	for _, c := range n.children {
		out.Children = append(out.Children, toOutput(c))
	}
	return out
}

func writeTree(sb *strings.Builder, n *treeNode, prefix string, last bool) {
	branch, next := "├─ ", "│  "
	if last {
		branch, next = "└─ ", "   "
	}
	label := n.label
	if n.edge != "" {
		label = n.edge + ": " + label
	}
	sb.WriteString(prefix + branch + label + "\n")
	for i, child := range n.children {
		writeTree(sb, child, prefix+next, i == len(n.children)-1)
	}
}

type treeBuilder struct {
	b  *ast.Builder
	fs *source.FileSet
}

func buildFileTree(b *ast.Builder, fileID ast.FileID, fs *source.FileSet) (*treeNode, error) {
	if b == nil {
		return nil, fmt.Errorf("nil builder")
	}
	file := b.Files.Get(fileID)
	if file == nil {
		return nil, fmt.Errorf("file %d not found", fileID)
	}
	header := "File"
	if fs != nil && fs.HasFile(file.Span.File) {
		header = fs.Get(file.Span.File).FormatPath("auto", fs.BaseDir())
	}
	tb := treeBuilder{b: b, fs: fs}
	root := &treeNode{
		label: fmt.Sprintf("%s (span: %s)", header, formatSpan(file.Span, fs)),
		kind:  "File",
		span:  file.Span,
	}
	for _, st := range file.Stmts {
		root.children = append(root.children, tb.stmt(st))
	}
	return root, nil
}

func (tb treeBuilder) node(kind, detail string, sp source.Span) *treeNode {
	label := kind
	if detail != "" {
		label += " " + detail
	}
	return &treeNode{
		label:  fmt.Sprintf("%s (span: %s)", label, formatSpan(sp, tb.fs)),
		kind:   kind,
		detail: detail,
		span:   sp,
	}
}

// field wraps a child under a named edge, e.g. "test" of a conditional.
func field(name string, child *treeNode) *treeNode {
	if child == nil {
		return nil
	}
	child.edge = name
	return child
}

func appendNonNil(dst []*treeNode, nodes ...*treeNode) []*treeNode {
	for _, n := range nodes {
		if n != nil {
			dst = append(dst, n)
		}
	}
	return dst
}

func (tb treeBuilder) stmt(id ast.StmtID) *treeNode {
	st := tb.b.Stmts.Get(id)
	if st == nil {
		return nil
	}
	switch st.Kind {
	case ast.StmtBlock:
		n := tb.node("Block", "", st.Span)
		if data, ok := tb.b.Stmts.Block(id); ok {
			for _, c := range data.Stmts {
				n.children = appendNonNil(n.children, tb.stmt(c))
			}
		}
		return n
	case ast.StmtExpr:
		n := tb.node("ExprStmt", "", st.Span)
		if data, ok := tb.b.Stmts.Expr(id); ok {
			n.children = appendNonNil(n.children, tb.expr(data.X))
		}
		return n
	case ast.StmtReturn:
		n := tb.node("Return", "", st.Span)
		if data, ok := tb.b.Stmts.Return(id); ok {
			n.children = appendNonNil(n.children, tb.expr(data.Arg))
		}
		return n
	case ast.StmtTry:
		n := tb.node("Try", "", st.Span)
		if data, ok := tb.b.Stmts.Try(id); ok {
			n.children = appendNonNil(n.children,
				field("block", tb.stmt(data.Block)),
				field("param", tb.expr(data.Param)),
				field("handler", tb.stmt(data.Handler)),
				field("finalizer", tb.stmt(data.Finalizer)),
			)
		}
		return n
	case ast.StmtFunc:
		if data, ok := tb.b.Stmts.Func(id); ok {
			return tb.fn(data.Fn)
		}
	case ast.StmtOther:
		if data, ok := tb.b.Stmts.Other(id); ok {
			n := tb.node("Stmt", data.Label, st.Span)
			n.children = tb.others(n.children, data.Children)
			return n
		}
	}
	return tb.node(st.Kind.String(), "", st.Span)
}

func (tb treeBuilder) others(dst []*treeNode, children []ast.Child) []*treeNode {
	for _, ch := range children {
		if ch.IsStmt() {
			dst = appendNonNil(dst, tb.stmt(ch.Stmt))
		} else {
			dst = appendNonNil(dst, tb.expr(ch.Expr))
		}
	}
	return dst
}

func (tb treeBuilder) fn(id ast.FnID) *treeNode {
	fn := tb.b.Fns.Get(id)
	if fn == nil {
		return nil
	}
	detail := fn.Kind.String()
	if fn.IsAsync {
		detail = "async " + detail
	}
	if fn.Name != "" {
		detail += " " + fn.Name
	}
	n := tb.node("Fn", detail, fn.Span)
	for _, h := range fn.Head {
		n.children = appendNonNil(n.children, field("head", tb.expr(h)))
	}
	n.children = appendNonNil(n.children,
		field("body", tb.stmt(fn.Body)),
		field("body", tb.expr(fn.ExprBody)),
	)
	return n
}

func (tb treeBuilder) expr(id ast.ExprID) *treeNode {
	e := tb.b.Exprs.Get(id)
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ast.ExprAwait:
		if data, ok := tb.b.Exprs.Await(id); ok {
			n := tb.node("Await", "keyword="+formatSpan(data.Keyword, tb.fs), e.Span)
			n.children = appendNonNil(n.children, tb.expr(data.Arg))
			return n
		}
	case ast.ExprLogical:
		if data, ok := tb.b.Exprs.Logical(id); ok {
			n := tb.node("Logical", data.Op.String(), e.Span)
			n.children = appendNonNil(n.children, field("left", tb.expr(data.Left)), field("right", tb.expr(data.Right)))
			return n
		}
	case ast.ExprSequence:
		if data, ok := tb.b.Exprs.Sequence(id); ok {
			n := tb.node("Sequence", fmt.Sprintf("items=%d", len(data.Items)), e.Span)
			for _, it := range data.Items {
				n.children = appendNonNil(n.children, tb.expr(it))
			}
			return n
		}
	case ast.ExprConditional:
		if data, ok := tb.b.Exprs.Conditional(id); ok {
			n := tb.node("Conditional", "", e.Span)
			n.children = appendNonNil(n.children,
				field("test", tb.expr(data.Test)),
				field("consequent", tb.expr(data.Consequent)),
				field("alternate", tb.expr(data.Alternate)),
			)
			return n
		}
	case ast.ExprFunc:
		if data, ok := tb.b.Exprs.Func(id); ok {
			return tb.fn(data.Fn)
		}
	case ast.ExprOther:
		if data, ok := tb.b.Exprs.Other(id); ok {
			n := tb.node("Expr", data.Label, e.Span)
			n.children = tb.others(n.children, data.Children)
			return n
		}
	}
	return tb.node(e.Kind.String(), "", e.Span)
}
