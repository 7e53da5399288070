// Package jsfront turns JavaScript source into the awaitlint syntax tree
// using tree-sitter.
package jsfront

import (
	"context"
	"errors"
	"fmt"
	"path"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"awaitlint/internal/ast"
	"awaitlint/internal/diag"
	"awaitlint/internal/source"
)

// ErrFileTooLarge is returned for inputs above Options.MaxFileSize.
var ErrFileTooLarge = errors.New("file too large")

// Options configures Parse.
type Options struct {
	// MaxFileSize is the largest input in bytes. Default: 10MB.
	MaxFileSize int
	// CommonJS accepts a top-level return. Files ending in .cjs always do.
	CommonJS bool
}

func DefaultOptions() Options {
	return Options{MaxFileSize: 10 * 1024 * 1024}
}

// Result is one converted file. Builder is owned by the caller.
type Result struct {
	Builder *ast.Builder
	File    ast.FileID
	// SyntaxErrors counts ERROR and MISSING nodes reported.
	SyntaxErrors int
}

// Parse converts file to an ast.File. Syntax errors, including a return
// outside of any function, are reported to r as diagnostics and the rest of
// the tree is still converted; only IO-like
// failures (cancellation, size limit) return an error.
//
// Parse is safe for concurrent use: every call creates its own tree-sitter
// parser.
func Parse(ctx context.Context, fs *source.FileSet, file source.FileID, r diag.Reporter, opts Options) (*Result, error) {
	f := fs.Get(file)
	if f == nil {
		return nil, fmt.Errorf("jsfront: unknown file id %d", file)
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultOptions().MaxFileSize
	}
	if len(f.Content) > opts.MaxFileSize {
		return nil, fmt.Errorf("%s: %d bytes: %w", f.Path, len(f.Content), ErrFileTooLarge)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, f.Content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("javascript parse canceled: %w", err)
	}

	sizeHint := uint(len(f.Content)/8 + 16)
	c := &converter{
		b:        ast.NewBuilder(ast.Hints{Stmts: sizeHint / 4, Exprs: sizeHint}),
		r:        diag.Unique(r),
		file:     file,
		content:  f.Content,
		commonJS: opts.CommonJS || path.Ext(f.Path) == ".cjs",
	}
	root := tree.RootNode()

	res := &Result{Builder: c.b}
	res.SyntaxErrors = reportSyntaxErrors(root, c, c.r)
	res.File = c.program(root)
	return res, nil
}
