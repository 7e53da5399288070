package ast

import "awaitlint/internal/source"

// File is one parsed program: top-level statements in source order.
// Span covers the whole source, including leading comments.
type File struct {
	Span  source.Span
	Stmts []StmtID
}

// Files holds program roots; a Builder usually has exactly one.
type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{Arena: NewArena[File](capHint)}
}

func (fs *Files) New(sp source.Span) FileID {
	return FileID(fs.Arena.Allocate(File{Span: sp}))
}

// Get returns nil for NoFileID.
func (fs *Files) Get(id FileID) *File {
	return fs.Arena.Get(uint32(id))
}

// Append adds a top-level statement to file.
func (fs *Files) Append(file FileID, stmt StmtID) {
	if f := fs.Get(file); f != nil {
		f.Stmts = append(f.Stmts, stmt)
	}
}
