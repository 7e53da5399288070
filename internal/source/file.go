package source

import (
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// FileID indexes a file inside its FileSet.
type FileID uint32

// FileFlags records how a file got into the set and what loading changed.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // stdin, тесты
	FileHadBOM                               // UTF-8 BOM срезан
	FileNormalizedCRLF                       // \r\n заменены на \n
)

// Has reports whether every bit of mask is set.
func (f FileFlags) Has(mask FileFlags) bool { return f&mask == mask }

// File is one loaded source. Content is immutable once the file is added.
type File struct {
	ID      FileID
	Path    string // slash-separated, cleaned
	Content []byte
	LineIdx []uint32 // byte offset of each '\n'
	Hash    [32]byte // sha256 of Content
	Flags   FileFlags
}

// LineCol is a 1-based line and a 1-based code point column.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (lc LineCol) String() string {
	return fmt.Sprintf("%d:%d", lc.Line, lc.Col)
}

func (f *File) size() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("file %s too large: %w", f.Path, err))
	}
	return n
}

// LineCol resolves a byte offset; offsets past EOF clamp to EOF.
func (f *File) LineCol(off uint32) LineCol {
	return toLineCol(f.Content, f.LineIdx, off)
}

// LineCount counts lines the way an editor does, so a trailing newline
// does not add an empty last line. An empty file has one line.
func (f *File) LineCount() uint32 {
	n := len(f.LineIdx)
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	count, err := safecast.Conv[uint32](max(n, 1))
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	return count
}

// LineStart is the offset of the first byte of a 1-based line, or EOF for
// lines past the end.
func (f *File) LineStart(line uint32) uint32 {
	switch {
	case line <= 1:
		return 0
	case int(line-1) <= len(f.LineIdx):
		return f.LineIdx[line-2] + 1
	default:
		return f.size()
	}
}

// GetLine returns a 1-based line without its newline; "" when out of range.
func (f *File) GetLine(line uint32) string {
	if line == 0 || line > f.LineCount() {
		return ""
	}
	end := f.size()
	if int(line) <= len(f.LineIdx) {
		end = f.LineIdx[line-1]
	}
	start := f.LineStart(line)
	if start >= end {
		return ""
	}
	return string(f.Content[start:end])
}

// Slice returns the text under span, clamped to the file.
func (f *File) Slice(span Span) string {
	size := f.size()
	start := min(span.Start, size)
	end := min(max(span.End, start), size)
	return string(f.Content[start:end])
}

// IsNFC reports whether content is in Unicode normal form C. Columns count
// stored code points, so decomposed text may not match what an editor shows.
func (f *File) IsNFC() bool {
	return norm.NFC.IsNormal(f.Content)
}

// FormatPath renders the path for output. mode is absolute, relative,
// basename or auto; anything else returns the stored path.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return BaseName(f.Path)
	case "auto":
		// длинные абсолютные пути сокращаем до имени
		if filepath.IsAbs(f.Path) && len(f.Path) >= 40 {
			return BaseName(f.Path)
		}
	}
	return f.Path
}
