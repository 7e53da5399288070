package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet owns every file of a run and hands out FileIDs. Re-adding a path
// creates a new version; lookups by path see the latest one.
type FileSet struct {
	files   []File
	latest  map[string]FileID
	baseDir string // для относительных путей в выводе
}

func NewFileSet() *FileSet {
	return &FileSet{latest: make(map[string]FileID)}
}

// NewFileSetWithBase sets the directory relative paths are printed against.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

func (fs *FileSet) SetBaseDir(dir string) { fs.baseDir = dir }

// BaseDir falls back to the working directory when none was set.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir != "" {
		return fs.baseDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// Add registers already-normalised content under path.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	id := FileID(n)
	path = normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.latest[path] = id
	return id
}

// Load reads path, strips a UTF-8 BOM, folds CRLF into LF and adds the result.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path comes from the command line
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := normalizeContent(raw)
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds in-memory content such as stdin, normalised like Load.
func (fs *FileSet) AddVirtual(name string, raw []byte) FileID {
	content, flags := normalizeContent(raw)
	return fs.Add(name, content, flags|FileVirtual)
}

func (fs *FileSet) HasFile(id FileID) bool { return int(id) < len(fs.files) }

// Get returns nil for an unknown id.
func (fs *FileSet) Get(id FileID) *File {
	if !fs.HasFile(id) {
		return nil
	}
	return &fs.files[id]
}

func (fs *FileSet) Len() int { return len(fs.files) }

// GetLatest returns the newest version of path.
func (fs *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fs.latest[normalizePath(path)]
	return id, ok
}

// Resolve turns a span into start and end positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	return f.LineCol(span.Start), f.LineCol(span.End)
}
