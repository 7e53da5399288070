package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"awaitlint/internal/diag"
	"awaitlint/internal/source"
)

// diskCacheSchemaVersion меняется вместе с форматом DiskPayload.
const diskCacheSchemaVersion uint16 = 2

// DiskCache keeps raw diagnostics per (content, options) digest, one
// MessagePack file per entry. Entries are written with a rename, so
// concurrent readers never see a partial file and no locking is needed.
type DiskCache struct {
	root string
}

// DiskPayload is one entry: diagnostics before the severity policy and the
// number the bag limit refused. Spans carry the FileID of the run that
// wrote them and are remapped on restore.
type DiskPayload struct {
	Schema      uint16            `msgpack:"schema"`
	Path        string            `msgpack:"path"`
	Diagnostics []diag.Diagnostic `msgpack:"diagnostics"`
	Dropped     int               `msgpack:"dropped"`
}

// OpenDiskCache opens $XDG_CACHE_HOME/app, or ~/.cache/app.
func OpenDiskCache(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("locate cache dir: %w", err)
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt creates root if needed.
func OpenDiskCacheAt(root string) (*DiskCache, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{root: root}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.root
}

// entry shards by the first key byte: lint/ab/abcdef....mp
func (c *DiskCache) entry(key Digest) string {
	name := hex.EncodeToString(key[:])
	return filepath.Join(c.root, "lint", name[:2], name+".mp")
}

// Put stores payload under key, replacing any previous entry.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	dst := c.entry(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".put-*")
	if err != nil {
		return err
	}
	werr := msgpack.NewEncoder(tmp).Encode(payload)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Get loads the entry for key into out. A missing entry or one written with
// another schema is a miss, not an error.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	data, err := os.ReadFile(c.entry(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// Clear removes every entry.
func (c *DiskCache) Clear() error {
	if c == nil {
		return nil
	}
	return os.RemoveAll(filepath.Join(c.root, "lint"))
}

func toPayload(path string, bag *diag.Bag) *DiskPayload {
	return &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        path,
		Diagnostics: bag.Items(),
		Dropped:     bag.Dropped(),
	}
}

// restore adds the cached diagnostics to bag with every span moved to file,
// together with the dropped count of the run that wrote them.
func (p *DiskPayload) restore(bag *diag.Bag, file source.FileID) {
	for _, d := range p.Diagnostics {
		d.Primary.File = file
		d.Labels = append([]diag.Label(nil), d.Labels...)
		for i := range d.Labels {
			d.Labels[i].Span.File = file
		}
		bag.Add(d)
	}
	bag.AddDropped(p.Dropped)
}
