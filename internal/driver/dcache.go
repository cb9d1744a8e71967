package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"buildcheck/internal/diag"
	"buildcheck/internal/source"
)

// Bump when the payload format or any diagnostic semantics change; a
// mismatch silently invalidates old entries.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores finished diagnostic bags keyed by file content hash.
// A hit means the exact same bytes were validated before with the same
// schema version. Thread-safe for concurrent access; the zero-value nil
// cache is a no-op.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// cachedSpan stores byte offsets only; the FileID is re-stamped on load
// because IDs are per-FileSet.
type cachedSpan struct {
	Start uint32
	End   uint32
}

type cachedNote struct {
	Span cachedSpan
	Msg  string
}

type cachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Primary  cachedSpan
	Notes    []cachedNote
	Props    map[string]string
}

// diskPayload is the msgpack envelope for one cached file result.
type diskPayload struct {
	Schema      uint16
	ContentHash [32]byte
	Diagnostics []cachedDiagnostic
}

// OpenDiskCache initializes a disk cache at the standard user cache
// location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes a disk cache at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key [32]byte) string {
	return filepath.Join(c.dir, "files", hex.EncodeToString(key[:])+".mp")
}

// Lookup returns the cached bag for the file's content hash, re-stamped
// with the file's current ID. Any read or decode problem is a miss.
func (c *DiskCache) Lookup(f *source.File, maxDiagnostics int) (*diag.Bag, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(f.Hash))
	if err != nil {
		return nil, false
	}
	var payload diskPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != diskCacheSchemaVersion || payload.ContentHash != f.Hash {
		return nil, false
	}

	bag := diag.NewBag(maxDiagnostics)
	for _, cd := range payload.Diagnostics {
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  source.Span{File: f.ID, Start: cd.Primary.Start, End: cd.Primary.End},
			Props:    cd.Props,
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{File: f.ID, Start: n.Span.Start, End: n.Span.End},
				Msg:  n.Msg,
			})
		}
		bag.Add(d)
	}
	return bag, true
}

// Store writes the file's finished bag. Failures are swallowed: the
// cache is an optimization, never a correctness dependency.
func (c *DiskCache) Store(f *source.File, bag *diag.Bag) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := diskPayload{
		Schema:      diskCacheSchemaVersion,
		ContentHash: f.Hash,
	}
	for _, d := range bag.Items() {
		cd := cachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Primary:  cachedSpan{Start: d.Primary.Start, End: d.Primary.End},
			Props:    d.Props,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, cachedNote{
				Span: cachedSpan{Start: n.Span.Start, End: n.Span.End},
				Msg:  n.Msg,
			})
		}
		payload.Diagnostics = append(payload.Diagnostics, cd)
	}

	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return
	}
	p := c.pathFor(f.Hash)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return
	}
	name := tmp.Name()
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(name)
		return
	}
	if err := os.Rename(name, p); err != nil {
		_ = os.Remove(name)
	}
}

// DropAll invalidates the whole cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
