package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Ottrlang/otterlang/internal/diag"
)

// Increment when the payload format changes; stale entries then miss.
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 content hash.
type Digest = [sha256.Size]byte

// DiskCache stores per-file front-end artefacts keyed by content hash.
// A hit means the file is byte-identical to a previous run, so token
// counts and the diagnostic fingerprint carry over without re-lexing.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cached file summary.
type DiskPayload struct {
	Schema uint16

	Path        string
	ContentHash Digest

	TokenCount int

	// Diagnostic fingerprint: enough to answer "is this file clean"
	// without re-running the front-end.
	DiagCount   int
	ErrorCount  int
	DiagCodes   []uint16
	HasInternal bool
}

// OpenDiskCache initializes a disk cache under the user cache dir,
// honoring XDG_CACHE_HOME.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt initializes a disk cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "files", hex.EncodeToString(key[:])+".mp")
}

// Put serializes a payload under its content hash. The write goes
// through a temp file and a rename so readers never see a torn entry.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload by content hash. A schema mismatch counts as a
// miss so format changes never need manual cache cleanup.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "files"))
}

// Summarize builds a cache payload from a tokenize run.
func Summarize(res *TokenizeResult) *DiskPayload {
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        res.File.Path,
		ContentHash: res.File.Hash,
		TokenCount:  len(res.Tokens),
		DiagCount:   res.Bag.Len(),
		HasInternal: res.Bag.HasInternal(),
	}
	for _, d := range res.Bag.Items() {
		payload.DiagCodes = append(payload.DiagCodes, uint16(d.Code))
		if d.Severity >= diag.SevError {
			payload.ErrorCount++
		}
	}
	return payload
}

// TokenizeCached returns the cached summary for an unchanged file, or
// tokenizes and stores a fresh one. The second result reports a hit.
func TokenizeCached(cache *DiskCache, path string, maxDiagnostics int) (*DiskPayload, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	key := sha256.Sum256(content)

	var cached DiskPayload
	if ok, err := cache.Get(key, &cached); err != nil {
		return nil, false, err
	} else if ok {
		return &cached, true, nil
	}

	res, err := Tokenize(path, maxDiagnostics)
	if err != nil {
		return nil, false, err
	}
	payload := Summarize(res)
	if err := cache.Put(key, payload); err != nil {
		return nil, false, err
	}
	return payload, false, nil
}
