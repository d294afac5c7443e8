package driver_test

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ottrlang/otterlang/internal/driver"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}

	key := sha256.Sum256([]byte("let x = 1\n"))
	in := &driver.DiskPayload{
		Schema:      1,
		Path:        "main.ot",
		ContentHash: key,
		TokenCount:  7,
		DiagCodes:   []uint16{1002},
		DiagCount:   1,
		ErrorCount:  1,
	}
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out driver.DiskPayload
	ok, err := cache.Get(key, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if out.Path != in.Path || out.TokenCount != in.TokenCount || out.ErrorCount != in.ErrorCount {
		t.Errorf("payload mismatch: got %+v, want %+v", out, *in)
	}
}

func TestDiskCacheMissOnUnknownKey(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	var out driver.DiskPayload
	ok, err := cache.Get(sha256.Sum256([]byte("never stored")), &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("unexpected hit for unknown key")
	}
}

func TestTokenizeCachedHitsOnSecondRun(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	path := filepath.Join(t.TempDir(), "main.ot")
	if err := os.WriteFile(path, []byte("let x = 1\nprintln(x)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	first, hit, err := driver.TokenizeCached(cache, path, 16)
	if err != nil {
		t.Fatalf("TokenizeCached: %v", err)
	}
	if hit {
		t.Fatal("first run must miss")
	}
	if first.TokenCount == 0 {
		t.Fatal("expected a token count")
	}

	second, hit, err := driver.TokenizeCached(cache, path, 16)
	if err != nil {
		t.Fatalf("TokenizeCached: %v", err)
	}
	if !hit {
		t.Fatal("second run must hit")
	}
	if second.TokenCount != first.TokenCount {
		t.Errorf("cached count %d differs from fresh count %d", second.TokenCount, first.TokenCount)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	_, hit, err = driver.TokenizeCached(cache, path, 16)
	if err != nil {
		t.Fatalf("TokenizeCached: %v", err)
	}
	if hit {
		t.Fatal("DropAll must invalidate entries")
	}
}
