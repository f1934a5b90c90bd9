package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/natanfelles/liquidgo/liquidctx"
)

func TestWatchEvictsCacheOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.liquid")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewFileSystemLoader(dir)
	cache := NewCache()
	ctx := liquidctx.New(liquidctx.SettingDefault)

	w, err := NewWatch(l, cache)
	if err != nil {
		t.Fatalf("failed to start watch: %v", err)
	}
	defer w.Close()

	if _, err := w.Get(ctx, "t.liquid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Size() != 1 {
		t.Fatalf("expected 1 cached entry after first Get, got %d", cache.Size())
	}

	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-w.Changed:
		if name != "t.liquid" {
			t.Errorf("expected changed name %q, got %q", "t.liquid", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a filesystem change notification")
	}

	if cache.Size() != 0 {
		t.Fatalf("expected the write to evict the cache entry, got size %d", cache.Size())
	}
}
