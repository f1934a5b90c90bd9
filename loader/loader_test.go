package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/natanfelles/liquidgo/liquidctx"
)

func TestFileSystemLoaderSearchPathFallback(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	expected := "hello {{ name }}"
	if err := os.WriteFile(filepath.Join(dir2, "greeting.liquid"), []byte(expected), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	l := NewFileSystemLoader(dir1)
	l.AddSearchPath(dir2)

	content, err := l.Load("greeting.liquid")
	if err != nil {
		t.Fatalf("expected to load template, got error: %v", err)
	}
	if content != expected {
		t.Fatalf("expected content %q, got %q", expected, content)
	}

	paths := l.SearchPath()
	if len(paths) != 2 || paths[0] != dir1 || paths[1] != dir2 {
		t.Fatalf("unexpected search path order: %v", paths)
	}
	paths[0] = "mutated"
	if l.SearchPath()[0] != dir1 {
		t.Fatal("SearchPath should return a defensive copy")
	}
}

func TestFileSystemLoaderNotFound(t *testing.T) {
	dir := t.TempDir()
	l := NewFileSystemLoader(dir)

	_, err := l.Load("missing.liquid")
	if err == nil {
		t.Fatal("expected error for missing template")
	}
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %T", err)
	}
}

func TestCacheReusesParsedNode(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "t.liquid"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewFileSystemLoader(dir)
	cache := NewCache()
	ctx := liquidctx.New(liquidctx.SettingDefault)

	node1, err := cache.Get(ctx, l, "t.liquid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Size() != 1 {
		t.Fatalf("expected 1 cached entry, got %d", cache.Size())
	}

	// Overwrite the file without evicting: Get must still return the
	// originally cached node, proving it didn't reparse.
	if err := os.WriteFile(filepath.Join(dir, "t.liquid"), []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	node2, err := cache.Get(ctx, l, "t.liquid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node1 != node2 {
		t.Fatal("expected cache hit to return the identical cached *ast.Node")
	}

	cache.Evict("t.liquid")
	if cache.Size() != 0 {
		t.Fatalf("expected cache to be empty after Evict, got %d", cache.Size())
	}
}
