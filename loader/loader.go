// Package loader implements file-system template loading with an in-memory
// compiled-AST cache (SPEC_FULL.md §10), supplementing spec.md: re-parsing a
// changed file wholesale on a filesystem event, never incremental parsing
// (spec.md's streaming/incremental-parse Non-goal still applies).
//
// Grounded on the teacher's runtime.FileSystemLoader/TemplateCache
// (github.com/deicod/gojinja/runtime/environment.go, runtime/cache.go) for
// the search-path-and-cache shape, adapted to store compiled *ast.Node
// values instead of the teacher's *Template (this module has no separate
// template-object type; a parsed root node already is the unit of reuse).
package loader

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/liquidctx"
	"github.com/natanfelles/liquidgo/parser"
)

// FileSystemLoader reads template source from one or more search paths,
// tried in order, mirroring runtime.FileSystemLoader's search semantics.
type FileSystemLoader struct {
	mu        sync.RWMutex
	basePaths []string
}

// NewFileSystemLoader builds a loader over the given search paths. With no
// paths it defaults to the current working directory.
func NewFileSystemLoader(basePaths ...string) *FileSystemLoader {
	paths := make([]string, 0, len(basePaths))
	for _, p := range basePaths {
		if p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		paths = append(paths, ".")
	}
	return &FileSystemLoader{basePaths: paths}
}

// Load reads name from the first search path that has it.
func (l *FileSystemLoader) Load(name string) (string, error) {
	l.mu.RLock()
	paths := append([]string(nil), l.basePaths...)
	l.mu.RUnlock()

	var lastErr error
	for _, base := range paths {
		data, err := os.ReadFile(filepath.Join(base, name))
		if err == nil {
			return string(data), nil
		}
		if errors.Is(err, os.ErrNotExist) {
			lastErr = err
			continue
		}
		return "", err
	}
	if lastErr == nil {
		lastErr = os.ErrNotExist
	}
	return "", &NotFoundError{Name: name, Cause: lastErr}
}

// ResolvedPath returns the first search path entry where name exists, for
// callers (loader.Watch) that need a concrete path to register with a
// filesystem watcher.
func (l *FileSystemLoader) ResolvedPath(name string) (string, bool) {
	l.mu.RLock()
	paths := append([]string(nil), l.basePaths...)
	l.mu.RUnlock()

	for _, base := range paths {
		full := filepath.Join(base, name)
		if _, err := os.Stat(full); err == nil {
			return full, true
		}
	}
	return "", false
}

// SearchPath returns a copy of the configured search paths.
func (l *FileSystemLoader) SearchPath() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.basePaths...)
}

// AddSearchPath appends a path to the loader's search list.
func (l *FileSystemLoader) AddSearchPath(path string) {
	if path == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.basePaths = append(l.basePaths, path)
}

// NotFoundError reports a template name no search path could resolve.
type NotFoundError struct {
	Name  string
	Cause error
}

func (e *NotFoundError) Error() string {
	return "template not found: " + e.Name
}

func (e *NotFoundError) Unwrap() error { return e.Cause }

// Source is the minimal contract Cache needs from a loader: name in,
// source text out. *FileSystemLoader satisfies it; so does any host-supplied
// loader (e.g. a map-backed one for tests).
type Source interface {
	Load(name string) (string, error)
}

// Cache memoizes parsed templates by name, so repeated renders of the same
// template skip lexing/parsing entirely until the entry is evicted.
// Grounded on runtime.TemplateCache's entries-map-plus-mutex shape, dropping
// the teacher's TTL/size-eviction fields (spec.md's caching concern here is
// "don't reparse an unchanged file", not a general-purpose LRU).
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*ast.Node
}

// NewCache builds an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*ast.Node)}
}

// Get parses and caches the named template on first access, via source.
// Subsequent calls with the same name return the cached *ast.Node without
// touching source or the parser again.
func (c *Cache) Get(ctx *liquidctx.Context, source Source, name string) (*ast.Node, error) {
	c.mu.RLock()
	if node, ok := c.entries[name]; ok {
		c.mu.RUnlock()
		return node, nil
	}
	c.mu.RUnlock()

	text, err := source.Load(name)
	if err != nil {
		return nil, err
	}
	node, errs := parser.Parse(ctx, text)
	if len(errs) > 0 {
		return nil, errs[0]
	}

	c.mu.Lock()
	c.entries[name] = node
	c.mu.Unlock()
	return node, nil
}

// Evict removes name's cached AST, forcing the next Get to reparse it.
func (c *Cache) Evict(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// Clear empties the cache entirely.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*ast.Node)
}

// Size reports the number of cached entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
