package dialect

import (
	"github.com/natanfelles/liquidgo/resolver"
	"github.com/natanfelles/liquidgo/variant"
)

// arrayStore is a plain in-memory Array-kind Store, the concrete result
// type returned by filters that build a new sequence (`map`, `where`,
// `sort`, `reverse`, `uniq`, `split`). It is never mutated after
// construction, matching the borrowed-value contract other Store
// implementations in this package follow.
type arrayStore struct {
	items []resolver.Store
}

var _ resolver.Store = (*arrayStore)(nil)

func newArrayStore(items []resolver.Store) *arrayStore { return &arrayStore{items: items} }

func (a *arrayStore) Kind() resolver.ValueKind          { return resolver.KindArray }
func (a *arrayStore) Bool() (bool, bool)                { return false, false }
func (a *arrayStore) Truthy() bool                      { return true }
func (a *arrayStore) String() (string, bool)            { return "", false }
func (a *arrayStore) Int() (int64, bool)                { return 0, false }
func (a *arrayStore) Float() (float64, bool)            { return 0, false }
func (a *arrayStore) GetDictionary(string) (resolver.Store, bool) { return nil, false }

func (a *arrayStore) GetArray(idx int) (resolver.Store, bool) {
	if idx < 0 {
		idx += len(a.items)
	}
	if idx < 0 || idx >= len(a.items) {
		return nil, false
	}
	return a.items[idx], true
}

func (a *arrayStore) ArraySize() int { return len(a.items) }

func (a *arrayStore) Iterate(start, limit int, reverse bool, fn func(key string, value resolver.Store) bool) {
	indices := make([]int, 0, len(a.items))
	for i := range a.items {
		indices = append(indices, i)
	}
	if reverse {
		for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
			indices[i], indices[j] = indices[j], indices[i]
		}
	}
	count := 0
	for i, idx := range indices {
		if i < start {
			continue
		}
		if limit >= 0 && count >= limit {
			return
		}
		count++
		if !fn("", a.items[idx]) {
			return
		}
	}
}

// collectItems drains a Store's Array/Dictionary elements into a slice in
// iteration order (spec's sorted-key determinism for dictionaries carries
// through automatically via Store.Iterate).
func collectItems(s resolver.Store) []resolver.Store {
	var out []resolver.Store
	s.Iterate(0, -1, false, func(_ string, v resolver.Store) bool {
		out = append(out, v)
		return true
	})
	return out
}

// asStore extracts the resolver.Store a Pointer variant carries, if any.
func asStore(v variant.Variant) (resolver.Store, bool) {
	if v.Kind() != variant.Pointer {
		return nil, false
	}
	s, ok := v.Pointer().(resolver.Store)
	return s, ok
}
