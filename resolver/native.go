package resolver

import "sort"

// NativeStore is the default variable adapter: it wraps Go's own dynamic
// value graph (map[string]any / []any / scalars) as a Store, so the module
// is runnable end to end without a host-specific adapter. Spec §1 calls
// this an external collaborator of the core; it lives here because a
// complete, testable repo needs at least one concrete resolver.
//
// Grounded on the teacher's Environment.resolveValue/resolveIndex
// (github.com/deicod/gojinja/runtime/environment.go) and Scope.Get
// (github.com/deicod/gojinja/runtime/context.go), adapted to the
// resolver.Store vtable shape instead of a visitor-style evaluator.
type NativeStore struct {
	value any
}

// Wrap adapts a native Go value (map[string]any, []any, or a scalar) into a
// Store. Maps/slices of other concrete types are not walked automatically;
// pass map[string]any/[]any at the boundary.
func Wrap(value any) *NativeStore {
	return &NativeStore{value: value}
}

var _ Store = (*NativeStore)(nil)
var _ Mutable = (*NativeStore)(nil)

func (n *NativeStore) Kind() ValueKind {
	switch v := n.value.(type) {
	case nil:
		return KindNil
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindDictionary
	default:
		_ = v
		return KindOther
	}
}

func (n *NativeStore) Bool() (bool, bool) {
	b, ok := n.value.(bool)
	return b, ok
}

func (n *NativeStore) Truthy() bool {
	switch v := n.value.(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}

func (n *NativeStore) String() (string, bool) {
	s, ok := n.value.(string)
	return s, ok
}

func (n *NativeStore) Int() (int64, bool) {
	switch v := n.value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func (n *NativeStore) Float() (float64, bool) {
	switch v := n.value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func (n *NativeStore) GetDictionary(key string) (Store, bool) {
	m, ok := n.value.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	if s, ok := v.(Store); ok {
		return s, true
	}
	return &NativeStore{value: v}, true
}

func (n *NativeStore) GetArray(idx int) (Store, bool) {
	a, ok := n.value.([]any)
	if !ok {
		return nil, false
	}
	if idx < 0 {
		idx += len(a)
	}
	if idx < 0 || idx >= len(a) {
		return nil, false
	}
	return &NativeStore{value: a[idx]}, true
}

func (n *NativeStore) ArraySize() int {
	a, ok := n.value.([]any)
	if !ok {
		return 0
	}
	return len(a)
}

func (n *NativeStore) Iterate(start, limit int, reverse bool, fn func(key string, value Store) bool) {
	switch v := n.value.(type) {
	case []any:
		indices := make([]int, 0, len(v))
		for i := range v {
			indices = append(indices, i)
		}
		if reverse {
			for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
				indices[i], indices[j] = indices[j], indices[i]
			}
		}
		n.iterateIndices(indices, start, limit, func(i int) (string, Store) {
			return "", &NativeStore{value: v[i]}
		}, fn)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys) // deterministic order, spec testable property 3
		if reverse {
			for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
		count := 0
		for i, k := range keys {
			if i < start {
				continue
			}
			if limit >= 0 && count >= limit {
				return
			}
			count++
			if !fn(k, &NativeStore{value: v[k]}) {
				return
			}
		}
	}
}

func (n *NativeStore) iterateIndices(indices []int, start, limit int, at func(int) (string, Store), fn func(string, Store) bool) {
	count := 0
	for i, idx := range indices {
		if i < start {
			continue
		}
		if limit >= 0 && count >= limit {
			return
		}
		count++
		k, v := at(idx)
		if !fn(k, v) {
			return
		}
	}
}

func (n *NativeStore) SetDictionary(key string, value Store) error {
	m, ok := n.value.(map[string]any)
	if !ok || m == nil {
		m = map[string]any{}
		n.value = m
	}
	m[key] = unwrapNative(value)
	return nil
}

func (n *NativeStore) SetArray(idx int, value Store) error {
	a, ok := n.value.([]any)
	if !ok {
		return nil
	}
	if idx < 0 || idx >= len(a) {
		return nil
	}
	a[idx] = unwrapNative(value)
	return nil
}

// Raw returns the wrapped native value, for callers that want it back.
func (n *NativeStore) Raw() any { return n.value }

func unwrapNative(s Store) any {
	if ns, ok := s.(*NativeStore); ok {
		return ns.value
	}
	return s
}
