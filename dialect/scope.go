package dialect

import (
	"github.com/natanfelles/liquidgo/resolver"
	"github.com/natanfelles/liquidgo/variant"
)

// scope layers local bindings (a loop variable) over a parent Store without
// mutating the host's own data, preserving the ownership rule that a
// borrowed Store is never retained or written past the render call that
// obtained it (spec §6.2). Lookups miss to the parent; SetDictionary binds
// in the local layer, while SetArray is passed through to the parent.
// assign/capture/increment/decrement do not bind here: nearestMutable walks
// past scope layers to the host store.
type scope struct {
	parent resolver.Store
	locals map[string]resolver.Store
}

func newScope(parent resolver.Store) *scope {
	return &scope{parent: parent, locals: make(map[string]resolver.Store)}
}

var (
	_ resolver.Store   = (*scope)(nil)
	_ resolver.Mutable = (*scope)(nil)
)

func (s *scope) Kind() resolver.ValueKind { return resolver.KindDictionary }
func (s *scope) Bool() (bool, bool)       { return false, false }
func (s *scope) Truthy() bool             { return true }
func (s *scope) String() (string, bool)   { return "", false }
func (s *scope) Int() (int64, bool)       { return 0, false }
func (s *scope) Float() (float64, bool)   { return 0, false }

func (s *scope) GetDictionary(key string) (resolver.Store, bool) {
	if v, ok := s.locals[key]; ok {
		return v, true
	}
	if s.parent != nil {
		return s.parent.GetDictionary(key)
	}
	return nil, false
}

func (s *scope) GetArray(idx int) (resolver.Store, bool) {
	if s.parent != nil {
		return s.parent.GetArray(idx)
	}
	return nil, false
}

func (s *scope) ArraySize() int {
	if s.parent != nil {
		return s.parent.ArraySize()
	}
	return 0
}

func (s *scope) Iterate(start, limit int, reverse bool, fn func(key string, value resolver.Store) bool) {
	if s.parent != nil {
		s.parent.Iterate(start, limit, reverse, fn)
	}
}

func (s *scope) SetDictionary(key string, value resolver.Store) error {
	s.locals[key] = value
	return nil
}

func (s *scope) SetArray(idx int, value resolver.Store) error {
	if m, ok := s.parent.(resolver.Mutable); ok {
		return m.SetArray(idx, value)
	}
	return nil
}

// nearestMutable walks past any loop scope layers to the underlying host
// store, so `assign`/`capture`/`increment`/`decrement` bind a name with
// template-wide visibility even when called from inside a `for` body,
// matching Liquid's global assignment scoping rather than the loop's own
// per-iteration shadowing (spec §6.2's Mutable contract is about the host
// store, not a transient render-local layer).
func nearestMutable(s resolver.Store) (resolver.Mutable, bool) {
	for s != nil {
		if sc, ok := s.(*scope); ok {
			s = sc.parent
			continue
		}
		m, ok := s.(resolver.Mutable)
		return m, ok
	}
	return nil, false
}

// variantStore adapts a scalar variant.Variant into a resolver.Store, used
// to bind assign/capture/increment/decrement results. A Pointer variant
// wrapping a resolver.Store is unwrapped instead of double-wrapped, so a
// value that already carries array/dictionary behavior (e.g. the result of
// the `split` filter) keeps it after being assigned to a name.
type variantStore struct {
	v variant.Variant
}

var _ resolver.Store = variantStore{}

func storeFromVariant(v variant.Variant) resolver.Store {
	if v.Kind() == variant.Pointer {
		if st, ok := v.Pointer().(resolver.Store); ok {
			return st
		}
	}
	return variantStore{v: v}
}

func (vs variantStore) Kind() resolver.ValueKind {
	switch vs.v.Kind() {
	case variant.Nil:
		return resolver.KindNil
	case variant.Bool:
		return resolver.KindBool
	case variant.Int:
		return resolver.KindInt
	case variant.Float:
		return resolver.KindFloat
	case variant.String:
		return resolver.KindString
	default:
		return resolver.KindOther
	}
}

func (vs variantStore) Bool() (bool, bool) {
	return vs.v.Bool(), vs.v.Kind() == variant.Bool
}
func (vs variantStore) Truthy() bool { return vs.v.Truthy() }
func (vs variantStore) String() (string, bool) {
	return vs.v.String(), vs.v.Kind() == variant.String
}
func (vs variantStore) Int() (int64, bool) {
	return vs.v.Int(), vs.v.Kind() == variant.Int
}
func (vs variantStore) Float() (float64, bool) {
	return vs.v.Float(), vs.v.Kind() == variant.Float || vs.v.Kind() == variant.Int
}
func (vs variantStore) GetDictionary(string) (resolver.Store, bool) { return nil, false }
func (vs variantStore) GetArray(int) (resolver.Store, bool)         { return nil, false }
func (vs variantStore) ArraySize() int                              { return 0 }
func (vs variantStore) Iterate(int, int, bool, func(string, resolver.Store) bool) {}
