// Package resolver defines the Variable Resolver contract (spec §4, §6.2):
// the adapter a host provides over its own dynamic value graph so the
// engine never needs to know the host's concrete value representation.
// Grounded on the teacher's runtime.Context/Scope variable lookup
// (github.com/deicod/gojinja/runtime/context.go) and on the vtable declared
// in _examples/original_source/src/context.h's Variable struct.
package resolver

import "github.com/natanfelles/liquidgo/variant"

// ValueKind mirrors the original Variable::Type enum (NIL, FLOAT, INT,
// STRING, ARRAY, DICTIONARY, OTHER).
type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindDictionary
	KindOther
)

// Store is the host-owned variable graph the engine walks during VARIABLE
// chain resolution and iterates during `for` loops. A Store is never
// mutated directly by the engine except through SetDictionary/SetArray,
// used by assignment tags (`assign`, `capture`, loop-local bindings).
//
// Ownership rule (spec §6.2): Get* returns a borrowed value, valid only for
// the duration of the render; the engine never frees or retains it past the
// render call that obtained it.
type Store interface {
	// Kind reports the dynamic type of the store's own root value.
	Kind() ValueKind

	// Bool/Truthy/String/Int/Float coerce the store's root value. ok is
	// false when the coercion is not meaningful for the value's Kind.
	Bool() (b bool, ok bool)
	Truthy() bool
	String() (s string, ok bool)
	Int() (i int64, ok bool)
	Float() (f float64, ok bool)

	// GetDictionary resolves a dotted-chain step by string key. Returns
	// (nil, false) when the key is absent -- absence is not an error
	// (spec §7: "Undefined-variable access is silent").
	GetDictionary(key string) (child Store, ok bool)

	// GetArray resolves a dotted-chain step by integer index.
	GetArray(idx int) (child Store, ok bool)

	// ArraySize returns the number of elements for an Array-kind store.
	ArraySize() int

	// Iterate walks an Array or Dictionary store from start, yielding at
	// most limit elements (limit < 0 means unbounded), in reverse order
	// when reverse is true. The callback receives the element's key (for
	// dictionaries; empty for arrays) and its Store; returning false stops
	// iteration early.
	Iterate(start, limit int, reverse bool, fn func(key string, value Store) bool)
}

// Mutable is implemented by stores that support the engine writing back
// assigned variables (spec §6.2 setDictionaryVariable/setArrayVariable).
// The default resolver's map/slice-backed store implements it; read-only
// host adapters need not.
type Mutable interface {
	Store
	SetDictionary(key string, value Store) error
	SetArray(idx int, value Store) error
}

// Factory creates new Store values detached from any parent, mirroring the
// original vtable's create*/freeVariable pair (Go's GC makes freeVariable a
// no-op, so only the creation half is exposed).
type Factory interface {
	NewNil() Store
	NewBool(b bool) Store
	NewInt(i int64) Store
	NewFloat(f float64) Store
	NewString(s string) Store
	NewArray(items []Store) Store
	NewDictionary(fields map[string]Store) Store
}

// ToVariant reads a Store's scalar leaf into the engine's Variant, used by
// the renderer's VARIABLE dispatch and by filters that need the underlying
// scalar. Array/Dictionary/Other stores become variant.NewPointer(store),
// carrying the Store itself through so a dialect's dot filters (`.size`,
// `.first`) can still reach it.
func ToVariant(s Store) variant.Variant {
	if s == nil {
		return variant.NewNil()
	}
	switch s.Kind() {
	case KindNil:
		return variant.NewNil()
	case KindBool:
		b, _ := s.Bool()
		return variant.NewBool(b)
	case KindInt:
		i, _ := s.Int()
		return variant.NewInt(i)
	case KindFloat:
		f, _ := s.Float()
		return variant.NewFloat(f)
	case KindString:
		str, _ := s.String()
		return variant.NewString(str)
	default:
		return variant.NewPointer(s)
	}
}
