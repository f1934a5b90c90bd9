// Package variant implements the engine's tagged value type: the scalar
// union used by AST leaves and carried as the result of every render
// callback.
package variant

import (
	"fmt"
	"math"
	"strconv"
)

// Kind discriminates the variant's active member.
type Kind int

const (
	Nil Kind = iota
	Bool
	Int
	Float
	String
	Pointer
)

func (k Kind) String() string {
	switch k {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Pointer:
		return "pointer"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Variant is a tagged union over {nil, bool, int64, float64, string,
// opaque-pointer}. The zero value is Nil.
type Variant struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	p    any
}

// NewNil returns the nil variant.
func NewNil() Variant { return Variant{kind: Nil} }

// NewBool wraps a bool.
func NewBool(b bool) Variant { return Variant{kind: Bool, b: b} }

// NewInt wraps an int64.
func NewInt(i int64) Variant { return Variant{kind: Int, i: i} }

// NewFloat wraps a float64.
func NewFloat(f float64) Variant { return Variant{kind: Float, f: f} }

// NewString wraps a string.
func NewString(s string) Variant { return Variant{kind: String, s: s} }

// NewPointer wraps an opaque host-owned value. The engine never dereferences
// it; it is carried through render/filter pipelines for the host to unwrap.
func NewPointer(p any) Variant { return Variant{kind: Pointer, p: p} }

func (v Variant) Kind() Kind { return v.kind }
func (v Variant) IsNil() bool { return v.kind == Nil }

// Bool returns the wrapped bool, or false if v is not a Bool.
func (v Variant) Bool() bool { return v.b }

// Int returns the wrapped int64, or 0 if v is not numeric.
func (v Variant) Int() int64 {
	if v.kind == Float {
		return int64(v.f)
	}
	return v.i
}

// Float returns the wrapped float64, widening an Int if needed.
func (v Variant) Float() float64 {
	if v.kind == Int {
		return float64(v.i)
	}
	return v.f
}

// String stringifies the variant for output rendering.
func (v Variant) String() string {
	switch v.kind {
	case Nil:
		return ""
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case String:
		return v.s
	case Pointer:
		return fmt.Sprintf("%v", v.p)
	default:
		return ""
	}
}

// Pointer returns the wrapped opaque value, or nil if v is not a Pointer.
func (v Variant) Pointer() any { return v.p }

// Truthy applies the engine's truthiness rule: nil and boolean false are
// falsy, every other variant (including 0, "", and pointers) is truthy.
// This matches the Liquid convention the spec's store/resolver follows,
// distinct from C-like "0 is falsy".
func (v Variant) Truthy() bool {
	switch v.kind {
	case Nil:
		return false
	case Bool:
		return v.b
	default:
		return true
	}
}

// numeric reports whether v participates in numeric widening.
func (v Variant) numeric() bool { return v.kind == Int || v.kind == Float }

// Equal implements the spec's total equality within compatible kinds: nil
// equals only nil, numeric kinds widen int->float, strings compare by byte
// value, and incompatible kinds (e.g. string vs number) are never equal.
func Equal(a, b Variant) bool {
	if a.kind == Nil || b.kind == Nil {
		return a.kind == b.kind
	}
	if a.numeric() && b.numeric() {
		return a.Float() == b.Float()
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Bool:
		return a.b == b.b
	case String:
		return a.s == b.s
	case Pointer:
		return a.p == b.p
	default:
		return false
	}
}

// Compare orders a and b, returning -1, 0, or 1. ok is false when the kinds
// are not ordering-compatible (only numeric-numeric and string-string are).
func Compare(a, b Variant) (result int, ok bool) {
	if a.numeric() && b.numeric() {
		af, bf := a.Float(), b.Float()
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if a.kind == String && b.kind == String {
		switch {
		case a.s < b.s:
			return -1, true
		case a.s > b.s:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

// IsNaN reports whether v is a float variant holding NaN, used by filters
// that must reject non-finite intermediate results.
func (v Variant) IsNaN() bool {
	return v.kind == Float && math.IsNaN(v.f)
}
