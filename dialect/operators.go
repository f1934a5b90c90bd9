package dialect

import (
	"strings"

	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/liquidctx"
	"github.com/natanfelles/liquidgo/resolver"
	"github.com/natanfelles/liquidgo/variant"
)

// registerOperators registers the standard comparison, logical and
// arithmetic operator set (SPEC_FULL.md §13). Priorities follow Liquid's
// usual reading: `or`/`and` bind loosest, comparisons next, then additive,
// then multiplicative, with `not`/unary `-` prefix above all of them.
// Grounded on the teacher's `runtime.evalBinOp`
// (github.com/deicod/gojinja/runtime/evaluator.go) for operator semantics,
// reworked for lazy (short-circuiting) operand evaluation via
// RenderCall.Child since the renderer's OPERATOR dispatch defers rendering
// until the registered RenderFunc asks for an operand (spec §5).
func registerOperators(ctx *liquidctx.Context) {
	ctx.RegisterOperator("or", ast.ArityBinary, ast.FixInfix, 1, renderOr)
	ctx.RegisterOperator("and", ast.ArityBinary, ast.FixInfix, 2, renderAnd)

	ctx.RegisterOperator("==", ast.ArityBinary, ast.FixInfix, 5, renderEquals(true))
	ctx.RegisterOperator("!=", ast.ArityBinary, ast.FixInfix, 5, renderEquals(false))
	ctx.RegisterOperator("<", ast.ArityBinary, ast.FixInfix, 5, renderOrdering(func(r int) bool { return r < 0 }))
	ctx.RegisterOperator(">", ast.ArityBinary, ast.FixInfix, 5, renderOrdering(func(r int) bool { return r > 0 }))
	ctx.RegisterOperator("<=", ast.ArityBinary, ast.FixInfix, 5, renderOrdering(func(r int) bool { return r <= 0 }))
	ctx.RegisterOperator(">=", ast.ArityBinary, ast.FixInfix, 5, renderOrdering(func(r int) bool { return r >= 0 }))
	ctx.RegisterOperator("contains", ast.ArityBinary, ast.FixInfix, 5, renderContains)

	ctx.RegisterOperator("+", ast.ArityBinary, ast.FixInfix, 10, renderArith(func(a, b float64) float64 { return a + b }))
	ctx.RegisterOperator("-", ast.ArityBinary, ast.FixInfix, 10, renderArith(func(a, b float64) float64 { return a - b }))
	ctx.RegisterOperator("*", ast.ArityBinary, ast.FixInfix, 20, renderArith(func(a, b float64) float64 { return a * b }))
	ctx.RegisterOperator("/", ast.ArityBinary, ast.FixInfix, 20, renderArith(func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return a / b
	}))

	ctx.RegisterOperator("not", ast.ArityUnary, ast.FixPrefix, 30, renderNot)
	// Unary minus shares the "-" symbol with binary subtraction; the parser
	// only ever reaches FixPrefix lookup in operand position, so this entry
	// and the binary one above coexist under the same registry key without
	// colliding (spec §4.2 rule 1's position-based disambiguation applies
	// to operator fixness the same way it applies to word operators).
	ctx.RegisterOperator("-", ast.ArityUnary, ast.FixPrefix, 30, renderNegate)
}

func renderOr(call *ast.RenderCall) (variant.Variant, error) {
	lhs, err := call.Child(0)
	if err != nil {
		return variant.NewNil(), err
	}
	if lhs.Truthy() {
		return variant.NewBool(true), nil
	}
	rhs, err := call.Child(1)
	if err != nil {
		return variant.NewNil(), err
	}
	return variant.NewBool(rhs.Truthy()), nil
}

func renderAnd(call *ast.RenderCall) (variant.Variant, error) {
	lhs, err := call.Child(0)
	if err != nil {
		return variant.NewNil(), err
	}
	if !lhs.Truthy() {
		return variant.NewBool(false), nil
	}
	rhs, err := call.Child(1)
	if err != nil {
		return variant.NewNil(), err
	}
	return variant.NewBool(rhs.Truthy()), nil
}

func renderEquals(want bool) ast.RenderFunc {
	return func(call *ast.RenderCall) (variant.Variant, error) {
		lhs, err := call.Child(0)
		if err != nil {
			return variant.NewNil(), err
		}
		rhs, err := call.Child(1)
		if err != nil {
			return variant.NewNil(), err
		}
		return variant.NewBool(variant.Equal(lhs, rhs) == want), nil
	}
}

func renderOrdering(accept func(result int) bool) ast.RenderFunc {
	return func(call *ast.RenderCall) (variant.Variant, error) {
		lhs, err := call.Child(0)
		if err != nil {
			return variant.NewNil(), err
		}
		rhs, err := call.Child(1)
		if err != nil {
			return variant.NewNil(), err
		}
		result, ok := variant.Compare(lhs, rhs)
		if !ok {
			return variant.NewBool(false), nil
		}
		return variant.NewBool(accept(result)), nil
	}
}

// renderContains implements `contains` (spec §13): substring membership for
// strings, element/key membership for arrays and dictionaries carried as a
// resolver.Store behind a Pointer variant. Any other left-hand kind is never
// a container and contains is falsy, per Liquid's lenient membership rule.
func renderContains(call *ast.RenderCall) (variant.Variant, error) {
	lhs, err := call.Child(0)
	if err != nil {
		return variant.NewNil(), err
	}
	rhs, err := call.Child(1)
	if err != nil {
		return variant.NewNil(), err
	}
	if lhs.Kind() == variant.String {
		return variant.NewBool(strings.Contains(lhs.String(), rhs.String())), nil
	}
	store, ok := lhs.Pointer().(resolver.Store)
	if lhs.Kind() != variant.Pointer || !ok {
		return variant.NewBool(false), nil
	}
	found := false
	switch store.Kind() {
	case resolver.KindDictionary:
		_, found = store.GetDictionary(rhs.String())
	case resolver.KindArray:
		store.Iterate(0, -1, false, func(_ string, value resolver.Store) bool {
			if variant.Equal(resolver.ToVariant(value), rhs) {
				found = true
				return false
			}
			return true
		})
	}
	return variant.NewBool(found), nil
}

func renderArith(op func(a, b float64) float64) ast.RenderFunc {
	return func(call *ast.RenderCall) (variant.Variant, error) {
		lhs, err := call.Child(0)
		if err != nil {
			return variant.NewNil(), err
		}
		rhs, err := call.Child(1)
		if err != nil {
			return variant.NewNil(), err
		}
		result := op(lhs.Float(), rhs.Float())
		if lhs.Kind() == variant.Int && rhs.Kind() == variant.Int {
			return variant.NewInt(int64(result)), nil
		}
		return variant.NewFloat(result), nil
	}
}

func renderNot(call *ast.RenderCall) (variant.Variant, error) {
	v, err := call.Child(0)
	if err != nil {
		return variant.NewNil(), err
	}
	return variant.NewBool(!v.Truthy()), nil
}

func renderNegate(call *ast.RenderCall) (variant.Variant, error) {
	v, err := call.Child(0)
	if err != nil {
		return variant.NewNil(), err
	}
	if v.Kind() == variant.Int {
		return variant.NewInt(-v.Int()), nil
	}
	return variant.NewFloat(-v.Float()), nil
}
