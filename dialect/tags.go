package dialect

import (
	"strings"

	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/liquidctx"
	"github.com/natanfelles/liquidgo/resolver"
	"github.com/natanfelles/liquidgo/variant"
)

// registerTags registers the standard control-flow and state tags
// (SPEC_FULL.md §13). Grounded on the teacher's statement-node set
// (github.com/deicod/gojinja/nodes, runtime/evaluator.go's visitIf/visitFor)
// for the overall "walk clauses, pick a body, render it" shape, adapted to
// this engine's registry-driven TAG_FREE/TAG_ENCLOSED dispatch instead of a
// fixed AST node type per tag.
func registerTags(ctx *liquidctx.Context) {
	ctx.RegisterTagType("if", ast.KindTagEnclosed, 1, 1, renderIfLike(false))
	ctx.RegisterIntermediate("if", "elsif", 1, 1)
	ctx.RegisterIntermediate("if", "else", 0, 0)

	ctx.RegisterTagType("unless", ast.KindTagEnclosed, 1, 1, renderIfLike(true))
	ctx.RegisterIntermediate("unless", "else", 0, 0)

	ctx.RegisterTagType("case", ast.KindTagEnclosed, 1, 1, renderCase)
	ctx.RegisterIntermediate("case", "when", 1, -1)
	ctx.RegisterIntermediate("case", "else", 0, 0)

	// Loop variable, collection, then optional trailing limit/offset/reversed
	// positional arguments. Liquid's `limit:`/`offset:` keyword-argument
	// syntax has no equivalent in this engine's argument grammar (tag
	// arguments are always a plain comma-separated expression list, spec
	// §4.2), so the modifiers are positional here instead of named -- a
	// documented simplification, see DESIGN.md.
	ctx.RegisterTagType("for", ast.KindTagEnclosed, 2, 5, renderFor)

	ctx.RegisterTagType("break", ast.KindTagFree, 0, 0, renderBreak)
	ctx.RegisterTagType("continue", ast.KindTagFree, 0, 0, renderContinue)

	ctx.RegisterTagType("assign", ast.KindTagFree, 2, 2, renderAssign)
	ctx.RegisterTagType("capture", ast.KindTagEnclosed, 1, 1, renderCapture)
	ctx.RegisterTagType("increment", ast.KindTagFree, 1, 1, renderIncrement)
	ctx.RegisterTagType("decrement", ast.KindTagFree, 1, 1, renderDecrement)
	ctx.RegisterTagType("cycle", ast.KindTagFree, 1, -1, renderCycle)

	// "raw"/"comment" bodies are swallowed whole by the lexer itself
	// (token.suspendedBodyTags); by the time these reach the renderer their
	// body is a single literal, output verbatim for raw and discarded for
	// comment.
	ctx.RegisterTagType("raw", ast.KindTagEnclosed, 0, 0, renderRaw)
	ctx.RegisterTagType("comment", ast.KindTagEnclosed, 0, 0, renderComment)
}

// bareVariableName extracts a tag argument's target name: a VARIABLE node
// written as a bare identifier (no `.`/`[]` steps), read structurally
// rather than rendered, since here the identifier names a binding instead
// of referencing one (spec §4.2 parses tag arguments as expressions
// uniformly; a bare one-child VARIABLE node doubles as a name token).
func bareVariableName(node *ast.Node) (string, bool) {
	if node == nil || node.Kind() != ast.KindVariable || len(node.Children) != 1 {
		return "", false
	}
	return node.Children[0].Leaf.String(), true
}

// renderIfLike implements both `if` and `unless`: a chain of (condition,
// body) clauses plus an optional trailing `else`, picking the first
// matching clause's body. invert flips only the primary clause's test, for
// `unless`.
func renderIfLike(invert bool) ast.RenderFunc {
	return func(call *ast.RenderCall) (variant.Variant, error) {
		for i := 0; i < call.BodyCount(); i++ {
			if call.ClauseArgumentCount(i) == 0 {
				return call.Body(i)
			}
			cond, err := call.ClauseArgument(i, 0)
			if err != nil {
				return variant.NewNil(), err
			}
			match := cond.Truthy()
			if invert && i == 0 {
				match = !match
			}
			if match {
				return call.Body(i)
			}
		}
		return variant.NewString(""), nil
	}
}

// renderCase implements `case`/`when`/`else`: the primary clause's own
// argument is the switch value, each `when` clause matches if the switch
// value equals any of its own arguments, and a trailing `else` is the
// fallback.
func renderCase(call *ast.RenderCall) (variant.Variant, error) {
	switchVal, err := call.ClauseArgument(0, 0)
	if err != nil {
		return variant.NewNil(), err
	}
	for i := 1; i < call.BodyCount(); i++ {
		n := call.ClauseArgumentCount(i)
		if n == 0 {
			return call.Body(i)
		}
		for j := 0; j < n; j++ {
			v, err := call.ClauseArgument(i, j)
			if err != nil {
				return variant.NewNil(), err
			}
			if variant.Equal(switchVal, v) {
				return call.Body(i)
			}
		}
	}
	return variant.NewString(""), nil
}

// renderFor implements `for`: iterates an Array or Dictionary Store carried
// behind a Pointer variant, binding the loop variable in a fresh scope per
// render and honoring `break`/`continue` control signals raised from the
// body (spec §5).
func renderFor(call *ast.RenderCall) (variant.Variant, error) {
	args := call.Node.Child(0)
	loopVarName, ok := bareVariableName(args.Child(0))
	if !ok {
		return variant.NewString(""), nil
	}

	collVal, err := call.Engine.RenderNode(args.Child(1), call.Store)
	if err != nil {
		return variant.NewNil(), err
	}
	source, ok := collVal.Pointer().(resolver.Store)
	if collVal.Kind() != variant.Pointer || !ok {
		return variant.NewString(""), nil
	}

	limit := -1
	offset := 0
	reversed := false
	if n := len(args.Children); n > 2 {
		v, err := call.Engine.RenderNode(args.Child(2), call.Store)
		if err != nil {
			return variant.NewNil(), err
		}
		limit = int(v.Int())
	}
	if n := len(args.Children); n > 3 {
		v, err := call.Engine.RenderNode(args.Child(3), call.Store)
		if err != nil {
			return variant.NewNil(), err
		}
		offset = int(v.Int())
	}
	if n := len(args.Children); n > 4 {
		v, err := call.Engine.RenderNode(args.Child(4), call.Store)
		if err != nil {
			return variant.NewNil(), err
		}
		reversed = v.Truthy()
	}

	bodyNode := call.Node.Child(1)
	sc := newScope(call.Store)
	var out strings.Builder
	var iterErr error
	source.Iterate(offset, limit, reversed, func(_ string, value resolver.Store) bool {
		sc.SetDictionary(loopVarName, value)
		v, err := call.Engine.RenderNode(bodyNode, sc)
		if err != nil {
			iterErr = err
			return false
		}
		out.WriteString(v.String())
		switch call.Engine.Control() {
		case ast.ControlBreak:
			call.Engine.SetControl(ast.ControlNone)
			return false
		case ast.ControlContinue:
			call.Engine.SetControl(ast.ControlNone)
			return true
		default:
			return true
		}
	})
	if iterErr != nil {
		return variant.NewNil(), iterErr
	}
	return variant.NewString(out.String()), nil
}

func renderBreak(call *ast.RenderCall) (variant.Variant, error) {
	call.Engine.SetControl(ast.ControlBreak)
	return variant.NewString(""), nil
}

func renderContinue(call *ast.RenderCall) (variant.Variant, error) {
	call.Engine.SetControl(ast.ControlContinue)
	return variant.NewString(""), nil
}

// renderAssign implements `assign name, value` (spec-supplemented; see
// DESIGN.md for why this uses a comma instead of Liquid's `=`).
func renderAssign(call *ast.RenderCall) (variant.Variant, error) {
	args := call.Node.Child(0)
	name, ok := bareVariableName(args.Child(0))
	if !ok {
		return variant.NewString(""), nil
	}
	value, err := call.Engine.RenderNode(args.Child(1), call.Store)
	if err != nil {
		return variant.NewNil(), err
	}
	if m, ok := nearestMutable(call.Store); ok {
		m.SetDictionary(name, storeFromVariant(value))
	}
	return variant.NewString(""), nil
}

// renderCapture implements `capture name ... endcapture`: renders the body
// and binds the resulting string to name instead of emitting it.
func renderCapture(call *ast.RenderCall) (variant.Variant, error) {
	args := call.Node.Child(0)
	name, ok := bareVariableName(args.Child(0))
	if !ok {
		return variant.NewString(""), nil
	}
	v, err := call.Body(0)
	if err != nil {
		return variant.NewNil(), err
	}
	if m, ok := nearestMutable(call.Store); ok {
		m.SetDictionary(name, storeFromVariant(v))
	}
	return variant.NewString(""), nil
}

func renderIncrement(call *ast.RenderCall) (variant.Variant, error) {
	args := call.Node.Child(0)
	name, ok := bareVariableName(args.Child(0))
	if !ok {
		return variant.NewNil(), nil
	}
	cur := counterValue(call.Store, name)
	if m, ok := nearestMutable(call.Store); ok {
		m.SetDictionary(name, storeFromVariant(variant.NewInt(cur+1)))
	}
	return variant.NewInt(cur), nil
}

func renderDecrement(call *ast.RenderCall) (variant.Variant, error) {
	args := call.Node.Child(0)
	name, ok := bareVariableName(args.Child(0))
	if !ok {
		return variant.NewNil(), nil
	}
	next := counterValue(call.Store, name) - 1
	if m, ok := nearestMutable(call.Store); ok {
		m.SetDictionary(name, storeFromVariant(variant.NewInt(next)))
	}
	return variant.NewInt(next), nil
}

// renderCycle implements `cycle a, b, c`: each call advances a counter keyed
// by the rendered argument list itself (no named `group:` argument, per the
// same positional-only simplification as `for`'s limit/offset/reversed -- see
// DESIGN.md) and emits the value at the current position, wrapping around.
// The counter persists globally via nearestMutable so repeated calls inside
// a `for` body advance across iterations instead of resetting each time.
func renderCycle(call *ast.RenderCall) (variant.Variant, error) {
	n := call.ArgumentCount()
	values := make([]variant.Variant, n)
	keyParts := make([]string, n)
	for i := 0; i < n; i++ {
		v, err := call.Argument(i)
		if err != nil {
			return variant.NewNil(), err
		}
		values[i] = v
		keyParts[i] = v.String()
	}
	key := "cycle:" + strings.Join(keyParts, "\x00")
	pos := counterValue(call.Store, key) % int64(n)
	if m, ok := nearestMutable(call.Store); ok {
		m.SetDictionary(key, storeFromVariant(variant.NewInt(pos+1)))
	}
	return values[pos], nil
}

func counterValue(store resolver.Store, name string) int64 {
	v, ok := store.GetDictionary(name)
	if !ok {
		return 0
	}
	i, ok := v.Int()
	if !ok {
		return 0
	}
	return i
}

func renderRaw(call *ast.RenderCall) (variant.Variant, error) {
	return call.Body(0)
}

// renderComment discards its body entirely without rendering it, so
// malformed content inside a comment never surfaces a render error.
func renderComment(call *ast.RenderCall) (variant.Variant, error) {
	return variant.NewString(""), nil
}
