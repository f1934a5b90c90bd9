// Package render implements the engine's renderer (spec §4.4, §5): a
// depth/memory/time-budgeted AST walker that dispatches CONCATENATION,
// OUTPUT and VARIABLE directly and everything else (OPERATOR, TAG_*,
// FILTER, DOT_FILTER) through the NodeType's registered RenderFunc.
// Grounded on the teacher's runtime.Evaluator tree-walking shape
// (github.com/deicod/gojinja/runtime/evaluator.go) for the overall
// "walk, accumulate output, stop on error" control flow, generalized to
// the spec's Kind-based dispatch and budget enforcement
// (_examples/original_source/src/context.h's RenderSettings).
package render

import (
	"strings"
	"time"

	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/liquiderr"
	"github.com/natanfelles/liquidgo/resolver"
	"github.com/natanfelles/liquidgo/variant"
)

// Budget bounds a single render (spec §5 "resource budgets"). Zero means
// unbounded for that dimension.
type Budget struct {
	MaxDepth  int
	MaxMemory int64
	MaxTime   time.Duration
}

// Sink receives output chunks as they're produced, letting a caller stream
// a render to an http.ResponseWriter or file instead of buffering the whole
// result (spec §5 "chunked output"). May be nil.
type Sink func(chunk string) error

// Renderer walks one AST against one Store for one render call. It is not
// safe for concurrent use or reuse across renders; construct a fresh one
// per call to Render.
type Renderer struct {
	budget   Budget
	sink     Sink
	userData any

	depth    int
	memory   int64
	deadline time.Time
	hasDeadline bool

	control     ast.ControlSignal
	returnValue variant.Variant
}

// New constructs a Renderer. userData is threaded through to every
// RenderFunc via RenderCall.Engine.UserData (spec §6.1).
func New(budget Budget, sink Sink, userData any) *Renderer {
	r := &Renderer{budget: budget, sink: sink, userData: userData}
	if budget.MaxTime > 0 {
		r.deadline = time.Now().Add(budget.MaxTime)
		r.hasDeadline = true
	}
	return r
}

// Render walks root and returns the full rendered output, in addition to
// whatever was streamed to Sink as it was produced.
func (r *Renderer) Render(root *ast.Node, store resolver.Store) (string, error) {
	v, err := r.RenderNode(root, store)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// RenderNode implements ast.Engine.
func (r *Renderer) RenderNode(node *ast.Node, store resolver.Store) (variant.Variant, error) {
	if node == nil {
		return variant.NewNil(), nil
	}

	r.depth++
	defer func() { r.depth-- }()
	if r.budget.MaxDepth > 0 && r.depth > r.budget.MaxDepth {
		return variant.NewNil(), liquiderr.New(liquiderr.KindExceededDepth, node.Pos.Row, node.Pos.Column,
			"maximum render depth exceeded")
	}
	if r.hasDeadline && time.Now().After(r.deadline) {
		return variant.NewNil(), liquiderr.New(liquiderr.KindExceededTime, node.Pos.Row, node.Pos.Column,
			"render time budget exceeded")
	}

	if node.IsLeaf() {
		return node.Leaf, nil
	}

	switch node.Kind() {
	case ast.KindConcatenation:
		return r.renderConcatenation(node, store)
	case ast.KindOutput:
		return r.renderOutput(node, store)
	case ast.KindVariable:
		return r.renderVariable(node, store)
	case ast.KindGroup:
		return r.RenderNode(node.Child(0), store)
	case ast.KindArguments:
		// ARGUMENTS is only ever consumed through RenderCall helpers; a
		// direct render is a defensive no-op returning its last child.
		if n := len(node.Children); n > 0 {
			return r.RenderNode(node.Children[n-1], store)
		}
		return variant.NewNil(), nil
	default:
		return r.dispatch(node, store)
	}
}

func (r *Renderer) dispatch(node *ast.Node, store resolver.Store) (variant.Variant, error) {
	if node.Type.Render == nil {
		return variant.NewNil(), liquiderr.New(liquiderr.KindUnknownTag, node.Pos.Row, node.Pos.Column,
			node.Type.Symbol+" has no registered render function")
	}
	call := &ast.RenderCall{Engine: r, Node: node, Store: store}
	return node.Type.Render(call)
}

// renderConcatenation renders each child in order, accumulating text output
// and streaming it to Sink. A control signal raised by a child (BREAK,
// CONTINUE, RETURN) halts iteration immediately but the output already
// produced is preserved and returned (spec §5 short-circuit semantics); the
// signal itself remains set on the Renderer for an enclosing tag to observe.
func (r *Renderer) renderConcatenation(node *ast.Node, store resolver.Store) (variant.Variant, error) {
	var b strings.Builder
	for _, child := range node.Children {
		v, err := r.RenderNode(child, store)
		if err != nil {
			return variant.NewNil(), err
		}
		chunk := v.String()
		b.WriteString(chunk)
		if err := r.emit(chunk); err != nil {
			return variant.NewNil(), err
		}
		if r.control != ast.ControlNone {
			break
		}
	}
	return variant.NewString(b.String()), nil
}

func (r *Renderer) emit(chunk string) error {
	if chunk == "" {
		return nil
	}
	r.memory += int64(len(chunk))
	if r.budget.MaxMemory > 0 && r.memory > r.budget.MaxMemory {
		return liquiderr.New(liquiderr.KindExceededMemory, 0, 0, "render output exceeded memory budget")
	}
	if r.sink != nil {
		return r.sink(chunk)
	}
	return nil
}

// renderOutput renders `{{ expr | filters... }}`: child0 is an ARGUMENTS
// node wrapping exactly the filter-chain expression (spec §3).
func (r *Renderer) renderOutput(node *ast.Node, store resolver.Store) (variant.Variant, error) {
	args := node.Child(0)
	if args == nil || len(args.Children) == 0 {
		return variant.NewString(""), nil
	}
	return r.RenderNode(args.Children[0], store)
}

// renderVariable walks a VARIABLE node's chain against store: child 0 is
// always the root name (a string leaf); subsequent children are either a
// string-leaf dictionary key (`.name`) or an arbitrary expression whose
// rendered value selects a dictionary key or array index (`[expr]`), per
// spec §4.2/§6.2.
func (r *Renderer) renderVariable(node *ast.Node, store resolver.Store) (variant.Variant, error) {
	if len(node.Children) == 0 {
		return variant.NewNil(), nil
	}
	rootName := node.Children[0].Leaf.String()
	cur, ok := store.GetDictionary(rootName)
	if !ok {
		return variant.NewNil(), nil
	}
	for _, step := range node.Children[1:] {
		key, idx, isIndex, err := r.resolveStep(step, store)
		if err != nil {
			return variant.NewNil(), err
		}
		var next resolver.Store
		if isIndex {
			next, ok = cur.GetArray(idx)
		} else {
			next, ok = cur.GetDictionary(key)
		}
		if !ok {
			return variant.NewNil(), nil
		}
		cur = next
	}
	return resolver.ToVariant(cur), nil
}

// resolveStep evaluates one chain step: a plain string leaf is always a
// dictionary key; any other node is rendered and its result dispatched by
// Variant kind (int selects an array index, anything else stringifies to a
// dictionary key), matching Liquid's `a[expr]` dual behavior.
func (r *Renderer) resolveStep(step *ast.Node, store resolver.Store) (key string, idx int, isIndex bool, err error) {
	if step.IsLeaf() && step.Leaf.Kind() == variant.String {
		return step.Leaf.String(), 0, false, nil
	}
	v, err := r.RenderNode(step, store)
	if err != nil {
		return "", 0, false, err
	}
	if v.Kind() == variant.Int {
		return "", int(v.Int()), true, nil
	}
	return v.String(), 0, false, nil
}

func (r *Renderer) Control() ast.ControlSignal     { return r.control }
func (r *Renderer) SetControl(c ast.ControlSignal) { r.control = c }

func (r *Renderer) ReturnValue() variant.Variant          { return r.returnValue }
func (r *Renderer) SetReturnValue(v variant.Variant) { r.returnValue = v }

func (r *Renderer) UserData() any { return r.userData }
