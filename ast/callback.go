package ast

import (
	"github.com/natanfelles/liquidgo/resolver"
	"github.com/natanfelles/liquidgo/variant"
)

// ControlSignal is the renderer-internal flow-control indicator (spec §4.4,
// §5) used by loop/flow tags (`break`, `continue`, a `return`-like
// mechanism for user extensions) to short-circuit CONCATENATION traversal.
type ControlSignal int

const (
	ControlNone ControlSignal = iota
	ControlBreak
	ControlContinue
	ControlReturn
)

// Engine is the subset of renderer state a registered render/optimize
// callback may touch. render.Renderer implements it; ast cannot import
// render (render imports ast), so the dependency points this direction
// instead, matching spec §9's note that callbacks receive "handles that
// wrap mutable engine state".
type Engine interface {
	// RenderNode dispatches node by its Kind, honoring depth/memory/time
	// budgets, and returns its value. Leaves return their Variant directly.
	RenderNode(node *Node, store resolver.Store) (variant.Variant, error)

	Control() ControlSignal
	SetControl(ControlSignal)

	ReturnValue() variant.Variant
	SetReturnValue(variant.Variant)

	// UserData is host-supplied state threaded through every callback
	// invocation for the lifetime of one render (spec §6.1's callback
	// helpers taking a userData parameter).
	UserData() any
}

// RenderFunc is the signature every OPERATOR/TAG_*/FILTER/DOT_FILTER
// NodeType registers. It returns the node's rendered Variant or an error
// that halts rendering (spec §4.4).
type RenderFunc func(call *RenderCall) (variant.Variant, error)

// OptimizeFunc is the signature a NodeType may register to override the
// optimizer's default per-Kind folding (spec §4.5). ok is true when the
// node was folded and leaf now holds its replacement value.
type OptimizeFunc func(call *OptimizeCall) (ok bool, leaf variant.Variant)

// RenderCall bundles everything a render callback needs: the engine handle,
// the node being rendered, the variable store, and helpers that mirror the
// host API's getOperand/getArgument/getArgumentCount/getChild (spec §6.1).
type RenderCall struct {
	Engine Engine
	Node   *Node
	Store  resolver.Store
}

// Child renders the node's i'th direct child, triggering sub-rendering.
func (c *RenderCall) Child(i int) (variant.Variant, error) {
	ch := c.Node.Child(i)
	if ch == nil {
		return variant.NewNil(), nil
	}
	return c.Engine.RenderNode(ch, c.Store)
}

// ChildCount returns the node's direct child count.
func (c *RenderCall) ChildCount() int { return len(c.Node.Children) }

// argumentsNode locates the ARGUMENTS child for FILTER/DOT_FILTER (child 1)
// and TAG_* (child 0) kinds.
func (c *RenderCall) argumentsNode() *Node {
	switch c.Node.Kind() {
	case KindFilter, KindDotFilter:
		return c.Node.Child(1)
	case KindTagFree, KindTagEnclosed:
		return c.Node.Child(0)
	default:
		return nil
	}
}

// Operand renders the piped-in value of a FILTER/DOT_FILTER node (child 0).
func (c *RenderCall) Operand() (variant.Variant, error) {
	return c.Child(0)
}

// ArgumentCount returns the number of logical arguments: the ARGUMENTS
// group's child count for FILTER/DOT_FILTER/TAG_* kinds, or the direct
// child count for OPERATOR kinds (operands ARE the arguments there).
func (c *RenderCall) ArgumentCount() int {
	if args := c.argumentsNode(); args != nil {
		return len(args.Children)
	}
	return c.ChildCount()
}

// Argument renders the i'th logical argument.
func (c *RenderCall) Argument(i int) (variant.Variant, error) {
	if args := c.argumentsNode(); args != nil {
		ch := args.Child(i)
		if ch == nil {
			return variant.NewNil(), nil
		}
		return c.Engine.RenderNode(ch, c.Store)
	}
	return c.Child(i)
}

// BodyCount returns the number of clauses a TAG_ENCLOSED node carries
// (primary clause plus one per opened intermediate). A TAG_ENCLOSED node's
// Children are laid out in (args, body) pairs -- [args0, body0, args1,
// body1, ...] -- so each clause, including the primary one, can carry its
// own argument list (e.g. an `elsif`'s condition), not just the tag's
// overall opening arguments.
func (c *RenderCall) BodyCount() int {
	if c.Node.Kind() != KindTagEnclosed {
		return 0
	}
	return len(c.Node.Children) / 2
}

// Body renders the i'th clause body's CONCATENATION and returns its string
// Variant. Control signals raised inside the body (BREAK/CONTINUE/RETURN)
// remain observable via call.Engine.Control() after Body returns.
func (c *RenderCall) Body(i int) (variant.Variant, error) {
	if c.Node.Kind() != KindTagEnclosed {
		return variant.NewNil(), nil
	}
	body := c.Node.Child(2*i + 1)
	if body == nil {
		return variant.NewString(""), nil
	}
	return c.Engine.RenderNode(body, c.Store)
}

// ClauseArgumentCount returns the i'th clause's own argument count (e.g. an
// `elsif`'s condition count), as opposed to ArgumentCount/Argument which
// always address the tag's primary (clause 0) arguments.
func (c *RenderCall) ClauseArgumentCount(i int) int {
	if c.Node.Kind() != KindTagEnclosed {
		return 0
	}
	args := c.Node.Child(2 * i)
	if args == nil {
		return 0
	}
	return len(args.Children)
}

// ClauseArgument renders the j'th argument of the i'th clause.
func (c *RenderCall) ClauseArgument(i, j int) (variant.Variant, error) {
	if c.Node.Kind() != KindTagEnclosed {
		return variant.NewNil(), nil
	}
	args := c.Node.Child(2 * i)
	if args == nil {
		return variant.NewNil(), nil
	}
	ch := args.Child(j)
	if ch == nil {
		return variant.NewNil(), nil
	}
	return c.Engine.RenderNode(ch, c.Store)
}

// OptimizeCall bundles the state an OptimizeFunc needs.
type OptimizeCall struct {
	Node  *Node
	Store resolver.Store
	Fold  func(node *Node, store resolver.Store) (variant.Variant, bool)
}
