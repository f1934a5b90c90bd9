// Package optimize implements the engine's optimizer (spec §4.5): a
// depth-limited pre-render pass that constant-folds whatever a partial
// Store makes foldable, sharing the renderer's budget discipline so a
// pathological AST can't blow the stack here either. Grounded on the
// teacher's constant-folding-free evaluator — the teacher has no optimizer
// pass at all, so this package's shape is taken directly from spec §4.5's
// per-kind fold rules and from
// _examples/original_source/src/context.h's `NodeType::optimize` member.
package optimize

import (
	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/render"
	"github.com/natanfelles/liquidgo/resolver"
	"github.com/natanfelles/liquidgo/variant"
)

// Optimizer folds a tree against one partial Store. Constructing a fresh
// Optimizer per optimization pass mirrors render.Renderer's one-shot usage.
type Optimizer struct {
	store    resolver.Store
	maxDepth int
	depth    int
}

// New builds an Optimizer. maxDepth <= 0 means unbounded, matching
// render.Budget's zero-means-unbounded convention.
func New(store resolver.Store, maxDepth int) *Optimizer {
	return &Optimizer{store: store, maxDepth: maxDepth}
}

// Optimize folds node in place where possible and returns the (possibly
// replaced) root. render(Optimize(ast, store), store) == render(ast, store)
// for any store that is unchanged between optimization and render (spec §7
// property 4).
func (o *Optimizer) Optimize(node *ast.Node) *ast.Node {
	return o.optimizeNode(node)
}

func (o *Optimizer) optimizeNode(node *ast.Node) *ast.Node {
	if node == nil {
		return nil
	}
	o.depth++
	defer func() { o.depth-- }()
	if o.maxDepth > 0 && o.depth > o.maxDepth {
		return node
	}
	if node.IsLeaf() {
		return node
	}

	switch node.Kind() {
	case ast.KindVariable:
		return o.optimizeVariable(node)
	case ast.KindConcatenation:
		return o.optimizeConcatenation(node)
	case ast.KindArguments:
		// The group itself stays: OUTPUT/FILTER/TAG renders read its children.
		for i, c := range node.Children {
			node.Children[i] = o.optimizeNode(c)
		}
		return node
	default:
		for i, c := range node.Children {
			node.Children[i] = o.optimizeNode(c)
		}
		return o.tryFold(node)
	}
}

// tryFold applies a NodeType's custom Optimize override if registered,
// otherwise the default behavior: render the node against the store and
// replace it with a leaf holding the result (spec §4.5 "Default behavior").
func (o *Optimizer) tryFold(node *ast.Node) *ast.Node {
	if node.Type != nil && node.Type.Optimize != nil {
		if ok, leaf := node.Type.Optimize(&ast.OptimizeCall{Node: node, Store: o.store, Fold: o.fold}); ok {
			return ast.NewLeaf(leaf, node.Pos)
		}
		return node
	}
	if v, ok := o.fold(node, o.store); ok {
		return ast.NewLeaf(v, node.Pos)
	}
	return node
}

// fold renders node against store with a throwaway renderer sharing this
// pass's remaining depth budget (spec §4.5 "shares the renderer's depth
// counter"). A render error (e.g. a missing variable deep in an argument),
// or a control signal (break/continue/return) left set by the render,
// means the node cannot be folded, not a propagated error.
func (o *Optimizer) fold(node *ast.Node, store resolver.Store) (variant.Variant, bool) {
	remaining := 0
	if o.maxDepth > 0 {
		remaining = o.maxDepth - o.depth
		if remaining <= 0 {
			return variant.NewNil(), false
		}
	}
	r := render.New(render.Budget{MaxDepth: remaining}, nil, nil)
	v, err := r.RenderNode(node, store)
	if err != nil || r.Control() != ast.ControlNone {
		return variant.NewNil(), false
	}
	return v, true
}

// optimizeConcatenation folds adjacent leaf children into a single string
// leaf, keeps non-foldable children in place, and collapses the whole node
// to a single leaf if every child folded (spec §4.5). An empty
// CONCATENATION folds to a single empty-string leaf; no unconditional
// trailing empty leaf is appended beyond that (documented Open Question
// decision, see DESIGN.md).
func (o *Optimizer) optimizeConcatenation(node *ast.Node) *ast.Node {
	var folded []*ast.Node
	for _, c := range node.Children {
		oc := o.optimizeNode(c)
		if oc.IsLeaf() && len(folded) > 0 && folded[len(folded)-1].IsLeaf() {
			prev := folded[len(folded)-1]
			merged := variant.NewString(prev.Leaf.String() + oc.Leaf.String())
			folded[len(folded)-1] = ast.NewLeaf(merged, prev.Pos)
			continue
		}
		folded = append(folded, oc)
	}
	if len(folded) == 0 {
		return ast.NewLeaf(variant.NewString(""), node.Pos)
	}
	if len(folded) == 1 && folded[0].IsLeaf() {
		return folded[0]
	}
	node.Children = folded
	return node
}

// optimizeVariable resolves a chain statically when every link resolves in
// the supplied store, replacing the node with the resolved Variant;
// otherwise the chain steps (bracket-index expressions) are still
// recursively optimized in place and the VARIABLE node itself is left
// untouched (spec §4.5).
func (o *Optimizer) optimizeVariable(node *ast.Node) *ast.Node {
	for i := 1; i < len(node.Children); i++ {
		if step := node.Children[i]; !step.IsLeaf() {
			node.Children[i] = o.optimizeNode(step)
		}
	}

	if len(node.Children) == 0 {
		return node
	}
	rootName := node.Children[0].Leaf.String()
	cur, ok := o.store.GetDictionary(rootName)
	if !ok {
		return node
	}
	for _, step := range node.Children[1:] {
		var (
			key     string
			idx     int
			isIndex bool
		)
		switch {
		case step.IsLeaf() && step.Leaf.Kind() == variant.String:
			key = step.Leaf.String()
		case step.IsLeaf() && step.Leaf.Kind() == variant.Int:
			idx, isIndex = int(step.Leaf.Int()), true
		case step.IsLeaf():
			key = step.Leaf.String()
		default:
			// an index expression that didn't fold to a leaf: the chain
			// can't be statically resolved any further.
			return node
		}

		var next resolver.Store
		if isIndex {
			next, ok = cur.GetArray(idx)
		} else {
			next, ok = cur.GetDictionary(key)
		}
		if !ok {
			return node
		}
		cur = next
	}
	return ast.NewLeaf(resolver.ToVariant(cur), node.Pos)
}
