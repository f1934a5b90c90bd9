package optimize

import (
	"testing"

	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/resolver"
	"github.com/natanfelles/liquidgo/token"
	"github.com/natanfelles/liquidgo/variant"
)

func pos() token.Position { return token.Position{Row: 1, Column: 1} }
func leaf(v variant.Variant) *ast.Node { return ast.NewLeaf(v, pos()) }

func TestOptimizeConcatenationFoldsAdjacentLeaves(t *testing.T) {
	root := ast.NewInternal(ast.Concatenation, pos(),
		leaf(variant.NewString("a")),
		leaf(variant.NewString("b")),
		leaf(variant.NewString("c")),
	)
	out := New(resolver.Wrap(nil), 0).Optimize(root)
	if !out.IsLeaf() || out.Leaf.String() != "abc" {
		t.Fatalf("expected a single folded leaf 'abc', got %+v", out)
	}
}

func TestOptimizeConcatenationKeepsUnfoldableChildren(t *testing.T) {
	unknownTag := &ast.NodeType{Kind: ast.KindTagFree, Symbol: "unknown", Render: nil}
	unfoldable := ast.NewInternal(unknownTag, pos(), ast.NewInternal(ast.Arguments, pos()))

	root := ast.NewInternal(ast.Concatenation, pos(),
		leaf(variant.NewString("a")),
		unfoldable,
		leaf(variant.NewString("b")),
	)
	out := New(resolver.Wrap(nil), 0).Optimize(root)
	if out.IsLeaf() {
		t.Fatalf("expected the concatenation to survive with an unfoldable child, got leaf %+v", out)
	}
	if len(out.Children) != 3 {
		t.Fatalf("expected 3 children (literal, unfoldable, literal), got %d", len(out.Children))
	}
}

func TestOptimizeEmptyConcatenationFoldsToEmptyLeaf(t *testing.T) {
	root := ast.NewInternal(ast.Concatenation, pos())
	out := New(resolver.Wrap(nil), 0).Optimize(root)
	if !out.IsLeaf() || out.Leaf.String() != "" {
		t.Fatalf("expected a single empty leaf, got %+v", out)
	}
}

func TestOptimizeVariableResolvesFullyKnownChain(t *testing.T) {
	store := resolver.Wrap(map[string]any{"a": map[string]any{"b": "value"}})
	node := ast.NewInternal(ast.Variable, pos(),
		leaf(variant.NewString("a")),
		leaf(variant.NewString("b")),
	)
	out := New(store, 0).Optimize(node)
	if !out.IsLeaf() || out.Leaf.String() != "value" {
		t.Fatalf("expected the chain to fold to leaf 'value', got %+v", out)
	}
}

func TestOptimizeVariableLeavesUnresolvedChainUntouched(t *testing.T) {
	store := resolver.Wrap(map[string]any{"a": map[string]any{}})
	node := ast.NewInternal(ast.Variable, pos(),
		leaf(variant.NewString("a")),
		leaf(variant.NewString("missing")),
	)
	out := New(store, 0).Optimize(node)
	if out.IsLeaf() {
		t.Fatalf("expected an unresolved chain to survive unfolded, got leaf %+v", out)
	}
	if out != node {
		t.Errorf("expected the same node instance to be returned untouched")
	}
}

func TestOptimizeDefaultFoldsOperatorNode(t *testing.T) {
	plus := &ast.NodeType{
		Kind: ast.KindOperator, Symbol: "+", Arity: ast.ArityBinary, Fixness: ast.FixInfix,
		Render: func(call *ast.RenderCall) (variant.Variant, error) {
			lhs, _ := call.Child(0)
			rhs, _ := call.Child(1)
			return variant.NewInt(lhs.Int() + rhs.Int()), nil
		},
	}
	node := ast.NewInternal(plus, pos(), leaf(variant.NewInt(2)), leaf(variant.NewInt(3)))
	out := New(resolver.Wrap(nil), 0).Optimize(node)
	if !out.IsLeaf() || out.Leaf.Int() != 5 {
		t.Fatalf("expected the operator to fold to leaf 5, got %+v", out)
	}
}

func TestOptimizeCustomOptimizeOverride(t *testing.T) {
	calls := 0
	custom := &ast.NodeType{
		Kind: ast.KindFilter, Symbol: "custom",
		Optimize: func(call *ast.OptimizeCall) (bool, variant.Variant) {
			calls++
			return true, variant.NewString("overridden")
		},
	}
	node := ast.NewInternal(custom, pos(), leaf(variant.NewInt(1)), ast.NewInternal(ast.Arguments, pos()))
	out := New(resolver.Wrap(nil), 0).Optimize(node)
	if calls != 1 {
		t.Fatalf("expected the custom Optimize hook to run exactly once, got %d", calls)
	}
	if !out.IsLeaf() || out.Leaf.String() != "overridden" {
		t.Fatalf("expected the custom override's value, got %+v", out)
	}
}

func TestOptimizeSharesDepthBudget(t *testing.T) {
	var node *ast.Node = leaf(variant.NewInt(1))
	for i := 0; i < 10; i++ {
		node = ast.NewInternal(ast.Group, pos(), node)
	}
	out := New(resolver.Wrap(nil), 3).Optimize(node)
	// Past the depth budget, optimizeNode stops descending and returns the
	// node unchanged rather than folding it.
	if out.IsLeaf() {
		t.Fatalf("expected depth-limited optimization to leave the outer GROUP unfolded, got leaf %+v", out)
	}
}
