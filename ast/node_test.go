package ast

import (
	"strings"
	"testing"

	"github.com/natanfelles/liquidgo/token"
	"github.com/natanfelles/liquidgo/variant"
)

func token0() token.Position { return token.Position{Row: 1, Column: 1} }

func TestNodeLeafAndInternal(t *testing.T) {
	leaf := NewLeaf(variant.NewString("x"), token0())
	if !leaf.IsLeaf() {
		t.Error("leaf should report IsLeaf")
	}
	internal := NewInternal(Concatenation, token0(), leaf)
	if internal.IsLeaf() {
		t.Error("internal node should not report IsLeaf")
	}
	if internal.Kind() != KindConcatenation {
		t.Errorf("got kind %v", internal.Kind())
	}
	if internal.Child(0) != leaf {
		t.Error("child 0 should be the leaf we appended")
	}
	if internal.Child(5) != nil {
		t.Error("out-of-range child should be nil")
	}
}

func TestWalkVisitsAllNodes(t *testing.T) {
	leaf1 := NewLeaf(variant.NewString("a"), token0())
	leaf2 := NewLeaf(variant.NewString("b"), token0())
	root := NewInternal(Concatenation, token0(), leaf1, leaf2)

	var visited []*Node
	Walk(VisitorFunc(func(n *Node) bool {
		visited = append(visited, n)
		return false
	}), root)

	if len(visited) != 3 {
		t.Fatalf("expected 3 nodes visited, got %d", len(visited))
	}
}

func TestDumpIncludesKindAndSymbol(t *testing.T) {
	leaf := NewLeaf(variant.NewInt(42), token0())
	root := NewInternal(Output, token0(), leaf)
	out := Dump(root)
	if !strings.Contains(out, "OUTPUT") || !strings.Contains(out, "42") {
		t.Errorf("dump missing expected content: %s", out)
	}
}
