package render

import (
	"strings"
	"testing"
	"time"

	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/resolver"
	"github.com/natanfelles/liquidgo/token"
	"github.com/natanfelles/liquidgo/variant"
)

func pos() token.Position { return token.Position{Row: 1, Column: 1} }

func leaf(v variant.Variant) *ast.Node { return ast.NewLeaf(v, pos()) }

func TestRenderLiteralConcatenation(t *testing.T) {
	root := ast.NewInternal(ast.Concatenation, pos(),
		leaf(variant.NewString("hello ")),
		leaf(variant.NewString("world")),
	)
	r := New(Budget{}, nil, nil)
	out, err := r.Render(root, resolver.Wrap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", out)
	}
}

func TestRenderOutputWrapsExpression(t *testing.T) {
	args := ast.NewInternal(ast.Arguments, pos(), leaf(variant.NewInt(42)))
	output := ast.NewInternal(ast.Output, pos(), args)
	root := ast.NewInternal(ast.Concatenation, pos(), output)

	r := New(Budget{}, nil, nil)
	out, err := r.Render(root, resolver.Wrap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "42" {
		t.Errorf("expected %q, got %q", "42", out)
	}
}

func TestRenderVariableChainDotAndIndex(t *testing.T) {
	store := resolver.Wrap(map[string]any{
		"a": map[string]any{
			"b": []any{"zero", "one", "two"},
		},
	})
	variable := ast.NewInternal(ast.Variable, pos(),
		leaf(variant.NewString("a")),
		leaf(variant.NewString("b")),
		leaf(variant.NewInt(1)),
	)
	args := ast.NewInternal(ast.Arguments, pos(), variable)
	output := ast.NewInternal(ast.Output, pos(), args)
	root := ast.NewInternal(ast.Concatenation, pos(), output)

	r := New(Budget{}, nil, nil)
	out, err := r.Render(root, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "one" {
		t.Errorf("expected %q, got %q", "one", out)
	}
}

func TestRenderMissingVariableIsSilentNil(t *testing.T) {
	variable := ast.NewInternal(ast.Variable, pos(), leaf(variant.NewString("missing")))
	args := ast.NewInternal(ast.Arguments, pos(), variable)
	output := ast.NewInternal(ast.Output, pos(), args)
	root := ast.NewInternal(ast.Concatenation, pos(), output)

	r := New(Budget{}, nil, nil)
	out, err := r.Render(root, resolver.Wrap(map[string]any{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output for an undefined variable, got %q", out)
	}
}

func TestRenderControlSignalHaltsConcatenation(t *testing.T) {
	breakType := &ast.NodeType{
		Kind:   ast.KindTagFree,
		Symbol: "break",
		Render: func(call *ast.RenderCall) (variant.Variant, error) {
			call.Engine.SetControl(ast.ControlBreak)
			return variant.NewNil(), nil
		},
	}
	breakNode := ast.NewInternal(breakType, pos(), ast.NewInternal(ast.Arguments, pos()))
	root := ast.NewInternal(ast.Concatenation, pos(),
		leaf(variant.NewString("before-")),
		breakNode,
		leaf(variant.NewString("after")), // must never render
	)

	r := New(Budget{}, nil, nil)
	out, err := r.Render(root, resolver.Wrap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "before-" {
		t.Errorf("expected concatenation to halt at the control signal, got %q", out)
	}
	if r.Control() != ast.ControlBreak {
		t.Errorf("expected ControlBreak to remain observable after Render, got %v", r.Control())
	}
}

func TestRenderDepthBudgetExceeded(t *testing.T) {
	// Nest GROUP nodes deeper than the budget allows.
	var node *ast.Node = leaf(variant.NewInt(1))
	for i := 0; i < 10; i++ {
		node = ast.NewInternal(ast.Group, pos(), node)
	}
	r := New(Budget{MaxDepth: 3}, nil, nil)
	_, err := r.RenderNode(node, resolver.Wrap(nil))
	if err == nil {
		t.Fatal("expected a depth-budget error")
	}
}

func TestRenderMemoryBudgetExceeded(t *testing.T) {
	root := ast.NewInternal(ast.Concatenation, pos(),
		leaf(variant.NewString(strings.Repeat("x", 100))),
	)
	r := New(Budget{MaxMemory: 10}, nil, nil)
	_, err := r.Render(root, resolver.Wrap(nil))
	if err == nil {
		t.Fatal("expected a memory-budget error")
	}
}

func TestRenderTimeBudgetExceeded(t *testing.T) {
	root := ast.NewInternal(ast.Concatenation, pos(), leaf(variant.NewString("x")))
	r := New(Budget{MaxTime: time.Nanosecond}, nil, nil)
	time.Sleep(time.Millisecond)
	_, err := r.Render(root, resolver.Wrap(nil))
	if err == nil {
		t.Fatal("expected a time-budget error")
	}
}

func TestRenderSinkReceivesChunks(t *testing.T) {
	var chunks []string
	root := ast.NewInternal(ast.Concatenation, pos(),
		leaf(variant.NewString("a")),
		leaf(variant.NewString("b")),
	)
	r := New(Budget{}, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	}, nil)
	if _, err := r.Render(root, resolver.Wrap(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 || chunks[0] != "a" || chunks[1] != "b" {
		t.Errorf("expected sink to observe [\"a\" \"b\"], got %v", chunks)
	}
}

func TestOperatorDispatchViaRegisteredNodeType(t *testing.T) {
	plus := &ast.NodeType{
		Kind:     ast.KindOperator,
		Symbol:   "+",
		Arity:    ast.ArityBinary,
		Fixness:  ast.FixInfix,
		Priority: 10,
		Render: func(call *ast.RenderCall) (variant.Variant, error) {
			lhs, err := call.Child(0)
			if err != nil {
				return variant.NewNil(), err
			}
			rhs, err := call.Child(1)
			if err != nil {
				return variant.NewNil(), err
			}
			return variant.NewInt(lhs.Int() + rhs.Int()), nil
		},
	}
	expr := ast.NewInternal(plus, pos(), leaf(variant.NewInt(2)), leaf(variant.NewInt(3)))
	args := ast.NewInternal(ast.Arguments, pos(), expr)
	output := ast.NewInternal(ast.Output, pos(), args)
	root := ast.NewInternal(ast.Concatenation, pos(), output)

	r := New(Budget{}, nil, nil)
	out, err := r.Render(root, resolver.Wrap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "5" {
		t.Errorf("expected %q, got %q", "5", out)
	}
}
