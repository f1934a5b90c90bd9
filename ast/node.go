// Package ast defines the engine's uniform AST node shape (spec §3, §4.6,
// §9): every node is either a leaf carrying a Variant or an internal node
// carrying a *NodeType and an owned, ordered slice of children. NodeType
// values are shared, registry-owned handles referenced (never copied) by
// nodes, replacing the teacher's per-kind struct + virtual-method hierarchy
// (github.com/deicod/gojinja/nodes) with a tagged-kind + dispatch-table
// design, per spec §9's explicit guidance.
package ast

import (
	"github.com/natanfelles/liquidgo/token"
	"github.com/natanfelles/liquidgo/variant"
)

// Kind discriminates a NodeType's shape, mirroring the original liquidcpp
// NodeType::Type enum (_examples/original_source/src/context.h).
type Kind int

const (
	KindVariable Kind = iota
	KindTagEnclosed
	KindTagFree
	KindOutput
	KindGroup
	KindArguments
	KindOperator
	KindFilter
	KindDotFilter
	KindConcatenation
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "VARIABLE"
	case KindTagEnclosed:
		return "TAG_ENCLOSED"
	case KindTagFree:
		return "TAG_FREE"
	case KindOutput:
		return "OUTPUT"
	case KindGroup:
		return "GROUP"
	case KindArguments:
		return "ARGUMENTS"
	case KindOperator:
		return "OPERATOR"
	case KindFilter:
		return "FILTER"
	case KindDotFilter:
		return "DOT_FILTER"
	case KindConcatenation:
		return "CONCATENATION"
	default:
		return "UNKNOWN"
	}
}

// OperatorArity is the operand count class of an OPERATOR NodeType.
type OperatorArity int

const (
	ArityNullary OperatorArity = iota
	ArityUnary
	ArityBinary
	ArityNary
)

// OperatorFixness is the syntactic position an operator is written in.
type OperatorFixness int

const (
	FixPrefix OperatorFixness = iota
	FixInfix
	FixAffix
)

// NodeType is an immutable, registry-owned handle. Nodes hold a borrowed
// pointer to their NodeType; NodeTypes never own the nodes that reference
// them (spec §9 "NodeType as shared value").
type NodeType struct {
	Kind   Kind
	Symbol string

	// MinArguments/MaxArguments bound argument count for TAG_* and
	// FILTER/DOT_FILTER kinds. -1 means unbounded.
	MinArguments int
	MaxArguments int

	// Arity/Fixness/Priority apply to OPERATOR kinds.
	Arity    OperatorArity
	Fixness  OperatorFixness
	Priority int

	// Intermediates maps an intermediate clause keyword (e.g. "else",
	// "elsif") to the NodeType that represents it, for TAG_ENCLOSED kinds.
	Intermediates map[string]*NodeType

	// Render is invoked for OPERATOR/TAG_*/FILTER/DOT_FILTER kinds; it is
	// nil for the five singleton structural kinds (CONCATENATION, OUTPUT,
	// VARIABLE, GROUP, ARGUMENTS), which the renderer/optimizer dispatch on
	// directly by Kind instead (spec §4.4).
	Render RenderFunc

	// Optimize overrides the optimizer's default per-kind folding for this
	// NodeType. May be nil.
	Optimize OptimizeFunc
}

// Node is either a leaf (Type == nil, Leaf populated) or an internal node
// (Type != nil, Children populated). A node exclusively owns its children;
// the tree is strictly hierarchical (spec §3).
type Node struct {
	Type     *NodeType
	Children []*Node
	Leaf     variant.Variant
	Pos      token.Position
}

// NewLeaf builds a leaf node carrying v.
func NewLeaf(v variant.Variant, pos token.Position) *Node {
	return &Node{Leaf: v, Pos: pos}
}

// NewInternal builds an internal node of the given type with children.
func NewInternal(t *NodeType, pos token.Position, children ...*Node) *Node {
	return &Node{Type: t, Children: children, Pos: pos}
}

func (n *Node) IsLeaf() bool { return n.Type == nil }

func (n *Node) Kind() Kind {
	if n.Type == nil {
		return -1
	}
	return n.Type.Kind
}

// AppendChild adds a child, preserving left-to-right order.
func (n *Node) AppendChild(c *Node) {
	n.Children = append(n.Children, c)
}

// Child returns the i'th child, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Singleton structural NodeTypes, owned by the ast package itself per spec
// §4.3 ("Singleton internal node types: CONCATENATION, OUTPUT, VARIABLE,
// GROUP, ARGUMENTS").
var (
	Concatenation = &NodeType{Kind: KindConcatenation, Symbol: "<concatenation>"}
	Output        = &NodeType{Kind: KindOutput, Symbol: "<output>"}
	Variable      = &NodeType{Kind: KindVariable, Symbol: "<variable>"}
	Group         = &NodeType{Kind: KindGroup, Symbol: "<group>"}
	Arguments     = &NodeType{Kind: KindArguments, Symbol: "<arguments>"}
)
