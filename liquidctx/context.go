// Package liquidctx implements the Context/Registry (spec §4.3): the holder
// of registered tag types, operator types and filter types, shared
// read-only across many parses and renders once first used. A Context holds
// no variable resolver; the variable store is passed to each render
// instead. Grounded on the teacher's runtime.Environment registration
// surface (AddFilter/AddTest/AddExtension,
// github.com/deicod/gojinja/runtime/environment.go), generalized from
// Jinja's fixed extension list to the spec's fully dynamic tag/operator/
// filter registry, and on the NodeType/OperatorNodeType/TagNodeType vtable
// declared in _examples/original_source/src/context.h.
package liquidctx

import (
	"sync"

	"github.com/natanfelles/liquidgo/ast"
)

// Settings is the bitset passed to New, matching spec §6.1's
// createContext(settings) shape.
type Settings uint8

const (
	SettingDefault Settings = 0
	// SettingExtendedAssignmentSyntax is carried in the bitset and reported
	// by Has, but the parser does not consult it: tag arguments, those of
	// `assign`-family tags included, are always parsed as full expressions,
	// whichever settings are given.
	SettingExtendedAssignmentSyntax Settings = 1 << iota
	// SettingExtendedExpressionSyntax accepts operators and parentheses in
	// every expression position (spec §4.2 "Extended expression mode"),
	// not just filter/tag arguments.
	SettingExtendedExpressionSyntax
)

func (s Settings) Has(bit Settings) bool { return s&bit != 0 }

// Context is the Registry. It is populated via the Register* methods, then
// frozen (logically, by convention — see Freeze) for use across many
// parses/renders. A Context must not be mutated concurrently with a parse
// or render that uses it (spec §5).
type Context struct {
	mu       sync.RWMutex
	settings Settings
	frozen   bool

	tags      map[string]*ast.NodeType
	operators map[string]*ast.NodeType
	filters   map[string]*ast.NodeType
	dotFilters map[string]*ast.NodeType

	// UnknownFilterIsError controls whether an unrecognized filter name
	// aborts the parse (spec §4.2 "optionally demoted to warning unless
	// treatUnknownFiltersAsErrors is set"). Default false.
	UnknownFilterIsError bool

	// MaximumParseDepth bounds the nesting of enclosing (TAG_ENCLOSED) tag
	// blocks (spec §4.2, default 100). Nested expressions and parentheses
	// are not counted against it.
	MaximumParseDepth int
}

// New constructs a Context with no tags/operators/filters registered; a
// dialect package (e.g. this module's `dialect`) is expected to populate it.
func New(settings Settings) *Context {
	return &Context{
		settings:          settings,
		tags:              make(map[string]*ast.NodeType),
		operators:         make(map[string]*ast.NodeType),
		filters:           make(map[string]*ast.NodeType),
		dotFilters:        make(map[string]*ast.NodeType),
		MaximumParseDepth: 100,
	}
}

func (c *Context) Settings() Settings { return c.settings }

// Freeze marks the context as in-use; Register* calls after Freeze panic in
// debug builds in the original design, but here simply continue to work —
// the spec's immutability is a caller contract (§3, §5), not enforced
// machinery, matching the teacher's Environment which never locks itself
// either. Freeze exists so callers can assert the contract if they choose.
func (c *Context) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

func (c *Context) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

// RegisterTagType registers a tag (spec §4.3). kind must be
// ast.KindTagFree or ast.KindTagEnclosed. Last write for a given symbol
// wins.
func (c *Context) RegisterTagType(symbol string, kind ast.Kind, minArgs, maxArgs int, render ast.RenderFunc) *ast.NodeType {
	nt := &ast.NodeType{
		Kind:         kind,
		Symbol:       symbol,
		MinArguments: minArgs,
		MaxArguments: maxArgs,
		Render:       render,
	}
	if kind == ast.KindTagEnclosed {
		nt.Intermediates = make(map[string]*ast.NodeType)
	}
	c.mu.Lock()
	c.tags[symbol] = nt
	c.mu.Unlock()
	return nt
}

// RegisterIntermediate attaches an intermediate clause keyword (e.g. "else",
// "elsif") to an enclosing tag previously registered with RegisterTagType.
// minArgs/maxArgs bound the clause's own argument list the same way a tag's
// do (e.g. "elsif" takes exactly one condition, "else" takes none).
func (c *Context) RegisterIntermediate(tagSymbol, clauseSymbol string, minArgs, maxArgs int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tag, ok := c.tags[tagSymbol]
	if !ok || tag.Intermediates == nil {
		return
	}
	tag.Intermediates[clauseSymbol] = &ast.NodeType{
		Kind: ast.KindTagFree, Symbol: clauseSymbol, MinArguments: minArgs, MaxArguments: maxArgs,
	}
}

// RegisterOperator registers an operator symbol with its arity, fixness and
// priority (spec §4.3). Equal-priority operators reduce left-associatively
// (spec §4.2).
func (c *Context) RegisterOperator(symbol string, arity ast.OperatorArity, fixness ast.OperatorFixness, priority int, render ast.RenderFunc) *ast.NodeType {
	nt := &ast.NodeType{
		Kind:     ast.KindOperator,
		Symbol:   symbol,
		Arity:    arity,
		Fixness:  fixness,
		Priority: priority,
		Render:   render,
	}
	c.mu.Lock()
	c.operators[symbol] = nt
	c.mu.Unlock()
	return nt
}

// RegisterFilter registers a pipe filter (`expr | name: args`).
func (c *Context) RegisterFilter(symbol string, minArgs, maxArgs int, render ast.RenderFunc) *ast.NodeType {
	nt := &ast.NodeType{
		Kind:         ast.KindFilter,
		Symbol:       symbol,
		MinArguments: minArgs,
		MaxArguments: maxArgs,
		Render:       render,
	}
	c.mu.Lock()
	c.filters[symbol] = nt
	c.mu.Unlock()
	return nt
}

// RegisterDotFilter registers a property-style filter (`expr.name`), always
// nullary.
func (c *Context) RegisterDotFilter(symbol string, render ast.RenderFunc) *ast.NodeType {
	nt := &ast.NodeType{
		Kind:         ast.KindDotFilter,
		Symbol:       symbol,
		MinArguments: 0,
		MaxArguments: 0,
		Render:       render,
	}
	c.mu.Lock()
	c.dotFilters[symbol] = nt
	c.mu.Unlock()
	return nt
}

func (c *Context) LookupTag(symbol string) (*ast.NodeType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nt, ok := c.tags[symbol]
	return nt, ok
}

func (c *Context) LookupOperator(symbol string) (*ast.NodeType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nt, ok := c.operators[symbol]
	return nt, ok
}

func (c *Context) LookupFilter(symbol string) (*ast.NodeType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nt, ok := c.filters[symbol]
	return nt, ok
}

func (c *Context) LookupDotFilter(symbol string) (*ast.NodeType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nt, ok := c.dotFilters[symbol]
	return nt, ok
}

// OperatorSymbols returns every registered operator symbol, consulted by
// the lexer for longest-match tokenization (spec §4.1, §4.3: "Operator
// symbols are also communicated to the lexer").
func (c *Context) OperatorSymbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.operators))
	for sym := range c.operators {
		out = append(out, sym)
	}
	return out
}
