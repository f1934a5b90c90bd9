// Package liquid re-exports the constructors a caller needs to parse and
// render a template without importing every sub-package individually,
// mirroring the teacher's gojinja.go facade
// (_examples/deicod-gojinja/gojinja.go).
package liquid

import (
	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/dialect"
	"github.com/natanfelles/liquidgo/liquidctx"
	"github.com/natanfelles/liquidgo/liquiderr"
	"github.com/natanfelles/liquidgo/optimize"
	"github.com/natanfelles/liquidgo/parser"
	"github.com/natanfelles/liquidgo/render"
	"github.com/natanfelles/liquidgo/resolver"
)

// Context is the registry of tag/operator/filter types a parse and render
// share. See liquidctx.Context.
type Context = liquidctx.Context

// Settings configures a Context. See liquidctx.Settings.
type Settings = liquidctx.Settings

const (
	SettingDefault                  = liquidctx.SettingDefault
	SettingExtendedAssignmentSyntax = liquidctx.SettingExtendedAssignmentSyntax
	SettingExtendedExpressionSyntax = liquidctx.SettingExtendedExpressionSyntax
)

// Node is a parsed template's AST. See ast.Node.
type Node = ast.Node

// Store is the variable-resolution contract a render walks. See
// resolver.Store.
type Store = resolver.Store

// Renderer walks one AST against one Store for one render call. See
// render.Renderer.
type Renderer = render.Renderer

// Budget bounds a render's depth, memory and time. See render.Budget.
type Budget = render.Budget

// Sink streams output chunks as they're produced. See render.Sink.
type Sink = render.Sink

// Error is the engine's single error type across lexing, parsing and
// rendering. See liquiderr.Error.
type Error = liquiderr.Error

// NewContext builds a Context with the standard dialect
// (if/unless/case/for/assign/capture/increment/decrement/cycle/raw/comment,
// the operator table, and the standard filter set) already registered.
func NewContext(settings Settings) *Context {
	ctx := liquidctx.New(settings)
	dialect.RegisterStandard(ctx)
	return ctx
}

// Parse lexes and parses source against ctx, returning the root node or the
// errors encountered.
func Parse(ctx *Context, source string) (*Node, []error) {
	return parser.Parse(ctx, source)
}

// Optimize runs the constant-folding/variable-resolution pre-pass over root
// against store, returning a possibly-rewritten tree.
func Optimize(root *Node, store Store, maxDepth int) *Node {
	return optimize.New(store, maxDepth).Optimize(root)
}

// NewRenderer builds a Renderer for a single Render call.
func NewRenderer(budget Budget, sink Sink, userData any) *Renderer {
	return render.New(budget, sink, userData)
}

// Wrap adapts a native Go value (map[string]any, []any, or a scalar) into a
// Store, the default resolver a host needs to start rendering.
func Wrap(value any) *resolver.NativeStore {
	return resolver.Wrap(value)
}

// Render is the common case: parse source against a fresh standard-dialect
// Context, optimize against data, and render to a string in one call.
func Render(source string, data any) (string, error) {
	ctx := NewContext(SettingDefault)
	root, errs := Parse(ctx, source)
	if len(errs) > 0 {
		return "", errs[0]
	}
	store := Wrap(data)
	root = Optimize(root, store, ctx.MaximumParseDepth)
	r := NewRenderer(Budget{}, nil, nil)
	return r.Render(root, store)
}
