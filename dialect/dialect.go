// Package dialect implements the standard Liquid-style tag, operator,
// and filter set (SPEC_FULL.md §12, §13) on top of the liquidctx.Context
// registry, the way the teacher's runtime package wires its built-in
// statement/filter tables into a fresh environment
// (github.com/deicod/gojinja/runtime: NewEnvironment registering its
// default globals/filters).
package dialect

import "github.com/natanfelles/liquidgo/liquidctx"

// RegisterStandard installs the full standard dialect -- control-flow and
// state tags, comparison/logical/arithmetic operators, and the pipe-filter
// catalog -- into ctx. A host assembling a custom dialect can call the
// register* functions individually instead and skip what it doesn't want.
func RegisterStandard(ctx *liquidctx.Context) {
	registerOperators(ctx)
	registerTags(ctx)
	registerFilters(ctx)
}
