package liquidctx

import (
	"testing"

	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/variant"
)

func TestRegisterAndLookupOperator(t *testing.T) {
	ctx := New(SettingDefault)
	ctx.RegisterOperator("+", ast.ArityBinary, ast.FixInfix, 10, func(call *ast.RenderCall) (variant.Variant, error) {
		return variant.NewNil(), nil
	})
	nt, ok := ctx.LookupOperator("+")
	if !ok {
		t.Fatal("expected + to be registered")
	}
	if nt.Arity != ast.ArityBinary || nt.Priority != 10 {
		t.Errorf("unexpected operator metadata: %+v", nt)
	}
}

func TestLastWriteWins(t *testing.T) {
	ctx := New(SettingDefault)
	ctx.RegisterFilter("size", 0, 0, nil)
	ctx.RegisterFilter("size", 1, 2, nil)
	nt, _ := ctx.LookupFilter("size")
	if nt.MinArguments != 1 || nt.MaxArguments != 2 {
		t.Errorf("last registration should win, got %+v", nt)
	}
}

func TestRegisterIntermediate(t *testing.T) {
	ctx := New(SettingDefault)
	ctx.RegisterTagType("if", ast.KindTagEnclosed, 1, 1, nil)
	ctx.RegisterIntermediate("if", "else", 0, 0)
	tag, _ := ctx.LookupTag("if")
	if _, ok := tag.Intermediates["else"]; !ok {
		t.Error("expected else intermediate to be attached")
	}
}

func TestOperatorSymbolsForLexer(t *testing.T) {
	ctx := New(SettingDefault)
	ctx.RegisterOperator("==", ast.ArityBinary, ast.FixInfix, 5, nil)
	ctx.RegisterOperator("!=", ast.ArityBinary, ast.FixInfix, 5, nil)
	syms := ctx.OperatorSymbols()
	if len(syms) != 2 {
		t.Fatalf("expected 2 operator symbols, got %v", syms)
	}
}

func TestSettingsBitset(t *testing.T) {
	s := SettingExtendedExpressionSyntax
	if !s.Has(SettingExtendedExpressionSyntax) {
		t.Error("Has should detect its own bit")
	}
	if s.Has(SettingExtendedAssignmentSyntax) {
		t.Error("Has should not detect an unset bit")
	}
}
