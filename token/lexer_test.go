package token

import "testing"

func lexAll(t *testing.T, src string, ops []string) []Token {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Operators = ops
	toks, err := New(cfg).Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) error: %v", src, err)
	}
	return toks
}

func TestLexLiteralAndOutput(t *testing.T) {
	toks := lexAll(t, "Hello, {{ name }}!", nil)
	want := []Type{Literal, StartOutputBlock, Identifier, EndOutputBlock, Literal}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
	if toks[2].Value != "name" {
		t.Errorf("identifier value = %q", toks[2].Value)
	}
}

func TestLexControlBlock(t *testing.T) {
	toks := lexAll(t, "{% if x > 1 %}big{% endif %}", []string{">"})
	var types []Type
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	want := []Type{
		StartControlBlock, Identifier, Identifier, Operator, Integer, EndControlBlock,
		Literal,
		StartControlBlock, Identifier, EndControlBlock,
	}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, types[i], want[i])
		}
	}
}

func TestWhitespaceControl(t *testing.T) {
	toks := lexAll(t, "a  {{- x -}}  b", nil)
	if toks[0].Type != Literal || toks[0].Value != "a" {
		t.Errorf("leading literal not trimmed: %q", toks[0].Value)
	}
	last := toks[len(toks)-1]
	if last.Type != Literal || last.Value != "b" {
		t.Errorf("trailing literal not trimmed: %q", last.Value)
	}
}

func TestUnterminatedStringError(t *testing.T) {
	_, err := New(DefaultConfig()).Lex(`{{ "abc }}`)
	if err == nil {
		t.Fatal("expected unexpected-end error")
	}
}

func TestUnterminatedBlockError(t *testing.T) {
	_, err := New(DefaultConfig()).Lex(`{{ x`)
	if err == nil {
		t.Fatal("expected unexpected-end error")
	}
}

func TestLongestMatchOperator(t *testing.T) {
	toks := lexAll(t, "{{ a <= b }}", []string{"<", "<="})
	foundOp := false
	for _, tok := range toks {
		if tok.Type == Operator {
			foundOp = true
			if tok.Value != "<=" {
				t.Errorf("expected longest-match '<=', got %q", tok.Value)
			}
		}
	}
	if !foundOp {
		t.Fatal("no operator token found")
	}
}

func TestStringEscapes(t *testing.T) {
	toks := lexAll(t, `{{ "a\nb" }}`, nil)
	if toks[1].Type != String || toks[1].Value != "a\nb" {
		t.Errorf("string escape mismatch: %+v", toks[1])
	}
}

func TestNumbers(t *testing.T) {
	toks := lexAll(t, "{{ 1 2.5 }}", nil)
	if toks[1].Type != Integer || toks[1].Value != "1" {
		t.Errorf("integer mismatch: %+v", toks[1])
	}
	if toks[2].Type != Float || toks[2].Value != "2.5" {
		t.Errorf("float mismatch: %+v", toks[2])
	}
}
