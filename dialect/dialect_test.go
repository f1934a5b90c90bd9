package dialect

import (
	"testing"

	"github.com/natanfelles/liquidgo/liquidctx"
	"github.com/natanfelles/liquidgo/parser"
	"github.com/natanfelles/liquidgo/render"
	"github.com/natanfelles/liquidgo/resolver"
)

// renderSource is the shared end-to-end harness every test in this package
// uses: parse source against a fresh standard-dialect Context, render it
// against data, and fail loudly on any parse or render error. Mirrors the
// teacher's runtime_test.go pattern of driving the whole pipeline from
// source text rather than hand-building AST nodes.
func renderSource(t *testing.T, source string, data map[string]any) string {
	t.Helper()
	ctx := liquidctx.New(liquidctx.SettingDefault)
	RegisterStandard(ctx)
	root, errs := parser.Parse(ctx, source)
	if len(errs) > 0 {
		t.Fatalf("parse error: %v", errs)
	}
	r := render.New(render.Budget{}, nil, nil)
	out, err := r.Render(root, resolver.Wrap(data))
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	return out
}

func TestIfElsifElse(t *testing.T) {
	tests := []struct {
		name   string
		source string
		data   map[string]any
		want   string
	}{
		{"primary matches", `{% if a %}yes{% else %}no{% endif %}`, map[string]any{"a": true}, "yes"},
		{"falls to elsif", `{% if a %}A{% elsif b %}B{% else %}C{% endif %}`, map[string]any{"a": false, "b": true}, "B"},
		{"falls to else", `{% if a %}A{% elsif b %}B{% else %}C{% endif %}`, map[string]any{"a": false, "b": false}, "C"},
		{"no else, no match", `{% if a %}A{% endif %}`, map[string]any{"a": false}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := renderSource(t, tc.source, tc.data); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnlessInvertsPrimary(t *testing.T) {
	got := renderSource(t, `{% unless a %}shown{% else %}hidden{% endunless %}`, map[string]any{"a": false})
	if got != "shown" {
		t.Errorf("got %q, want %q", got, "shown")
	}
	got = renderSource(t, `{% unless a %}shown{% else %}hidden{% endunless %}`, map[string]any{"a": true})
	if got != "hidden" {
		t.Errorf("got %q, want %q", got, "hidden")
	}
}

func TestCaseWhenElse(t *testing.T) {
	source := `{% case x %}{% when 1 %}one{% when 2 %}two{% else %}other{% endcase %}`
	if got := renderSource(t, source, map[string]any{"x": 2}); got != "two" {
		t.Errorf("got %q, want %q", got, "two")
	}
	if got := renderSource(t, source, map[string]any{"x": 9}); got != "other" {
		t.Errorf("got %q, want %q", got, "other")
	}
}

func TestForBasic(t *testing.T) {
	source := `{% for item, items %}[{{ item }}]{% endfor %}`
	data := map[string]any{"items": []any{"a", "b", "c"}}
	if got := renderSource(t, source, data); got != "[a][b][c]" {
		t.Errorf("got %q", got)
	}
}

func TestForLimitOffsetReversed(t *testing.T) {
	data := map[string]any{"items": []any{1, 2, 3, 4, 5}}
	if got := renderSource(t, `{% for n, items, 2 %}{{ n }}{% endfor %}`, data); got != "12" {
		t.Errorf("limit: got %q", got)
	}
	if got := renderSource(t, `{% for n, items, -1, 2 %}{{ n }}{% endfor %}`, data); got != "345" {
		t.Errorf("offset: got %q", got)
	}
	if got := renderSource(t, `{% for n, items, -1, 0, true %}{{ n }}{% endfor %}`, data); got != "54321" {
		t.Errorf("reversed: got %q", got)
	}
}

func TestForBreakAndContinue(t *testing.T) {
	data := map[string]any{"items": []any{1, 2, 3, 4, 5}}
	source := `{% for n, items %}{% if n == 3 %}{% break %}{% endif %}{{ n }}{% endfor %}`
	if got := renderSource(t, source, data); got != "12" {
		t.Errorf("break: got %q", got)
	}
	source = `{% for n, items %}{% if n == 3 %}{% continue %}{% endif %}{{ n }}{% endfor %}`
	if got := renderSource(t, source, data); got != "1245" {
		t.Errorf("continue: got %q", got)
	}
}

func TestAssignAndOutput(t *testing.T) {
	got := renderSource(t, `{% assign name, "world" %}hello {{ name }}`, nil)
	if got != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestAssignInsideForIsGlobal(t *testing.T) {
	source := `{% for n, items %}{% assign last, n %}{% endfor %}last={{ last }}`
	data := map[string]any{"items": []any{1, 2, 3}}
	if got := renderSource(t, source, data); got != "last=3" {
		t.Errorf("got %q, want %q", got, "last=3")
	}
}

func TestCapture(t *testing.T) {
	got := renderSource(t, `{% capture greeting %}hello {{ who }}{% endcapture %}{{ greeting }}!`, map[string]any{"who": "there"})
	if got != "hello there!" {
		t.Errorf("got %q", got)
	}
}

func TestIncrementDecrement(t *testing.T) {
	got := renderSource(t, `{% increment count %}{% increment count %}{% decrement count %}`, nil)
	if got != "011" {
		t.Errorf("got %q, want %q", got, "011")
	}
}

func TestCycleRotatesAndWraps(t *testing.T) {
	source := `{% for n, items %}{% cycle "a", "b", "c" %}{% endfor %}`
	data := map[string]any{"items": []any{1, 2, 3, 4}}
	if got := renderSource(t, source, data); got != "abca" {
		t.Errorf("got %q, want %q", got, "abca")
	}
}

func TestRawPassesThroughUnparsed(t *testing.T) {
	got := renderSource(t, `{% raw %}{{ not a var }} {% if %}{% endraw %}`, nil)
	if got != "{{ not a var }} {% if %}" {
		t.Errorf("got %q", got)
	}
}

func TestCommentDiscardsBody(t *testing.T) {
	got := renderSource(t, `before{% comment %}anything at all{% endcomment %}after`, nil)
	if got != "beforeafter" {
		t.Errorf("got %q", got)
	}
}
