package dialect

import "testing"

func TestStringFilters(t *testing.T) {
	tests := []struct {
		name   string
		source string
		data   map[string]any
		want   string
	}{
		{"upcase", `{{ s | upcase }}`, map[string]any{"s": "hello"}, "HELLO"},
		{"downcase", `{{ s | downcase }}`, map[string]any{"s": "HELLO"}, "hello"},
		{"capitalize", `{{ s | capitalize }}`, map[string]any{"s": "hello world"}, "Hello world"},
		{"strip", `[{{ s | strip }}]`, map[string]any{"s": "  hi  "}, "[hi]"},
		{"lstrip", `[{{ s | lstrip }}]`, map[string]any{"s": "  hi  "}, "[hi  ]"},
		{"rstrip", `[{{ s | rstrip }}]`, map[string]any{"s": "  hi  "}, "[  hi]"},
		{"append", `{{ s | append: "!" }}`, map[string]any{"s": "hi"}, "hi!"},
		{"prepend", `{{ s | prepend: ">" }}`, map[string]any{"s": "hi"}, ">hi"},
		{"replace", `{{ s | replace: "a", "o" }}`, map[string]any{"s": "banana"}, "bonono"},
		{"remove", `{{ s | remove: "a" }}`, map[string]any{"s": "banana"}, "bnn"},
		{"truncate", `{{ s | truncate: 5 }}`, map[string]any{"s": "hello world"}, "he..."},
		{"escape", `{{ s | escape }}`, map[string]any{"s": `<a href="x">&'`}, "&lt;a href=&quot;x&quot;&gt;&amp;&#39;"},
		{"size string", `{{ s | size }}`, map[string]any{"s": "hello"}, "5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := renderSource(t, tc.source, tc.data); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestArrayFilters(t *testing.T) {
	data := map[string]any{"items": []any{3, 1, 2, 2}}

	if got := renderSource(t, `{{ items | size }}`, data); got != "4" {
		t.Errorf("size: got %q", got)
	}
	if got := renderSource(t, `{{ items | first }}`, data); got != "3" {
		t.Errorf("first: got %q", got)
	}
	if got := renderSource(t, `{{ items | last }}`, data); got != "2" {
		t.Errorf("last: got %q", got)
	}
	if got := renderSource(t, `{{ items | join: "-" }}`, data); got != "3-1-2-2" {
		t.Errorf("join: got %q", got)
	}
	if got := renderSource(t, `{{ items | sort | join: "," }}`, data); got != "1,2,2,3" {
		t.Errorf("sort: got %q", got)
	}
	if got := renderSource(t, `{{ items | reverse | join: "," }}`, data); got != "2,2,1,3" {
		t.Errorf("reverse: got %q", got)
	}
	if got := renderSource(t, `{{ items | uniq | join: "," }}`, data); got != "3,1,2" {
		t.Errorf("uniq: got %q", got)
	}
}

func TestMapAndWhereFilters(t *testing.T) {
	data := map[string]any{
		"people": []any{
			map[string]any{"name": "a", "active": true},
			map[string]any{"name": "b", "active": false},
			map[string]any{"name": "c", "active": true},
		},
	}
	if got := renderSource(t, `{{ people | map: "name" | join: "," }}`, data); got != "a,b,c" {
		t.Errorf("map: got %q", got)
	}
	if got := renderSource(t, `{{ people | where: "active" | map: "name" | join: "," }}`, data); got != "a,c" {
		t.Errorf("where: got %q", got)
	}
}

func TestSplitFilter(t *testing.T) {
	got := renderSource(t, `{{ s | split: "," | join: "|" }}`, map[string]any{"s": "a,b,c"})
	if got != "a|b|c" {
		t.Errorf("got %q", got)
	}
}

func TestDefaultFilter(t *testing.T) {
	if got := renderSource(t, `{{ x | default: "fallback" }}`, map[string]any{}); got != "fallback" {
		t.Errorf("missing: got %q", got)
	}
	if got := renderSource(t, `{{ x | default: "fallback" }}`, map[string]any{"x": "set"}); got != "set" {
		t.Errorf("present: got %q", got)
	}
}

func TestArithmeticFilters(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`{{ n | plus: 5 }}`, "15"},
		{`{{ n | minus: 5 }}`, "5"},
		{`{{ n | times: 5 }}`, "50"},
		{`{{ n | divided_by: 5 }}`, "2"},
		{`{{ n | modulo: 3 }}`, "1"},
	}
	for _, tc := range tests {
		if got := renderSource(t, tc.source, map[string]any{"n": 10}); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.source, got, tc.want)
		}
	}
}

func TestRoundAndAbs(t *testing.T) {
	if got := renderSource(t, `{{ n | round }}`, map[string]any{"n": 2.6}); got != "3" {
		t.Errorf("round: got %q", got)
	}
	if got := renderSource(t, `{{ n | abs }}`, map[string]any{"n": -4}); got != "4" {
		t.Errorf("abs: got %q", got)
	}
}

func TestMarkdownify(t *testing.T) {
	got := renderSource(t, `{{ s | markdownify }}`, map[string]any{"s": "**bold**"})
	want := "<p><strong>bold</strong></p>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDotFilters(t *testing.T) {
	data := map[string]any{"items": []any{1, 2, 3}}
	if got := renderSource(t, `{{ items.size }}`, data); got != "3" {
		t.Errorf("size: got %q", got)
	}
	if got := renderSource(t, `{{ items.first }}`, data); got != "1" {
		t.Errorf("first: got %q", got)
	}
	if got := renderSource(t, `{{ items.last }}`, data); got != "3" {
		t.Errorf("last: got %q", got)
	}
}
