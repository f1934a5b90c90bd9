package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/natanfelles/liquidgo/liquidctx"
	"github.com/natanfelles/liquidgo/render"
)

// config is the shape of an optional liquidgo.yaml (SPEC_FULL.md §11's
// "cmd/liquidgo additionally loads a liquidgo.yaml config" note): parse
// depth and render budgets, plus which non-default dialect syntax settings
// to turn on.
type config struct {
	MaximumParseDepth int `yaml:"maximum_parse_depth"`
	Render            struct {
		MaxDepth    int `yaml:"max_depth"`
		MaxMemory   int64 `yaml:"max_memory"`
		MaxTimeMS   int64 `yaml:"max_time_ms"`
	} `yaml:"render"`
	ExtendedAssignmentSyntax bool `yaml:"extended_assignment_syntax"`
	ExtendedExpressionSyntax bool `yaml:"extended_expression_syntax"`
}

// loadConfig reads path if non-empty, else returns the zero-value config
// (every field defaults to "use the engine's own default").
func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c config) settings() liquidctx.Settings {
	var s liquidctx.Settings
	if c.ExtendedAssignmentSyntax {
		s |= liquidctx.SettingExtendedAssignmentSyntax
	}
	if c.ExtendedExpressionSyntax {
		s |= liquidctx.SettingExtendedExpressionSyntax
	}
	return s
}

func (c config) budget() render.Budget {
	return render.Budget{
		MaxDepth:  c.Render.MaxDepth,
		MaxMemory: c.Render.MaxMemory,
		MaxTime:   time.Duration(c.Render.MaxTimeMS) * time.Millisecond,
	}
}

// loadData reads a YAML or JSON data file into the map the default
// resolver.Wrap expects. JSON is a subset of YAML so one decoder covers
// both (matching gopkg.in/yaml.v3's documented behavior).
func loadData(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
