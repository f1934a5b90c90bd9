package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/dialect"
	"github.com/natanfelles/liquidgo/liquidctx"
	"github.com/natanfelles/liquidgo/loader"
	"github.com/natanfelles/liquidgo/render"
	"github.com/natanfelles/liquidgo/resolver"
)

// renderNode runs one render of node against data and writes the result to
// stdout, under cfg's budget.
func renderNode(cfg config, node *ast.Node, data map[string]any) error {
	r := render.New(cfg.budget(), nil, nil)
	out, err := r.Render(node, resolver.Wrap(data))
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, out)
	return nil
}

// newRenderCommand renders a template file against a YAML/JSON data file,
// optionally staying alive and re-rendering on every filesystem change
// (SPEC_FULL.md §10's "a --watch mode").
func newRenderCommand() *cobra.Command {
	var (
		dataPath string
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template against a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flagConfig)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			dir := filepath.Dir(args[0])
			name := filepath.Base(args[0])

			ctx := liquidctx.New(cfg.settings())
			if cfg.MaximumParseDepth > 0 {
				ctx.MaximumParseDepth = cfg.MaximumParseDepth
			}
			dialect.RegisterStandard(ctx)

			fsLoader := loader.NewFileSystemLoader(dir)
			cache := loader.NewCache()

			data, err := loadData(dataPath)
			if err != nil {
				return fmt.Errorf("load data: %w", err)
			}

			if !watch {
				node, err := cache.Get(ctx, fsLoader, name)
				if err != nil {
					return err
				}
				return renderNode(cfg, node, data)
			}

			w, err := loader.NewWatch(fsLoader, cache)
			if err != nil {
				return fmt.Errorf("start watch: %w", err)
			}
			defer w.Close()

			renderOnce := func() error {
				node, err := w.Get(ctx, name)
				if err != nil {
					return err
				}
				return renderNode(cfg, node, data)
			}

			logger := log.New(os.Stderr, "liquidgo: ", log.LstdFlags)
			if err := renderOnce(); err != nil {
				logger.Println("render error:", err)
			}
			for {
				select {
				case changed := <-w.Changed:
					logger.Println("reloaded", changed)
					if err := renderOnce(); err != nil {
						logger.Println("render error:", err)
					}
				case err := <-w.Errors:
					logger.Println("watch error:", err)
				}
			}
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Path to a YAML/JSON data file")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render whenever the template changes")

	return cmd
}
