package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/natanfelles/liquidgo/dialect"
	"github.com/natanfelles/liquidgo/liquidctx"
	"github.com/natanfelles/liquidgo/parser"
)

// newCheckCommand parses a template and reports syntax errors without
// rendering it, for pre-commit or CI use.
func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <template>",
		Short: "Parse a template and report syntax errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flagConfig)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}

			ctx := liquidctx.New(cfg.settings())
			if cfg.MaximumParseDepth > 0 {
				ctx.MaximumParseDepth = cfg.MaximumParseDepth
			}
			dialect.RegisterStandard(ctx)

			_, errs := parser.Parse(ctx, string(source))
			if len(errs) == 0 {
				fmt.Fprintln(os.Stdout, "ok")
				return nil
			}
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
			}
			return fmt.Errorf("%d syntax error(s)", len(errs))
		},
	}
	return cmd
}
