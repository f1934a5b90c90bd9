// Command liquidgo is the host CLI wrapper around the liquidgo engine
// (SPEC_FULL.md §10): it is not part of the core's scope, but a concrete
// consumer is what makes the module a complete repo instead of a library
// nobody can run from a terminal.
//
// Grounded on adest-aes-scripts/go-tools/cmd/sonar-security-exporter's
// cobra shape (_examples/adest-aes-scripts/go-tools/cmd/sonar-security-exporter/main.go):
// a root command carrying persistent flags, subcommands built by factory
// functions and attached via root.AddCommand, SilenceErrors/SilenceUsage so
// RunE's own error message is the only thing printed, and os.Exit(1) on
// failure.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "liquidgo",
		Short:         "Render and check Liquid-style templates",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to liquidgo.yaml (optional)")
	root.AddCommand(newRenderCommand())
	root.AddCommand(newCheckCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "liquidgo:", err)
		os.Exit(1)
	}
}
