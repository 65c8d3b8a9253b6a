package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	verbose    bool
	metrics    bool
	features   []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "forge",
		Short: "Mercator Forge - YAML transformation engine",
		Long: `Mercator Forge compiles YAML transformation programs and applies them to
YAML documents. Programs and documents are produced by one shared engine and
can only be combined with artifacts from that same engine.

Engine features (line numbering, whitespace handling, nesting limits, strict
paths, timing and recovery policy) come from the configuration file, FORGE_*
environment variables and --set flags, in that order.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (defaults and FORGE_* environment when empty)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&opts.metrics, "metrics", false, "print Prometheus metrics to stderr on exit")
	cmd.PersistentFlags().StringArrayVar(&opts.features, "set", nil, "set an engine feature (name=value, repeatable)")

	cmd.AddCommand(
		newCompileCmd(opts),
		newParseCmd(opts),
		newTransformCmd(opts),
		newFeaturesCmd(opts),
		newVersionCmd(),
	)
	cmd.AddCommand(newCompletionCmd(cmd))

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
