package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/forge/pkg/cli"
	"mercator-hq/forge/pkg/document"
)

type parseFlags struct {
	format string
}

func newParseCmd(root *rootOptions) *cobra.Command {
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse DOCUMENT",
		Short: "Parse a document",
		Long: `Parse a YAML document with the engine's current features applied and
print the resulting tree.

Examples:
  # Normalize whitespace in every scalar
  forge parse --set stripWhitespace=all input.yaml

  # Reject deeply nested input
  forge parse --set maxNestingDepth=8 input.yaml

  # JSON output
  forge parse input.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, root, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "yaml", "output format: yaml, json")

	return cmd
}

func runParse(cmd *cobra.Command, root *rootOptions, flags *parseFlags, input string) error {
	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	defer a.close()

	doc, err := a.proc.Parse(inputFor(cmd, input), document.Options{})
	if err != nil {
		return cli.NewCommandError("parse", err)
	}

	return writeDocument(cmd.OutOrStdout(), doc, format)
}

// writeDocument prints doc as YAML, or as JSON when requested.
func writeDocument(w io.Writer, doc *document.Document, format cli.OutputFormat) error {
	if format == cli.FormatJSON {
		var v any
		if err := doc.Root().Decode(&v); err != nil {
			return fmt.Errorf("failed to convert %s: %w", doc.SystemID(), err)
		}
		return cli.NewFormatter(cli.FormatJSON).FormatTo(w, v)
	}

	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", doc.SystemID(), err)
	}
	_, err = w.Write(data)
	return err
}
