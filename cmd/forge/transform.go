package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/forge/pkg/cli"
	"mercator-hq/forge/pkg/document"
	"mercator-hq/forge/pkg/transform"
	"mercator-hq/forge/pkg/watch"
)

type transformFlags struct {
	program string
	params  []string
	format  string
	jobs    int
	watch   bool
}

func newTransformCmd(root *rootOptions) *cobra.Command {
	flags := &transformFlags{}

	cmd := &cobra.Command{
		Use:   "transform --program PROGRAM DOCUMENT...",
		Short: "Apply a program to documents",
		Long: `Compile a transformation program once and apply it to every document.

Documents are parsed and transformed concurrently on the same engine. Results
are printed in argument order, separated by "---". The first failure stops
the run.

With --watch the program and documents are watched after the first run and
every change recompiles the program and transforms the documents again. A
failed rerun is logged and watching continues until interrupted.

Examples:
  # Transform one document
  forge transform -p program.yaml input.yaml

  # Fail on rules whose path is missing
  forge transform -p program.yaml --set strictPaths=true a.yaml b.yaml

  # Read the document from stdin
  cat input.yaml | forge transform -p program.yaml -

  # Rerun whenever the program or a document changes
  forge transform -p program.yaml --watch a.yaml b.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, root, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.program, "program", "p", "", "transformation program file (required)")
	cmd.Flags().StringArrayVar(&flags.params, "param", nil, "override a program parameter (name=value, repeatable)")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "output format: yaml, json")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "documents processed concurrently")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rerun when the program or a document changes")
	_ = cmd.MarkFlagRequired("program")

	return cmd
}

func runTransform(cmd *cobra.Command, root *rootOptions, flags *transformFlags, inputs []string) error {
	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	params, err := parseAssignments(flags.params)
	if err != nil {
		return err
	}
	if flags.jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", flags.jobs)
	}
	files := append([]string{flags.program}, inputs...)
	if err := checkStdin(files); err != nil {
		return err
	}
	if flags.watch && stdinCount(files) > 0 {
		return errors.New("--watch cannot read from stdin (-)")
	}

	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	run := func(ctx context.Context) error {
		prog, err := a.proc.Compile(inputFor(cmd, flags.program), transform.Options{Params: params})
		if err != nil {
			return cli.NewCommandError("transform", err)
		}
		return transformAll(ctx, cmd, a, prog, inputs, flags.jobs, format)
	}

	if !flags.watch {
		return run(ctx)
	}

	w, err := watch.New(files, watch.DefaultDebounce, a.logger)
	if err != nil {
		return cli.NewCommandError("transform", err)
	}
	defer w.Close()

	if err := run(ctx); err != nil {
		a.logger.Error("transform failed", "error", err)
	}
	return w.Run(ctx, run)
}

// transformAll parses and transforms inputs concurrently and prints the
// results in argument order.
func transformAll(ctx context.Context, cmd *cobra.Command, a *app, prog *transform.Program, inputs []string, jobs int, format cli.OutputFormat) error {
	outputs := make([]bytes.Buffer, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := a.proc.Parse(inputFor(cmd, input), document.Options{})
			if err != nil {
				return err
			}
			out, err := a.proc.Transform(prog, doc)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			return writeDocument(&outputs[i], out, format)
		})
	}
	if err := g.Wait(); err != nil {
		return cli.NewCommandError("transform", err)
	}

	w := cmd.OutOrStdout()
	for i := range outputs {
		if i > 0 {
			if _, err := fmt.Fprintln(w, "---"); err != nil {
				return err
			}
		}
		if _, err := outputs[i].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}
