package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/forge/pkg/cli"
	"mercator-hq/forge/pkg/transform"
)

type compileFlags struct {
	params []string
	format string
}

// programSummary is the printable view of a compiled program.
type programSummary struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	SystemID    string            `json:"system_id" yaml:"system_id"`
	Params      map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Rules       []ruleSummary     `json:"rules" yaml:"rules"`
}

type ruleSummary struct {
	Op   string `json:"op" yaml:"op"`
	Path string `json:"path" yaml:"path"`
	To   string `json:"to,omitempty" yaml:"to,omitempty"`
	Line int    `json:"line" yaml:"line"`
}

func summarize(prog *transform.Program) programSummary {
	s := programSummary{
		Name:        prog.Name(),
		Description: prog.Description(),
		SystemID:    prog.SystemID(),
		Params:      prog.Params(),
	}
	for _, r := range prog.Rules() {
		s.Rules = append(s.Rules, ruleSummary{Op: string(r.Op), Path: r.Path, To: r.To, Line: r.Line})
	}
	return s
}

// String renders the summary for text output.
func (s programSummary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "program %s (%s)\n", s.Name, s.SystemID)
	if s.Description != "" {
		fmt.Fprintf(&sb, "  %s\n", s.Description)
	}
	for i, r := range s.Rules {
		if r.To != "" {
			fmt.Fprintf(&sb, "  %d. %s %s -> %s (line %d)\n", i+1, r.Op, r.Path, r.To, r.Line)
		} else {
			fmt.Fprintf(&sb, "  %d. %s %s (line %d)\n", i+1, r.Op, r.Path, r.Line)
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func newCompileCmd(root *rootOptions) *cobra.Command {
	flags := &compileFlags{}

	cmd := &cobra.Command{
		Use:   "compile PROGRAM",
		Short: "Compile a transformation program",
		Long: `Compile a YAML transformation program and print its rules.

All structural problems are reported together. Use "-" to read the program
from stdin.

Examples:
  # Show compiled rules
  forge compile program.yaml

  # Override a declared parameter
  forge compile program.yaml --param owner=platform

  # JSON output for CI/CD
  forge compile program.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, root, flags, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&flags.params, "param", nil, "override a program parameter (name=value, repeatable)")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, yaml")

	return cmd
}

func runCompile(cmd *cobra.Command, root *rootOptions, flags *compileFlags, input string) error {
	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	params, err := parseAssignments(flags.params)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	defer a.close()

	prog, err := a.proc.Compile(inputFor(cmd, input), transform.Options{Params: params})
	if err != nil {
		return cli.NewCommandError("compile", err)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), summarize(prog))
}
