package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mercator-hq/forge/pkg/cli"
	"mercator-hq/forge/pkg/engine"
)

type featuresFlags struct {
	format string
}

// featureView is one row of the features listing.
type featureView struct {
	Name        string   `json:"name" yaml:"name"`
	Key         string   `json:"key" yaml:"key"`
	Kind        string   `json:"kind" yaml:"kind"`
	Value       any      `json:"value" yaml:"value"`
	Default     any      `json:"default" yaml:"default"`
	Allowed     []string `json:"allowed,omitempty" yaml:"allowed,omitempty"`
	Description string   `json:"description" yaml:"description"`
}

type featureTable []featureView

// String renders the table for text output.
func (t featureTable) String() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tVALUE\tDEFAULT\tDESCRIPTION")
	for _, f := range t {
		fmt.Fprintf(tw, "%s\t%s\t%v\t%v\t%s\n", f.Name, f.Kind, f.Value, f.Default, f.Description)
	}
	tw.Flush()
	return strings.TrimSuffix(sb.String(), "\n")
}

func newFeaturesCmd(root *rootOptions) *cobra.Command {
	flags := &featuresFlags{}

	cmd := &cobra.Command{
		Use:   "features",
		Short: "List engine features",
		Long: `List every engine feature with its kind, current value and default.

Current values reflect the configuration file, FORGE_FEATURE_* environment
variables and --set flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeatures(cmd, root, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, yaml")

	return cmd
}

func runFeatures(cmd *cobra.Command, root *rootOptions, flags *featuresFlags) error {
	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	defer a.close()

	var table featureTable
	for _, f := range engine.Features() {
		name := strings.TrimPrefix(f.Key, engine.FeatureNamespace)
		v, err := a.proc.GetConfig(name)
		if err != nil {
			return cli.NewCommandError("features", err)
		}
		table = append(table, featureView{
			Name:        name,
			Key:         f.Key,
			Kind:        f.Kind.String(),
			Value:       v.Interface(),
			Default:     f.Default.Interface(),
			Allowed:     f.Allowed,
			Description: f.Description,
		})
	}

	if format == cli.FormatText {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), []featureView(table))
}
