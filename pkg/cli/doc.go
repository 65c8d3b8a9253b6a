/*
Package cli provides command-line interface utilities for Mercator Forge.

Output Formatting:

Commands print results as text, JSON or YAML:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

Batch commands stop scheduling new work on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

Errors:

ConfigError and CommandError give command failures a consistent shape.
*/
package cli
