package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/forge/pkg/cli"
	"mercator-hq/forge/pkg/config"
	"mercator-hq/forge/pkg/processor"
	"mercator-hq/forge/pkg/source"
	"mercator-hq/forge/pkg/telemetry/logging"
	"mercator-hq/forge/pkg/telemetry/metrics"
	"mercator-hq/forge/pkg/telemetry/tracing"
)

// app is the per-invocation wiring: configuration, telemetry and the
// processor every command works through.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *metrics.Collector
	tracer     *tracing.Tracer
	proc       *processor.Processor
	metricsOut io.Writer
}

func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(opts.configFile)
	if err != nil {
		return nil, cli.NewConfigError(configName(opts.configFile), err)
	}
	if opts.verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if opts.metrics {
		cfg.Telemetry.Metrics.Enabled = true
	}

	overrides, err := parseAssignments(opts.features)
	if err != nil {
		return nil, cli.NewConfigError("--set", err)
	}
	for name, value := range overrides {
		if cfg.Processor.Features == nil {
			cfg.Processor.Features = make(map[string]any)
		}
		cfg.Processor.Features[name] = value
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr()))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err)
	}
	slog.SetDefault(logger)

	a := &app{
		cfg:        cfg,
		logger:     logger,
		metricsOut: cmd.ErrOrStderr(),
	}
	if cfg.Telemetry.Metrics.Enabled {
		a.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}
	if cfg.Telemetry.Tracing.Enabled {
		tracer, err := tracing.New(&cfg.Telemetry.Tracing)
		if err != nil {
			return nil, cli.NewConfigError("telemetry.tracing", err)
		}
		a.tracer = tracer
	}

	proc, err := a.newProcessor()
	if err != nil {
		_ = a.close()
		return nil, err
	}
	if len(cfg.Processor.Features) > 0 {
		if _, err := proc.SetConfig(cfg.Processor.Features); err != nil {
			_ = a.close()
			return nil, cli.NewConfigError("processor.features", err)
		}
	}
	a.proc = proc

	return a, nil
}

// newProcessor returns the shared default processor when nothing configures
// the engine, and a dedicated one otherwise.
func (a *app) newProcessor() (*processor.Processor, error) {
	pc := a.cfg.Processor
	if pc.ConfigFile == "" && pc.LicenseFile == "" && len(pc.Features) == 0 && a.metrics == nil && a.tracer == nil {
		return processor.Default(), nil
	}

	opts := []processor.Option{
		processor.WithLogger(a.logger),
		processor.WithMetrics(a.metrics),
	}
	if a.tracer != nil {
		opts = append(opts, processor.WithTracer(a.tracer.Tracer()))
	}
	if pc.ConfigFile != "" {
		opts = append(opts, processor.WithConfigSource(source.Path(pc.ConfigFile)))
	}
	if pc.LicenseFile != "" {
		opts = append(opts, processor.WithLicense(source.Path(pc.LicenseFile)))
	}
	return processor.New(opts...)
}

// close flushes spans and prints metrics when they were requested.
func (a *app) close() error {
	var errs []error
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Telemetry.Tracing.Timeout)
		errs = append(errs, a.tracer.Shutdown(ctx))
		cancel()
	}
	if a.metrics != nil {
		errs = append(errs, a.metrics.WriteText(a.metricsOut))
	}
	return errors.Join(errs...)
}

func configName(path string) string {
	if path == "" {
		return "environment"
	}
	return path
}

// parseAssignments splits name=value pairs. Later pairs win.
func parseAssignments(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected name=value", pair)
		}
		out[name] = value
	}
	return out, nil
}

// inputFor maps a command argument to a source input; "-" reads stdin.
func inputFor(cmd *cobra.Command, arg string) any {
	if arg == "-" {
		return cmd.InOrStdin()
	}
	return source.Path(arg)
}

func stdinCount(args []string) int {
	n := 0
	for _, arg := range args {
		if arg == "-" {
			n++
		}
	}
	return n
}

// checkStdin rejects argument lists that would read stdin more than once.
func checkStdin(args []string) error {
	if n := stdinCount(args); n > 1 {
		return fmt.Errorf("stdin (-) can be read only once, got %d uses", n)
	}
	return nil
}
