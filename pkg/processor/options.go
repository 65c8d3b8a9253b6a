package processor

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"mercator-hq/forge/pkg/document"
	"mercator-hq/forge/pkg/telemetry/metrics"
	"mercator-hq/forge/pkg/transform"
)

// Option configures New.
type Option func(*options)

type options struct {
	config    any
	hasConfig bool

	license    any
	hasLicense bool

	logger   *slog.Logger
	metrics  *metrics.Collector
	tracer   trace.Tracer
	compiler Compiler
	parser   Parser
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = noop.NewTracerProvider().Tracer("")
	}
	if o.compiler == nil {
		o.compiler = transform.NewCompiler()
	}
	if o.parser == nil {
		o.parser = document.NewParser()
	}
	return o
}

// WithConfigSource supplies an engine configuration source. input is anything
// source.Resolve accepts; it is resolved before the engine is constructed.
func WithConfigSource(input any) Option {
	return func(o *options) {
		o.config = input
		o.hasConfig = true
	}
}

// WithLicense supplies a license source, independent of the configuration
// source.
func WithLicense(input any) Option {
	return func(o *options) {
		o.license = input
		o.hasLicense = true
	}
}

// WithLogger sets the logger handed to the engine. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records engine, configuration and artifact metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// WithTracer records a span for engine construction and every artifact
// operation. Defaults to a noop tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithCompiler replaces the default program compiler.
func WithCompiler(c Compiler) Option {
	return func(o *options) { o.compiler = c }
}

// WithParser replaces the default document parser.
func WithParser(p Parser) Option {
	return func(o *options) { o.parser = p }
}
