package config

import "time"

// Config is the root configuration structure for Mercator Forge.
// It contains all configuration sections for the processor and telemetry.
type Config struct {
	// Processor contains engine construction and feature settings.
	Processor ProcessorConfig `yaml:"processor"`

	// Telemetry contains observability configuration (logging, metrics, tracing).
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProcessorConfig contains settings applied when the processor is created.
type ProcessorConfig struct {
	// ConfigFile is an optional engine configuration source handed to the
	// engine at construction time.
	// Default: "" (built-in engine defaults)
	ConfigFile string `yaml:"config_file"`

	// LicenseFile is an optional license source. It is independent of
	// ConfigFile.
	// Default: "" (unlicensed)
	LicenseFile string `yaml:"license_file"`

	// Features are short feature names and values applied after
	// construction, overriding anything set by ConfigFile.
	// Example: {lineNumbering: true, maxNestingDepth: 32}
	Features map[string]any `yaml:"features"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "mercator"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "forge"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for artifact production (seconds).
	// Default: [0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces kept by the "ratio" sampler.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export request.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "mercator-forge"
	ServiceName string `yaml:"service_name"`
}
