package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"mercator-hq/forge/pkg/engine"
)

// envPrefix starts every environment override.
const envPrefix = "FORGE_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention FORGE_SECTION_FIELD (e.g., FORGE_TELEMETRY_LOGGING_LEVEL).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from defaults.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefaultConfig()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Processor overrides
	if val := os.Getenv("FORGE_PROCESSOR_CONFIG_FILE"); val != "" {
		cfg.Processor.ConfigFile = val
	}
	if val := os.Getenv("FORGE_PROCESSOR_LICENSE_FILE"); val != "" {
		cfg.Processor.LicenseFile = val
	}
	applyFeatureEnvOverrides(cfg)

	// Logging overrides
	if val := os.Getenv("FORGE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("FORGE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("FORGE_TELEMETRY_LOGGING_ADD_SOURCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Logging.AddSource = b
		}
	}

	// Metrics overrides
	if val := os.Getenv("FORGE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("FORGE_TELEMETRY_METRICS_NAMESPACE"); val != "" {
		cfg.Telemetry.Metrics.Namespace = val
	}

	// Tracing overrides
	if val := os.Getenv("FORGE_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("FORGE_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("FORGE_TELEMETRY_TRACING_SAMPLER"); val != "" {
		cfg.Telemetry.Tracing.Sampler = val
	}
}

// applyFeatureEnvOverrides reads FORGE_FEATURE_<NAME> for every registered
// feature, where NAME is the upper-cased short name (FORGE_FEATURE_LINENUMBERING).
// Values are kept as strings; the engine coerces them.
func applyFeatureEnvOverrides(cfg *Config) {
	for _, f := range engine.Features() {
		short := strings.TrimPrefix(f.Key, engine.FeatureNamespace)
		val := os.Getenv(envPrefix + "FEATURE_" + strings.ToUpper(short))
		if val == "" {
			continue
		}
		if cfg.Processor.Features == nil {
			cfg.Processor.Features = make(map[string]any)
		}
		cfg.Processor.Features[short] = val
	}
}
