// Package config provides configuration management for Mercator Forge.
//
// This package handles loading, validating, and defaulting configuration
// from YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("forge.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("forge.yaml")
//
// # Example
//
//	processor:
//	  config_file: engine.yaml
//	  license_file: license.yaml
//	  features:
//	    lineNumbering: true
//	telemetry:
//	  logging:
//	    level: debug
//	    format: json
//	  metrics:
//	    enabled: true
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention FORGE_SECTION_FIELD:
//
//   - FORGE_PROCESSOR_CONFIG_FILE overrides processor.config_file
//   - FORGE_PROCESSOR_LICENSE_FILE overrides processor.license_file
//   - FORGE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//   - FORGE_FEATURE_LINENUMBERING overrides processor.features.lineNumbering
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
package config
