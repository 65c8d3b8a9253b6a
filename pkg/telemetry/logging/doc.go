// Package logging builds the structured loggers used across Mercator Forge.
//
// It wraps Go's log/slog package with the level and format parsing shared by
// the configuration file and the CLI:
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logger.Info("engine constructed",
//	    "engine_id", id,
//	    "edition", "HE",
//	)
//
// Libraries accept a *slog.Logger and fall back to slog.Default() when none
// is supplied.
package logging
