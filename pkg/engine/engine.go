package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"mercator-hq/forge/pkg/source"
)

// Options configures engine construction. Both sources are optional and
// independent of each other.
type Options struct {
	// Config is a YAML configuration source with a top-level "features"
	// mapping of short feature names to values.
	Config *source.StreamSource

	// License activates a licensed edition.
	License *source.StreamSource

	// Logger receives engine events. Defaults to slog.Default().
	Logger *slog.Logger
}

// Engine is the shared processing engine. Identity is pointer identity:
// artifacts bound to an Engine are only compatible with artifacts bound to
// the same *Engine.
type Engine struct {
	id      uuid.UUID
	created time.Time
	license *License
	logger  *slog.Logger

	// mu keeps the property map memory-safe. Callers still serialize
	// configuration changes against artifact production.
	mu    sync.RWMutex
	props map[string]Value
}

// configFile is the YAML layout of a configuration source.
type configFile struct {
	Features map[string]any `yaml:"features"`
}

// New constructs an engine, applying the license and configuration sources
// when present. Every failure carries the engine's diagnostic.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		id:      uuid.New(),
		created: time.Now(),
		props:   make(map[string]Value),
	}

	if opts.License != nil {
		lic, err := parseLicense(opts.License)
		if err != nil {
			return nil, err
		}
		e.license = lic
	}

	if opts.Config != nil {
		if err := e.applyConfigSource(opts.Config); err != nil {
			return nil, &ConfigSourceError{SystemID: opts.Config.SystemID(), Cause: err}
		}
	}

	e.logger = logger.With("engine_id", e.id.String())
	e.logger.Debug("engine constructed",
		"edition", e.Edition(),
		"created", e.Created(),
		"configured_features", len(e.props),
	)

	return e, nil
}

// applyConfigSource decodes a configuration source and applies its features
// through the same validated path as SetProperty.
func (e *Engine) applyConfigSource(src *source.StreamSource) error {
	dec := yaml.NewDecoder(src.Reader())
	dec.KnownFields(true)

	var cfg configFile
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("configuration source is empty")
		}
		return err
	}

	names := make([]string, 0, len(cfg.Features))
	for name := range cfg.Features {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v, err := ValueOf(cfg.Features[name])
		if err != nil {
			return fmt.Errorf("feature %q: %w", name, err)
		}
		if err := e.SetProperty(FeatureNamespace+name, v); err != nil {
			return err
		}
	}
	return nil
}

// ID returns the engine's unique identifier. It is for diagnostics only;
// compare engines by pointer.
func (e *Engine) ID() uuid.UUID { return e.id }

// Created returns the construction time.
func (e *Engine) Created() time.Time { return e.created }

// Logger returns the engine's logger, tagged with its ID. Engines not built
// by New log to slog.Default().
func (e *Engine) Logger() *slog.Logger {
	if e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

// Edition returns the active edition.
func (e *Engine) Edition() Edition {
	if e.license == nil {
		return EditionHome
	}
	return e.license.Edition
}

// License returns a copy of the active license, or nil when unlicensed.
func (e *Engine) License() *License {
	if e.license == nil {
		return nil
	}
	lic := *e.license
	return &lic
}

// SetProperty stores v under the full feature key, coercing it to the
// feature's kind. Prior values are overwritten.
func (e *Engine) SetProperty(key string, v Value) error {
	f, ok := features[key]
	if !ok {
		return &UnknownFeatureError{Key: key}
	}
	if !v.IsValid() {
		return &TypeMismatchError{Key: key, Expected: f.Kind, Value: v}
	}

	cv, ok := coerce(v, f.Kind)
	if !ok || !f.allows(cv) {
		return &TypeMismatchError{Key: key, Expected: f.Kind, Value: v}
	}

	e.mu.Lock()
	if e.props == nil {
		e.props = make(map[string]Value)
	}
	e.props[key] = cv
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.Debug("feature set", "key", key, "value", cv.String())
	}
	return nil
}

// Property returns the value stored under the full feature key, or the
// feature's default when it was never set.
func (e *Engine) Property(key string) (Value, error) {
	f, ok := features[key]
	if !ok {
		return Value{}, &UnknownFeatureError{Key: key}
	}

	e.mu.RLock()
	v, set := e.props[key]
	e.mu.RUnlock()

	if !set {
		return f.Default, nil
	}
	return v, nil
}

// Properties returns a snapshot of the explicitly set features.
func (e *Engine) Properties() map[string]Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.props)
}

// BoolFeature returns a boolean feature, falling back to false for keys
// that are unknown or not boolean.
func (e *Engine) BoolFeature(key string) bool {
	v, err := e.Property(key)
	if err != nil {
		return false
	}
	b, _ := v.Bool()
	return b
}

// StringFeature returns a string feature, or "" for keys that are unknown
// or not strings.
func (e *Engine) StringFeature(key string) string {
	v, err := e.Property(key)
	if err != nil {
		return ""
	}
	s, _ := v.Str()
	return s
}

// NumberFeature returns a numeric feature, or 0 for keys that are unknown
// or not numeric.
func (e *Engine) NumberFeature(key string) float64 {
	v, err := e.Property(key)
	if err != nil {
		return 0
	}
	n, _ := v.Number()
	return n
}
