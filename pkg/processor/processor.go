package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/forge/pkg/document"
	"mercator-hq/forge/pkg/engine"
	"mercator-hq/forge/pkg/source"
	"mercator-hq/forge/pkg/telemetry/metrics"
	"mercator-hq/forge/pkg/telemetry/tracing"
	"mercator-hq/forge/pkg/transform"
)

// Compiler turns a program source into a Program bound to e.
type Compiler interface {
	Compile(e *engine.Engine, src *source.StreamSource, opts transform.Options) (*transform.Program, error)
}

// Parser turns a document source into a Document bound to e.
type Parser interface {
	Parse(e *engine.Engine, src *source.StreamSource, opts document.Options) (*document.Document, error)
}

// Artifact is anything bound to an engine at creation time.
type Artifact interface {
	Engine() *engine.Engine
}

// newEngine is replaced in tests to count constructions.
var newEngine = engine.New

// Processor owns one engine and is the factory for everything bound to it.
// Artifact production is safe for concurrent use. Configuration writes must
// be serialized by the caller against all other use of the same Processor.
type Processor struct {
	engine   *engine.Engine
	compiler Compiler
	parser   Parser
	logger   *slog.Logger
	metrics  *metrics.Collector
	tracer   trace.Tracer
}

// New creates a processor around a freshly constructed engine. Configuration
// and license sources are resolved first; if either cannot be resolved no
// engine is constructed. Every failure is an *InitializationError whose cause
// is the original diagnostic.
func New(opts ...Option) (*Processor, error) {
	o := newOptions(opts)

	_, span := o.tracer.Start(context.Background(), tracing.SpanNewEngine)
	defer span.End()

	engOpts := engine.Options{Logger: o.logger}
	if o.hasConfig {
		src, err := source.Resolve(o.config)
		if err != nil {
			tracing.SetError(span, err, "config_source")
			return nil, &InitializationError{Cause: err}
		}
		engOpts.Config = src
	}
	if o.hasLicense {
		src, err := source.Resolve(o.license)
		if err != nil {
			tracing.SetError(span, err, "license_source")
			return nil, &InitializationError{Cause: err}
		}
		engOpts.License = src
	}

	e, err := newEngine(engOpts)
	if err != nil {
		tracing.SetError(span, err, "engine")
		o.logger.Warn("engine initialization failed", "error", err)
		return nil, &InitializationError{Cause: err}
	}

	tracing.SetEngineAttributes(span, e.ID().String(), string(e.Edition()))
	o.metrics.RecordEngineCreated(string(e.Edition()))
	e.Logger().Info("engine constructed",
		"edition", e.Edition(),
		"created", e.Created().Format(time.RFC3339Nano),
	)

	return wrap(e, o), nil
}

// Wrap returns a processor around an existing engine using the default
// collaborators. Wrapping the same engine twice yields processors that
// compare Equal. Wrap returns nil when e is nil.
func Wrap(e *engine.Engine, opts ...Option) *Processor {
	if e == nil {
		return nil
	}
	return wrap(e, newOptions(opts))
}

func wrap(e *engine.Engine, o *options) *Processor {
	return &Processor{
		engine:   e,
		compiler: o.compiler,
		parser:   o.parser,
		logger:   e.Logger(),
		metrics:  o.metrics,
		tracer:   o.tracer,
	}
}

// Engine returns the underlying engine handle. Collaborators use it to build
// compatible artifacts; it is not meant for general callers.
func (p *Processor) Engine() *engine.Engine {
	return p.engine
}

// Equal reports whether p and other wrap the identical engine.
func (p *Processor) Equal(other *Processor) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.engine == other.engine
}

// Owns reports whether a was produced by an engine identical to p's.
func (p *Processor) Owns(a Artifact) bool {
	if p == nil || a == nil {
		return false
	}
	return a.Engine() == p.engine
}

// SetConfig writes each short-named value into the engine, overwriting prior
// values, and returns p for chaining.
//
// An empty mapping, or a value with no engine representation, is rejected
// with *InvalidArgumentError before anything is written. Writes then happen
// in sorted key order and the first engine rejection is returned as is,
// leaving earlier writes in place.
func (p *Processor) SetConfig(values map[string]any) (*Processor, error) {
	if len(values) == 0 {
		p.metrics.RecordConfigWrite(metrics.StatusInvalid)
		return p, &InvalidArgumentError{Name: "values", Cause: ErrEmptyConfig}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	typed := make([]engine.Value, len(names))
	for i, name := range names {
		v, err := engine.ValueOf(values[name])
		if err != nil {
			p.metrics.RecordConfigWrite(metrics.StatusInvalid)
			return p, &InvalidArgumentError{Name: name, Cause: err}
		}
		typed[i] = v
	}

	for i, name := range names {
		if err := p.SetFeature(name, typed[i]); err != nil {
			return p, err
		}
	}
	return p, nil
}

// SetFeature writes a single typed value under the short name.
func (p *Processor) SetFeature(name string, v engine.Value) error {
	if err := p.engine.SetProperty(FeatureKey(name), v); err != nil {
		p.metrics.RecordConfigWrite(metrics.StatusRejected)
		p.logger.Warn("configuration write rejected", "feature", name, "error", err)
		return err
	}
	p.metrics.RecordConfigWrite(metrics.StatusSuccess)
	return nil
}

// GetConfig returns the current value of the short-named feature, or the
// engine's default when it was never set.
func (p *Processor) GetConfig(name string) (engine.Value, error) {
	return p.engine.Property(FeatureKey(name))
}

// Compile resolves input and compiles it into a program bound to p's engine.
// Resolution and compilation errors are returned unchanged.
func (p *Processor) Compile(input any, opts transform.Options) (*transform.Program, error) {
	start := time.Now()
	_, span := p.tracer.Start(context.Background(), tracing.SpanCompile)
	defer span.End()

	src, err := source.Resolve(input)
	if err != nil {
		tracing.SetError(span, err, "source")
		p.metrics.RecordArtifact(metrics.KindProgram, metrics.StatusError, time.Since(start))
		return nil, err
	}
	tracing.SetArtifactAttributes(span, metrics.KindProgram, systemID(src, opts.SystemID))

	prog, err := p.compiler.Compile(p.engine, src, opts)
	if err != nil {
		tracing.SetError(span, err, "compile")
		p.metrics.RecordArtifact(metrics.KindProgram, metrics.StatusError, time.Since(start))
		p.logger.Warn("compilation failed", "system_id", src.SystemID(), "error", err)
		return nil, err
	}

	tracing.SetProgramAttributes(span, prog.Name(), len(prog.Rules()))
	p.metrics.RecordArtifact(metrics.KindProgram, metrics.StatusSuccess, time.Since(start))
	return prog, nil
}

// Parse resolves input and parses it into a document bound to p's engine.
// Resolution and parse errors are returned unchanged.
func (p *Processor) Parse(input any, opts document.Options) (*document.Document, error) {
	start := time.Now()
	_, span := p.tracer.Start(context.Background(), tracing.SpanParse)
	defer span.End()

	src, err := source.Resolve(input)
	if err != nil {
		tracing.SetError(span, err, "source")
		p.metrics.RecordArtifact(metrics.KindDocument, metrics.StatusError, time.Since(start))
		return nil, err
	}
	tracing.SetArtifactAttributes(span, metrics.KindDocument, systemID(src, opts.SystemID))

	doc, err := p.parser.Parse(p.engine, src, opts)
	if err != nil {
		tracing.SetError(span, err, "parse")
		p.metrics.RecordArtifact(metrics.KindDocument, metrics.StatusError, time.Since(start))
		p.logger.Warn("parse failed", "system_id", src.SystemID(), "error", err)
		return nil, err
	}

	p.metrics.RecordArtifact(metrics.KindDocument, metrics.StatusSuccess, time.Since(start))
	return doc, nil
}

// Transform applies prog to doc after checking that both were produced by p.
func (p *Processor) Transform(prog *transform.Program, doc *document.Document) (*document.Document, error) {
	_, span := p.tracer.Start(context.Background(), tracing.SpanTransform)
	defer span.End()

	out, err := p.transform(prog, doc)
	tracing.SetError(span, err, "transform")
	return out, err
}

func (p *Processor) transform(prog *transform.Program, doc *document.Document) (*document.Document, error) {
	if prog == nil {
		return nil, &InvalidArgumentError{Name: "program", Cause: fmt.Errorf("program is nil")}
	}
	if !p.Owns(prog) {
		return nil, fmt.Errorf("program %q: %w", prog.SystemID(), ErrForeignArtifact)
	}
	if doc != nil && !p.Owns(doc) {
		return nil, fmt.Errorf("document %q: %w", doc.SystemID(), ErrForeignArtifact)
	}
	return prog.Apply(doc)
}

// systemID prefers an explicit identifier over the source's own.
func systemID(src *source.StreamSource, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return src.SystemID()
}
