package processor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sync/errgroup"

	"mercator-hq/forge/pkg/config"
	"mercator-hq/forge/pkg/document"
	"mercator-hq/forge/pkg/engine"
	"mercator-hq/forge/pkg/source"
	"mercator-hq/forge/pkg/telemetry/logging"
	"mercator-hq/forge/pkg/telemetry/metrics"
	"mercator-hq/forge/pkg/telemetry/tracing"
	"mercator-hq/forge/pkg/transform"
)

const testProgram = `
name: tag-owner
params:
  owner: platform
rules:
  - set: {path: metadata.owner, value: $owner}
  - delete: {path: spec.debug}
`

const testDocument = `
metadata:
  name: api
spec:
  debug: true
  replicas: 2
`

// countEngines replaces the engine constructor for the duration of the test
// and returns the number of engines constructed so far.
func countEngines(t *testing.T) *atomic.Int64 {
	t.Helper()
	var n atomic.Int64
	orig := newEngine
	newEngine = func(opts engine.Options) (*engine.Engine, error) {
		n.Add(1)
		return orig(opts)
	}
	t.Cleanup(func() { newEngine = orig })
	return &n
}

func newProcessor(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	p, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestEqual(t *testing.T) {
	a := newProcessor(t)
	b := newProcessor(t)

	if !a.Equal(a) {
		t.Error("a processor must equal itself")
	}
	if a.Equal(b) {
		t.Error("independently created processors must not be equal")
	}

	cfg := "features:\n  lineNumbering: true\n"
	c := newProcessor(t, WithConfigSource(cfg))
	d := newProcessor(t, WithConfigSource(cfg))
	if c.Equal(d) {
		t.Error("identical configuration sources must still yield distinct processors")
	}

	var nilProc *Processor
	if a.Equal(nil) || nilProc.Equal(a) {
		t.Error("nil processor must only equal nil")
	}
}

func TestWrap_SameEngineEqual(t *testing.T) {
	p := newProcessor(t)

	w1 := Wrap(p.Engine())
	w2 := Wrap(p.Engine())

	if !w1.Equal(w2) || !w1.Equal(p) {
		t.Error("processors wrapping the same engine must be equal")
	}
}

func TestWrap_NilEngine(t *testing.T) {
	p := Wrap(nil)
	if p != nil {
		t.Fatalf("Wrap(nil) = %v, want nil", p)
	}
	if p.Equal(newProcessor(t)) {
		t.Error("nil processor must not equal a live one")
	}
}

func TestNew_LogsCreationTime(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	p, err := New(WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := `"created":"` + p.Engine().Created().Format(time.RFC3339Nano) + `"`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("construction log missing %s:\n%s", want, buf.String())
	}
}

func TestDefault(t *testing.T) {
	orig := defaults
	defaults = &defaultCache{}
	t.Cleanup(func() { defaults = orig })
	constructed := countEngines(t)

	const callers = 32
	results := make([]*Processor, callers)

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			results[i] = Default()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	for i := 1; i < callers; i++ {
		if !results[0].Equal(results[i]) {
			t.Fatalf("Default() caller %d observed a different processor", i)
		}
	}
	if Default() != results[0] {
		t.Error("later Default() calls must return the cached processor")
	}
	if got := constructed.Load(); got != 1 {
		t.Errorf("engine constructed %d times, want 1", got)
	}
}

func TestNew_UnresolvableSource(t *testing.T) {
	missing := source.Path(filepath.Join(t.TempDir(), "missing.yaml"))

	tests := []struct {
		name string
		opts []Option
	}{
		{"missing config file", []Option{WithConfigSource(missing)}},
		{"missing license file", []Option{WithLicense(missing)}},
		{"nil config source", []Option{WithConfigSource(nil)}},
		{"unsupported input", []Option{WithConfigSource(42)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constructed := countEngines(t)

			p, err := New(tt.opts...)
			if p != nil {
				t.Error("no processor may be returned on failure")
			}

			var initErr *InitializationError
			if !errors.As(err, &initErr) {
				t.Fatalf("expected *InitializationError, got %v", err)
			}
			var srcErr *source.UnresolvableSourceError
			if !errors.As(err, &srcErr) {
				t.Fatalf("expected *source.UnresolvableSourceError, got %v", err)
			}
			if got := constructed.Load(); got != 0 {
				t.Errorf("engine constructed %d times, want 0", got)
			}
		})
	}
}

func TestNew_EngineRejects(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{
			name:    "unknown feature in config source",
			opts:    []Option{WithConfigSource("features:\n  colour: blue\n")},
			wantErr: engine.ErrInvalidConfigSource,
		},
		{
			name:    "malformed license",
			opts:    []Option{WithLicense("licensee: x\nedition: ZE\n")},
			wantErr: engine.ErrInvalidLicense,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(append(tt.opts, WithLogger(logging.Discard()))...)

			var initErr *InitializationError
			if !errors.As(err, &initErr) {
				t.Fatalf("expected *InitializationError, got %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v in chain, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_ConfigAndLicense(t *testing.T) {
	cfgPath := writeFile(t, "engine.yaml", "features:\n  maxNestingDepth: 8\n")
	licPath := writeFile(t, "license.yaml", "licensee: Example Corp\nedition: PE\nexpires: 2099-01-01T00:00:00Z\n")

	p := newProcessor(t, WithConfigSource(source.Path(cfgPath)), WithLicense(source.Path(licPath)))

	if p.Engine().Edition() != engine.EditionProfessional {
		t.Errorf("edition = %s, want PE", p.Engine().Edition())
	}
	v, err := p.GetConfig("maxNestingDepth")
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if n, ok := v.Number(); !ok || n != 8 {
		t.Errorf("maxNestingDepth = %v, want 8", v)
	}
}

func TestSetConfig(t *testing.T) {
	p := newProcessor(t)

	got, err := p.SetConfig(map[string]any{"lineNumbering": true})
	if err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	if got != p {
		t.Error("SetConfig must return the receiver")
	}

	v, err := p.GetConfig("lineNumbering")
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if b, ok := v.Bool(); !ok || !b {
		t.Errorf("lineNumbering = %#v, want true", v)
	}
}

func TestSetConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "empty mapping",
			values: map[string]any{},
			check: func(t *testing.T, err error) {
				var argErr *InvalidArgumentError
				if !errors.As(err, &argErr) || !errors.Is(err, ErrEmptyConfig) {
					t.Errorf("expected *InvalidArgumentError wrapping ErrEmptyConfig, got %v", err)
				}
			},
		},
		{
			name:   "nil mapping",
			values: nil,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrEmptyConfig) {
					t.Errorf("expected ErrEmptyConfig, got %v", err)
				}
			},
		},
		{
			name:   "unsupported value type",
			values: map[string]any{"timing": []string{"on"}},
			check: func(t *testing.T, err error) {
				var argErr *InvalidArgumentError
				if !errors.As(err, &argErr) || argErr.Name != "timing" {
					t.Fatalf("expected *InvalidArgumentError for timing, got %v", err)
				}
				var valErr *engine.UnsupportedValueError
				if !errors.As(err, &valErr) {
					t.Errorf("expected *engine.UnsupportedValueError, got %v", err)
				}
			},
		},
		{
			name:   "unknown key",
			values: map[string]any{"colour": "blue"},
			check: func(t *testing.T, err error) {
				var keyErr *engine.UnknownFeatureError
				if !errors.As(err, &keyErr) {
					t.Fatalf("expected *engine.UnknownFeatureError, got %v", err)
				}
				if keyErr.Key != FeatureKey("colour") {
					t.Errorf("key = %q, want expanded key", keyErr.Key)
				}
			},
		},
		{
			name:   "depth not a number",
			values: map[string]any{"maxNestingDepth": "NaN"},
			check: func(t *testing.T, err error) {
				var typeErr *engine.TypeMismatchError
				if !errors.As(err, &typeErr) {
					t.Errorf("expected *engine.TypeMismatchError, got %v", err)
				}
			},
		},
		{
			name:   "depth not positive",
			values: map[string]any{"maxNestingDepth": -5},
			check: func(t *testing.T, err error) {
				var typeErr *engine.TypeMismatchError
				if !errors.As(err, &typeErr) {
					t.Errorf("expected *engine.TypeMismatchError, got %v", err)
				}
			},
		},
		{
			name:   "type mismatch",
			values: map[string]any{"lineNumbering": 3},
			check: func(t *testing.T, err error) {
				var typeErr *engine.TypeMismatchError
				if !errors.As(err, &typeErr) {
					t.Errorf("expected *engine.TypeMismatchError, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProcessor(t)
			got, err := p.SetConfig(tt.values)
			if err == nil {
				t.Fatal("expected error")
			}
			if got != p {
				t.Error("SetConfig must return the receiver on failure")
			}
			tt.check(t, err)
		})
	}
}

func TestSetConfig_UnsupportedValueWritesNothing(t *testing.T) {
	p := newProcessor(t)

	_, err := p.SetConfig(map[string]any{
		"lineNumbering": true,
		"timing":        struct{}{},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(p.Engine().Properties()) != 0 {
		t.Errorf("no property may be written, got %v", p.Engine().Properties())
	}
}

func TestGetConfig_Default(t *testing.T) {
	p := newProcessor(t)

	v, err := p.GetConfig("stripWhitespace")
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if s, ok := v.Str(); !ok || s != engine.StripIgnorable {
		t.Errorf("stripWhitespace = %q, want %q", s, engine.StripIgnorable)
	}

	if _, err := p.GetConfig("nope"); err == nil {
		t.Error("expected error for unknown feature")
	}
}

func TestFeatureKey(t *testing.T) {
	if got := FeatureKey("lineNumbering"); got != engine.FeatureLineNumbering {
		t.Errorf("FeatureKey() = %q, want %q", got, engine.FeatureLineNumbering)
	}
	if got := FeatureKey("a b/c"); got != engine.FeatureNamespace+"a b/c" {
		t.Errorf("FeatureKey() must not escape, got %q", got)
	}
}

func TestArtifacts_BackReference(t *testing.T) {
	c := newProcessor(t)
	other := newProcessor(t)

	prog, err := c.Compile(testProgram, transform.Options{})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	foreign, err := other.Compile(testProgram, transform.Options{})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if !c.Owns(prog) {
		t.Error("program must be owned by the processor that compiled it")
	}
	if c.Owns(foreign) {
		t.Error("program from another processor must not be owned")
	}
	if !Wrap(prog.Engine()).Equal(c) {
		t.Error("program's back-reference must equal its processor")
	}
	if Wrap(foreign.Engine()).Equal(c) {
		t.Error("foreign program's back-reference must not equal the processor")
	}

	var nilProg *transform.Program
	if c.Owns(nilProg) || c.Owns(nil) {
		t.Error("nil artifacts are never owned")
	}
}

func TestRoundTrip(t *testing.T) {
	c := newProcessor(t)

	if _, err := c.SetConfig(map[string]any{"lineNumbering": true, "maxNestingDepth": 16}); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}

	ln, err := c.GetConfig("lineNumbering")
	if b, _ := ln.Bool(); err != nil || !b {
		t.Errorf("lineNumbering = %v, %v", ln, err)
	}
	depth, err := c.GetConfig("maxNestingDepth")
	if n, _ := depth.Number(); err != nil || n != 16 {
		t.Errorf("maxNestingDepth = %v, %v", depth, err)
	}

	doc, err := c.Parse(testDocument, document.Options{SystemID: "input.yaml"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	prog, err := c.Compile(testProgram, transform.Options{SystemID: "program.yaml"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if !Wrap(doc.Engine()).Equal(c) || !Wrap(prog.Engine()).Equal(c) {
		t.Error("both artifacts must reference the creating processor")
	}
	if !Wrap(doc.Engine()).Equal(Wrap(prog.Engine())) {
		t.Error("artifacts from the same processor must reference the same engine")
	}

	out, err := c.Transform(prog, doc)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if !c.Owns(out) {
		t.Error("transformation result must be owned by the processor")
	}
	data, err := out.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), "owner: platform") || strings.Contains(string(data), "debug") {
		t.Errorf("unexpected output:\n%s", data)
	}
}

func TestTransform_ForeignArtifacts(t *testing.T) {
	a := newProcessor(t)
	b := newProcessor(t)

	progA, err := a.Compile(testProgram, transform.Options{})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	docB, err := b.Parse(testDocument, document.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, err := b.Transform(progA, docB); !errors.Is(err, ErrForeignArtifact) {
		t.Errorf("expected ErrForeignArtifact for foreign program, got %v", err)
	}
	if _, err := a.Transform(progA, docB); !errors.Is(err, ErrForeignArtifact) {
		t.Errorf("expected ErrForeignArtifact for foreign document, got %v", err)
	}

	// The program itself also refuses the combination.
	var incompatible *transform.IncompatibleEngineError
	if _, err := progA.Apply(docB); !errors.As(err, &incompatible) {
		t.Errorf("expected *transform.IncompatibleEngineError, got %v", err)
	}
}

func TestCompileParse_ErrorsPassThrough(t *testing.T) {
	p := newProcessor(t)

	var srcErr *source.UnresolvableSourceError
	if _, err := p.Compile(3.5, transform.Options{}); !errors.As(err, &srcErr) {
		t.Errorf("Compile(unsupported) = %v, want *source.UnresolvableSourceError", err)
	}
	if _, err := p.Parse(source.Path(filepath.Join(t.TempDir(), "nope.yaml")), document.Options{}); !errors.As(err, &srcErr) {
		t.Errorf("Parse(missing) = %v, want *source.UnresolvableSourceError", err)
	}

	var compErr *transform.CompilationError
	if _, err := p.Compile("rules:\n  - explode: {path: a}\n", transform.Options{}); !errors.As(err, &compErr) {
		t.Errorf("Compile(bad) = %v, want *transform.CompilationError", err)
	}

	var parseErr *document.ParseError
	if _, err := p.Parse("a: [1, 2\n", document.Options{}); !errors.As(err, &parseErr) {
		t.Errorf("Parse(bad) = %v, want *document.ParseError", err)
	}
}

type stubCompiler struct {
	calls atomic.Int64
	err   error
}

func (s *stubCompiler) Compile(e *engine.Engine, src *source.StreamSource, opts transform.Options) (*transform.Program, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return transform.NewCompiler().Compile(e, src, opts)
}

func TestWithCompiler(t *testing.T) {
	sentinel := errors.New("engine diagnostic")
	stub := &stubCompiler{err: sentinel}
	p := newProcessor(t, WithCompiler(stub))

	_, err := p.Compile(testProgram, transform.Options{})
	if err != sentinel {
		t.Errorf("Compile() error = %v, want the collaborator's error unchanged", err)
	}
	if stub.calls.Load() != 1 {
		t.Errorf("collaborator called %d times, want 1", stub.calls.Load())
	}
}

func TestConcurrentProduction(t *testing.T) {
	p := newProcessor(t)

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			prog, err := p.Compile(testProgram, transform.Options{})
			if err != nil {
				return err
			}
			doc, err := p.Parse(testDocument, document.Options{})
			if err != nil {
				return err
			}
			if !p.Owns(prog) || !p.Owns(doc) {
				return errors.New("artifact not owned by producing processor")
			}
			_, err = p.Transform(prog, doc)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent production failed: %v", err)
	}
}

func TestMetrics(t *testing.T) {
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, prometheus.NewRegistry())
	p := newProcessor(t, WithMetrics(collector))

	if _, err := p.SetConfig(map[string]any{"timing": true}); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	_, _ = p.SetConfig(map[string]any{})
	_, _ = p.SetConfig(map[string]any{"lineNumbering": "maybe"})

	if _, err := p.Parse(testDocument, document.Options{}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	_, _ = p.Compile("", transform.Options{})

	want := `
# HELP test_forge_config_writes_total Total number of engine configuration writes
# TYPE test_forge_config_writes_total counter
test_forge_config_writes_total{status="invalid"} 1
test_forge_config_writes_total{status="rejected"} 1
test_forge_config_writes_total{status="success"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(want), "test_forge_config_writes_total"); err != nil {
		t.Error(err)
	}

	want = `
# HELP test_forge_artifacts_total Total number of compile and parse attempts
# TYPE test_forge_artifacts_total counter
test_forge_artifacts_total{kind="document",status="success"} 1
test_forge_artifacts_total{kind="program",status="error"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(want), "test_forge_artifacts_total"); err != nil {
		t.Error(err)
	}

	want = `
# HELP test_forge_engines_created_total Total number of engines constructed
# TYPE test_forge_engines_created_total counter
test_forge_engines_created_total{edition="HE"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(want), "test_forge_engines_created_total"); err != nil {
		t.Error(err)
	}
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	p := newProcessor(t, WithTracer(provider.Tracer("test")))

	prog, err := p.Compile(testProgram, transform.Options{SystemID: "owner.yaml"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if _, err := p.Parse("a: [", document.Options{}); err == nil {
		t.Fatal("Parse() expected error for malformed input")
	}
	if _, err := p.Transform(prog, nil); err == nil {
		t.Fatal("Transform() expected error for nil document")
	}

	spans := recorder.Ended()
	want := []string{tracing.SpanNewEngine, tracing.SpanCompile, tracing.SpanParse, tracing.SpanTransform}
	if len(spans) != len(want) {
		t.Fatalf("got %d spans, want %d", len(spans), len(want))
	}
	for i, name := range want {
		if spans[i].Name() != name {
			t.Errorf("span %d = %q, want %q", i, spans[i].Name(), name)
		}
	}

	attrs := make(map[string]string)
	for _, kv := range spans[1].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs[tracing.AttrSystemID] != "owner.yaml" || attrs[tracing.AttrProgram] != "tag-owner" || attrs[tracing.AttrRuleCount] != "2" {
		t.Errorf("compile attributes = %v", attrs)
	}

	if spans[1].Status().Code == codes.Error {
		t.Error("successful compile must not be marked failed")
	}
	for _, i := range []int{2, 3} {
		if spans[i].Status().Code != codes.Error {
			t.Errorf("span %q status = %v, want Error", spans[i].Name(), spans[i].Status().Code)
		}
	}
}
