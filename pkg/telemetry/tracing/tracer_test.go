package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/forge/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *config.TracingConfig
		wantErr     bool
		wantEnabled bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:   "disabled tracing",
			config: &config.TracingConfig{Enabled: false, ServiceName: "test-service"},
		},
		{
			name: "enabled with lazy connection",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerAlways,
				Endpoint:    "localhost:4317",
				Insecure:    true,
				ServiceName: "test-service",
			},
			wantEnabled: true,
		},
		{
			name: "enabled with invalid sampler",
			config: &config.TracingConfig{
				Enabled:  true,
				Sampler:  "sometimes",
				Endpoint: "localhost:4317",
				Insecure: true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer func() {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				_ = tracer.Shutdown(ctx)
			}()

			if tracer.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.wantEnabled)
			}
			if tracer.Tracer() == nil {
				t.Error("Tracer() returned nil")
			}
		})
	}
}

func TestDisabledTracerRecordsNothing(t *testing.T) {
	tracer, err := New(&config.TracingConfig{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, span := tracer.Start(context.Background(), SpanCompile)
	defer span.End()

	if span.IsRecording() {
		t.Error("disabled tracer must hand out non-recording spans")
	}
	if err := tracer.Flush(context.Background()); err != nil {
		t.Errorf("Flush() error = %v", err)
	}
}

func TestNewWithExporter(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(&config.TracingConfig{ServiceName: "forge-test"}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, parent := tracer.Start(context.Background(), SpanTransform)
	_, child := tracer.Start(ctx, SpanParse)
	SetArtifactAttributes(child, "document", "a.yaml")
	SetError(child, errors.New("bad input"), "parse")
	child.End()
	parent.End()

	if err := tracer.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}

	parse := spans[0]
	if parse.Name != SpanParse {
		t.Fatalf("first ended span = %q, want %q", parse.Name, SpanParse)
	}
	if parse.Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("parse span should be a child of the transform span")
	}
	if parse.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", parse.Status.Code)
	}
	if len(parse.Events) != 1 || parse.Events[0].Name != "exception" {
		t.Errorf("events = %v, want one exception event", parse.Events)
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range parse.Attributes {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrArtifactKind].AsString() != "document" || attrs[AttrSystemID].AsString() != "a.yaml" {
		t.Errorf("attributes = %v", parse.Attributes)
	}

	var service string
	for _, kv := range parse.Resource.Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	if service != "forge-test" {
		t.Errorf("service.name = %q, want forge-test", service)
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 0, false},
		{"", 0, false},
		{SamplerNever, 0, false},
		{SamplerRatio, 0.5, false},
		{SamplerRatio, 1.5, true},
		{SamplerRatio, -0.1, true},
		{"sometimes", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			sampler, err := newSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
			}
			if err == nil && sampler == nil {
				t.Error("newSampler() returned nil sampler")
			}
		})
	}
}

func TestNeverSamplerDropsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(&config.TracingConfig{Sampler: SamplerNever}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), SpanCompile)
	span.End()
	_ = tracer.Flush(context.Background())

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("got %d spans, want 0", n)
	}
}

func TestSetErrorNil(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(&config.TracingConfig{}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), SpanCompile)
	SetError(span, nil, "compile")
	SetProgramAttributes(span, "tag-owner", 2)
	span.End()
	_ = tracer.Flush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code == codes.Error {
		t.Error("nil error must not mark the span failed")
	}
}
