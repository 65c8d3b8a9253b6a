package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names for processor operations.
const (
	SpanNewEngine = "forge.engine.new"
	SpanCompile   = "forge.compile"
	SpanParse     = "forge.parse"
	SpanTransform = "forge.transform"
)

// Attribute keys use the "forge.*" namespace.
const (
	AttrEngineID     = "forge.engine.id"
	AttrEdition      = "forge.engine.edition"
	AttrArtifactKind = "forge.artifact.kind"
	AttrSystemID     = "forge.system_id"
	AttrProgram      = "forge.program"
	AttrRuleCount    = "forge.program.rules"
	AttrErrorType    = "forge.error.type"
)

// SetEngineAttributes records which engine a span ran against.
func SetEngineAttributes(span trace.Span, id, edition string) {
	span.SetAttributes(
		attribute.String(AttrEngineID, id),
		attribute.String(AttrEdition, edition),
	)
}

// SetArtifactAttributes records the kind and system identifier of the
// artifact being produced. An empty systemID is omitted.
func SetArtifactAttributes(span trace.Span, kind, systemID string) {
	attrs := []attribute.KeyValue{attribute.String(AttrArtifactKind, kind)}
	if systemID != "" {
		attrs = append(attrs, attribute.String(AttrSystemID, systemID))
	}
	span.SetAttributes(attrs...)
}

// SetProgramAttributes records a compiled program's name and rule count.
func SetProgramAttributes(span trace.Span, name string, rules int) {
	span.SetAttributes(
		attribute.String(AttrProgram, name),
		attribute.Int(AttrRuleCount, rules),
	)
}

// SetError records err on the span and marks it failed. A nil err is a no-op.
func SetError(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.SetAttributes(attribute.String(AttrErrorType, errorType))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
