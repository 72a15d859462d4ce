package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the mcp-upgates package.
const TracerName = "github.com/giantswarm/mcp-upgates"

// Span attribute keys for tool and upstream operations.
const (
	// SpanAttrTool is the MCP tool name.
	SpanAttrTool = "mcp.tool"

	// SpanAttrMutating indicates whether the tool changes shop data.
	SpanAttrMutating = "mcp.mutating"

	// SpanAttrErrorKind is the failure kind reported to the client.
	SpanAttrErrorKind = "mcp.error_kind"

	// SpanAttrMethod is the upstream HTTP method.
	SpanAttrMethod = "upgates.method"

	// SpanAttrPath is the upstream path relative to the API base URL.
	SpanAttrPath = "upgates.path"

	// SpanAttrStatusCode is the upstream HTTP status code.
	SpanAttrStatusCode = "upgates.status_code"

	// SpanAttrRequestID is the X-Request-ID sent upstream.
	SpanAttrRequestID = "upgates.request_id"

	// SpanAttrAnonymized indicates whether the payload was anonymized.
	SpanAttrAnonymized = "mcp.anonymized"

	// SpanAttrOptimized indicates whether the list optimizer changed the payload.
	SpanAttrOptimized = "mcp.optimized"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithTool adds the MCP tool name attribute.
func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrTool, tool))
	return b
}

// WithMutating adds the mutating indicator attribute.
func (b *SpanAttributeBuilder) WithMutating(mutating bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrMutating, mutating))
	return b
}

// WithUpstream adds upstream request attributes. Empty values are skipped.
func (b *SpanAttributeBuilder) WithUpstream(method, path string) *SpanAttributeBuilder {
	if method != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrMethod, method))
	}
	if path != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrPath, path))
	}
	return b
}

// WithStatusCode adds the upstream status code attribute.
func (b *SpanAttributeBuilder) WithStatusCode(code int) *SpanAttributeBuilder {
	if code > 0 {
		b.attrs = append(b.attrs, attribute.Int(SpanAttrStatusCode, code))
	}
	return b
}

// WithErrorKind adds the failure kind attribute.
func (b *SpanAttributeBuilder) WithErrorKind(kind string) *SpanAttributeBuilder {
	if kind != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrErrorKind, kind))
	}
	return b
}

// WithPostProcessing adds the anonymized and optimized indicators.
func (b *SpanAttributeBuilder) WithPostProcessing(anonymized, optimized bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.Bool(SpanAttrAnonymized, anonymized),
		attribute.Bool(SpanAttrOptimized, optimized),
	)
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// Returns the context with the span and the span itself.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a span for an MCP tool invocation.
// Automatically adds tool name and sets appropriate span kind.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrTool, toolName))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartUpstreamSpan starts a span for a request to the Upgates API.
func StartUpstreamSpan(ctx context.Context, method, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+2)
	allAttrs = append(allAttrs,
		attribute.String(SpanAttrMethod, method),
		attribute.String(SpanAttrPath, path),
	)
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "upgates."+method,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
// Returns empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}

// SpanContextString returns a human-readable trace context string.
// Format: "trace_id=X span_id=Y" or empty string if no valid context.
func SpanContextString(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return "trace_id=" + span.SpanContext().TraceID().String() +
		" span_id=" + span.SpanContext().SpanID().String()
}
