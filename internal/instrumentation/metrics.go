package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrTool      = "tool"
	attrErrorKind = "error_kind"
	attrEntity    = "entity"
	attrFrom      = "from"
	attrTo        = "to"
)

var durationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics for the MCP transport
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Tool invocation metrics
	toolInvocationsTotal   metric.Int64Counter
	toolInvocationDuration metric.Float64Histogram

	// Upstream Upgates API metrics
	upstreamRequestsTotal   metric.Int64Counter
	upstreamRequestDuration metric.Float64Histogram
	upstreamInFlight        metric.Int64UpDownCounter
	breakerTransitionsTotal metric.Int64Counter

	// Output processing metrics
	itemsTruncatedTotal metric.Int64Counter

	// detailedLabels adds the upstream path to upstream request metrics.
	// Paths carry identifiers (order numbers, product codes) so this is off by default.
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_upgates_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_upgates_tool_invocations_total counter: %w", err)
	}

	m.toolInvocationDuration, err = meter.Float64Histogram(
		"mcp_upgates_tool_invocation_duration_seconds",
		metric.WithDescription("MCP tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_upgates_tool_invocation_duration_seconds histogram: %w", err)
	}

	m.upstreamRequestsTotal, err = meter.Int64Counter(
		"mcp_upgates_upstream_requests_total",
		metric.WithDescription("Total number of requests sent to the Upgates API"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_upgates_upstream_requests_total counter: %w", err)
	}

	m.upstreamRequestDuration, err = meter.Float64Histogram(
		"mcp_upgates_upstream_request_duration_seconds",
		metric.WithDescription("Upgates API request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_upgates_upstream_request_duration_seconds histogram: %w", err)
	}

	m.upstreamInFlight, err = meter.Int64UpDownCounter(
		"mcp_upgates_upstream_requests_in_flight",
		metric.WithDescription("Number of Upgates API requests currently in flight"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_upgates_upstream_requests_in_flight gauge: %w", err)
	}

	m.breakerTransitionsTotal, err = meter.Int64Counter(
		"mcp_upgates_circuit_breaker_transitions_total",
		metric.WithDescription("Total number of upstream circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_upgates_circuit_breaker_transitions_total counter: %w", err)
	}

	m.itemsTruncatedTotal, err = meter.Int64Counter(
		"mcp_upgates_list_items_truncated_total",
		metric.WithDescription("Total number of list items dropped by the list optimizer"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_upgates_list_items_truncated_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool invocation.
// errorKind is empty for successful invocations.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status, errorKind string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolInvocationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	}
	if errorKind != "" {
		attrs = append(attrs, attribute.String(attrErrorKind, errorKind))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolInvocationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordUpstreamRequest records a request to the Upgates API. statusCode is
// zero when no response was received.
func (m *Metrics) RecordUpstreamRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.upstreamRequestsTotal == nil || m.upstreamRequestDuration == nil {
		return // Instrumentation not initialized
	}

	status := StatusUnknown
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrPath, UpstreamRoute(path)))
	}

	m.upstreamRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.upstreamRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncrementUpstreamInFlight increments the in-flight upstream request gauge.
func (m *Metrics) IncrementUpstreamInFlight(ctx context.Context) {
	if m == nil || m.upstreamInFlight == nil {
		return // Instrumentation not initialized
	}
	m.upstreamInFlight.Add(ctx, 1)
}

// DecrementUpstreamInFlight decrements the in-flight upstream request gauge.
func (m *Metrics) DecrementUpstreamInFlight(ctx context.Context) {
	if m == nil || m.upstreamInFlight == nil {
		return // Instrumentation not initialized
	}
	m.upstreamInFlight.Add(ctx, -1)
}

// RecordBreakerTransition records a circuit breaker state change.
func (m *Metrics) RecordBreakerTransition(ctx context.Context, from, to string) {
	if m == nil || m.breakerTransitionsTotal == nil {
		return // Instrumentation not initialized
	}
	m.breakerTransitionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrFrom, from),
		attribute.String(attrTo, to),
	))
}

// RecordItemsTruncated records list items dropped by the optimizer for an entity.
func (m *Metrics) RecordItemsTruncated(ctx context.Context, entity string, dropped int) {
	if m == nil || m.itemsTruncatedTotal == nil || dropped <= 0 {
		return
	}
	m.itemsTruncatedTotal.Add(ctx, int64(dropped), metric.WithAttributes(
		attribute.String(attrEntity, entity),
	))
}
