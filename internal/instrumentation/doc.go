// Package instrumentation provides OpenTelemetry instrumentation for the
// mcp-upgates server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Tool Metrics:
//   - mcp_upgates_tool_invocations_total: Counter of tool calls by tool, status and error_kind
//   - mcp_upgates_tool_invocation_duration_seconds: Histogram of tool call durations
//
// Upstream Metrics:
//   - mcp_upgates_upstream_requests_total: Counter of Upgates API requests by method and status
//   - mcp_upgates_upstream_request_duration_seconds: Histogram of Upgates API request durations
//   - mcp_upgates_upstream_requests_in_flight: Gauge of in-flight Upgates API requests
//   - mcp_upgates_circuit_breaker_transitions_total: Counter of breaker state changes
//
// Output Metrics:
//   - mcp_upgates_list_items_truncated_total: Counter of list items dropped by the optimizer
//
// Upstream paths contain order numbers and product codes, so they are only
// added as a label when detailed labels are enabled, and then reduced to their
// route by UpstreamRoute ("/orders/:id/history").
//
// # Tracing
//
// Spans are created for MCP tool invocations ("tool.<name>") and for each
// Upgates API request ("upgates.<METHOD>").
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - METRICS_DETAILED_LABELS: Add the upstream route label (default: false)
//   - OTEL_SERVICE_NAME: Service name (default: mcp-upgates)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "list_orders", instrumentation.StatusSuccess, "", time.Since(start))
package instrumentation
