package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation captures a single MCP tool call for audit logging.
type ToolInvocation struct {
	Tool      string
	StartTime time.Time
	Duration  time.Duration

	// Mutating is true for tools that create or change shop data.
	Mutating bool

	// Target is the primary identifier the tool acted on, such as an order
	// number or product code. Empty for list operations.
	Target string

	Success   bool
	Error     string
	ErrorKind string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts a new invocation record for tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithMutating marks the invocation as changing shop data.
func (ti *ToolInvocation) WithMutating(mutating bool) *ToolInvocation {
	ti.Mutating = mutating
	return ti
}

// WithTarget records the identifier the tool acted on.
func (ti *ToolInvocation) WithTarget(target string) *ToolInvocation {
	ti.Target = target
	return ti
}

// WithErrorKind records the failure kind reported to the client.
func (ti *ToolInvocation) WithErrorKind(kind string) *ToolInvocation {
	ti.ErrorKind = kind
	return ti
}

// WithSpanContext copies trace and span ids from the active span in ctx.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Complete finalizes the invocation with its outcome.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteSuccess finalizes a successful invocation.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// CompleteWithError finalizes a failed invocation.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns low-cardinality attributes suitable for operational logs.
// Targets and error messages are left out.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Bool("mutating", ti.Mutating),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.ErrorKind != "" {
		attrs = append(attrs, slog.String("error_kind", ti.ErrorKind))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	return attrs
}

// LogAuditAttrs returns the full attribute set for the audit trail.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Bool("mutating", ti.Mutating),
		slog.Time("start_time", ti.StartTime),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.Target != "" {
		attrs = append(attrs, slog.String("target", ti.Target))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	if ti.ErrorKind != "" {
		attrs = append(attrs, slog.String("error_kind", ti.ErrorKind))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	return attrs
}

// AuditLogger writes tool invocations to a structured logger.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an AuditLogger. A nil logger falls back to slog.Default().
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogToolInvocation writes one audit record. Failed and mutating invocations
// are logged at warn and info respectively; read-only successes at debug.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || ti == nil {
		return
	}

	level := slog.LevelDebug
	switch {
	case !ti.Success:
		level = slog.LevelWarn
	case ti.Mutating:
		level = slog.LevelInfo
	}

	al.logger.LogAttrs(context.Background(), level, "tool_invocation", ti.LogAuditAttrs()...)
}

// TraceIDFromContext returns the trace id of the active span, or "".
func TraceIDFromContext(ctx context.Context) string {
	return GetTraceID(ctx)
}
