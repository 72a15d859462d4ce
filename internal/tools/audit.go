package tools

import (
	"context"
	"regexp"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-upgates/internal/instrumentation"
	"github.com/giantswarm/mcp-upgates/internal/server"
)

// ToolHandler is the signature for MCP tool handler functions.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// errorCodePattern extracts the kind code from a rendered error such as
// "ValidationError [VALIDATION_ERROR] ...".
var errorCodePattern = regexp.MustCompile(`^\w+ \[([A-Z_]+)\]`)

// WrapWithAuditLogging wraps a tool handler with audit logging.
// This function creates a wrapper that automatically captures:
//   - Tool invocation timing
//   - Whether the operation mutates shop data
//   - The identifier the tool acted on, taken from the operation's id field
//   - Success/error status and error kind from the handler result
//   - OpenTelemetry trace context for correlation
//
// If no instrumentation provider is available, the handler is called without audit logging.
func WrapWithAuditLogging(
	op *Operation,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		provider := sc.InstrumentationProvider()
		if provider == nil || provider.AuditLogger() == nil {
			return handler(ctx, request)
		}

		auditLogger := provider.AuditLogger()

		invocation := instrumentation.NewToolInvocation(op.Name).
			WithMutating(op.Mutating).
			WithSpanContext(ctx)

		if target := auditTarget(op, request.GetArguments()); target != "" {
			invocation.WithTarget(target)
		}

		result, err := handler(ctx, request)

		switch {
		case err != nil:
			invocation.CompleteWithError(err)
		case result != nil && result.IsError:
			// MCP tool errors are returned in the result, not as Go errors
			invocation.Complete(false, nil)
			if len(result.Content) > 0 {
				if textContent, ok := result.Content[0].(mcp.TextContent); ok {
					invocation.Error = textContent.Text
					if m := errorCodePattern.FindStringSubmatch(textContent.Text); m != nil {
						invocation.WithErrorKind(m[1])
					}
				}
			}
		default:
			invocation.CompleteSuccess()
		}

		auditLogger.LogToolInvocation(invocation)

		return result, err
	}
}

// auditTarget returns the identifier an invocation acted on, if any.
func auditTarget(op *Operation, args map[string]any) string {
	if op.IDField == "" {
		return ""
	}
	id, ok := args[op.IDField]
	if !ok || id == nil {
		return ""
	}
	return formatValue(id)
}
