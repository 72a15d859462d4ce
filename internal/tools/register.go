package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-upgates/internal/logging"
	"github.com/giantswarm/mcp-upgates/internal/server"
	"github.com/giantswarm/mcp-upgates/internal/tools/output"
	"github.com/giantswarm/mcp-upgates/internal/upgates"
	"github.com/giantswarm/mcp-upgates/internal/validation"
)

// RegisterTools registers every operation in registry with the MCP server
// and returns the dispatcher serving them.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext, registry *Registry) (*Dispatcher, error) {
	schemas, err := CompileSchemas(registry)
	if err != nil {
		return nil, err
	}

	dispatcher := NewDispatcher(registry, sc.Gateway(), DispatcherOptions(sc, schemas))

	for _, op := range registry.Operations() {
		s.AddTool(op.Tool(), WrapWithAuditLogging(op, refuseAfterShutdown(sc, NewHandler(dispatcher, op.Name)), sc))
	}

	sc.Logger().Info("Registered tools",
		"count", registry.Len(),
		"readonly", sc.Config().Upstream().ReadonlyMode,
	)
	return dispatcher, nil
}

// DispatcherOptions derives the dispatcher settings from the server context.
func DispatcherOptions(sc *server.ServerContext, schemas *validation.SchemaValidator) Options {
	upstream := sc.Config().Upstream()

	opts := Options{
		Readonly: upstream.ReadonlyMode,
		Output: &output.Config{
			Anonymize: upstream.AnonymizeData,
			Optimize:  upstream.OptimizeResponses,
			MaxItems:  upstream.MaxListItems,
		},
		Schemas: schemas,
		Logger:  loggerFor(sc),
	}

	if provider := sc.InstrumentationProvider(); provider != nil {
		opts.Metrics = provider.Metrics()
	}
	return opts
}

// loggerFor unwraps the server logger when it is backed by slog.
func loggerFor(sc *server.ServerContext) *slog.Logger {
	if adapter, ok := sc.Logger().(*logging.SlogAdapter); ok {
		return adapter.Logger()
	}
	return slog.Default()
}

// CompileSchemas compiles the input schema of every operation.
func CompileSchemas(registry *Registry) (*validation.SchemaValidator, error) {
	schemas := validation.NewSchemaValidator()
	for _, op := range registry.Operations() {
		tool := op.Tool()
		raw, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal input schema for %q: %w", op.Name, err)
		}
		if err := schemas.Register(op.Name, raw); err != nil {
			return nil, err
		}
	}
	return schemas, nil
}

// NewHandler adapts one dispatcher operation to the MCP tool handler
// signature. Pipeline failures are reported as tool errors, never as
// protocol errors.
func NewHandler(d *Dispatcher, name string) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := d.Invoke(ctx, name, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(upgates.AsError(err).Error()), nil
		}
		return FormatResult(result)
	}
}

// refuseAfterShutdown rejects calls that arrive once the server context has
// been shut down.
func refuseAfterShutdown(sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if sc.IsShutdown() {
			return mcp.NewToolResultError(server.ErrServerShutdown.Error()), nil
		}
		return handler(ctx, request)
	}
}

// FormatResult renders a payload as indented JSON text.
func FormatResult(result any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
