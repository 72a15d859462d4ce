package cmd

import (
	"context"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-upgates/internal/instrumentation"
	"github.com/giantswarm/mcp-upgates/internal/server"
)

// runSSEServer runs the server with SSE transport. The SSE and message
// endpoints share one listener with the health endpoints.
func runSSEServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, config ServeConfig, provider *instrumentation.Provider, sc *server.ServerContext) error {
	httpServer := newHTTPServer(config.HTTPAddr)

	sseServer := mcpserver.NewSSEServer(mcpSrv,
		mcpserver.WithSSEEndpoint(config.SSEEndpoint),
		mcpserver.WithMessageEndpoint(config.MessageEndpoint),
		mcpserver.WithHTTPServer(httpServer),
	)

	mux := http.NewServeMux()
	mux.Handle(config.SSEEndpoint, sseServer)
	mux.Handle(config.MessageEndpoint, sseServer)
	server.NewHealthChecker(sc).RegisterHealthEndpoints(mux)
	httpServer.Handler = wrapHTTPHandler(mux, config, provider)

	slog.Info("SSE server starting",
		"addr", config.HTTPAddr,
		"sse_endpoint", config.SSEEndpoint,
		"message_endpoint", config.MessageEndpoint,
		"health_endpoints", healthEndpoints)

	// SSEServer.Shutdown closes open sessions before stopping the listener.
	return serveHTTP(ctx, "SSE", httpServer, sseServer.Shutdown, config.Metrics, provider)
}
