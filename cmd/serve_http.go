package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-upgates/internal/instrumentation"
	"github.com/giantswarm/mcp-upgates/internal/server"
	"github.com/giantswarm/mcp-upgates/internal/server/middleware"
)

var healthEndpoints = []string{"/healthz", "/readyz", "/healthz/detailed"}

// runStreamableHTTPServer runs the server with Streamable HTTP transport
func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, config ServeConfig, provider *instrumentation.Provider, sc *server.ServerContext) error {
	mux := http.NewServeMux()

	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(config.HTTPEndpoint),
	)
	mux.Handle(config.HTTPEndpoint, mcpHandler)

	// Metrics are served on a separate listener, see startMetricsServer.
	server.NewHealthChecker(sc).RegisterHealthEndpoints(mux)

	slog.Info("streamable HTTP server starting",
		"addr", config.HTTPAddr,
		"endpoint", config.HTTPEndpoint,
		"health_endpoints", healthEndpoints)

	httpServer := newHTTPServer(config.HTTPAddr)
	httpServer.Handler = wrapHTTPHandler(mux, config, provider)

	return serveHTTP(ctx, "HTTP", httpServer, httpServer.Shutdown, config.Metrics, provider)
}

// newHTTPServer creates an HTTP server with security timeouts. WriteTimeout
// is left unset because SSE and streamed responses stay open.
func newHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// wrapHTTPHandler applies the middleware chain shared by the HTTP transports.
// The request ID is assigned first so every later layer can see it.
func wrapHTTPHandler(handler http.Handler, config ServeConfig, provider *instrumentation.Provider) http.Handler {
	var recorder middleware.HTTPRecorder
	if provider.Enabled() {
		recorder = provider.Metrics()
	}

	handler = middleware.HTTPMetrics(recorder)(handler)
	handler = middleware.MaxRequestSize(config.MaxRequestBytes)(handler)
	handler = middleware.SecurityHeaders(config.EnableHSTS)(handler)
	return middleware.RequestID(handler)
}

// serveHTTP listens on httpServer.Addr until ctx is cancelled or the server
// fails, then stops the metrics server and calls shutdown.
func serveHTTP(ctx context.Context, name string, httpServer *http.Server, shutdown func(context.Context) error, metricsConfig MetricsServeConfig, provider *instrumentation.Provider) error {
	listener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", httpServer.Addr, err)
	}

	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(metricsConfig, provider)
		if err != nil {
			_ = listener.Close()
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping server", "transport", name)
	case err := <-serverDone:
		if metricsServer != nil {
			shutdownMetricsServer(metricsServer)
		}
		if err != nil {
			return fmt.Errorf("%s server stopped with error: %w", name, err)
		}
		slog.Info("server stopped normally", "transport", name)
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error shutting down metrics server", "error", err)
		}
	}

	if err := shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down %s server: %w", name, err)
	}
	<-serverDone

	slog.Info("server gracefully stopped", "transport", name)
	return nil
}

// startMetricsServer starts the dedicated metrics server on a separate port.
// This keeps Prometheus metrics off the MCP listener.
func startMetricsServer(config MetricsServeConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "error", err)
		}
	}()

	slog.Info("metrics server started", "addr", metricsServer.Addr(), "endpoint", "/metrics")
	return metricsServer, nil
}

func shutdownMetricsServer(metricsServer *server.MetricsServer) {
	ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		slog.Error("error shutting down metrics server", "error", err)
	}
}
