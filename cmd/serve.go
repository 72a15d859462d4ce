package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-upgates/internal/instrumentation"
	"github.com/giantswarm/mcp-upgates/internal/logging"
	"github.com/giantswarm/mcp-upgates/internal/resources"
	"github.com/giantswarm/mcp-upgates/internal/server"
	"github.com/giantswarm/mcp-upgates/internal/server/middleware"
	"github.com/giantswarm/mcp-upgates/internal/tools"
	"github.com/giantswarm/mcp-upgates/internal/tools/registry"
	"github.com/giantswarm/mcp-upgates/internal/upgates"
)

const serverName = "mcp-upgates"

// serveFunc runs the server once flags are parsed. Tests replace it.
var serveFunc = runServe

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var (
		config       ServeConfig
		readonly     bool
		anonymize    bool
		maxListItems int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP Upgates server",
		Long: `Start the MCP Upgates server to expose the Upgates e-commerce API
via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

The Upgates connection is configured through UPGATES_API_URL,
UPGATES_API_USERNAME and UPGATES_API_PASSWORD, optionally on top of a
YAML file given with --config. Readonly mode blocks every tool that
creates, updates or deletes shop data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Readonly = boolFlag(cmd, "readonly", readonly)
			config.Anonymize = boolFlag(cmd, "anonymize", anonymize)
			if cmd.Flags().Changed("max-list-items") {
				config.MaxListItems = maxListItems
			}
			loadServeEnvVars(cmd, &config)
			return serveFunc(config)
		},
	}

	// Upstream flags
	cmd.Flags().StringVar(&config.ConfigFile, "config", "", "YAML file with Upgates settings (can also be set via UPGATES_CONFIG_FILE env var)")
	cmd.Flags().BoolVar(&readonly, "readonly", false, "Block all write operations (overrides UPGATES_READONLY)")
	cmd.Flags().BoolVar(&anonymize, "anonymize", false, "Anonymize customer data in responses (overrides UPGATES_ANONYMIZE_DATA)")
	cmd.Flags().IntVar(&maxListItems, "max-list-items", upgates.DefaultMaxListItems, "Items kept per list response when optimizing (overrides UPGATES_MAX_LIST_ITEMS)")

	// Logging flags
	cmd.Flags().BoolVar(&config.DebugMode, "debug", false, "Enable debug logging (default: false)")
	cmd.Flags().StringVar(&config.LogFormat, "log-format", "text", "Log format: text or json (can also be set via LOG_FORMAT env var)")

	// Transport flags
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&config.SSEEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.MessageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.HTTPEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")
	cmd.Flags().BoolVar(&config.EnableHSTS, "enable-hsts", false, "Send Strict-Transport-Security (only behind TLS, can also be set via ENABLE_HSTS env var)")
	cmd.Flags().Int64Var(&config.MaxRequestBytes, "max-request-bytes", middleware.DefaultMaxRequestBytes, "Maximum HTTP request body size in bytes")

	// Metrics flags
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "enable-metrics", true, "Serve Prometheus metrics on a dedicated listener when instrumentation is enabled")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address (can also be set via METRICS_ADDR env var)")

	return cmd
}

// runServe contains the main server logic with support for multiple transports
func runServe(config ServeConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	level := "info"
	if config.DebugMode {
		level = "debug"
	}
	logger := logging.NewLogger(logging.Options{Level: level, Format: config.LogFormat})
	slog.SetDefault(logger)

	upstreamConfig, err := upgates.LoadConfig(config.ConfigFile)
	if err == nil {
		config.applyUpstreamOverrides(upstreamConfig)
		err = upstreamConfig.Validate()
	}
	if err != nil {
		if upgates.KindOf(err) == upgates.KindConfiguration {
			_, _ = fmt.Fprintf(os.Stderr, "%v\n\n%s\n", err, upgates.SetupGuidance)
		}
		return err
	}

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if shutdownErr := provider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(shutdownErr))
		}
	}()
	provider.SetAuditLogger(logger)

	if provider.Enabled() {
		logger.Info("OpenTelemetry instrumentation enabled",
			"metrics", instrumentationConfig.MetricsExporter,
			"tracing", instrumentationConfig.TracingExporter)
	}

	client, err := upgates.NewClient(upstreamConfig,
		upgates.WithLogger(logger),
		upgates.WithMetrics(provider.Metrics()),
	)
	if err != nil {
		return fmt.Errorf("failed to create Upgates client: %w", err)
	}

	serverConfig := server.NewDefaultConfig()
	serverConfig.ServerName = serverName
	serverConfig.Version = versionOrDev()
	serverConfig.Upgates = upstreamConfig
	serverConfig.LogLevel = level
	serverConfig.LogFormat = config.LogFormat

	serverContext, err := server.NewServerContext(shutdownCtx,
		server.WithGateway(client),
		server.WithLogger(logging.NewSlogAdapter(logger)),
		server.WithConfig(serverConfig),
		server.WithInstrumentationProvider(provider),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv, err := newMCPServer(serverContext)
	if err != nil {
		return err
	}

	logger.Info("starting MCP Upgates server",
		"transport", config.Transport,
		logging.Host(upstreamConfig.APIURL),
		"readonly", upstreamConfig.ReadonlyMode,
		"anonymize", upstreamConfig.AnonymizeData,
	)

	switch config.Transport {
	case transportStdio:
		return runStdioServer(shutdownCtx, mcpSrv, logger)
	case transportSSE:
		return runSSEServer(shutdownCtx, mcpSrv, config, provider, serverContext)
	default:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, config, provider, serverContext)
	}
}

// newMCPServer creates the MCP server with every tool and resource registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	cfg := sc.Config()
	mcpSrv := mcpserver.NewMCPServer(cfg.ServerName, cfg.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	reg, err := registry.New()
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}
	if _, err := tools.RegisterTools(mcpSrv, sc, reg); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	provider, err := resources.NewProvider(resources.Info{
		ServerName: cfg.ServerName,
		Version:    cfg.Version,
		ToolCount:  reg.Len(),
		Config:     cfg.Upstream(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}
	provider.Register(mcpSrv)

	return mcpSrv, nil
}

func versionOrDev() string {
	if rootCmd.Version == "" {
		return "dev"
	}
	return rootCmd.Version
}
