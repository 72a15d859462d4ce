package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-upgates/internal/upgates"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// envValueTrue is the string value used to enable boolean environment variables.
const envValueTrue = "true"

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string
	HTTPAddr  string

	// Endpoint paths
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string

	// ConfigFile is an optional YAML file with Upgates settings.
	ConfigFile string

	// Upstream overrides; only applied when the flag was set explicitly.
	Readonly     *bool
	Anonymize    *bool
	MaxListItems int

	DebugMode bool
	LogFormat string

	// HTTP hardening
	EnableHSTS      bool
	MaxRequestBytes int64

	Metrics MetricsServeConfig
}

// MetricsServeConfig configures the dedicated metrics server.
type MetricsServeConfig struct {
	Enabled bool
	Addr    string
}

// Validate checks the transport settings before anything is started.
func (c ServeConfig) Validate() error {
	switch c.Transport {
	case transportStdio:
		return nil
	case transportSSE:
		if err := validateEndpoint("sse-endpoint", c.SSEEndpoint); err != nil {
			return err
		}
		if err := validateEndpoint("message-endpoint", c.MessageEndpoint); err != nil {
			return err
		}
		if c.SSEEndpoint == c.MessageEndpoint {
			return fmt.Errorf("sse-endpoint and message-endpoint must differ (both %q)", c.SSEEndpoint)
		}
	case transportStreamableHTTP:
		if err := validateEndpoint("http-endpoint", c.HTTPEndpoint); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", c.Transport)
	}

	if c.HTTPAddr == "" {
		return fmt.Errorf("http-addr is required for the %s transport", c.Transport)
	}
	if c.MaxRequestBytes <= 0 {
		return fmt.Errorf("max-request-bytes must be positive, got %d", c.MaxRequestBytes)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == c.HTTPAddr {
		return fmt.Errorf("metrics-addr must differ from http-addr (both %q)", c.HTTPAddr)
	}
	return nil
}

func validateEndpoint(name, path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%s must start with '/', got %q", name, path)
	}
	return nil
}

// applyUpstreamOverrides copies explicitly set flags over the loaded Upgates
// configuration.
func (c ServeConfig) applyUpstreamOverrides(cfg *upgates.Config) {
	if c.Readonly != nil {
		cfg.ReadonlyMode = *c.Readonly
	}
	if c.Anonymize != nil {
		cfg.AnonymizeData = *c.Anonymize
	}
	if c.MaxListItems > 0 {
		cfg.MaxListItems = c.MaxListItems
	}
}

// loadServeEnvVars fills settings from environment variables for flags the
// user did not set explicitly.
func loadServeEnvVars(cmd *cobra.Command, config *ServeConfig) {
	if !cmd.Flags().Changed("transport") {
		if transport := os.Getenv("MCP_TRANSPORT"); transport != "" {
			config.Transport = transport
		}
	}
	if !cmd.Flags().Changed("http-addr") {
		if addr := os.Getenv("MCP_HTTP_ADDR"); addr != "" {
			config.HTTPAddr = addr
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			config.Metrics.Addr = addr
		}
	}
	if !cmd.Flags().Changed("log-format") {
		if format := os.Getenv("LOG_FORMAT"); format != "" {
			config.LogFormat = format
		}
	}
	if !cmd.Flags().Changed("enable-hsts") && os.Getenv("ENABLE_HSTS") == envValueTrue {
		config.EnableHSTS = true
	}
	if !cmd.Flags().Changed("max-request-bytes") {
		if n, ok := parseIntEnv(os.Getenv("MAX_REQUEST_BYTES"), "MAX_REQUEST_BYTES"); ok && n > 0 {
			config.MaxRequestBytes = int64(n)
		}
	}
	loadEnvIfEmpty(&config.ConfigFile, upgates.EnvConfigFile)
}

// loadEnvIfEmpty loads an environment variable into a string pointer if it's empty.
func loadEnvIfEmpty(target *string, envKey string) {
	if *target == "" {
		*target = os.Getenv(envKey)
	}
}

// parseIntEnv parses an integer from an environment variable value.
// Returns the parsed int and true if successful, or zero and false if parsing fails.
// Logs a warning if the value is present but invalid.
func parseIntEnv(value, envName string) (int, bool) {
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment", "name", envName, "value", value, "error", err)
		return 0, false
	}
	return n, true
}

// boolFlag returns a pointer to value when the flag was set explicitly.
func boolFlag(cmd *cobra.Command, name string, value bool) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}
