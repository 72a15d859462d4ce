package cmd

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-upgates/internal/upgates"
)

func validHTTPConfig() ServeConfig {
	return ServeConfig{
		Transport:       transportStreamableHTTP,
		HTTPAddr:        ":8080",
		SSEEndpoint:     "/sse",
		MessageEndpoint: "/message",
		HTTPEndpoint:    "/mcp",
		MaxRequestBytes: 1024,
		Metrics:         MetricsServeConfig{Enabled: true, Addr: ":9090"},
	}
}

func TestServeConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServeConfig)
		wantErr string
	}{
		{name: "streamable http"},
		{name: "sse", mutate: func(c *ServeConfig) { c.Transport = transportSSE }},
		{
			name:   "stdio ignores http settings",
			mutate: func(c *ServeConfig) { c.Transport = transportStdio; c.HTTPAddr = ""; c.MaxRequestBytes = 0 },
		},
		{
			name:    "unknown transport",
			mutate:  func(c *ServeConfig) { c.Transport = "grpc" },
			wantErr: "unsupported transport type: grpc",
		},
		{
			name:    "relative http endpoint",
			mutate:  func(c *ServeConfig) { c.HTTPEndpoint = "mcp" },
			wantErr: "http-endpoint must start with '/'",
		},
		{
			name:    "sse endpoints collide",
			mutate:  func(c *ServeConfig) { c.Transport = transportSSE; c.MessageEndpoint = "/sse" },
			wantErr: "must differ",
		},
		{
			name:    "relative message endpoint",
			mutate:  func(c *ServeConfig) { c.Transport = transportSSE; c.MessageEndpoint = "message" },
			wantErr: "message-endpoint must start with '/'",
		},
		{
			name:    "missing address",
			mutate:  func(c *ServeConfig) { c.HTTPAddr = "" },
			wantErr: "http-addr is required",
		},
		{
			name:    "non-positive body limit",
			mutate:  func(c *ServeConfig) { c.MaxRequestBytes = 0 },
			wantErr: "max-request-bytes must be positive",
		},
		{
			name:    "metrics on the MCP listener",
			mutate:  func(c *ServeConfig) { c.Metrics.Addr = ":8080" },
			wantErr: "metrics-addr must differ",
		},
		{
			name:   "metrics disabled may share the address",
			mutate: func(c *ServeConfig) { c.Metrics = MetricsServeConfig{Addr: ":8080"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validHTTPConfig()
			if tt.mutate != nil {
				tt.mutate(&config)
			}
			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyUpstreamOverrides(t *testing.T) {
	on, off := true, false

	cfg := upgates.NewDefaultConfig()
	cfg.ReadonlyMode = false
	cfg.AnonymizeData = true

	ServeConfig{Readonly: &on, Anonymize: &off, MaxListItems: 50}.applyUpstreamOverrides(cfg)
	assert.True(t, cfg.ReadonlyMode)
	assert.False(t, cfg.AnonymizeData)
	assert.Equal(t, 50, cfg.MaxListItems)

	untouched := upgates.NewDefaultConfig()
	untouched.AnonymizeData = true
	ServeConfig{}.applyUpstreamOverrides(untouched)
	assert.True(t, untouched.AnonymizeData)
	assert.Equal(t, upgates.DefaultMaxListItems, untouched.MaxListItems)
}

func TestLoadServeEnvVars(t *testing.T) {
	t.Setenv("MCP_TRANSPORT", "sse")
	t.Setenv("MCP_HTTP_ADDR", ":7000")
	t.Setenv("METRICS_ADDR", ":7001")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("ENABLE_HSTS", "true")
	t.Setenv("MAX_REQUEST_BYTES", "2048")
	t.Setenv("UPGATES_CONFIG_FILE", "/etc/mcp-upgates/config.yaml")

	t.Run("environment fills unset flags", func(t *testing.T) {
		cmd := newServeCmd()
		require.NoError(t, cmd.ParseFlags(nil))

		config := ServeConfig{Transport: transportStdio, HTTPAddr: ":8080"}
		loadServeEnvVars(cmd, &config)

		assert.Equal(t, transportSSE, config.Transport)
		assert.Equal(t, ":7000", config.HTTPAddr)
		assert.Equal(t, ":7001", config.Metrics.Addr)
		assert.Equal(t, "json", config.LogFormat)
		assert.True(t, config.EnableHSTS)
		assert.Equal(t, int64(2048), config.MaxRequestBytes)
		assert.Equal(t, "/etc/mcp-upgates/config.yaml", config.ConfigFile)
	})

	t.Run("explicit flags win", func(t *testing.T) {
		cmd := newServeCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--transport", "stdio", "--http-addr", ":9999", "--config", "local.yaml"}))

		config := ServeConfig{Transport: transportStdio, HTTPAddr: ":9999", ConfigFile: "local.yaml"}
		loadServeEnvVars(cmd, &config)

		assert.Equal(t, transportStdio, config.Transport)
		assert.Equal(t, ":9999", config.HTTPAddr)
		assert.Equal(t, "local.yaml", config.ConfigFile)
	})
}

func TestParseIntEnv(t *testing.T) {
	n, ok := parseIntEnv("42", "TEST")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = parseIntEnv("", "TEST")
	assert.False(t, ok)

	_, ok = parseIntEnv("forty-two", "TEST")
	assert.False(t, ok)
}

func TestRunServe_MissingCredentials(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	for _, key := range []string{upgates.EnvAPIURL, upgates.EnvAPIUsername, upgates.EnvAPIPassword, upgates.EnvConfigFile} {
		t.Setenv(key, "")
	}

	err := runServe(ServeConfig{Transport: transportStdio})
	require.Error(t, err)
	assert.Equal(t, upgates.KindConfiguration, upgates.KindOf(err))
	assert.Contains(t, err.Error(), upgates.EnvAPIURL)
}
