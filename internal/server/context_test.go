package server

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-upgates/internal/upgates"
)

// stubGateway answers every request with an empty success response.
type stubGateway struct{}

func (g *stubGateway) Do(ctx context.Context, method, path string, query url.Values, body any) (*upgates.Response, error) {
	return &upgates.Response{Success: true}, nil
}

// breakerGateway additionally reports a circuit breaker state.
type breakerGateway struct {
	stubGateway
	state string
}

func (g *breakerGateway) BreakerState() string {
	return g.state
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestServerContext(t *testing.T, opts ...Option) *ServerContext {
	t.Helper()
	opts = append([]Option{WithGateway(&stubGateway{}), WithLogger(nopLogger{})}, opts...)
	sc, err := NewServerContext(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContext_Defaults(t *testing.T) {
	sc := newTestServerContext(t)

	cfg := sc.Config()
	require.NotNil(t, cfg)
	assert.Equal(t, "mcp-upgates", cfg.ServerName)
	assert.Equal(t, "info", cfg.LogLevel)
	require.NotNil(t, cfg.Upgates)
	assert.Equal(t, upgates.DefaultMaxListItems, cfg.Upgates.MaxListItems)
	assert.NotNil(t, sc.Gateway())
	assert.NotNil(t, sc.Logger())
	assert.Nil(t, sc.InstrumentationProvider())
	assert.NoError(t, sc.Context().Err())
}

func TestNewServerContext_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"missing gateway", nil, ErrMissingGateway},
		{"nil gateway", []Option{WithGateway(nil)}, ErrMissingGateway},
		{"nil logger", []Option{WithGateway(&stubGateway{}), WithLogger(nil)}, ErrMissingLogger},
		{"nil config", []Option{WithGateway(&stubGateway{}), WithConfig(nil)}, ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := NewServerContext(context.Background(), tt.opts...)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, sc)
		})
	}
}

func TestOptions(t *testing.T) {
	sc := newTestServerContext(t,
		WithServerName("shop-agent"),
		WithReadonlyMode(true),
		WithLogLevel("debug"),
	)

	cfg := sc.Config()
	assert.Equal(t, "shop-agent", cfg.ServerName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Upstream().ReadonlyMode)
}

func TestWithConfig_Clones(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Upgates.APIURL = "https://shop.admin.upgates.com/api/v2"

	sc := newTestServerContext(t, WithConfig(cfg))
	cfg.Upgates.APIURL = "mutated"
	cfg.ServerName = "mutated"

	assert.Equal(t, "https://shop.admin.upgates.com/api/v2", sc.Config().Upgates.APIURL)
	assert.Equal(t, "mcp-upgates", sc.Config().ServerName)
}

func TestConfig_Upstream(t *testing.T) {
	var nilConfig *Config
	assert.NotNil(t, nilConfig.Upstream())
	assert.NotNil(t, (&Config{}).Upstream())

	cfg := NewDefaultConfig()
	assert.Same(t, cfg.Upgates, cfg.Upstream())
	assert.Nil(t, nilConfig.Clone())
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)
	ctx := sc.Context()

	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	// Idempotent.
	assert.NoError(t, sc.Shutdown())
}
