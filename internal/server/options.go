package server

import (
	"errors"

	"github.com/giantswarm/mcp-upgates/internal/instrumentation"
	"github.com/giantswarm/mcp-upgates/internal/logging"
)

// Option is a functional option for configuring ServerContext.
type Option func(*ServerContext) error

// WithGateway sets the Upgates API gateway for the ServerContext.
func WithGateway(gateway Gateway) Option {
	return func(sc *ServerContext) error {
		if gateway == nil {
			return ErrMissingGateway
		}
		sc.gateway = gateway
		return nil
	}
}

// WithLogger sets the logger for the ServerContext.
func WithLogger(logger Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrMissingLogger
		}
		sc.logger = logger
		return nil
	}
}

// WithConfig sets the configuration for the ServerContext.
func WithConfig(config *Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrMissingConfig
		}
		sc.config = config.Clone()
		return nil
	}
}

// WithServerName sets the server name in the configuration.
func WithServerName(name string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.ServerName = name
		return nil
	}
}

// WithReadonlyMode enables or disables readonly mode.
func WithReadonlyMode(enabled bool) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		if sc.config.Upgates == nil {
			sc.config.Upgates = NewDefaultConfig().Upgates
		}
		sc.config.Upgates.ReadonlyMode = enabled
		return nil
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.LogLevel = level
		return nil
	}
}

// WithInstrumentationProvider sets the OpenTelemetry instrumentation provider.
// This enables production-grade observability including metrics and tracing.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}

// Error definitions for ServerContext validation and operations.
var (
	ErrMissingGateway = errors.New("upgates gateway is required")
	ErrMissingLogger  = errors.New("logger is required")
	ErrMissingConfig  = errors.New("configuration is required")
	ErrServerShutdown = errors.New("server context has been shutdown")
)

// NewDefaultLogger returns a logger writing text records to standard error.
func NewDefaultLogger() Logger {
	return logging.DefaultLogger()
}
