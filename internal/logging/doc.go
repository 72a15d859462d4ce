// Package logging provides structured logging utilities for the mcp-upgates server.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "list_orders")
//	logger.Info("upstream request",
//	    logging.Method("GET"),
//	    logging.Path("/orders"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("client configured",
//	    logging.Host(cfg.APIURL),
//	    logging.LoginHash(cfg.APIUsername))
//
// # Security Considerations
//
//   - API logins are hashed so log lines can be correlated without exposing them
//   - Shop URLs have IP addresses redacted
//   - API keys are never logged; SanitizeSecret reports only their length
//   - Customer data from payloads is never logged
package logging
