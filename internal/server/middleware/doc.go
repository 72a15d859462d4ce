// Package middleware holds the HTTP middleware wrapped around the SSE and
// streamable HTTP transports: security headers, request size limits,
// request IDs and HTTP metrics.
package middleware
