// Package cmd provides the command-line interface for mcp-upgates.
//
// This package implements a Cobra-based CLI with multiple subcommands:
//   - serve: Starts the MCP server (default behavior when no subcommand is provided)
//   - tools: Lists the MCP tools and the Upgates endpoints they call
//   - version: Displays the application version
//   - self-update: Updates the binary to the latest version from GitHub releases
//
// Command Structure:
//
//	mcp-upgates [flags]                 # Starts the MCP server (default)
//	mcp-upgates serve [flags]           # Explicitly starts the MCP server
//	mcp-upgates tools [--category c]    # Lists registered tools
//	mcp-upgates version                 # Shows version information
//	mcp-upgates self-update             # Updates to latest release
//
// The serve command supports multiple transport options:
//   - stdio: Standard input/output (default) - for command-line integration
//   - sse: Server-Sent Events over HTTP - for web-based clients
//   - streamable-http: Streamable HTTP transport - for HTTP-based integration
//
// Transport Configuration Examples:
//
//	mcp-upgates serve --transport stdio
//	mcp-upgates serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	mcp-upgates serve --transport streamable-http --http-addr :9000 --http-endpoint /mcp
//
// The Upgates connection comes from UPGATES_* environment variables, optionally
// layered over a YAML file (--config). The HTTP transports also serve
// /healthz, /readyz and /healthz/detailed; Prometheus metrics are served on a
// separate listener (--metrics-addr) when INSTRUMENTATION_ENABLED=true.
package cmd
