// Package resources serves the read-only MCP resources describing the
// server, the Upgates API and the active configuration.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-upgates/internal/upgates"
)

// MIMEType is the content type of every resource.
const MIMEType = "application/json"

// Resource URIs.
const (
	URISystemInfo    = "upgates://system/info"
	URIEndpoints     = "upgates://api/endpoints"
	URIRateLimits    = "upgates://api/rate-limits"
	URIConfig        = "upgates://config/settings"
	URIDocumentation = "upgates://api/documentation"
)

// Definition describes one listed resource.
type Definition struct {
	URI         string
	Name        string
	Description string
}

// Definitions returns the resources in listing order.
func Definitions() []Definition {
	return []Definition{
		{URISystemInfo, "System Information", "Information about Upgates MCP server and capabilities"},
		{URIEndpoints, "API Endpoints Overview", "Overview of main Upgates API v2 endpoint groups"},
		{URIRateLimits, "API Rate Limits", "Information about API rate limiting and best practices"},
		{URIConfig, "Configuration Settings", "Current MCP server configuration (safe view)"},
		{URIDocumentation, "API Documentation Links", "Links to Upgates API documentation and resources"},
	}
}

// Info carries the runtime facts reported by the dynamic resources.
type Info struct {
	ServerName string
	Version    string
	ToolCount  int
	Config     *upgates.Config
}

// Provider renders resource contents.
type Provider struct {
	info   Info
	static *staticContent
}

// NewProvider loads the embedded static documents.
func NewProvider(info Info) (*Provider, error) {
	if info.Config == nil {
		info.Config = upgates.NewDefaultConfig()
	}
	static, err := loadStatic()
	if err != nil {
		return nil, err
	}
	return &Provider{info: info, static: static}, nil
}

// Read returns the JSON document for uri. Unknown URIs yield a NotFound
// error.
func (p *Provider) Read(ctx context.Context, uri string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var doc any
	switch uri {
	case URISystemInfo:
		doc = p.systemInfo()
	case URIEndpoints:
		doc = p.static.endpoints
	case URIRateLimits:
		doc = p.static.rateLimits
	case URIConfig:
		doc = p.configSettings()
	case URIDocumentation:
		doc = p.static.documentation
	default:
		return "", upgates.NewNotFoundError(fmt.Sprintf("Unknown resource: %s", uri))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode resource %s: %w", uri, err)
	}
	return string(data), nil
}

func (p *Provider) systemInfo() map[string]any {
	cfg := p.info.Config
	return map[string]any{
		"name":        p.info.ServerName,
		"version":     p.info.Version,
		"description": p.static.system["description"],
		"apiVersion":  p.static.system["apiVersion"],
		"apiBaseUrl":  cfg.APIURL,
		"features":    p.static.system["features"],
		"capabilities": map[string]any{
			"totalTools":     p.info.ToolCount,
			"totalResources": len(Definitions()),
			"anonymization":  cfg.AnonymizeData,
			"readonly":       cfg.ReadonlyMode,
			"optimization":   cfg.OptimizeResponses,
			"pagination":     "All list endpoints support pagination",
			"filtering":      "Advanced filtering on most endpoints",
			"bulkOperations": "Support for bulk create/update (max 100 items)",
		},
		"apiLimits": p.static.system["apiLimits"],
	}
}

func (p *Provider) configSettings() map[string]any {
	safe := p.info.Config.Safe()
	return map[string]any{
		"settings":       safe,
		"authentication": "HTTP Basic Authentication",
		"features": map[string]any{
			"dataAnonymization":    safe.AnonymizeData,
			"readonlyMode":         safe.ReadonlyMode,
			"responseOptimization": safe.OptimizeResponses,
			"multiLanguageSupport": true,
			"webhookSupport":       true,
			"bulkOperations":       true,
		},
		"limits": map[string]any{
			"timeout":            fmt.Sprintf("%dms (configurable)", safe.Timeout),
			"maxItemsPerRequest": 100,
			"maxListItems":       safe.MaxListItems,
		},
		"note": "Sensitive configuration values (username, password) are not shown for security",
	}
}

// Register adds every resource to s.
func (p *Provider) Register(s *mcpserver.MCPServer) {
	for _, def := range Definitions() {
		resource := mcp.NewResource(def.URI, def.Name,
			mcp.WithResourceDescription(def.Description),
			mcp.WithMIMEType(MIMEType),
		)
		s.AddResource(resource, p.handler)
	}
}

func (p *Provider) handler(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := p.Read(ctx, request.Params.URI)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: MIMEType,
			Text:     text,
		},
	}, nil
}
