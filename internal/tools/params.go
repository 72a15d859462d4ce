package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-upgates/internal/validation"
)

// DatePattern is the JSON schema pattern for YYYY-MM-DD parameters.
const DatePattern = `^\d{4}-\d{2}-\d{2}$`

// PageParam declares the standard 1-based page parameter.
func PageParam() mcp.ToolOption {
	return mcp.WithNumber("page",
		mcp.Description("Page number (starting from 1)"),
		mcp.Min(validation.MinPage),
	)
}

// DateParam declares a YYYY-MM-DD filter parameter.
func DateParam(name, description string) mcp.ToolOption {
	return mcp.WithString(name,
		mcp.Description(description),
		mcp.Pattern(DatePattern),
	)
}

// LanguageParam declares the ISO 639-1 language filter.
func LanguageParam() mcp.ToolOption {
	return mcp.WithString("language", mcp.Description("Filter by language (ISO 639-1)"))
}

// ObjectArrayParam declares a required array of objects with the given
// item properties and required item keys.
func ObjectArrayParam(name, description string, properties map[string]any, required ...string) mcp.ToolOption {
	items := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		items["required"] = required
	}
	return mcp.WithArray(name,
		mcp.Description(description),
		mcp.Required(),
		mcp.Items(items),
	)
}

// Type returns a JSON schema fragment for a property of the given type.
func Type(name string) map[string]any {
	return map[string]any{"type": name}
}

// PageDefaults returns the defaults shared by every paginated list.
func PageDefaults(extra map[string]any) map[string]any {
	defaults := map[string]any{"page": 1}
	for k, v := range extra {
		defaults[k] = v
	}
	return defaults
}
