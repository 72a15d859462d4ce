package customers

import (
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-upgates/internal/tools"
	"github.com/giantswarm/mcp-upgates/internal/validation"
)

// Operations returns the customer tools.
func Operations() []tools.Operation {
	return []tools.Operation{
		{
			Name:           "list_customers",
			Description:    "List customers with filtering and pagination (max 100 items per page)",
			Category:       "customers",
			Sensitive:      true,
			CollectionPath: "/customers",
			Defaults: tools.PageDefaults(map[string]any{
				"active_yn":  true,
				"blocked_yn": false,
			}),
			Rules: validation.Rules{
				Pagination:  true,
				Dates:       []string{"last_update_time_from"},
				Identifiers: []string{"customer_id", "code"},
			},
			Entity: "customers",
			Params: []mcp.ToolOption{
				mcp.WithNumber("customer_id", mcp.Description("Specific customer ID")),
				mcp.WithString("code", mcp.Description("Specific customer code")),
				mcp.WithString("email", mcp.Description("Filter by email")),
				mcp.WithString("phone", mcp.Description("Filter by phone (MSISDN format)")),
				mcp.WithBoolean("active_yn", mcp.Description("Filter by active status")),
				mcp.WithBoolean("blocked_yn", mcp.Description("Filter by blocked status")),
				tools.LanguageParam(),
				mcp.WithString("pricelist", mcp.Description("Filter by price list code")),
				tools.DateParam("last_update_time_from", "Filter customers updated from this date (YYYY-MM-DD)"),
				tools.PageParam(),
			},
		},
		{
			Name:           "create_customers",
			Description:    "Create one or more customers (max 100 per request)",
			Category:       "customers",
			Mutating:       true,
			Method:         http.MethodPost,
			CollectionPath: "/customers",
			Params: []mcp.ToolOption{
				tools.ObjectArrayParam("customers", "Array of customers to create", map[string]any{
					"type": map[string]any{
						"type": "string",
						"enum": []string{"contact", "customer", "company"},
					},
					"firstname": tools.Type("string"),
					"surname":   tools.Type("string"),
					"language":  tools.Type("string"),
					"login":     tools.Type("object"),
				}, "type", "language", "login"),
			},
		},
	}
}
