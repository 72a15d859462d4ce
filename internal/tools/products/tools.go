// Package products declares the product catalogue tools.
package products

import (
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-upgates/internal/tools"
	"github.com/giantswarm/mcp-upgates/internal/validation"
)

const category = "products"

// Operations returns the product tools.
func Operations() []tools.Operation {
	return []tools.Operation{
		{
			Name:           "list_products",
			Description:    "List products with filtering and pagination (max 100 items per page)",
			Category:       category,
			CollectionPath: "/products",
			ItemPath:       "/products/{code}",
			IDField:        "code",
			Defaults: tools.PageDefaults(map[string]any{
				"active_yn":   true,
				"variants_yn": false,
			}),
			Rules: validation.Rules{
				Pagination:  true,
				Dates:       []string{"last_update_time_from"},
				Identifiers: []string{"code", "product_id"},
			},
			Entity: "products",
			Params: []mcp.ToolOption{
				mcp.WithString("code", mcp.Description("Specific product code")),
				mcp.WithNumber("product_id", mcp.Description("Specific product ID")),
				tools.DateParam("last_update_time_from", "Filter products updated from this date (YYYY-MM-DD)"),
				mcp.WithBoolean("active_yn", mcp.Description("Filter by active status")),
				mcp.WithBoolean("archived_yn", mcp.Description("Filter by archived status")),
				mcp.WithBoolean("can_add_to_basket_yn", mcp.Description("Filter by purchasable status")),
				mcp.WithBoolean("in_stock_yn", mcp.Description("Filter by stock availability")),
				tools.LanguageParam(),
				mcp.WithString("pricelist", mcp.Description("Price list code")),
				mcp.WithBoolean("variants_yn", mcp.Description("Include product variants")),
				tools.PageParam(),
			},
		},
		{
			Name:           "list_products_simple",
			Description:    "List products in a compact format without descriptions",
			Category:       category,
			CollectionPath: "/products/simple",
			ItemPath:       "/products/{code}/simple",
			IDField:        "code",
			Defaults:       tools.PageDefaults(nil),
			Rules: validation.Rules{
				Pagination:  true,
				Dates:       []string{"last_update_time_from"},
				Identifiers: []string{"code", "product_id"},
			},
			Params: []mcp.ToolOption{
				mcp.WithString("code", mcp.Description("Specific product code")),
				mcp.WithNumber("product_id", mcp.Description("Specific product ID")),
				tools.DateParam("last_update_time_from", "Filter products updated from this date (YYYY-MM-DD)"),
				mcp.WithBoolean("active_yn", mcp.Description("Filter by active status")),
				mcp.WithBoolean("in_stock_yn", mcp.Description("Filter by stock availability")),
				tools.PageParam(),
			},
		},
		{
			Name:           "create_products",
			Description:    "Create one or more products (max 100 per request)",
			Category:       category,
			Mutating:       true,
			Method:         http.MethodPost,
			CollectionPath: "/products",
			Params: []mcp.ToolOption{
				tools.ObjectArrayParam("products", "Array of products to create", map[string]any{
					"code":         tools.Type("string"),
					"ean":          tools.Type("string"),
					"active_yn":    tools.Type("boolean"),
					"descriptions": tools.Type("array"),
					"stock":        tools.Type("number"),
					"availability": tools.Type("string"),
					"manufacturer": tools.Type("string"),
					"weight":       tools.Type("number"),
					"prices":       tools.Type("array"),
					"categories":   tools.Type("array"),
					"variants":     tools.Type("array"),
				}, "descriptions"),
			},
		},
		{
			Name:           "update_products",
			Description:    "Update stock, prices or availability of one or more products (max 100 per request)",
			Category:       category,
			Mutating:       true,
			Method:         http.MethodPut,
			CollectionPath: "/products",
			Params: []mcp.ToolOption{
				tools.ObjectArrayParam("products", "Array of products to update", map[string]any{
					"code":            tools.Type("string"),
					"active_yn":       tools.Type("boolean"),
					"stock":           tools.Type("number"),
					"stock_increment": tools.Type("number"),
					"availability":    tools.Type("string"),
					"prices":          tools.Type("array"),
				}, "code"),
			},
		},
		{
			Name:           "delete_products",
			Description:    "Delete one product by code or several products at once",
			Category:       category,
			Mutating:       true,
			Destructive:    true,
			Method:         http.MethodDelete,
			CollectionPath: "/products",
			ItemPath:       "/products/{code}",
			IDField:        "code",
			Rules:          validation.Rules{Identifiers: []string{"code"}},
			Params: []mcp.ToolOption{
				mcp.WithString("code", mcp.Description("Single product code to delete")),
				mcp.WithString("codes", mcp.Description("Multiple product codes separated by semicolon")),
			},
		},
	}
}
