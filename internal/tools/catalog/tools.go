// Package catalog declares tools for categories, labels, availabilities,
// manufacturers, parameters, carts, vouchers and price lists.
package catalog

import (
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-upgates/internal/tools"
	"github.com/giantswarm/mcp-upgates/internal/validation"
)

const category = "catalog"

// CartWindow is how far back list_carts looks when the caller names
// neither a cart nor a start date.
const CartWindow = 7 * 24 * time.Hour

// cartDefaults limits abandoned cart listings to the recent window.
func cartDefaults(now time.Time, params map[string]any) map[string]any {
	if params["id"] != nil || params["creation_time_from"] != nil {
		return nil
	}
	return map[string]any{
		"creation_time_from": now.UTC().Add(-CartWindow).Format(time.DateOnly),
	}
}

// Operations returns the catalog tools.
func Operations() []tools.Operation {
	return []tools.Operation{
		{
			Name:           "list_categories",
			Description:    "List product categories with filtering and pagination",
			Category:       category,
			CollectionPath: "/categories",
			ItemPath:       "/categories/{code}",
			IDField:        "code",
			Defaults:       tools.PageDefaults(map[string]any{"active_yn": true}),
			Rules: validation.Rules{
				Pagination:  true,
				Dates:       []string{"last_update_time_from"},
				Identifiers: []string{"code", "category_id", "parent_id"},
			},
			Entity: "categories",
			Params: []mcp.ToolOption{
				mcp.WithString("code", mcp.Description("Specific category code")),
				mcp.WithNumber("category_id", mcp.Description("Specific category ID")),
				mcp.WithNumber("parent_id", mcp.Description("Filter by parent category ID")),
				mcp.WithBoolean("active_yn", mcp.Description("Filter by active status")),
				tools.LanguageParam(),
				tools.DateParam("last_update_time_from", "Filter categories updated from this date (YYYY-MM-DD)"),
				tools.PageParam(),
			},
		},
		{
			Name:           "create_categories",
			Description:    "Create one or more categories (max 100 per request)",
			Category:       category,
			Mutating:       true,
			Method:         http.MethodPost,
			CollectionPath: "/categories",
			Params: []mcp.ToolOption{
				tools.ObjectArrayParam("categories", "Array of categories to create", map[string]any{
					"code":         tools.Type("string"),
					"parent_code":  tools.Type("string"),
					"active_yn":    tools.Type("boolean"),
					"descriptions": tools.Type("array"),
				}, "descriptions"),
			},
		},
		{
			Name:           "list_labels",
			Description:    "List product labels",
			Category:       category,
			CollectionPath: "/labels",
			ItemPath:       "/labels/{id}",
			IDField:        "id",
			Rules:          validation.Rules{Pagination: true, Identifiers: []string{"id"}},
			Params: []mcp.ToolOption{
				mcp.WithNumber("id", mcp.Description("Specific label ID")),
				mcp.WithString("type",
					mcp.Description("Label type"),
					mcp.Enum("action", "new", "sale", "custom"),
				),
				tools.PageParam(),
			},
		},
		{
			Name:           "list_availabilities",
			Description:    "List product availability states",
			Category:       category,
			CollectionPath: "/availabilities",
			ItemPath:       "/availabilities/{id}",
			IDField:        "id",
			Rules:          validation.Rules{Pagination: true, Identifiers: []string{"id"}},
			Params: []mcp.ToolOption{
				mcp.WithNumber("id", mcp.Description("Specific availability ID")),
				mcp.WithString("type",
					mcp.Description("Availability type"),
					mcp.Enum("OnRequest", "NotAvailable", "InStock", "Custom"),
				),
				tools.PageParam(),
			},
		},
		{
			Name:           "list_manufacturers",
			Description:    "List product manufacturers",
			Category:       category,
			CollectionPath: "/manufacturers",
			ItemPath:       "/manufacturers/{id}",
			IDField:        "id",
			Rules:          validation.Rules{Pagination: true, Identifiers: []string{"id"}},
			Params: []mcp.ToolOption{
				mcp.WithNumber("id", mcp.Description("Specific manufacturer ID")),
				tools.PageParam(),
			},
		},
		{
			Name:           "list_parameters",
			Description:    "List product parameters",
			Category:       category,
			CollectionPath: "/parameters",
			ItemPath:       "/parameters/{id}",
			IDField:        "id",
			Rules:          validation.Rules{Pagination: true, Identifiers: []string{"id"}},
			Params: []mcp.ToolOption{
				mcp.WithNumber("id", mcp.Description("Specific parameter ID")),
				tools.PageParam(),
			},
		},
		{
			Name:           "list_carts",
			Description:    "List abandoned carts (defaults to the last 7 days)",
			Category:       category,
			Sensitive:      true,
			CollectionPath: "/carts",
			ItemPath:       "/carts/{id}",
			IDField:        "id",
			Defaults:       tools.PageDefaults(nil),
			DefaultsFunc:   cartDefaults,
			Rules: validation.Rules{
				Pagination:  true,
				Dates:       []string{"creation_time_from"},
				Identifiers: []string{"id"},
			},
			Entity: "carts",
			Params: []mcp.ToolOption{
				mcp.WithNumber("id", mcp.Description("Specific cart ID")),
				tools.DateParam("creation_time_from", "Filter carts created from this date (YYYY-MM-DD)"),
				tools.LanguageParam(),
				mcp.WithBoolean("filled_delivery_info_yn", mcp.Description("Filter carts with delivery info filled in")),
				mcp.WithBoolean("customer_logged_in_yn", mcp.Description("Filter carts of logged in customers")),
				tools.PageParam(),
			},
		},
		{
			Name:           "list_vouchers",
			Description:    "List discount vouchers",
			Category:       category,
			CollectionPath: "/vouchers",
			ItemPath:       "/vouchers/{voucher_code}",
			IDField:        "voucher_code",
			Defaults:       tools.PageDefaults(map[string]any{"active_yn": true}),
			Rules:          validation.Rules{Pagination: true, Identifiers: []string{"voucher_code"}},
			Params: []mcp.ToolOption{
				mcp.WithString("voucher_code", mcp.Description("Specific voucher code")),
				mcp.WithBoolean("active_yn", mcp.Description("Filter by active status")),
				mcp.WithBoolean("global_yn", mcp.Description("Filter by global vouchers")),
				tools.PageParam(),
			},
		},
		{
			Name:           "create_vouchers",
			Description:    "Generate discount vouchers",
			Category:       category,
			Mutating:       true,
			Method:         http.MethodPost,
			CollectionPath: "/vouchers",
			Params: []mcp.ToolOption{
				mcp.WithNumber("count", mcp.Description("Number of vouchers to generate"), mcp.Min(1)),
				mcp.WithString("type",
					mcp.Description("Voucher type"),
					mcp.Required(),
					mcp.Enum("price", "percentage", "payment_shipment"),
				),
				mcp.WithString("currency_id", mcp.Description("Currency code (ISO 4217)"), mcp.Required()),
				mcp.WithNumber("amount", mcp.Description("Discount amount"), mcp.Required()),
				mcp.WithBoolean("active_yn", mcp.Description("Create vouchers as active")),
				mcp.WithBoolean("global_yn", mcp.Description("Voucher is usable repeatedly")),
			},
		},
		{
			Name:           "list_pricelists",
			Description:    "List price lists",
			Category:       category,
			CollectionPath: "/pricelists",
		},
	}
}
