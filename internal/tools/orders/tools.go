// Package orders declares the order, order status and invoice tools.
package orders

import (
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-upgates/internal/tools"
	"github.com/giantswarm/mcp-upgates/internal/validation"
)

const category = "orders"

var creationRange = validation.Rules{
	Pagination:  true,
	Dates:       []string{"creation_time_from", "creation_time_to", "last_update_time_from"},
	DateRanges:  []string{"creation_time_"},
	Identifiers: []string{"order_number"},
}

// Operations returns the order tools.
func Operations() []tools.Operation {
	return []tools.Operation{
		{
			Name:           "list_orders",
			Description:    "List orders with filtering and pagination (max 100 items per page)",
			Category:       category,
			Sensitive:      true,
			CollectionPath: "/orders",
			ItemPath:       "/orders/{order_number}",
			IDField:        "order_number",
			Defaults: tools.PageDefaults(map[string]any{
				"order_by":  "creation_time",
				"order_dir": "desc",
			}),
			Rules:  creationRange,
			Entity: "orders",
			Params: []mcp.ToolOption{
				mcp.WithString("order_number", mcp.Description("Specific order number")),
				tools.DateParam("creation_time_from", "Filter orders created from this date (YYYY-MM-DD)"),
				tools.DateParam("creation_time_to", "Filter orders created to this date (YYYY-MM-DD)"),
				tools.DateParam("last_update_time_from", "Filter orders updated from this date (YYYY-MM-DD)"),
				mcp.WithBoolean("paid_yn", mcp.Description("Filter by paid status")),
				mcp.WithString("status", mcp.Description("Filter by order status name")),
				mcp.WithNumber("status_id", mcp.Description("Filter by order status ID")),
				mcp.WithString("email", mcp.Description("Filter by customer email")),
				mcp.WithString("phone", mcp.Description("Filter by customer phone (MSISDN format)")),
				mcp.WithString("external_order_number", mcp.Description("Filter by external order number")),
				tools.LanguageParam(),
				tools.PageParam(),
				mcp.WithString("order_by",
					mcp.Description("Order by field"),
					mcp.Enum("creation_time", "last_update_time"),
				),
				mcp.WithString("order_dir",
					mcp.Description("Sort direction"),
					mcp.Enum("asc", "desc"),
				),
			},
		},
		{
			Name:           "create_order",
			Description:    "Create one or more orders (max 100 per request)",
			Category:       category,
			Mutating:       true,
			Method:         http.MethodPost,
			CollectionPath: "/orders",
			Params: []mcp.ToolOption{
				mcp.WithBoolean("send_emails_yn", mcp.Description("Send emails for order status (default: true)")),
				mcp.WithBoolean("send_sms_yn", mcp.Description("Send SMS for order status (default: true)")),
				tools.ObjectArrayParam("orders", "Array of orders to create", map[string]any{
					"external_order_number": tools.Type("string"),
					"language_id":           tools.Type("string"),
					"status":                tools.Type("string"),
					"status_id":             tools.Type("number"),
					"customer":              tools.Type("object"),
					"products":              tools.Type("array"),
					"shipment":              tools.Type("object"),
					"payment":               tools.Type("object"),
				}, "language_id", "customer", "products"),
			},
		},
		{
			Name:           "update_orders",
			Description:    "Update one or more orders (max 100 per request)",
			Category:       category,
			Mutating:       true,
			Method:         http.MethodPut,
			CollectionPath: "/orders",
			Params: []mcp.ToolOption{
				mcp.WithBoolean("send_emails_yn", mcp.Description("Send emails on status change (default: true)")),
				mcp.WithBoolean("send_sms_yn", mcp.Description("Send SMS on status change (default: true)")),
				mcp.WithBoolean("delete_missing_products_yn", mcp.Description("Delete products not included in request (default: false)")),
				tools.ObjectArrayParam("orders", "Array of orders to update", map[string]any{
					"order_number":  tools.Type("string"),
					"status":        tools.Type("string"),
					"status_id":     tools.Type("number"),
					"tracking_code": tools.Type("string"),
					"paid_date":     tools.Type("string"),
				}, "order_number"),
			},
		},
		{
			Name:           "delete_orders",
			Description:    "Delete one or more orders",
			Category:       category,
			Mutating:       true,
			Destructive:    true,
			Method:         http.MethodDelete,
			CollectionPath: "/orders",
			Rules:          validation.Rules{Identifiers: []string{"order_number"}},
			Params: []mcp.ToolOption{
				mcp.WithString("order_number", mcp.Description("Single order number to delete")),
				mcp.WithString("order_numbers", mcp.Description("Multiple order numbers separated by semicolon")),
			},
		},
		{
			Name:        "get_order_history",
			Description: "Get history of specific order",
			Category:    category,
			Sensitive:   true,
			ItemPath:    "/orders/{order_number}/history",
			IDField:     "order_number",
			Rules:       validation.Rules{Identifiers: []string{"order_number"}},
			Params: []mcp.ToolOption{
				mcp.WithString("order_number", mcp.Description("Order number"), mcp.Required()),
			},
		},
		{
			Name:           "list_order_statuses",
			Description:    "List all order statuses",
			Category:       category,
			CollectionPath: "/order-statuses",
			ItemPath:       "/order-statuses/{id}",
			IDField:        "id",
			Rules:          validation.Rules{Identifiers: []string{"id"}},
			Params: []mcp.ToolOption{
				mcp.WithNumber("id", mcp.Description("Specific status ID")),
				mcp.WithString("type",
					mcp.Description("Status type"),
					mcp.Enum("Received", "Canceled", "Sent", "PaymentSuccessful", "PaymentFailed", "Custom"),
				),
			},
		},
		{
			Name:           "create_order_status",
			Description:    "Create new order status",
			Category:       category,
			Mutating:       true,
			Method:         http.MethodPost,
			CollectionPath: "/order-statuses",
			Params: []mcp.ToolOption{
				mcp.WithString("color", mcp.Description("Color in HTML HEX format")),
				tools.ObjectArrayParam("descriptions", "Status names in different languages", map[string]any{
					"language_id": tools.Type("string"),
					"name":        tools.Type("string"),
				}, "language_id", "name"),
				mcp.WithBoolean("mark_resolved_yn", mcp.Description("Mark order as resolved")),
				mcp.WithBoolean("mark_paid_yn", mcp.Description("Mark order as paid")),
			},
		},
		{
			Name:           "list_invoices",
			Description:    "List invoices with filtering and pagination (max 100 items per page)",
			Category:       category,
			Sensitive:      true,
			CollectionPath: "/invoices",
			ItemPath:       "/invoices/{invoice_number}",
			IDField:        "invoice_number",
			Defaults:       tools.PageDefaults(nil),
			Rules: validation.Rules{
				Pagination:  true,
				Dates:       []string{"creation_time_from", "creation_time_to"},
				DateRanges:  []string{"creation_time_"},
				Identifiers: []string{"invoice_number"},
			},
			Entity: "invoices",
			Params: []mcp.ToolOption{
				mcp.WithString("invoice_number", mcp.Description("Specific invoice number")),
				tools.DateParam("creation_time_from", "Filter invoices created from this date (YYYY-MM-DD)"),
				tools.DateParam("creation_time_to", "Filter invoices created to this date (YYYY-MM-DD)"),
				mcp.WithBoolean("paid_yn", mcp.Description("Filter by paid status")),
				mcp.WithString("type",
					mcp.Description("Invoice type"),
					mcp.Enum("invoice", "creditNote", "receipt"),
				),
				tools.PageParam(),
			},
		},
	}
}
