// Package shop declares tools for shipping, payments, webhooks and shop
// level settings.
package shop

import (
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-upgates/internal/tools"
	"github.com/giantswarm/mcp-upgates/internal/validation"
)

const category = "shop"

var idRules = validation.Rules{Pagination: true, Identifiers: []string{"id", "code"}}

// Operations returns the shop tools.
func Operations() []tools.Operation {
	return []tools.Operation{
		{
			Name:           "list_shipments",
			Description:    "List shipping methods",
			Category:       category,
			CollectionPath: "/shipments",
			ItemPath:       "/shipments/{id}",
			IDField:        "id",
			Defaults:       tools.PageDefaults(nil),
			Rules:          idRules,
			Entity:         "shipments",
			Params: []mcp.ToolOption{
				mcp.WithNumber("id", mcp.Description("Specific shipment ID")),
				mcp.WithString("code", mcp.Description("Filter by shipment code")),
				mcp.WithString("type",
					mcp.Description("Shipment type"),
					mcp.Enum("custom", "ceskaPosta", "slovenskaPosta", "zasilkovna", "dpd", "ppl", "gls"),
				),
				tools.PageParam(),
			},
		},
		{
			Name:           "list_payments",
			Description:    "List payment methods",
			Category:       category,
			CollectionPath: "/payments",
			ItemPath:       "/payments/{id}",
			IDField:        "id",
			Defaults:       tools.PageDefaults(nil),
			Rules:          idRules,
			Entity:         "payments",
			Params: []mcp.ToolOption{
				mcp.WithNumber("id", mcp.Description("Specific payment ID")),
				mcp.WithString("code", mcp.Description("Filter by payment code")),
				mcp.WithString("type",
					mcp.Description("Payment type"),
					mcp.Enum("cash", "cashOnDelivery", "command", "paypal", "gopay", "stripe", "custom"),
				),
				tools.PageParam(),
			},
		},
		{
			Name:           "list_webhooks",
			Description:    "List registered webhooks",
			Category:       category,
			CollectionPath: "/webhooks",
			ItemPath:       "/webhooks/{id}",
			IDField:        "id",
			Rules:          validation.Rules{Identifiers: []string{"id"}},
			Params: []mcp.ToolOption{
				mcp.WithNumber("id", mcp.Description("Specific webhook ID")),
			},
		},
		{
			Name:           "create_webhook",
			Description:    "Register a webhook for a shop event",
			Category:       category,
			Mutating:       true,
			Method:         http.MethodPost,
			CollectionPath: "/webhooks",
			Params: []mcp.ToolOption{
				mcp.WithString("name", mcp.Description("Webhook name"), mcp.Required()),
				mcp.WithString("url", mcp.Description("Target URL receiving the event"), mcp.Required()),
				mcp.WithString("event", mcp.Description("Event name, see list_webhook_events"), mcp.Required()),
				mcp.WithBoolean("active_yn", mcp.Description("Create the webhook as active")),
			},
		},
		{
			Name:           "list_webhook_events",
			Description:    "List events a webhook can subscribe to",
			Category:       category,
			CollectionPath: "/webhooks/events",
		},
		{
			Name:           "get_languages",
			Description:    "Get languages enabled in the shop",
			Category:       category,
			CollectionPath: "/languages",
		},
		{
			Name:           "get_shop_config",
			Description:    "Get shop configuration",
			Category:       category,
			CollectionPath: "/config",
		},
		{
			Name:           "get_shop_owner",
			Description:    "Get shop owner details",
			Category:       category,
			Sensitive:      true,
			CollectionPath: "/owner",
		},
		{
			Name:           "get_api_status",
			Description:    "Get API status and remaining request limits",
			Category:       category,
			CollectionPath: "/status",
		},
	}
}
