// Package output shapes Upgates API responses before they are returned to an
// MCP client.
//
// Upgates list endpoints return pages of up to 100 fully expanded records,
// which easily exceeds an LLM context window. This package implements the two
// transformations applied to successful responses.
//
// # Anonymization
//
// [RedactionRule] decides which object keys hold personal data: a fixed set of
// Upgates field names (emails, phone numbers, names, addresses, tax and bank
// identifiers, notes) plus the substrings name, email, phone, address, street,
// city and zip. [RedactionRule.Apply] walks any JSON tree and replaces matching
// non-empty scalars with "***ANONYMIZED***". nil and empty strings are kept.
// The transformation is pure and idempotent.
//
// # List optimization
//
// Each known entity (orders, products, customers, invoices, categories, carts,
// payments, shipments) has a [Profile] that projects a record onto the fields
// an agent needs. [Optimize] keeps the first MaxItems records of a page,
// projects them and rebuilds the pagination envelope:
//
//	{
//	  "current_page": 1,
//	  "number_of_pages": 4,
//	  "number_of_items": 87,
//	  "mcp_limited_to": 15,
//	  "mcp_note": "Showing 15 of 25 items on this page. Use pagination or filters to see more.",
//	  "orders": [...],
//	  "current_page_items": 15
//	}
//
// mcp_note is always present. When nothing was dropped it reads
// "Showing N of N items on this page." without the pagination hint.
//
// # Usage Example
//
//	processor := output.NewProcessor(&output.Config{Anonymize: true, Optimize: true, MaxItems: 15}, nil)
//	result, meta := processor.Process(response.Data, "orders", true)
package output
