package output

import (
	"sort"
)

// Field is one entry of a projected record. Path is read with Lookup unless
// Compute is set.
type Field struct {
	Name    string
	Path    string
	Compute func(item map[string]any) any
}

// Profile describes how list items of one entity are reduced.
type Profile struct {
	// Entity is the tag used by operations, e.g. "orders".
	Entity string

	// ArrayField is the payload key holding the items. It matches Entity for
	// every Upgates list endpoint.
	ArrayField string

	Fields []Field
}

// Project maps item onto the profile's fields. Missing values become nil.
func (p Profile) Project(item map[string]any) map[string]any {
	out := make(map[string]any, len(p.Fields))
	for _, f := range p.Fields {
		var v any
		if f.Compute != nil {
			v = f.Compute(item)
		} else {
			v = Lookup(item, f.Path)
		}
		out[f.Name] = deepCopyValue(v)
	}
	return out
}

// path is shorthand for a field read from the same key.
func path(name string) Field {
	return Field{Name: name, Path: name}
}

// at is shorthand for a renamed field.
func at(name, p string) Field {
	return Field{Name: name, Path: p}
}

func computed(name string, fn func(map[string]any) any) Field {
	return Field{Name: name, Compute: fn}
}

var profiles = buildProfiles(
	Profile{
		Entity: "orders",
		Fields: []Field{
			path("order_number"),
			path("status"),
			path("status_id"),
			path("creation_time"),
			computed("paid_yn", func(o map[string]any) any { return truthy(o["paid_date"]) }),
			path("paid_date"),
			path("order_total"),
			path("currency_id"),
			path("language_id"),
			path("tracking_code"),
			path("external_order_number"),
			computed("customer", func(o map[string]any) any {
				return Pick(o, "customer", "email", "phone", "firstname_invoice", "surname_invoice", "company", "customer_note")
			}),
			computed("products_count", func(o map[string]any) any { return Count(o, "products") }),
			computed("products_summary", func(o map[string]any) any {
				return Summarize(o, "products", "code", "title", "quantity", "price")
			}),
			computed("shipment", func(o map[string]any) any {
				return Pick(o, "shipment", "name", "type", "price", "affiliate_name")
			}),
			computed("payment", func(o map[string]any) any {
				return Pick(o, "payment", "name", "type", "price")
			}),
		},
	},
	Profile{
		Entity: "products",
		Fields: []Field{
			path("product_id"),
			path("code"),
			path("active_yn"),
			path("can_add_to_basket_yn"),
			path("stock"),
			path("availability"),
			path("manufacturer"),
			at("title", "descriptions[0].title"),
			at("url", "descriptions[0].url"),
			at("price_with_vat", "prices[0].pricelists[0].price_with_vat"),
			at("price_without_vat", "prices[0].pricelists[0].price_without_vat"),
			at("currency", "prices[0].currency"),
			computed("main_category", mainCategory),
			computed("variants_count", func(p map[string]any) any { return Count(p, "variants") }),
		},
	},
	Profile{
		Entity: "customers",
		Fields: []Field{
			path("customer_id"),
			path("email"),
			path("type"),
			path("firstname"),
			path("surname"),
			at("company", "company.name"),
			at("active_yn", "login.active_yn"),
			at("blocked_yn", "login.blocked_yn"),
			path("language"),
			path("pricelist"),
			path("turnover"),
			path("turnover_currency"),
		},
	},
	Profile{
		Entity: "invoices",
		Fields: []Field{
			path("invoice_number"),
			path("order_number"),
			path("type"),
			path("date_of_issuance"),
			path("date_of_expiration"),
			path("paid_yn"),
			path("paid_date"),
			path("total_with_vat"),
			path("currency_id"),
			path("variable_symbol"),
			at("customer_email", "customer.email"),
		},
	},
	Profile{
		Entity: "categories",
		Fields: []Field{
			path("category_id"),
			path("code"),
			path("parent_id"),
			path("active_yn"),
			path("type"),
			at("name", "descriptions[0].name"),
			at("url", "descriptions[0].url"),
		},
	},
	Profile{
		Entity: "carts",
		Fields: []Field{
			path("id"),
			path("uuid"),
			path("datetime"),
			path("language"),
			at("customer_email", "customer.email"),
			at("customer_logged_in_yn", "customer.customer_logged_in_yn"),
			at("filled_delivery_info_yn", "customer.filled_delivery_info_yn"),
			computed("products_count", func(c map[string]any) any { return Count(c, "products") }),
			computed("products_summary", func(c map[string]any) any {
				return Summarize(c, "products", "code", "quantity")
			}),
			at("shipment_name", "shipment.name"),
			at("payment_name", "payment.name"),
		},
	},
	Profile{
		Entity: "payments",
		Fields: []Field{
			path("id"),
			path("code"),
			path("type"),
			path("active_yn"),
			at("name", "descriptions[0].name"),
			at("description", "descriptions[0].description"),
			at("price", "descriptions[0].price"),
			at("price_type", "descriptions[0].price_type"),
			at("free_from", "descriptions[0].free_from"),
		},
	},
	Profile{
		Entity: "shipments",
		Fields: []Field{
			path("id"),
			path("code"),
			path("type"),
			path("active_yn"),
			path("affiliates"),
			at("name", "descriptions[0].name"),
			at("description", "descriptions[0].description"),
			at("price", "descriptions[0].price"),
			at("free_from", "descriptions[0].free_from"),
		},
	},
)

func buildProfiles(list ...Profile) map[string]Profile {
	m := make(map[string]Profile, len(list))
	for _, p := range list {
		if p.ArrayField == "" {
			p.ArrayField = p.Entity
		}
		m[p.Entity] = p
	}
	return m
}

// LookupProfile returns the profile registered for entity.
func LookupProfile(entity string) (Profile, bool) {
	p, ok := profiles[entity]
	return p, ok
}

// Entities returns the sorted list of entities with an optimization profile.
func Entities() []string {
	out := make([]string, 0, len(profiles))
	for e := range profiles {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// mainCategory returns the code of the category flagged main_yn, falling back
// to the first category.
func mainCategory(product map[string]any) any {
	categories, _ := Lookup(product, "categories").([]any)
	for _, c := range categories {
		if m, ok := c.(map[string]any); ok && truthy(m["main_yn"]) {
			return m["code"]
		}
	}
	return Lookup(product, "categories[0].code")
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return true
	}
}
