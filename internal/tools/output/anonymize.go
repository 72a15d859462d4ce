package output

import (
	"strings"
)

// AnonymizedValue is the placeholder that replaces redacted personal data.
const AnonymizedValue = "***ANONYMIZED***"

// sensitiveFields lists Upgates field names that always carry personal or
// business identifying data.
var sensitiveFields = []string{
	// Email
	"email",
	"customer_email",

	// Phone
	"phone",
	"phoneNumber",
	"phone_number",
	"fax",

	// Names
	"firstname",
	"surname",
	"firstname_invoice",
	"surname_invoice",
	"firstname_postal",
	"surname_postal",
	"customer_name",
	"name",
	"company",
	"company_name",
	"company_postal",

	// Address
	"street",
	"street_invoice",
	"street_postal",
	"city",
	"city_invoice",
	"city_postal",
	"state",
	"state_invoice",
	"state_postal",
	"zip",
	"zip_invoice",
	"zip_postal",
	"zip_code",
	"address",

	// Business identifiers
	"ico",
	"dic",
	"company_number",
	"vat_number",

	// Personal identifiers and free text
	"customer_note",
	"internal_note",
	"note",
	"nickname",
	"degree",
	"salutation",
	"declension",

	// Codes and bank details
	"code",
	"customer_code",
	"im",
	"bank_account",
	"account_number",
	"iban",
	"swift",
	"specific_symbol",
	"variable_symbol",
}

// sensitivePatterns are lowercase substrings that mark a field as personal
// data regardless of the entity it belongs to.
var sensitivePatterns = []string{
	"name",
	"email",
	"phone",
	"address",
	"street",
	"city",
	"zip",
}

var defaultRule = NewRedactionRule(sensitiveFields, sensitivePatterns)

// RedactionRule decides which object keys hold personal data. A rule is
// immutable after construction and safe for concurrent use.
type RedactionRule struct {
	exact    map[string]struct{}
	patterns []string
}

// NewRedactionRule builds a rule from exact field names and case-insensitive
// substring patterns.
func NewRedactionRule(fields, patterns []string) *RedactionRule {
	r := &RedactionRule{
		exact:    make(map[string]struct{}, len(fields)),
		patterns: make([]string, 0, len(patterns)),
	}
	for _, f := range fields {
		r.exact[f] = struct{}{}
	}
	for _, p := range patterns {
		if p = strings.ToLower(p); p != "" {
			r.patterns = append(r.patterns, p)
		}
	}
	return r
}

// DefaultRedactionRule returns the rule covering Upgates customer, order and
// owner records.
func DefaultRedactionRule() *RedactionRule {
	return defaultRule
}

// Matches reports whether values stored under key must be redacted.
func (r *RedactionRule) Matches(key string) bool {
	if _, ok := r.exact[key]; ok {
		return true
	}
	lower := strings.ToLower(key)
	for _, p := range r.patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Anonymize applies the default rule to v.
func Anonymize(v any) any {
	return defaultRule.Apply(v)
}

// Apply returns a copy of v with every non-empty scalar stored under a
// matching key replaced by AnonymizedValue. Objects and arrays are walked at
// any depth. nil and empty strings are kept so that missing data stays
// distinguishable from redacted data. v itself is never modified.
func (r *RedactionRule) Apply(v any) any {
	return r.apply(v, false)
}

// apply walks v. sensitive is true when v is stored under a matching key.
func (r *RedactionRule) apply(v any, sensitive bool) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = r.apply(child, r.Matches(k))
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = r.apply(child, sensitive)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = r.apply(child, sensitive)
		}
		return out
	default:
		if sensitive && redactable(v) {
			return AnonymizedValue
		}
		return v
	}
}

func redactable(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok && s == "" {
		return false
	}
	return true
}
