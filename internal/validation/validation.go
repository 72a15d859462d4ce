// Package validation checks caller supplied tool parameters before any
// upstream request is made.
//
// Two layers exist. Validate applies the domain rules of an operation (dates,
// date ranges, pagination bounds, identifiers). SchemaValidator checks the
// same parameters against the JSON input schema advertised for the tool.
// Both report failures as *upgates.Error values of kind Validation so the
// dispatcher can return them unchanged.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/giantswarm/mcp-upgates/internal/upgates"
)

// Pagination bounds.
const (
	MinPage  = 1
	MinLimit = 1
	MaxLimit = 1000

	MaxIdentifierLength = 100
)

// maxExactFloat is the largest magnitude at which every integer is
// representable as a float64.
const maxExactFloat = 1 << 53

const dateLayout = "2006-01-02"

var noUpperBound = math.Inf(1)

var (
	datePattern       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Rules describes the checks applied to an operation's parameters. Every rule
// applies only to fields that are present and not nil.
type Rules struct {
	// Pagination checks page, limit and offset.
	Pagination bool

	// Dates lists fields that must hold a YYYY-MM-DD calendar date.
	Dates []string

	// DateRanges lists field prefixes such as "creation_time_". When both
	// <prefix>from and <prefix>to are present, from must not be after to.
	DateRanges []string

	// Identifiers lists fields that must be 1..100 characters of [A-Za-z0-9_-].
	Identifiers []string
}

// IsZero reports whether r performs no checks.
func (r Rules) IsZero() bool {
	return !r.Pagination && len(r.Dates) == 0 && len(r.DateRanges) == 0 && len(r.Identifiers) == 0
}

// Validate applies rules to params and returns the first failure.
func Validate(rules Rules, params map[string]any) error {
	if rules.Pagination {
		if err := validatePagination(params); err != nil {
			return err
		}
	}

	for _, field := range rules.Dates {
		if v, ok := present(params, field); ok {
			if _, err := parseDate(v, field); err != nil {
				return err
			}
		}
	}

	for _, prefix := range rules.DateRanges {
		if err := validateDateRange(params, prefix); err != nil {
			return err
		}
	}

	for _, field := range rules.Identifiers {
		if v, ok := present(params, field); ok {
			if err := validateIdentifier(v, field); err != nil {
				return err
			}
		}
	}

	return nil
}

func validatePagination(params map[string]any) error {
	if v, ok := present(params, "page"); ok {
		if err := checkRange(v, "page", MinPage, noUpperBound); err != nil {
			return err
		}
	}
	if v, ok := present(params, "limit"); ok {
		if err := checkRange(v, "limit", MinLimit, MaxLimit); err != nil {
			return err
		}
	}
	if v, ok := present(params, "offset"); ok {
		if err := checkRange(v, "offset", 0, noUpperBound); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(v any, field string, lo, hi float64) error {
	n, ok := toNumber(v)
	if !ok || math.IsNaN(n) {
		return upgates.NewValidationError(fmt.Sprintf("%s must be a number", field), field)
	}
	if n != math.Trunc(n) {
		return upgates.NewValidationError(fmt.Sprintf("%s must be an integer, got: %v", field, v), field)
	}
	if n < lo || n > hi {
		if math.IsInf(hi, 1) {
			return upgates.NewValidationError(fmt.Sprintf("%s must be at least %d, got: %v", field, int64(lo), v), field)
		}
		return upgates.NewValidationError(fmt.Sprintf("%s must be between %d and %d, got: %v", field, int64(lo), int64(hi), v), field)
	}
	return nil
}

func validateDateRange(params map[string]any, prefix string) error {
	fromField, toField := prefix+"from", prefix+"to"

	fromRaw, hasFrom := present(params, fromField)
	toRaw, hasTo := present(params, toField)

	var from, to time.Time
	var err error
	if hasFrom {
		if from, err = parseDate(fromRaw, fromField); err != nil {
			return err
		}
	}
	if hasTo {
		if to, err = parseDate(toRaw, toField); err != nil {
			return err
		}
	}

	if hasFrom && hasTo && from.After(to) {
		return upgates.NewValidationError(
			fmt.Sprintf("%s must be before or equal to %s", fromField, toField),
			prefix+"range",
		)
	}
	return nil
}

func parseDate(v any, field string) (time.Time, error) {
	s, ok := v.(string)
	if !ok || !datePattern.MatchString(s) {
		return time.Time{}, upgates.NewValidationError(
			fmt.Sprintf("Invalid date format for %s. Expected YYYY-MM-DD, got: %v", field, v), field)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, upgates.NewValidationError(
			fmt.Sprintf("Invalid date value for %s: %s", field, s), field)
	}
	return t, nil
}

func validateIdentifier(v any, field string) error {
	var s string
	switch id := v.(type) {
	case string:
		s = id
	case int:
		s = strconv.Itoa(id)
	case int64:
		s = strconv.FormatInt(id, 10)
	case json.Number:
		s = id.String()
	case float64:
		// Floats are only exact integers up to 2^53; beyond that the path
		// would carry a different number than the one validated here.
		if id != math.Trunc(id) || math.Abs(id) > maxExactFloat {
			return upgates.NewValidationError(
				fmt.Sprintf("Invalid %s format. Numeric identifiers must be whole numbers not exceeding %d", field, int64(maxExactFloat)), field)
		}
		s = strconv.FormatInt(int64(id), 10)
	default:
		return upgates.NewValidationError(fmt.Sprintf("%s must be a string", field), field)
	}

	if s == "" {
		return upgates.NewValidationError(fmt.Sprintf("%s is required", field), field)
	}
	if !identifierPattern.MatchString(s) {
		return upgates.NewValidationError(
			fmt.Sprintf("Invalid %s format. Must contain only alphanumeric characters, dashes, and underscores", field), field)
	}
	if len(s) > MaxIdentifierLength {
		return upgates.NewValidationError(
			fmt.Sprintf("%s length must be between 1 and %d characters, got: %d", field, MaxIdentifierLength, len(s)), field)
	}
	return nil
}

// present returns params[field] when it is set to a non-nil value.
func present(params map[string]any, field string) (any, bool) {
	v, ok := params[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
