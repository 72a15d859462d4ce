package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/giantswarm/mcp-upgates/internal/upgates"
)

// Request is a fully resolved upstream call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// BuildRequest merges params over the operation defaults and resolves the
// endpoint. Parameters with a nil value are ignored. When the operation's
// IDField is supplied it is moved from the parameters into the item path.
// GET and DELETE send the merged parameters as the query string, POST and PUT
// as the JSON body.
func BuildRequest(op *Operation, params map[string]any, now time.Time) (Request, error) {
	merged := make(map[string]any, len(op.Defaults)+len(params))
	for k, v := range op.Defaults {
		merged[k] = v
	}
	if op.DefaultsFunc != nil {
		for k, v := range op.DefaultsFunc(now, params) {
			merged[k] = v
		}
	}
	for k, v := range params {
		if v != nil {
			merged[k] = v
		}
	}

	path := op.CollectionPath
	if op.IDField != "" {
		if id, ok := merged[op.IDField]; ok && !isBlank(id) {
			path = strings.Replace(op.ItemPath, placeholder(op.IDField), url.PathEscape(formatValue(id)), 1)
			delete(merged, op.IDField)
		} else if op.CollectionPath == "" {
			return Request{}, upgates.NewValidationError(fmt.Sprintf("%s is required", op.IDField), op.IDField)
		}
	}

	req := Request{Method: op.Method, Path: path}
	switch op.Method {
	case http.MethodGet, http.MethodDelete:
		req.Query = encodeQuery(merged)
	default:
		req.Body = merged
	}
	return req, nil
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && s == ""
}

// encodeQuery flattens params into query values. Arrays become repeated keys.
func encodeQuery(params map[string]any) url.Values {
	query := url.Values{}
	for k, v := range params {
		switch vv := v.(type) {
		case nil:
		case []any:
			for _, item := range vv {
				if item != nil {
					query.Add(k, formatValue(item))
				}
			}
		case []string:
			for _, item := range vv {
				query.Add(k, item)
			}
		default:
			query.Set(k, formatValue(v))
		}
	}
	return query
}

// formatValue renders a scalar the way the Upgates API expects it: booleans
// as true/false, integral numbers without decimals, objects as JSON.
func formatValue(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case bool:
		return strconv.FormatBool(vv)
	case float64:
		return formatFloat(vv)
	case float32:
		return formatFloat(float64(vv))
	case int:
		return strconv.Itoa(vv)
	case int32:
		return strconv.FormatInt(int64(vv), 10)
	case int64:
		return strconv.FormatInt(vv, 10)
	case json.Number:
		return vv.String()
	case fmt.Stringer:
		return vv.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// maxExactFloat is the largest magnitude at which every integer is
// representable as a float64.
const maxExactFloat = 1 << 53

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) <= maxExactFloat {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
