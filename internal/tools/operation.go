package tools

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/giantswarm/mcp-upgates/internal/validation"
)

// Operation describes one MCP tool backed by a single Upgates endpoint.
// Operations are declared once at startup and never modified afterwards.
type Operation struct {
	Name        string
	Title       string
	Description string

	// Category groups operations in listings, e.g. "orders".
	Category string

	// Mutating operations create, change or delete shop data and are
	// rejected in readonly mode.
	Mutating bool

	// Destructive marks delete operations for the MCP destructive hint.
	Destructive bool

	// Sensitive operations return personal data; their responses are
	// anonymized when anonymization is enabled.
	Sensitive bool

	Method         string
	CollectionPath string

	// ItemPath is used instead of CollectionPath when IDField is supplied.
	// It contains the placeholder "{<IDField>}".
	ItemPath string
	IDField  string

	// Defaults are merged below the caller's parameters.
	Defaults map[string]any

	// DefaultsFunc computes defaults at call time. It sees the caller's
	// parameters so that it can skip defaults the caller overrides.
	DefaultsFunc func(now time.Time, params map[string]any) map[string]any

	Rules validation.Rules

	// Entity selects the list optimization profile. Empty disables optimization.
	Entity string

	// Params declare the tool's input schema.
	Params []mcp.ToolOption
}

var titleCaser = cases.Title(language.English)

// ToolTitle turns a tool name such as "list_orders" into "List Orders".
func ToolTitle(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// DisplayTitle returns Title, or a title derived from Name.
func (op *Operation) DisplayTitle() string {
	if op.Title != "" {
		return op.Title
	}
	return ToolTitle(op.Name)
}

// Tool builds the MCP tool definition, including annotations.
func (op *Operation) Tool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(op.Description),
		mcp.WithTitleAnnotation(op.DisplayTitle()),
		mcp.WithReadOnlyHintAnnotation(!op.Mutating),
		mcp.WithDestructiveHintAnnotation(op.Destructive),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	opts = append(opts, op.Params...)
	return mcp.NewTool(op.Name, opts...)
}

func (op *Operation) validate() error {
	if op.Name == "" {
		return fmt.Errorf("operation name is required")
	}
	switch op.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return fmt.Errorf("operation %q: unsupported method %q", op.Name, op.Method)
	}
	if op.CollectionPath == "" && op.ItemPath == "" {
		return fmt.Errorf("operation %q: a collection or item path is required", op.Name)
	}
	if op.IDField != "" && !strings.Contains(op.ItemPath, placeholder(op.IDField)) {
		return fmt.Errorf("operation %q: item path %q does not contain %s", op.Name, op.ItemPath, placeholder(op.IDField))
	}
	if op.IDField == "" && op.ItemPath != "" {
		return fmt.Errorf("operation %q: item path requires an id field", op.Name)
	}
	return nil
}

func placeholder(field string) string {
	return "{" + field + "}"
}

// Registry is the immutable set of operations exposed as MCP tools.
type Registry struct {
	ops   map[string]*Operation
	order []*Operation
}

// NewRegistry builds a registry from groups of operations. Operations keep
// their registration order. A missing Method defaults to GET.
func NewRegistry(groups ...[]Operation) (*Registry, error) {
	r := &Registry{ops: make(map[string]*Operation)}

	for _, group := range groups {
		for i := range group {
			op := group[i]
			if op.Method == "" {
				op.Method = http.MethodGet
			}
			if err := op.validate(); err != nil {
				return nil, err
			}
			if _, exists := r.ops[op.Name]; exists {
				return nil, fmt.Errorf("operation %q registered twice", op.Name)
			}
			r.ops[op.Name] = &op
			r.order = append(r.order, &op)
		}
	}

	return r, nil
}

// Lookup returns the operation registered under name.
func (r *Registry) Lookup(name string) (*Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Operations returns all operations in registration order.
func (r *Registry) Operations() []*Operation {
	out := make([]*Operation, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.order)
}

// MutatingNames returns the sorted names of all mutating operations.
func (r *Registry) MutatingNames() []string {
	var names []string
	for _, op := range r.order {
		if op.Mutating {
			names = append(names, op.Name)
		}
	}
	sort.Strings(names)
	return names
}
