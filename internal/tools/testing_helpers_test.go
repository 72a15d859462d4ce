package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-upgates/internal/instrumentation"
	"github.com/giantswarm/mcp-upgates/internal/logging"
	"github.com/giantswarm/mcp-upgates/internal/server"
	"github.com/giantswarm/mcp-upgates/internal/upgates"
	"github.com/giantswarm/mcp-upgates/internal/validation"
)

// fixedNow is the clock used by dispatcher tests.
var fixedNow = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

// recordedCall is one request seen by fakeGateway.
type recordedCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// fakeGateway records requests and answers with a canned response.
type fakeGateway struct {
	mu    sync.Mutex
	calls []recordedCall

	data any
	err  error
}

func (f *fakeGateway) Do(ctx context.Context, method, path string, query url.Values, body any) (*upgates.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, recordedCall{Method: method, Path: path, Query: query, Body: body})
	if err := ctx.Err(); err != nil {
		return nil, upgates.NewNetworkError(err.Error(), 0, "", err)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &upgates.Response{Success: true, Data: f.data}, nil
}

func (f *fakeGateway) Calls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// testOperations is a small catalog covering every operation shape.
func testOperations() []Operation {
	return []Operation{
		{
			Name:           "list_orders",
			Description:    "List orders",
			Category:       "orders",
			Sensitive:      true,
			CollectionPath: "/orders",
			ItemPath:       "/orders/{order_number}",
			IDField:        "order_number",
			Defaults:       map[string]any{"page": 1, "order_by": "creation_time", "order_dir": "desc"},
			Rules: validation.Rules{
				Pagination:  true,
				Dates:       []string{"creation_time_from", "creation_time_to"},
				DateRanges:  []string{"creation_time_"},
				Identifiers: []string{"order_number"},
			},
			Entity: "orders",
			Params: []mcp.ToolOption{
				mcp.WithString("order_number"),
				mcp.WithString("creation_time_from"),
				mcp.WithString("creation_time_to"),
				mcp.WithBoolean("paid_yn"),
				mcp.WithNumber("page", mcp.Min(1)),
				mcp.WithString("order_dir", mcp.Enum("asc", "desc")),
			},
		},
		{
			Name:        "get_order_history",
			Description: "Get history of specific order",
			Category:    "orders",
			Sensitive:   true,
			ItemPath:    "/orders/{order_number}/history",
			IDField:     "order_number",
			Rules:       validation.Rules{Identifiers: []string{"order_number"}},
			Params: []mcp.ToolOption{
				mcp.WithString("order_number", mcp.Required()),
			},
		},
		{
			Name:           "create_order",
			Description:    "Create orders",
			Category:       "orders",
			Mutating:       true,
			Method:         http.MethodPost,
			CollectionPath: "/orders",
			Params: []mcp.ToolOption{
				mcp.WithArray("orders", mcp.Required(), mcp.Items(map[string]any{"type": "object"})),
				mcp.WithBoolean("send_emails_yn"),
			},
		},
		{
			Name:           "delete_products",
			Description:    "Delete products",
			Category:       "products",
			Mutating:       true,
			Destructive:    true,
			Method:         http.MethodDelete,
			CollectionPath: "/products",
			ItemPath:       "/products/{code}",
			IDField:        "code",
			Rules:          validation.Rules{Identifiers: []string{"code"}},
			Params: []mcp.ToolOption{
				mcp.WithString("code"),
				mcp.WithString("codes"),
			},
		},
		{
			Name:           "list_carts",
			Description:    "List carts",
			Category:       "catalog",
			Sensitive:      true,
			CollectionPath: "/carts",
			ItemPath:       "/carts/{id}",
			IDField:        "id",
			Defaults:       map[string]any{"page": 1},
			DefaultsFunc: func(now time.Time, params map[string]any) map[string]any {
				if params["creation_time_from"] != nil || params["id"] != nil {
					return nil
				}
				return map[string]any{"creation_time_from": now.AddDate(0, 0, -7).Format("2006-01-02")}
			},
			Rules:  validation.Rules{Pagination: true, Identifiers: []string{"id"}},
			Entity: "carts",
			Params: []mcp.ToolOption{
				mcp.WithNumber("id"),
				mcp.WithString("creation_time_from"),
				mcp.WithNumber("page", mcp.Min(1)),
			},
		},
		{
			Name:           "get_languages",
			Description:    "Get languages",
			Category:       "shop",
			CollectionPath: "/languages",
		},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewRegistry(testOperations())
	require.NoError(t, err)
	return registry
}

func newTestDispatcher(t *testing.T, gw server.Gateway, opts Options) *Dispatcher {
	t.Helper()
	registry := newTestRegistry(t)

	if opts.Schemas == nil {
		schemas, err := CompileSchemas(registry)
		require.NoError(t, err)
		opts.Schemas = schemas
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return NewDispatcher(registry, gw, opts)
}

// ordersPayload builds an upstream orders page with n orders.
func ordersPayload(n int) map[string]any {
	orders := make([]any, n)
	for i := range orders {
		orders[i] = map[string]any{
			"order_number": fmt.Sprintf("2025%04d", i+1),
			"status":       "Received",
			"paid_date":    nil,
			"customer": map[string]any{
				"email":             fmt.Sprintf("customer%d@example.com", i+1),
				"firstname_invoice": "Jan",
				"surname_invoice":   "Novak",
			},
			"products": []any{
				map[string]any{"code": "MUG", "title": "Mug", "quantity": float64(1), "price": float64(199)},
			},
		}
	}
	return map[string]any{
		"current_page":       float64(1),
		"current_page_items": float64(n),
		"number_of_pages":    float64(1),
		"number_of_items":    float64(n),
		"orders":             orders,
	}
}

// auditBuffer returns a disabled instrumentation provider whose audit log
// is captured in the returned buffer.
func auditBuffer(t *testing.T) (*instrumentation.Provider, *bytes.Buffer) {
	t.Helper()
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:     "test",
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	provider.SetAuditLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return provider, &buf
}

func newTestServerContext(t *testing.T, gw server.Gateway, opts ...server.Option) *server.ServerContext {
	t.Helper()
	base := []server.Option{
		server.WithGateway(gw),
		server.WithLogger(logging.NewSlogAdapter(slog.New(slog.NewTextHandler(io.Discard, nil)))),
	}
	sc, err := server.NewServerContext(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func newTestRequest(name string, args map[string]any) mcp.CallToolRequest {
	if args == nil {
		args = map[string]any{}
	}
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	return request
}
