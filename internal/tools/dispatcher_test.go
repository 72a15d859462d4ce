package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/giantswarm/mcp-upgates/internal/tools/output"
	"github.com/giantswarm/mcp-upgates/internal/upgates"
)

func TestDispatcher_UnknownTool(t *testing.T) {
	gw := &fakeGateway{}
	d := newTestDispatcher(t, gw, Options{Readonly: true})

	_, err := d.Invoke(context.Background(), "list_everything", map[string]any{"page": float64(0)})
	require.Error(t, err)

	e := upgates.AsError(err)
	assert.Equal(t, upgates.KindNotFound, e.Kind)
	assert.Equal(t, "Unknown tool: list_everything", e.Message)
	assert.Empty(t, gw.Calls())
}

func TestDispatcher_ReadonlyBlocksMutations(t *testing.T) {
	for _, name := range []string{"create_order", "delete_products"} {
		t.Run(name, func(t *testing.T) {
			gw := &fakeGateway{}
			d := newTestDispatcher(t, gw, Options{Readonly: true})

			// Invalid params must not matter: the gate runs first.
			_, err := d.Invoke(context.Background(), name, map[string]any{"code": "../etc"})
			require.Error(t, err)

			e := upgates.AsError(err)
			assert.Equal(t, upgates.KindReadonly, e.Kind)
			assert.Equal(t, name, e.Operation)
			assert.Contains(t, e.Error(), "ReadonlyError [READONLY_MODE]")
			assert.Empty(t, gw.Calls(), "readonly gate must not reach the upstream")
		})
	}
}

func TestDispatcher_ReadonlyAllowsReads(t *testing.T) {
	gw := &fakeGateway{data: map[string]any{"languages": []any{"cs"}}}
	d := newTestDispatcher(t, gw, Options{Readonly: true})

	got, err := d.Invoke(context.Background(), "get_languages", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"languages": []any{"cs"}}, got)
	assert.Len(t, gw.Calls(), 1)
}

func TestDispatcher_MutationsAllowedWhenWritable(t *testing.T) {
	gw := &fakeGateway{data: map[string]any{"orders": []any{map[string]any{"order_number": "2025001", "created_yn": true}}}}
	d := newTestDispatcher(t, gw, Options{})

	params := map[string]any{"orders": []any{map[string]any{"language_id": "cs"}}}
	_, err := d.Invoke(context.Background(), "create_order", params)
	require.NoError(t, err)

	calls := gw.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/orders", calls[0].Path)
	assert.Equal(t, params, calls[0].Body)
}

func TestDispatcher_ValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		tool      string
		params    map[string]any
		wantField string
	}{
		{
			name:      "page zero",
			tool:      "list_orders",
			params:    map[string]any{"page": float64(0)},
			wantField: "page",
		},
		{
			name:      "inverted date range",
			tool:      "list_orders",
			params:    map[string]any{"creation_time_from": "2025-12-31", "creation_time_to": "2025-01-01"},
			wantField: "creation_time_range",
		},
		{
			name:      "malformed date",
			tool:      "list_orders",
			params:    map[string]any{"creation_time_from": "31.12.2025"},
			wantField: "creation_time_from",
		},
		{
			name:      "path traversal identifier",
			tool:      "get_order_history",
			params:    map[string]any{"order_number": "../config"},
			wantField: "order_number",
		},
		{
			name:      "missing required parameter",
			tool:      "get_order_history",
			params:    map[string]any{},
			wantField: "order_number",
		},
		{
			name:      "enum violation",
			tool:      "list_orders",
			params:    map[string]any{"order_dir": "sideways"},
			wantField: "order_dir",
		},
		{
			name:      "wrong type",
			tool:      "list_orders",
			params:    map[string]any{"paid_yn": "yes"},
			wantField: "paid_yn",
		},
		{
			name:      "required array missing",
			tool:      "create_order",
			params:    map[string]any{"send_emails_yn": true},
			wantField: "orders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			d := newTestDispatcher(t, gw, Options{})

			_, err := d.Invoke(context.Background(), tt.tool, tt.params)
			require.Error(t, err)

			e := upgates.AsError(err)
			assert.Equal(t, upgates.KindValidation, e.Kind, e.Error())
			assert.Equal(t, tt.wantField, e.Field)
			assert.Empty(t, gw.Calls(), "validation failures must not reach the upstream")
		})
	}
}

func TestDispatcher_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind upgates.Kind
	}{
		{"rate limit", upgates.NewRateLimitError("", 120), upgates.KindRateLimit},
		{"authentication", upgates.NewAuthenticationError("", 401), upgates.KindAuthentication},
		{"server error", upgates.NewNetworkError("boom", 500, "{}", nil), upgates.KindNetwork},
		{"foreign error", errors.New("socket closed"), upgates.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{err: tt.err}
			d := newTestDispatcher(t, gw, Options{Output: &output.Config{Anonymize: true, Optimize: true}})

			got, err := d.Invoke(context.Background(), "list_orders", nil)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, tt.wantKind, upgates.KindOf(err))
		})
	}

	t.Run("retry after is preserved", func(t *testing.T) {
		gw := &fakeGateway{err: upgates.NewRateLimitError("", 120)}
		d := newTestDispatcher(t, gw, Options{})

		_, err := d.Invoke(context.Background(), "list_orders", nil)
		assert.Equal(t, 120, upgates.AsError(err).RetryAfter)
		assert.Contains(t, err.Error(), "(retry after: 120s)")
	})
}

func TestDispatcher_ContextCancelled(t *testing.T) {
	gw := &fakeGateway{}
	d := newTestDispatcher(t, gw, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Invoke(ctx, "get_languages", nil)
	require.Error(t, err)
	assert.Equal(t, upgates.KindNetwork, upgates.KindOf(err))
}

func TestDispatcher_PostProcessing(t *testing.T) {
	tests := []struct {
		name          string
		tool          string
		output        *output.Config
		wantOrders    int
		wantNote      string
		wantAnonymize bool
	}{
		{
			name:          "anonymize and optimize",
			tool:          "list_orders",
			output:        &output.Config{Anonymize: true, Optimize: true, MaxItems: 15},
			wantOrders:    15,
			wantNote:      "Showing 15 of 25 items on this page. Use pagination or filters to see more.",
			wantAnonymize: true,
		},
		{
			name:       "optimize only",
			tool:       "list_orders",
			output:     &output.Config{Optimize: true, MaxItems: 15},
			wantOrders: 15,
			wantNote:   "Showing 15 of 25 items on this page. Use pagination or filters to see more.",
		},
		{
			name:          "anonymize only",
			tool:          "list_orders",
			output:        &output.Config{Anonymize: true, MaxItems: 15},
			wantOrders:    25,
			wantAnonymize: true,
		},
		{
			name:       "limit above page size",
			tool:       "list_orders",
			output:     &output.Config{Optimize: true, MaxItems: 50},
			wantOrders: 25,
			wantNote:   "Showing 25 of 25 items on this page.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{data: ordersPayload(25)}
			d := newTestDispatcher(t, gw, Options{Output: tt.output})

			got, err := d.Invoke(context.Background(), tt.tool, nil)
			require.NoError(t, err)

			page := got.(map[string]any)
			orders := page["orders"].([]any)
			assert.Len(t, orders, tt.wantOrders)

			note, hasNote := page[output.KeyNote]
			if tt.wantNote == "" {
				assert.False(t, hasNote, "unoptimized pages carry no note")
			} else {
				assert.Equal(t, tt.wantNote, note)
				assert.Equal(t, tt.wantOrders, page[output.KeyCurrentPageItems])
			}

			customer := orders[0].(map[string]any)["customer"].(map[string]any)
			if tt.wantAnonymize {
				assert.Equal(t, output.AnonymizedValue, customer["email"])
			} else {
				assert.Equal(t, "customer1@example.com", customer["email"])
			}
		})
	}
}

func TestDispatcher_AnonymizesOnlySensitiveOperations(t *testing.T) {
	data := map[string]any{"languages": []any{map[string]any{"code": "cs", "name": "Czech"}}}
	gw := &fakeGateway{data: data}
	d := newTestDispatcher(t, gw, Options{Output: &output.Config{Anonymize: true, Optimize: true}})

	got, err := d.Invoke(context.Background(), "get_languages", nil)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDispatcher_CustomRedaction(t *testing.T) {
	gw := &fakeGateway{data: map[string]any{"history": []any{map[string]any{"token": "abc", "email": "a@b.cz"}}}}
	d := newTestDispatcher(t, gw, Options{
		Output:    &output.Config{Anonymize: true},
		Redaction: output.NewRedactionRule([]string{"token"}, nil),
	})

	got, err := d.Invoke(context.Background(), "get_order_history", map[string]any{"order_number": "2025001"})
	require.NoError(t, err)

	entry := got.(map[string]any)["history"].([]any)[0].(map[string]any)
	assert.Equal(t, output.AnonymizedValue, entry["token"])
	assert.Equal(t, "a@b.cz", entry["email"])
}

func TestDispatcher_Concurrent(t *testing.T) {
	gw := &fakeGateway{data: ordersPayload(20)}
	d := newTestDispatcher(t, gw, Options{Output: &output.Config{Anonymize: true, Optimize: true, MaxItems: 5}})

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := d.Invoke(context.Background(), "list_orders", map[string]any{"page": float64(i + 1)})
			if err != nil {
				errs <- err
				return
			}
			if n := len(got.(map[string]any)["orders"].([]any)); n != 5 {
				errs <- fmt.Errorf("worker %d got %d orders", i, n)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Len(t, gw.Calls(), workers)
}

// TestDispatcher_GateNeverCallsUpstream checks the readonly gate for any
// parameters a caller might send.
func TestDispatcher_GateNeverCallsUpstream(t *testing.T) {
	gw := &fakeGateway{}
	d := newTestDispatcher(t, gw, Options{Readonly: true})

	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.SampledFrom([]string{"create_order", "delete_products"}).Draw(rt, "tool")
		params := rapid.MapOfN(
			rapid.SampledFrom([]string{"code", "codes", "orders", "page", "send_emails_yn"}),
			rapid.OneOf(
				rapid.Map(rapid.String(), func(s string) any { return s }),
				rapid.Map(rapid.IntRange(-5, 5), func(n int) any { return float64(n) }),
				rapid.Just[any](nil),
			),
			0, 5,
		).Draw(rt, "params")

		_, err := d.Invoke(context.Background(), name, params)
		if upgates.KindOf(err) != upgates.KindReadonly {
			rt.Fatalf("kind = %v, want Readonly", upgates.KindOf(err))
		}
		if n := len(gw.Calls()); n != 0 {
			rt.Fatalf("%d upstream calls, want 0", n)
		}
	})
}
