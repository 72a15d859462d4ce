package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-upgates/internal/upgates"
)

// lockedBuffer collects stdio output written from several goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewMCPServer(t *testing.T) {
	sc := newTestServerContext(t)

	mcpSrv, err := newMCPServer(sc)
	require.NoError(t, err)
	assert.Len(t, mcpSrv.ListTools(), 34)
}

func TestServeStdio(t *testing.T) {
	sc := newTestServerContext(t)
	mcpSrv, err := newMCPServer(sc)
	require.NoError(t, err)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_api_status","arguments":{}}}`,
	}, "\n") + "\n"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out lockedBuffer
	require.NoError(t, serveStdio(ctx, mcpSrv, strings.NewReader(input), &out, discardLogger()))

	output := out.String()
	assert.Contains(t, output, `"name":"mcp-upgates"`)
	assert.Contains(t, output, "upgates://system/info")
	assert.Contains(t, output, "api_ok")
}

func TestServeStdio_ReadonlyRejectsWrites(t *testing.T) {
	sc := newTestServerContext(t, func(c *upgates.Config) { c.ReadonlyMode = true })

	mcpSrv, err := newMCPServer(sc)
	require.NoError(t, err)

	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"delete_products","arguments":{"code":"MUG-01"}}}` + "\n"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out lockedBuffer
	require.NoError(t, serveStdio(ctx, mcpSrv, strings.NewReader(input), &out, discardLogger()))
	assert.Contains(t, out.String(), "READONLY_MODE")
	assert.Contains(t, out.String(), `"isError":true`)
}

func TestRunStreamableHTTPServer(t *testing.T) {
	sc := newTestServerContext(t)
	mcpSrv, err := newMCPServer(sc)
	require.NoError(t, err)

	config := validHTTPConfig()
	config.HTTPAddr = freeAddr(t)
	config.Metrics.Enabled = false

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runStreamableHTTPServer(ctx, mcpSrv, config, nil, sc)
	}()

	client := testHTTPClient()
	base := "http://" + config.HTTPAddr
	waitForServer(t, client, base+"/healthz")

	t.Run("health endpoints carry middleware headers", func(t *testing.T) {
		for _, path := range healthEndpoints {
			resp, err := client.Get(base + path)
			require.NoError(t, err)
			_ = resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"), path)
			assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"), path)
		}
	})

	t.Run("tool call through the MCP endpoint", func(t *testing.T) {
		resp := postJSON(t, client, base+config.HTTPEndpoint, "",
			`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`)
		require.Equal(t, http.StatusOK, resp.status)
		session := resp.header.Get("Mcp-Session-Id")
		require.NotEmpty(t, session)

		resp = postJSON(t, client, base+config.HTTPEndpoint, session,
			`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_api_status","arguments":{}}}`)
		require.Equal(t, http.StatusOK, resp.status)
		assert.Contains(t, resp.body, "api_ok")
	})

	t.Run("oversized bodies are refused", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":9,"method":"ping","params":{"pad":"` + strings.Repeat("x", int(config.MaxRequestBytes)) + `"}}`
		resp := postJSON(t, client, base+config.HTTPEndpoint, "", body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.status)
	})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

func TestRunSSEServer(t *testing.T) {
	sc := newTestServerContext(t)
	mcpSrv, err := newMCPServer(sc)
	require.NoError(t, err)

	config := validHTTPConfig()
	config.Transport = transportSSE
	config.HTTPAddr = freeAddr(t)
	config.Metrics.Enabled = false

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runSSEServer(ctx, mcpSrv, config, nil, sc)
	}()

	client := testHTTPClient()
	base := "http://" + config.HTTPAddr
	waitForServer(t, client, base+"/readyz")

	resp, err := client.Get(base + "/healthz/detailed")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"mode":"read-write"`)
	assert.NotContains(t, string(body), "secret-key")

	// The message endpoint needs a session created through the SSE stream.
	resp, err = client.Post(base+config.MessageEndpoint, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

type httpResult struct {
	status int
	header http.Header
	body   string
}

func postJSON(t *testing.T, client *http.Client, url, session, body string) httpResult {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if session != "" {
		req.Header.Set("Mcp-Session-Id", session)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return httpResult{status: resp.StatusCode, header: resp.Header, body: string(raw)}
}
