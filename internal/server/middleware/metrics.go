package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// HTTPRecorder records one served HTTP request.
type HTTPRecorder interface {
	RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// statusWriter remembers the status code written by the wrapped handler.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	return sw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// Flush keeps SSE streams working through the wrapper.
func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// routes are reported verbatim. Everything else is folded into a single
// label so scanners cannot blow up metric cardinality.
var routes = map[string]bool{
	"/":                 true,
	"/mcp":              true,
	"/sse":              true,
	"/message":          true,
	"/healthz":          true,
	"/readyz":           true,
	"/healthz/detailed": true,
	"/metrics":          true,
}

// routeLabel maps a request path onto a bounded set of metric labels.
func routeLabel(path string) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if routes[path] {
		return path
	}
	if strings.HasPrefix(path, "/mcp/") {
		return "/mcp/:session"
	}
	return "other"
}

// HTTPMetrics records the method, route, status and duration of every
// request. A nil recorder turns the middleware into a pass-through.
func HTTPMetrics(recorder HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r)

			recorder.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r.URL.Path), sw.status, time.Since(start))
		})
	}
}
