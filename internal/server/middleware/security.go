package middleware

import (
	"net/http"
)

// SecurityHeaders sets the response headers every transport endpoint
// carries. HSTS is sent on TLS connections, or always when hsts is set for
// deployments behind a TLS terminating proxy.
func SecurityHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Cache-Control", "no-store")
			if hsts || r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultMaxRequestBytes bounds MCP request bodies. Bulk writes carry at
// most 100 items, which stays far below this.
const DefaultMaxRequestBytes int64 = 5 << 20

// MaxRequestSize rejects bodies larger than maxBytes. Requests announcing a
// larger Content-Length are refused before the handler runs; chunked bodies
// fail when the handler reads past the limit. Zero or less disables the
// check.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
