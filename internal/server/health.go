package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"
)

// Breaker states reported by BreakerReporter.
const (
	breakerOpen     = "open"
	breakerDisabled = "disabled"
)

// HealthChecker serves the liveness and readiness probes of the HTTP
// transports.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a HealthChecker that starts out ready.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Version string            `json:"version,omitempty"`
}

// DetailedHealthResponse adds upstream and instrumentation details.
type DetailedHealthResponse struct {
	Status          string                      `json:"status"`
	Mode            string                      `json:"mode"`
	Version         string                      `json:"version,omitempty"`
	Uptime          string                      `json:"uptime"`
	Upstream        *UpstreamHealthStatus       `json:"upstream,omitempty"`
	Instrumentation *InstrumentationHealthCheck `json:"instrumentation,omitempty"`
}

// UpstreamHealthStatus describes the Upgates API connection. It never
// contains credentials.
type UpstreamHealthStatus struct {
	Host              string `json:"host,omitempty"`
	CircuitBreaker    string `json:"circuit_breaker"`
	AnonymizeData     bool   `json:"anonymize_data"`
	OptimizeResponses bool   `json:"optimize_responses"`
}

// InstrumentationHealthCheck provides health information about instrumentation.
type InstrumentationHealthCheck struct {
	Enabled bool `json:"enabled"`
}

// LivenessHandler returns the /healthz handler. It only proves the process
// still answers.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: h.version(),
		})
	})
}

// ReadinessHandler returns the /readyz handler. An open circuit breaker is
// reported without failing readiness.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string)
		ok := true

		if h.ready.Load() {
			checks["ready"] = "ok"
		} else {
			checks["ready"] = "not ready"
			ok = false
		}

		if h.serverContext != nil && h.serverContext.IsShutdown() {
			checks["shutdown"] = "shutting down"
			ok = false
		} else {
			checks["shutdown"] = "ok"
		}

		if h.serverContext != nil {
			checks["upstream"] = upstreamCheck(h.breakerState())
			if provider := h.serverContext.InstrumentationProvider(); provider != nil {
				if provider.Enabled() {
					checks["instrumentation"] = "ok"
				} else {
					checks["instrumentation"] = "disabled"
				}
			}
		}

		response := HealthResponse{Status: "ok", Checks: checks}
		status := http.StatusOK
		if !ok {
			response.Status = "not ready"
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, response)
	})
}

// DetailedHealthHandler returns the /healthz/detailed handler.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := DetailedHealthResponse{
			Status:  "ok",
			Mode:    h.determineMode(),
			Version: h.version(),
			Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
		}

		if h.serverContext != nil {
			response.Upstream = h.upstreamStatus()
			response.Instrumentation = h.instrumentationStatus()
		}

		status := http.StatusOK
		switch {
		case !h.ready.Load():
			response.Status = "not ready"
			status = http.StatusServiceUnavailable
		case h.serverContext != nil && h.serverContext.IsShutdown():
			response.Status = "shutting down"
			status = http.StatusServiceUnavailable
		case response.Upstream != nil && response.Upstream.CircuitBreaker == breakerOpen:
			response.Status = "degraded"
		}

		writeJSON(w, status, response)
	})
}

// RegisterHealthEndpoints registers health check endpoints on the given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

// determineMode reports whether write tools are enabled.
func (h *HealthChecker) determineMode() string {
	if h.serverContext == nil {
		return "unknown"
	}
	if h.serverContext.Config().Upstream().ReadonlyMode {
		return "readonly"
	}
	return "read-write"
}

func (h *HealthChecker) version() string {
	if h.serverContext == nil || h.serverContext.Config() == nil {
		return ""
	}
	return h.serverContext.Config().Version
}

func (h *HealthChecker) breakerState() string {
	if reporter, ok := h.serverContext.Gateway().(BreakerReporter); ok {
		return reporter.BreakerState()
	}
	return breakerDisabled
}

func (h *HealthChecker) upstreamStatus() *UpstreamHealthStatus {
	safe := h.serverContext.Config().Upstream().Safe()
	status := &UpstreamHealthStatus{
		CircuitBreaker:    h.breakerState(),
		AnonymizeData:     safe.AnonymizeData,
		OptimizeResponses: safe.OptimizeResponses,
	}
	if u, err := url.Parse(safe.APIURL); err == nil {
		status.Host = u.Host
	}
	return status
}

func (h *HealthChecker) instrumentationStatus() *InstrumentationHealthCheck {
	provider := h.serverContext.InstrumentationProvider()
	return &InstrumentationHealthCheck{Enabled: provider != nil && provider.Enabled()}
}

func upstreamCheck(state string) string {
	switch state {
	case breakerOpen:
		return "circuit open"
	case breakerDisabled:
		return "ok"
	default:
		return "ok (circuit " + state + ")"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
