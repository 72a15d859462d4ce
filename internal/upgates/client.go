package upgates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/giantswarm/mcp-upgates/internal/instrumentation"
	"github.com/giantswarm/mcp-upgates/internal/logging"
)

// Circuit breaker defaults.
const (
	breakerMaxFailures uint32 = 5
	breakerTimeout            = 30 * time.Second
	breakerInterval           = 60 * time.Second
)

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 32 << 20

// Messages reported to clients for upstream failures.
const (
	msgAuthFailed  = "Authentication failed. Please check your API credentials."
	msgRateLimited = "API rate limit exceeded. Please try again later."
	msgNetwork     = "Network error: Unable to reach the API server. Please check your connection."
	msgBreakerOpen = "Upstream API temporarily unavailable (circuit breaker open). Please try again later."
)

// Client sends authenticated requests to the Upgates REST API. It is safe for
// concurrent use; at most Config.MaxConcurrentRequests requests are in flight.
type Client struct {
	baseURL    string
	username   string
	password   string
	timeout    time.Duration
	httpClient *http.Client

	sem     *semaphore.Weighted
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*Response]

	logger  *slog.Logger
	metrics *instrumentation.Metrics
	now     func() time.Time
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for upstream request logs.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records upstream request metrics.
func WithMetrics(m *instrumentation.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a Client for cfg. cfg is validated first.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, NewConfigurationError("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.APIURL, "/"),
		username: cfg.APIUsername,
		password: cfg.APIPassword,
		timeout:  cfg.Timeout(),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrentRequests)),
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if cfg.RateLimitRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}
	if cfg.CircuitBreakerEnabled {
		c.breaker = c.newBreaker()
	}

	c.logger.Debug("upgates client configured",
		logging.Host(c.baseURL),
		logging.LoginHash(c.username),
		slog.Int("max_concurrent_requests", cfg.MaxConcurrentRequests),
		slog.Float64("rate_limit_rps", cfg.RateLimitRPS),
		slog.Bool("circuit_breaker", cfg.CircuitBreakerEnabled),
	)
	return c, nil
}

func (c *Client) newBreaker() *gobreaker.CircuitBreaker[*Response] {
	return gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "upgates",
		MaxRequests: 1, // one probe in half-open state
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			c.metrics.RecordBreakerTransition(context.Background(), from.String(), to.String())
		},
		IsSuccessful: tripsBreaker,
	})
}

// tripsBreaker reports whether err should count as a success for the breaker.
// Only transport failures and 5xx responses count against the upstream.
func tripsBreaker(err error) bool {
	if err == nil {
		return true
	}
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindNetwork {
		return true
	}
	return e.StatusCode != 0 && e.StatusCode < 500
}

// BreakerState reports the circuit breaker state ("closed", "half-open",
// "open"), or "disabled" when the client runs without a breaker.
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// Do performs one upstream exchange. Failures are always *Error values.
// Requests are never retried.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, NewNetworkError(fmt.Sprintf("%s %v", msgNetwork, err), 0, "", err)
	}
	defer c.sem.Release(1)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, NewNetworkError(fmt.Sprintf("%s %v", msgNetwork, err), 0, "", err)
		}
	}

	if c.breaker == nil {
		return c.send(ctx, method, path, query, body)
	}

	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.send(ctx, method, path, query, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, NewNetworkError(msgBreakerOpen, 0, "", err)
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	requestID := uuid.NewString()

	ctx, span := instrumentation.StartUpstreamSpan(ctx, method, path,
		attribute.String(instrumentation.SpanAttrRequestID, requestID))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, query, body, requestID)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	c.metrics.IncrementUpstreamInFlight(ctx)
	start := c.now()
	httpResp, err := c.httpClient.Do(req)
	elapsed := c.now().Sub(start)
	c.metrics.DecrementUpstreamInFlight(ctx)

	logger := c.logger.With(logging.Method(method), logging.Path(path), logging.RequestID(requestID))

	if err != nil {
		c.metrics.RecordUpstreamRequest(ctx, method, path, 0, elapsed)
		logger.Warn("upstream request failed", logging.Duration(elapsed), logging.SanitizedErr(err))
		nerr := NewNetworkError(fmt.Sprintf("%s %s", msgNetwork, err.Error()), 0, "", err)
		instrumentation.SetSpanError(span, nerr)
		return nil, nerr
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	c.metrics.RecordUpstreamRequest(ctx, method, path, httpResp.StatusCode, elapsed)
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithStatusCode(httpResp.StatusCode).Build()...)
	if err != nil {
		nerr := NewNetworkError(fmt.Sprintf("%s %s", msgNetwork, err.Error()), httpResp.StatusCode, "", err)
		instrumentation.SetSpanError(span, nerr)
		return nil, nerr
	}

	logger.Debug("upstream response",
		logging.StatusCode(httpResp.StatusCode),
		logging.Duration(elapsed),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		uerr := c.classify(httpResp, raw)
		instrumentation.SetSpanError(span, uerr)
		return nil, uerr
	}

	instrumentation.SetSpanSuccess(span)
	return formatResponse(raw, requestID, c.now()), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any, requestID string) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf("request body cannot be encoded: %v", err), "body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, NewNetworkError(fmt.Sprintf("%s %s", msgNetwork, err.Error()), 0, "", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	return req, nil
}

// classify maps a non-2xx response to an *Error.
func (c *Client) classify(resp *http.Response, raw []byte) *Error {
	message := upstreamMessage(raw)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		if message == "" {
			message = msgAuthFailed
		}
		return NewAuthenticationError(message, resp.StatusCode)
	case http.StatusTooManyRequests:
		return NewRateLimitError(msgRateLimited, ParseRetryAfter(resp.Header.Get("Retry-After"), c.now()))
	default:
		if message == "" {
			message = fmt.Sprintf("API request failed with status %d", resp.StatusCode)
		}
		return NewNetworkError(message, resp.StatusCode, string(raw), nil)
	}
}

// ParseRetryAfter interprets a Retry-After header as delta seconds or an HTTP
// date. Missing, unparseable or negative values yield DefaultRetryAfter; zero
// and dates already passed mean the caller may retry at once.
func ParseRetryAfter(header string, now time.Time) int {
	header = strings.TrimSpace(header)
	if header == "" {
		return DefaultRetryAfter
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			return DefaultRetryAfter
		}
		return secs
	}
	if at, err := http.ParseTime(header); err == nil {
		return max(int(at.Sub(now).Round(time.Second)/time.Second), 0)
	}
	return DefaultRetryAfter
}
