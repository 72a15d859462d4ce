package upgates

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every failure the server can report.
type Kind int

// The closed set of failure kinds.
const (
	KindConfiguration Kind = iota
	KindAuthentication
	KindValidation
	KindNotFound
	KindNetwork
	KindRateLimit
	KindReadonly
)

// DefaultRetryAfter is used when a 429 response carries no usable Retry-After header.
const DefaultRetryAfter = 60

var kindNames = map[Kind]struct{ name, code string }{
	KindConfiguration:  {"ConfigurationError", "CONFIG_ERROR"},
	KindAuthentication: {"AuthenticationError", "AUTH_ERROR"},
	KindValidation:     {"ValidationError", "VALIDATION_ERROR"},
	KindNotFound:       {"NotFoundError", "NOT_FOUND"},
	KindNetwork:        {"NetworkError", "NETWORK_ERROR"},
	KindRateLimit:      {"RateLimitError", "RATE_LIMIT"},
	KindReadonly:       {"ReadonlyError", "READONLY_MODE"},
}

// String returns the display name of the kind, e.g. "ValidationError".
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n.name
	}
	return "UnknownError"
}

// Code returns the stable machine code of the kind, e.g. "VALIDATION_ERROR".
func (k Kind) Code() string {
	if n, ok := kindNames[k]; ok {
		return n.code
	}
	return "UNKNOWN"
}

// Error is the single error type produced by the request pipeline.
// Only the fields relevant to Kind are populated.
type Error struct {
	Kind    Kind
	Message string

	// Field is the offending parameter for validation failures.
	Field string

	// StatusCode and Body describe an upstream HTTP failure. StatusCode is zero
	// when no response was received.
	StatusCode int
	Body       string

	// RetryAfter is the server-suggested wait in seconds for rate limit failures.
	RetryAfter int

	// Operation is the blocked tool name for readonly failures.
	Operation string

	// Err is the underlying cause, if any.
	Err error
}

// Error renders the failure as a single human-readable line.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", e.Kind, e.Kind.Code(), e.Message)
	switch e.Kind {
	case KindValidation:
		if e.Field != "" {
			fmt.Fprintf(&b, " (field: %s)", e.Field)
		}
	case KindNetwork:
		if e.StatusCode != 0 {
			fmt.Fprintf(&b, " (status: %d)", e.StatusCode)
		}
	case KindRateLimit:
		fmt.Fprintf(&b, " (retry after: %ds)", e.RetryAfter)
	case KindReadonly:
		if e.Operation != "" {
			fmt.Fprintf(&b, " (operation: %s)", e.Operation)
		}
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is checks against a kind only.
var (
	ErrConfiguration  = &Error{Kind: KindConfiguration}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrNetwork        = &Error{Kind: KindNetwork}
	ErrRateLimit      = &Error{Kind: KindRateLimit}
	ErrReadonly       = &Error{Kind: KindReadonly}
)

// NewConfigurationError reports invalid or missing configuration.
func NewConfigurationError(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// NewAuthenticationError reports rejected credentials.
func NewAuthenticationError(message string, status int) *Error {
	if message == "" {
		message = "Authentication failed"
	}
	return &Error{Kind: KindAuthentication, Message: message, StatusCode: status}
}

// NewValidationError reports an invalid parameter.
func NewValidationError(message, field string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// NewNotFoundError reports an unknown tool, resource or upstream entity.
func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewNetworkError reports a failed upstream exchange. status is zero when no
// response was received.
func NewNetworkError(message string, status int, body string, cause error) *Error {
	return &Error{Kind: KindNetwork, Message: message, StatusCode: status, Body: body, Err: cause}
}

// NewRateLimitError reports a 429 response. A negative retryAfter means the
// server gave no hint and DefaultRetryAfter is used; zero is a valid hint.
func NewRateLimitError(message string, retryAfter int) *Error {
	if message == "" {
		message = "Rate limit exceeded"
	}
	if retryAfter < 0 {
		retryAfter = DefaultRetryAfter
	}
	return &Error{Kind: KindRateLimit, Message: message, StatusCode: 429, RetryAfter: retryAfter}
}

// NewReadonlyError reports a mutating operation blocked by readonly mode.
func NewReadonlyError(operation string) *Error {
	return &Error{
		Kind:      KindReadonly,
		Message:   fmt.Sprintf("Operation '%s' is not allowed in readonly mode. Set UPGATES_READONLY=false to enable write operations.", operation),
		Operation: operation,
	}
}

// AsError returns err as an *Error. Errors outside the taxonomy are reported
// as network failures so that every failure maps to exactly one kind.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewNetworkError(err.Error(), 0, "", err)
}

// KindOf returns the kind of err, classifying unknown errors as network failures.
func KindOf(err error) Kind {
	return AsError(err).Kind
}
