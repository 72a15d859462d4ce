package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation  = "operation"
	KeyTool       = "tool"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatusCode = "status_code"
	KeyRequestID  = "request_id"
	KeyEntity     = "entity"
	KeyLoginHash  = "login_hash"
	KeyDuration   = "duration"
	KeyStatus     = "status"
	KeyError      = "error"
	KeyErrorKind  = "error_kind"
	KeyHost       = "host"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ipv4Regex matches IPv4 addresses for sanitization.
var ipv4Regex = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// ipv6Regex matches IPv6 addresses for sanitization.
// This regex matches common IPv6 formats including:
// - Full form: 2001:0db8:85a3:0000:0000:8a2e:0370:7334
// - Compressed form: 2001:db8:85a3::8a2e:370:7334
// - Bracketed form (used in URLs): [2001:db8::1]
var ipv6Regex = regexp.MustCompile(`\[?([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}\]?`)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Method returns a slog attribute for an upstream HTTP method.
func Method(method string) slog.Attr {
	return slog.String(KeyMethod, method)
}

// Path returns a slog attribute for an upstream path.
func Path(path string) slog.Attr {
	return slog.String(KeyPath, path)
}

// StatusCode returns a slog attribute for an upstream HTTP status code.
func StatusCode(code int) slog.Attr {
	return slog.Int(KeyStatusCode, code)
}

// RequestID returns a slog attribute for the X-Request-ID sent upstream.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Entity returns a slog attribute for the list entity key, e.g. "orders".
func Entity(entity string) slog.Attr {
	return slog.String(KeyEntity, entity)
}

// Duration returns a slog attribute for an elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// ErrorKind returns a slog attribute for the failure kind code.
func ErrorKind(kind string) slog.Attr {
	return slog.String(KeyErrorKind, kind)
}

// Err returns a slog attribute for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizedErr returns a slog attribute for an error with IP addresses redacted.
// Use it for transport errors, which often carry the resolved shop address.
func SanitizedErr(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, SanitizeHost(err.Error()))
}

// Host returns a slog attribute for a host with IP addresses sanitized.
func Host(host string) slog.Attr {
	return slog.String(KeyHost, SanitizeHost(host))
}

// HashIdentity returns a hashed representation of an API login for logging purposes.
// This allows correlation of log entries without exposing the login.
func HashIdentity(login string) string {
	if login == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(login))
	return "login:" + hex.EncodeToString(hash[:8])
}

// LoginHash returns a slog attribute with the hashed API login.
//
// Usage:
//
//	logger.Info("client configured", logging.LoginHash(cfg.APIUsername))
func LoginHash(login string) slog.Attr {
	return slog.String(KeyLoginHash, HashIdentity(login))
}

// SanitizeHost returns a sanitized version of the host for logging purposes.
// IPv4 and IPv6 addresses are redacted while hostnames are kept.
//
// Examples:
//   - "https://192.168.1.100:8443/api/v2" -> "https://<redacted-ip>:8443/api/v2"
//   - "https://shop.admin.s1.upgates.com/api/v2" -> unchanged
//   - "192.168.1.100" -> "<redacted-ip>"
//   - "" -> "<empty>"
func SanitizeHost(host string) string {
	if host == "" {
		return "<empty>"
	}

	redactIPs := func(s string) string {
		result := ipv4Regex.ReplaceAllString(s, "<redacted-ip>")
		result = ipv6Regex.ReplaceAllString(result, "<redacted-ip>")
		return result
	}

	// No scheme: just a host or IP
	if !strings.Contains(host, "://") {
		return redactIPs(host)
	}

	parsed, err := url.Parse(host)
	if err != nil {
		return redactIPs(host)
	}

	if ipv4Regex.MatchString(parsed.Host) || ipv6Regex.MatchString(parsed.Host) {
		parsed.Host = redactIPs(parsed.Host)
		return parsed.String()
	}

	return host
}

// SanitizeSecret returns a length indicator for a credential without exposing
// any of its content.
func SanitizeSecret(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[secret:%d chars]", len(secret))
}
