package output

import "time"

// Default limits for output processing.
// These are tuned for typical LLM context windows and Upgates page sizes.
const (
	// DefaultMaxItems is the default number of list items kept per page.
	DefaultMaxItems = 15

	// AbsoluteMaxItems is the largest page the upstream API returns and the
	// hard cap for any configured limit.
	AbsoluteMaxItems = 1000
)

// Config holds configuration for output processing.
type Config struct {
	// Anonymize redacts personal data in responses of operations that
	// return customer records.
	// Default: false
	Anonymize bool `json:"anonymize" yaml:"anonymize"`

	// Optimize projects and truncates list responses of known entities.
	// Default: true
	Optimize bool `json:"optimize" yaml:"optimize"`

	// MaxItems limits the number of list items returned per page.
	// Default: 15, Absolute max: 1000
	MaxItems int `json:"maxItems" yaml:"maxItems"`
}

// DefaultConfig returns a Config with the defaults used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Anonymize: false,
		Optimize:  true,
		MaxItems:  DefaultMaxItems,
	}
}

// Validate returns a copy with out-of-range values replaced or capped.
func (c *Config) Validate() *Config {
	validated := *c

	if validated.MaxItems <= 0 {
		validated.MaxItems = DefaultMaxItems
	}
	if validated.MaxItems > AbsoluteMaxItems {
		validated.MaxItems = AbsoluteMaxItems
	}

	return &validated
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// TruncationWarning contains information about response truncation.
type TruncationWarning struct {
	// Shown is the number of items returned
	Shown int `json:"shown"`

	// Total is the total number of items before truncation
	Total int `json:"total"`

	// Message is a human-readable warning message
	Message string `json:"message"`
}

// ProcessingMetadata describes what a Processor did to one response.
type ProcessingMetadata struct {
	// ProcessedAt is when processing occurred
	ProcessedAt time.Time `json:"processedAt"`

	// Entity is the optimization profile applied, if any
	Entity string `json:"entity,omitempty"`

	// Anonymized indicates if personal data was redacted
	Anonymized bool `json:"anonymized"`

	// Optimized indicates if a list profile was applied
	Optimized bool `json:"optimized"`

	// OriginalCount is the item count before truncation
	OriginalCount int `json:"originalCount"`

	// FinalCount is the item count after truncation
	FinalCount int `json:"finalCount"`

	// Truncated indicates if truncation occurred
	Truncated bool `json:"truncated"`

	// BytesReduced is the estimated bytes saved by optimization
	BytesReduced int64 `json:"bytesReduced,omitempty"`
}
