package upgates

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfig.
const (
	EnvAPIURL                = "UPGATES_API_URL"
	EnvAPIUsername           = "UPGATES_API_USERNAME"
	EnvAPIPassword           = "UPGATES_API_PASSWORD"
	EnvTimeout               = "UPGATES_TIMEOUT"
	EnvAnonymizeData         = "UPGATES_ANONYMIZE_DATA"
	EnvReadonly              = "UPGATES_READONLY"
	EnvOptimizeResponses     = "UPGATES_OPTIMIZE_RESPONSES"
	EnvMaxListItems          = "UPGATES_MAX_LIST_ITEMS"
	EnvMaxConcurrentRequests = "UPGATES_MAX_CONCURRENT_REQUESTS"
	EnvRateLimitRPS          = "UPGATES_RATE_LIMIT_RPS"
	EnvCircuitBreaker        = "UPGATES_CIRCUIT_BREAKER_ENABLED"
	EnvConfigFile            = "UPGATES_CONFIG_FILE"
)

// Defaults applied when a setting is absent.
const (
	DefaultTimeoutMs             = 30000
	DefaultMaxListItems          = 15
	DefaultMaxConcurrentRequests = 3
)

// Config holds the connection and behaviour settings for the Upgates API.
type Config struct {
	APIURL      string `yaml:"apiUrl"`
	APIUsername string `yaml:"apiUsername"`
	APIPassword string `yaml:"apiPassword"`

	// TimeoutMs is the per-request timeout in milliseconds.
	TimeoutMs int `yaml:"timeout"`

	AnonymizeData     bool `yaml:"anonymizeData"`
	ReadonlyMode      bool `yaml:"readonlyMode"`
	OptimizeResponses bool `yaml:"optimizeResponses"`

	// MaxListItems caps the items kept per page by the list optimizer.
	MaxListItems int `yaml:"maxListItems"`

	// MaxConcurrentRequests caps in-flight upstream requests.
	MaxConcurrentRequests int `yaml:"maxConcurrentRequests"`

	// RateLimitRPS paces upstream requests. Zero disables pacing.
	RateLimitRPS float64 `yaml:"rateLimitRps"`

	CircuitBreakerEnabled bool `yaml:"circuitBreakerEnabled"`
}

// NewDefaultConfig returns a Config with every optional setting at its default.
func NewDefaultConfig() *Config {
	return &Config{
		TimeoutMs:             DefaultTimeoutMs,
		OptimizeResponses:     true,
		MaxListItems:          DefaultMaxListItems,
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
	}
}

// LoadConfig builds a Config from an optional YAML file overlaid with
// environment variables. An empty path falls back to UPGATES_CONFIG_FILE.
// The result is not validated; call Validate before use.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, NewConfigurationError(fmt.Sprintf("cannot read config file %s: %v", path, err))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, NewConfigurationError(fmt.Sprintf("invalid config file %s: %v", path, err))
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with any environment variables that are set.
func (c *Config) applyEnv() error {
	loadString(&c.APIURL, EnvAPIURL)
	loadString(&c.APIUsername, EnvAPIUsername)
	loadString(&c.APIPassword, EnvAPIPassword)

	if v := os.Getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return NewConfigurationError(EnvTimeout + " must be a positive number")
		}
		c.TimeoutMs = n
	}

	if v, ok := os.LookupEnv(EnvAnonymizeData); ok {
		c.AnonymizeData = v == "true"
	}
	if v, ok := os.LookupEnv(EnvReadonly); ok {
		c.ReadonlyMode = v == "true"
	}
	if v, ok := os.LookupEnv(EnvOptimizeResponses); ok {
		c.OptimizeResponses = v != "false"
	}
	if v, ok := os.LookupEnv(EnvCircuitBreaker); ok {
		c.CircuitBreakerEnabled = v == "true"
	}

	if err := loadPositiveInt(&c.MaxListItems, EnvMaxListItems); err != nil {
		return err
	}
	if err := loadPositiveInt(&c.MaxConcurrentRequests, EnvMaxConcurrentRequests); err != nil {
		return err
	}

	if v := os.Getenv(EnvRateLimitRPS); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return NewConfigurationError(EnvRateLimitRPS + " must be a non-negative number")
		}
		c.RateLimitRPS = f
	}
	return nil
}

func loadString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func loadPositiveInt(target *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return NewConfigurationError(key + " must be a positive integer")
	}
	*target = n
	return nil
}

// Validate checks that the required settings are present and well formed.
func (c *Config) Validate() error {
	var missing []string
	if c.APIURL == "" {
		missing = append(missing, EnvAPIURL)
	}
	if c.APIUsername == "" {
		missing = append(missing, EnvAPIUsername)
	}
	if c.APIPassword == "" {
		missing = append(missing, EnvAPIPassword)
	}
	if len(missing) > 0 {
		return NewConfigurationError(fmt.Sprintf("missing required settings: %s", strings.Join(missing, ", ")))
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewConfigurationError(fmt.Sprintf("Invalid %s: %s", EnvAPIURL, c.APIURL))
	}

	if c.TimeoutMs <= 0 {
		return NewConfigurationError("Timeout must be a positive number")
	}
	if c.MaxListItems <= 0 {
		return NewConfigurationError("MaxListItems must be a positive number")
	}
	if c.MaxConcurrentRequests <= 0 {
		return NewConfigurationError("MaxConcurrentRequests must be a positive number")
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// SafeConfig is the subset of Config that may be logged or exposed to clients.
type SafeConfig struct {
	APIURL            string `json:"apiUrl"`
	Timeout           int    `json:"timeout"`
	AnonymizeData     bool   `json:"anonymizeData"`
	ReadonlyMode      bool   `json:"readonlyMode"`
	OptimizeResponses bool   `json:"optimizeResponses"`
	MaxListItems      int    `json:"maxListItems"`
}

// Safe returns the configuration without credentials.
func (c *Config) Safe() SafeConfig {
	return SafeConfig{
		APIURL:            c.APIURL,
		Timeout:           c.TimeoutMs,
		AnonymizeData:     c.AnonymizeData,
		ReadonlyMode:      c.ReadonlyMode,
		OptimizeResponses: c.OptimizeResponses,
		MaxListItems:      c.MaxListItems,
	}
}

// SetupGuidance is printed after a configuration failure at startup.
const SetupGuidance = `Please ensure the following environment variables are set:
  - UPGATES_API_URL: Base URL of your Upgates API
    Format: https://SHOP-NAME.admin.SERVER-BRAND.upgates.com/api/v2
    Find it in: Admin > Doplňky > API
  - UPGATES_API_USERNAME: Your API login/username
  - UPGATES_API_PASSWORD: Your API key/password

Optional environment variables:
  - UPGATES_TIMEOUT: Request timeout in milliseconds (default: 30000)
  - UPGATES_ANONYMIZE_DATA: Enable data anonymization (true/false)
  - UPGATES_READONLY: Block all write operations (true/false)
  - UPGATES_OPTIMIZE_RESPONSES: Shrink list responses (default: true)
  - UPGATES_CONFIG_FILE: YAML file with the same settings

Authentication uses HTTP Basic Auth (login:apiKey)`
