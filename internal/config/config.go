package config

import "time"

// Config represents the main application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	PublicURL     string              `yaml:"public_url" mapstructure:"public_url"` // external origin; derived from the request when empty
	OAuth2        OAuth2Config        `yaml:"oauth2" mapstructure:"oauth2"`
	Session       SessionConfig       `yaml:"session" mapstructure:"session"`
	Redis         RedisConfig         `yaml:"redis" mapstructure:"redis"`
	Links         LinksConfig         `yaml:"links" mapstructure:"links"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Resilience    ResilienceConfig    `yaml:"resilience" mapstructure:"resilience"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	HTTPPort int `yaml:"http_port" mapstructure:"http_port"`
}

// OAuth2Config represents the external identity provider configuration.
// All four endpoint/credential settings are mandatory; startup fails
// without them.
type OAuth2Config struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	AuthorizeURL string `yaml:"authorize_url" mapstructure:"authorize_url"`
	TokenURL     string `yaml:"token_url" mapstructure:"token_url"`
	Scope        string `yaml:"scope" mapstructure:"scope"`
	// ExchangeTimeout bounds the authorization-code token exchange so a
	// hung provider cannot stall a request indefinitely.
	ExchangeTimeout time.Duration `yaml:"exchange_timeout" mapstructure:"exchange_timeout"`
}

// SessionConfig represents session cookie configuration
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name" mapstructure:"cookie_name"`
	TTL        time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Secure     bool          `yaml:"secure" mapstructure:"secure"`
	SameSite   string        `yaml:"same_site" mapstructure:"same_site"` // strict | lax | none
}

// RedisConfig represents the link store connection configuration
type RedisConfig struct {
	Addresses    []string `yaml:"addresses" mapstructure:"addresses"`
	Password     string   `yaml:"password" mapstructure:"password"`
	DB           int      `yaml:"db" mapstructure:"db"`
	MasterName   string   `yaml:"master_name" mapstructure:"master_name"` // For Sentinel
	PoolSize     int      `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int      `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	KeyPrefix    string   `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// LinksConfig represents redirect listing configuration
type LinksConfig struct {
	// PageSize is the default and maximum page size for listing links.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`
}

// ObservabilityConfig represents observability configuration
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Health  HealthConfig  `yaml:"health" mapstructure:"health"`
	Ready   ReadyConfig   `yaml:"ready" mapstructure:"ready"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// HealthConfig represents health check configuration
type HealthConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ReadyConfig represents readiness check configuration
type ReadyConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ResilienceConfig holds resilience configuration
type ResilienceConfig struct {
	// RateLimit configuration for incoming requests
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	// CircuitBreaker configuration for the provider token exchange
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
}

// RateLimitConfig holds HTTP rate limiting configuration
type RateLimitConfig struct {
	// Enabled enables rate limiting
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Rate is the rate limit in format 'requests-period' (e.g. '100-S')
	Rate string `yaml:"rate" mapstructure:"rate"`
	// TrustForwardedFor trusts X-Forwarded-For header for client IP
	TrustForwardedFor bool `yaml:"trust_forwarded_for" mapstructure:"trust_forwarded_for"`
	// ExcludePaths excludes paths from rate limiting
	ExcludePaths []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	// Enabled enables the breaker around the token exchange
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// MaxRequests is the maximum number of requests in half-open state
	MaxRequests uint32 `yaml:"max_requests" mapstructure:"max_requests"`
	// Interval is the cyclic period for clearing counts in closed state
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// Timeout is the period of open state before switching to half-open
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// FailureThreshold is the number of consecutive failures to open circuit
	FailureThreshold uint32 `yaml:"failure_threshold" mapstructure:"failure_threshold"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`             // debug, info, warn, error
	Format      string `yaml:"format" mapstructure:"format"`           // json, console
	Development bool   `yaml:"development" mapstructure:"development"` // Enable development mode
}
