package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from a YAML file using viper.
// It supports:
// - YAML configuration files
// - Environment variable substitution with JMSN_ prefix
// - Default values for common settings
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Environment variable support
	v.SetEnvPrefix("JMSN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// No file means env-only operation; everything mandatory is bound to
	// an environment variable.
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// LoadFromString loads configuration from a YAML string (useful for testing).
func LoadFromString(yamlStr string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlStr)); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// bindEnvVars binds specific environment variables to config keys.
func bindEnvVars(v *viper.Viper) {
	// Identity provider credentials and endpoints
	_ = v.BindEnv("oauth2.client_id", "OAUTH2_CLIENT_ID")
	_ = v.BindEnv("oauth2.client_secret", "OAUTH2_CLIENT_SECRET")
	_ = v.BindEnv("oauth2.authorize_url", "OAUTH2_AUTHORIZE_URL")
	_ = v.BindEnv("oauth2.token_url", "OAUTH2_TOKEN_URL")

	// Store
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	_ = v.BindEnv("server.http_port", "HTTP_PORT")
	_ = v.BindEnv("public_url", "PUBLIC_URL")

	// Logging
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.development", "DEV_MODE")
}

// setDefaults sets default values for configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)

	v.SetDefault("oauth2.scope", "openid")
	v.SetDefault("oauth2.exchange_timeout", "10s")

	// Session validity restarts from every successful request.
	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.ttl", "15m")
	v.SetDefault("session.same_site", "strict")

	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.key_prefix", "jmsn:")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 5)

	v.SetDefault("links.page_size", 100)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")
	v.SetDefault("observability.health.path", "/health")
	v.SetDefault("observability.ready.path", "/ready")

	v.SetDefault("resilience.rate_limit.rate", "100-S")
	v.SetDefault("resilience.circuit_breaker.max_requests", 3)
	v.SetDefault("resilience.circuit_breaker.interval", "60s")
	v.SetDefault("resilience.circuit_breaker.timeout", "30s")
	v.SetDefault("resilience.circuit_breaker.failure_threshold", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.development", false)
}

// applyDefaults applies default values to configuration after unmarshaling.
// This handles cases where viper defaults don't work well with nested structs.
func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}

	if cfg.OAuth2.Scope == "" {
		cfg.OAuth2.Scope = "openid"
	}
	if cfg.OAuth2.ExchangeTimeout == 0 {
		cfg.OAuth2.ExchangeTimeout = 10 * time.Second
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "session"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 15 * time.Minute
	}
	if cfg.Session.SameSite == "" {
		cfg.Session.SameSite = "strict"
	}

	if len(cfg.Redis.Addresses) == 0 {
		cfg.Redis.Addresses = []string{"localhost:6379"}
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "jmsn:"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.MinIdleConns == 0 {
		cfg.Redis.MinIdleConns = 5
	}

	if cfg.Links.PageSize == 0 {
		cfg.Links.PageSize = 100
	}

	if cfg.Observability.Metrics.Path == "" {
		cfg.Observability.Metrics.Path = "/metrics"
	}
	if cfg.Observability.Health.Path == "" {
		cfg.Observability.Health.Path = "/health"
	}
	if cfg.Observability.Ready.Path == "" {
		cfg.Observability.Ready.Path = "/ready"
	}

	if cfg.Resilience.RateLimit.Rate == "" {
		cfg.Resilience.RateLimit.Rate = "100-S"
	}
	if cfg.Resilience.CircuitBreaker.MaxRequests == 0 {
		cfg.Resilience.CircuitBreaker.MaxRequests = 3
	}
	if cfg.Resilience.CircuitBreaker.Interval == 0 {
		cfg.Resilience.CircuitBreaker.Interval = 60 * time.Second
	}
	if cfg.Resilience.CircuitBreaker.Timeout == 0 {
		cfg.Resilience.CircuitBreaker.Timeout = 30 * time.Second
	}
	if cfg.Resilience.CircuitBreaker.FailureThreshold == 0 {
		cfg.Resilience.CircuitBreaker.FailureThreshold = 5
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// MustLoad loads configuration or panics.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
