package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
oauth2:
  client_id: test-client
  client_secret: test-secret
  authorize_url: https://idp.example.com/authorize
  token_url: https://idp.example.com/token
`

func TestLoadFromString_Defaults(t *testing.T) {
	cfg, err := LoadFromString(minimalYAML)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "openid", cfg.OAuth2.Scope)
	assert.Equal(t, 10*time.Second, cfg.OAuth2.ExchangeTimeout)
	assert.Equal(t, "session", cfg.Session.CookieName)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "strict", cfg.Session.SameSite)
	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addresses)
	assert.Equal(t, "jmsn:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 100, cfg.Links.PageSize)
	assert.Equal(t, "/metrics", cfg.Observability.Metrics.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromString_Overrides(t *testing.T) {
	cfg, err := LoadFromString(minimalYAML + `
server:
  http_port: 9090
session:
  ttl: 30m
  cookie_name: jmsn_session
  secure: true
links:
  page_size: 25
`)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "jmsn_session", cfg.Session.CookieName)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, 25, cfg.Links.PageSize)
}

func TestLoadFromString_Invalid(t *testing.T) {
	_, err := LoadFromString("{not yaml:")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		cfg, err := LoadFromString(minimalYAML)
		require.NoError(t, err)
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, Validate(valid(t)))
	})

	t.Run("missing client id", func(t *testing.T) {
		cfg := valid(t)
		cfg.OAuth2.ClientID = ""
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oauth2.client_id")
	})

	t.Run("missing client secret", func(t *testing.T) {
		cfg := valid(t)
		cfg.OAuth2.ClientSecret = ""
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oauth2.client_secret")
	})

	t.Run("relative authorize url", func(t *testing.T) {
		cfg := valid(t)
		cfg.OAuth2.AuthorizeURL = "/authorize"
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oauth2.authorize_url")
	})

	t.Run("missing token url", func(t *testing.T) {
		cfg := valid(t)
		cfg.OAuth2.TokenURL = ""
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oauth2.token_url")
	})

	t.Run("relative public url", func(t *testing.T) {
		cfg := valid(t)
		cfg.PublicURL = "jmsn.link"
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "public_url")
	})

	t.Run("bad same site", func(t *testing.T) {
		cfg := valid(t)
		cfg.Session.SameSite = "sometimes"
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session.same_site")
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		cfg := valid(t)
		cfg.Session.TTL = 0
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session.ttl")
	})

	t.Run("no redis addresses", func(t *testing.T) {
		cfg := valid(t)
		cfg.Redis.Addresses = nil
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis.addresses")
	})

	t.Run("errors accumulate", func(t *testing.T) {
		cfg := valid(t)
		cfg.OAuth2.ClientID = ""
		cfg.OAuth2.ClientSecret = ""
		err := Validate(cfg)
		require.Error(t, err)

		var errs ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.Len(t, errs, 2)
	})
}
