package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return "validation errors:\n  - " + strings.Join(msgs, "\n  - ")
}

// Validate validates the configuration. A missing identity provider
// setting is fatal: the service cannot authenticate anyone without it.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if cfg.OAuth2.ClientID == "" {
		errs = append(errs, ValidationError{
			Field:   "oauth2.client_id",
			Message: "required",
		})
	}

	if cfg.OAuth2.ClientSecret == "" {
		errs = append(errs, ValidationError{
			Field:   "oauth2.client_secret",
			Message: "required",
		})
	}

	errs = append(errs, validateURLField("oauth2.authorize_url", cfg.OAuth2.AuthorizeURL)...)
	errs = append(errs, validateURLField("oauth2.token_url", cfg.OAuth2.TokenURL)...)

	if cfg.PublicURL != "" {
		if u, err := url.Parse(cfg.PublicURL); err != nil || !u.IsAbs() {
			errs = append(errs, ValidationError{
				Field:   "public_url",
				Message: "must be an absolute URL",
			})
		}
	}

	if cfg.Session.TTL <= 0 {
		errs = append(errs, ValidationError{
			Field:   "session.ttl",
			Message: "must be positive",
		})
	}

	switch strings.ToLower(cfg.Session.SameSite) {
	case "strict", "lax", "none":
	default:
		errs = append(errs, ValidationError{
			Field:   "session.same_site",
			Message: fmt.Sprintf("must be 'strict', 'lax' or 'none', got '%s'", cfg.Session.SameSite),
		})
	}

	if len(cfg.Redis.Addresses) == 0 {
		errs = append(errs, ValidationError{
			Field:   "redis.addresses",
			Message: "at least one address required",
		})
	}

	if cfg.Links.PageSize <= 0 {
		errs = append(errs, ValidationError{
			Field:   "links.page_size",
			Message: "must be positive",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateURLField(field, value string) ValidationErrors {
	if value == "" {
		return ValidationErrors{{Field: field, Message: "required"}}
	}
	u, err := url.Parse(value)
	if err != nil {
		return ValidationErrors{{Field: field, Message: fmt.Sprintf("invalid URL: %v", err)}}
	}
	if !u.IsAbs() {
		return ValidationErrors{{Field: field, Message: "must be an absolute URL"}}
	}
	return nil
}
