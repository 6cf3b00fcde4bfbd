package model

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Redirect types; they record the provenance of the slug.
const (
	RedirectVanity = "vanity"
	RedirectRandom = "random"
)

// Redirect represents one short-link mapping. Field tags are the stored
// encoding as well as the API encoding.
type Redirect struct {
	Type        string `json:"type"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      string `json:"target"`
	// MaxAge is an optional time-to-live in milliseconds; zero means the
	// record never expires.
	MaxAge    int64  `json:"maxAge,omitempty"`
	CreatedBy string `json:"createdBy"`
	// CreatedAt is the creation instant in milliseconds since epoch.
	CreatedAt int64 `json:"createdAt"`
}

// RedirectList is one page of a redirect scan.
type RedirectList struct {
	Redirects []Redirect `json:"redirects"`
	// Cursor resumes the scan on a subsequent call; empty means the scan
	// is complete.
	Cursor string `json:"cursor"`
	// Count is the aggregate number of links ever created. It is an
	// approximate total, not the size of the listing.
	Count int64 `json:"count"`
}

// CreateRedirectRequest is the POST /api/links payload.
type CreateRedirectRequest struct {
	Type        string `json:"type"`
	Slug        string `json:"slug,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      string `json:"target"`
	MaxAge      int64  `json:"maxAge,omitempty"`
}

// Validate checks the structural rules of a creation payload. Capability
// checks are the caller's concern.
func (r CreateRedirectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(RedirectVanity, RedirectRandom)),
		validation.Field(&r.Slug,
			validation.Required.When(r.Type == RedirectVanity),
			validation.Empty.When(r.Type == RedirectRandom),
		),
		validation.Field(&r.Target, validation.Required, validation.By(absoluteURL)),
		validation.Field(&r.MaxAge, validation.Min(int64(0))),
	)
}

// absoluteURL requires the target to parse as an absolute URL with a host.
func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil // Required handles absence
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return validation.NewError("validation_is_absolute_url", "must be a valid absolute URL")
	}
	return nil
}
