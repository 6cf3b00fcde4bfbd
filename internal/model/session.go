package model

import (
	"strings"
	"time"
)

// Role names as issued by the identity provider.
const (
	RoleViewer        = "viewer"
	RoleShortURL      = "short_url"
	RoleVanityURL     = "vanity_url"
	RoleAdministrator = "administrator"
)

// Session is the credential carried entirely in the client cookie; nothing
// is kept server-side. The JSON encoding is the signed token payload, so
// field tags are part of the wire format.
type Session struct {
	// Exp is the absolute expiration instant in milliseconds since epoch.
	Exp int64 `json:"exp"`

	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`

	Viewer        bool `json:"viewer"`
	ShortURL      bool `json:"short_url"`
	VanityURL     bool `json:"vanity_url"`
	Administrator bool `json:"administrator"`
}

// ExpiresAt returns the expiration instant as a time.Time.
func (s *Session) ExpiresAt() time.Time {
	return time.UnixMilli(s.Exp)
}

// IsExpired reports whether the session has expired at the given instant.
// A session whose expiration equals the current instant is already expired.
func (s *Session) IsExpired(now time.Time) bool {
	return s.Exp <= now.UnixMilli()
}

// Refresh slides the expiration window: validity always restarts from now,
// regardless of how much of the previous window was left.
func (s *Session) Refresh(ttl time.Duration) {
	s.Exp = time.Now().Add(ttl).UnixMilli()
}

// GrantRole maps a provider role onto capability flags. Flags only ever
// accumulate; an unrecognized role is ignored. The implications
// (administrator grants everything, the URL roles grant viewer) are baked
// in here at issuance and never re-derived.
func (s *Session) GrantRole(role string) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleViewer:
		s.Viewer = true
	case RoleShortURL:
		s.Viewer = true
		s.ShortURL = true
	case RoleVanityURL:
		s.Viewer = true
		s.VanityURL = true
	case RoleAdministrator:
		s.Viewer = true
		s.ShortURL = true
		s.VanityURL = true
		s.Administrator = true
	}
}
