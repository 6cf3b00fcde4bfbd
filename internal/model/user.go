package model

// User is the persisted projection of the latest session's identity and
// capability fields, keyed by subject. It is overwritten on every session
// issuance and never deleted.
type User struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`

	Viewer        bool `json:"viewer"`
	ShortURL      bool `json:"short_url"`
	VanityURL     bool `json:"vanity_url"`
	Administrator bool `json:"administrator"`
}

// UserFromSession materializes the user record for a freshly issued session.
func UserFromSession(s *Session) *User {
	return &User{
		Sub:           s.Sub,
		Email:         s.Email,
		Name:          s.Name,
		Viewer:        s.Viewer,
		ShortURL:      s.ShortURL,
		VanityURL:     s.VanityURL,
		Administrator: s.Administrator,
	}
}
