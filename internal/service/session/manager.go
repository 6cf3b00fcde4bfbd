// Package session manages the signed session cookie: verification on the
// way in, sliding-window refresh on the way out.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/testersen/jmsn.link/internal/config"
	"github.com/testersen/jmsn.link/internal/model"
	"github.com/testersen/jmsn.link/internal/service/crypto"
	"github.com/testersen/jmsn.link/pkg/logger"
)

// ErrNoSession means the request carried no usable session. Every rejection
// reason — missing cookie, bad signature, expired token, garbage payload —
// collapses into this one error so callers cannot leak why a token was
// rejected.
var ErrNoSession = errors.New("no session")

// Manager verifies and issues session cookies.
type Manager struct {
	signer     *crypto.Signer
	cookieName string
	ttl        time.Duration
	secure     bool
	sameSite   http.SameSite
	log        *zap.Logger
}

// NewManager creates a session manager from configuration.
func NewManager(cfg *config.SessionConfig, signer *crypto.Signer) *Manager {
	return &Manager{
		signer:     signer,
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
		sameSite:   parseSameSite(cfg.SameSite),
		log:        logger.Named("session"),
	}
}

// TTL returns the configured session validity window.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Authenticate extracts and verifies the session cookie. On success the
// expiration window slides to now+TTL and a refreshed cookie is queued on
// the response — unconditionally, whether or not the handler ends up using
// the session. On any failure the stale cookie is queued for removal and
// ErrNoSession is returned.
func (m *Manager) Authenticate(w http.ResponseWriter, r *http.Request) (*model.Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	sess, err := m.signer.Verify(cookie.Value, true)
	if err != nil {
		m.log.Debug("session rejected", zap.Error(err))
		m.Clear(w)
		return nil, ErrNoSession
	}

	sess.Refresh(m.ttl)
	if err := m.Issue(w, sess); err != nil {
		return nil, err
	}

	return sess, nil
}

// Issue signs the session and sets the cookie on the response. The cookie
// expires exactly when the session does.
func (m *Manager) Issue(w http.ResponseWriter, sess *model.Session) error {
	token, err := m.signer.Sign(sess)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt(),
		MaxAge:   int(time.Until(sess.ExpiresAt()).Seconds()),
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	})

	return nil
}

// Clear removes the session cookie from the client.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	})
}

// parseSameSite converts string to http.SameSite
func parseSameSite(s string) http.SameSite {
	switch s {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

// contextKey is the type for context keys
type contextKey string

const sessionContextKey contextKey = "session"

// ToContext stores the session in the context.
func ToContext(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// FromContext retrieves the session from context.
func FromContext(ctx context.Context) *model.Session {
	if sess, ok := ctx.Value(sessionContextKey).(*model.Session); ok {
		return sess
	}
	return nil
}

// FromRequest retrieves the session from the request context.
func FromRequest(r *http.Request) *model.Session {
	return FromContext(r.Context())
}
