// Package handler wires the HTTP surface: session gating, the link API,
// slug redirects and the operational endpoints.
package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/testersen/jmsn.link/internal/service/metrics"
	"github.com/testersen/jmsn.link/internal/service/oauth"
	"github.com/testersen/jmsn.link/internal/service/session"
	"github.com/testersen/jmsn.link/pkg/logger"
)

// AuthHandler gates requests behind the session cookie and, for browser
// traffic, runs the login flow inline.
type AuthHandler struct {
	sessions *session.Manager
	flow     *oauth.Flow
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewAuthHandler creates the session-gating handler.
func NewAuthHandler(sessions *session.Manager, flow *oauth.Flow, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		flow:     flow,
		metrics:  m,
		log:      logger.Named("auth"),
	}
}

// EnsureSession is the page middleware: authenticated requests pass through
// with the session in context, unauthenticated ones are absorbed into the
// login flow — GET starts it, POST is the provider callback. The gated page
// is never served without a session.
func (h *AuthHandler) EnsureSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessions.Authenticate(w, r)
		if err == nil {
			h.metrics.RecordSessionIssued()
			next.ServeHTTP(w, r.WithContext(session.ToContext(r.Context(), sess)))
			return
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead:
			h.flow.Authorize(w, r)
		case http.MethodPost:
			h.flow.Callback(w, r)
		default:
			renderJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// RequireSession is the API middleware: no session means 401, never a
// login redirect. Authenticated requests get the refreshed expiration
// echoed in X-Session-Expiration so clients can track the sliding window.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessions.Authenticate(w, r)
		if err != nil {
			h.metrics.RecordSessionRejected()
			renderJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		h.metrics.RecordSessionIssued()
		w.Header().Set("X-Session-Expiration", strconv.FormatInt(sess.Exp, 10))
		next.ServeHTTP(w, r.WithContext(session.ToContext(r.Context(), sess)))
	})
}
