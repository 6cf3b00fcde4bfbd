// Package oauth implements the authorization-code login flow against the
// external identity provider.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/testersen/jmsn.link/internal/config"
	"github.com/testersen/jmsn.link/internal/model"
	"github.com/testersen/jmsn.link/internal/service/crypto"
	"github.com/testersen/jmsn.link/internal/service/metrics"
	"github.com/testersen/jmsn.link/internal/service/session"
	"github.com/testersen/jmsn.link/internal/store"
	"github.com/testersen/jmsn.link/pkg/logger"
	"github.com/testersen/jmsn.link/pkg/resilience/circuitbreaker"
)

// Flow drives the authorization-code dance: Authorize sends the browser to
// the provider, Callback turns the returned code into a session cookie.
type Flow struct {
	cfg       *config.OAuth2Config
	oauth     *oauth2.Config
	signer    *crypto.Signer
	sessions  *session.Manager
	store     *store.Store
	breaker   *circuitbreaker.Breaker[*oauth2.Token]
	metrics   *metrics.Metrics
	publicURL string
	log       *zap.Logger
}

// NewFlow wires the flow from configuration. The breaker around the token
// exchange is optional; pass nil to call the provider directly.
func NewFlow(cfg *config.Config, signer *crypto.Signer, sessions *session.Manager, st *store.Store, m *metrics.Metrics) *Flow {
	return &Flow{
		cfg: &cfg.OAuth2,
		oauth: &oauth2.Config{
			ClientID:     cfg.OAuth2.ClientID,
			ClientSecret: cfg.OAuth2.ClientSecret,
			Scopes:       []string{cfg.OAuth2.Scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuth2.AuthorizeURL,
				TokenURL: cfg.OAuth2.TokenURL,
				// Credentials go in the POST body, not basic auth.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		signer:    signer,
		sessions:  sessions,
		store:     st,
		breaker:   newExchangeBreaker(&cfg.Resilience.CircuitBreaker),
		metrics:   m,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		log:       logger.Named("oauth"),
	}
}

func newExchangeBreaker(cfg *config.CircuitBreakerConfig) *circuitbreaker.Breaker[*oauth2.Token] {
	if !cfg.Enabled {
		return nil
	}
	return circuitbreaker.New[*oauth2.Token](circuitbreaker.Settings{
		Name:             "oauth2-exchange",
		MaxRequests:      cfg.MaxRequests,
		Interval:         cfg.Interval,
		Timeout:          cfg.Timeout,
		FailureThreshold: cfg.FailureThreshold,
	})
}

// Authorize redirects an unauthenticated browser to the provider's
// authorize endpoint. The state parameter is a signed, otherwise empty
// session; the callback only checks the signature, which proves this
// service started the flow.
func (f *Flow) Authorize(w http.ResponseWriter, r *http.Request) {
	state, err := f.signer.Sign(&model.Session{Exp: time.Now().UnixMilli()})
	if err != nil {
		f.log.Error("failed to sign state token", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	authURL := f.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_mode", "form_post"),
		oauth2.SetAuthURLParam("redirect_uri", f.origin(r)),
	)

	writeRefresh(w, authURL)
}

// Callback consumes the provider's form_post response: it validates the
// state token, exchanges the code for tokens, derives a session from the
// token claims and issues the cookie. Every failure path ends in the same
// 401 page; details go to the log only.
func (f *Flow) Callback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		f.unauthorized(w, "malformed callback form", err)
		return
	}

	if errCode := r.PostFormValue("error"); errCode != "" {
		f.unauthorized(w, "provider returned error", fmt.Errorf("%s: %s",
			errCode, r.PostFormValue("error_description")))
		return
	}

	if _, err := f.signer.Verify(r.PostFormValue("state"), false); err != nil {
		f.unauthorized(w, "state token rejected", err)
		return
	}

	code := r.PostFormValue("code")
	if code == "" {
		f.unauthorized(w, "callback carried no code", nil)
		return
	}

	token, err := f.exchange(r.Context(), code, f.origin(r))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			err = fmt.Errorf("%s: %s", retrieveErr.ErrorCode, retrieveErr.ErrorDescription)
		}
		f.unauthorized(w, "token exchange failed", err)
		return
	}

	sess, err := f.buildSession(token)
	if err != nil {
		f.unauthorized(w, "provider tokens unusable", err)
		return
	}

	// The user record is a convenience projection; a store hiccup here
	// must not fail the login.
	if err := f.store.UpsertUser(r.Context(), model.UserFromSession(sess)); err != nil {
		f.log.Warn("failed to upsert user record", zap.Error(err), zap.String("sub", sess.Sub))
	}

	if err := f.sessions.Issue(w, sess); err != nil {
		f.log.Error("failed to issue session", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	f.metrics.RecordSessionIssued()
	f.log.Info("session issued",
		zap.String("sub", sess.Sub),
		zap.Bool("administrator", sess.Administrator),
	)

	writeRefresh(w, "/")
}

// exchange performs the code-for-token exchange, bounded by the configured
// timeout and routed through the breaker when one is configured.
func (f *Flow) exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.ExchangeTimeout)
	defer cancel()

	start := time.Now()
	run := func() (*oauth2.Token, error) {
		return f.oauth.Exchange(ctx, code,
			oauth2.SetAuthURLParam("scope", f.cfg.Scope),
			oauth2.SetAuthURLParam("redirect_uri", redirectURI),
		)
	}

	var token *oauth2.Token
	var err error
	if f.breaker != nil {
		token, err = f.breaker.Execute(run)
	} else {
		token, err = run()
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	f.metrics.RecordExchange(status, time.Since(start).Seconds())

	return token, err
}

// buildSession derives the session from the freshly exchanged tokens:
// identity fields come from the access token, subject and roles from the
// ID token.
func (f *Flow) buildSession(token *oauth2.Token) (*model.Session, error) {
	access, err := parseAccessClaims(token.AccessToken)
	if err != nil {
		return nil, err
	}

	rawID, _ := token.Extra("id_token").(string)
	if rawID == "" {
		return nil, errors.New("provider response carried no id_token")
	}
	id, err := parseIDClaims(rawID)
	if err != nil {
		return nil, err
	}
	if id.Subject == "" {
		return nil, errors.New("id token carried no subject")
	}

	sess := &model.Session{
		Sub:   id.Subject,
		Email: access.UPN,
		Name:  access.GivenName,
	}
	for _, role := range id.Roles {
		sess.GrantRole(role)
	}
	sess.Refresh(f.sessions.TTL())

	return sess, nil
}

// origin returns the external origin callbacks must return to: the
// configured public URL when set, otherwise reconstructed from the request.
func (f *Flow) origin(r *http.Request) string {
	if f.publicURL != "" {
		return f.publicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host
}

func (f *Flow) unauthorized(w http.ResponseWriter, msg string, err error) {
	f.metrics.RecordSessionRejected()
	f.log.Warn(msg, zap.Error(err), zap.String("cause", "oauth2"))
	http.Error(w, "Authentication failed", http.StatusUnauthorized)
}

// writeRefresh sends a 200 page whose meta refresh performs the redirect.
// A real 3xx would make the browser replay a POST callback as GET against
// the provider; the refresh always navigates with GET.
func writeRefresh(w http.ResponseWriter, url string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><meta http-equiv="refresh" content="0; url=%s"></head>
<body>Redirecting&hellip;</body>
</html>
`, html.EscapeString(url))
}
