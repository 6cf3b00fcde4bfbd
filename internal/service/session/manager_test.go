package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testersen/jmsn.link/internal/config"
	"github.com/testersen/jmsn.link/internal/model"
	"github.com/testersen/jmsn.link/internal/service/crypto"
)

func newTestManager(t *testing.T) (*Manager, *crypto.Signer) {
	t.Helper()

	signer, err := crypto.NewSigner("test-secret")
	require.NoError(t, err)

	mgr := NewManager(&config.SessionConfig{
		CookieName: "session",
		TTL:        15 * time.Minute,
		SameSite:   "strict",
	}, signer)

	return mgr, signer
}

func requestWithCookie(value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if value != "" {
		r.AddCookie(&http.Cookie{Name: "session", Value: value})
	}
	return r
}

func responseCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no cookie %q in response", name)
	return nil
}

func TestManager_Authenticate(t *testing.T) {
	t.Run("no cookie", func(t *testing.T) {
		mgr, _ := newTestManager(t)
		w := httptest.NewRecorder()

		_, err := mgr.Authenticate(w, requestWithCookie(""))
		assert.ErrorIs(t, err, ErrNoSession)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("invalid cookie is cleared", func(t *testing.T) {
		mgr, _ := newTestManager(t)
		w := httptest.NewRecorder()

		_, err := mgr.Authenticate(w, requestWithCookie("garbage"))
		assert.ErrorIs(t, err, ErrNoSession)

		cleared := responseCookie(t, w, "session")
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge)
	})

	t.Run("expired session is cleared", func(t *testing.T) {
		mgr, signer := newTestManager(t)
		token, err := signer.Sign(&model.Session{
			Exp: time.Now().Add(-time.Minute).UnixMilli(),
			Sub: "user-1",
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		_, err = mgr.Authenticate(w, requestWithCookie(token))
		assert.ErrorIs(t, err, ErrNoSession)

		cleared := responseCookie(t, w, "session")
		assert.Empty(t, cleared.Value)
	})

	t.Run("valid session slides and reissues", func(t *testing.T) {
		mgr, signer := newTestManager(t)

		oldExp := time.Now().Add(time.Minute).UnixMilli()
		token, err := signer.Sign(&model.Session{Exp: oldExp, Sub: "user-1", Viewer: true})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		sess, err := mgr.Authenticate(w, requestWithCookie(token))
		require.NoError(t, err)

		assert.Equal(t, "user-1", sess.Sub)
		assert.True(t, sess.Viewer)
		// Expiration restarted from now, not from the old deadline.
		assert.Greater(t, sess.Exp, oldExp)
		assert.InDelta(t, time.Now().Add(15*time.Minute).UnixMilli(), sess.Exp, 1_000)

		reissued := responseCookie(t, w, "session")
		assert.NotEmpty(t, reissued.Value)
		assert.NotEqual(t, token, reissued.Value)

		got, err := signer.Verify(reissued.Value, true)
		require.NoError(t, err)
		assert.Equal(t, sess, got)
	})
}

func TestManager_Issue(t *testing.T) {
	mgr, _ := newTestManager(t)

	sess := &model.Session{Exp: time.Now().Add(15 * time.Minute).UnixMilli(), Sub: "user-1"}
	w := httptest.NewRecorder()
	require.NoError(t, mgr.Issue(w, sess))

	c := responseCookie(t, w, "session")
	assert.NotEmpty(t, c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.WithinDuration(t, sess.ExpiresAt(), c.Expires, time.Second)
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("strict"))
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite("lax"))
	assert.Equal(t, http.SameSiteNoneMode, parseSameSite("none"))
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("bogus"))
}

func TestSessionContext(t *testing.T) {
	sess := &model.Session{Sub: "user-1"}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, FromRequest(r))

	r = r.WithContext(ToContext(r.Context(), sess))
	assert.Equal(t, sess, FromRequest(r))
}
