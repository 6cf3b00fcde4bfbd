package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()
	require.NotNil(t, m)
	require.NotNil(t, m.Registry)

	// Recording must not panic.
	m.RecordSessionIssued()
	m.RecordSessionRejected()
	m.RecordExchange("success", 0.2)
	m.RecordExchange("error", 1.5)
	m.RecordLinkCreated("vanity")
	m.RecordLinkCreated("random")
	m.RecordLinkConflict()
	m.RecordRedirect("hit")
	m.RecordRedirect("miss")
	m.RecordHTTPRequest("GET", "/api/links", "200")
	m.RecordHTTPDuration("GET", "/api/links", 0.01)
	m.InFlightInc()
	m.InFlightDec()
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordLinkCreated("vanity")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "link_portal_links_created_total")
}

func TestMetrics_Middleware(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/links", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/links", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// The request shows up under its route pattern.
	mw := httptest.NewRecorder()
	m.Handler().ServeHTTP(mw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, mw.Body.String(), `path="/api/links"`)
}
