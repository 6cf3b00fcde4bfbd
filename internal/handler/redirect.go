package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/testersen/jmsn.link/internal/service/metrics"
	"github.com/testersen/jmsn.link/internal/store"
	"github.com/testersen/jmsn.link/pkg/logger"
)

// RedirectHandler resolves slugs to their targets. This is the only
// surface open to anonymous visitors.
type RedirectHandler struct {
	store   *store.Store
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewRedirectHandler creates the public slug resolver.
func NewRedirectHandler(st *store.Store, m *metrics.Metrics) *RedirectHandler {
	return &RedirectHandler{
		store:   st,
		metrics: m,
		log:     logger.Named("redirect"),
	}
}

// HandleRedirect looks up the slug and 302s to the target.
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	rec, err := h.store.GetRedirect(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.metrics.RecordRedirect("miss")
			http.NotFound(w, r)
			return
		}
		h.log.Error("failed to resolve slug", zap.Error(err), zap.String("slug", slug))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordRedirect("hit")
	http.Redirect(w, r, rec.Target, http.StatusFound)
}
