package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/testersen/jmsn.link/internal/config"
	"github.com/testersen/jmsn.link/internal/model"
	"github.com/testersen/jmsn.link/internal/service/metrics"
	"github.com/testersen/jmsn.link/internal/service/session"
	"github.com/testersen/jmsn.link/internal/service/slug"
	"github.com/testersen/jmsn.link/internal/store"
	"github.com/testersen/jmsn.link/pkg/logger"
)

// LinksHandler implements the /api/links endpoints.
type LinksHandler struct {
	store    *store.Store
	slugs    *slug.Generator
	pageSize int64
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewLinksHandler creates the link API handler.
func NewLinksHandler(st *store.Store, slugs *slug.Generator, cfg *config.LinksConfig, m *metrics.Metrics) *LinksHandler {
	return &LinksHandler{
		store:    st,
		slugs:    slugs,
		pageSize: int64(cfg.PageSize),
		metrics:  m,
		log:      logger.Named("links"),
	}
}

// HandleList serves one page of links. ?limit caps the page (bounded by the
// configured maximum) and ?cursor resumes a previous scan.
func (h *LinksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := h.pageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			renderJSONError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		if n < limit {
			limit = n
		}
	}

	list, err := h.store.ListRedirects(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		if errors.Is(err, store.ErrBadCursor) {
			renderJSONError(w, "Invalid cursor", http.StatusBadRequest)
			return
		}
		h.log.Error("failed to list links", zap.Error(err))
		renderJSONError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// HandleCreate creates a link. Vanity slugs need the vanity_url capability,
// random slugs the short_url capability; the slug for a random link is
// allocated here, never taken from the request.
func (h *LinksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess := session.FromRequest(r)

	var req model.CreateRedirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		renderJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var slugValue string
	switch req.Type {
	case model.RedirectVanity:
		if !sess.VanityURL {
			renderJSONError(w, "vanity urls are not enabled for this account", http.StatusForbidden)
			return
		}
		slugValue = req.Slug
	case model.RedirectRandom:
		if !sess.ShortURL {
			renderJSONError(w, "random urls are not enabled for this account", http.StatusForbidden)
			return
		}
		slugValue = h.slugs.Next()
	}

	rec := &model.Redirect{
		Type:        req.Type,
		Slug:        slugValue,
		Title:       req.Title,
		Description: req.Description,
		Target:      req.Target,
		MaxAge:      req.MaxAge,
		CreatedBy:   sess.Sub,
		CreatedAt:   time.Now().UnixMilli(),
	}

	if err := h.store.CreateRedirect(r.Context(), rec); err != nil {
		if errors.Is(err, store.ErrSlugExists) {
			h.metrics.RecordLinkConflict()
		} else {
			h.log.Error("failed to create link", zap.Error(err), zap.String("slug", slugValue))
		}
		// The response does not distinguish a slug collision from a store
		// failure; the collision would let callers probe which slugs exist.
		renderJSONError(w, "Failed to create link", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordLinkCreated(req.Type)
	h.log.Info("link created",
		zap.String("type", req.Type),
		zap.String("slug", slugValue),
		zap.String("sub", sess.Sub),
	)

	respondJSON(w, http.StatusCreated, map[string]string{"slug": slugValue})
}

// HandleDelete removes a link. Administrators only; the aggregate link
// counter is not decremented.
func (h *LinksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess := session.FromRequest(r)
	if !sess.Administrator {
		renderJSONError(w, "Forbidden", http.StatusForbidden)
		return
	}

	slugValue := chi.URLParam(r, "slug")
	if err := h.store.DeleteRedirect(r.Context(), slugValue); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			renderJSONError(w, "Not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to delete link", zap.Error(err), zap.String("slug", slugValue))
		renderJSONError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.log.Info("link deleted", zap.String("slug", slugValue), zap.String("sub", sess.Sub))
	w.WriteHeader(http.StatusNoContent)
}
