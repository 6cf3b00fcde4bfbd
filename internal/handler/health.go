package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/testersen/jmsn.link/internal/store"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store     *store.Store
	startTime time.Time
	mu        sync.RWMutex
	ready     bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(st *store.Store) *HealthHandler {
	return &HealthHandler{
		store:     st,
		startTime: time.Now(),
		ready:     false,
	}
}

// SetReady marks the service as ready
func (h *HealthHandler) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady returns the ready status
func (h *HealthHandler) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HandleHealth handles the /health endpoint (liveness probe)
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleReady handles the /ready endpoint (readiness probe)
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	allHealthy := true

	if !h.IsReady() {
		checks["startup"] = "not ready"
		allHealthy = false
	} else {
		checks["startup"] = "ok"
	}

	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			checks["redis"] = err.Error()
			allHealthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	response := HealthResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	}

	status := http.StatusOK
	response.Status = "ready"
	if !allHealthy {
		status = http.StatusServiceUnavailable
		response.Status = "not ready"
	}

	respondJSON(w, status, response)
}
