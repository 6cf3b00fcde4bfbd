package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/testersen/jmsn.link/internal/config"
	"github.com/testersen/jmsn.link/internal/handler"
	"github.com/testersen/jmsn.link/internal/service/metrics"
	"github.com/testersen/jmsn.link/internal/store"
	"github.com/testersen/jmsn.link/pkg/logger"
	"github.com/testersen/jmsn.link/pkg/resilience/ratelimit"
)

// RouterDeps contains dependencies for router setup.
type RouterDeps struct {
	Config          *config.Config
	Metrics         *metrics.Metrics
	Store           *store.Store
	AuthHandler     *handler.AuthHandler
	LinksHandler    *handler.LinksHandler
	RedirectHandler *handler.RedirectHandler
	HealthHandler   *handler.HealthHandler
}

// SetupRouter creates and configures chi router with all middleware and routes.
func SetupRouter(deps *RouterDeps) chi.Router {
	r := chi.NewRouter()

	applyGlobalMiddleware(r, deps)

	registerAPIRoutes(r, deps)
	registerPageRoutes(r, deps)
	registerOpsRoutes(r, deps)
	registerRedirectRoutes(r, deps)

	return r
}

// applyGlobalMiddleware applies middleware stack to router.
func applyGlobalMiddleware(r chi.Router, deps *RouterDeps) {
	cfg := deps.Config

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	// Logging middleware
	r.Use(logger.RequestLogger)
	r.Use(logger.RecoveryLogger)
	r.Use(chimw.CleanPath)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(deps.Metrics.Middleware)

	// Rate limiting
	if cfg.Resilience.RateLimit.Enabled {
		limiter := createRateLimiter(cfg)
		if limiter != nil {
			r.Use(limiter.Middleware())
			logger.Info("rate limiting enabled", zap.String("rate", cfg.Resilience.RateLimit.Rate))
		}
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Session-Expiration"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// createRateLimiter creates rate limiter from config.
func createRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	excludes := cfg.Resilience.RateLimit.ExcludePaths
	if len(excludes) == 0 {
		excludes = []string{
			cfg.Observability.Health.Path,
			cfg.Observability.Ready.Path,
			cfg.Observability.Metrics.Path,
		}
	}

	limiter, err := ratelimit.NewLimiter(ratelimit.Config{
		Rate:              cfg.Resilience.RateLimit.Rate,
		TrustForwardedFor: cfg.Resilience.RateLimit.TrustForwardedFor,
		ExcludePaths:      excludes,
	})
	if err != nil {
		logger.Error("failed to create rate limiter", zap.Error(err))
		return nil
	}
	return limiter
}

// registerAPIRoutes registers the link API (session required, 401 without).
func registerAPIRoutes(r chi.Router, deps *RouterDeps) {
	r.Route("/api", func(r chi.Router) {
		r.Use(deps.AuthHandler.RequireSession)
		r.Get("/ping", handler.HandlePing)
		r.Get("/links", deps.LinksHandler.HandleList)
		r.Post("/links", deps.LinksHandler.HandleCreate)
		r.Delete("/links/{slug}", deps.LinksHandler.HandleDelete)
	})
}

// registerPageRoutes registers the gated portal page. Unauthenticated
// requests fall into the login flow instead of getting a 401.
func registerPageRoutes(r chi.Router, deps *RouterDeps) {
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthHandler.EnsureSession)
		r.Get("/", handler.HandlePortal)
		// The provider posts the login callback to the origin.
		r.Post("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Reached only with a live session; the callback was already
			// consumed by the middleware.
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}))
	})
}

// registerOpsRoutes registers health, readiness and metrics endpoints.
func registerOpsRoutes(r chi.Router, deps *RouterDeps) {
	cfg := deps.Config
	r.Get(cfg.Observability.Health.Path, deps.HealthHandler.HandleHealth)
	r.Get(cfg.Observability.Ready.Path, deps.HealthHandler.HandleReady)
	if cfg.Observability.Metrics.Enabled {
		r.Handle(cfg.Observability.Metrics.Path, deps.Metrics.Handler())
	}
}

// registerRedirectRoutes registers the public slug resolver.
func registerRedirectRoutes(r chi.Router, deps *RouterDeps) {
	r.Get("/{slug}", deps.RedirectHandler.HandleRedirect)
}
