package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/testersen/jmsn.link/internal/config"
	"github.com/testersen/jmsn.link/internal/handler"
	"github.com/testersen/jmsn.link/internal/service/crypto"
	"github.com/testersen/jmsn.link/internal/service/metrics"
	"github.com/testersen/jmsn.link/internal/service/oauth"
	"github.com/testersen/jmsn.link/internal/service/session"
	"github.com/testersen/jmsn.link/internal/service/slug"
	"github.com/testersen/jmsn.link/internal/store"
	"github.com/testersen/jmsn.link/pkg/logger"
)

// NewServer creates the HTTP server with chi router and all handlers.
func NewServer(cfg *config.Config, m *metrics.Metrics) (*http.Server, *RouterDeps, error) {
	deps, err := createDependencies(cfg, m)
	if err != nil {
		return nil, nil, err
	}

	router := SetupRouter(deps)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, deps, nil
}

// createDependencies initializes all server dependencies.
func createDependencies(cfg *config.Config, m *metrics.Metrics) (*RouterDeps, error) {
	// The token signing key is the OAuth2 client secret; there is no
	// separate session secret to rotate.
	signer, err := crypto.NewSigner(cfg.OAuth2.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	sessionMgr := session.NewManager(&cfg.Session, signer)

	st, err := store.New(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.Init(initCtx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize link store: %w", err)
	}
	logger.Info("link store initialized", zap.Strings("addresses", cfg.Redis.Addresses))

	flow := oauth.NewFlow(cfg, signer, sessionMgr, st, m)

	return &RouterDeps{
		Config:          cfg,
		Metrics:         m,
		Store:           st,
		AuthHandler:     handler.NewAuthHandler(sessionMgr, flow, m),
		LinksHandler:    handler.NewLinksHandler(st, slug.NewGenerator(), &cfg.Links, m),
		RedirectHandler: handler.NewRedirectHandler(st, m),
		HealthHandler:   handler.NewHealthHandler(st),
	}, nil
}

// runServer builds the server, starts it and blocks until shutdown.
func runServer(cfg *config.Config) error {
	m := metrics.New()

	srv, deps, err := NewServer(cfg, m)
	if err != nil {
		return err
	}
	defer deps.Store.Close()

	go startHTTPServer(srv, cfg.Server.HTTPPort)

	deps.HealthHandler.SetReady(true)
	logger.Info("service ready", zap.Int("port", cfg.Server.HTTPPort))

	waitForShutdown(srv, deps.HealthHandler)
	return nil
}

// startHTTPServer starts HTTP server and handles errors.
func startHTTPServer(srv *http.Server, port int) {
	logger.Info("starting HTTP server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown.
func waitForShutdown(srv *http.Server, healthHandler *handler.HealthHandler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Mark as not ready
	healthHandler.SetReady(false)

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}
