// Package httpserver exposes the sportsbook over HTTP: bet placement,
// ticket financials, the betting offer, account operations, plus metrics
// and health endpoints.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/pkg/healthprobe"
)

// Server provides the HTTP API together with metrics and health checks.
type Server struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
}

// Config holds server configuration.
type Config struct {
	Port          string
	Logger        *zap.Logger
	HealthChecker *healthprobe.HealthChecker
	Bets          BetEngine
	Accounts      AccountEngine
	Offer         OfferEngine
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Routes
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.HealthChecker.Health())
	r.Get("/ready", cfg.HealthChecker.Ready())

	// API endpoints (if engines provided)
	if cfg.Bets != nil {
		betsHandler := NewBetsHandler(cfg.Bets, cfg.Logger)
		r.Post("/api/bets", betsHandler.HandlePlaceBet)
		r.Get("/api/bets/{ticketID}/amounts", betsHandler.HandleTicketAmounts)
	}

	if cfg.Offer != nil {
		offerHandler := NewOfferHandler(cfg.Offer, cfg.Logger)
		r.Get("/api/offer", offerHandler.HandleOffer)
		r.Get("/api/bets/{ticketID}/selections", offerHandler.HandleTicketSelections)
	}

	if cfg.Accounts != nil {
		accountHandler := NewAccountHandler(cfg.Accounts, cfg.Logger)
		r.Get("/api/users/{userID}", accountHandler.HandleGetUser)
		r.Post("/api/users/{userID}/transactions", accountHandler.HandleTransaction)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		server:        server,
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
	}
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server stops or encounters an error.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
