// Package router provides HTTP routing configuration using Chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/remiblancher/kms-csr/internal/api/handler"
	"github.com/remiblancher/kms-csr/internal/api/middleware"
	"github.com/remiblancher/kms-csr/internal/api/service"
)

// Config holds router configuration.
type Config struct {
	Version string
	Service *service.CSRService
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CORS)

	// Health endpoints
	healthHandler := handler.NewHealthHandler(cfg.Version, cfg.Service.Backend())
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	csrHandler := handler.NewCSRHandler(cfg.Service)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/csr", csrHandler.Create)
	})

	return r
}
