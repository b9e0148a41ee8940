// Package server runs the HTTP server for the REST API.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/remiblancher/kms-csr/internal/api/router"
	"github.com/remiblancher/kms-csr/internal/api/service"
)

// Config holds server configuration.
type Config struct {
	// Host to bind to. Empty means all interfaces.
	Host string

	// Port to listen on.
	Port int

	// TLSCert and TLSKey enable TLS when both are set.
	TLSCert string
	TLSKey  string

	// Timeouts.
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Address returns the listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Server represents the HTTP server.
type Server struct {
	cfg     *Config
	version string
	svc     *service.CSRService
}

// New creates a new Server.
func New(cfg *Config, version string, svc *service.CSRService) *Server {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 120 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		cfg:     cfg,
		version: version,
		svc:     svc,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	handler := router.New(&router.Config{
		Version: s.version,
		Service: s.svc,
	})

	srv := &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.printStartupInfo()

	errChan := make(chan error, 1)
	go func() {
		if s.cfg.TLSCert != "" && s.cfg.TLSKey != "" {
			errChan <- srv.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			errChan <- srv.ListenAndServe()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		log.Println("Server stopped gracefully")
	}

	return nil
}

// printStartupInfo prints server startup information.
func (s *Server) printStartupInfo() {
	fmt.Println()
	fmt.Println("CSR API Server")
	fmt.Println("==============")
	fmt.Printf("  Version:  %s\n", s.version)
	fmt.Printf("  Address:  http://%s\n", s.cfg.Address())
	fmt.Printf("  Backend:  %s\n", s.svc.Backend())
	if s.cfg.TLSCert != "" {
		fmt.Println("  TLS:      enabled")
	}
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /health      - Health check")
	fmt.Println("  GET  /ready       - Readiness check")
	fmt.Println("  POST /api/v1/csr  - Create a certification request")
	fmt.Println()
	fmt.Println("Use Ctrl+C to stop")
	fmt.Println()
}
