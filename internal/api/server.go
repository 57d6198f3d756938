// Package api provides the HTTP API of the wsadmin dashboard.
// This package implements a RESTful API using the Gin framework.
//
// Example usage:
//
//	server := api.NewServer(cfg, store, process)
//	err := server.Start()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"wsadmin/internal/config"
	"wsadmin/internal/startup"
	"wsadmin/internal/storage"
)

// Version is reported by the health endpoint. It is overridden at build
// time with -ldflags "-X wsadmin/internal/api.Version=...".
var Version = "dev"

// Server represents the HTTP API server.
type Server struct {
	config  *config.Config
	storage *storage.Storage
	process *startup.Process
	metrics *Metrics
	router  *gin.Engine
	server  *http.Server
}

// NewServer creates a new HTTP API server instance.
func NewServer(cfg *config.Config, store *storage.Storage, process *startup.Process) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:  cfg,
		storage: store,
		process: process,
		metrics: NewMetrics(),
		router:  gin.New(),
	}

	s.metrics.Registry().MustRegister(collectors.NewDBStatsCollector(store.DB(), "wsadmin"))

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens and serves until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.config.Server.Addr).Msg("Starting HTTP server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// setupMiddleware configures middleware for the Gin router.
func (s *Server) setupMiddleware() {
	// Request ID middleware (should be first)
	s.router.Use(RequestID())

	s.router.Use(PanicRecovery())
	s.router.Use(SecurityHeaders())

	if s.config.Server.EnableCORS {
		s.router.Use(CORS(s.config.Server))
	}

	s.router.Use(s.metrics.Middleware())
	s.router.Use(LoggerMiddleware())

	// Error handling middleware (should be last)
	s.router.Use(ErrorHandler())
}
