// Package server provides the main server orchestration for wsadmin.
//
// This package coordinates the startup and shutdown of all core components:
//   - SQLite storage initialization and migration
//   - Maintenance scheduler startup
//   - HTTP API server management
//   - Graceful shutdown handling
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"wsadmin/internal/api"
	"wsadmin/internal/config"
	"wsadmin/internal/maintenance"
	"wsadmin/internal/startup"
	"wsadmin/internal/storage"
)

// ShutdownTimeout bounds the graceful shutdown of the HTTP server.
const ShutdownTimeout = 30 * time.Second

// Server represents the main wsadmin server orchestrator.
type Server struct {
	// cfg holds the application configuration
	cfg *config.Config
}

// New creates a new server instance with the provided configuration.
//
// The server is not started until Run() is called.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg: cfg,
	}
}

// Run initializes and starts all server components in order and blocks
// until ctx is cancelled or a component fails.
//
// The startup sequence is:
//  1. SQLite storage initialization and migration
//  2. Maintenance scheduler with the token sweep and instance finalizer jobs
//  3. HTTP API server
//
// Components are stopped in reverse order.
func (s *Server) Run(ctx context.Context) (err error) {
	process, err := startup.NewProcess(s.cfg.Startup.Stages())
	if err != nil {
		return fmt.Errorf("invalid startup stages: %w", err)
	}

	// Phase 1: storage, everything else depends on it
	store, err := storage.Open(ctx, s.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close storage: %w", closeErr))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	// Phase 2: maintenance jobs
	scheduler := maintenance.NewScheduler(s.cfg.Maintenance)
	if err := scheduler.Start(gctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer scheduler.Stop()

	for _, job := range maintenance.Jobs(store, s.cfg.Maintenance) {
		if err := scheduler.AddJob(job); err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", job.ID, err)
		}
	}

	// Phase 3: HTTP API
	httpServer := api.NewServer(s.cfg, store, process)

	g.Go(func() error {
		if err := httpServer.Start(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		// Stop accepting requests before the scheduler and storage go away.
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("Server stopped gracefully")
	return nil
}
