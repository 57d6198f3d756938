package api

import (
	"github.com/gin-gonic/gin"

	v1 "wsadmin/internal/api/v1"
)

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	baseHandler := NewHandler(s.storage)

	apiGroup := s.router.Group("/api")

	// Base endpoints
	apiGroup.GET("/ping", baseHandler.Ping)
	apiGroup.GET("/health", baseHandler.Health)

	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1.SetupRoutes(apiGroup.Group("/v1"), v1.Dependencies{
		Storage:    s.storage,
		Process:    s.process,
		Pagination: s.config.Pagination,
	})
}
