// Package api provides public endpoints for system health and connectivity.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wsadmin/internal/storage"
)

// Handler serves the unversioned endpoints used by load balancers and
// uptime monitors.
type Handler struct {
	storage   *storage.Storage
	startTime time.Time
}

// NewHandler initializes a new public API handler.
func NewHandler(storage *storage.Storage) *Handler {
	return &Handler{
		storage:   storage,
		startTime: time.Now(),
	}
}

// Ping handles GET /ping
//
// Response:
//   - 200 OK with {"message": "pong"}
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Health handles GET /health
//
// Reports database reachability and latency along with uptime and version.
// The status is "healthy" when the database answers and "degraded"
// otherwise; the HTTP status is 200 in both cases so that dashboards can
// render the report.
func (h *Handler) Health(c *gin.Context) {
	dbStatus, dbResponseTime := h.checkDatabaseHealth(c.Request.Context())

	overallStatus := "healthy"
	if dbStatus != "healthy" {
		overallStatus = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"version":   Version,
		"components": gin.H{
			"database": gin.H{
				"status":           dbStatus,
				"response_time_ms": dbResponseTime,
			},
		},
	})
}

// checkDatabaseHealth pings the database and measures the round trip.
func (h *Handler) checkDatabaseHealth(ctx context.Context) (string, int64) {
	if h.storage == nil {
		return "unhealthy", 0
	}

	start := time.Now()
	err := h.storage.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()
	if err != nil {
		return "unhealthy", responseTime
	}

	return "healthy", responseTime
}
