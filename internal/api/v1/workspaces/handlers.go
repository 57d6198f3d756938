// Package workspaces implements HTTP handlers for workspaces and their
// instance lifecycle.
package workspaces

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wsadmin/internal/api/types"
	"wsadmin/internal/config"
	"wsadmin/internal/startup"
	"wsadmin/internal/storage"
)

// Handler manages all workspace-related HTTP endpoints.
type Handler struct {
	storage    *storage.Storage
	process    *startup.Process
	pagination config.PaginationConfig
	now        func() time.Time
}

// NewHandler creates a new workspace handler instance.
func NewHandler(storage *storage.Storage, process *startup.Process, pagination config.PaginationConfig) *Handler {
	return &Handler{
		storage:    storage,
		process:    process,
		pagination: pagination,
		now:        time.Now,
	}
}

// List handles GET /api/v1/workspaces
//
// Query parameters:
//   - page, page_size
//   - owner_id, project_id (optional)
//   - search (substring of context URL or description)
func (h *Handler) List(c *gin.Context) {
	params, apiErr := types.BindPagination(c, h.pagination)
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	var where []storage.Clause
	for _, filter := range []string{"owner_id", "project_id"} {
		id, ok, apiErr := types.OptionalID(c, filter)
		if apiErr != nil {
			types.AbortWithError(c, apiErr)
			return
		}
		if ok {
			where = append(where, storage.Where(filter+" = ?", id))
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + search + "%"
		where = append(where, storage.Where("(context_url LIKE ? OR description LIKE ?)", pattern, pattern))
	}

	ctx := c.Request.Context()
	workspaces, meta, err := types.Paginate(ctx, h.storage.Repositories().Workspaces, params, "id DESC", where...)
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to list workspaces", err))
		return
	}

	responses := make([]WorkspaceResponse, 0, len(workspaces))
	for _, ws := range workspaces {
		latest, err := h.latestInstance(ctx, ws.ID)
		if err != nil {
			types.AbortWithError(c, types.InternalError("failed to resolve workspace instance", err))
			return
		}
		responses = append(responses, newWorkspaceResponse(ws, latest))
	}

	c.JSON(http.StatusOK, types.SuccessResponseWithPagination(responses, meta))
}

// Get handles GET /api/v1/workspaces/:id
func (h *Handler) Get(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "workspace")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	ctx := c.Request.Context()
	ws, err := h.storage.Repositories().Workspaces.GetByID(ctx, id)
	if err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "workspace", "retrieve workspace"))
		return
	}

	latest, err := h.latestInstance(ctx, ws.ID)
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to resolve workspace instance", err))
		return
	}

	c.JSON(http.StatusOK, types.SuccessResponse(newWorkspaceResponse(*ws, latest)))
}

// Start handles POST /api/v1/workspaces/:id/start
//
// Returns:
//   - 201 Created with the new instance
//   - 404 Not Found if the workspace does not exist
//   - 409 Conflict if the previous instance has not stopped or the owner is blocked
func (h *Handler) Start(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "workspace")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	instance, err := h.storage.StartWorkspace(c.Request.Context(), id, req.Region)
	if err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "workspace", "start workspace"))
		return
	}

	c.JSON(http.StatusCreated, types.SuccessResponse(newInstanceResponse(instance)))
}

// Stop handles POST /api/v1/workspaces/:id/stop
//
// Returns:
//   - 200 OK with the instance, now stopping
//   - 409 Conflict if no instance is active
func (h *Handler) Stop(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "workspace")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	instance, err := h.storage.StopWorkspace(c.Request.Context(), id)
	if err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "workspace", "stop workspace"))
		return
	}

	c.JSON(http.StatusOK, types.SuccessResponse(newInstanceResponse(instance)))
}

// Phase handles POST /api/v1/workspaces/:id/phase
//
// Records a phase reported by the cluster for the latest instance.
//
// Returns:
//   - 200 OK with the updated instance
//   - 400 Bad Request for an unknown phase
//   - 404 Not Found if the workspace has never been started
//   - 409 Conflict if the instance has already stopped
func (h *Handler) Phase(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "workspace")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	var req PhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	phase, err := startup.ParsePhase(req.Phase)
	if err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	instance, err := h.storage.RecordPhase(c.Request.Context(), id, phase)
	if err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "workspace instance", "record phase"))
		return
	}

	c.JSON(http.StatusOK, types.SuccessResponse(newInstanceResponse(instance)))
}

// Progress handles GET /api/v1/workspaces/:id/progress
//
// Estimates startup progress of the latest instance from its phase and the
// time spent in it. A workspace that was never started reports the stopped
// phase at 0%.
func (h *Handler) Progress(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "workspace")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.storage.Repositories().Workspaces.GetByID(ctx, id); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "workspace", "retrieve workspace"))
		return
	}

	latest, err := h.latestInstance(ctx, id)
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to resolve workspace instance", err))
		return
	}

	if latest == nil {
		c.JSON(http.StatusOK, types.SuccessResponse(ProgressResponse{
			Progress: h.process.Estimate(startup.PhaseStopped, 0),
		}))
		return
	}

	elapsed := h.now().Sub(latest.PhaseChangedAt)
	c.JSON(http.StatusOK, types.SuccessResponse(ProgressResponse{
		Progress:   h.process.Estimate(startup.Phase(latest.Phase), elapsed),
		InstanceID: latest.InstanceID,
	}))
}

// latestInstance returns nil without error when the workspace has no
// instances.
func (h *Handler) latestInstance(ctx context.Context, workspaceID int64) (*storage.WorkspaceInstance, error) {
	latest, err := h.storage.LatestInstance(ctx, workspaceID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return latest, err
}
