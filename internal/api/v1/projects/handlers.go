// Package projects implements HTTP handlers for team projects.
package projects

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wsadmin/internal/api/types"
	"wsadmin/internal/config"
	"wsadmin/internal/storage"
)

// Handler manages all project-related HTTP endpoints.
type Handler struct {
	storage    *storage.Storage
	pagination config.PaginationConfig
}

// NewHandler creates a new project handler instance.
func NewHandler(storage *storage.Storage, pagination config.PaginationConfig) *Handler {
	return &Handler{
		storage:    storage,
		pagination: pagination,
	}
}

// List handles GET /api/v1/projects
//
// Query parameters:
//   - page, page_size
//   - team_id (optional)
//   - search (substring of name or clone URL)
func (h *Handler) List(c *gin.Context) {
	params, apiErr := types.BindPagination(c, h.pagination)
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	var where []storage.Clause
	teamID, ok, apiErr := types.OptionalID(c, "team_id")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}
	if ok {
		where = append(where, storage.Where("team_id = ?", teamID))
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + search + "%"
		where = append(where, storage.Where("(name LIKE ? OR clone_url LIKE ?)", pattern, pattern))
	}

	ctx := c.Request.Context()
	projects, meta, err := types.Paginate(ctx, h.storage.Repositories().Projects, params, "id DESC", where...)
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to list projects", err))
		return
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp, err := h.toResponse(ctx, p)
		if err != nil {
			types.AbortWithError(c, types.InternalError("failed to count project workspaces", err))
			return
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, types.SuccessResponseWithPagination(responses, meta))
}

// Create handles POST /api/v1/projects
//
// Returns:
//   - 201 Created with the new project
//   - 404 Not Found if the team does not exist
//   - 409 Conflict if the team already has a project with this clone URL
func (h *Handler) Create(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	ctx := c.Request.Context()
	repos := h.storage.Repositories()

	if _, err := repos.Teams.GetByID(ctx, req.TeamID); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "team", "retrieve team"))
		return
	}

	now := time.Now().UTC()
	project := &storage.Project{
		TeamID:    req.TeamID,
		Name:      req.Name,
		CloneURL:  req.CloneURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := storage.ValidateProject(project); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	if err := repos.Projects.Create(ctx, project); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "project", "create project"))
		return
	}

	log.Info().Int64("project_id", project.ID).Int64("team_id", project.TeamID).Msg("Project created")
	c.JSON(http.StatusCreated, types.SuccessResponse(ProjectResponse{
		ID:        project.ID,
		TeamID:    project.TeamID,
		Name:      project.Name,
		CloneURL:  project.CloneURL,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}))
}

// Get handles GET /api/v1/projects/:id
func (h *Handler) Get(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "project")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	ctx := c.Request.Context()
	project, err := h.storage.Repositories().Projects.GetByID(ctx, id)
	if err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "project", "retrieve project"))
		return
	}

	resp, err := h.toResponse(ctx, *project)
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to count project workspaces", err))
		return
	}

	c.JSON(http.StatusOK, types.SuccessResponse(resp))
}

// Delete handles DELETE /api/v1/projects/:id
//
// Workspaces opened from the project are kept and lose their project link.
func (h *Handler) Delete(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "project")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	if err := h.storage.Repositories().Projects.Delete(c.Request.Context(), id); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "project", "delete project"))
		return
	}

	log.Info().Int64("project_id", id).Msg("Project deleted")
	c.Status(http.StatusNoContent)
}

func (h *Handler) toResponse(ctx context.Context, p storage.Project) (ProjectResponse, error) {
	count, err := h.storage.Repositories().Workspaces.Count(ctx, storage.Where("project_id = ?", p.ID))
	if err != nil {
		return ProjectResponse{}, err
	}
	return ProjectResponse{
		ID:             p.ID,
		TeamID:         p.TeamID,
		Name:           p.Name,
		CloneURL:       p.CloneURL,
		WorkspaceCount: count,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}, nil
}
