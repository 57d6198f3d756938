// Package teams implements HTTP handlers for teams and their members.
package teams

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wsadmin/internal/api/types"
	"wsadmin/internal/config"
	"wsadmin/internal/storage"
)

// Handler manages all team-related HTTP endpoints.
type Handler struct {
	storage    *storage.Storage
	pagination config.PaginationConfig
}

// NewHandler creates a new team handler instance.
func NewHandler(storage *storage.Storage, pagination config.PaginationConfig) *Handler {
	return &Handler{
		storage:    storage,
		pagination: pagination,
	}
}

// List handles GET /api/v1/teams
//
// Query parameters:
//   - page, page_size
//   - search (substring of name or slug)
func (h *Handler) List(c *gin.Context) {
	params, apiErr := types.BindPagination(c, h.pagination)
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	var where []storage.Clause
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + search + "%"
		where = append(where, storage.Where("(name LIKE ? OR slug LIKE ?)", pattern, pattern))
	}

	ctx := c.Request.Context()
	teams, meta, err := types.Paginate(ctx, h.storage.Repositories().Teams, params, "name ASC, id ASC", where...)
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to list teams", err))
		return
	}

	responses := make([]TeamResponse, 0, len(teams))
	for _, t := range teams {
		members, err := h.memberCount(ctx, t.ID)
		if err != nil {
			types.AbortWithError(c, types.InternalError("failed to count team members", err))
			return
		}
		responses = append(responses, newTeamResponse(t, members))
	}

	c.JSON(http.StatusOK, types.SuccessResponseWithPagination(responses, meta))
}

// Create handles POST /api/v1/teams
//
// Returns:
//   - 201 Created with the new team
//   - 404 Not Found if owner_id does not exist
//   - 409 Conflict if the slug is taken
func (h *Handler) Create(c *gin.Context) {
	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	team := &storage.Team{Name: req.Name, Slug: req.Slug}
	if err := h.storage.CreateTeam(c.Request.Context(), team, req.OwnerID); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "owner", "create team"))
		return
	}

	members := int64(0)
	if req.OwnerID > 0 {
		members = 1
	}

	log.Info().Int64("team_id", team.ID).Str("slug", team.Slug).Msg("Team created")
	c.JSON(http.StatusCreated, types.SuccessResponse(newTeamResponse(*team, members)))
}

// Get handles GET /api/v1/teams/:id
func (h *Handler) Get(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "team")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	ctx := c.Request.Context()
	team, err := h.storage.Repositories().Teams.GetByID(ctx, id)
	if err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "team", "retrieve team"))
		return
	}

	members, err := h.memberCount(ctx, team.ID)
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to count team members", err))
		return
	}

	c.JSON(http.StatusOK, types.SuccessResponse(newTeamResponse(*team, members)))
}

// Delete handles DELETE /api/v1/teams/:id
//
// Memberships and projects of the team are removed with it.
func (h *Handler) Delete(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "team")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	if err := h.storage.Repositories().Teams.Delete(c.Request.Context(), id); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "team", "delete team"))
		return
	}

	log.Info().Int64("team_id", id).Msg("Team deleted")
	c.Status(http.StatusNoContent)
}

// Members handles GET /api/v1/teams/:id/members
func (h *Handler) Members(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "team")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	params, apiErr := types.BindPagination(c, h.pagination)
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	ctx := c.Request.Context()
	repos := h.storage.Repositories()
	if _, err := repos.Teams.GetByID(ctx, id); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "team", "retrieve team"))
		return
	}

	members, meta, err := types.Paginate(ctx, repos.TeamMembers, params, "id ASC", storage.Where("team_id = ?", id))
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to list team members", err))
		return
	}

	responses := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		user, err := repos.Users.GetByID(ctx, m.UserID)
		if err != nil {
			types.AbortWithError(c, types.InternalError("failed to resolve team member", err))
			return
		}
		responses = append(responses, MemberResponse{
			UserID:   user.ID,
			Name:     user.Name,
			FullName: user.FullName,
			Email:    user.Email,
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, types.SuccessResponseWithPagination(responses, meta))
}

// AddMember handles POST /api/v1/teams/:id/members
//
// Returns:
//   - 201 Created with the membership
//   - 404 Not Found if the team or user does not exist
//   - 409 Conflict if the user is already a member
func (h *Handler) AddMember(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "team")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	ctx := c.Request.Context()
	repos := h.storage.Repositories()

	if _, err := repos.Teams.GetByID(ctx, id); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "team", "retrieve team"))
		return
	}
	user, err := repos.Users.GetByID(ctx, req.UserID)
	if err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "user", "retrieve user"))
		return
	}

	member := &storage.TeamMember{
		TeamID:    id,
		UserID:    user.ID,
		Role:      req.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := storage.ValidateTeamMember(member); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	if err := repos.TeamMembers.Create(ctx, member); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			types.AbortWithError(c, types.ConflictError("user is already a member of this team"))
			return
		}
		types.AbortWithError(c, types.InternalError("failed to add team member", err))
		return
	}

	log.Info().Int64("team_id", id).Int64("user_id", user.ID).Str("role", member.Role).Msg("Team member added")

	c.JSON(http.StatusCreated, types.SuccessResponse(MemberResponse{
		UserID:   user.ID,
		Name:     user.Name,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     member.Role,
		JoinedAt: member.CreatedAt,
	}))
}

// RemoveMember handles DELETE /api/v1/teams/:id/members/:user_id
//
// The last owner cannot be removed while the team has other members.
func (h *Handler) RemoveMember(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "team")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}
	userID, apiErr := types.ParseID(c, "user_id", "user")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	if err := h.storage.RemoveTeamMember(c.Request.Context(), id, userID); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "team member", "remove team member"))
		return
	}

	log.Info().Int64("team_id", id).Int64("user_id", userID).Msg("Team member removed")
	c.Status(http.StatusNoContent)
}

func (h *Handler) memberCount(ctx context.Context, teamID int64) (int64, error) {
	return h.storage.Repositories().TeamMembers.Count(ctx, storage.Where("team_id = ?", teamID))
}
