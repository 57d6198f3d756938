// Package users implements HTTP handlers for user administration: listing
// and moderating accounts, browsing their workspaces, and managing personal
// access tokens.
package users

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wsadmin/internal/api/types"
	"wsadmin/internal/config"
	"wsadmin/internal/storage"
)

// DefaultTokenLifetime applies when a token request has no expiry.
const DefaultTokenLifetime = 30 * 24 * time.Hour

// Handler manages all user-related HTTP endpoints.
type Handler struct {
	storage    *storage.Storage
	pagination config.PaginationConfig
}

// NewHandler creates a new user handler instance.
func NewHandler(storage *storage.Storage, pagination config.PaginationConfig) *Handler {
	return &Handler{
		storage:    storage,
		pagination: pagination,
	}
}

// List handles GET /api/v1/users
//
// Query parameters:
//   - page, page_size
//   - search (substring of name, full name or email)
//   - blocked, admin (optional boolean filters)
func (h *Handler) List(c *gin.Context) {
	params, apiErr := types.BindPagination(c, h.pagination)
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	var where []storage.Clause
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + search + "%"
		where = append(where, storage.Where("(name LIKE ? OR full_name LIKE ? OR email LIKE ?)", pattern, pattern, pattern))
	}

	for _, filter := range []string{"blocked", "admin"} {
		value, ok, apiErr := types.OptionalBool(c, filter)
		if apiErr != nil {
			types.AbortWithError(c, apiErr)
			return
		}
		if ok {
			where = append(where, storage.Where(filter+" = ?", value))
		}
	}

	users, meta, err := types.Paginate(c.Request.Context(), h.storage.Repositories().Users, params, "id DESC", where...)
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to list users", err))
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, newUserResponse(u))
	}

	c.JSON(http.StatusOK, types.SuccessResponseWithPagination(responses, meta))
}

// Get handles GET /api/v1/users/:id
func (h *Handler) Get(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "user")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	user, err := h.storage.Repositories().Users.GetByID(c.Request.Context(), id)
	if err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "user", "retrieve user"))
		return
	}

	c.JSON(http.StatusOK, types.SuccessResponse(newUserResponse(*user)))
}

// Update handles PATCH /api/v1/users/:id
//
// Only full_name, admin and blocked can be changed from the dashboard.
func (h *Handler) Update(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "user")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	var req UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	if req.FullName == nil && req.Admin == nil && req.Blocked == nil {
		types.AbortWithError(c, types.ValidationError("no fields to update"))
		return
	}

	ctx := c.Request.Context()
	user, err := h.storage.Repositories().Users.GetByID(ctx, id)
	if err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "user", "retrieve user"))
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Admin != nil {
		user.Admin = *req.Admin
	}
	if req.Blocked != nil {
		user.Blocked = *req.Blocked
	}

	if err := storage.ValidateUser(user); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	if err := h.storage.Repositories().Users.Update(ctx, user); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "user", "update user"))
		return
	}

	log.Info().
		Int64("user_id", user.ID).
		Bool("admin", user.Admin).
		Bool("blocked", user.Blocked).
		Msg("User updated")

	c.JSON(http.StatusOK, types.SuccessResponse(newUserResponse(*user)))
}

// Delete handles DELETE /api/v1/users/:id
//
// Memberships, workspaces and tokens of the user are removed with it.
func (h *Handler) Delete(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "user")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	if err := h.storage.Repositories().Users.Delete(c.Request.Context(), id); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "user", "delete user"))
		return
	}

	log.Info().Int64("user_id", id).Msg("User deleted")
	c.Status(http.StatusNoContent)
}

// Workspaces handles GET /api/v1/users/:id/workspaces
func (h *Handler) Workspaces(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "user")
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
	if _, err := h.storage.Repositories().Users.GetByID(ctx, id); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "user", "retrieve user"))
		return
	}

	workspaces, meta, err := types.Paginate(ctx, h.storage.Repositories().Workspaces, params, "id DESC",
		storage.Where("owner_id = ?", id))
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to list workspaces", err))
		return
	}

	responses := make([]WorkspaceSummary, 0, len(workspaces))
	for _, ws := range workspaces {
		responses = append(responses, WorkspaceSummary{
			ID:          ws.ID,
			ContextURL:  ws.ContextURL,
			Description: ws.Description,
			Type:        ws.Type,
			CreatedAt:   ws.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, types.SuccessResponseWithPagination(responses, meta))
}

// Tokens handles GET /api/v1/users/:id/tokens
func (h *Handler) Tokens(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "user")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.storage.Repositories().Users.GetByID(ctx, id); err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "user", "retrieve user"))
		return
	}

	tokens, err := h.storage.Repositories().Tokens.Find(ctx, "id DESC", storage.Where("user_id = ?", id))
	if err != nil {
		types.AbortWithError(c, types.InternalError("failed to list tokens", err))
		return
	}

	responses := make([]TokenResponse, 0, len(tokens))
	for _, t := range tokens {
		responses = append(responses, newTokenResponse(t))
	}

	c.JSON(http.StatusOK, types.SuccessResponse(responses))
}

// CreateToken handles POST /api/v1/users/:id/tokens
//
// The plaintext token is part of this response only.
func (h *Handler) CreateToken(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "user")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	lifetime := DefaultTokenLifetime
	if req.ExpiresInDays > 0 {
		lifetime = time.Duration(req.ExpiresInDays) * 24 * time.Hour
	}

	token, plaintext, err := h.storage.IssueToken(c.Request.Context(), id, req.Name, strings.Join(req.Scopes, " "), lifetime)
	if err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "user", "create token"))
		return
	}

	response := newTokenResponse(*token)
	response.Token = plaintext
	c.JSON(http.StatusCreated, types.SuccessResponse(response))
}

// DeleteToken handles DELETE /api/v1/users/:id/tokens/:token_id
func (h *Handler) DeleteToken(c *gin.Context) {
	id, apiErr := types.ParseID(c, "id", "user")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}
	tokenID, apiErr := types.ParseID(c, "token_id", "token")
	if apiErr != nil {
		types.AbortWithError(c, apiErr)
		return
	}

	err := h.storage.Repositories().Tokens.DeleteWhere(c.Request.Context(),
		storage.Where("id = ?", tokenID),
		storage.Where("user_id = ?", id),
	)
	if err != nil {
		types.AbortWithError(c, types.FromStorageError(err, "token", "delete token"))
		return
	}

	log.Info().Int64("user_id", id).Int64("token_id", tokenID).Msg("Personal access token revoked")
	c.Status(http.StatusNoContent)
}
