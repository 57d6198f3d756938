package pages

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wsadmin/internal/api/types"
	"wsadmin/internal/pagination"
)

// Handler serves pagination window requests.
type Handler struct{}

// NewHandler creates a new pages handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Window handles GET /api/v1/pagination/window
//
// Query parameters:
//   - total_pages (required, >= 0)
//   - current_page (default 1, clamped into range)
func (h *Handler) Window(c *gin.Context) {
	var req WindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		types.AbortWithError(c, types.ValidationError(err.Error()))
		return
	}

	total := *req.TotalPages
	current := pagination.DefaultPage
	if req.CurrentPage != nil {
		current = *req.CurrentPage
	}
	if total > 0 {
		current = pagination.Clamp(current, total)
	}

	window := pagination.ComputeWindow(total, current)
	c.JSON(http.StatusOK, types.SuccessResponse(WindowResponse{
		TotalPages:  total,
		CurrentPage: current,
		Window:      window,
		Text:        window.String(),
	}))
}
