// Package teams defines API request/response types for team administration.
package teams

import (
	"time"

	"wsadmin/internal/storage"
)

// TeamRequest creates a team. The slug is derived from the name when empty
// and owner_id, when set, becomes the first owner.
type TeamRequest struct {
	Name    string `json:"name" binding:"required,max=64"`
	Slug    string `json:"slug" binding:"omitempty,max=64"`
	OwnerID int64  `json:"owner_id" binding:"omitempty,min=1"`
}

// TeamResponse represents a team in API responses.
type TeamResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberRequest adds a user to a team.
type MemberRequest struct {
	UserID int64  `json:"user_id" binding:"required,min=1"`
	Role   string `json:"role" binding:"omitempty,oneof=owner member"`
}

// MemberResponse is a membership joined with its user.
type MemberResponse struct {
	UserID   int64     `json:"user_id"`
	Name     string    `json:"name"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func newTeamResponse(t storage.Team, members int64) TeamResponse {
	return TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		MemberCount: members,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
