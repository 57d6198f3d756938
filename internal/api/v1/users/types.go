// Package users defines API request/response types for user administration.
package users

import (
	"strings"
	"time"

	"wsadmin/internal/storage"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Admin     bool      `json:"admin"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserUpdateRequest is the PATCH payload. Absent fields are left unchanged.
type UserUpdateRequest struct {
	FullName *string `json:"full_name,omitempty" binding:"omitempty,max=100"`
	Admin    *bool   `json:"admin,omitempty"`
	Blocked  *bool   `json:"blocked,omitempty"`
}

// TokenRequest creates a personal access token.
type TokenRequest struct {
	Name          string   `json:"name" binding:"required,max=100"`
	Scopes        []string `json:"scopes"`
	ExpiresInDays int      `json:"expires_in_days" binding:"omitempty,min=1,max=365"`
}

// TokenResponse describes a stored token. The plaintext is only present in
// the response to its creation.
type TokenResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Scopes    []string  `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `json:"token,omitempty"`
}

// WorkspaceSummary is a user's workspace in the per-user listing.
type WorkspaceSummary struct {
	ID          int64     `json:"id"`
	ContextURL  string    `json:"context_url"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

func newUserResponse(u storage.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Admin:     u.Admin,
		Blocked:   u.Blocked,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func newTokenResponse(t storage.PersonalAccessToken) TokenResponse {
	scopes := []string{}
	if t.Scopes != "" {
		scopes = strings.Fields(t.Scopes)
	}
	return TokenResponse{
		ID:        t.ID,
		Name:      t.Name,
		Scopes:    scopes,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}
}
