// Package projects defines API request/response types for project administration.
package projects

import "time"

// ProjectRequest creates a project.
type ProjectRequest struct {
	TeamID   int64  `json:"team_id" binding:"required,min=1"`
	Name     string `json:"name" binding:"required,max=100"`
	CloneURL string `json:"clone_url" binding:"required"`
}

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ID             int64     `json:"id"`
	TeamID         int64     `json:"team_id"`
	Name           string    `json:"name"`
	CloneURL       string    `json:"clone_url"`
	WorkspaceCount int64     `json:"workspace_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
