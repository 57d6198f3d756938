// Package workspaces defines API request/response types for workspace administration.
package workspaces

import (
	"time"

	"wsadmin/internal/startup"
	"wsadmin/internal/storage"
)

// StartRequest is the optional body of a start request.
type StartRequest struct {
	Region string `json:"region" binding:"omitempty,max=64"`
}

// PhaseRequest reports a phase transition of the latest instance.
type PhaseRequest struct {
	Phase string `json:"phase" binding:"required"`
}

// InstanceResponse represents a workspace instance.
type InstanceResponse struct {
	InstanceID     string     `json:"instance_id"`
	Region         string     `json:"region,omitempty"`
	Phase          string     `json:"phase"`
	CreatedAt      time.Time  `json:"created_at"`
	PhaseChangedAt time.Time  `json:"phase_changed_at"`
	StoppedAt      *time.Time `json:"stopped_at,omitempty"`
}

// WorkspaceResponse represents a workspace with its latest instance, if any.
type WorkspaceResponse struct {
	ID             int64             `json:"id"`
	OwnerID        int64             `json:"owner_id"`
	ProjectID      *int64            `json:"project_id"`
	ContextURL     string            `json:"context_url"`
	Description    string            `json:"description"`
	Type           string            `json:"type"`
	LatestInstance *InstanceResponse `json:"latest_instance"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ProgressResponse is the startup estimate of a workspace.
type ProgressResponse struct {
	startup.Progress
	InstanceID string `json:"instance_id,omitempty"`
}

func newInstanceResponse(i *storage.WorkspaceInstance) *InstanceResponse {
	if i == nil {
		return nil
	}
	return &InstanceResponse{
		InstanceID:     i.InstanceID,
		Region:         i.Region,
		Phase:          i.Phase,
		CreatedAt:      i.CreatedAt,
		PhaseChangedAt: i.PhaseChangedAt,
		StoppedAt:      i.StoppedAt,
	}
}

func newWorkspaceResponse(ws storage.Workspace, latest *storage.WorkspaceInstance) WorkspaceResponse {
	return WorkspaceResponse{
		ID:             ws.ID,
		OwnerID:        ws.OwnerID,
		ProjectID:      ws.ProjectID,
		ContextURL:     ws.ContextURL,
		Description:    ws.Description,
		Type:           ws.Type,
		LatestInstance: newInstanceResponse(latest),
		CreatedAt:      ws.CreatedAt,
		UpdatedAt:      ws.UpdatedAt,
	}
}
