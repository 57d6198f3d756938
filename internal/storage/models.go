// Package storage defines the data models for wsadmin.
//
// All models use struct tags to define database column mappings and constraints.
// The ORM uses these tags for automatic query generation and result mapping.
//
// Struct Tag Format:
//
//	`db:"column_name,constraint1,constraint2"`
//
// Supported constraints:
//   - primary: Marks the field as primary key
//   - unique: Adds unique constraint
//   - not_null: Adds NOT NULL constraint
//   - auto_increment: For auto-incrementing fields
package storage

import (
	"time"
)

// User is a platform account as seen by administrators.
type User struct {
	ID int64 `db:"id,primary,auto_increment"`

	// Name is the login handle, unique across users
	Name string `db:"name,not_null,unique"`

	FullName  string `db:"full_name"`
	Email     string `db:"email,not_null,unique"`
	AvatarURL string `db:"avatar_url"`

	// Admin grants access to this dashboard
	Admin bool `db:"admin,not_null"`

	// Blocked users cannot sign in or start workspaces
	Blocked bool `db:"blocked,not_null"`

	CreatedAt time.Time `db:"created_at,not_null"`
	UpdatedAt time.Time `db:"updated_at,not_null"`
}

// Team groups users that share projects.
type Team struct {
	ID   int64  `db:"id,primary,auto_increment"`
	Name string `db:"name,not_null"`

	// Slug is the URL-safe team identifier, unique across teams
	Slug string `db:"slug,not_null,unique"`

	CreatedAt time.Time `db:"created_at,not_null"`
	UpdatedAt time.Time `db:"updated_at,not_null"`
}

// TeamMember links a user to a team with a role.
type TeamMember struct {
	ID        int64     `db:"id,primary,auto_increment"`
	TeamID    int64     `db:"team_id,not_null"`
	UserID    int64     `db:"user_id,not_null"`
	Role      string    `db:"role,not_null"`
	CreatedAt time.Time `db:"created_at,not_null"`
}

// Project is a repository configured for a team.
type Project struct {
	ID        int64     `db:"id,primary,auto_increment"`
	TeamID    int64     `db:"team_id,not_null"`
	Name      string    `db:"name,not_null"`
	CloneURL  string    `db:"clone_url,not_null"`
	CreatedAt time.Time `db:"created_at,not_null"`
	UpdatedAt time.Time `db:"updated_at,not_null"`
}

// Workspace is a development environment owned by a user.
//
// A workspace outlives its instances: every start creates a new
// WorkspaceInstance.
type Workspace struct {
	ID        int64  `db:"id,primary,auto_increment"`
	OwnerID   int64  `db:"owner_id,not_null"`
	ProjectID *int64 `db:"project_id"`

	// ContextURL is the repository, branch, or issue the workspace was opened from
	ContextURL  string `db:"context_url,not_null"`
	Description string `db:"description"`

	// Type is 'regular' or 'prebuild'
	Type string `db:"type,not_null"`

	CreatedAt time.Time `db:"created_at,not_null"`
	UpdatedAt time.Time `db:"updated_at,not_null"`
}

// WorkspaceInstance is one run of a workspace.
type WorkspaceInstance struct {
	ID          int64 `db:"id,primary,auto_increment"`
	WorkspaceID int64 `db:"workspace_id,not_null"`

	// InstanceID is the externally visible ULID of the run
	InstanceID string `db:"instance_id,not_null,unique"`

	Region string `db:"region"`
	Phase  string `db:"phase,not_null"`

	CreatedAt      time.Time  `db:"created_at,not_null"`
	PhaseChangedAt time.Time  `db:"phase_changed_at,not_null"`
	StoppedAt      *time.Time `db:"stopped_at"`
}

// PersonalAccessToken is an API token issued to a user. Only the hash of the
// token is stored.
type PersonalAccessToken struct {
	ID     int64  `db:"id,primary,auto_increment"`
	UserID int64  `db:"user_id,not_null"`
	Name   string `db:"name,not_null"`

	// Hash is the hex-encoded blake3 digest of the token
	Hash string `db:"hash,not_null,unique"`

	// Scopes is a space-separated scope list
	Scopes string `db:"scopes"`

	ExpiresAt time.Time `db:"expires_at,not_null"`
	CreatedAt time.Time `db:"created_at,not_null"`
}

func (User) TableName() string                { return "users" }
func (Team) TableName() string                { return "teams" }
func (TeamMember) TableName() string          { return "team_members" }
func (Project) TableName() string             { return "projects" }
func (Workspace) TableName() string           { return "workspaces" }
func (WorkspaceInstance) TableName() string   { return "workspace_instances" }
func (PersonalAccessToken) TableName() string { return "personal_access_tokens" }

// TeamRole constants define the supported team roles.
const (
	TeamRoleOwner  = "owner"
	TeamRoleMember = "member"
)

// WorkspaceType constants define the supported workspace types.
const (
	WorkspaceTypeRegular  = "regular"
	WorkspaceTypePrebuild = "prebuild"
)

// IsExpired reports whether the token is expired at now.
func (t *PersonalAccessToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
