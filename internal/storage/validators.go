// Package storage provides validation functions for database entities.
package storage

import (
	"errors"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"wsadmin/internal/startup"
)

var (
	userNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{0,38}$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	scopePattern    = regexp.MustCompile(`^[a-z_]+(?::[a-z_]+)?$`)
)

// ValidateUser validates and normalizes a user before it is written.
func ValidateUser(user *User) error {
	user.Name = strings.TrimSpace(user.Name)
	user.FullName = strings.TrimSpace(user.FullName)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if user.Name == "" {
		return invalidf("user name cannot be empty")
	}

	if !userNamePattern.MatchString(user.Name) {
		return invalidf("user name %q must be 1-39 chars of letters, digits, '.', '-' or '_'", user.Name)
	}

	if len(user.FullName) > 100 {
		return invalidf("full name too long (max 100 chars)")
	}

	if user.Email == "" {
		return invalidf("email cannot be empty")
	}

	addr, err := mail.ParseAddress(user.Email)
	if err != nil || addr.Address != user.Email {
		return invalidf("invalid email address: %s", user.Email)
	}

	if user.AvatarURL != "" {
		if err := validateHTTPURL(user.AvatarURL); err != nil {
			return invalidf("invalid avatar URL: %v", err)
		}
	}

	return nil
}

// ValidateTeam validates a team. An empty slug is derived from the name.
func ValidateTeam(team *Team) error {
	team.Name = strings.TrimSpace(team.Name)

	if team.Name == "" {
		return invalidf("team name cannot be empty")
	}

	if len(team.Name) > 64 {
		return invalidf("team name too long (max 64 chars)")
	}

	if team.Slug == "" {
		team.Slug = Slugify(team.Name)
	}

	if len(team.Slug) > 64 || !slugPattern.MatchString(team.Slug) {
		return invalidf("invalid team slug %q (lowercase letters, digits and single hyphens only)", team.Slug)
	}

	return nil
}

// ValidateTeamMember validates a membership record.
func ValidateTeamMember(member *TeamMember) error {
	if member.TeamID <= 0 {
		return invalidf("team ID cannot be empty")
	}

	if member.UserID <= 0 {
		return invalidf("user ID cannot be empty")
	}

	if member.Role == "" {
		member.Role = TeamRoleMember
	}

	switch member.Role {
	case TeamRoleOwner, TeamRoleMember:
	default:
		return invalidf("invalid team role: %s", member.Role)
	}

	return nil
}

// ValidateProject validates a project.
func ValidateProject(project *Project) error {
	project.Name = strings.TrimSpace(project.Name)
	project.CloneURL = strings.TrimSpace(project.CloneURL)

	if project.TeamID <= 0 {
		return invalidf("team ID cannot be empty")
	}

	if project.Name == "" {
		return invalidf("project name cannot be empty")
	}

	if len(project.Name) > 100 {
		return invalidf("project name too long (max 100 chars)")
	}

	if project.CloneURL == "" {
		return invalidf("clone URL cannot be empty")
	}

	if err := validateHTTPURL(project.CloneURL); err != nil {
		return invalidf("invalid clone URL: %v", err)
	}

	return nil
}

// ValidateWorkspace validates a workspace. An empty type defaults to regular.
func ValidateWorkspace(ws *Workspace) error {
	ws.ContextURL = strings.TrimSpace(ws.ContextURL)
	ws.Description = strings.TrimSpace(ws.Description)

	if ws.OwnerID <= 0 {
		return invalidf("owner ID cannot be empty")
	}

	if ws.ProjectID != nil && *ws.ProjectID <= 0 {
		return invalidf("invalid project ID: %d", *ws.ProjectID)
	}

	if ws.ContextURL == "" {
		return invalidf("context URL cannot be empty")
	}

	if err := validateHTTPURL(ws.ContextURL); err != nil {
		return invalidf("invalid context URL: %v", err)
	}

	if len(ws.Description) > 500 {
		return invalidf("description too long (max 500 chars)")
	}

	if ws.Type == "" {
		ws.Type = WorkspaceTypeRegular
	}

	switch ws.Type {
	case WorkspaceTypeRegular, WorkspaceTypePrebuild:
	default:
		return invalidf("invalid workspace type: %s", ws.Type)
	}

	return nil
}

// ValidateWorkspaceInstance validates an instance record.
func ValidateWorkspaceInstance(instance *WorkspaceInstance) error {
	if instance.WorkspaceID <= 0 {
		return invalidf("workspace ID cannot be empty")
	}

	if instance.InstanceID == "" {
		return invalidf("instance ID cannot be empty")
	}

	phase, err := startup.ParsePhase(instance.Phase)
	if err != nil || phase == startup.PhaseUnknown {
		return invalidf("invalid instance phase: %s", instance.Phase)
	}

	if phase == startup.PhaseStopped && instance.StoppedAt == nil {
		return invalidf("stopped instance must have a stop time")
	}

	return nil
}

// ValidateToken validates a personal access token record.
func ValidateToken(token *PersonalAccessToken, now time.Time) error {
	token.Name = strings.TrimSpace(token.Name)
	token.Scopes = strings.Join(strings.Fields(token.Scopes), " ")

	if token.UserID <= 0 {
		return invalidf("user ID cannot be empty")
	}

	if token.Name == "" {
		return invalidf("token name cannot be empty")
	}

	if len(token.Name) > 100 {
		return invalidf("token name too long (max 100 chars)")
	}

	if len(token.Hash) != 64 {
		return invalidf("token hash must be 64 hex chars")
	}

	for _, scope := range strings.Fields(token.Scopes) {
		if !scopePattern.MatchString(scope) {
			return invalidf("invalid token scope: %s", scope)
		}
	}

	if !token.ExpiresAt.After(now) {
		return invalidf("token expiry must be in the future")
	}

	return nil
}

// Slugify lowercases s and replaces every run of other characters with a
// single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must use http or https")
	}
	if u.Host == "" {
		return errors.New("URL must have a host")
	}
	return nil
}
