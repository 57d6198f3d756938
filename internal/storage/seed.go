package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Fixtures is a YAML document describing records to load into a fresh store.
// Records refer to each other by user name, team slug, and project name.
type Fixtures struct {
	Users      []UserFixture      `yaml:"users"`
	Teams      []TeamFixture      `yaml:"teams"`
	Members    []MemberFixture    `yaml:"members"`
	Projects   []ProjectFixture   `yaml:"projects"`
	Workspaces []WorkspaceFixture `yaml:"workspaces"`
}

type UserFixture struct {
	Name     string `yaml:"name"`
	FullName string `yaml:"full_name"`
	Email    string `yaml:"email"`
	Admin    bool   `yaml:"admin"`
	Blocked  bool   `yaml:"blocked"`
}

type TeamFixture struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type MemberFixture struct {
	Team string `yaml:"team"`
	User string `yaml:"user"`
	Role string `yaml:"role"`
}

type ProjectFixture struct {
	Team     string `yaml:"team"`
	Name     string `yaml:"name"`
	CloneURL string `yaml:"clone_url"`
}

type WorkspaceFixture struct {
	Owner       string `yaml:"owner"`
	Project     string `yaml:"project"`
	ContextURL  string `yaml:"context_url"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
}

// SeedResult counts the records inserted by Seed.
type SeedResult struct {
	Users      int
	Teams      int
	Members    int
	Projects   int
	Workspaces int
}

// LoadFixtures decodes a fixtures document. Unknown keys are rejected.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixtures
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &f, nil
}

// Seed validates every fixture and inserts them in one transaction. All
// validation failures are reported together and nothing is written when any
// record is invalid.
func (s *Storage) Seed(ctx context.Context, f *Fixtures) (SeedResult, error) {
	plan, err := planSeed(f)
	if err != nil {
		return SeedResult{}, err
	}

	var result SeedResult
	err = s.withTx(ctx, func(repos *Repositories) error {
		userIDs := make(map[string]int64, len(plan.users))
		for i := range plan.users {
			if err := repos.Users.Create(ctx, &plan.users[i]); err != nil {
				return fmt.Errorf("user %s: %w", plan.users[i].Name, err)
			}
			userIDs[plan.users[i].Name] = plan.users[i].ID
		}

		teamIDs := make(map[string]int64, len(plan.teams))
		for i := range plan.teams {
			if err := repos.Teams.Create(ctx, &plan.teams[i]); err != nil {
				return fmt.Errorf("team %s: %w", plan.teams[i].Slug, err)
			}
			teamIDs[plan.teams[i].Slug] = plan.teams[i].ID
		}

		for i, m := range f.Members {
			member := plan.members[i]
			member.TeamID = teamIDs[m.Team]
			member.UserID = userIDs[m.User]
			if err := repos.TeamMembers.Create(ctx, &member); err != nil {
				return fmt.Errorf("member %s of %s: %w", m.User, m.Team, err)
			}
		}

		projectIDs := make(map[string]int64, len(plan.projects))
		for i, p := range f.Projects {
			project := plan.projects[i]
			project.TeamID = teamIDs[p.Team]
			if err := repos.Projects.Create(ctx, &project); err != nil {
				return fmt.Errorf("project %s: %w", p.Name, err)
			}
			projectIDs[p.Name] = project.ID
		}

		for i, w := range f.Workspaces {
			ws := plan.workspaces[i]
			ws.OwnerID = userIDs[w.Owner]
			if w.Project != "" {
				id := projectIDs[w.Project]
				ws.ProjectID = &id
			}
			if err := repos.Workspaces.Create(ctx, &ws); err != nil {
				return fmt.Errorf("workspace %s: %w", w.ContextURL, err)
			}
		}

		result = SeedResult{
			Users:      len(plan.users),
			Teams:      len(plan.teams),
			Members:    len(plan.members),
			Projects:   len(plan.projects),
			Workspaces: len(plan.workspaces),
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to seed: %w", err)
	}

	log.Info().
		Int("users", result.Users).
		Int("teams", result.Teams).
		Int("members", result.Members).
		Int("projects", result.Projects).
		Int("workspaces", result.Workspaces).
		Msg("Fixtures seeded")

	return result, nil
}

type seedPlan struct {
	users      []User
	teams      []Team
	members    []TeamMember
	projects   []Project
	workspaces []Workspace
}

// planSeed converts and validates fixtures. References are checked against
// the fixtures themselves, and a placeholder ID of 1 stands in for every
// foreign key until insertion.
func planSeed(f *Fixtures) (*seedPlan, error) {
	var merr *multierror.Error
	plan := &seedPlan{}
	now := time.Now().UTC()

	userNames := make(map[string]bool)
	for i, u := range f.Users {
		user := User{
			Name:      u.Name,
			FullName:  u.FullName,
			Email:     u.Email,
			Admin:     u.Admin,
			Blocked:   u.Blocked,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := ValidateUser(&user); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("users[%d]: %w", i, err))
		}
		if userNames[user.Name] {
			merr = multierror.Append(merr, fmt.Errorf("users[%d]: duplicate name %s", i, user.Name))
		}
		userNames[user.Name] = true
		plan.users = append(plan.users, user)
	}

	teamSlugs := make(map[string]bool)
	for i, t := range f.Teams {
		team := Team{Name: t.Name, Slug: t.Slug, CreatedAt: now, UpdatedAt: now}
		if err := ValidateTeam(&team); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("teams[%d]: %w", i, err))
		}
		if teamSlugs[team.Slug] {
			merr = multierror.Append(merr, fmt.Errorf("teams[%d]: duplicate slug %s", i, team.Slug))
		}
		teamSlugs[team.Slug] = true
		plan.teams = append(plan.teams, team)
	}

	for i, m := range f.Members {
		if !teamSlugs[m.Team] {
			merr = multierror.Append(merr, fmt.Errorf("members[%d]: unknown team %q", i, m.Team))
		}
		if !userNames[m.User] {
			merr = multierror.Append(merr, fmt.Errorf("members[%d]: unknown user %q", i, m.User))
		}
		member := TeamMember{TeamID: 1, UserID: 1, Role: m.Role, CreatedAt: now}
		if err := ValidateTeamMember(&member); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("members[%d]: %w", i, err))
		}
		plan.members = append(plan.members, member)
	}

	projectNames := make(map[string]bool)
	for i, p := range f.Projects {
		if !teamSlugs[p.Team] {
			merr = multierror.Append(merr, fmt.Errorf("projects[%d]: unknown team %q", i, p.Team))
		}
		project := Project{TeamID: 1, Name: p.Name, CloneURL: p.CloneURL, CreatedAt: now, UpdatedAt: now}
		if err := ValidateProject(&project); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("projects[%d]: %w", i, err))
		}
		if projectNames[project.Name] {
			merr = multierror.Append(merr, fmt.Errorf("projects[%d]: duplicate name %s", i, project.Name))
		}
		projectNames[project.Name] = true
		plan.projects = append(plan.projects, project)
	}

	for i, w := range f.Workspaces {
		if !userNames[w.Owner] {
			merr = multierror.Append(merr, fmt.Errorf("workspaces[%d]: unknown owner %q", i, w.Owner))
		}
		if w.Project != "" && !projectNames[w.Project] {
			merr = multierror.Append(merr, fmt.Errorf("workspaces[%d]: unknown project %q", i, w.Project))
		}
		ws := Workspace{
			OwnerID:     1,
			ContextURL:  w.ContextURL,
			Description: w.Description,
			Type:        w.Type,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := ValidateWorkspace(&ws); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("workspaces[%d]: %w", i, err))
		}
		plan.workspaces = append(plan.workspaces, ws)
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return plan, nil
}
