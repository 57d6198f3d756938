package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturesYAML = `
users:
  - name: alice
    full_name: Alice Liddell
    email: alice@example.com
    admin: true
  - name: bob
    email: bob@example.com
teams:
  - name: Platform Team
members:
  - team: platform-team
    user: alice
    role: owner
  - team: platform-team
    user: bob
projects:
  - team: platform-team
    name: api
    clone_url: https://github.com/acme/api.git
workspaces:
  - owner: alice
    project: api
    context_url: https://github.com/acme/api/tree/main
  - owner: bob
    context_url: https://github.com/acme/docs
    type: prebuild
`

func TestSeed(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	f, err := LoadFixtures(strings.NewReader(fixturesYAML))
	require.NoError(t, err)

	result, err := s.Seed(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Users: 2, Teams: 1, Members: 2, Projects: 1, Workspaces: 2}, result)

	team, err := s.Repositories().Teams.First(ctx, Where("slug = ?", "platform-team"))
	require.NoError(t, err)

	owners, err := s.Repositories().TeamMembers.Count(ctx, Where("team_id = ?", team.ID), Where("role = ?", TeamRoleOwner))
	require.NoError(t, err)
	assert.EqualValues(t, 1, owners)

	workspaces, err := s.Repositories().Workspaces.Find(ctx, "id ASC")
	require.NoError(t, err)
	require.Len(t, workspaces, 2)
	require.NotNil(t, workspaces[0].ProjectID)
	assert.Nil(t, workspaces[1].ProjectID)
	assert.Equal(t, WorkspaceTypePrebuild, workspaces[1].Type)

	// Seeding twice collides on unique names and leaves the store unchanged.
	_, err = s.Seed(ctx, f)
	assert.ErrorIs(t, err, ErrConflict)

	n, err := s.Repositories().Users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestSeedReportsAllErrors(t *testing.T) {
	s := newTestStorage(t)

	f := &Fixtures{
		Users: []UserFixture{
			{Name: "alice", Email: "not-an-email"},
			{Name: "", Email: "bob@example.com"},
		},
		Members: []MemberFixture{{Team: "ghost", User: "alice"}},
	}

	_, err := s.Seed(context.Background(), f)
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)
	assert.ErrorIs(t, err, ErrInvalid)

	n, err := s.Repositories().Users.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadFixturesRejectsUnknownKeys(t *testing.T) {
	_, err := LoadFixtures(strings.NewReader("users:\n  - nick: alice\n"))
	assert.Error(t, err)

	f, err := LoadFixtures(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Users)
}
