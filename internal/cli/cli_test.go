package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPagesCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"pages", "28", "7"}, "1 ... 6 7 8 ... 28\n"},
		{[]string{"pages", "5", "3"}, "1 2 3 4 5\n"},
		{[]string{"pages", "7", "4"}, "1 2 3 4 5 6 7\n"},
		{[]string{"pages", "0", "1"}, "\n"},
		{[]string{"pages", "9223372036854775807", "9223372036854775807"},
			"1 ... 9223372036854775804 9223372036854775805 9223372036854775806 9223372036854775807\n"},
	}

	for _, tt := range tests {
		out, err := execute(t, tt.args...)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out, "args %v", tt.args)
	}
}

func TestPagesCommandRejectsBadArgs(t *testing.T) {
	_, err := execute(t, "pages", "ten", "1")
	assert.ErrorContains(t, err, "invalid total")

	_, err = execute(t, "pages", "10")
	assert.Error(t, err)
}

func TestMigrateAndSeed(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("storage:\n  path: "+filepath.Join(dir, "ws.db")+"\n"), 0o600))

	out, err := execute(t, "--config", configPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "VERSION")
	assert.Contains(t, out, "create_users")

	fixtures := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(`
users:
  - name: alice
    email: alice@example.com
workspaces:
  - owner: alice
    context_url: https://github.com/acme/api
`), 0o600))

	out, err = execute(t, "--config", configPath, "seed", fixtures)
	require.NoError(t, err)
	assert.Equal(t, "Seeded 1 users, 0 teams, 0 members, 0 projects, 1 workspaces\n", out)

	_, err = execute(t, "--config", configPath, "seed", filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open fixtures")
}
