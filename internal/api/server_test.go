package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsadmin/internal/config"
	"wsadmin/internal/pagination"
	"wsadmin/internal/startup"
	"wsadmin/internal/storage"
)

const testFixtures = `
users:
  - name: alice
    email: alice@example.com
    admin: true
  - name: bob
    email: bob@example.com
  - name: carol
    email: carol@example.com
  - name: dave
    email: dave@example.com
  - name: erin
    email: erin@example.com
    blocked: true
teams:
  - name: Platform
members:
  - team: platform
    user: alice
    role: owner
projects:
  - team: platform
    name: api
    clone_url: https://github.com/acme/api.git
workspaces:
  - owner: alice
    project: api
    context_url: https://github.com/acme/api
  - owner: erin
    context_url: https://github.com/acme/docs
`

type apiError struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

type pageMeta struct {
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
	Window     pagination.Window `json:"window"`
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      *apiError       `json:"error"`
	Pagination *pageMeta       `json:"pagination"`
}

func newTestServer(t *testing.T) (http.Handler, *storage.Storage) {
	t.Helper()

	store, err := storage.Open(context.Background(), config.StorageConfig{
		Path:            filepath.Join(t.TempDir(), "api.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	fixtures, err := storage.LoadFixtures(strings.NewReader(testFixtures))
	require.NoError(t, err)
	_, err = store.Seed(context.Background(), fixtures)
	require.NoError(t, err)

	process, err := startup.NewProcess(nil)
	require.NoError(t, err)

	cfg := &config.Config{
		Server:     config.ServerConfig{Addr: "127.0.0.1:0"},
		Pagination: config.PaginationConfig{DefaultPageSize: 2, MaxPageSize: 3},
	}
	return NewServer(cfg, store, process).Handler(), store
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestPingAndHealth(t *testing.T) {
	h, _ := newTestServer(t)

	w, _ := do(t, h, http.MethodGet, "/api/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w, _ = do(t, h, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var health struct {
		Status     string `json:"status"`
		Version    string `json:"version"`
		Components struct {
			Database struct {
				Status string `json:"status"`
			} `json:"database"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components.Database.Status)
	assert.Equal(t, Version, health.Version)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t)

	do(t, h, http.MethodGet, "/api/ping", nil)

	w, _ := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "wsadmin_http_requests_total")
	assert.Contains(t, body, "wsadmin_http_request_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestUserListPagination(t *testing.T) {
	h, _ := newTestServer(t)

	w, env := do(t, h, http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.Page)
	assert.Equal(t, 2, env.Pagination.PageSize)
	assert.EqualValues(t, 5, env.Pagination.Total)
	assert.Equal(t, 3, env.Pagination.TotalPages)
	assert.Equal(t, "1 2 3", env.Pagination.Window.String())

	// Page size is capped and an out-of-range page lands on the last one.
	w, env = do(t, h, http.MethodGet, "/api/v1/users?page=40&page_size=50", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, env.Pagination.Page)
	assert.Equal(t, 3, env.Pagination.PageSize)

	var users []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[1].Name)

	w, env = do(t, h, http.MethodGet, "/api/v1/users?blocked=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Pagination.Total)

	w, env = do(t, h, http.MethodGet, "/api/v1/users?search=zzz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", string(env.Data))
	assert.Equal(t, 1, env.Pagination.Page)
	assert.Empty(t, env.Pagination.Window)

	w, env = do(t, h, http.MethodGet, "/api/v1/users?page=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	w, _ = do(t, h, http.MethodGet, "/api/v1/users?admin=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserUpdateAndTokens(t *testing.T) {
	h, _ := newTestServer(t)

	w, env := do(t, h, http.MethodPatch, "/api/v1/users/2", map[string]any{"blocked": true, "full_name": "Bob B"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"blocked":true`)

	w, _ = do(t, h, http.MethodPatch, "/api/v1/users/2", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h, http.MethodGet, "/api/v1/users/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, h, http.MethodPost, "/api/v1/users/1/tokens", map[string]any{"name": "ci", "scopes": []string{"read:user"}})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID    int64  `json:"id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, strings.HasPrefix(created.Token, storage.TokenPrefix))

	w, env = do(t, h, http.MethodGet, "/api/v1/users/1/tokens", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), created.Token)
	assert.Contains(t, string(env.Data), `"scopes":["read:user"]`)

	w, _ = do(t, h, http.MethodDelete, "/api/v1/users/2/tokens/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, h, http.MethodDelete, "/api/v1/users/1/tokens/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env = do(t, h, http.MethodGet, "/api/v1/users/1/workspaces", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Pagination.Total)
}

func TestTeamsAndProjects(t *testing.T) {
	h, _ := newTestServer(t)

	w, env := do(t, h, http.MethodPost, "/api/v1/teams", map[string]any{"name": "Data Science", "owner_id": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(env.Data), `"slug":"data-science"`)
	assert.Contains(t, string(env.Data), `"member_count":1`)

	w, _ = do(t, h, http.MethodPost, "/api/v1/teams", map[string]any{"name": "data science"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/teams/1/members", map[string]any{"user_id": 3})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/teams/1/members", map[string]any{"user_id": 3})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/teams/1/members", map[string]any{"user_id": 3, "role": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, h, http.MethodGet, "/api/v1/teams/1/members", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, env.Pagination.Total)

	w, _ = do(t, h, http.MethodDelete, "/api/v1/teams/1/members/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = do(t, h, http.MethodDelete, "/api/v1/teams/1/members/3", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/projects", map[string]any{
		"team_id": 99, "name": "web", "clone_url": "https://github.com/acme/web.git",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/projects", map[string]any{
		"team_id": 1, "name": "web", "clone_url": "https://github.com/acme/web.git",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = do(t, h, http.MethodGet, "/api/v1/projects?team_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, env.Pagination.Total)

	w, env = do(t, h, http.MethodGet, "/api/v1/projects/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"workspace_count":1`)

	w, _ = do(t, h, http.MethodDelete, "/api/v1/projects/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = do(t, h, http.MethodDelete, "/api/v1/teams/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = do(t, h, http.MethodGet, "/api/v1/teams/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkspaceLifecycleEndpoints(t *testing.T) {
	h, _ := newTestServer(t)

	w, env := do(t, h, http.MethodGet, "/api/v1/workspaces/1/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"phase":"stopped"`)

	w, env = do(t, h, http.MethodPost, "/api/v1/workspaces/1/start", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(env.Data), `"phase":"preparing"`)

	w, _ = do(t, h, http.MethodPost, "/api/v1/workspaces/1/start", map[string]any{"region": "eu-west"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = do(t, h, http.MethodGet, "/api/v1/workspaces/1/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var progress struct {
		Phase    string  `json:"phase"`
		Percent  float64 `json:"percent"`
		Starting bool    `json:"starting"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	assert.Equal(t, "preparing", progress.Phase)
	assert.True(t, progress.Starting)
	assert.Less(t, progress.Percent, 10.0)

	w, _ = do(t, h, http.MethodPost, "/api/v1/workspaces/1/phase", map[string]any{"phase": "booting"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/workspaces/1/phase", map[string]any{"phase": "running"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, h, http.MethodGet, "/api/v1/workspaces/1/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"percent":100`)

	w, env = do(t, h, http.MethodGet, "/api/v1/workspaces/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"latest_instance":{`)

	w, _ = do(t, h, http.MethodPost, "/api/v1/workspaces/1/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, h, http.MethodPost, "/api/v1/workspaces/1/stop", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// erin is blocked
	w, _ = do(t, h, http.MethodPost, "/api/v1/workspaces/2/start", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/workspaces/3/start", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, h, http.MethodGet, "/api/v1/workspaces/3/progress", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, h, http.MethodGet, "/api/v1/workspaces/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, h, http.MethodGet, "/api/v1/workspaces?owner_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Pagination.Total)

	w, env = do(t, h, http.MethodGet, "/api/v1/workspaces?search=docs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Pagination.Total)
	assert.Contains(t, string(env.Data), `"latest_instance":null`)
}

func TestPaginationWindowEndpoint(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		query       string
		wantCurrent int
		wantText    string
	}{
		{"total_pages=28&current_page=7", 7, "1 ... 6 7 8 ... 28"},
		{"total_pages=10", 1, "1 2 3 ... 10"},
		{"total_pages=10&current_page=99", 10, "1 ... 7 8 9 10"},
		{"total_pages=7&current_page=4", 4, "1 2 3 4 5 6 7"},
		{"total_pages=0", 1, ""},
		{
			"total_pages=9223372036854775807&current_page=9223372036854775806",
			9223372036854775806,
			"1 ... 9223372036854775804 9223372036854775805 9223372036854775806 9223372036854775807",
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w, env := do(t, h, http.MethodGet, "/api/v1/pagination/window?"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				CurrentPage int               `json:"current_page"`
				Window      pagination.Window `json:"window"`
				Text        string            `json:"text"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &resp))
			assert.Equal(t, tt.wantCurrent, resp.CurrentPage)
			assert.Equal(t, tt.wantText, resp.Text)
			assert.Equal(t, tt.wantText, resp.Window.String())
		})
	}

	for _, query := range []string{"", "total_pages=-1", "total_pages=x"} {
		w, _ := do(t, h, http.MethodGet, "/api/v1/pagination/window?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
}
