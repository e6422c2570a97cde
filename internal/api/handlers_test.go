package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bilgisen/weeklyissue/internal/config"
	"github.com/bilgisen/weeklyissue/internal/generator"
	"github.com/bilgisen/weeklyissue/internal/middleware"
	"github.com/bilgisen/weeklyissue/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminKey = "secret"

type testServer struct {
	app      *fiber.App
	handlers *Handlers
	jsonPath string
	release  chan struct{}
	seen     chan config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jsonPath := filepath.Join(t.TempDir(), "news.json")
	cfg := &config.Config{
		Mode:         config.ModeCombined,
		EnableSearch: true,
		OutputFormat: config.FormatHTML,
		JSONPath:     jsonPath,
	}

	ts := &testServer{
		jsonPath: jsonPath,
		release:  make(chan struct{}),
		seen:     make(chan config.Config, 4),
	}
	run := func(ctx context.Context, cfg *config.Config) generator.Result {
		ts.seen <- *cfg
		<-ts.release
		return generator.Result{RunID: "run-1", Outcome: generator.Published, Status: "published"}
	}

	ts.handlers = NewHandlers(cfg, storage.NewStorage("", jsonPath), run)
	ts.app = fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	SetupRoutes(ts.app, ts.handlers, adminKey)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body, key string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(middleware.APIKeyHeader, key)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}
	return resp, out
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, Version, body["version"])
	assert.Equal(t, false, body["running"])
	assert.NotContains(t, body, "last_run")
}

func TestGetIssue(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/issue", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, os.WriteFile(ts.jsonPath, []byte(`{"total": 30}`), 0644))
	resp, body := ts.do(t, http.MethodGet, "/api/v1/issue", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(30), body["total"])
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func TestGenerateRequiresAdminKey(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/v1/admin/generate", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/api/v1/admin/generate", "", "wrong")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, ts.seen)
}

func TestGenerateValidatesBody(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/admin/generate", `{"mode": "weekly"}`, adminKey)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, map[string]any{"Mode": "oneof"}, body["fields"])

	resp, _ = ts.do(t, http.MethodPost, "/api/v1/admin/generate", `{not json`, adminKey)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, ts.seen)
}

func TestGenerateRunsInBackgroundOnce(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/admin/generate", `{"mode": "per_section", "search": false, "format": "both"}`, adminKey)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "started", body["status"])

	cfg := <-ts.seen
	assert.Equal(t, config.ModePerSection, cfg.Mode)
	assert.False(t, cfg.EnableSearch)
	assert.Equal(t, config.FormatBoth, cfg.OutputFormat)

	// Second trigger while the first is still running
	resp, _ = ts.do(t, http.MethodPost, "/api/v1/admin/generate", "", adminKey)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, health := ts.do(t, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, true, health["running"])

	close(ts.release)
	ts.handlers.Wait()

	last, ok := ts.handlers.LastResult()
	require.True(t, ok)
	assert.Equal(t, generator.Published, last.Outcome)

	_, health = ts.do(t, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, false, health["running"])
	lastRun, _ := health["last_run"].(map[string]any)
	assert.Equal(t, "published", lastRun["outcome"])

	// The original config is untouched
	assert.Equal(t, config.ModeCombined, ts.handlers.config.Mode)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Endpoint not found", body["error"])
}
