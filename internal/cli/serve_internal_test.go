package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/internal/server"
	"github.com/yaklabco/mdcat/pkg/config"
	"github.com/yaklabco/mdcat/pkg/view"
)

func TestBuildServerAppliesConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nBody.\n"), 0o644))

	cfg := config.NewConfig()
	cfg.View.Mode = "raw"
	cfg.Search.CaseSensitive = true
	cfg.Server.Metrics = true

	srv, err := buildServer(context.Background(), cfg, path, false, logging.Discard())
	require.NoError(t, err)

	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var msg server.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, view.ModeRaw, msg.Mode)
	assert.Equal(t, "# Title\n\nBody.\n", msg.Raw)
	assert.True(t, msg.Search.CaseSensitive)
	assert.Equal(t, "doc.md", msg.Filename)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mdcat_searches_total")
}

func TestBuildServerWithoutMetrics(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("text\n"), 0o644))

	srv, err := buildServer(context.Background(), config.NewConfig(), path, false, logging.Discard())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildServerRejectsBadMode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("text\n"), 0o644))

	cfg := config.NewConfig()
	cfg.View.Mode = "split"

	_, err := buildServer(context.Background(), cfg, path, false, logging.Discard())
	require.ErrorIs(t, err, ErrConfig)
}
