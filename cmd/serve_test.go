package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbecker/rdtrack/internal/backup"
	"github.com/mbecker/rdtrack/internal/store"
)

func newServeHandler(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()

	s, err := store.NewSQLiteStore(filepath.Join(dir, "rdtrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))

	bm := backup.NewManager(filepath.Join(dir, "rdtrack.db"), filepath.Join(dir, "backups"))

	handler, err := serveHandler(s, bm)
	require.NoError(t, err)
	return handler
}

func TestServeHandler_APIRoutes(t *testing.T) {
	handler := newServeHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestServeHandler_ServesUI(t *testing.T) {
	handler := newServeHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html")
}

func TestServeHandler_SPAFallback(t *testing.T) {
	handler := newServeHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/projects/some-id", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html")
}
