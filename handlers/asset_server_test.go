package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetServerServesStoredFiles(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "archives"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "archives", "all_2026-08-29.zip"), []byte("zip-bytes"), 0644))

	r := chi.NewRouter()
	r.Get("/api/archives/*", AssetServer(base, "archives"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/archives/all_2026-08-29.zip", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "zip-bytes", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/archives/missing.zip", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssetServerRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "archives"), 0755))
	secret := filepath.Join(base, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0644))

	handler := AssetServer(base, "archives")

	// the router normalizes literal dot segments, so feed the wildcard
	// value directly the way a crafted request would arrive
	req := httptest.NewRequest(http.MethodGet, "/api/archives/x", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("*", "../secret.txt")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}
