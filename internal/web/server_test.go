package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pysweep/internal/scan"
)

// newTestServer wires the server to a synthetic home directory holding one
// fake venv, so handlers never scan the real machine.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	home := t.TempDir()
	venv := filepath.Join(home, "testenv")
	require.NoError(t, os.MkdirAll(filepath.Join(venv, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(venv, "pyvenv.cfg"), []byte("home = /usr\n"), 0o644))
	script := "#!/bin/sh\n" +
		"if [ \"$2\" = \"pip\" ]; then\n" +
		"  echo '[{\"name\":\"numpy\",\"version\":\"1.21.0\"}]'\n" +
		"else\n" +
		"  echo '3.12.1'\n" +
		"fi\n"
	require.NoError(t, os.WriteFile(filepath.Join(venv, "bin", "python"), []byte(script), 0o755))

	cfg := scan.Config{HomeDir: home, Parallel: 2}
	return NewServer(scan.NewEngine(cfg, nil))
}

func TestHandleVenvs(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleVenvs(rec, httptest.NewRequest(http.MethodGet, "/api/venvs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Venvs []struct {
			Name string `json:"name"`
		} `json:"venvs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Venvs, 1)
	assert.Equal(t, "testenv", body.Venvs[0].Name)
}

func TestHandleAnalysis(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleAnalysis(rec, httptest.NewRequest(http.MethodGet, "/api/analysis", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		UniquePackages int `json:"unique_packages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.UniquePackages)
}

func TestHandleRescan(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleRescan(rec, httptest.NewRequest(http.MethodGet, "/api/rescan", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "rescan is POST only")

	rec = httptest.NewRecorder()
	s.handleRescan(rec, httptest.NewRequest(http.MethodPost, "/api/rescan", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Venvs int `json:"venvs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Venvs)
}

func TestNoDeletionEndpoint(t *testing.T) {
	// The API surface is read-only; a delete route must not exist.
	s := newTestServer(t)
	for _, route := range []string{"/api/delete", "/api/clean"} {
		req := httptest.NewRequest(http.MethodPost, route, nil)
		rec := httptest.NewRecorder()
		mux := http.NewServeMux()
		mux.HandleFunc("/api/interpreters", s.handleInterpreters)
		mux.HandleFunc("/api/venvs", s.handleVenvs)
		mux.HandleFunc("/api/analysis", s.handleAnalysis)
		mux.HandleFunc("/api/rescan", s.handleRescan)
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, route)
	}
}
