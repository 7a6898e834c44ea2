package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/visionlog/visionlog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServerSetup(t *testing.T) *Server {
	t.Helper()

	server, err := NewServer(context.Background(), NewServerParams{
		Config: &config.Config{
			Environment: "test",
			Host:        "localhost",
			Port:        5000,
			DBPath:      filepath.Join(t.TempDir(), "server_test.sqlite3"),
		},
		TracingEnabled: false,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, server.database.Close())
	})

	return server
}

func newTestRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, path, nil)
	} else {
		req, err = http.NewRequest(method, path, strings.NewReader(body))
	}
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "test-agent")
	return req
}

func TestServer_Routes(t *testing.T) {
	router := testServerSetup(t).routerSetup()

	t.Run("healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newTestRequest(t, "GET", "/healthz", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"ok":true}`, rec.Body.String())
	})

	t.Run("index", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newTestRequest(t, "GET", "/", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "visionlog")
		assert.Contains(t, rec.Body.String(), "/api/export.csv")
	})

	t.Run("unknown path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newTestRequest(t, "GET", "/nope", ""))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_LogAndExport(t *testing.T) {
	router := testServerSetup(t).routerSetup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newTestRequest(t, "POST", "/api/sessions",
		`{"type": "rest", "duration_sec": 300, "meta": ""}`,
	))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newTestRequest(t, "POST", "/api/metrics",
		`{"date": "2024-05-01", "fatigue_score": 3}`,
	))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newTestRequest(t, "GET", "/api/export.csv", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "# sessions\n")
	assert.Contains(t, body, ",rest,300,\n")
	assert.Contains(t, body, "# metrics\n")
	assert.Contains(t, body, "1,2024-05-01,3,,,\n")
}
