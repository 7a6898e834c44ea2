package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	telemetry "github.com/visionlog/visionlog/internal/telemetry/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any goroutine leaks
func TestMain(m *testing.M) {
	m.Run()
	goleak.VerifyTestMain(m)
}

func newAddRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest("POST", "/api/metrics", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandler_HandleAdd(t *testing.T) {
	repo := NewRepoMock()
	handler := NewHandler(NewService(repo), telemetry.NewTestManager())

	rec := httptest.NewRecorder()
	handler.HandleAdd(rec, newAddRequest(t,
		`{"date": "2024-05-01", "fatigue_score": 3, "near_work_min": 45, "breaks": 2, "contrast_min_readable": 0.12}`,
	))

	require.Equal(t, http.StatusCreated, rec.Code)

	var saved Metric
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, 1, saved.ID)
	assert.Equal(t, "2024-05-01", saved.Date)
	require.NotNil(t, saved.FatigueScore)
	assert.Equal(t, 3, *saved.FatigueScore)
	require.NotNil(t, saved.ContrastMinReadable)
	assert.Equal(t, 0.12, *saved.ContrastMinReadable)
}

func TestHandler_HandleAdd_OnlyDate(t *testing.T) {
	repo := NewRepoMock()
	handler := NewHandler(NewService(repo), telemetry.NewTestManager())

	rec := httptest.NewRecorder()
	handler.HandleAdd(rec, newAddRequest(t, `{"date": "2024-05-02"}`))

	require.Equal(t, http.StatusCreated, rec.Code)

	var saved Metric
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Nil(t, saved.FatigueScore)
	assert.Nil(t, saved.NearWorkMin)
	assert.Nil(t, saved.Breaks)
	assert.Nil(t, saved.ContrastMinReadable)
}

func TestHandler_HandleAdd_MissingDate(t *testing.T) {
	repo := NewRepoMock()
	handler := NewHandler(NewService(repo), telemetry.NewTestManager())

	rec := httptest.NewRecorder()
	handler.HandleAdd(rec, newAddRequest(t, `{"fatigue_score": 3}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "date required")

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHandler_HandleAdd_StorageError(t *testing.T) {
	repo := NewRepoMock()
	repo.addErr = errors.New("disk I/O error")
	handler := NewHandler(NewService(repo), telemetry.NewTestManager())

	rec := httptest.NewRecorder()
	handler.HandleAdd(rec, newAddRequest(t, `{"date": "2024-05-01"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk I/O error")
}
