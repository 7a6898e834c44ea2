package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestService_Log(t *testing.T) {
	ctx := context.Background()
	repo := NewRepoMock()
	service := NewService(repo)

	metric, err := service.Log(ctx, LogRequest{
		Date:                " 2024-05-01 ",
		FatigueScore:        intPtr(3),
		NearWorkMin:         intPtr(45),
		Breaks:              intPtr(2),
		ContrastMinReadable: floatPtr(0.12),
	})
	require.NoError(t, err)
	require.NotNil(t, metric)
	assert.Equal(t, 1, metric.ID)
	assert.Equal(t, "2024-05-01", metric.Date)
	assert.Equal(t, 3, *metric.FatigueScore)
	assert.Equal(t, 45, *metric.NearWorkMin)
	assert.Equal(t, 2, *metric.Breaks)
	assert.Equal(t, 0.12, *metric.ContrastMinReadable)
}

func TestService_Log_OptionalFieldsAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepoMock()
	service := NewService(repo)

	metric, err := service.Log(ctx, LogRequest{Date: "2024-05-02"})
	require.NoError(t, err)
	assert.Nil(t, metric.FatigueScore)
	assert.Nil(t, metric.NearWorkMin)
	assert.Nil(t, metric.Breaks)
	assert.Nil(t, metric.ContrastMinReadable)
}

func TestService_Log_OutOfRangeValuesAccepted(t *testing.T) {
	ctx := context.Background()
	repo := NewRepoMock()
	service := NewService(repo)

	// fatigue is nominally 1-5 but deliberately not range checked
	metric, err := service.Log(ctx, LogRequest{
		Date:         "2024-05-03",
		FatigueScore: intPtr(99),
	})
	require.NoError(t, err)
	assert.Equal(t, 99, *metric.FatigueScore)
}

func TestService_Log_EmptyDate(t *testing.T) {
	ctx := context.Background()
	repo := NewRepoMock()
	service := NewService(repo)

	for _, date := range []string{"", "   "} {
		metric, err := service.Log(ctx, LogRequest{Date: date})
		require.ErrorIs(t, err, ErrInvalidPayload)
		assert.Nil(t, metric)
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_Log_StorageError(t *testing.T) {
	ctx := context.Background()
	repo := NewRepoMock()
	repo.addErr = errors.New("database is locked")
	service := NewService(repo)

	metric, err := service.Log(ctx, LogRequest{Date: "2024-05-01"})
	require.Error(t, err)
	assert.Nil(t, metric)
	assert.NotErrorIs(t, err, ErrInvalidPayload)
	assert.Contains(t, err.Error(), "database is locked")
}
