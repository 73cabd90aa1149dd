package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Polyte/OMS-OCR/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLog(t *testing.T) *DuckLog {
	t.Helper()
	log, err := NewDuckLog(filepath.Join(t.TempDir(), "data", "processing.duckdb"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func record(outcome models.Outcome, status int, ms int64) models.ProcessingRecord {
	return models.ProcessingRecord{
		ID:         uuid.New().String(),
		ReceivedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		MimeType:   "application/pdf",
		Size:       1024,
		Outcome:    outcome,
		StatusCode: status,
		DurationMs: ms,
	}
}

func TestNewDuckLog_CreatesFile(t *testing.T) {
	log := createTestLog(t)

	_, err := os.Stat(log.Path())
	assert.NoError(t, err)
}

func TestDuckLog_EmptyStats(t *testing.T) {
	log := createTestLog(t)

	stats, err := log.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Empty(t, stats.ByOutcome)
	assert.Equal(t, 0.0, stats.AverageDurationMs)
}

func TestDuckLog_RecordAndStats(t *testing.T) {
	log := createTestLog(t)
	ctx := context.Background()

	require.NoError(t, log.Record(ctx, record(models.OutcomeSuccess, 200, 100)))
	require.NoError(t, log.Record(ctx, record(models.OutcomeSuccess, 200, 300)))
	require.NoError(t, log.Record(ctx, record(models.OutcomeValidationFailed, 400, 5)))
	require.NoError(t, log.Record(ctx, record(models.OutcomeExtractionFailed, 500, 35)))

	stats, err := log.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, map[models.Outcome]int{
		models.OutcomeSuccess:          2,
		models.OutcomeValidationFailed: 1,
		models.OutcomeExtractionFailed: 1,
	}, stats.ByOutcome)
	assert.InDelta(t, 110.0, stats.AverageDurationMs, 0.001)
}

func TestDuckLog_DuplicateIDRejected(t *testing.T) {
	log := createTestLog(t)
	ctx := context.Background()

	rec := record(models.OutcomeSuccess, 200, 1)
	require.NoError(t, log.Record(ctx, rec))
	assert.Error(t, log.Record(ctx, rec))
}

func TestDuckLog_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processing.duckdb")
	ctx := context.Background()

	first, err := NewDuckLog(path, nil)
	require.NoError(t, err)
	require.NoError(t, first.Record(ctx, record(models.OutcomeSuccess, 200, 10)))
	require.NoError(t, first.Close())

	second, err := NewDuckLog(path, nil)
	require.NoError(t, err)
	defer second.Close()

	stats, err := second.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}
