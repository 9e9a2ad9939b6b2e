package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
)

func makeSnapshot(runID string, computedAt int64) *domain.StrategyStatsSnapshot {
	return &domain.StrategyStatsSnapshot{
		RunID:       runID,
		RouletteID:  "r1",
		StrategyID:  "red",
		Day:         "2024-01-01",
		Attempts:    2,
		Policy:      "consuming",
		Fingerprint: "abc",
		ComputedAt:  computedAt,
		Stats: domain.StrategyStats{
			StrategyID:           "red",
			Attempts:             2,
			TotalSpins:           120,
			TotalActivations:     40,
			TotalGreen:           25,
			TotalRed:             14,
			TotalPending:         1,
			HitRate:              25.0 / 39.0,
			MaxGreenSequence:     5,
			MaxRedSequence:       3,
			AttemptHits:          map[int]int{1: 15, 2: 10},
			MostActivatingNumber: 7,
			MostActivatingCount:  6,
			HotNumbers:           []domain.NumberCount{{Number: 7, Count: 9}},
			ColdNumbers:          []int{36},
			IntervalHistogram:    map[string]int{"0": 4, ">10": 1},
			IntervalMean:         2.5,
			IntervalStddev:       1.25,
			GreenAfterGreen:      12,
			GreenAfterRed:        9,
			BestEntryPattern:     domain.EntryPostGreen,
		},
	}
}

func TestStatsStore_InsertAndGetLatest(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStatsStore(conn)

	require.NoError(t, store.Insert(ctx, makeSnapshot("run-1", 1000)))
	require.NoError(t, store.Insert(ctx, makeSnapshot("run-2", 2000)))

	got, err := store.GetLatest(ctx, "r1", "red", "2024-01-01", 2, "consuming")
	require.NoError(t, err)

	assert.Equal(t, "run-2", got.RunID)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, makeSnapshot("run-2", 2000).Stats, got.Stats)
}

func TestStatsStore_DuplicateRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStatsStore(conn)

	require.NoError(t, store.Insert(ctx, makeSnapshot("run-1", 1000)))
	assert.ErrorIs(t, store.Insert(ctx, makeSnapshot("run-1", 3000)), storage.ErrDuplicateKey)
}

func TestStatsStore_NotFound(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStatsStore(conn)

	_, err := store.GetLatest(ctx, "r1", "red", "2024-01-01", 6, "consuming")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
