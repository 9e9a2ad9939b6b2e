package postgres

import (
	"context"
	"fmt"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
)

// PrecomputeProgressStore is a PostgreSQL implementation of storage.PrecomputeProgressStore.
// Uses precompute_progress: one row per roulette with the last precomputed day.
type PrecomputeProgressStore struct {
	pool *Pool
}

// NewPrecomputeProgressStore creates a new PostgreSQL precompute progress store.
func NewPrecomputeProgressStore(pool *Pool) *PrecomputeProgressStore {
	return &PrecomputeProgressStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PrecomputeProgressStore = (*PrecomputeProgressStore)(nil)

// GetLastPrecomputed returns the last precomputed day for a roulette.
func (s *PrecomputeProgressStore) GetLastPrecomputed(ctx context.Context, rouletteID string) (string, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT day
		FROM precompute_progress
		WHERE roulette_id = $1
	`, rouletteID)

	var day string
	if err := row.Scan(&day); err != nil {
		return "", storageError("get precompute progress", err)
	}
	return day, nil
}

// SetLastPrecomputed saves the last precomputed day for a roulette.
// Uses upsert to handle initial insert and subsequent updates.
func (s *PrecomputeProgressStore) SetLastPrecomputed(ctx context.Context, rouletteID, day string) error {
	if rouletteID == "" || !domain.ValidDay(day) {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO precompute_progress (roulette_id, day, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (roulette_id) DO UPDATE
		SET day = EXCLUDED.day,
		    updated_at = NOW()
	`, rouletteID, day)
	if err != nil {
		return fmt.Errorf("set precompute progress: %w", err)
	}
	return nil
}
