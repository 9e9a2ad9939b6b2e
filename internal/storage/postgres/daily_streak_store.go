package postgres

import (
	"context"
	"fmt"
	"time"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
)

// DailyStreakStore implements storage.DailyStreakStore using PostgreSQL.
// Rows live in daily_streak_max keyed by (roulette_id, strategy_id, day).
type DailyStreakStore struct {
	pool *Pool
}

// NewDailyStreakStore creates a new DailyStreakStore.
func NewDailyStreakStore(pool *Pool) *DailyStreakStore {
	return &DailyStreakStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DailyStreakStore = (*DailyStreakStore)(nil)

// Get retrieves a row by its composite key. Returns ErrNotFound if not exists.
func (s *DailyStreakStore) Get(ctx context.Context, key domain.DailyStreakKey) (*domain.DailyStreakRow, error) {
	query := `
		SELECT roulette_id, strategy_id, day,
			max_red_1, max_red_2, max_red_3,
			max_green_1, max_green_2, max_green_3,
			total_spins, updated_at
		FROM daily_streak_max
		WHERE roulette_id = $1 AND strategy_id = $2 AND day = $3
	`

	var row domain.DailyStreakRow
	err := s.pool.QueryRow(ctx, query, key.RouletteID, key.StrategyID, key.Day).Scan(
		&row.RouletteID,
		&row.StrategyID,
		&row.Day,
		&row.MaxRed[0], &row.MaxRed[1], &row.MaxRed[2],
		&row.MaxGreen[0], &row.MaxGreen[1], &row.MaxGreen[2],
		&row.TotalSpins,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, storageError("get daily streak", err)
	}

	return &row, nil
}

// Upsert replaces the row for its key. Last write wins; a write carrying
// identical values leaves the stored row (including updated_at) untouched.
func (s *DailyStreakStore) Upsert(ctx context.Context, row *domain.DailyStreakRow) error {
	if row == nil || row.RouletteID == "" || row.StrategyID == "" || !domain.ValidDay(row.Day) {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO daily_streak_max (
			roulette_id, strategy_id, day,
			max_red_1, max_red_2, max_red_3,
			max_green_1, max_green_2, max_green_3,
			total_spins, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (roulette_id, strategy_id, day) DO UPDATE
		SET max_red_1 = EXCLUDED.max_red_1,
		    max_red_2 = EXCLUDED.max_red_2,
		    max_red_3 = EXCLUDED.max_red_3,
		    max_green_1 = EXCLUDED.max_green_1,
		    max_green_2 = EXCLUDED.max_green_2,
		    max_green_3 = EXCLUDED.max_green_3,
		    total_spins = EXCLUDED.total_spins,
		    updated_at = EXCLUDED.updated_at
		WHERE (daily_streak_max.max_red_1, daily_streak_max.max_red_2, daily_streak_max.max_red_3,
		       daily_streak_max.max_green_1, daily_streak_max.max_green_2, daily_streak_max.max_green_3,
		       daily_streak_max.total_spins)
		      IS DISTINCT FROM
		      (EXCLUDED.max_red_1, EXCLUDED.max_red_2, EXCLUDED.max_red_3,
		       EXCLUDED.max_green_1, EXCLUDED.max_green_2, EXCLUDED.max_green_3,
		       EXCLUDED.total_spins)
	`

	_, err := s.pool.Exec(ctx, query,
		row.RouletteID,
		row.StrategyID,
		row.Day,
		row.MaxRed[0], row.MaxRed[1], row.MaxRed[2],
		row.MaxGreen[0], row.MaxGreen[1], row.MaxGreen[2],
		row.TotalSpins,
		time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert daily streak: %w", err)
	}
	return nil
}
