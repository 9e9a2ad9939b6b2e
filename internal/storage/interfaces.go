package storage

import (
	"context"
	"time"

	"roulette-lab/internal/domain"
)

// SpinStore provides access to spins storage.
type SpinStore interface {
	// InsertBulk adds multiple spins atomically. Fails entire batch on any duplicate
	// (roulette_id, spin_id), including duplicates inside the batch.
	InsertBulk(ctx context.Context, spins []*domain.Spin) error

	// GetByDay retrieves spins of one UTC day ("YYYY-MM-DD"), ordered by timestamp ASC, spin_id ASC.
	GetByDay(ctx context.Context, rouletteID, day string) ([]*domain.Spin, error)

	// GetLatest retrieves the most recent limit spins, ordered by timestamp ASC, spin_id ASC.
	GetLatest(ctx context.Context, rouletteID string, limit int) ([]*domain.Spin, error)

	// ListRoulettes returns all roulette ids with at least one spin, sorted ASC.
	ListRoulettes(ctx context.Context) ([]string, error)
}

// DailyStreakStore provides access to daily_streak_max storage (the daily streak cache).
type DailyStreakStore interface {
	// Get retrieves a row by its composite key. Returns ErrNotFound if not exists.
	Get(ctx context.Context, key domain.DailyStreakKey) (*domain.DailyStreakRow, error)

	// Upsert replaces the row for (roulette_id, strategy_id, day). Last write wins;
	// writing the same row twice leaves a single identical row.
	Upsert(ctx context.Context, row *domain.DailyStreakRow) error
}

// StatsStore provides access to strategy_stats snapshots.
type StatsStore interface {
	// Insert adds a snapshot. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, s *domain.StrategyStatsSnapshot) error

	// GetLatest retrieves the most recent snapshot for (roulette_id, strategy_id, day, attempts, policy).
	// Returns ErrNotFound if none exists.
	GetLatest(ctx context.Context, rouletteID, strategyID, day string, attempts int, policy string) (*domain.StrategyStatsSnapshot, error)
}

// Locker provides best-effort mutual exclusion keyed by string.
type Locker interface {
	// TryLock acquires key for ttl. Returns false without error when the key is held.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Unlock releases key. Releasing a key that is not held is not an error.
	Unlock(ctx context.Context, key string) error
}

// PrecomputeProgressStore records the last day whose daily streak rows were precomputed.
// This enables catch-up after restarts without recomputing finished days.
type PrecomputeProgressStore interface {
	// GetLastPrecomputed returns the last precomputed day for a roulette.
	// Returns ErrNotFound if no progress has been saved yet.
	GetLastPrecomputed(ctx context.Context, rouletteID string) (string, error)

	// SetLastPrecomputed saves the last precomputed day for a roulette.
	SetLastPrecomputed(ctx context.Context, rouletteID, day string) error
}
