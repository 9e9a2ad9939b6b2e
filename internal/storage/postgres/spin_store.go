package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
)

// SpinStore implements storage.SpinStore using PostgreSQL.
type SpinStore struct {
	pool *Pool
}

// NewSpinStore creates a new SpinStore.
func NewSpinStore(pool *Pool) *SpinStore {
	return &SpinStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SpinStore = (*SpinStore)(nil)

// InsertBulk adds multiple spins atomically. Fails entire batch on any duplicate.
func (s *SpinStore) InsertBulk(ctx context.Context, spins []*domain.Spin) error {
	if len(spins) == 0 {
		return nil
	}
	for _, spin := range spins {
		if spin == nil || spin.RouletteID == "" || spin.SpinID == "" || !domain.ValidOutcome(spin.Number) {
			return storage.ErrInvalidInput
		}
	}

	query := `
		INSERT INTO spins (roulette_id, spin_id, number, timestamp_ms, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	now := time.Now().UnixMilli()
	return s.pool.inTx(ctx, func(tx pgx.Tx) error {
		for _, spin := range spins {
			createdAt := spin.CreatedAt
			if createdAt == 0 {
				createdAt = now
			}
			if _, err := tx.Exec(ctx, query, spin.RouletteID, spin.SpinID, spin.Number, spin.TimestampMs, createdAt); err != nil {
				return storageError("insert spin", err)
			}
		}
		return nil
	})
}

// GetByDay retrieves spins of one UTC day, ordered by timestamp ASC, spin_id ASC.
func (s *SpinStore) GetByDay(ctx context.Context, rouletteID, day string) ([]*domain.Spin, error) {
	start, end, err := domain.DayBounds(day)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT roulette_id, spin_id, number, timestamp_ms, created_at
		FROM spins
		WHERE roulette_id = $1 AND timestamp_ms >= $2 AND timestamp_ms < $3
		ORDER BY timestamp_ms ASC, spin_id ASC
	`

	rows, err := s.pool.Query(ctx, query, rouletteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query spins by day: %w", err)
	}
	defer rows.Close()

	return scanSpins(rows)
}

// GetLatest retrieves the most recent limit spins, ordered by timestamp ASC, spin_id ASC.
func (s *SpinStore) GetLatest(ctx context.Context, rouletteID string, limit int) ([]*domain.Spin, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT roulette_id, spin_id, number, timestamp_ms, created_at
		FROM (
			SELECT roulette_id, spin_id, number, timestamp_ms, created_at
			FROM spins
			WHERE roulette_id = $1
			ORDER BY timestamp_ms DESC, spin_id DESC
			LIMIT $2
		) latest
		ORDER BY timestamp_ms ASC, spin_id ASC
	`

	rows, err := s.pool.Query(ctx, query, rouletteID, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest spins: %w", err)
	}
	defer rows.Close()

	return scanSpins(rows)
}

// ListRoulettes returns all roulette ids with at least one spin.
func (s *SpinStore) ListRoulettes(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT roulette_id FROM spins ORDER BY roulette_id`)
	if err != nil {
		return nil, fmt.Errorf("query roulettes: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan roulette id: %w", err)
		}
		result = append(result, id)
	}
	return result, rows.Err()
}

// scanSpins scans rows into spins.
func scanSpins(rows pgx.Rows) ([]*domain.Spin, error) {
	var result []*domain.Spin
	for rows.Next() {
		var spin domain.Spin
		if err := rows.Scan(
			&spin.RouletteID,
			&spin.SpinID,
			&spin.Number,
			&spin.TimestampMs,
			&spin.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan spin: %w", err)
		}
		result = append(result, &spin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spins: %w", err)
	}
	return result, nil
}
