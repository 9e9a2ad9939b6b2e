package clickhouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
)

// StatsStore implements storage.StatsStore using ClickHouse.
// Scalar metrics are stored as columns for ad-hoc queries; the full
// StrategyStats (maps and lists included) travels in the JSON payload column.
type StatsStore struct {
	conn *Conn
}

// NewStatsStore creates a new StatsStore.
func NewStatsStore(conn *Conn) *StatsStore {
	return &StatsStore{conn: conn}
}

// Compile-time interface check.
var _ storage.StatsStore = (*StatsStore)(nil)

// Insert adds a snapshot. Returns ErrDuplicateKey if run_id exists.
func (s *StatsStore) Insert(ctx context.Context, snap *domain.StrategyStatsSnapshot) error {
	if snap == nil || snap.RunID == "" || snap.RouletteID == "" || snap.StrategyID == "" {
		return storage.ErrInvalidInput
	}

	// ReplacingMergeTree would collapse duplicates; keep append-only semantics explicit.
	exists, err := s.exists(ctx, snap.RunID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	payload, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats payload: %w", err)
	}

	st := snap.Stats
	query := `
		INSERT INTO strategy_stats (
			run_id, roulette_id, strategy_id, day, attempts, policy, fingerprint, computed_at,
			total_spins, total_activations, total_green, total_red, total_pending, hit_rate,
			max_green_sequence, max_red_sequence, most_activating_number, most_activating_count,
			interval_mean, interval_stddev, green_after_green, green_after_red, best_entry_pattern,
			payload
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?
		)
	`

	err = s.conn.Exec(ctx, query,
		snap.RunID, snap.RouletteID, snap.StrategyID, snap.Day, snap.Attempts, snap.Policy, snap.Fingerprint, snap.ComputedAt,
		st.TotalSpins, st.TotalActivations, st.TotalGreen, st.TotalRed, st.TotalPending, st.HitRate,
		st.MaxGreenSequence, st.MaxRedSequence, st.MostActivatingNumber, st.MostActivatingCount,
		st.IntervalMean, st.IntervalStddev, st.GreenAfterGreen, st.GreenAfterRed, string(st.BestEntryPattern),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert strategy stats: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot for the key.
func (s *StatsStore) GetLatest(ctx context.Context, rouletteID, strategyID, day string, attempts int, policy string) (*domain.StrategyStatsSnapshot, error) {
	query := `
		SELECT run_id, roulette_id, strategy_id, day, attempts, policy, fingerprint, computed_at, payload
		FROM strategy_stats FINAL
		WHERE roulette_id = ? AND strategy_id = ? AND day = ? AND attempts = ? AND policy = ?
		ORDER BY computed_at DESC, run_id DESC
		LIMIT 1
	`

	row := s.conn.QueryRow(ctx, query, rouletteID, strategyID, day, attempts, policy)

	var (
		snap     domain.StrategyStatsSnapshot
		attempt8 uint8
		payload  string
	)
	err := row.Scan(
		&snap.RunID, &snap.RouletteID, &snap.StrategyID, &snap.Day,
		&attempt8, &snap.Policy, &snap.Fingerprint, &snap.ComputedAt, &payload,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest strategy stats: %w", err)
	}
	snap.Attempts = int(attempt8)

	if err := json.Unmarshal([]byte(payload), &snap.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats payload: %w", err)
	}
	return &snap, nil
}

// exists checks if a snapshot with run_id exists.
func (s *StatsStore) exists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count() FROM strategy_stats WHERE run_id = ?`, runID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
