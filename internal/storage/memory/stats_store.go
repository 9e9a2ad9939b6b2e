package memory

import (
	"context"
	"sync"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
)

// StatsStore is an in-memory implementation of storage.StatsStore.
type StatsStore struct {
	mu    sync.RWMutex
	byRun map[string]*domain.StrategyStatsSnapshot
	order []string // run ids in insertion order
}

// NewStatsStore creates a new in-memory stats store.
func NewStatsStore() *StatsStore {
	return &StatsStore{
		byRun: make(map[string]*domain.StrategyStatsSnapshot),
	}
}

// Insert adds a snapshot. Returns ErrDuplicateKey if run_id exists.
func (s *StatsStore) Insert(_ context.Context, snap *domain.StrategyStatsSnapshot) error {
	if snap == nil || snap.RunID == "" || snap.RouletteID == "" || snap.StrategyID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byRun[snap.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := copySnapshot(snap)
	s.byRun[snap.RunID] = cp
	s.order = append(s.order, snap.RunID)
	return nil
}

// GetLatest retrieves the most recent snapshot for the key.
// Ties on ComputedAt resolve to the later insert.
func (s *StatsStore) GetLatest(_ context.Context, rouletteID, strategyID, day string, attempts int, policy string) (*domain.StrategyStatsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.StrategyStatsSnapshot
	for _, runID := range s.order {
		snap := s.byRun[runID]
		if snap.RouletteID != rouletteID || snap.StrategyID != strategyID || snap.Day != day ||
			snap.Attempts != attempts || snap.Policy != policy {
			continue
		}
		if latest == nil || snap.ComputedAt >= latest.ComputedAt {
			latest = snap
		}
	}

	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return copySnapshot(latest), nil
}

// copySnapshot deep-copies the slices and maps of a snapshot.
func copySnapshot(in *domain.StrategyStatsSnapshot) *domain.StrategyStatsSnapshot {
	out := *in
	st := &out.Stats

	st.AttemptHits = make(map[int]int, len(in.Stats.AttemptHits))
	for k, v := range in.Stats.AttemptHits {
		st.AttemptHits[k] = v
	}
	st.IntervalHistogram = make(map[string]int, len(in.Stats.IntervalHistogram))
	for k, v := range in.Stats.IntervalHistogram {
		st.IntervalHistogram[k] = v
	}
	st.HotNumbers = append([]domain.NumberCount(nil), in.Stats.HotNumbers...)
	st.ColdNumbers = append([]int(nil), in.Stats.ColdNumbers...)
	return &out
}

var _ storage.StatsStore = (*StatsStore)(nil)
