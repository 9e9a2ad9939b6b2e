package memory

import (
	"context"
	"sync"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
)

// PrecomputeProgressStore is an in-memory implementation of storage.PrecomputeProgressStore.
type PrecomputeProgressStore struct {
	mu   sync.RWMutex
	days map[string]string // roulette_id -> day
}

// NewPrecomputeProgressStore creates a new in-memory precompute progress store.
func NewPrecomputeProgressStore() *PrecomputeProgressStore {
	return &PrecomputeProgressStore{
		days: make(map[string]string),
	}
}

// GetLastPrecomputed returns the last precomputed day for a roulette.
func (s *PrecomputeProgressStore) GetLastPrecomputed(_ context.Context, rouletteID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day, ok := s.days[rouletteID]
	if !ok {
		return "", storage.ErrNotFound
	}
	return day, nil
}

// SetLastPrecomputed saves the last precomputed day for a roulette.
func (s *PrecomputeProgressStore) SetLastPrecomputed(_ context.Context, rouletteID, day string) error {
	if rouletteID == "" || !domain.ValidDay(day) {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.days[rouletteID] = day
	return nil
}

var _ storage.PrecomputeProgressStore = (*PrecomputeProgressStore)(nil)
