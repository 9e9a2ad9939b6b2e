package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
)

// SpinStore is an in-memory implementation of storage.SpinStore.
type SpinStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Spin // keyed by composite key
}

// NewSpinStore creates a new in-memory spin store.
func NewSpinStore() *SpinStore {
	return &SpinStore{
		data: make(map[string]*domain.Spin),
	}
}

// spinKey generates a unique key for a spin.
func spinKey(rouletteID, spinID string) string {
	return fmt.Sprintf("%s|%s", rouletteID, spinID)
}

// InsertBulk adds multiple spins atomically. Fails entire batch on any duplicate.
func (s *SpinStore) InsertBulk(_ context.Context, spins []*domain.Spin) error {
	if len(spins) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(spins))

	// First pass: validate and check for duplicates (existing + intra-batch)
	for _, spin := range spins {
		if spin == nil || spin.RouletteID == "" || spin.SpinID == "" || !domain.ValidOutcome(spin.Number) {
			return storage.ErrInvalidInput
		}
		key := spinKey(spin.RouletteID, spin.SpinID)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	now := time.Now().UnixMilli()
	for _, spin := range spins {
		cp := *spin
		if cp.CreatedAt == 0 {
			cp.CreatedAt = now
		}
		s.data[spinKey(spin.RouletteID, spin.SpinID)] = &cp
	}

	return nil
}

// GetByDay retrieves spins of one UTC day, ordered by timestamp ASC.
func (s *SpinStore) GetByDay(_ context.Context, rouletteID, day string) ([]*domain.Spin, error) {
	start, end, err := domain.DayBounds(day)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Spin
	for _, spin := range s.data {
		if spin.RouletteID == rouletteID && spin.TimestampMs >= start && spin.TimestampMs < end {
			cp := *spin
			result = append(result, &cp)
		}
	}

	sortSpins(result)
	return result, nil
}

// GetLatest retrieves the most recent limit spins, ordered by timestamp ASC.
func (s *SpinStore) GetLatest(_ context.Context, rouletteID string, limit int) ([]*domain.Spin, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Spin
	for _, spin := range s.data {
		if spin.RouletteID == rouletteID {
			cp := *spin
			result = append(result, &cp)
		}
	}

	sortSpins(result)
	if len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

// ListRoulettes returns all roulette ids with at least one spin.
func (s *SpinStore) ListRoulettes(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, spin := range s.data {
		seen[spin.RouletteID] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for id := range seen {
		result = append(result, id)
	}
	sort.Strings(result)
	return result, nil
}

// sortSpins orders spins by timestamp ASC, spin_id ASC.
func sortSpins(spins []*domain.Spin) {
	sort.Slice(spins, func(i, j int) bool {
		if spins[i].TimestampMs != spins[j].TimestampMs {
			return spins[i].TimestampMs < spins[j].TimestampMs
		}
		return spins[i].SpinID < spins[j].SpinID
	})
}

var _ storage.SpinStore = (*SpinStore)(nil)
