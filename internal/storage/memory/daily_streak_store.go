package memory

import (
	"context"
	"sync"
	"time"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
)

// DailyStreakStore is an in-memory implementation of storage.DailyStreakStore.
type DailyStreakStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DailyStreakRow // keyed by DailyStreakKey.String()
	now  func() time.Time
}

// NewDailyStreakStore creates a new in-memory daily streak store.
func NewDailyStreakStore() *DailyStreakStore {
	return &DailyStreakStore{
		data: make(map[string]*domain.DailyStreakRow),
		now:  time.Now,
	}
}

// Get retrieves a row by its composite key. Returns ErrNotFound if not exists.
func (s *DailyStreakStore) Get(_ context.Context, key domain.DailyStreakKey) (*domain.DailyStreakRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, exists := s.data[key.String()]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *row
	return &cp, nil
}

// Upsert replaces the row for its key. An identical row leaves the stored row untouched.
func (s *DailyStreakStore) Upsert(_ context.Context, row *domain.DailyStreakRow) error {
	if row == nil || row.RouletteID == "" || row.StrategyID == "" || !domain.ValidDay(row.Day) {
		return storage.ErrInvalidInput
	}

	key := row.Key().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.data[key]; ok && sameValues(existing, row) {
		return nil
	}

	cp := *row
	cp.UpdatedAt = s.now().UnixMilli()
	s.data[key] = &cp
	return nil
}

// Len returns the number of stored rows.
func (s *DailyStreakStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// sameValues compares the cached values, ignoring UpdatedAt.
func sameValues(a, b *domain.DailyStreakRow) bool {
	return a.MaxRed == b.MaxRed && a.MaxGreen == b.MaxGreen && a.TotalSpins == b.TotalSpins
}

var _ storage.DailyStreakStore = (*DailyStreakStore)(nil)
