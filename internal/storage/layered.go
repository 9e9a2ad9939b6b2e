package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"roulette-lab/internal/domain"
)

// LayeredDailyStreakStore reads through a fast front store (Redis) to a durable
// back store (Postgres). Front failures are logged and never fail the call.
type LayeredDailyStreakStore struct {
	front  DailyStreakStore
	back   DailyStreakStore
	logger zerolog.Logger
}

// NewLayeredDailyStreakStore creates a layered store. front may be nil.
func NewLayeredDailyStreakStore(front, back DailyStreakStore, logger zerolog.Logger) *LayeredDailyStreakStore {
	return &LayeredDailyStreakStore{front: front, back: back, logger: logger}
}

var _ DailyStreakStore = (*LayeredDailyStreakStore)(nil)

// Get tries the front store, then the back store, filling the front on a back hit.
func (s *LayeredDailyStreakStore) Get(ctx context.Context, key domain.DailyStreakKey) (*domain.DailyStreakRow, error) {
	if s.front != nil {
		row, err := s.front.Get(ctx, key)
		if err == nil {
			return row, nil
		}
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", key.String()).Msg("front cache get failed")
		}
	}

	row, err := s.back.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if s.front != nil {
		if err := s.front.Upsert(ctx, row); err != nil {
			s.logger.Warn().Err(err).Str("key", key.String()).Msg("front cache fill failed")
		}
	}
	return row, nil
}

// Upsert writes the back store first, then the front store.
func (s *LayeredDailyStreakStore) Upsert(ctx context.Context, row *domain.DailyStreakRow) error {
	if err := s.back.Upsert(ctx, row); err != nil {
		return fmt.Errorf("layered upsert: %w", err)
	}
	if s.front != nil {
		if err := s.front.Upsert(ctx, row); err != nil {
			s.logger.Warn().Err(err).Str("key", row.Key().String()).Msg("front cache upsert failed")
		}
	}
	return nil
}
