package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roulette-lab/internal/classifier"
	"roulette-lab/internal/domain"
	"roulette-lab/internal/sequence"
	"roulette-lab/internal/storage"
	"roulette-lab/internal/strategy"
)

// ErrNoStatsStore is returned by ComputeAndStore when the aggregator has no StatsStore.
var ErrNoStatsStore = errors.New("no stats store configured")

// LoadSequence loads one UTC day of spins, or the latest liveWindow spins when day is "live",
// and builds a chronological sequence tagged with that window.
func LoadSequence(ctx context.Context, spins storage.SpinStore, rouletteID, day string, liveWindow int) (*sequence.Sequence, error) {
	var (
		rows []*domain.Spin
		err  error
	)
	if day == domain.DayLive {
		rows, err = spins.GetLatest(ctx, rouletteID, liveWindow)
	} else {
		if !domain.ValidDay(day) {
			return nil, domain.NewValidationError("date", day, storage.ErrInvalidInput)
		}
		rows, err = spins.GetByDay(ctx, rouletteID, day)
	}
	if err != nil {
		return nil, fmt.Errorf("load spins: %w", err)
	}

	return sequence.FromSpins(rows, sequence.Window{RouletteID: rouletteID, Date: day, Rows: len(rows)})
}

// Aggregator computes strategy statistics from stored spins.
type Aggregator struct {
	spinStore  storage.SpinStore
	statsStore storage.StatsStore // optional
	liveWindow int

	now   func() time.Time
	newID func() string
}

// NewAggregator creates a new statistics aggregator. statsStore may be nil.
func NewAggregator(spinStore storage.SpinStore, statsStore storage.StatsStore, liveWindow int) *Aggregator {
	return &Aggregator{
		spinStore:  spinStore,
		statsStore: statsStore,
		liveWindow: liveWindow,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// ComputeSnapshot loads the window for (rouletteID, day), classifies it and collects statistics.
func (a *Aggregator) ComputeSnapshot(ctx context.Context, rouletteID, day string, strat strategy.Strategy, attempts int, policy classifier.Policy) (*domain.StrategyStatsSnapshot, error) {
	seq, err := LoadSequence(ctx, a.spinStore, rouletteID, day, a.liveWindow)
	if err != nil {
		return nil, err
	}

	st, err := Compute(seq, strat, attempts, classifier.WithPolicy(policy))
	if err != nil {
		return nil, err
	}

	return &domain.StrategyStatsSnapshot{
		RunID:       a.newID(),
		RouletteID:  rouletteID,
		StrategyID:  strat.ID(),
		Day:         day,
		Attempts:    attempts,
		Policy:      policy.String(),
		Fingerprint: seq.Fingerprint(),
		ComputedAt:  a.now().UnixMilli(),
		Stats:       st,
	}, nil
}

// ComputeAndStore computes a snapshot and persists it (append-only).
func (a *Aggregator) ComputeAndStore(ctx context.Context, rouletteID, day string, strat strategy.Strategy, attempts int, policy classifier.Policy) (*domain.StrategyStatsSnapshot, error) {
	if a.statsStore == nil {
		return nil, ErrNoStatsStore
	}

	snap, err := a.ComputeSnapshot(ctx, rouletteID, day, strat, attempts, policy)
	if err != nil {
		return nil, err
	}

	if err := a.statsStore.Insert(ctx, snap); err != nil {
		return nil, fmt.Errorf("store stats snapshot: %w", err)
	}
	return snap, nil
}
