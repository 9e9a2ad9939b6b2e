package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/observability"
	"roulette-lab/internal/storage"
)

// Precomputer computes daily streak rows for one roulette and day.
type Precomputer interface {
	Roulettes(ctx context.Context) ([]string, error)
	PrecomputeRoulette(ctx context.Context, rouletteID, day string) (int, error)
}

// PrecomputeJob fills the daily streak cache for closed days.
// Per roulette it resumes after the last precomputed day, going back at most CatchUpDays.
type PrecomputeJob struct {
	precomputer Precomputer
	progress    storage.PrecomputeProgressStore
	catchUpDays int
	timeout     time.Duration
	metrics     *observability.Metrics
	log         zerolog.Logger
	now         func() time.Time
}

var _ Task = (*PrecomputeJob)(nil)

// NewPrecomputeJob creates a new PrecomputeJob. metrics may be nil.
func NewPrecomputeJob(p Precomputer, progress storage.PrecomputeProgressStore, catchUpDays int, metrics *observability.Metrics, log zerolog.Logger) *PrecomputeJob {
	if catchUpDays < 1 {
		catchUpDays = 1
	}
	return &PrecomputeJob{
		precomputer: p,
		progress:    progress,
		catchUpDays: catchUpDays,
		timeout:     30 * time.Minute,
		metrics:     metrics,
		log:         log.With().Str("job", "precompute").Logger(),
		now:         time.Now,
	}
}

// Name identifies the job in scheduler logs.
func (j *PrecomputeJob) Name() string {
	return "precompute"
}

// Run precomputes all pending days, bounded by the job timeout.
func (j *PrecomputeJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	_, err := j.RunContext(ctx)
	return err
}

// RunContext precomputes all pending days and returns the number of rows written.
func (j *PrecomputeJob) RunContext(ctx context.Context) (int, error) {
	rows, err := j.run(ctx)
	if j.metrics != nil {
		j.metrics.RecordPrecompute(rows, j.now().Unix(), err)
	}
	return rows, err
}

func (j *PrecomputeJob) run(ctx context.Context) (int, error) {
	roulettes, err := j.precomputer.Roulettes(ctx)
	if err != nil {
		return 0, fmt.Errorf("list roulettes: %w", err)
	}

	yesterday := j.now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	earliest := yesterday.AddDate(0, 0, -(j.catchUpDays - 1))

	total := 0
	var errs []error
	for _, rouletteID := range roulettes {
		start, err := j.startDay(ctx, rouletteID, earliest)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		for d := start; !d.After(yesterday); d = d.AddDate(0, 0, 1) {
			day := d.Format(domain.DayLayout)
			n, err := j.precomputer.PrecomputeRoulette(ctx, rouletteID, day)
			total += n
			if err != nil {
				// stop here so the next run retries this day
				errs = append(errs, fmt.Errorf("precompute %s %s: %w", rouletteID, day, err))
				break
			}
			if err := j.progress.SetLastPrecomputed(ctx, rouletteID, day); err != nil {
				errs = append(errs, fmt.Errorf("save progress %s: %w", rouletteID, err))
				break
			}
		}
	}

	j.log.Info().Int("roulettes", len(roulettes)).Int("rows", total).Msg("precompute finished")
	return total, errors.Join(errs...)
}

// startDay returns the first day to compute for rouletteID.
func (j *PrecomputeJob) startDay(ctx context.Context, rouletteID string, earliest time.Time) (time.Time, error) {
	last, err := j.progress.GetLastPrecomputed(ctx, rouletteID)
	if errors.Is(err, storage.ErrNotFound) {
		return earliest, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load progress %s: %w", rouletteID, err)
	}

	lastDay, err := time.Parse(domain.DayLayout, last)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse progress %s %q: %w", rouletteID, last, err)
	}
	next := lastDay.AddDate(0, 0, 1)
	if next.Before(earliest) {
		return earliest, nil
	}
	return next, nil
}
