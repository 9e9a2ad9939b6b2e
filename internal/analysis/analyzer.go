// Package analysis serves streak and statistics requests over stored spins.
// Closed days are read through the daily streak cache; live windows are always computed.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"roulette-lab/internal/classifier"
	"roulette-lab/internal/domain"
	"roulette-lab/internal/metrics"
	"roulette-lab/internal/observability"
	"roulette-lab/internal/sequence"
	"roulette-lab/internal/storage"
	"roulette-lab/internal/strategy"
	"roulette-lab/internal/streak"
)

// ErrMissingRoulette is returned when a request names no roulette.
var ErrMissingRoulette = errors.New("roulette id is required")

// ErrNoCache is returned by Precompute when no daily streak store is configured.
var ErrNoCache = errors.New("no daily streak store configured")

// ErrDayNotClosed is returned when precomputing a day that is not strictly before today (UTC).
var ErrDayNotClosed = errors.New("day is not closed yet")

// Request identifies one analysis.
type Request struct {
	RouletteID string
	StrategyID string
	Date       string // "YYYY-MM-DD" or "live"; empty means live
	Attempts   int
}

// Result is the answer to Analyze.
type Result struct {
	RouletteID string `json:"roulette_id"`
	StrategyID string `json:"strategy_id"`
	Date       string `json:"date"`
	Attempts   int    `json:"attempts"`
	MaxRed     int    `json:"max_red"`
	MaxGreen   int    `json:"max_green"`
	TotalSpins int    `json:"total_spins"`
	Pending    string `json:"pending_policy"`
	FromCache  bool   `json:"from_cache"`
}

// SnapshotResult is the answer to Snapshot.
type SnapshotResult struct {
	RouletteID   string            `json:"roulette_id"`
	StrategyID   string            `json:"strategy_id"`
	Date         string            `json:"date"`
	Attempts     int               `json:"attempts"`
	TotalSpins   int               `json:"total_spins"`
	Fingerprint  string            `json:"fingerprint"`
	CurrentRed   int               `json:"current_red"`
	CurrentGreen int               `json:"current_green"`
	MaxRed       int               `json:"max_red"`
	MaxGreen     int               `json:"max_green"`
	Comparison   streak.Comparison `json:"comparison"`
}

// Options for creating an Analyzer.
type Options struct {
	// Required
	Registry  *strategy.Registry
	SpinStore storage.SpinStore

	// Optional
	Cache      storage.DailyStreakStore
	Locker     storage.Locker
	StatsStore storage.StatsStore
	Metrics    *observability.Metrics
	Logger     zerolog.Logger

	LiveWindow int           // spins in the live window, default 500
	LockTTL    time.Duration // compute-once lock lifetime, default 30s
	Now        func() time.Time
}

// Analyzer answers analysis requests. It holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	registry   *strategy.Registry
	spins      storage.SpinStore
	cache      storage.DailyStreakStore
	locker     storage.Locker
	statsStore storage.StatsStore
	aggregator *metrics.Aggregator
	metrics    *observability.Metrics
	logger     zerolog.Logger

	liveWindow int
	lockTTL    time.Duration
	now        func() time.Time
}

// New creates a new Analyzer.
func New(opts Options) *Analyzer {
	if opts.LiveWindow <= 0 {
		opts.LiveWindow = 500
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Analyzer{
		registry:   opts.Registry,
		spins:      opts.SpinStore,
		cache:      opts.Cache,
		locker:     opts.Locker,
		statsStore: opts.StatsStore,
		aggregator: metrics.NewAggregator(opts.SpinStore, opts.StatsStore, opts.LiveWindow),
		metrics:    opts.Metrics,
		logger:     opts.Logger.With().Str("component", "analysis").Logger(),
		liveWindow: opts.LiveWindow,
		lockTTL:    opts.LockTTL,
		now:        opts.Now,
	}
}

// request is a validated Request.
type request struct {
	Request
	strat  strategy.Strategy
	closed bool // a day strictly before today (UTC)
}

func (a *Analyzer) validate(req Request) (request, error) {
	if req.RouletteID == "" {
		return request{}, domain.NewValidationError("roulette_id", "empty", ErrMissingRoulette)
	}
	if err := classifier.ValidateAttempts(req.Attempts); err != nil {
		return request{}, err
	}
	if req.Date == "" {
		req.Date = domain.DayLive
	}
	if req.Date != domain.DayLive && !domain.ValidDay(req.Date) {
		return request{}, domain.NewValidationError("date", fmt.Sprintf("%q is neither YYYY-MM-DD nor live", req.Date), storage.ErrInvalidInput)
	}

	strat, err := a.registry.Get(req.StrategyID)
	if err != nil {
		return request{}, err
	}

	today := a.now().UTC().Format(domain.DayLayout)
	return request{
		Request: req,
		strat:   strat,
		closed:  req.Date != domain.DayLive && req.Date < today,
	}, nil
}

// Analyze returns the maximum RED and GREEN runs for the request window.
// Closed days with attempts 1..3 are served from the daily streak cache when present;
// a miss computes all three attempts values and upserts the row.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	defer func() { a.record("analyze", start, err) }()

	r, err := a.validate(req)
	if err != nil {
		return nil, err
	}

	if !r.closed {
		a.recordCache("bypass")
		return a.computeMax(ctx, r, streak.PendingExcluded)
	}
	if a.cache == nil || r.Attempts > domain.CachedAttempts {
		a.recordCache("bypass")
		return a.computeMax(ctx, r, streak.PendingAsRed)
	}

	key := domain.DailyStreakKey{RouletteID: r.RouletteID, StrategyID: r.StrategyID, Day: r.Date}
	if hit, ok := a.cacheGet(ctx, key, r); ok {
		return hit, nil
	}
	a.recordCache("miss")

	release := a.lock(ctx, key)
	defer release()

	// Another caller may have filled the row while we waited for the lock.
	if hit, ok := a.cacheGet(ctx, key, r); ok {
		return hit, nil
	}

	seq, err := metrics.LoadSequence(ctx, a.spins, r.RouletteID, r.Date, a.liveWindow)
	if err != nil {
		return nil, err
	}
	row, err := ComputeRow(seq, r.strat)
	if err != nil {
		return nil, err
	}
	a.countClassified(seq.Len() * domain.CachedAttempts)

	if err := a.cache.Upsert(ctx, row); err != nil {
		a.cacheError("upsert", key, err)
	}

	m, _ := row.ForAttempts(r.Attempts)
	return a.result(r, m, streak.PendingAsRed, false), nil
}

// cacheGet returns a cached result. Store errors are logged and treated as a miss.
func (a *Analyzer) cacheGet(ctx context.Context, key domain.DailyStreakKey, r request) (*Result, bool) {
	row, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.cacheError("get", key, err)
		}
		return nil, false
	}

	m, ok := row.ForAttempts(r.Attempts)
	if !ok {
		return nil, false
	}
	a.recordCache("hit")
	return a.result(r, m, streak.PendingAsRed, true), true
}

// lock takes the compute-once lock for key. Failure to acquire never blocks the computation.
func (a *Analyzer) lock(ctx context.Context, key domain.DailyStreakKey) func() {
	noop := func() {}
	if a.locker == nil {
		return noop
	}

	lockKey := "daily:" + key.String()
	ok, err := a.locker.TryLock(ctx, lockKey, a.lockTTL)
	if err != nil {
		a.cacheError("lock", key, err)
		return noop
	}
	if !ok {
		a.logger.Debug().Str("key", key.String()).Msg("lock held elsewhere, computing anyway")
		if a.metrics != nil {
			a.metrics.LockContention.Inc()
		}
		return noop
	}

	return func() {
		if err := a.locker.Unlock(context.WithoutCancel(ctx), lockKey); err != nil {
			a.cacheError("unlock", key, err)
		}
	}
}

func (a *Analyzer) computeMax(ctx context.Context, r request, pending streak.PendingPolicy) (*Result, error) {
	seq, err := metrics.LoadSequence(ctx, a.spins, r.RouletteID, r.Date, a.liveWindow)
	if err != nil {
		return nil, err
	}

	m, err := streak.Max(seq, r.strat, r.Attempts, pending)
	if err != nil {
		return nil, err
	}
	a.countClassified(seq.Len())

	return a.result(r, domain.DailyStreakMax{MaxRed: m.MaxRed, MaxGreen: m.MaxGreen, TotalSpins: m.TotalSpins}, pending, false), nil
}

func (a *Analyzer) result(r request, m domain.DailyStreakMax, pending streak.PendingPolicy, fromCache bool) *Result {
	return &Result{
		RouletteID: r.RouletteID,
		StrategyID: r.StrategyID,
		Date:       r.Date,
		Attempts:   r.Attempts,
		MaxRed:     m.MaxRed,
		MaxGreen:   m.MaxGreen,
		TotalSpins: m.TotalSpins,
		Pending:    pending.String(),
		FromCache:  fromCache,
	}
}

// ComputeRow computes the daily streak row for attempts 1..3 from a closed-day sequence.
func ComputeRow(seq *sequence.Sequence, strat strategy.Strategy) (*domain.DailyStreakRow, error) {
	w := seq.Window()
	row := &domain.DailyStreakRow{
		RouletteID: w.RouletteID,
		StrategyID: strat.ID(),
		Day:        w.Date,
		TotalSpins: seq.Len(),
	}
	for k := domain.MinAttempts; k <= domain.CachedAttempts; k++ {
		m, err := streak.Max(seq.Chronological(), strat, k, streak.PendingAsRed)
		if err != nil {
			return nil, fmt.Errorf("compute attempts %d: %w", k, err)
		}
		row.MaxRed[k-1] = m.MaxRed
		row.MaxGreen[k-1] = m.MaxGreen
	}
	return row, nil
}

// Snapshot computes the current streak, the max streak and their comparison from one sequence instance.
func (a *Analyzer) Snapshot(ctx context.Context, req Request) (res *SnapshotResult, err error) {
	start := time.Now()
	defer func() { a.record("snapshot", start, err) }()

	r, err := a.validate(req)
	if err != nil {
		return nil, err
	}

	seq, err := metrics.LoadSequence(ctx, a.spins, r.RouletteID, r.Date, a.liveWindow)
	if err != nil {
		return nil, err
	}

	snap, err := streak.Evaluate(seq, r.strat, r.Attempts)
	if err != nil {
		return nil, err
	}
	a.countClassified(2 * seq.Len())

	return &SnapshotResult{
		RouletteID:   r.RouletteID,
		StrategyID:   r.StrategyID,
		Date:         r.Date,
		Attempts:     r.Attempts,
		TotalSpins:   seq.Len(),
		Fingerprint:  seq.Fingerprint(),
		CurrentRed:   snap.Current.Red,
		CurrentGreen: snap.Current.Green,
		MaxRed:       snap.Max.MaxRed,
		MaxGreen:     snap.Max.MaxGreen,
		Comparison:   snap.Comparison,
	}, nil
}

// Stats computes StrategyStats for the request window. When persist is set and a
// StatsStore is configured, the snapshot is stored.
func (a *Analyzer) Stats(ctx context.Context, req Request, policy classifier.Policy, persist bool) (snap *domain.StrategyStatsSnapshot, err error) {
	start := time.Now()
	defer func() { a.record("stats", start, err) }()

	r, err := a.validate(req)
	if err != nil {
		return nil, err
	}

	if persist && a.statsStore != nil {
		snap, err = a.aggregator.ComputeAndStore(ctx, r.RouletteID, r.Date, r.strat, r.Attempts, policy)
		if err == nil && a.metrics != nil {
			a.metrics.StatsSnapshots.Inc()
		}
	} else {
		snap, err = a.aggregator.ComputeSnapshot(ctx, r.RouletteID, r.Date, r.strat, r.Attempts, policy)
	}
	if err != nil {
		return nil, err
	}
	a.countClassified(snap.Stats.TotalSpins)
	return snap, nil
}

// Precompute upserts daily streak rows for every roulette and registered strategy on day.
// It returns the number of rows written; per-row failures are joined and do not stop the run.
func (a *Analyzer) Precompute(ctx context.Context, day string) (int, error) {
	if err := a.checkPrecompute(day); err != nil {
		return 0, err
	}

	roulettes, err := a.Roulettes(ctx)
	if err != nil {
		return 0, fmt.Errorf("list roulettes: %w", err)
	}

	written := 0
	var errs []error
	for _, rouletteID := range roulettes {
		n, err := a.PrecomputeRoulette(ctx, rouletteID, day)
		written += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return written, errors.Join(errs...)
}

func (a *Analyzer) checkPrecompute(day string) error {
	if a.cache == nil {
		return ErrNoCache
	}
	if !domain.ValidDay(day) {
		return domain.NewValidationError("date", day, storage.ErrInvalidInput)
	}
	if today := a.now().UTC().Format(domain.DayLayout); day >= today {
		return domain.NewValidationError("date", fmt.Sprintf("%s is not before %s", day, today), ErrDayNotClosed)
	}
	return nil
}

// Roulettes lists roulettes with stored spins.
func (a *Analyzer) Roulettes(ctx context.Context) ([]string, error) {
	return a.spins.ListRoulettes(ctx)
}

// PrecomputeRoulette upserts daily streak rows for every registered strategy of one roulette.
func (a *Analyzer) PrecomputeRoulette(ctx context.Context, rouletteID, day string) (int, error) {
	if err := a.checkPrecompute(day); err != nil {
		return 0, err
	}

	seq, err := metrics.LoadSequence(ctx, a.spins, rouletteID, day, a.liveWindow)
	if err != nil {
		return 0, err
	}

	written := 0
	var errs []error
	for _, strat := range a.registry.List() {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		row, err := ComputeRow(seq, strat)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s/%s: %w", rouletteID, strat.ID(), err))
			continue
		}
		if err := a.cache.Upsert(ctx, row); err != nil {
			errs = append(errs, fmt.Errorf("upsert %s: %w", row.Key(), err))
			continue
		}
		written++
	}
	a.countClassified(seq.Len() * domain.CachedAttempts * written)

	a.logger.Info().
		Str("roulette", rouletteID).
		Str("day", day).
		Int("spins", seq.Len()).
		Int("rows", written).
		Msg("precomputed daily streaks")

	return written, errors.Join(errs...)
}

// Strategies returns the registered strategy configurations sorted by id.
func (a *Analyzer) Strategies() []domain.StrategyConfig {
	list := a.registry.List()
	out := make([]domain.StrategyConfig, 0, len(list))
	for _, s := range list {
		if cfg, ok := a.registry.Config(s.ID()); ok {
			out = append(out, cfg)
			continue
		}
		out = append(out, domain.StrategyConfig{ID: s.ID(), Name: s.Name()})
	}
	return out
}

// Ingest stores a batch of spins for one roulette.
func (a *Analyzer) Ingest(ctx context.Context, rouletteID string, spins []*domain.Spin) (err error) {
	start := time.Now()
	defer func() { a.record("ingest", start, err) }()

	if rouletteID == "" {
		return domain.NewValidationError("roulette_id", "empty", ErrMissingRoulette)
	}
	for i, s := range spins {
		if s == nil || s.SpinID == "" {
			return domain.NewValidationError("spins", fmt.Sprintf("spin %d has no spin_id", i), storage.ErrInvalidInput)
		}
		if !domain.ValidOutcome(s.Number) {
			return domain.NewValidationError("spins", fmt.Sprintf("spin %d number %d outside %d..%d", i, s.Number, domain.MinOutcome, domain.MaxOutcome), storage.ErrInvalidInput)
		}
		s.RouletteID = rouletteID
	}

	if err := a.spins.InsertBulk(ctx, spins); err != nil {
		if a.metrics != nil {
			a.metrics.IngestRejected.WithLabelValues(rejectReason(err)).Inc()
		}
		return fmt.Errorf("insert spins: %w", err)
	}
	if a.metrics != nil {
		a.metrics.RecordIngest(rouletteID, len(spins), a.now().Unix())
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return "duplicate"
	case errors.Is(err, storage.ErrInvalidInput):
		return "invalid"
	default:
		return "storage"
	}
}

func (a *Analyzer) cacheError(op string, key domain.DailyStreakKey, err error) {
	a.logger.Warn().Err(err).Str("op", op).Str("key", key.String()).Msg("daily streak cache error")
	if a.metrics != nil {
		a.metrics.RecordCacheError(op)
	}
}

func (a *Analyzer) recordCache(result string) {
	if a.metrics != nil {
		a.metrics.RecordCacheLookup(result)
	}
}

func (a *Analyzer) countClassified(n int) {
	if a.metrics != nil && n > 0 {
		a.metrics.ClassifiedSpins.Add(float64(n))
	}
}

func (a *Analyzer) record(op string, start time.Time, err error) {
	if a.metrics != nil {
		a.metrics.RecordAnalysis(op, time.Since(start).Seconds(), err)
	}
}
