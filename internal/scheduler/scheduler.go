// Package scheduler drives the nightly precompute on a cron timetable.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Task is periodic work. The context passed to Run is cancelled by Stop.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler fires registered tasks on UTC cron specs. A task whose previous
// run is still in progress skips its turn.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New returns a stopped Scheduler.
func New(log zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With().Str("component", "scheduler").Logger(),
		entries: make(map[string]cron.EntryID),
	}
}

// Schedule registers t under spec ("10 0 * * *", "@every 1h"). Task names are unique.
func (s *Scheduler) Schedule(spec string, t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := t.Name()
	if _, dup := s.entries[name]; dup {
		return fmt.Errorf("task %q already scheduled", name)
	}

	id, err := s.cron.AddFunc(spec, func() {
		if err := s.execute(s.ctx, t); err != nil {
			s.log.Error().Err(err).Str("task", name).Msg("scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s at %q: %w", name, spec, err)
	}
	s.entries[name] = id

	s.log.Info().Str("task", name).Str("spec", spec).Msg("task scheduled")
	return nil
}

// RunOnce runs t synchronously, outside its timetable.
func (s *Scheduler) RunOnce(ctx context.Context, t Task) error {
	return s.execute(ctx, t)
}

// Next reports when the named task fires next. Zero until Start.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// Start begins firing scheduled tasks.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, id := range s.entries {
		s.log.Info().Str("task", name).Time("next", s.cron.Entry(id).Next).Msg("timetable armed")
	}
}

// Stop cancels in-flight runs and blocks until they return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("timetable stopped")
}

func (s *Scheduler) execute(ctx context.Context, t Task) error {
	start := time.Now()
	err := t.Run(ctx)
	s.log.Debug().
		Str("task", t.Name()).
		Dur("took", time.Since(start)).
		Bool("ok", err == nil).
		Msg("task finished")
	return err
}
