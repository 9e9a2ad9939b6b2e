package scheduler

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"roulette-lab/internal/storage/memory"
)

type call struct {
	roulette string
	day      string
}

type fakePrecomputer struct {
	mu        sync.Mutex
	roulettes []string
	failOn    string
	calls     []call
}

func (f *fakePrecomputer) Roulettes(context.Context) ([]string, error) {
	return f.roulettes, nil
}

func (f *fakePrecomputer) PrecomputeRoulette(_ context.Context, rouletteID, day string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{rouletteID, day})
	if day == f.failOn {
		return 0, errors.New("boom")
	}
	return 2, nil
}

func newJob(p Precomputer, progress *memory.PrecomputeProgressStore, catchUp int) *PrecomputeJob {
	job := NewPrecomputeJob(p, progress, catchUp, nil, zerolog.Nop())
	job.now = func() time.Time { return time.Date(2024, 3, 11, 0, 10, 0, 0, time.UTC) }
	return job
}

func TestPrecomputeJob_CatchUpFromScratch(t *testing.T) {
	p := &fakePrecomputer{roulettes: []string{"r1"}}
	progress := memory.NewPrecomputeProgressStore()
	ctx := context.Background()

	rows, err := newJob(p, progress, 3).RunContext(ctx)
	if err != nil {
		t.Fatalf("RunContext failed: %v", err)
	}

	want := []call{{"r1", "2024-03-08"}, {"r1", "2024-03-09"}, {"r1", "2024-03-10"}}
	if !reflect.DeepEqual(p.calls, want) {
		t.Errorf("calls = %v, want %v", p.calls, want)
	}
	if rows != 6 {
		t.Errorf("rows = %d, want 6", rows)
	}

	last, err := progress.GetLastPrecomputed(ctx, "r1")
	if err != nil || last != "2024-03-10" {
		t.Errorf("progress = %q, %v", last, err)
	}
}

func TestPrecomputeJob_NothingPending(t *testing.T) {
	p := &fakePrecomputer{roulettes: []string{"r1"}}
	progress := memory.NewPrecomputeProgressStore()
	ctx := context.Background()
	if err := progress.SetLastPrecomputed(ctx, "r1", "2024-03-10"); err != nil {
		t.Fatal(err)
	}

	rows, err := newJob(p, progress, 7).RunContext(ctx)
	if err != nil {
		t.Fatalf("RunContext failed: %v", err)
	}
	if rows != 0 || len(p.calls) != 0 {
		t.Errorf("expected no work, got rows=%d calls=%v", rows, p.calls)
	}
}

func TestPrecomputeJob_ResumesAfterProgress(t *testing.T) {
	p := &fakePrecomputer{roulettes: []string{"r1"}}
	progress := memory.NewPrecomputeProgressStore()
	ctx := context.Background()
	if err := progress.SetLastPrecomputed(ctx, "r1", "2024-03-08"); err != nil {
		t.Fatal(err)
	}

	if _, err := newJob(p, progress, 7).RunContext(ctx); err != nil {
		t.Fatalf("RunContext failed: %v", err)
	}

	want := []call{{"r1", "2024-03-09"}, {"r1", "2024-03-10"}}
	if !reflect.DeepEqual(p.calls, want) {
		t.Errorf("calls = %v, want %v", p.calls, want)
	}
}

func TestPrecomputeJob_OldProgressIsCapped(t *testing.T) {
	p := &fakePrecomputer{roulettes: []string{"r1"}}
	progress := memory.NewPrecomputeProgressStore()
	ctx := context.Background()
	if err := progress.SetLastPrecomputed(ctx, "r1", "2023-12-31"); err != nil {
		t.Fatal(err)
	}

	if _, err := newJob(p, progress, 2).RunContext(ctx); err != nil {
		t.Fatalf("RunContext failed: %v", err)
	}

	want := []call{{"r1", "2024-03-09"}, {"r1", "2024-03-10"}}
	if !reflect.DeepEqual(p.calls, want) {
		t.Errorf("calls = %v, want %v", p.calls, want)
	}
}

func TestPrecomputeJob_FailureStopsRoulette(t *testing.T) {
	p := &fakePrecomputer{roulettes: []string{"r1", "r2"}, failOn: "2024-03-09"}
	progress := memory.NewPrecomputeProgressStore()
	ctx := context.Background()

	_, err := newJob(p, progress, 3).RunContext(ctx)
	if err == nil {
		t.Fatal("expected error")
	}

	// each roulette stops at the failing day
	want := []call{
		{"r1", "2024-03-08"}, {"r1", "2024-03-09"},
		{"r2", "2024-03-08"}, {"r2", "2024-03-09"},
	}
	if !reflect.DeepEqual(p.calls, want) {
		t.Errorf("calls = %v, want %v", p.calls, want)
	}

	last, _ := progress.GetLastPrecomputed(ctx, "r1")
	if last != "2024-03-08" {
		t.Errorf("progress = %q, want 2024-03-08", last)
	}
}

func TestPrecomputeJob_Scheduled(t *testing.T) {
	s := New(zerolog.Nop())
	p := &fakePrecomputer{roulettes: []string{"r1"}}
	job := newJob(p, memory.NewPrecomputeProgressStore(), 1)

	if err := s.Schedule("10 0 * * *", job); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	s.Start()
	if next, _ := s.Next("precompute"); next.Hour() != 0 || next.Minute() != 10 {
		t.Errorf("next fire = %v, want 00:10 UTC", next)
	}
	s.Stop()

	if err := s.RunOnce(context.Background(), job); err != nil {
		t.Errorf("RunOnce failed: %v", err)
	}
	if len(p.calls) != 1 {
		t.Errorf("expected 1 precompute call, got %d", len(p.calls))
	}
}
