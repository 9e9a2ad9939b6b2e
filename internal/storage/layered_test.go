package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
	"roulette-lab/internal/storage/memory"
)

type failingStore struct{}

func (failingStore) Get(context.Context, domain.DailyStreakKey) (*domain.DailyStreakRow, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Upsert(context.Context, *domain.DailyStreakRow) error {
	return errors.New("connection refused")
}

func layeredRow() *domain.DailyStreakRow {
	return &domain.DailyStreakRow{
		RouletteID: "r1",
		StrategyID: "red",
		Day:        "2024-03-10",
		MaxRed:     [domain.CachedAttempts]int{4, 3, 1},
		MaxGreen:   [domain.CachedAttempts]int{2, 5, 8},
		TotalSpins: 300,
	}
}

func TestLayered_GetFillsFront(t *testing.T) {
	ctx := context.Background()
	front := memory.NewDailyStreakStore()
	back := memory.NewDailyStreakStore()

	row := layeredRow()
	if err := back.Upsert(ctx, row); err != nil {
		t.Fatalf("seed back: %v", err)
	}

	store := storage.NewLayeredDailyStreakStore(front, back, zerolog.Nop())
	got, err := store.Get(ctx, row.Key())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.MaxRed != row.MaxRed {
		t.Errorf("MaxRed = %v, want %v", got.MaxRed, row.MaxRed)
	}

	if _, err := front.Get(ctx, row.Key()); err != nil {
		t.Errorf("front not filled: %v", err)
	}
}

func TestLayered_NotFound(t *testing.T) {
	store := storage.NewLayeredDailyStreakStore(memory.NewDailyStreakStore(), memory.NewDailyStreakStore(), zerolog.Nop())

	_, err := store.Get(context.Background(), layeredRow().Key())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLayered_FrontFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	back := memory.NewDailyStreakStore()
	store := storage.NewLayeredDailyStreakStore(failingStore{}, back, zerolog.Nop())

	row := layeredRow()
	if err := store.Upsert(ctx, row); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := store.Get(ctx, row.Key()); err != nil {
		t.Errorf("Get failed: %v", err)
	}
}

func TestLayered_BackFailureFails(t *testing.T) {
	store := storage.NewLayeredDailyStreakStore(memory.NewDailyStreakStore(), failingStore{}, zerolog.Nop())

	if err := store.Upsert(context.Background(), layeredRow()); err == nil {
		t.Error("expected error when back store fails")
	}
}

func TestLayered_NilFront(t *testing.T) {
	ctx := context.Background()
	store := storage.NewLayeredDailyStreakStore(nil, memory.NewDailyStreakStore(), zerolog.Nop())

	row := layeredRow()
	if err := store.Upsert(ctx, row); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := store.Get(ctx, row.Key()); err != nil {
		t.Errorf("Get failed: %v", err)
	}
}
