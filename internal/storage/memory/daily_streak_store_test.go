package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
)

func makeRow(red, green int) *domain.DailyStreakRow {
	return &domain.DailyStreakRow{
		RouletteID: "r1",
		StrategyID: "red",
		Day:        "2024-01-01",
		MaxRed:     [domain.CachedAttempts]int{red, red - 1, red - 2},
		MaxGreen:   [domain.CachedAttempts]int{green, green + 1, green + 2},
		TotalSpins: 500,
	}
}

func TestDailyStreakStore_UpsertAndGet(t *testing.T) {
	store := NewDailyStreakStore()
	ctx := context.Background()

	row := makeRow(7, 3)
	if err := store.Upsert(ctx, row); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.Get(ctx, row.Key())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.MaxRed != row.MaxRed || got.MaxGreen != row.MaxGreen || got.TotalSpins != 500 {
		t.Errorf("Row mismatch: got %+v", got)
	}
	if got.UpdatedAt == 0 {
		t.Error("Expected UpdatedAt to be set")
	}
}

func TestDailyStreakStore_UpsertIdempotent(t *testing.T) {
	store := NewDailyStreakStore()
	ctx := context.Background()

	tick := int64(1000)
	store.now = func() time.Time {
		tick++
		return time.UnixMilli(tick)
	}

	if err := store.Upsert(ctx, makeRow(7, 3)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	first, _ := store.Get(ctx, makeRow(7, 3).Key())

	if err := store.Upsert(ctx, makeRow(7, 3)); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	second, _ := store.Get(ctx, makeRow(7, 3).Key())

	if *first != *second {
		t.Errorf("Identical upsert changed the row: %+v -> %+v", first, second)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 row, got %d", store.Len())
	}
}

func TestDailyStreakStore_LastWriteWins(t *testing.T) {
	store := NewDailyStreakStore()
	ctx := context.Background()

	_ = store.Upsert(ctx, makeRow(7, 3))
	_ = store.Upsert(ctx, makeRow(9, 4))

	got, err := store.Get(ctx, makeRow(0, 0).Key())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.MaxRed[0] != 9 || got.MaxGreen[0] != 4 {
		t.Errorf("Expected last write to win, got %+v", got)
	}
}

func TestDailyStreakStore_NotFoundAndInvalid(t *testing.T) {
	store := NewDailyStreakStore()
	ctx := context.Background()

	_, err := store.Get(ctx, domain.DailyStreakKey{RouletteID: "r1", StrategyID: "x", Day: "2024-01-01"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	bad := makeRow(1, 1)
	bad.Day = "live"
	if err := store.Upsert(ctx, bad); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for live day, got %v", err)
	}
}
