package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"roulette-lab/internal/config"
	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage/memory"
)

func TestCreateStores_MemoryBackend(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory}}

	st, cleanup, err := createStores(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("createStores failed: %v", err)
	}
	defer cleanup()

	if st.spins == nil || st.cache == nil || st.locker == nil || st.progress == nil {
		t.Fatalf("missing store: %+v", st)
	}
	if _, ok := st.stats.(*memory.StatsStore); !ok {
		t.Fatalf("stats store = %T, want *memory.StatsStore", st.stats)
	}

	snap := &domain.StrategyStatsSnapshot{
		RunID:      "run-1",
		RouletteID: "r1",
		StrategyID: "red",
		Day:        "2024-03-10",
		Attempts:   3,
		Policy:     "consuming",
	}
	ctx := context.Background()
	if err := st.stats.Insert(ctx, snap); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	got, err := st.stats.GetLatest(ctx, "r1", "red", "2024-03-10", 3, "consuming")
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if got.RunID != "run-1" {
		t.Errorf("RunID = %s, want run-1", got.RunID)
	}
}
