package reporting

import (
	"time"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/streak"
)

// Report describes one sequence analysed under one or more strategies.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RouletteID  string
	Date        string
	TotalSpins  int
	Attempts    int
	Policy      string
	Fingerprint string

	// One row per strategy, sorted by strategy_id
	Strategies []StrategyRow
}

// StrategyRow holds streaks and statistics for one strategy.
type StrategyRow struct {
	StrategyID string
	Name       string

	CurrentRed   int
	CurrentGreen int
	MaxRed       int // pending counted as RED
	MaxGreen     int
	Comparison   streak.Comparison

	Stats domain.StrategyStats
}
