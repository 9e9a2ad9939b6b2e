package domain

import "fmt"

// DayLive is the window date used for the still-growing live window.
const DayLive = "live"

// DailyStreakKey identifies a cached daily maximum.
type DailyStreakKey struct {
	RouletteID string
	StrategyID string
	Day        string // "YYYY-MM-DD"
}

// String returns a stable composite key.
func (k DailyStreakKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.RouletteID, k.StrategyID, k.Day)
}

// DailyStreakRow memoizes per-day streak maxima for attempts 1..CachedAttempts.
// Corresponds to daily_streak_max table. Rows are replaced as a whole, never patched.
type DailyStreakRow struct {
	RouletteID string
	StrategyID string
	Day        string

	MaxRed   [CachedAttempts]int // index k-1
	MaxGreen [CachedAttempts]int // index k-1

	TotalSpins int
	UpdatedAt  int64 // ms, set by the store
}

// Key returns the row's composite key.
func (r *DailyStreakRow) Key() DailyStreakKey {
	return DailyStreakKey{RouletteID: r.RouletteID, StrategyID: r.StrategyID, Day: r.Day}
}

// DailyStreakMax is the cached answer for a single attempts value.
type DailyStreakMax struct {
	MaxRed     int
	MaxGreen   int
	TotalSpins int
}

// ForAttempts returns the maxima stored for k. ok is false when k is not cached.
func (r *DailyStreakRow) ForAttempts(k int) (DailyStreakMax, bool) {
	if k < MinAttempts || k > CachedAttempts {
		return DailyStreakMax{}, false
	}
	return DailyStreakMax{
		MaxRed:     r.MaxRed[k-1],
		MaxGreen:   r.MaxGreen[k-1],
		TotalSpins: r.TotalSpins,
	}, true
}
