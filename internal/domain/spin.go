package domain

import (
	"fmt"
	"time"
)

// Outcome bounds. 37 is the secondary zero of double-zero tables and is
// treated as an ordinary trigger value by the engine.
const (
	MinOutcome = 0
	MaxOutcome = 37
)

// Lookahead window bounds ("attempts").
const (
	MinAttempts = 1
	MaxAttempts = 6

	// CachedAttempts is the highest attempts value stored in daily streak rows.
	CachedAttempts = 3
)

// Spin is a single stored roulette result.
// Corresponds to the spins table.
type Spin struct {
	RouletteID  string // table identifier
	SpinID      string // external identifier, unique per roulette
	Number      int    // 0..37
	TimestampMs int64  // opaque to the engine; only used for ordering
	CreatedAt   int64  // insertion time (ms), set by the store
}

// ValidOutcome reports whether n is an acceptable outcome value.
func ValidOutcome(n int) bool {
	return n >= MinOutcome && n <= MaxOutcome
}

// ValidAttempts reports whether k is an acceptable lookahead size.
func ValidAttempts(k int) bool {
	return k >= MinAttempts && k <= MaxAttempts
}

// DayLayout is the format of day identifiers ("YYYY-MM-DD", UTC).
const DayLayout = "2006-01-02"

// DayOf returns the UTC day of a millisecond timestamp.
func DayOf(timestampMs int64) string {
	return time.UnixMilli(timestampMs).UTC().Format(DayLayout)
}

// DayBounds returns [start, end) in milliseconds for a UTC day.
func DayBounds(day string) (startMs, endMs int64, err error) {
	t, err := time.ParseInLocation(DayLayout, day, time.UTC)
	if err != nil {
		return 0, 0, NewValidationError("date", fmt.Sprintf("%q is not YYYY-MM-DD", day), err)
	}
	return t.UnixMilli(), t.AddDate(0, 0, 1).UnixMilli(), nil
}

// ValidDay reports whether day parses as YYYY-MM-DD.
func ValidDay(day string) bool {
	_, err := time.ParseInLocation(DayLayout, day, time.UTC)
	return err == nil
}
