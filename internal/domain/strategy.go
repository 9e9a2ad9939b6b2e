package domain

// StrategyConfig represents a trigger-set specification as authored in configuration.
type StrategyConfig struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name,omitempty"`
	StrategyType string `yaml:"type" json:"type"` // "FIXED" | "LAST_N" | "NEIGHBORS" | "REPEAT_LAST"

	// FIXED parameters
	Numbers []int  `yaml:"numbers" json:"numbers,omitempty"`
	Preset  string `yaml:"preset" json:"preset,omitempty"`

	// LAST_N parameters
	Lookback *int `yaml:"lookback" json:"lookback,omitempty"`

	// NEIGHBORS parameters
	Radius *int `yaml:"radius" json:"radius,omitempty"`
}

// Strategy type constants
const (
	StrategyTypeFixed      = "FIXED"
	StrategyTypeLastN      = "LAST_N"
	StrategyTypeNeighbors  = "NEIGHBORS"
	StrategyTypeRepeatLast = "REPEAT_LAST"
)

// EntryPattern names which previous resolution most often precedes a GREEN.
type EntryPattern string

// Entry pattern values.
const (
	EntryPostGreen EntryPattern = "post-green"
	EntryPostRed   EntryPattern = "post-red"
	EntryNeutral   EntryPattern = "neutral"
)

// IntervalOverflowBucket collects GREEN-to-GREEN gaps larger than IntervalMaxBucket.
const (
	IntervalMaxBucket      = 10
	IntervalOverflowBucket = ">10"
)

// NumberCount pairs an outcome value with an occurrence count.
type NumberCount struct {
	Number int `json:"number"`
	Count  int `json:"count"`
}

// StrategyStats represents aggregate metrics for one strategy over one sequence.
type StrategyStats struct {
	StrategyID string `json:"strategy_id"`
	Attempts   int    `json:"attempts"`

	// Counts
	TotalSpins       int     `json:"total_spins"`
	TotalActivations int     `json:"total_activations"`
	TotalGreen       int     `json:"total_green"`
	TotalRed         int     `json:"total_red"`
	TotalPending     int     `json:"total_pending"`
	HitRate          float64 `json:"hit_rate"` // green / (green + red)

	// Runs of consecutive activation results
	MaxGreenSequence int `json:"max_green_sequence"`
	MaxRedSequence   int `json:"max_red_sequence"`

	// AttemptHits counts GREEN resolutions by attempt offset, keys 1..attempts.
	AttemptHits map[int]int `json:"attempt_hits"`

	// Most frequent activating number; MostActivatingCount is 0 when there are no activations.
	MostActivatingNumber int `json:"most_activating_number"`
	MostActivatingCount  int `json:"most_activating_count"`

	// Trigger numbers partitioned by presence in the raw sequence
	HotNumbers  []NumberCount `json:"hot_numbers"`
	ColdNumbers []int         `json:"cold_numbers"`

	// Gaps (raw outcomes) between consecutive GREEN resolutions, keys "0".."10" and ">10".
	IntervalHistogram map[string]int `json:"interval_histogram"`
	IntervalMean      float64        `json:"interval_mean"`
	IntervalStddev    float64        `json:"interval_stddev"`

	GreenAfterGreen  int          `json:"green_after_green"`
	GreenAfterRed    int          `json:"green_after_red"`
	BestEntryPattern EntryPattern `json:"best_entry_pattern"`
}

// StrategyStatsSnapshot is a persisted StrategyStats computation.
// Corresponds to strategy_stats table.
type StrategyStatsSnapshot struct {
	RunID       string // unique per computation
	RouletteID  string
	StrategyID  string
	Day         string // "YYYY-MM-DD" or "live"
	Attempts    int
	Policy      string
	Fingerprint string // sequence fingerprint the stats were computed from
	ComputedAt  int64  // ms
	Stats       StrategyStats
}
