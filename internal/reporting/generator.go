package reporting

import (
	"fmt"
	"sort"
	"time"

	"roulette-lab/internal/classifier"
	"roulette-lab/internal/metrics"
	"roulette-lab/internal/sequence"
	"roulette-lab/internal/strategy"
	"roulette-lab/internal/streak"
)

// Build analyses seq once per strategy. Streaks are always window-consuming;
// policy only selects the traversal used for the statistics.
func Build(seq *sequence.Sequence, strategies []strategy.Strategy, attempts int, policy classifier.Policy, now time.Time) (*Report, error) {
	w := seq.Window()
	r := &Report{
		GeneratedAt: now.UTC(),
		RouletteID:  w.RouletteID,
		Date:        w.Date,
		TotalSpins:  seq.Len(),
		Attempts:    attempts,
		Policy:      policy.String(),
		Fingerprint: seq.Fingerprint(),
		Strategies:  make([]StrategyRow, 0, len(strategies)),
	}

	chrono := seq.Chronological()
	for _, strat := range strategies {
		snap, err := streak.Evaluate(seq, strat, attempts)
		if err != nil {
			return nil, fmt.Errorf("streaks for %s: %w", strat.ID(), err)
		}
		st, err := metrics.Compute(chrono, strat, attempts, classifier.WithPolicy(policy))
		if err != nil {
			return nil, fmt.Errorf("stats for %s: %w", strat.ID(), err)
		}

		r.Strategies = append(r.Strategies, StrategyRow{
			StrategyID:   strat.ID(),
			Name:         strat.Name(),
			CurrentRed:   snap.Current.Red,
			CurrentGreen: snap.Current.Green,
			MaxRed:       snap.Max.MaxRed,
			MaxGreen:     snap.Max.MaxGreen,
			Comparison:   snap.Comparison,
			Stats:        st,
		})
	}

	sort.Slice(r.Strategies, func(i, j int) bool {
		return r.Strategies[i].StrategyID < r.Strategies[j].StrategyID
	})
	return r, nil
}
