package reporting

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"strategy_id", "attempts", "policy", "total_spins",
	"current_red", "max_red", "current_green", "max_green",
	"total_activations", "total_green", "total_red", "total_pending", "hit_rate",
	"max_green_sequence", "max_red_sequence",
	"most_activating_number", "most_activating_count",
	"interval_mean", "interval_stddev", "best_entry_pattern",
}

// RenderCSV renders one row per strategy.
func RenderCSV(r *Report) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, s := range r.Strategies {
		st := s.Stats
		record := []string{
			s.StrategyID,
			strconv.Itoa(r.Attempts),
			r.Policy,
			strconv.Itoa(r.TotalSpins),
			strconv.Itoa(s.CurrentRed),
			strconv.Itoa(s.MaxRed),
			strconv.Itoa(s.CurrentGreen),
			strconv.Itoa(s.MaxGreen),
			strconv.Itoa(st.TotalActivations),
			strconv.Itoa(st.TotalGreen),
			strconv.Itoa(st.TotalRed),
			strconv.Itoa(st.TotalPending),
			fmt.Sprintf("%.6f", st.HitRate),
			strconv.Itoa(st.MaxGreenSequence),
			strconv.Itoa(st.MaxRedSequence),
			strconv.Itoa(st.MostActivatingNumber),
			strconv.Itoa(st.MostActivatingCount),
			fmt.Sprintf("%.6f", st.IntervalMean),
			fmt.Sprintf("%.6f", st.IntervalStddev),
			string(st.BestEntryPattern),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
