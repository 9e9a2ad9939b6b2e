package reporting

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"roulette-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Streak Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Roulette: %s | Date: %s | Spins: %d | Attempts: %d | Policy: %s\n\n",
		orDash(r.RouletteID), orDash(r.Date), r.TotalSpins, r.Attempts, r.Policy))
	sb.WriteString(fmt.Sprintf("Fingerprint: `%s`\n\n", r.Fingerprint))

	if len(r.Strategies) == 0 {
		sb.WriteString("No strategies analysed.\n")
		return sb.String()
	}

	// Streaks
	sb.WriteString("## Streaks\n\n")
	sb.WriteString("| Strategy | Current Red | Max Red | Current Green | Max Green | Red At Record |\n")
	sb.WriteString("|----------|-------------|---------|---------------|-----------|---------------|\n")
	for _, s := range r.Strategies {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %t |\n",
			s.StrategyID, s.CurrentRed, s.MaxRed, s.CurrentGreen, s.MaxGreen, s.Comparison.RedAtRecord))
	}
	sb.WriteString("\n")

	// Statistics
	sb.WriteString("## Statistics\n\n")
	sb.WriteString("| Strategy | Activations | Green | Red | Pending | HitRate | Green Run | Red Run | Most Activating | Entry |\n")
	sb.WriteString("|----------|-------------|-------|-----|---------|---------|-----------|---------|-----------------|-------|\n")
	for _, s := range r.Strategies {
		st := s.Stats
		most := "-"
		if st.MostActivatingCount > 0 {
			most = fmt.Sprintf("%d (x%d)", st.MostActivatingNumber, st.MostActivatingCount)
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %.4f | %d | %d | %s | %s |\n",
			s.StrategyID, st.TotalActivations, st.TotalGreen, st.TotalRed, st.TotalPending,
			st.HitRate, st.MaxGreenSequence, st.MaxRedSequence, most, st.BestEntryPattern))
	}
	sb.WriteString("\n")

	// Per-strategy detail
	for _, s := range r.Strategies {
		st := s.Stats
		title := s.StrategyID
		if s.Name != "" {
			title = fmt.Sprintf("%s (%s)", s.StrategyID, s.Name)
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", title))

		sb.WriteString("Attempt hits: ")
		sb.WriteString(formatAttemptHits(st.AttemptHits))
		sb.WriteString("\n\n")

		sb.WriteString(fmt.Sprintf("Hot numbers: %s\n\n", formatHot(st.HotNumbers)))
		sb.WriteString(fmt.Sprintf("Cold numbers: %s\n\n", formatInts(st.ColdNumbers)))

		sb.WriteString(fmt.Sprintf("Intervals (mean %.2f, stddev %.2f): %s\n\n",
			st.IntervalMean, st.IntervalStddev, formatHistogram(st.IntervalHistogram)))
	}

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatAttemptHits(hits map[int]int) string {
	keys := make([]int, 0, len(hits))
	for k := range hits {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%d:%d", k, hits[k])
	}
	return strings.Join(parts, " ")
}

func formatHot(hot []domain.NumberCount) string {
	if len(hot) == 0 {
		return "-"
	}
	parts := make([]string, len(hot))
	for i, h := range hot {
		parts[i] = fmt.Sprintf("%d(%d)", h.Number, h.Count)
	}
	return strings.Join(parts, " ")
}

func formatInts(values []int) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

// formatHistogram lists non-zero buckets in bucket order.
func formatHistogram(h map[string]int) string {
	var parts []string
	for i := 0; i <= domain.IntervalMaxBucket; i++ {
		if n := h[strconv.Itoa(i)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d:%d", i, n))
		}
	}
	if n := h[domain.IntervalOverflowBucket]; n > 0 {
		parts = append(parts, fmt.Sprintf("%s:%d", domain.IntervalOverflowBucket, n))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
