package metrics

import (
	"errors"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"roulette-lab/internal/classifier"
	"roulette-lab/internal/domain"
	"roulette-lab/internal/sequence"
	"roulette-lab/internal/strategy"
)

// ErrResultMismatch is returned when a classification result was not computed from the given sequence.
var ErrResultMismatch = errors.New("classification result does not belong to sequence")

// Compute classifies seq and collects statistics from the same pass.
func Compute(seq *sequence.Sequence, strat strategy.Strategy, attempts int, opts ...classifier.Option) (domain.StrategyStats, error) {
	res, err := classifier.Classify(seq, strat, attempts, opts...)
	if err != nil {
		return domain.StrategyStats{}, err
	}
	return Collect(seq, strat, res)
}

// Collect computes StrategyStats from a classification result and the raw sequence it came from.
// Empty sequences and empty trigger sets yield zero statistics.
func Collect(seq *sequence.Sequence, strat strategy.Strategy, res *classifier.Result) (domain.StrategyStats, error) {
	if seq == nil || res == nil {
		return domain.StrategyStats{}, domain.NewValidationError("result", "nil", classifier.ErrNilSequence)
	}
	if res.Fingerprint != seq.Fingerprint() {
		return domain.StrategyStats{}, domain.NewValidationError("result", "fingerprint differs from sequence", ErrResultMismatch)
	}

	st := domain.StrategyStats{
		StrategyID:        strat.ID(),
		Attempts:          res.Attempts,
		TotalSpins:        seq.Len(),
		TotalActivations:  len(res.Records),
		AttemptHits:       make(map[int]int, res.Attempts),
		IntervalHistogram: emptyHistogram(),
		HotNumbers:        []domain.NumberCount{},
		ColdNumbers:       []int{},
		BestEntryPattern:  domain.EntryNeutral,
	}
	for k := 1; k <= res.Attempts; k++ {
		st.AttemptHits[k] = 0
	}

	st.TotalGreen, st.TotalRed, st.TotalPending = res.Counts()
	if resolved := st.TotalGreen + st.TotalRed; resolved > 0 {
		st.HitRate = float64(st.TotalGreen) / float64(resolved)
	}

	for _, rec := range res.Records {
		if rec.Result == domain.ResolutionGreen {
			st.AttemptHits[rec.AttemptsUsed]++
		}
	}

	st.MaxGreenSequence, st.MaxRedSequence = resultRuns(res.Records)
	st.MostActivatingNumber, st.MostActivatingCount = mostActivating(res.Records)

	if seq.Len() > 0 {
		st.HotNumbers, st.ColdNumbers = hotCold(seq, strat.Universe(seq))
	}

	gaps := greenGaps(res.Records)
	for _, g := range gaps {
		st.IntervalHistogram[intervalBucket(g)]++
	}
	st.IntervalMean, st.IntervalStddev = meanStddev(gaps)

	st.GreenAfterGreen, st.GreenAfterRed = entryCounts(res.Records)
	switch {
	case st.GreenAfterGreen > st.GreenAfterRed:
		st.BestEntryPattern = domain.EntryPostGreen
	case st.GreenAfterRed > st.GreenAfterGreen:
		st.BestEntryPattern = domain.EntryPostRed
	}

	return st, nil
}

// resultRuns returns the longest runs of consecutive GREEN and RED records.
// A PENDING record breaks both runs.
func resultRuns(records []domain.ActivationRecord) (maxGreen, maxRed int) {
	green, red := 0, 0
	for _, rec := range records {
		switch rec.Result {
		case domain.ResolutionGreen:
			green++
			red = 0
		case domain.ResolutionRed:
			red++
			green = 0
		default:
			green, red = 0, 0
		}
		if green > maxGreen {
			maxGreen = green
		}
		if red > maxRed {
			maxRed = red
		}
	}
	return maxGreen, maxRed
}

// mostActivating returns the most frequent activating number. Ties go to the first seen.
func mostActivating(records []domain.ActivationRecord) (number, count int) {
	counts := make(map[int]int)
	var order []int
	for _, rec := range records {
		if _, ok := counts[rec.ActivatingNumber]; !ok {
			order = append(order, rec.ActivatingNumber)
		}
		counts[rec.ActivatingNumber]++
	}
	for _, n := range order {
		if counts[n] > count {
			number, count = n, counts[n]
		}
	}
	return number, count
}

// hotCold partitions the trigger universe by presence in the raw sequence.
// Hot: count DESC, number ASC. Cold: number ASC.
func hotCold(seq *sequence.Sequence, universe strategy.TriggerSet) ([]domain.NumberCount, []int) {
	var freq [domain.MaxOutcome + 1]int
	for i := 0; i < seq.Len(); i++ {
		freq[seq.At(i)]++
	}

	hot := []domain.NumberCount{}
	cold := []int{}
	for _, n := range universe.Numbers() {
		if freq[n] > 0 {
			hot = append(hot, domain.NumberCount{Number: n, Count: freq[n]})
		} else {
			cold = append(cold, n)
		}
	}

	sort.SliceStable(hot, func(i, j int) bool {
		if hot[i].Count != hot[j].Count {
			return hot[i].Count > hot[j].Count
		}
		return hot[i].Number < hot[j].Number
	})
	return hot, cold
}

// greenGaps returns the raw-outcome gaps between consecutive GREEN resolutions.
func greenGaps(records []domain.ActivationRecord) []float64 {
	var gaps []float64
	last := -1
	for _, rec := range records {
		if rec.Result != domain.ResolutionGreen {
			continue
		}
		if last >= 0 {
			gaps = append(gaps, float64(rec.ResolvedAt-last-1))
		}
		last = rec.ResolvedAt
	}
	return gaps
}

func emptyHistogram() map[string]int {
	h := make(map[string]int, domain.IntervalMaxBucket+2)
	for i := 0; i <= domain.IntervalMaxBucket; i++ {
		h[strconv.Itoa(i)] = 0
	}
	h[domain.IntervalOverflowBucket] = 0
	return h
}

func intervalBucket(gap float64) string {
	if gap > domain.IntervalMaxBucket {
		return domain.IntervalOverflowBucket
	}
	return strconv.Itoa(int(gap))
}

// meanStddev returns the sample mean and standard deviation; stddev is 0 for fewer than 2 values.
func meanStddev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean = stat.Mean(values, nil)
	if len(values) > 1 {
		stddev = stat.StdDev(values, nil)
	}
	return mean, stddev
}

// entryCounts counts GREEN records whose previous resolved record was GREEN or RED.
// PENDING records are skipped.
func entryCounts(records []domain.ActivationRecord) (afterGreen, afterRed int) {
	var prev domain.Resolution
	for _, rec := range records {
		if !rec.Resolved() {
			continue
		}
		if rec.Result == domain.ResolutionGreen {
			switch prev {
			case domain.ResolutionGreen:
				afterGreen++
			case domain.ResolutionRed:
				afterRed++
			}
		}
		prev = rec.Result
	}
	return afterGreen, afterRed
}
