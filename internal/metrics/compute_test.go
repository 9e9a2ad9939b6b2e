package metrics

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"roulette-lab/internal/classifier"
	"roulette-lab/internal/domain"
	"roulette-lab/internal/sequence"
	"roulette-lab/internal/strategy"
)

func chrono(t *testing.T, values ...int) *sequence.Sequence {
	t.Helper()
	seq, err := sequence.New(values, sequence.DirectionChronological, sequence.Window{RouletteID: "test", Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("sequence.New failed: %v", err)
	}
	return seq
}

func pseudoRandom(n int, seed uint32) []int {
	out := make([]int, n)
	x := seed
	for i := range out {
		x = x*1664525 + 1013904223
		out[i] = int((x >> 16) % 37)
	}
	return out
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCompute_TrailingPendingAfterRepeats(t *testing.T) {
	seq := chrono(t, 5, 5, 5, 5, 5, 15, 10)
	strat := strategy.NewFixed("five-ten", strategy.SetOf(5, 10))

	st, err := Compute(seq, strat, 1)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if st.TotalSpins != 7 || st.TotalActivations != 4 {
		t.Errorf("spins/activations = %d/%d, want 7/4", st.TotalSpins, st.TotalActivations)
	}
	if st.TotalGreen != 2 || st.TotalRed != 1 || st.TotalPending != 1 {
		t.Errorf("green/red/pending = %d/%d/%d, want 2/1/1", st.TotalGreen, st.TotalRed, st.TotalPending)
	}
	if math.Abs(st.HitRate-2.0/3.0) > 1e-9 {
		t.Errorf("HitRate = %f, want 0.667", st.HitRate)
	}
	if st.MaxGreenSequence != 2 || st.MaxRedSequence != 1 {
		t.Errorf("runs green/red = %d/%d, want 2/1", st.MaxGreenSequence, st.MaxRedSequence)
	}
	if !reflect.DeepEqual(st.AttemptHits, map[int]int{1: 2}) {
		t.Errorf("AttemptHits = %v", st.AttemptHits)
	}
	if st.MostActivatingNumber != 5 || st.MostActivatingCount != 3 {
		t.Errorf("most activating = %d x%d, want 5 x3", st.MostActivatingNumber, st.MostActivatingCount)
	}

	wantHot := []domain.NumberCount{{Number: 5, Count: 5}, {Number: 10, Count: 1}}
	if !reflect.DeepEqual(st.HotNumbers, wantHot) {
		t.Errorf("HotNumbers = %v, want %v", st.HotNumbers, wantHot)
	}
	if len(st.ColdNumbers) != 0 {
		t.Errorf("ColdNumbers = %v, want empty", st.ColdNumbers)
	}

	// GREENs resolved at 1 and 3
	if st.IntervalHistogram["1"] != 1 {
		t.Errorf("IntervalHistogram = %v", st.IntervalHistogram)
	}
	if st.IntervalMean != 1 || st.IntervalStddev != 0 {
		t.Errorf("interval mean/stddev = %f/%f, want 1/0", st.IntervalMean, st.IntervalStddev)
	}

	if st.GreenAfterGreen != 1 || st.GreenAfterRed != 0 {
		t.Errorf("after green/red = %d/%d, want 1/0", st.GreenAfterGreen, st.GreenAfterRed)
	}
	if st.BestEntryPattern != domain.EntryPostGreen {
		t.Errorf("BestEntryPattern = %s, want post-green", st.BestEntryPattern)
	}
}

func TestCompute_NoActivations(t *testing.T) {
	tests := []struct {
		name  string
		seq   []int
		strat strategy.Strategy
	}{
		{"empty sequence", nil, strategy.NewFixed("s", strategy.SetOf(1, 2))},
		{"empty trigger set", []int{1, 2, 3, 4}, strategy.NewFixed("s", strategy.EmptySet)},
		{"derived on empty sequence", nil, strategy.NewDerived("s", strategy.LastN(3))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Compute(chrono(t, tt.seq...), tt.strat, 3)
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}

			if st.TotalActivations != 0 || st.TotalGreen != 0 || st.TotalRed != 0 || st.TotalPending != 0 {
				t.Errorf("non-zero counts: %+v", st)
			}
			if st.HitRate != 0 || st.MaxGreenSequence != 0 || st.MaxRedSequence != 0 {
				t.Errorf("non-zero rates/runs: %+v", st)
			}
			if st.MostActivatingCount != 0 || st.IntervalMean != 0 || st.IntervalStddev != 0 {
				t.Errorf("non-zero activation/interval stats: %+v", st)
			}
			if len(st.HotNumbers) != 0 || len(st.ColdNumbers) != 0 {
				t.Errorf("hot/cold = %v/%v, want empty", st.HotNumbers, st.ColdNumbers)
			}
			for k, v := range st.AttemptHits {
				if v != 0 {
					t.Errorf("AttemptHits[%d] = %d, want 0", k, v)
				}
			}
			if len(st.AttemptHits) != 3 {
				t.Errorf("AttemptHits has %d keys, want 3", len(st.AttemptHits))
			}
			for k, v := range st.IntervalHistogram {
				if v != 0 {
					t.Errorf("IntervalHistogram[%s] = %d, want 0", k, v)
				}
			}
			if st.BestEntryPattern != domain.EntryNeutral {
				t.Errorf("BestEntryPattern = %s, want neutral", st.BestEntryPattern)
			}
		})
	}
}

func TestCompute_Intervals(t *testing.T) {
	values := []int{0, 0}
	values = append(values, repeat(5, 12)...)
	values = append(values, 0, 0, 5, 0, 0)
	seq := chrono(t, values...)

	st, err := Compute(seq, strategy.NewFixed("zero", strategy.SetOf(0)), 2)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// GREENs resolved at 1, 15 and 18: gaps 13 and 2
	if st.TotalGreen != 3 {
		t.Fatalf("TotalGreen = %d, want 3", st.TotalGreen)
	}
	if st.IntervalHistogram[domain.IntervalOverflowBucket] != 1 || st.IntervalHistogram["2"] != 1 {
		t.Errorf("IntervalHistogram = %v", st.IntervalHistogram)
	}
	if st.IntervalMean != 7.5 {
		t.Errorf("IntervalMean = %f, want 7.5", st.IntervalMean)
	}
	if math.Abs(st.IntervalStddev-math.Sqrt(60.5)) > 1e-9 {
		t.Errorf("IntervalStddev = %f, want %f", st.IntervalStddev, math.Sqrt(60.5))
	}
	if !reflect.DeepEqual(st.AttemptHits, map[int]int{1: 3, 2: 0}) {
		t.Errorf("AttemptHits = %v", st.AttemptHits)
	}
}

func TestCompute_RedRunsAndPostRedEntry(t *testing.T) {
	seq := chrono(t, 0, 5, 5, 0, 5, 5, 0, 0)

	st, err := Compute(seq, strategy.NewFixed("zero", strategy.SetOf(0)), 2)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if st.TotalRed != 2 || st.TotalGreen != 1 {
		t.Errorf("red/green = %d/%d, want 2/1", st.TotalRed, st.TotalGreen)
	}
	if st.MaxRedSequence != 2 || st.MaxGreenSequence != 1 {
		t.Errorf("runs red/green = %d/%d, want 2/1", st.MaxRedSequence, st.MaxGreenSequence)
	}
	if st.GreenAfterRed != 1 || st.BestEntryPattern != domain.EntryPostRed {
		t.Errorf("after red = %d, pattern = %s", st.GreenAfterRed, st.BestEntryPattern)
	}
}

func TestCompute_MostActivatingTieGoesToFirstSeen(t *testing.T) {
	seq := chrono(t, 8, 1, 3, 1)

	st, err := Compute(seq, strategy.NewFixed("s", strategy.SetOf(3, 8)), 1)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if st.MostActivatingNumber != 8 || st.MostActivatingCount != 1 {
		t.Errorf("most activating = %d x%d, want 8 x1", st.MostActivatingNumber, st.MostActivatingCount)
	}
}

func TestCompute_HotCold(t *testing.T) {
	seq := chrono(t, 1, 2, 3, 1)

	st, err := Compute(seq, strategy.NewFixed("s", strategy.SetOf(9, 3, 7, 1)), 1)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	wantHot := []domain.NumberCount{{Number: 1, Count: 2}, {Number: 3, Count: 1}}
	if !reflect.DeepEqual(st.HotNumbers, wantHot) {
		t.Errorf("HotNumbers = %v, want %v", st.HotNumbers, wantHot)
	}
	if !reflect.DeepEqual(st.ColdNumbers, []int{7, 9}) {
		t.Errorf("ColdNumbers = %v, want [7 9]", st.ColdNumbers)
	}
}

func TestCompute_HotTieBreaksAscending(t *testing.T) {
	seq := chrono(t, 9, 4, 9, 4)

	st, err := Compute(seq, strategy.NewFixed("s", strategy.SetOf(4, 9)), 1)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	wantHot := []domain.NumberCount{{Number: 4, Count: 2}, {Number: 9, Count: 2}}
	if !reflect.DeepEqual(st.HotNumbers, wantHot) {
		t.Errorf("HotNumbers = %v, want %v", st.HotNumbers, wantHot)
	}
}

func TestCompute_DerivedUniverse(t *testing.T) {
	seq := chrono(t, 4, 4, 9)

	st, err := Compute(seq, strategy.NewDerived("last1", strategy.LastN(1)), 1)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	wantHot := []domain.NumberCount{{Number: 4, Count: 2}, {Number: 9, Count: 1}}
	if !reflect.DeepEqual(st.HotNumbers, wantHot) {
		t.Errorf("HotNumbers = %v, want %v", st.HotNumbers, wantHot)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	seq := chrono(t, pseudoRandom(500, 42)...)
	strat := strategy.NewDerived("last5", strategy.LastN(5))

	first, err := Compute(seq, strat, 3)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for run := 0; run < 5; run++ {
		again, err := Compute(seq, strat, 3)
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first run", run)
		}
	}
}

func TestCompute_CountsMatchClassifier(t *testing.T) {
	seq := chrono(t, pseudoRandom(300, 7)...)
	strat := strategy.NewFixed("red", strategy.SetOf(1, 3, 5, 7, 9, 12))

	for _, policy := range []classifier.Policy{classifier.PolicyConsuming, classifier.PolicyIndependent} {
		res, err := classifier.Classify(seq, strat, 3, classifier.WithPolicy(policy))
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		st, err := Collect(seq, strat, res)
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}

		green, red, pending := res.Counts()
		if st.TotalGreen != green || st.TotalRed != red || st.TotalPending != pending {
			t.Errorf("%s: counts differ from classifier", policy)
		}

		hits := 0
		for _, v := range st.AttemptHits {
			hits += v
		}
		if hits != green {
			t.Errorf("%s: attempt hits sum %d, want %d", policy, hits, green)
		}
		if st.MaxGreenSequence > green || st.MaxRedSequence > red {
			t.Errorf("%s: run longer than total", policy)
		}
	}
}

func TestCollect_RejectsForeignResult(t *testing.T) {
	strat := strategy.NewFixed("s", strategy.SetOf(1))
	a := chrono(t, 1, 2, 1)
	b := chrono(t, 1, 2, 3)

	res, err := classifier.Classify(a, strat, 1)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	_, err = Collect(b, strat, res)
	if !errors.Is(err, ErrResultMismatch) {
		t.Errorf("expected ErrResultMismatch, got %v", err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCompute_InvalidAttempts(t *testing.T) {
	_, err := Compute(chrono(t, 1, 2), strategy.NewFixed("s", strategy.SetOf(1)), 7)
	if !errors.Is(err, classifier.ErrInvalidAttempts) {
		t.Errorf("expected ErrInvalidAttempts, got %v", err)
	}
}
