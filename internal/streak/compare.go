package streak

import (
	"fmt"

	"roulette-lab/internal/classifier"
	"roulette-lab/internal/domain"
	"roulette-lab/internal/sequence"
	"roulette-lab/internal/strategy"
)

// Comparison relates the open streak to the window's records.
type Comparison struct {
	CurrentRed    int  `json:"current_red"`
	MaxRed        int  `json:"max_red"`
	CurrentGreen  int  `json:"current_green"`
	MaxGreen      int  `json:"max_green"`
	RedAtRecord   bool `json:"red_at_record"`   // open RED run equals the window maximum
	GreenAtRecord bool `json:"green_at_record"` // open GREEN run reaches the window maximum
}

// Compare relates a current streak to a max streak.
//
// Both must come from the same sequence (matching fingerprints) and the same attempts,
// and m must be computed window-consuming with PendingAsRed. Under those conditions
// MaxRed >= CurrentRed always holds. Mismatches are returned as errors, never corrected.
// CurrentGreen is not bounded by MaxGreen.
func Compare(current CurrentStreak, m MaxStreak) (Comparison, error) {
	if current.Fingerprint != m.Fingerprint {
		return Comparison{}, fmt.Errorf("compare %s with %s: %w", current.Window, m.Window, ErrCrossWindowComparison)
	}
	if current.Attempts != m.Attempts {
		return Comparison{}, fmt.Errorf("compare attempts %d with %d: %w", current.Attempts, m.Attempts, ErrAttemptsMismatch)
	}
	if m.Traversal != classifier.PolicyConsuming {
		return Comparison{}, fmt.Errorf("compare with %s max: %w", m.Traversal, ErrTraversalMismatch)
	}
	if m.Pending != PendingAsRed {
		return Comparison{}, fmt.Errorf("compare with %s max: %w", m.Pending, ErrLivePolicyComparison)
	}

	return Comparison{
		CurrentRed:    current.Red,
		MaxRed:        m.MaxRed,
		CurrentGreen:  current.Green,
		MaxGreen:      m.MaxGreen,
		RedAtRecord:   current.Red > 0 && current.Red == m.MaxRed,
		GreenAtRecord: current.Green > 0 && current.Green >= m.MaxGreen,
	}, nil
}

// Snapshot holds both streak shapes computed from one sequence instance.
type Snapshot struct {
	Current    CurrentStreak
	Max        MaxStreak
	Comparison Comparison
}

// Evaluate computes current and max streaks from the same sequence and compares them.
// Direction of seq does not matter; both views are derived from it.
func Evaluate(seq *sequence.Sequence, strat strategy.Strategy, attempts int) (Snapshot, error) {
	if seq == nil {
		return Snapshot{}, domain.NewValidationError("sequence", "nil", classifier.ErrNilSequence)
	}

	cur, err := Current(seq.Reversed(), strat, attempts)
	if err != nil {
		return Snapshot{}, err
	}
	mx, err := Max(seq.Chronological(), strat, attempts, PendingAsRed)
	if err != nil {
		return Snapshot{}, err
	}
	cmp, err := Compare(cur, mx)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Current: cur, Max: mx, Comparison: cmp}, nil
}
