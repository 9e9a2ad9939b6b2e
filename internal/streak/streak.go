// Package streak computes current (most-recent-first) and maximum (chronological)
// activation streaks and guards comparisons between them.
package streak

import (
	"errors"
	"fmt"
	"strings"

	"roulette-lab/internal/classifier"
	"roulette-lab/internal/domain"
	"roulette-lab/internal/sequence"
	"roulette-lab/internal/strategy"
)

// Streak errors
var (
	ErrCrossWindowComparison = errors.New("current and max streaks come from different sequences")
	ErrAttemptsMismatch      = errors.New("current and max streaks use different attempts")
	ErrTraversalMismatch     = errors.New("max streak was not computed with the window-consuming policy")
	ErrLivePolicyComparison  = errors.New("max streak excludes pending activations; comparison needs PendingAsRed")
	ErrUnknownPendingPolicy  = errors.New("unknown pending policy")
)

// PendingPolicy decides how an unresolved trailing activation counts toward max streaks.
type PendingPolicy uint8

const (
	// PendingAsRed counts PENDING as RED. Use for closed historical windows.
	PendingAsRed PendingPolicy = iota
	// PendingExcluded skips PENDING. Use for the still-growing live window.
	PendingExcluded
)

// String returns the policy name.
func (p PendingPolicy) String() string {
	switch p {
	case PendingAsRed:
		return "pending-as-red"
	case PendingExcluded:
		return "pending-excluded"
	default:
		return "unknown"
	}
}

// ParsePendingPolicy parses a pending policy name. The empty string selects PendingAsRed.
func ParsePendingPolicy(s string) (PendingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending-as-red", "historical", "closed":
		return PendingAsRed, nil
	case "pending-excluded", "live":
		return PendingExcluded, nil
	default:
		return PendingAsRed, domain.NewValidationError("pending_policy", fmt.Sprintf("%q", s), ErrUnknownPendingPolicy)
	}
}

// CurrentStreak is the open run counted back from the most recent outcome.
type CurrentStreak struct {
	Red         int                 // RED/PENDING resolutions before the first GREEN
	Green       int                 // GREEN resolutions before the first RED/PENDING
	Resolutions []domain.Resolution // most recent first
	Attempts    int
	Fingerprint string
	Window      sequence.Window
}

// MaxStreak is the longest run found over a whole window.
type MaxStreak struct {
	MaxRed      int
	MaxGreen    int
	TotalSpins  int
	Pending     PendingPolicy
	Traversal   classifier.Policy
	Attempts    int
	Fingerprint string
	Window      sequence.Window
}

// Current scans a most-recent-first sequence. An activation's window is the next
// attempts entries of the reverse view; resolved windows are consumed.
// A trailing unresolved window counts toward the open RED streak.
func Current(seq *sequence.Sequence, strat strategy.Strategy, attempts int) (CurrentStreak, error) {
	if seq == nil {
		return CurrentStreak{}, domain.NewValidationError("sequence", "nil", classifier.ErrNilSequence)
	}
	if seq.Direction() != sequence.DirectionReverse {
		return CurrentStreak{}, domain.NewValidationError(
			"direction",
			fmt.Sprintf("current streak requires reverse, got %s", seq.Direction()),
			classifier.ErrDirectionMismatch,
		)
	}
	if err := classifier.ValidateAttempts(attempts); err != nil {
		return CurrentStreak{}, err
	}

	n := seq.Len()
	chrono := seq.Chronological()
	// Reverse index i is chronological position n-1-i; its triggers come from the
	// chronological prefix before that position.
	hit := func(i int) bool {
		return strat.TriggersIn(chrono, n-1-i).Contains(seq.At(i))
	}

	var resolutions []domain.Resolution
	for i := 0; i < n; i++ {
		if !hit(i) {
			continue
		}

		found := false
		for j := 1; j <= attempts; j++ {
			if i+j >= n {
				break
			}
			if hit(i + j) {
				resolutions = append(resolutions, domain.ResolutionGreen)
				i += j
				found = true
				break
			}
		}
		if found {
			continue
		}

		if i+attempts < n {
			resolutions = append(resolutions, domain.ResolutionRed)
			i += attempts
		} else {
			resolutions = append(resolutions, domain.ResolutionPending)
			i = n
		}
	}

	cur := CurrentStreak{
		Resolutions: resolutions,
		Attempts:    attempts,
		Fingerprint: seq.Fingerprint(),
		Window:      seq.Window(),
	}
	for _, r := range resolutions {
		if r == domain.ResolutionGreen {
			break
		}
		cur.Red++
	}
	for _, r := range resolutions {
		if r != domain.ResolutionGreen {
			break
		}
		cur.Green++
	}
	return cur, nil
}

// Max classifies a chronological sequence and returns its longest RED and GREEN runs.
func Max(seq *sequence.Sequence, strat strategy.Strategy, attempts int, pending PendingPolicy, opts ...classifier.Option) (MaxStreak, error) {
	res, err := classifier.Classify(seq, strat, attempts, opts...)
	if err != nil {
		return MaxStreak{}, err
	}
	return MaxFromResult(res, pending), nil
}

// MaxFromResult computes max streaks from an existing classification.
func MaxFromResult(res *classifier.Result, pending PendingPolicy) MaxStreak {
	out := MaxStreak{
		TotalSpins:  len(res.Labels),
		Pending:     pending,
		Traversal:   res.Policy,
		Attempts:    res.Attempts,
		Fingerprint: res.Fingerprint,
		Window:      res.Window,
	}

	red, green := 0, 0
	for _, rec := range res.Records {
		r := rec.Result
		if r == domain.ResolutionPending {
			if pending == PendingExcluded {
				continue
			}
			r = domain.ResolutionRed
		}

		if r == domain.ResolutionRed {
			red++
			green = 0
		} else {
			green++
			red = 0
		}
		if red > out.MaxRed {
			out.MaxRed = red
		}
		if green > out.MaxGreen {
			out.MaxGreen = green
		}
	}

	return out
}
