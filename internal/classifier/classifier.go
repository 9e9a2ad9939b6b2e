// Package classifier labels every outcome of a sequence against a strategy using a bounded lookahead window.
package classifier

import (
	"errors"
	"fmt"
	"strings"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/sequence"
	"roulette-lab/internal/strategy"
)

// Classifier errors
var (
	ErrInvalidAttempts   = errors.New("attempts must be within 1..6")
	ErrDirectionMismatch = errors.New("sequence has the wrong direction")
	ErrNilSequence       = errors.New("sequence is nil")
	ErrUnknownPolicy     = errors.New("unknown traversal policy")
)

// Policy selects how activation windows interact.
type Policy uint8

const (
	// PolicyConsuming resumes scanning after a resolved window; outcomes inside
	// the window never open a new activation.
	PolicyConsuming Policy = iota
	// PolicyIndependent evaluates every trigger occurrence, including those
	// inside another activation's window.
	PolicyIndependent
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyConsuming:
		return "consuming"
	case PolicyIndependent:
		return "independent"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name. The empty string selects PolicyConsuming.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "consuming", "window-consuming":
		return PolicyConsuming, nil
	case "independent":
		return PolicyIndependent, nil
	default:
		return PolicyConsuming, domain.NewValidationError("policy", fmt.Sprintf("%q", s), ErrUnknownPolicy)
	}
}

// Option configures Classify.
type Option func(*options)

type options struct {
	policy Policy
}

// WithPolicy selects the traversal policy. Default is PolicyConsuming.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// Result is the output of one classification pass.
type Result struct {
	Labels      []domain.Label            // one per position, chronological
	Records     []domain.ActivationRecord // in activation order, trailing PENDING included
	Attempts    int
	Policy      Policy
	Fingerprint string
	Window      sequence.Window
}

// Counts returns the number of GREEN, RED and PENDING records.
func (r *Result) Counts() (green, red, pending int) {
	for _, rec := range r.Records {
		switch rec.Result {
		case domain.ResolutionGreen:
			green++
		case domain.ResolutionRed:
			red++
		case domain.ResolutionPending:
			pending++
		}
	}
	return green, red, pending
}

// ValidateAttempts returns a ValidationError unless k is within 1..6.
func ValidateAttempts(k int) error {
	if !domain.ValidAttempts(k) {
		return domain.NewValidationError("attempts", fmt.Sprintf("%d", k), ErrInvalidAttempts)
	}
	return nil
}

// Classify labels every position of a chronological sequence.
// Pure: the same inputs always produce the same Result.
func Classify(seq *sequence.Sequence, strat strategy.Strategy, attempts int, opts ...Option) (*Result, error) {
	if seq == nil {
		return nil, domain.NewValidationError("sequence", "nil", ErrNilSequence)
	}
	if seq.Direction() != sequence.DirectionChronological {
		return nil, domain.NewValidationError(
			"direction",
			fmt.Sprintf("classifier requires chronological, got %s", seq.Direction()),
			ErrDirectionMismatch,
		)
	}
	if err := ValidateAttempts(attempts); err != nil {
		return nil, err
	}

	o := options{policy: PolicyConsuming}
	for _, opt := range opts {
		opt(&o)
	}

	triggers := triggerSets(seq, strat)

	var records []domain.ActivationRecord
	var labels []domain.Label
	switch o.policy {
	case PolicyConsuming:
		labels, records = scanConsuming(seq, triggers, attempts)
	case PolicyIndependent:
		labels, records = scanIndependent(seq, triggers, attempts)
	default:
		return nil, domain.NewValidationError("policy", o.policy.String(), ErrUnknownPolicy)
	}

	return &Result{
		Labels:      labels,
		Records:     records,
		Attempts:    attempts,
		Policy:      o.policy,
		Fingerprint: seq.Fingerprint(),
		Window:      seq.Window(),
	}, nil
}

// triggerSets evaluates the strategy once per position, each from its own prefix.
func triggerSets(seq *sequence.Sequence, strat strategy.Strategy) []strategy.TriggerSet {
	sets := make([]strategy.TriggerSet, seq.Len())
	for pos := range sets {
		sets[pos] = strat.TriggersIn(seq, pos)
	}
	return sets
}

// resolve looks for a hit in the window after an activation at i.
func resolve(seq *sequence.Sequence, triggers []strategy.TriggerSet, i, attempts int) domain.ActivationRecord {
	n := seq.Len()
	rec := domain.ActivationRecord{
		Position:         i,
		ActivatingNumber: seq.At(i),
		ResolvedAt:       -1,
	}

	for j := 1; j <= attempts; j++ {
		if i+j >= n {
			break
		}
		if triggers[i+j].Contains(seq.At(i + j)) {
			rec.Result = domain.ResolutionGreen
			rec.AttemptsUsed = j
			rec.ResolvedAt = i + j
			return rec
		}
	}

	if i+attempts < n {
		rec.Result = domain.ResolutionRed
		rec.AttemptsUsed = attempts
		rec.ResolvedAt = i + attempts
		return rec
	}

	rec.Result = domain.ResolutionPending
	rec.AttemptsUsed = n - 1 - i
	return rec
}

// scanConsuming is the window-consuming pass: after a window resolves the scan
// resumes right after the closing position; a PENDING window ends the scan.
func scanConsuming(seq *sequence.Sequence, triggers []strategy.TriggerSet, attempts int) ([]domain.Label, []domain.ActivationRecord) {
	n := seq.Len()
	labels := make([]domain.Label, n)
	var records []domain.ActivationRecord

	for i := 0; i < n; i++ {
		if !triggers[i].Contains(seq.At(i)) {
			continue
		}

		labels[i] = domain.LabelActivation
		rec := resolve(seq, triggers, i, attempts)
		records = append(records, rec)

		switch rec.Result {
		case domain.ResolutionGreen:
			labels[rec.ResolvedAt] = domain.LabelGreen
			i = rec.ResolvedAt
		case domain.ResolutionRed:
			labels[rec.ResolvedAt] = domain.LabelRed
			i = rec.ResolvedAt
		default:
			i = n
		}
	}

	return labels, records
}

// scanIndependent evaluates every trigger occurrence on its own window.
// On label collisions GREEN and RED win over ACTIVATION.
func scanIndependent(seq *sequence.Sequence, triggers []strategy.TriggerSet, attempts int) ([]domain.Label, []domain.ActivationRecord) {
	n := seq.Len()
	labels := make([]domain.Label, n)
	var records []domain.ActivationRecord

	for i := 0; i < n; i++ {
		if !triggers[i].Contains(seq.At(i)) {
			continue
		}

		if labels[i] == domain.LabelNeutral {
			labels[i] = domain.LabelActivation
		}
		rec := resolve(seq, triggers, i, attempts)
		records = append(records, rec)

		switch rec.Result {
		case domain.ResolutionGreen:
			labels[rec.ResolvedAt] = domain.LabelGreen
		case domain.ResolutionRed:
			labels[rec.ResolvedAt] = domain.LabelRed
		}
	}

	return labels, records
}
