// Package strategy defines trigger-set strategies and the catalog they are looked up from.
package strategy

import (
	"roulette-lab/internal/sequence"
)

// Kind tags the strategy variant.
type Kind uint8

const (
	// KindFixed strategies use the same trigger set at every position.
	KindFixed Kind = iota + 1
	// KindDerived strategies recompute the trigger set from the preceding outcomes.
	KindDerived
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindDerived:
		return "derived"
	default:
		return "unknown"
	}
}

// DeriveFunc computes a trigger set from the outcomes strictly before a position.
// It must be pure: the same prefix always yields the same set.
type DeriveFunc func(prefix sequence.Prefix) TriggerSet

// Strategy is a fixed or derived trigger set. The zero value triggers nothing.
type Strategy struct {
	id     string
	name   string
	kind   Kind
	fixed  TriggerSet
	derive DeriveFunc
}

// NewFixed returns a strategy that triggers on the same set everywhere.
func NewFixed(id string, set TriggerSet) Strategy {
	return Strategy{id: id, name: id, kind: KindFixed, fixed: set}
}

// NewDerived returns a strategy whose trigger set is derived per position.
// A nil fn yields the empty set everywhere.
func NewDerived(id string, fn DeriveFunc) Strategy {
	return Strategy{id: id, name: id, kind: KindDerived, derive: fn}
}

// WithName returns a copy carrying a display name.
func (s Strategy) WithName(name string) Strategy {
	if name != "" {
		s.name = name
	}
	return s
}

// ID returns the strategy identifier.
func (s Strategy) ID() string { return s.id }

// Name returns the display name; defaults to the ID.
func (s Strategy) Name() string { return s.name }

// Kind returns the variant tag.
func (s Strategy) Kind() Kind { return s.kind }

// FixedSet returns the constant set of a fixed strategy. ok is false for derived strategies.
func (s Strategy) FixedSet() (TriggerSet, bool) {
	if s.kind != KindFixed {
		return EmptySet, false
	}
	return s.fixed, true
}

// TriggersAt returns the trigger set in force at position, given the outcomes before it.
// Fixed strategies ignore both arguments.
func (s Strategy) TriggersAt(position int, prefix sequence.Prefix) TriggerSet {
	switch s.kind {
	case KindFixed:
		return s.fixed
	case KindDerived:
		if s.derive == nil {
			return EmptySet
		}
		return s.derive(prefix)
	default:
		return EmptySet
	}
}

// TriggersIn returns the trigger set at chronological position pos of seq.
// Only the prefix before pos is handed to the derivation.
func (s Strategy) TriggersIn(seq *sequence.Sequence, pos int) TriggerSet {
	if s.kind == KindFixed {
		return s.fixed
	}
	return s.TriggersAt(pos, seq.PrefixAt(pos))
}

// Universe returns every value the strategy can trigger on over seq.
// For derived strategies this is the union of the sets at positions 0..Len().
func (s Strategy) Universe(seq *sequence.Sequence) TriggerSet {
	if s.kind == KindFixed {
		return s.fixed
	}
	u := EmptySet
	for pos := 0; pos <= seq.Len(); pos++ {
		u = u.Union(s.TriggersIn(seq, pos))
	}
	return u
}
