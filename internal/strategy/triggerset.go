package strategy

import (
	"math/bits"
	"strconv"
	"strings"

	"roulette-lab/internal/domain"
)

// TriggerSet is an immutable set of outcome values in 0..37, one bit per value.
type TriggerSet uint64

// EmptySet contains no values.
const EmptySet TriggerSet = 0

// SetOf builds a set from values, silently dropping values outside 0..37.
// Use NewTriggerSet when input comes from configuration.
func SetOf(values ...int) TriggerSet {
	var s TriggerSet
	for _, v := range values {
		if domain.ValidOutcome(v) {
			s |= 1 << uint(v)
		}
	}
	return s
}

// NewTriggerSet builds a set from values, rejecting values outside 0..37.
func NewTriggerSet(values []int) (TriggerSet, error) {
	for _, v := range values {
		if !domain.ValidOutcome(v) {
			return EmptySet, domain.NewValidationError(
				"numbers",
				"value "+strconv.Itoa(v)+" outside 0..37",
				ErrInvalidNumber,
			)
		}
	}
	return SetOf(values...), nil
}

// Contains reports whether v is in the set.
func (s TriggerSet) Contains(v int) bool {
	if !domain.ValidOutcome(v) {
		return false
	}
	return s&(1<<uint(v)) != 0
}

// With returns a copy of the set that also contains v.
func (s TriggerSet) With(v int) TriggerSet {
	return s | SetOf(v)
}

// Union returns the values present in either set.
func (s TriggerSet) Union(o TriggerSet) TriggerSet {
	return s | o
}

// Len returns the number of values in the set.
func (s TriggerSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// IsEmpty reports whether the set has no values.
func (s TriggerSet) IsEmpty() bool {
	return s == EmptySet
}

// Numbers returns the values in ascending order.
func (s TriggerSet) Numbers() []int {
	out := make([]int, 0, s.Len())
	for v := domain.MinOutcome; v <= domain.MaxOutcome; v++ {
		if s.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

// String renders the set as "{1,2,3}".
func (s TriggerSet) String() string {
	nums := s.Numbers()
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
