package sequence

// Prefix is a read-only view of the chronological outcomes strictly before a position.
// It has no way to reach the position itself or anything after it.
type Prefix struct {
	values []int
}

// NewPrefix builds a prefix from chronological values. The values are copied.
func NewPrefix(values []int) Prefix {
	cp := make([]int, len(values))
	copy(cp, values)
	return Prefix{values: cp}
}

// Len returns the number of outcomes in the prefix.
func (p Prefix) Len() int {
	return len(p.values)
}

// At returns the i-th oldest outcome.
func (p Prefix) At(i int) int {
	return p.values[i]
}

// Last returns the most recent outcome. ok is false for an empty prefix.
func (p Prefix) Last() (int, bool) {
	if len(p.values) == 0 {
		return 0, false
	}
	return p.values[len(p.values)-1], true
}

// Tail returns a copy of the n most recent outcomes, oldest first.
func (p Prefix) Tail(n int) []int {
	if n <= 0 {
		return nil
	}
	if n > len(p.values) {
		n = len(p.values)
	}
	out := make([]int, n)
	copy(out, p.values[len(p.values)-n:])
	return out
}

// Values returns a copy of all outcomes, oldest first.
func (p Prefix) Values() []int {
	out := make([]int, len(p.values))
	copy(out, p.values)
	return out
}
