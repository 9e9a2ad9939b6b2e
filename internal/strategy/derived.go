package strategy

import (
	"roulette-lab/internal/sequence"
)

// wheelOrder is the pocket order of a single-zero wheel, clockwise from zero.
var wheelOrder = [37]int{
	0, 32, 15, 19, 4, 21, 2, 25, 17, 34, 6, 27, 13, 36, 11, 30, 8, 23, 10,
	5, 24, 16, 33, 1, 20, 14, 31, 9, 22, 18, 29, 7, 28, 12, 35, 3, 26,
}

// wheelIndex maps an outcome to its wheel position; 37 has none.
var wheelIndex = func() map[int]int {
	m := make(map[int]int, len(wheelOrder))
	for i, n := range wheelOrder {
		m[n] = i
	}
	return m
}()

// MaxNeighborRadius covers the whole wheel from any pocket.
const MaxNeighborRadius = 18

// LastN triggers on the distinct values among the n most recent outcomes.
func LastN(n int) DeriveFunc {
	return func(prefix sequence.Prefix) TriggerSet {
		return SetOf(prefix.Tail(n)...)
	}
}

// RepeatLast triggers on the most recent outcome only.
func RepeatLast() DeriveFunc {
	return func(prefix sequence.Prefix) TriggerSet {
		last, ok := prefix.Last()
		if !ok {
			return EmptySet
		}
		return SetOf(last)
	}
}

// Neighbors triggers on the pockets within radius of the most recent outcome on the wheel.
func Neighbors(radius int) DeriveFunc {
	return func(prefix sequence.Prefix) TriggerSet {
		last, ok := prefix.Last()
		if !ok {
			return EmptySet
		}
		return WheelNeighbors(last, radius)
	}
}

// WheelNeighbors returns n and the pockets within radius of it on the wheel.
// 37 has no wheel position and yields only itself.
func WheelNeighbors(n, radius int) TriggerSet {
	idx, ok := wheelIndex[n]
	if !ok {
		return SetOf(n)
	}
	if radius > MaxNeighborRadius {
		radius = MaxNeighborRadius
	}

	set := SetOf(n)
	size := len(wheelOrder)
	for d := 1; d <= radius; d++ {
		set = set.With(wheelOrder[(idx+d)%size])
		set = set.With(wheelOrder[(idx-d+size)%size])
	}
	return set
}
