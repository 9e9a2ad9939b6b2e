package strategy

import (
	"sort"
	"strings"
)

// redNumbers are the red pockets of a single-zero wheel.
var redNumbers = []int{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36}

var presets = buildPresets()

func buildPresets() map[string]TriggerSet {
	red := SetOf(redNumbers...)

	var black, even, odd, low, high TriggerSet
	var dozens, columns [3]TriggerSet
	for n := 1; n <= 36; n++ {
		if !red.Contains(n) {
			black = black.With(n)
		}
		if n%2 == 0 {
			even = even.With(n)
		} else {
			odd = odd.With(n)
		}
		if n <= 18 {
			low = low.With(n)
		} else {
			high = high.With(n)
		}
		dozens[(n-1)/12] = dozens[(n-1)/12].With(n)
		columns[(n-1)%3] = columns[(n-1)%3].With(n)
	}

	return map[string]TriggerSet{
		"red":     red,
		"black":   black,
		"even":    even,
		"odd":     odd,
		"low":     low,
		"high":    high,
		"dozen1":  dozens[0],
		"dozen2":  dozens[1],
		"dozen3":  dozens[2],
		"column1": columns[0],
		"column2": columns[1],
		"column3": columns[2],
		"zero":    SetOf(0),
		"zeros":   SetOf(0, 37),
	}
}

// Preset returns a named trigger set. Names are case-insensitive.
func Preset(name string) (TriggerSet, bool) {
	s, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// PresetNames returns all preset names in ascending order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
