package sequence

import (
	"errors"
	"testing"

	"roulette-lab/internal/domain"
)

func TestNew_RejectsUndeclaredDirection(t *testing.T) {
	_, err := New([]int{1, 2, 3}, DirectionUnknown, Window{})
	if err == nil {
		t.Fatal("expected error for undeclared direction")
	}
	if !errors.Is(err, ErrUndeclaredDirection) {
		t.Errorf("expected ErrUndeclaredDirection, got %v", err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNew_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		values []int
	}{
		{"negative", []int{1, -1}},
		{"above max", []int{38}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.values, DirectionChronological, Window{})
			if !errors.Is(err, ErrOutcomeOutOfRange) {
				t.Errorf("expected ErrOutcomeOutOfRange, got %v", err)
			}
		})
	}
}

func TestNew_AcceptsSecondaryZero(t *testing.T) {
	seq, err := New([]int{0, 37, 36}, DirectionChronological, Window{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.At(1) != 37 {
		t.Errorf("expected 37 at index 1, got %d", seq.At(1))
	}
}

func TestNew_CopiesInput(t *testing.T) {
	values := []int{1, 2, 3}
	seq, err := New(values, DirectionChronological, Window{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values[0] = 36
	if seq.At(0) != 1 {
		t.Errorf("sequence mutated through input slice: got %d", seq.At(0))
	}
}

func TestSequence_ReverseViews(t *testing.T) {
	rev, err := New([]int{10, 15, 5, 5, 5, 5, 5}, DirectionReverse, Window{RouletteID: "r1", Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chrono := rev.Chronological()
	want := []int{5, 5, 5, 5, 5, 15, 10}
	got := chrono.Values()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chronological view = %v, want %v", got, want)
		}
	}

	if rev.At(0) != 10 {
		t.Errorf("reverse At(0) = %d, want 10", rev.At(0))
	}
	if chrono.Direction() != DirectionChronological {
		t.Errorf("expected chronological direction, got %s", chrono.Direction())
	}
	if chrono.Reversed().At(0) != 10 {
		t.Errorf("round trip reverse At(0) = %d, want 10", chrono.Reversed().At(0))
	}
	if chrono.Fingerprint() != rev.Fingerprint() {
		t.Error("views must share fingerprint")
	}
	if chrono.Window() != rev.Window() {
		t.Error("views must share window")
	}
	if rev.Window().Rows != 7 {
		t.Errorf("expected rows defaulted to 7, got %d", rev.Window().Rows)
	}
}

func TestSequence_FingerprintDistinguishesWindows(t *testing.T) {
	values := []int{1, 2, 3}
	a, _ := New(values, DirectionChronological, Window{RouletteID: "r1", Date: "2024-01-01"})
	b, _ := New(values, DirectionChronological, Window{RouletteID: "r1", Date: "2024-01-02"})
	c, _ := New([]int{1, 2, 4}, DirectionChronological, Window{RouletteID: "r1", Date: "2024-01-01"})
	d, _ := New(values, DirectionChronological, Window{RouletteID: "r1", Date: "2024-01-01"})

	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different dates must not share fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different data must not share fingerprint")
	}
	if a.Fingerprint() != d.Fingerprint() {
		t.Error("identical window and data must share fingerprint")
	}
	if len(a.Fingerprint()) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a.Fingerprint()))
	}
}

func TestSequence_PrefixAt(t *testing.T) {
	seq, _ := New([]int{7, 8, 9, 10}, DirectionChronological, Window{})

	p := seq.PrefixAt(2)
	if p.Len() != 2 {
		t.Fatalf("prefix len = %d, want 2", p.Len())
	}
	last, ok := p.Last()
	if !ok || last != 8 {
		t.Errorf("Last() = %d, %v; want 8, true", last, ok)
	}

	vals := p.Values()
	vals[0] = 36
	if seq.At(0) != 7 {
		t.Errorf("sequence mutated through prefix values: %d", seq.At(0))
	}

	if seq.PrefixAt(-3).Len() != 0 {
		t.Error("negative position should clamp to empty prefix")
	}
	if seq.PrefixAt(100).Len() != 4 {
		t.Error("position past the end should clamp to full length")
	}
}

func TestPrefix_Tail(t *testing.T) {
	p := NewPrefix([]int{1, 2, 3, 4, 5})

	tests := []struct {
		n    int
		want []int
	}{
		{0, nil},
		{2, []int{4, 5}},
		{10, []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		got := p.Tail(tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("Tail(%d) = %v, want %v", tt.n, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tail(%d) = %v, want %v", tt.n, got, tt.want)
				break
			}
		}
	}

	if _, ok := NewPrefix(nil).Last(); ok {
		t.Error("empty prefix must report no last outcome")
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"chrono", DirectionChronological},
		{"Chronological", DirectionChronological},
		{"reverse", DirectionReverse},
		{"", DirectionUnknown},
		{"sideways", DirectionUnknown},
	}

	for _, tt := range tests {
		if got := ParseDirection(tt.in); got != tt.want {
			t.Errorf("ParseDirection(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFromSpins(t *testing.T) {
	spins := []*domain.Spin{
		{RouletteID: "r1", SpinID: "a", Number: 5, TimestampMs: 1},
		{RouletteID: "r1", SpinID: "b", Number: 37, TimestampMs: 2},
		{RouletteID: "r1", SpinID: "c", Number: 0, TimestampMs: 3},
	}

	seq, err := FromSpins(spins, Window{RouletteID: "r1", Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("FromSpins failed: %v", err)
	}
	if seq.Direction() != DirectionChronological {
		t.Errorf("Direction = %s, want chronological", seq.Direction())
	}
	if seq.Window().Rows != 3 {
		t.Errorf("Rows = %d, want 3", seq.Window().Rows)
	}
	if seq.At(0) != 5 || seq.At(2) != 0 {
		t.Errorf("Values = %v", seq.Values())
	}

	_, err = FromSpins([]*domain.Spin{{Number: 40}}, Window{})
	if !errors.Is(err, ErrOutcomeOutOfRange) {
		t.Errorf("expected ErrOutcomeOutOfRange, got %v", err)
	}
}
