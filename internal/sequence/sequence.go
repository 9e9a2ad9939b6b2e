// Package sequence provides direction-tagged, immutable views over outcome sequences.
package sequence

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"roulette-lab/internal/domain"
)

// Sequence errors
var (
	ErrUndeclaredDirection = errors.New("sequence direction not declared")
	ErrOutcomeOutOfRange   = errors.New("outcome out of range")
)

// Direction declares the order in which a sequence is read.
type Direction uint8

const (
	// DirectionUnknown is the zero value and is always rejected.
	DirectionUnknown Direction = iota
	// DirectionChronological reads oldest to newest.
	DirectionChronological
	// DirectionReverse reads most recent first.
	DirectionReverse
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionChronological:
		return "chronological"
	case DirectionReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// ParseDirection parses a direction name. Unrecognised names yield DirectionUnknown.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chrono", "chronological", "asc", "oldest-first":
		return DirectionChronological
	case "reverse", "desc", "newest-first", "most-recent-first":
		return DirectionReverse
	default:
		return DirectionUnknown
	}
}

// Window tags the data window a sequence was taken from.
type Window struct {
	RouletteID string `json:"roulette_id"`
	Date       string `json:"date"` // "YYYY-MM-DD" or domain.DayLive
	Rows       int    `json:"rows"`
}

// Live reports whether the window is the still-growing live window.
func (w Window) Live() bool {
	return w.Date == domain.DayLive
}

// String returns "roulette/date/rows".
func (w Window) String() string {
	return fmt.Sprintf("%s/%s/%d", w.RouletteID, w.Date, w.Rows)
}

// Sequence is an immutable view over outcomes with an explicit direction.
// The backing array is always chronological; views share it.
type Sequence struct {
	chrono      []int
	direction   Direction
	window      Window
	fingerprint string
}

// New builds a sequence from values given in the declared direction.
// The values are copied. A zero Window.Rows is set to len(values).
func New(values []int, dir Direction, window Window) (*Sequence, error) {
	if dir != DirectionChronological && dir != DirectionReverse {
		return nil, domain.NewValidationError("direction", "must be chronological or reverse", ErrUndeclaredDirection)
	}

	chrono := make([]int, len(values))
	for i, v := range values {
		if !domain.ValidOutcome(v) {
			return nil, domain.NewValidationError(
				"outcomes",
				fmt.Sprintf("value %d at index %d outside %d..%d", v, i, domain.MinOutcome, domain.MaxOutcome),
				ErrOutcomeOutOfRange,
			)
		}
		if dir == DirectionChronological {
			chrono[i] = v
		} else {
			chrono[len(values)-1-i] = v
		}
	}

	if window.Rows == 0 {
		window.Rows = len(chrono)
	}

	return &Sequence{
		chrono:      chrono,
		direction:   dir,
		window:      window,
		fingerprint: fingerprint(window, chrono),
	}, nil
}

// FromSpins builds a chronological sequence from spins already ordered oldest first.
func FromSpins(spins []*domain.Spin, window Window) (*Sequence, error) {
	values := make([]int, len(spins))
	for i, s := range spins {
		values[i] = s.Number
	}
	return New(values, DirectionChronological, window)
}

// Len returns the number of outcomes.
func (s *Sequence) Len() int {
	return len(s.chrono)
}

// At returns the outcome at index i in the sequence's own direction.
func (s *Sequence) At(i int) int {
	if s.direction == DirectionReverse {
		return s.chrono[len(s.chrono)-1-i]
	}
	return s.chrono[i]
}

// Direction returns the declared direction.
func (s *Sequence) Direction() Direction {
	return s.direction
}

// Window returns the window tag.
func (s *Sequence) Window() Window {
	return s.window
}

// Fingerprint identifies the window and data the sequence was built from.
// Views of the same sequence share it.
func (s *Sequence) Fingerprint() string {
	return s.fingerprint
}

// Chronological returns an oldest-first view over the same data.
func (s *Sequence) Chronological() *Sequence {
	if s.direction == DirectionChronological {
		return s
	}
	v := *s
	v.direction = DirectionChronological
	return &v
}

// Reversed returns a most-recent-first view over the same data.
func (s *Sequence) Reversed() *Sequence {
	if s.direction == DirectionReverse {
		return s
	}
	v := *s
	v.direction = DirectionReverse
	return &v
}

// Values returns a copy of the outcomes in the sequence's own direction.
func (s *Sequence) Values() []int {
	out := make([]int, len(s.chrono))
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}

// PrefixAt returns the chronological outcomes strictly before position pos.
// pos is a chronological index; it is clamped to 0..Len().
func (s *Sequence) PrefixAt(pos int) Prefix {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.chrono) {
		pos = len(s.chrono)
	}
	return Prefix{values: s.chrono[:pos:pos]}
}

// fingerprint computes SHA256(roulette|date|rows|v0,v1,...) hex-encoded.
func fingerprint(w Window, chrono []int) string {
	var b strings.Builder
	b.WriteString(w.RouletteID)
	b.WriteByte('|')
	b.WriteString(w.Date)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(w.Rows))
	b.WriteByte('|')
	for i, v := range chrono {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}

	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:])
}
