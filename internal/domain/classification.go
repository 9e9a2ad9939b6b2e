package domain

// Label is the per-position classification produced by a classifier pass.
type Label uint8

// Label values. The zero value is NEUTRAL so a freshly allocated slice is fully neutral.
const (
	LabelNeutral Label = iota
	LabelActivation
	LabelGreen
	LabelRed
)

// String returns the upper-case label name.
func (l Label) String() string {
	switch l {
	case LabelActivation:
		return "ACTIVATION"
	case LabelGreen:
		return "GREEN"
	case LabelRed:
		return "RED"
	default:
		return "NEUTRAL"
	}
}

// MarshalText encodes the label as its name.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Resolution is the outcome of an activation's lookahead window.
type Resolution string

// Resolution values.
const (
	ResolutionGreen   Resolution = "GREEN"
	ResolutionRed     Resolution = "RED"
	ResolutionPending Resolution = "PENDING"
)

// ActivationRecord describes one activation found during a scan.
type ActivationRecord struct {
	Position         int        `json:"position"`          // index of the activating outcome
	ActivatingNumber int        `json:"activating_number"` // outcome value at Position
	Result           Resolution `json:"result"`
	AttemptsUsed     int        `json:"attempts_used"` // j for GREEN, k for RED, available lookahead for PENDING
	ResolvedAt       int        `json:"resolved_at"`   // index of the GREEN/RED label, -1 when PENDING
}

// Resolved reports whether the window closed (GREEN or RED).
func (r ActivationRecord) Resolved() bool {
	return r.Result == ResolutionGreen || r.Result == ResolutionRed
}
