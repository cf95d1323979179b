package graph

// SignalKind is one of the strategic patterns the service scores per assignee.
type SignalKind string

const (
	SignalFocusShift  SignalKind = "focus_shift"
	SignalEmergingGap SignalKind = "emerging_gap"
	SignalCrowdOut    SignalKind = "crowd_out"
	SignalBridge      SignalKind = "bridge"
)

// SignalKinds lists every known kind in display order.
var SignalKinds = []SignalKind{SignalEmergingGap, SignalBridge, SignalCrowdOut, SignalFocusShift}

// Valid reports whether k is a known kind.
func (k SignalKind) Valid() bool {
	switch k {
	case SignalFocusShift, SignalEmergingGap, SignalCrowdOut, SignalBridge:
		return true
	}
	return false
}

// SignalStatus is the coarse strength bucket of a signal.
type SignalStatus string

const (
	StatusNone   SignalStatus = "none"
	StatusWeak   SignalStatus = "weak"
	StatusMedium SignalStatus = "medium"
	StatusStrong SignalStatus = "strong"
)

// StatusFromConfidence buckets a confidence in [0,1].
func StatusFromConfidence(confidence float64) SignalStatus {
	switch {
	case confidence <= 0:
		return StatusNone
	case confidence >= 0.66:
		return StatusStrong
	case confidence >= 0.33:
		return StatusMedium
	default:
		return StatusWeak
	}
}

// Signal is one scored pattern and the filings that evidence it.
type Signal struct {
	Type       SignalKind         `json:"type"`
	Status     SignalStatus       `json:"status"`
	Confidence float64            `json:"confidence"`
	Why        string             `json:"why"`
	NodeIDs    []string           `json:"node_ids"`
	Debug      map[string]float64 `json:"debug,omitempty"`
}

// AssigneeSignals groups the signals computed for one assignee.
type AssigneeSignals struct {
	Assignee string         `json:"assignee"`
	K        string         `json:"k,omitempty"`
	Signals  []Signal       `json:"signals"`
	Summary  string         `json:"summary,omitempty"`
	Debug    map[string]any `json:"debug,omitempty"`
}

// normalize drops signals of unknown kinds and fills missing statuses.
func (a *AssigneeSignals) normalize() {
	kept := a.Signals[:0]
	for _, s := range a.Signals {
		if !s.Type.Valid() {
			continue
		}
		if s.Status == "" {
			s.Status = StatusFromConfidence(s.Confidence)
		}
		kept = append(kept, s)
	}
	a.Signals = kept
}
