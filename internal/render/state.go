// Package render computes per-frame node and edge attributes from the graph
// and the transient interaction state of a session.
package render

import (
	"github.com/matsen/whitespace/internal/graph"
)

// MaxHighlight caps the number of ids a highlight set can hold.
const MaxHighlight = 64

// Mode names the rule that currently decides styling. Higher modes win.
type Mode int

const (
	ModeDefault Mode = iota
	ModeSignalFilter
	ModeSelection
	ModeHighlight
)

func (m Mode) String() string {
	switch m {
	case ModeSignalFilter:
		return "signal_filter"
	case ModeSelection:
		return "selection"
	case ModeHighlight:
		return "highlight"
	default:
		return "default"
	}
}

// State is the transient state of one render session. The interaction layer,
// the example selector and signal handlers write it; reducers only read it.
type State struct {
	selected     string
	neighbors    map[string]struct{}
	hovered      string
	signalFilter graph.SignalKind
	highlight    []string
	highlightSet map[string]struct{}
}

// NewState returns an empty state.
func NewState() *State {
	return &State{}
}

// Mode reports which styling rule applies.
func (s *State) Mode() Mode {
	switch {
	case len(s.highlight) > 0:
		return ModeHighlight
	case s.selected != "":
		return ModeSelection
	case s.signalFilter != "":
		return ModeSignalFilter
	default:
		return ModeDefault
	}
}

// Select makes id the selected node with the given direct neighbors.
func (s *State) Select(id string, neighbors []string) {
	s.selected = id
	s.neighbors = make(map[string]struct{}, len(neighbors))
	for _, n := range neighbors {
		s.neighbors[n] = struct{}{}
	}
}

// ClearSelection drops the selection and its neighbor set.
func (s *State) ClearSelection() {
	s.selected = ""
	s.neighbors = nil
}

// Selected returns the selected node id, or "".
func (s *State) Selected() string { return s.selected }

// IsNeighbor reports whether id is adjacent to the selected node.
func (s *State) IsNeighbor(id string) bool {
	_, ok := s.neighbors[id]
	return ok
}

// NeighborCount returns the size of the neighbor set.
func (s *State) NeighborCount() int { return len(s.neighbors) }

// SetHovered records the node under the pointer; "" clears it.
func (s *State) SetHovered(id string) { s.hovered = id }

// Hovered returns the hovered node id, or "".
func (s *State) Hovered() string { return s.hovered }

// SetSignalFilter activates a signal filter; "" clears it.
func (s *State) SetSignalFilter(kind graph.SignalKind) { s.signalFilter = kind }

// SignalFilter returns the active signal filter, or "".
func (s *State) SignalFilter() graph.SignalKind { return s.signalFilter }

// SetHighlight replaces the highlight set. Empty and repeated ids are dropped
// and the list is truncated to MaxHighlight, keeping order.
func (s *State) SetHighlight(ids []string) {
	s.highlight = nil
	s.highlightSet = nil
	for _, id := range ids {
		if len(s.highlight) == MaxHighlight {
			break
		}
		if id == "" {
			continue
		}
		if _, dup := s.highlightSet[id]; dup {
			continue
		}
		if s.highlightSet == nil {
			s.highlightSet = make(map[string]struct{})
		}
		s.highlightSet[id] = struct{}{}
		s.highlight = append(s.highlight, id)
	}
}

// ClearHighlight empties the highlight set.
func (s *State) ClearHighlight() { s.SetHighlight(nil) }

// Highlight returns a copy of the highlight list in order.
func (s *State) Highlight() []string {
	if len(s.highlight) == 0 {
		return nil
	}
	return append([]string(nil), s.highlight...)
}

// Highlighted reports whether id is in the highlight set.
func (s *State) Highlighted(id string) bool {
	_, ok := s.highlightSet[id]
	return ok
}

// HighlightActive reports whether the highlight set is non-empty.
func (s *State) HighlightActive() bool { return len(s.highlight) > 0 }

// Reset clears everything, as when a new payload replaces the graph.
func (s *State) Reset() {
	*s = State{}
}
