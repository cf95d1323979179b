package render

import (
	"github.com/matsen/whitespace/internal/graph"
)

// Styling constants shared by the reducers.
const (
	DefaultNodeOpacity = 0.9
	DefaultEdgeOpacity = 0.25

	HighlightScale   = 1.6
	HighlightFaded   = 0.04
	HighlightBorder  = "#111827"
	HighlightEdge    = 0.6
	HighlightEdgeOff = 0.02

	SelectedScale = 1.5
	NeighborScale = 1.2
	SelectionDim  = 0.15
	SelectionEdge = 0.8
	SelectionOff  = 0.05

	FilterScale   = 1.2
	FilterDim     = 0.2
	FilterEdge    = 0.5
	FilterEdgeOff = 0.08

	HoverScale = 1.3

	EdgeColor       = "#9ca3af"
	EdgeActiveColor = "#374151"
)

// NodeAttrs is what the draw call needs for one node.
type NodeAttrs struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Size        float64 `json:"size"`
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
	Border      bool    `json:"border,omitempty"`
	BorderColor string  `json:"border_color,omitempty"`
	Label       string  `json:"label,omitempty"`
	ZIndex      int     `json:"z"`
}

// EdgeAttrs is what the draw call needs for one edge.
type EdgeAttrs struct {
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Width   float64 `json:"width"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Node reduces one node against the current state. It reads n and s only.
func Node(n *graph.Node, s *State) NodeAttrs {
	a := NodeAttrs{
		ID:      n.ID,
		X:       n.X,
		Y:       n.Y,
		Size:    n.BaseSize,
		Color:   n.Color,
		Opacity: DefaultNodeOpacity,
	}
	hovered := s.hovered != "" && s.hovered == n.ID

	switch s.Mode() {
	case ModeHighlight:
		if s.Highlighted(n.ID) {
			a.Size = n.BaseSize * HighlightScale
			a.Opacity = 1
			a.Border = true
			a.BorderColor = HighlightBorder
			a.Label = n.Label()
			a.ZIndex = 2
		} else {
			a.Opacity = HighlightFaded
		}
		return a

	case ModeSelection:
		switch {
		case n.ID == s.selected:
			a.Size = n.BaseSize * SelectedScale
			a.Opacity = 1
			a.Border = true
			a.BorderColor = n.Color
			a.Label = n.Label()
			a.ZIndex = 2
		case s.IsNeighbor(n.ID):
			a.Size = n.BaseSize * NeighborScale
			a.Opacity = 1
			a.ZIndex = 1
		default:
			a.Opacity = SelectionDim
		}

	case ModeSignalFilter:
		if n.HasSignal(s.signalFilter) {
			a.Size = n.BaseSize * FilterScale
			a.Opacity = 1
			a.ZIndex = 1
		} else {
			a.Opacity = FilterDim
		}
	}

	if hovered {
		a.Label = n.Label()
		a.ZIndex = 3
		if s.Mode() != ModeSelection {
			a.Size = max(a.Size, n.BaseSize*HoverScale)
		}
	}
	return a
}

// Edge reduces one edge given its two endpoints. It reads its inputs only.
func Edge(e graph.Edge, src, dst *graph.Node, s *State) EdgeAttrs {
	a := EdgeAttrs{
		Source:  e.Source,
		Target:  e.Target,
		Width:   edgeWidth(e.Weight),
		Color:   EdgeColor,
		Opacity: DefaultEdgeOpacity,
	}

	switch s.Mode() {
	case ModeHighlight:
		if s.Highlighted(e.Source) && s.Highlighted(e.Target) {
			a.Color = HighlightBorder
			a.Opacity = HighlightEdge
		} else {
			a.Opacity = HighlightEdgeOff
		}

	case ModeSelection:
		if e.Source == s.selected || e.Target == s.selected {
			a.Color = EdgeActiveColor
			a.Opacity = SelectionEdge
		} else {
			a.Opacity = SelectionOff
		}

	case ModeSignalFilter:
		if src != nil && dst != nil && src.HasSignal(s.signalFilter) && dst.HasSignal(s.signalFilter) {
			a.Opacity = FilterEdge
		} else {
			a.Opacity = FilterEdgeOff
		}

	default:
		if s.hovered != "" && (e.Source == s.hovered || e.Target == s.hovered) {
			a.Color = EdgeActiveColor
			a.Opacity = SelectionEdge
		}
	}
	return a
}

// edgeWidth maps a similarity weight onto a thin stroke.
func edgeWidth(w float64) float64 {
	if w <= 0 {
		return 0.5
	}
	return min(0.5+w, 3)
}
