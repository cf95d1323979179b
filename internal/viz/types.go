// Package viz writes a rendered frame as a standalone HTML page.
package viz

import (
	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/patent"
	"github.com/matsen/whitespace/internal/render"
)

// GraphData contains all data needed to draw one frame.
type GraphData struct {
	Mode   string  `json:"mode"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Nodes  []Node  `json:"nodes"`
	Edges  []Edge  `json:"edges"`
}

// Node is one filing with its reduced draw attributes.
type Node struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	X     float64 `json:"-"`
	Y     float64 `json:"-"`

	// Display, already reduced
	Size        float64 `json:"size"`
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
	BorderWidth float64 `json:"borderWidth"`
	BorderColor string  `json:"borderColor"`
	Z           int     `json:"z"`

	// Tooltip
	Title    string   `json:"title,omitempty"`
	Assignee string   `json:"assignee,omitempty"`
	Date     string   `json:"date,omitempty"`
	Signals  []string `json:"signals,omitempty"`
	URL      string   `json:"url"`
}

// Edge is one similarity link with its reduced draw attributes.
type Edge struct {
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Width   float64 `json:"width"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// borderWidth is the outline drawn around highlighted nodes.
const borderWidth = 2

// FromFrame converts a frame into viewer data. Positions are the frame's
// screen coordinates; g supplies tooltip text.
func FromFrame(f render.Frame, g *graph.Graph) *GraphData {
	d := &GraphData{
		Mode:   f.Mode,
		Width:  f.Size.Width,
		Height: f.Size.Height,
		Nodes:  make([]Node, 0, len(f.Nodes)),
		Edges:  make([]Edge, 0, len(f.Edges)),
	}
	for _, sn := range f.Nodes {
		n := Node{
			ID:      sn.ID,
			Label:   sn.Label,
			X:       sn.SX,
			Y:       sn.SY,
			Size:    sn.Size,
			Color:   sn.Color,
			Opacity: sn.Opacity,
			Z:       sn.ZIndex,
			URL:     patent.URL(sn.ID),
		}
		if sn.Border {
			n.BorderWidth = borderWidth
			n.BorderColor = sn.BorderColor
		}
		if gn, ok := g.Node(sn.ID); ok {
			n.Title = gn.Title
			n.Assignee = gn.Assignee
			n.Date = gn.Date
			for _, k := range gn.Signals {
				n.Signals = append(n.Signals, string(k))
			}
		}
		d.Nodes = append(d.Nodes, n)
	}
	for _, e := range f.Edges {
		d.Edges = append(d.Edges, Edge(e))
	}
	return d
}

// IsEmpty returns true if the frame has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
