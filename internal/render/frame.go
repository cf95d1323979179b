package render

import (
	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/viewport"
)

// ScreenNode is a reduced node with its projected screen position.
type ScreenNode struct {
	NodeAttrs
	SX float64 `json:"sx"`
	SY float64 `json:"sy"`
}

// Frame is everything one draw call consumes.
type Frame struct {
	Mode      string          `json:"mode"`
	Camera    viewport.Camera `json:"camera"`
	Size      viewport.Size   `json:"size"`
	Highlight []string        `json:"highlight,omitempty"`
	Selected  string          `json:"selected,omitempty"`
	Nodes     []ScreenNode    `json:"nodes"`
	Edges     []EdgeAttrs     `json:"edges"`
}

// Compose reduces every node and edge of g. Nodes keep graph order; the
// graph itself is left untouched.
func Compose(g *graph.Graph, s *State, cam viewport.Camera, size viewport.Size) Frame {
	f := Frame{
		Mode:      s.Mode().String(),
		Camera:    cam,
		Size:      size,
		Highlight: s.Highlight(),
		Selected:  s.Selected(),
		Nodes:     make([]ScreenNode, 0, g.Len()),
		Edges:     make([]EdgeAttrs, 0, len(g.Edges())),
	}
	for _, n := range g.Nodes() {
		a := Node(n, s)
		sx, sy := cam.WorldToScreen(a.X, a.Y, size)
		f.Nodes = append(f.Nodes, ScreenNode{NodeAttrs: a, SX: sx, SY: sy})
	}
	for _, e := range g.Edges() {
		src, _ := g.Node(e.Source)
		dst, _ := g.Node(e.Target)
		f.Edges = append(f.Edges, Edge(e, src, dst, s))
	}
	return f
}
