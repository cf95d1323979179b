package layout

import (
	"math"

	"github.com/matsen/whitespace/internal/graph"
)

// NormalizeOptions bounds the coordinate spread a camera fit can cope with.
type NormalizeOptions struct {
	Span      float64 // canonical spread after rescaling
	MinSpread float64
	MaxSpread float64
}

// DefaultNormalizeOptions rescales spreads outside [1e-3, 1e5] to span 200.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{Span: 200, MinSpread: 1e-3, MaxSpread: 1e5}
}

// Normalize recenters and rescales the graph when its spread is extreme, and
// reports whether it moved anything. Running it again on its own output is a
// no-op.
func Normalize(g *graph.Graph, opts NormalizeOptions) bool {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return false
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX, maxX = min(minX, n.X), max(maxX, n.X)
		minY, maxY = min(minY, n.Y), max(maxY, n.Y)
	}
	spread := max(maxX-minX, maxY-minY)
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	switch {
	case spread == 0:
		// Collapsed onto one point: nothing to scale, only recenter.
		if cx == 0 && cy == 0 {
			return false
		}
		for _, n := range nodes {
			n.X, n.Y = 0, 0
		}
		return true
	case spread >= opts.MinSpread && spread <= opts.MaxSpread:
		return false
	}

	scale := opts.Span / spread
	for _, n := range nodes {
		n.X = (n.X - cx) * scale
		n.Y = (n.Y - cy) * scale
	}
	return true
}
