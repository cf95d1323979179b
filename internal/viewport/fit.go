// Package viewport computes the camera that makes a graph, or a subset of it,
// visible inside the rendering surface.
package viewport

import (
	"errors"
	"math"

	"github.com/matsen/whitespace/internal/graph"
)

var (
	// ErrContainerNotReady is returned while the surface reports no usable size.
	ErrContainerNotReady = errors.New("container has no size yet")

	// ErrEmptyBounds is returned when there is nothing to fit.
	ErrEmptyBounds = errors.New("no nodes to fit")
)

// Camera is the viewport state: the world point at the center of the surface
// and the zoom in screen pixels per world unit.
type Camera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultCamera is the neutral camera used when a fit is impossible.
func DefaultCamera() Camera {
	return Camera{X: 0, Y: 0, Zoom: 1}
}

// Size is a surface size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Ready reports whether the size can be fitted into.
func (s Size) Ready() bool {
	return s.Width > 0 && s.Height > 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

// Bounds is an axis-aligned bounding box in world units.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the box.
func (b Bounds) Center() (float64, float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

// NodeBounds returns the bounding box of the given node ids, or of every node
// when ids is empty. Unknown ids are ignored; ok is false if nothing remains.
func NodeBounds(g *graph.Graph, ids []string) (Bounds, bool) {
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	found := false
	add := func(n *graph.Node) {
		b.MinX, b.MaxX = min(b.MinX, n.X), max(b.MaxX, n.X)
		b.MinY, b.MaxY = min(b.MinY, n.Y), max(b.MaxY, n.Y)
		found = true
	}
	if len(ids) == 0 {
		for _, n := range g.Nodes() {
			add(n)
		}
	} else {
		for _, id := range ids {
			if n, ok := g.Node(id); ok {
				add(n)
			}
		}
	}
	if !found {
		return Bounds{}, false
	}
	return b, true
}

// FitOptions controls how much of the surface a fitted box occupies.
type FitOptions struct {
	Fill    float64
	MinZoom float64
	MaxZoom float64
}

// DefaultFitOptions fills 85% of the surface and clamps zoom to [0.01, 50].
func DefaultFitOptions() FitOptions {
	return FitOptions{Fill: 0.85, MinZoom: 0.01, MaxZoom: 50}
}

// Fit returns the camera centered on b whose zoom makes b occupy opts.Fill of
// the surface. A box with no extent keeps the neutral zoom.
func Fit(b Bounds, s Size, opts FitOptions) (Camera, error) {
	if !s.Ready() {
		return Camera{}, ErrContainerNotReady
	}
	cx, cy := b.Center()
	if math.IsNaN(cx) || math.IsNaN(cy) || math.IsInf(cx, 0) || math.IsInf(cy, 0) {
		return Camera{}, ErrEmptyBounds
	}

	zoom := math.Inf(1)
	if w := b.Width(); w > 0 {
		zoom = min(zoom, s.Width*opts.Fill/w)
	}
	if h := b.Height(); h > 0 {
		zoom = min(zoom, s.Height*opts.Fill/h)
	}
	if math.IsInf(zoom, 1) {
		zoom = DefaultCamera().Zoom
	}
	zoom = max(opts.MinZoom, min(opts.MaxZoom, zoom))

	return Camera{X: cx, Y: cy, Zoom: zoom}, nil
}

// WorldToScreen projects a world point onto a surface of size s.
func (c Camera) WorldToScreen(x, y float64, s Size) (float64, float64) {
	return (x-c.X)*c.Zoom + s.Width/2, (y-c.Y)*c.Zoom + s.Height/2
}

// ScreenToWorld is the inverse of WorldToScreen.
func (c Camera) ScreenToWorld(sx, sy float64, s Size) (float64, float64) {
	return (sx-s.Width/2)/c.Zoom + c.X, (sy-s.Height/2)/c.Zoom + c.Y
}
