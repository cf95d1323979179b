// Package interact turns pointer events into state changes: hover tooltips,
// node selection with a detail panel, and background clicks.
package interact

import (
	"fmt"
	"html"
	"log/slog"
	"math"
	"strings"

	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/patent"
	"github.com/matsen/whitespace/internal/render"
	"github.com/matsen/whitespace/internal/viewport"
)

// MinHitRadius is the smallest pointer radius, in pixels, that hits a node.
const MinHitRadius = 4.0

// Tooltip is the hover overlay. HTML is already escaped.
type Tooltip struct {
	Visible bool    `json:"visible"`
	NodeID  string  `json:"node_id,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	HTML    string  `json:"html,omitempty"`
}

// Rationale is one signal explanation attached to a node.
type Rationale struct {
	Assignee string             `json:"assignee"`
	Type     graph.SignalKind   `json:"type"`
	Status   graph.SignalStatus `json:"status"`
	Why      string             `json:"why"`
}

// DetailPanel describes the filing opened by a click.
type DetailPanel struct {
	ID         string      `json:"id"`
	Title      string      `json:"title,omitempty"`
	Assignee   string      `json:"assignee,omitempty"`
	Date       string      `json:"pub_date,omitempty"`
	Cluster    int         `json:"cluster_id"`
	Score      *float64    `json:"score,omitempty"`
	Density    *float64    `json:"density,omitempty"`
	Abstract   string      `json:"abstract,omitempty"`
	Signals    []string    `json:"signals,omitempty"`
	Rationales []Rationale `json:"rationales,omitempty"`
	Neighbors  []string    `json:"neighbors"`
	URL        string      `json:"url"`
}

// Layer routes pointer events for one render session.
type Layer struct {
	graph      *graph.Graph
	state      *render.State
	camera     *viewport.Controller
	rationales map[string][]Rationale
	logger     *slog.Logger

	tooltip  Tooltip
	panel    *DetailPanel
	detached bool
}

// Option configures a Layer.
type Option func(*Layer)

// WithSignals attaches signal rationales to the nodes they cite.
func WithSignals(groups []graph.AssigneeSignals) Option {
	return func(l *Layer) {
		for _, g := range groups {
			for _, s := range g.Signals {
				for _, id := range s.NodeIDs {
					l.rationales[id] = append(l.rationales[id], Rationale{
						Assignee: g.Assignee,
						Type:     s.Type,
						Status:   s.Status,
						Why:      s.Why,
					})
				}
			}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Layer) { l.logger = logger }
}

// New creates the interaction layer over a graph, its state and camera.
func New(g *graph.Graph, state *render.State, camera *viewport.Controller, opts ...Option) *Layer {
	l := &Layer{
		graph:      g,
		state:      state,
		camera:     camera,
		rationales: make(map[string][]Rationale),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Detach stops the layer from reacting to further events.
func (l *Layer) Detach() {
	l.detached = true
	l.tooltip = Tooltip{}
}

// Detached reports whether Detach was called.
func (l *Layer) Detached() bool { return l.detached }

// Tooltip returns the current tooltip.
func (l *Layer) Tooltip() Tooltip { return l.tooltip }

// Panel returns the open detail panel, or nil.
func (l *Layer) Panel() *DetailPanel { return l.panel }

// HitTest returns the node under a screen point. The closest node whose
// rendered radius covers the point wins; later nodes win exact ties since
// they are drawn on top.
func (l *Layer) HitTest(sx, sy float64) (string, bool) {
	cam, size := l.camera.Camera(), l.camera.Size()
	best, bestDist := "", math.Inf(1)
	for _, n := range l.graph.Nodes() {
		nx, ny := cam.WorldToScreen(n.X, n.Y, size)
		d := math.Hypot(sx-nx, sy-ny)
		if d > max(render.Node(n, l.state).Size, MinHitRadius) {
			continue
		}
		if d <= bestDist {
			best, bestDist = n.ID, d
		}
	}
	return best, best != ""
}

// PointerMove hit-tests a pointer position and raises enter/leave events.
func (l *Layer) PointerMove(sx, sy float64) {
	if l.detached {
		return
	}
	id, ok := l.HitTest(sx, sy)
	switch {
	case !ok && l.state.Hovered() != "":
		l.NodeLeave()
	case ok && id != l.state.Hovered():
		l.NodeEnter(id)
	}
}

// Click hit-tests a click and dispatches it to a node or the background.
func (l *Layer) Click(sx, sy float64) {
	if l.detached {
		return
	}
	if id, ok := l.HitTest(sx, sy); ok {
		l.NodeClick(id)
		return
	}
	l.BackgroundClick()
}

// NodeEnter shows the tooltip at the node's current screen position.
func (l *Layer) NodeEnter(id string) {
	if l.detached {
		return
	}
	n, ok := l.graph.Node(id)
	if !ok {
		return
	}
	l.state.SetHovered(id)
	x, y := l.camera.Camera().WorldToScreen(n.X, n.Y, l.camera.Size())
	l.tooltip = Tooltip{
		Visible: true,
		NodeID:  id,
		X:       x,
		Y:       y,
		HTML:    tooltipHTML(n, l.rationales[id]),
	}
}

// NodeLeave hides the tooltip.
func (l *Layer) NodeLeave() {
	if l.detached {
		return
	}
	l.state.SetHovered("")
	l.tooltip = Tooltip{}
}

// NodeClick selects a node, opens its detail panel and, unless a highlight
// set is active, recenters the camera on it at the current zoom.
func (l *Layer) NodeClick(id string) {
	if l.detached {
		return
	}
	n, ok := l.graph.Node(id)
	if !ok {
		return
	}
	neighbors := l.graph.Neighbors(id)
	l.state.Select(id, neighbors)
	l.panel = l.detail(n, neighbors)
	if !l.state.HighlightActive() {
		l.camera.CenterOn(n.X, n.Y)
	}
	l.logger.Debug("node selected", "id", id, "neighbors", len(neighbors))
}

// BackgroundClick clears the selection and its neighbor set. The detail
// panel stays as it was.
func (l *Layer) BackgroundClick() {
	if l.detached {
		return
	}
	l.state.ClearSelection()
}

// ClosePanel closes the detail panel.
func (l *Layer) ClosePanel() { l.panel = nil }

func (l *Layer) detail(n *graph.Node, neighbors []string) *DetailPanel {
	p := &DetailPanel{
		ID:         n.ID,
		Title:      n.Title,
		Assignee:   n.Assignee,
		Date:       n.Date,
		Cluster:    n.Cluster,
		Score:      finite(n.Score),
		Density:    finite(n.Density),
		Abstract:   n.Abstract,
		Rationales: l.rationales[n.ID],
		Neighbors:  neighbors,
		URL:        patent.URL(n.ID),
	}
	for _, s := range n.Signals {
		p.Signals = append(p.Signals, string(s))
	}
	if p.Neighbors == nil {
		p.Neighbors = []string{}
	}
	return p
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// tooltipHTML renders the tooltip body. Every value is escaped.
func tooltipHTML(n *graph.Node, rationales []Rationale) string {
	var b strings.Builder
	title := n.Title
	if title == "" {
		title = n.Tooltip
	}
	if title == "" {
		title = n.ID
	}
	fmt.Fprintf(&b, `<div class="tt-title">%s</div>`, html.EscapeString(title))
	if n.Assignee != "" {
		fmt.Fprintf(&b, `<div class="tt-assignee">%s</div>`, html.EscapeString(n.Assignee))
	}
	if len(n.Signals) > 0 {
		tags := make([]string, len(n.Signals))
		for i, s := range n.Signals {
			tags[i] = html.EscapeString(string(s))
		}
		fmt.Fprintf(&b, `<div class="tt-signals">%s</div>`, strings.Join(tags, ", "))
	}
	for _, r := range rationales {
		if r.Why == "" {
			continue
		}
		fmt.Fprintf(&b, `<div class="tt-why">%s: %s</div>`,
			html.EscapeString(string(r.Type)), html.EscapeString(r.Why))
	}
	return b.String()
}
