package graph

import (
	"math"
	"math/rand/v2"
	"slices"
)

// Size range nodes are mapped into, in pixels.
const (
	DefaultMinSize = 2.0
	DefaultMaxSize = 12.0

	// DefaultSeed makes seeded starting positions reproducible across runs.
	DefaultSeed = 42

	// DefaultSeedSpread is the half-width of the square seed positions fall in.
	DefaultSeedSpread = 100.0
)

// Node is a filing in the built graph. Score, Density and PubDate hold Worst
// when the payload did not carry a usable value.
type Node struct {
	ID       string
	Cluster  int
	Score    float64
	Density  float64
	PubDate  float64
	Date     string
	Assignee string
	Title    string
	Tooltip  string
	Abstract string
	Signals  []SignalKind

	X, Y     float64
	BaseSize float64
	Color    string
}

// HasSignal reports whether the node participates in the given signal.
func (n *Node) HasSignal(kind SignalKind) bool {
	return slices.Contains(n.Signals, kind)
}

// Label is the short text shown next to a node.
func (n *Node) Label() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

// Edge connects two nodes of the graph.
type Edge struct {
	Source string
	Target string
	Weight float64
}

// Graph is the attributed graph of one render session. Only Build creates one.
type Graph struct {
	nodes       []*Node
	index       map[string]int
	edges       []Edge
	adjacent    map[string][]string
	needsLayout bool
}

// BuildOptions tunes Build.
type BuildOptions struct {
	MinSize    float64
	MaxSize    float64
	Seed       uint64
	SeedSpread float64
}

// DefaultBuildOptions returns the options used by the CLI.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		MinSize:    DefaultMinSize,
		MaxSize:    DefaultMaxSize,
		Seed:       DefaultSeed,
		SeedSpread: DefaultSeedSpread,
	}
}

// Build constructs the graph for a payload. Nodes with a repeated id are
// skipped (first wins). Edges whose endpoints are missing, self-loops and
// repeated ordered pairs are dropped silently.
func Build(p GraphPayload, opts BuildOptions) *Graph {
	if opts.MaxSize <= opts.MinSize {
		opts.MinSize, opts.MaxSize = DefaultMinSize, DefaultMaxSize
	}
	if opts.SeedSpread <= 0 {
		opts.SeedSpread = DefaultSeedSpread
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	g := &Graph{
		nodes:    make([]*Node, 0, len(p.Nodes)),
		index:    make(map[string]int, len(p.Nodes)),
		adjacent: make(map[string][]string),
	}

	missingCoords := false
	for _, np := range p.Nodes {
		if np.ID == "" {
			continue
		}
		if _, dup := g.index[np.ID]; dup {
			continue
		}
		n := newNode(np)
		if np.X.Finite() && np.Y.Finite() {
			n.X, n.Y = np.X.Value(), np.Y.Value()
		} else {
			missingCoords = true
			n.X = (rng.Float64()*2 - 1) * opts.SeedSpread
			n.Y = (rng.Float64()*2 - 1) * opts.SeedSpread
		}
		g.index[n.ID] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}

	if !missingCoords && degenerate(g.nodes) {
		for _, n := range g.nodes {
			n.X = (rng.Float64()*2 - 1) * opts.SeedSpread
			n.Y = (rng.Float64()*2 - 1) * opts.SeedSpread
		}
		missingCoords = true
	}
	g.needsLayout = missingCoords && len(g.nodes) > 0

	assignSizes(g.nodes, opts.MinSize, opts.MaxSize)

	type pair struct{ s, t string }
	seen := make(map[pair]bool, len(p.Edges))
	for _, ep := range p.Edges {
		if ep.Source == ep.Target {
			continue
		}
		if _, ok := g.index[ep.Source]; !ok {
			continue
		}
		if _, ok := g.index[ep.Target]; !ok {
			continue
		}
		key := pair{ep.Source, ep.Target}
		if seen[key] {
			continue
		}
		seen[key] = true
		weight := 1.0
		if ep.Weight.Finite() {
			weight = ep.Weight.Value()
		}
		g.edges = append(g.edges, Edge{Source: ep.Source, Target: ep.Target, Weight: weight})
		g.link(ep.Source, ep.Target)
		g.link(ep.Target, ep.Source)
	}

	return g
}

func newNode(np NodePayload) *Node {
	n := &Node{
		ID:       np.ID,
		Cluster:  np.ClusterID,
		Score:    np.ScoreValue(),
		Density:  np.DensityValue(),
		PubDate:  np.PubDate.Value(),
		Assignee: np.Assignee,
		Title:    np.Title,
		Tooltip:  np.Tooltip,
		Abstract: np.Abstract,
		Color:    ClusterColor(np.ClusterID),
	}
	if np.PubDate != nil {
		n.Date = np.PubDate.Raw
	}
	for _, s := range np.Signals {
		kind := SignalKind(s)
		if kind.Valid() && !slices.Contains(n.Signals, kind) {
			n.Signals = append(n.Signals, kind)
		}
	}
	return n
}

// degenerate reports whether more than one node shares a single position.
func degenerate(nodes []*Node) bool {
	if len(nodes) < 2 {
		return false
	}
	first := nodes[0]
	for _, n := range nodes[1:] {
		if n.X != first.X || n.Y != first.Y {
			return false
		}
	}
	return true
}

// assignSizes maps scores linearly from the observed [min, max] of this payload
// onto [minSize, maxSize]. Nodes without a score get minSize.
func assignSizes(nodes []*Node, minSize, maxSize float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, n := range nodes {
		if math.IsInf(n.Score, 0) {
			continue
		}
		lo = min(lo, n.Score)
		hi = max(hi, n.Score)
	}
	span := hi - lo
	for _, n := range nodes {
		switch {
		case math.IsInf(n.Score, 0):
			n.BaseSize = minSize
		case span <= 0:
			n.BaseSize = (minSize + maxSize) / 2
		default:
			n.BaseSize = minSize + (n.Score-lo)/span*(maxSize-minSize)
		}
	}
}

func (g *Graph) link(from, to string) {
	if !slices.Contains(g.adjacent[from], to) {
		g.adjacent[from] = append(g.adjacent[from], to)
	}
}

// Nodes returns the nodes in payload order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns the kept edges in payload order.
func (g *Graph) Edges() []Edge { return g.edges }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// IsEmpty reports whether the graph has no nodes.
func (g *Graph) IsEmpty() bool { return len(g.nodes) == 0 }

// Node looks up a node by id.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Neighbors returns the ids adjacent to id in either direction.
func (g *Graph) Neighbors(id string) []string {
	return slices.Clone(g.adjacent[id])
}

// NeedsLayout reports whether coordinates were missing or degenerate.
func (g *Graph) NeedsLayout() bool { return g.needsLayout }

// MarkLaidOut records that the layout pass has produced usable coordinates.
func (g *Graph) MarkLaidOut() { g.needsLayout = false }
