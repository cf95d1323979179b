// Package layout assigns 2-D coordinates to a graph whose payload did not carry
// usable ones, and keeps coordinate spreads in a range the camera can fit.
package layout

import (
	"math"

	"github.com/matsen/whitespace/internal/graph"
)

// Options configures the force simulation. Iterations is a hard budget: the
// simulation never checks for convergence.
type Options struct {
	Iterations      int
	Repulsion       float64
	SpringLength    float64
	SpringStiffness float64
	Gravity         float64
	Damping         float64

	// MaxStep bounds how far a node moves in one iteration.
	MaxStep float64

	// PairBudget caps the total pairwise repulsion evaluations; large graphs run
	// fewer iterations (never fewer than MinIterations).
	PairBudget    int
	MinIterations int
}

// DefaultOptions returns the simulation parameters used by the CLI.
func DefaultOptions() Options {
	return Options{
		Iterations:      300,
		Repulsion:       2000,
		SpringLength:    30,
		SpringStiffness: 0.05,
		Gravity:         0.01,
		Damping:         0.85,
		MaxStep:         10,
		PairBudget:      150_000_000,
		MinIterations:   20,
	}
}

// Result describes what Apply did.
type Result struct {
	LaidOut    bool `json:"laid_out"`
	Iterations int  `json:"iterations"`
	Normalized bool `json:"normalized"`
}

// Apply runs the force layout when the graph needs one, then normalizes the
// coordinate spread.
func Apply(g *graph.Graph, opts Options) Result {
	var res Result
	if g.NeedsLayout() {
		res.Iterations = Force(g, opts)
		res.LaidOut = true
		g.MarkLaidOut()
	}
	res.Normalized = Normalize(g, DefaultNormalizeOptions())
	return res
}

// Force runs the simulation in place and returns the number of iterations run.
func Force(g *graph.Graph, opts Options) int {
	nodes := g.Nodes()
	n := len(nodes)
	if n < 2 {
		return 0
	}

	iterations := budgetIterations(n, opts)

	index := make(map[string]int, n)
	for i, node := range nodes {
		index[node.ID] = i
	}
	type spring struct {
		s, t   int
		weight float64
	}
	springs := make([]spring, 0, len(g.Edges()))
	for _, e := range g.Edges() {
		w := e.Weight
		if w <= 0 {
			w = 1
		}
		springs = append(springs, spring{index[e.Source], index[e.Target], w})
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, node := range nodes {
		xs[i], ys[i] = node.X, node.Y
	}
	vx := make([]float64, n)
	vy := make([]float64, n)

	for iter := 0; iter < iterations; iter++ {
		// Linear cooling keeps late iterations from oscillating.
		step := opts.MaxStep * (1 - float64(iter)/float64(iterations))
		if step <= 0 {
			step = opts.MaxStep / float64(iterations)
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := xs[j] - xs[i]
				dy := ys[j] - ys[i]
				dist2 := dx*dx + dy*dy + 0.01
				force := opts.Repulsion / dist2
				inv := 1 / math.Sqrt(dist2)
				fx := force * dx * inv
				fy := force * dy * inv
				vx[i] -= fx
				vy[i] -= fy
				vx[j] += fx
				vy[j] += fy
			}
		}

		for _, sp := range springs {
			dx := xs[sp.t] - xs[sp.s]
			dy := ys[sp.t] - ys[sp.s]
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist == 0 {
				continue
			}
			f := opts.SpringStiffness * sp.weight * (dist - opts.SpringLength)
			fx := f * dx / dist
			fy := f * dy / dist
			vx[sp.s] += fx
			vy[sp.s] += fy
			vx[sp.t] -= fx
			vy[sp.t] -= fy
		}

		for i := 0; i < n; i++ {
			vx[i] -= xs[i] * opts.Gravity
			vy[i] -= ys[i] * opts.Gravity

			vx[i] *= opts.Damping
			vy[i] *= opts.Damping

			dx, dy := vx[i], vy[i]
			if d := math.Hypot(dx, dy); d > step {
				dx, dy = dx/d*step, dy/d*step
			}
			xs[i] += dx
			ys[i] += dy
		}
	}

	for i, node := range nodes {
		node.X, node.Y = xs[i], ys[i]
	}
	return iterations
}

func budgetIterations(n int, opts Options) int {
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = DefaultOptions().Iterations
	}
	if opts.PairBudget <= 0 {
		return iterations
	}
	pairs := n * (n - 1) / 2
	if pairs > 0 && pairs*iterations > opts.PairBudget {
		iterations = max(opts.PairBudget/pairs, opts.MinIterations, 1)
	}
	return iterations
}
