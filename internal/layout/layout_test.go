package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/whitespace/internal/graph"
)

func ring(n int) graph.GraphPayload {
	var p graph.GraphPayload
	for i := 0; i < n; i++ {
		p.Nodes = append(p.Nodes, graph.NodePayload{ID: fmt.Sprintf("n%d", i), ClusterID: i % 3})
	}
	for i := 0; i < n; i++ {
		p.Edges = append(p.Edges, graph.EdgePayload{Source: fmt.Sprintf("n%d", i), Target: fmt.Sprintf("n%d", (i+1)%n)})
	}
	return p
}

func withCoords(coords ...[2]float64) graph.GraphPayload {
	var p graph.GraphPayload
	for i, c := range coords {
		x, y := graph.Metric(c[0]), graph.Metric(c[1])
		p.Nodes = append(p.Nodes, graph.NodePayload{ID: fmt.Sprintf("n%d", i), X: &x, Y: &y})
	}
	return p
}

func positions(g *graph.Graph) [][2]float64 {
	out := make([][2]float64, 0, g.Len())
	for _, n := range g.Nodes() {
		out = append(out, [2]float64{n.X, n.Y})
	}
	return out
}

func spread(g *graph.Graph) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes() {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	return math.Max(maxX-minX, maxY-minY)
}

func TestApply_LaysOutGraphWithoutCoordinates(t *testing.T) {
	g := graph.Build(ring(12), graph.DefaultBuildOptions())
	require.True(t, g.NeedsLayout())

	res := Apply(g, DefaultOptions())

	assert.True(t, res.LaidOut)
	assert.Equal(t, DefaultOptions().Iterations, res.Iterations)
	assert.False(t, g.NeedsLayout())
	for _, n := range g.Nodes() {
		assert.False(t, math.IsNaN(n.X) || math.IsInf(n.X, 0), "x of %s", n.ID)
		assert.False(t, math.IsNaN(n.Y) || math.IsInf(n.Y, 0), "y of %s", n.ID)
	}
	assert.Greater(t, spread(g), 1.0, "nodes must not collapse")
}

func TestApply_SkipsLayoutForWellFormedCoordinates(t *testing.T) {
	g := graph.Build(withCoords([2]float64{0, 0}, [2]float64{10, 5}), graph.DefaultBuildOptions())
	before := positions(g)

	res := Apply(g, DefaultOptions())

	assert.False(t, res.LaidOut)
	assert.False(t, res.Normalized)
	assert.Equal(t, before, positions(g))
}

func TestApply_IsDeterministic(t *testing.T) {
	g1 := graph.Build(ring(8), graph.DefaultBuildOptions())
	g2 := graph.Build(ring(8), graph.DefaultBuildOptions())

	Apply(g1, DefaultOptions())
	Apply(g2, DefaultOptions())

	assert.Equal(t, positions(g1), positions(g2))
}

func TestApply_SingleNode(t *testing.T) {
	g := graph.Build(graph.GraphPayload{Nodes: []graph.NodePayload{{ID: "solo"}}}, graph.DefaultBuildOptions())

	assert.NotPanics(t, func() { Apply(g, DefaultOptions()) })
	n, _ := g.Node("solo")
	assert.Equal(t, 0.0, n.X)
	assert.Equal(t, 0.0, n.Y)
}

func TestApply_EmptyGraph(t *testing.T) {
	g := graph.Build(graph.GraphPayload{}, graph.DefaultBuildOptions())

	res := Apply(g, DefaultOptions())

	assert.Equal(t, Result{}, res)
}

func TestForce_PairBudgetBoundsIterations(t *testing.T) {
	opts := DefaultOptions()
	opts.PairBudget = 45 * 10 // ten iterations worth of pairs for 10 nodes
	opts.MinIterations = 3

	g := graph.Build(ring(10), graph.DefaultBuildOptions())
	assert.Equal(t, 10, Force(g, opts))

	opts.PairBudget = 1
	g = graph.Build(ring(10), graph.DefaultBuildOptions())
	assert.Equal(t, 3, Force(g, opts))
}

func TestForce_ClustersStayTighterThanTheGapBetweenThem(t *testing.T) {
	var p graph.GraphPayload
	for _, prefix := range []string{"a", "b"} {
		for i := 0; i < 4; i++ {
			p.Nodes = append(p.Nodes, graph.NodePayload{ID: fmt.Sprintf("%s%d", prefix, i)})
		}
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				p.Edges = append(p.Edges, graph.EdgePayload{
					Source: fmt.Sprintf("%s%d", prefix, i),
					Target: fmt.Sprintf("%s%d", prefix, j),
				})
			}
		}
	}
	g := graph.Build(p, graph.DefaultBuildOptions())
	Force(g, DefaultOptions())

	var intra, inter []float64
	nodes := g.Nodes()
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			d := math.Hypot(nodes[i].X-nodes[j].X, nodes[i].Y-nodes[j].Y)
			if nodes[i].ID[0] == nodes[j].ID[0] {
				intra = append(intra, d)
			} else {
				inter = append(inter, d)
			}
		}
	}
	mean := func(xs []float64) float64 {
		sum := 0.0
		for _, x := range xs {
			sum += x
		}
		return sum / float64(len(xs))
	}
	assert.Less(t, mean(intra), mean(inter))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		coords     [][2]float64
		wantChange bool
		wantSpread float64
	}{
		{
			name:       "ordinary spread untouched",
			coords:     [][2]float64{{-50, 0}, {50, 20}},
			wantChange: false,
			wantSpread: 100,
		},
		{
			name:       "huge spread rescaled",
			coords:     [][2]float64{{-1e9, 0}, {1e9, 5e8}},
			wantChange: true,
			wantSpread: 200,
		},
		{
			name:       "tiny spread rescaled",
			coords:     [][2]float64{{1e-7, 1e-7}, {3e-7, 2e-7}},
			wantChange: true,
			wantSpread: 200,
		},
		{
			name:       "single point away from origin recentered",
			coords:     [][2]float64{{40, 40}},
			wantChange: true,
			wantSpread: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.Build(withCoords(tt.coords...), graph.DefaultBuildOptions())

			changed := Normalize(g, DefaultNormalizeOptions())

			assert.Equal(t, tt.wantChange, changed)
			assert.InDelta(t, tt.wantSpread, spread(g), 1e-6)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := [][][2]float64{
		{{-1e9, 0}, {1e9, 5e8}, {3, 3}},
		{{1e-7, 1e-7}, {3e-7, 2e-7}},
		{{5, 5}},
		{{-10, 4}, {8, 1}},
	}

	for i, coords := range inputs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			g := graph.Build(withCoords(coords...), graph.DefaultBuildOptions())
			Normalize(g, DefaultNormalizeOptions())
			once := positions(g)

			changed := Normalize(g, DefaultNormalizeOptions())

			assert.False(t, changed)
			twice := positions(g)
			for j := range once {
				assert.InDelta(t, once[j][0], twice[j][0], 1e-9)
				assert.InDelta(t, once[j][1], twice[j][1], 1e-9)
			}
		})
	}
}
