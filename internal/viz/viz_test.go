package viz

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/render"
	"github.com/matsen/whitespace/internal/viewport"
)

func buildFrame(t *testing.T, highlight []string) (render.Frame, *graph.Graph) {
	t.Helper()
	p, err := graph.Decode(strings.NewReader(`{"nodes": [
		{"id": "US2021123456A1", "x": 0, "y": 0, "score": 1, "title": "Widget <b>", "assignee": "Acme", "signals": ["bridge"]},
		{"id": "B", "x": 10, "y": 10, "score": 2},
		{"id": "C", "x": -10, "y": 5, "score": 3}
	], "edges": [{"source": "US2021123456A1", "target": "B"}]}`))
	require.NoError(t, err)
	g := graph.Build(p.Graph, graph.DefaultBuildOptions())

	size := viewport.Size{Width: 400, Height: 300}
	c := viewport.NewController(viewport.FixedSize(size))
	c.FitInitial(context.Background(), g, nil)

	s := render.NewState()
	s.SetHighlight(highlight)
	return render.Compose(g, s, c.Camera(), size), g
}

func TestFromFrame(t *testing.T) {
	f, g := buildFrame(t, []string{"B"})

	d := FromFrame(f, g)

	assert.Equal(t, "highlight", d.Mode)
	assert.Equal(t, 400.0, d.Width)
	require.Len(t, d.Nodes, 3)
	require.Len(t, d.Edges, 1)

	first := d.Nodes[0]
	assert.Equal(t, f.Nodes[0].SX, first.X)
	assert.Equal(t, f.Nodes[0].SY, first.Y)
	assert.Equal(t, "Widget <b>", first.Title)
	assert.Equal(t, "Acme", first.Assignee)
	assert.Equal(t, []string{"bridge"}, first.Signals)
	assert.Equal(t, "https://patents.google.com/patent/US20210123456A1/en", first.URL)
	assert.Zero(t, first.BorderWidth)

	b := d.Nodes[1]
	assert.Equal(t, float64(borderWidth), b.BorderWidth)
	assert.Equal(t, render.HighlightBorder, b.BorderColor)
	assert.Equal(t, f.Edges[0].Opacity, d.Edges[0].Opacity)
}

func TestToCytoscapeJSON_PresetPositions(t *testing.T) {
	d := &GraphData{
		Nodes: []Node{{ID: "a", X: 12.5, Y: 7}},
		Edges: []Edge{{Source: "a", Target: "a", Width: 1}},
	}

	js, err := d.ToCytoscapeJSON()
	require.NoError(t, err)

	assert.Contains(t, js, `"position":{"x":12.5,"y":7}`)
	assert.Contains(t, js, `"id":"a-a-0"`)
	assert.Contains(t, js, `"source":"a"`)
}

func TestGenerateHTML(t *testing.T) {
	f, g := buildFrame(t, nil)

	html, err := GenerateHTML(FromFrame(f, g), DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, DefaultScriptURL)
	assert.Contains(t, html, "name: 'preset'")
	assert.Contains(t, html, "width: 400px; height: 300px;")
	assert.Contains(t, html, "US2021123456A1")
	// Node text is JSON inside a script; it must not close or open tags.
	assert.NotContains(t, html, "Widget <b>")
}

func TestGenerateHTML_Empty(t *testing.T) {
	html, err := GenerateHTML(&GraphData{}, HTMLOptions{})
	require.NoError(t, err)
	assert.Contains(t, html, "No nodes to display.")
	assert.Contains(t, html, DefaultScriptURL)
}

func TestGenerateHTML_Nil(t *testing.T) {
	_, err := GenerateHTML(nil, DefaultOptions())
	assert.Error(t, err)
}
