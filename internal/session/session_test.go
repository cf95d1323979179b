package session

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/whitespace/internal/examples"
	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/render"
	"github.com/matsen/whitespace/internal/report"
	"github.com/matsen/whitespace/internal/viewport"
)

const payloadJSON = `{
  "k": "7",
  "assignees": [{
    "assignee": "Acme Corp",
    "signals": [
      {"type": "crowd_out", "status": "strong", "confidence": 0.8, "why": "crowded", "node_ids": ["A", "B", "C"]},
      {"type": "bridge", "confidence": 0.1, "why": "few links", "node_ids": ["ghost"]}
    ]
  }],
  "graph": {
    "nodes": [
      {"id": "A", "score": 1, "cluster_id": 0, "pub_date": "2019-01-01", "signals": ["crowd_out"]},
      {"id": "B", "score": 5, "cluster_id": 0, "pub_date": "2023-06-01", "signals": ["crowd_out"]},
      {"id": "C", "score": 3, "cluster_id": 1, "pub_date": "2021-03-15"},
      {"id": "D", "score": 2, "cluster_id": 1}
    ],
    "edges": [{"source": "A", "target": "B"}, {"source": "X", "target": "A"}, {"source": "C", "target": "D"}]
  }
}`

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() Options {
	opts := DefaultOptions(800, 600)
	opts.Logger = quiet()
	return opts
}

func decode(t *testing.T, js string) *graph.Payload {
	t.Helper()
	p, err := graph.Decode(strings.NewReader(js))
	require.NoError(t, err)
	return p
}

func TestNew_BuildsLaysOutAndFits(t *testing.T) {
	s := New(context.Background(), decode(t, payloadJSON), testOptions())

	assert.Equal(t, 4, s.Graph.Len())
	assert.Len(t, s.Graph.Edges(), 2)
	assert.True(t, s.Layout.LaidOut)
	assert.False(t, s.Fit.Fallback)
	assert.NoError(t, s.Fit.Err)

	f := s.Frame()
	assert.Len(t, f.Nodes, 4)
	assert.Equal(t, "default", f.Mode)
	for _, n := range f.Nodes {
		assert.GreaterOrEqual(t, n.SX, 0.0)
		assert.LessOrEqual(t, n.SX, 800.0)
		assert.GreaterOrEqual(t, n.SY, 0.0)
		assert.LessOrEqual(t, n.SY, 600.0)
	}
}

func TestNew_EmptyPayload(t *testing.T) {
	s := New(context.Background(), decode(t, `{"nodes": [], "edges": []}`), testOptions())

	assert.True(t, s.Graph.IsEmpty())
	assert.True(t, s.Fit.Fallback)
	assert.Equal(t, viewport.DefaultCamera(), s.Camera.Camera())
	assert.False(t, s.CanExport())
	assert.Empty(t, s.Frame().Nodes)
}

func TestNew_SingleNode(t *testing.T) {
	s := New(context.Background(), decode(t, `{"nodes": [{"id": "solo"}]}`), testOptions())

	assert.False(t, s.Fit.Fallback)
	assert.Equal(t, 1.0, s.Camera.Camera().Zoom)
}

func TestShowExamples_PublishesHighlight(t *testing.T) {
	s := New(context.Background(), decode(t, payloadJSON), testOptions())

	picked, err := s.ShowExamples("acme corp", graph.SignalCrowdOut, examples.ModeRecent)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A"}, examples.IDs(picked))
	assert.Equal(t, render.ModeHighlight, s.State.Mode())
	assert.True(t, s.CanExport())

	b, ok := viewport.NodeBounds(s.Graph, []string{"A", "B", "C"})
	require.True(t, ok)
	cx, cy := b.Center()
	assert.InDelta(t, cx, s.Camera.Camera().X, 1e-9)
	assert.InDelta(t, cy, s.Camera.Camera().Y, 1e-9)

	s.ClearHighlight()
	assert.Equal(t, render.ModeDefault, s.State.Mode())

	_, err = s.ShowExamples("Acme Corp", graph.SignalFocusShift, examples.ModeRecent)
	assert.Error(t, err)
}

func TestSetHighlight_DropsUnknownIDs(t *testing.T) {
	s := New(context.Background(), decode(t, payloadJSON), testOptions())
	before := s.Camera.Camera()

	s.SetHighlight([]string{"ghost"})
	assert.Equal(t, render.ModeDefault, s.State.Mode())
	assert.Nil(t, s.State.Highlight())
	assert.Equal(t, before, s.Camera.Camera())

	s.SetHighlight([]string{"ghost", "A"})
	assert.Equal(t, render.ModeHighlight, s.State.Mode())
	assert.Equal(t, []string{"A"}, s.State.Highlight())
}

func TestSetSignalFilter(t *testing.T) {
	s := New(context.Background(), decode(t, payloadJSON), testOptions())

	require.NoError(t, s.SetSignalFilter(graph.SignalCrowdOut))
	assert.Equal(t, render.ModeSignalFilter, s.State.Mode())
	assert.Error(t, s.SetSignalFilter("convergence"))
	require.NoError(t, s.SetSignalFilter(""))
	assert.Equal(t, render.ModeDefault, s.State.Mode())
}

func TestResize_SelectionOnlyRedraws(t *testing.T) {
	size := viewport.Size{Width: 800, Height: 600}
	opts := testOptions()
	opts.Container = viewport.ContainerFunc(func() viewport.Size { return size })
	s := New(context.Background(), decode(t, payloadJSON), opts)

	s.Layer.NodeClick("B")
	cam := s.Camera.Camera()
	size = viewport.Size{Width: 300, Height: 200}

	assert.Equal(t, viewport.ResizeRedraw, s.Resize())
	assert.Equal(t, cam, s.Camera.Camera())

	s.Layer.BackgroundClick()
	assert.Equal(t, viewport.ResizeRefit, s.Resize())
}

func TestEvidence_ToReport(t *testing.T) {
	s := New(context.Background(), decode(t, payloadJSON), testOptions())
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ev, err := s.Evidence("Acme Corp", graph.SignalCrowdOut, examples.ModeRelated, now)
	require.NoError(t, err)
	assert.Equal(t, "7", ev.Scope)
	assert.Equal(t, graph.StatusStrong, ev.Signal.Status)
	assert.Equal(t, []string{"B", "C", "A"}, examples.IDs(ev.Examples))

	lines, err := report.EvidenceLines(ev)
	require.NoError(t, err)
	doc, err := report.Build(lines, report.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Pages)

	// The bridge signal only cites a filing missing from the graph.
	_, err = s.Evidence("Acme Corp", graph.SignalBridge, examples.ModeRecent, now)
	assert.ErrorIs(t, err, report.ErrNoEvidence)
}

func TestManager_ReplaceDisposesPrevious(t *testing.T) {
	m := NewManager(testOptions())
	assert.Nil(t, m.Current())

	first := m.Replace(context.Background(), decode(t, payloadJSON))
	first.Layer.NodeClick("A")
	second := m.Replace(context.Background(), decode(t, `{"nodes": [{"id": "Z"}]}`))

	assert.True(t, first.Disposed())
	assert.True(t, first.Layer.Detached())
	assert.False(t, second.Disposed())
	assert.NotEqual(t, first.ID, second.ID)
	assert.Same(t, second, m.Current())
	assert.Empty(t, second.State.Selected())

	// Events aimed at the old session change nothing.
	first.Layer.NodeClick("B")
	assert.Equal(t, "A", first.State.Selected())

	m.Close()
	assert.Nil(t, m.Current())
	assert.True(t, second.Disposed())
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(payloadJSON), 0o644))

	m := NewManager(testOptions())
	m.Replace(context.Background(), decode(t, payloadJSON))

	swaps := make(chan *Session, 4)
	w, err := NewWatcher(path, m, func(s *Session) { swaps <- s },
		WithDebounce(20*time.Millisecond), WithWatchLogger(quiet()))
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes": [{"id": "N1"}, {"id": "N2"}]}`), 0o644))

	select {
	case s := <-swaps:
		assert.Equal(t, 2, s.Graph.Len())
		assert.Same(t, s, m.Current())
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after payload write")
	}
}
