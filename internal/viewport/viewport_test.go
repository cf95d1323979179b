package viewport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/whitespace/internal/graph"
)

func buildGraph(coords map[string][2]float64) *graph.Graph {
	var p graph.GraphPayload
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		c, ok := coords[id]
		if !ok {
			continue
		}
		x, y := graph.Metric(c[0]), graph.Metric(c[1])
		p.Nodes = append(p.Nodes, graph.NodePayload{ID: id, X: &x, Y: &y})
	}
	return graph.Build(p, graph.DefaultBuildOptions())
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestFit(t *testing.T) {
	tests := []struct {
		name    string
		bounds  Bounds
		size    Size
		want    Camera
		wantErr error
	}{
		{
			name:   "width limited",
			bounds: Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50},
			size:   Size{Width: 800, Height: 600},
			want:   Camera{X: 50, Y: 25, Zoom: 6.8},
		},
		{
			name:   "height limited",
			bounds: Bounds{MinX: -10, MinY: -100, MaxX: 10, MaxY: 100},
			size:   Size{Width: 800, Height: 400},
			want:   Camera{X: 0, Y: 0, Zoom: 1.7},
		},
		{
			name:   "single point keeps neutral zoom",
			bounds: Bounds{MinX: 3, MinY: 4, MaxX: 3, MaxY: 4},
			size:   Size{Width: 800, Height: 600},
			want:   Camera{X: 3, Y: 4, Zoom: 1},
		},
		{
			name:   "zoom clamped",
			bounds: Bounds{MinX: 0, MinY: 0, MaxX: 1e-6, MaxY: 1e-6},
			size:   Size{Width: 800, Height: 600},
			want:   Camera{X: 5e-7, Y: 5e-7, Zoom: 50},
		},
		{
			name:    "zero size",
			bounds:  Bounds{MaxX: 1, MaxY: 1},
			size:    Size{Width: 0, Height: 600},
			wantErr: ErrContainerNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fit(tt.bounds, tt.size, DefaultFitOptions())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Zoom, got.Zoom, 1e-9)
		})
	}
}

func TestCamera_ScreenRoundTrip(t *testing.T) {
	cam := Camera{X: 12, Y: -3, Zoom: 2.5}
	s := Size{Width: 640, Height: 480}

	sx, sy := cam.WorldToScreen(20, 7, s)
	x, y := cam.ScreenToWorld(sx, sy, s)

	assert.InDelta(t, 20, x, 1e-9)
	assert.InDelta(t, 7, y, 1e-9)

	cx, cy := cam.WorldToScreen(cam.X, cam.Y, s)
	assert.Equal(t, 320.0, cx)
	assert.Equal(t, 240.0, cy)
}

func TestNodeBounds(t *testing.T) {
	g := buildGraph(map[string][2]float64{"a": {0, 0}, "b": {10, -5}, "c": {4, 20}})

	b, ok := NodeBounds(g, nil)
	require.True(t, ok)
	assert.Equal(t, Bounds{MinX: 0, MinY: -5, MaxX: 10, MaxY: 20}, b)

	b, ok = NodeBounds(g, []string{"a", "b", "missing"})
	require.True(t, ok)
	assert.Equal(t, Bounds{MinX: 0, MinY: -5, MaxX: 10, MaxY: 0}, b)

	_, ok = NodeBounds(g, []string{"missing"})
	assert.False(t, ok)
}

func TestRetryPolicy_Schedule(t *testing.T) {
	p := DefaultRetryPolicy()

	sched := p.Schedule()

	require.Len(t, sched, p.MaxAttempts-1)
	assert.Equal(t, 16*time.Millisecond, sched[0])
	assert.Equal(t, 32*time.Millisecond, sched[1])
	var total time.Duration
	for i, d := range sched {
		assert.LessOrEqual(t, d, p.MaxDelay)
		if i > 0 {
			assert.GreaterOrEqual(t, d, sched[i-1])
		}
		total += d
	}
	assert.Less(t, total, 3*time.Second)
}

func TestFitInitial_ReadyContainer(t *testing.T) {
	g := buildGraph(map[string][2]float64{"a": {0, 0}, "b": {100, 50}})
	c := NewController(FixedSize{Width: 800, Height: 600}, WithLogger(quietLogger()))

	out := c.FitInitial(context.Background(), g, nil)

	require.NoError(t, out.Err)
	assert.False(t, out.Fallback)
	assert.Equal(t, 1, out.Attempts)
	assert.InDelta(t, 6.8, out.Camera.Zoom, 1e-9)
	assert.Equal(t, out.Camera, c.Camera())
}

func TestFitInitial_RetriesUntilContainerHasSize(t *testing.T) {
	g := buildGraph(map[string][2]float64{"a": {0, 0}, "b": {100, 50}})
	calls := 0
	container := ContainerFunc(func() Size {
		calls++
		if calls < 3 {
			return Size{}
		}
		return Size{Width: 800, Height: 600}
	})
	sleeper := &recordingSleeper{}
	c := NewController(container, WithSleeper(sleeper.sleep), WithLogger(quietLogger()))

	out := c.FitInitial(context.Background(), g, nil)

	require.NoError(t, out.Err)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, DefaultRetryPolicy().Schedule()[:2], sleeper.delays)
}

func TestFitInitial_FallsBackAfterSchedule(t *testing.T) {
	g := buildGraph(map[string][2]float64{"a": {0, 0}, "b": {100, 50}})
	sleeper := &recordingSleeper{}
	var logs bytes.Buffer
	c := NewController(FixedSize{},
		WithSleeper(sleeper.sleep),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	out := c.FitInitial(context.Background(), g, nil)

	assert.True(t, out.Fallback)
	assert.ErrorIs(t, out.Err, ErrContainerNotReady)
	assert.Equal(t, DefaultRetryPolicy().MaxAttempts, out.Attempts)
	assert.Equal(t, DefaultRetryPolicy().Schedule(), sleeper.delays)
	assert.Equal(t, DefaultCamera(), c.Camera())
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "fell back")
}

func TestFitInitial_PanickingContainerIsSwallowed(t *testing.T) {
	g := buildGraph(map[string][2]float64{"a": {0, 0}, "b": {1, 1}})
	container := ContainerFunc(func() Size { panic("detached") })
	c := NewController(container,
		WithRetryPolicy(RetryPolicy{MaxAttempts: 2, InitialDelay: time.Millisecond}),
		WithSleeper((&recordingSleeper{}).sleep),
		WithLogger(quietLogger()))

	var out FitOutcome
	require.NotPanics(t, func() { out = c.FitInitial(context.Background(), g, nil) })

	assert.True(t, out.Fallback)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, DefaultCamera(), c.Camera())
}

func TestFitInitial_CancelledContextStopsRetrying(t *testing.T) {
	g := buildGraph(map[string][2]float64{"a": {0, 0}, "b": {1, 1}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewController(FixedSize{}, WithLogger(quietLogger()))

	out := c.FitInitial(ctx, g, nil)

	assert.True(t, out.Fallback)
	assert.Equal(t, 1, out.Attempts)
	assert.True(t, errors.Is(out.Err, context.Canceled))
}

func TestFitInitial_EmptyGraphFallsBackImmediately(t *testing.T) {
	g := graph.Build(graph.GraphPayload{}, graph.DefaultBuildOptions())
	sleeper := &recordingSleeper{}
	c := NewController(FixedSize{Width: 800, Height: 600}, WithSleeper(sleeper.sleep), WithLogger(quietLogger()))

	out := c.FitInitial(context.Background(), g, nil)

	assert.True(t, out.Fallback)
	assert.ErrorIs(t, out.Err, ErrEmptyBounds)
	assert.Empty(t, sleeper.delays)
	assert.Equal(t, DefaultCamera(), out.Camera)
}

func TestFitInitial_SingleNode(t *testing.T) {
	g := buildGraph(map[string][2]float64{"a": {7, 9}})
	c := NewController(FixedSize{Width: 800, Height: 600}, WithLogger(quietLogger()))

	out := c.FitInitial(context.Background(), g, nil)

	require.NoError(t, out.Err)
	assert.Equal(t, Camera{X: 7, Y: 9, Zoom: 1}, out.Camera)
}

func TestFitInitial_HighlightTargetsSubset(t *testing.T) {
	g := buildGraph(map[string][2]float64{"a": {0, 0}, "b": {20, 0}, "c": {500, 500}, "d": {4, 0}})
	c := NewController(FixedSize{Width: 800, Height: 600}, WithLogger(quietLogger()))

	out := c.FitInitial(context.Background(), g, []string{"a", "b"})

	require.NoError(t, out.Err)
	assert.Equal(t, 10.0, out.Camera.X)
	assert.Equal(t, 0.0, out.Camera.Y)
	assert.InDelta(t, 800*0.85/20, out.Camera.Zoom, 1e-9)

	// A tight highlight still honors the zoom clamp.
	out = c.FitInitial(context.Background(), g, []string{"a", "d"})
	require.NoError(t, out.Err)
	assert.Equal(t, 2.0, out.Camera.X)
	assert.Equal(t, DefaultFitOptions().MaxZoom, out.Camera.Zoom)

	// An unknown highlight falls back to the whole graph.
	out = c.FitInitial(context.Background(), g, []string{"zzz"})
	require.NoError(t, out.Err)
	assert.Equal(t, 250.0, out.Camera.X)
}

func TestOnResize(t *testing.T) {
	g := buildGraph(map[string][2]float64{"a": {0, 0}, "b": {100, 50}})
	size := Size{Width: 800, Height: 600}
	c := NewController(ContainerFunc(func() Size { return size }), WithLogger(quietLogger()))
	c.FitInitial(context.Background(), g, nil)
	first := c.Camera()

	size = Size{Width: 400, Height: 300}
	assert.Equal(t, ResizeRefit, c.OnResize(g, false, nil))
	assert.InDelta(t, first.Zoom/2, c.Camera().Zoom, 1e-9)

	c.CenterOn(1, 2)
	kept := c.Camera()
	size = Size{Width: 1600, Height: 1200}
	assert.Equal(t, ResizeRedraw, c.OnResize(g, true, nil))
	assert.Equal(t, kept, c.Camera())

	size = Size{}
	assert.Equal(t, ResizeRedraw, c.OnResize(g, false, nil))
	assert.Equal(t, kept, c.Camera())
}

func TestCenterOn_KeepsZoom(t *testing.T) {
	c := NewController(FixedSize{Width: 100, Height: 100}, WithLogger(quietLogger()))
	c.camera = Camera{X: 1, Y: 1, Zoom: 3}

	c.CenterOn(40, -8)

	assert.Equal(t, Camera{X: 40, Y: -8, Zoom: 3}, c.Camera())
}

func TestResizeAction_String(t *testing.T) {
	for _, a := range []ResizeAction{ResizeRefit, ResizeRedraw} {
		assert.NotEmpty(t, fmt.Sprint(a))
	}
}
