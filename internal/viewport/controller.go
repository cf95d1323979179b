package viewport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/matsen/whitespace/internal/graph"
)

// Container reports the current size of the rendering surface.
type Container interface {
	Size() Size
}

// FixedSize is a Container whose size never changes.
type FixedSize Size

// Size implements Container.
func (f FixedSize) Size() Size { return Size(f) }

// ContainerFunc adapts a function to Container.
type ContainerFunc func() Size

// Size implements Container.
func (f ContainerFunc) Size() Size { return f() }

// FitOutcome records how a fit ended.
type FitOutcome struct {
	Camera   Camera `json:"camera"`
	Attempts int    `json:"attempts"`
	Fallback bool   `json:"fallback"`
	Err      error  `json:"-"`
}

// ResizeAction tells the render loop what a resize requires.
type ResizeAction int

const (
	// ResizeRefit means the camera was fitted again.
	ResizeRefit ResizeAction = iota
	// ResizeRedraw means only a redraw is needed; the camera was kept.
	ResizeRedraw
)

func (a ResizeAction) String() string {
	if a == ResizeRefit {
		return "refit"
	}
	return "redraw"
}

// Controller owns the camera of one render session.
type Controller struct {
	container Container
	opts      FitOptions
	policy    RetryPolicy
	sleep     Sleeper
	logger    *slog.Logger
	camera    Camera
}

// Option configures a Controller.
type Option func(*Controller)

// WithFitOptions overrides the fill fraction and zoom clamp.
func WithFitOptions(opts FitOptions) Option {
	return func(c *Controller) { c.opts = opts }
}

// WithRetryPolicy overrides the initial-fit retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithSleeper replaces the timer used between attempts (for testing).
func WithSleeper(s Sleeper) Option {
	return func(c *Controller) { c.sleep = s }
}

// WithLogger sets the logger used for fallbacks.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates a controller for the given surface.
func NewController(container Container, opts ...Option) *Controller {
	c := &Controller{
		container: container,
		opts:      DefaultFitOptions(),
		policy:    DefaultRetryPolicy(),
		sleep:     TimerSleep,
		logger:    slog.Default(),
		camera:    DefaultCamera(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Camera returns the current camera.
func (c *Controller) Camera() Camera { return c.camera }

// Size returns the current surface size.
func (c *Controller) Size() Size { return c.safeSize() }

// FitInitial fits the camera when a session starts, retrying with backoff while
// the surface has no size. With a non-empty highlight the fit targets only the
// highlighted nodes. If every attempt fails the camera falls back to
// DefaultCamera and a warning is logged.
func (c *Controller) FitInitial(ctx context.Context, g *graph.Graph, highlight []string) FitOutcome {
	b, ok := fitTarget(g, highlight)
	if !ok {
		return c.fallback(0, ErrEmptyBounds)
	}

	attempts := max(c.policy.MaxAttempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		cam, err := c.attempt(b)
		if err == nil {
			c.camera = cam
			return FitOutcome{Camera: cam, Attempts: attempt}
		}
		lastErr = err
		c.logger.Debug("viewport fit attempt failed", "attempt", attempt, "error", err)

		if attempt == attempts {
			break
		}
		if err := c.sleep(ctx, c.policy.Delay(attempt)); err != nil {
			return c.fallback(attempt, err)
		}
	}
	return c.fallback(attempts, lastErr)
}

// FitTo fits the camera once around the given ids (all nodes when empty). On
// failure the camera is left unchanged.
func (c *Controller) FitTo(g *graph.Graph, ids []string) FitOutcome {
	b, ok := fitTarget(g, ids)
	if !ok {
		return FitOutcome{Camera: c.camera, Attempts: 0, Err: ErrEmptyBounds}
	}
	cam, err := c.attempt(b)
	if err != nil {
		return FitOutcome{Camera: c.camera, Attempts: 1, Err: err}
	}
	c.camera = cam
	return FitOutcome{Camera: cam, Attempts: 1}
}

// OnResize handles one resize event. An active selection keeps its camera and
// only asks for a redraw; otherwise the camera is fitted once again.
func (c *Controller) OnResize(g *graph.Graph, selectionActive bool, highlight []string) ResizeAction {
	if selectionActive {
		return ResizeRedraw
	}
	if out := c.FitTo(g, highlight); out.Err != nil {
		c.logger.Debug("viewport refit skipped", "error", out.Err)
		return ResizeRedraw
	}
	return ResizeRefit
}

// CenterOn moves the camera to a world point without changing zoom.
func (c *Controller) CenterOn(x, y float64) {
	c.camera.X, c.camera.Y = x, y
}

// Reset restores the neutral camera.
func (c *Controller) Reset() {
	c.camera = DefaultCamera()
}

func fitTarget(g *graph.Graph, ids []string) (Bounds, bool) {
	if g == nil {
		return Bounds{}, false
	}
	if len(ids) > 0 {
		if b, ok := NodeBounds(g, ids); ok {
			return b, true
		}
	}
	return NodeBounds(g, nil)
}

// attempt runs one fit; a panicking container counts as a failed attempt.
func (c *Controller) attempt(b Bounds) (cam Camera, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fit attempt panicked: %v", r)
		}
	}()
	return Fit(b, c.container.Size(), c.opts)
}

func (c *Controller) safeSize() (s Size) {
	defer func() {
		if r := recover(); r != nil {
			s = Size{}
		}
	}()
	return c.container.Size()
}

func (c *Controller) fallback(attempts int, err error) FitOutcome {
	c.camera = DefaultCamera()
	level := slog.LevelWarn
	if errors.Is(err, ErrEmptyBounds) {
		level = slog.LevelDebug
	}
	c.logger.Log(context.Background(), level, "viewport fit fell back to default camera",
		"attempts", attempts, "error", err)
	return FitOutcome{Camera: c.camera, Attempts: attempts, Fallback: true, Err: err}
}
