// Package session owns one render session: the graph built from a payload,
// its layout, camera, interaction state and event routing.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/matsen/whitespace/internal/examples"
	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/interact"
	"github.com/matsen/whitespace/internal/layout"
	"github.com/matsen/whitespace/internal/render"
	"github.com/matsen/whitespace/internal/report"
	"github.com/matsen/whitespace/internal/viewport"
)

// Options configures how sessions are built.
type Options struct {
	Build     graph.BuildOptions
	Layout    layout.Options
	Container viewport.Container
	Viewport  []viewport.Option
	Logger    *slog.Logger
}

// DefaultOptions builds with default settings into a surface of the given size.
func DefaultOptions(width, height float64) Options {
	return Options{
		Build:     graph.DefaultBuildOptions(),
		Layout:    layout.DefaultOptions(),
		Container: viewport.FixedSize{Width: width, Height: height},
	}
}

// Session is the state derived from one payload. Nothing in it outlives a
// payload swap.
type Session struct {
	ID      uuid.UUID
	Payload *graph.Payload
	Graph   *graph.Graph
	State   *render.State
	Camera  *viewport.Controller
	Layer   *interact.Layer

	Layout layout.Result
	Fit    viewport.FitOutcome

	logger   *slog.Logger
	disposed bool
}

// New builds, lays out and fits a session for p.
func New(ctx context.Context, p *graph.Payload, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if p == nil {
		p = &graph.Payload{}
	}
	if opts.Layout == (layout.Options{}) {
		opts.Layout = layout.DefaultOptions()
	}
	container := opts.Container
	if container == nil {
		container = viewport.FixedSize{}
	}

	id := uuid.New()
	s := &Session{
		ID:      id,
		Payload: p,
		Graph:   graph.Build(p.Graph, opts.Build),
		State:   render.NewState(),
		logger:  logger.With("session", id.String()),
	}

	s.Layout = layout.Apply(s.Graph, opts.Layout)
	vpOpts := append([]viewport.Option{viewport.WithLogger(s.logger)}, opts.Viewport...)
	s.Camera = viewport.NewController(container, vpOpts...)
	s.Fit = s.Camera.FitInitial(ctx, s.Graph, nil)
	s.Layer = interact.New(s.Graph, s.State, s.Camera,
		interact.WithSignals(p.Assignees),
		interact.WithLogger(s.logger))

	s.logger.Debug("session built",
		"nodes", s.Graph.Len(),
		"edges", len(s.Graph.Edges()),
		"laid_out", s.Layout.LaidOut,
		"fit_attempts", s.Fit.Attempts)
	return s
}

// Frame reduces the current state into draw attributes.
func (s *Session) Frame() render.Frame {
	return render.Compose(s.Graph, s.State, s.Camera.Camera(), s.Camera.Size())
}

// Dispose detaches event handling. A disposed session ignores further input.
func (s *Session) Dispose() {
	if s.disposed {
		return
	}
	s.Layer.Detach()
	s.disposed = true
}

// Disposed reports whether Dispose was called.
func (s *Session) Disposed() bool { return s.disposed }

// CanExport reports whether there is any evidence that could be exported.
func (s *Session) CanExport() bool {
	return !s.Graph.IsEmpty() && s.State.HighlightActive()
}

// SetSignalFilter dims nodes not tagged with kind; "" clears the filter.
func (s *Session) SetSignalFilter(kind graph.SignalKind) error {
	if kind != "" && !kind.Valid() {
		return fmt.Errorf("unknown signal type %q", kind)
	}
	s.State.SetSignalFilter(kind)
	return nil
}

// SetHighlight replaces the highlight set and fits the camera around it.
// Ids missing from the graph are dropped.
func (s *Session) SetHighlight(ids []string) {
	known := make([]string, 0, len(ids))
	for _, id := range ids {
		if s.Graph.Has(id) {
			known = append(known, id)
		}
	}
	s.State.SetHighlight(known)
	s.Camera.FitTo(s.Graph, s.State.Highlight())
}

// ClearHighlight empties the highlight set and fits the whole graph again.
func (s *Session) ClearHighlight() {
	s.State.ClearHighlight()
	s.Camera.FitTo(s.Graph, nil)
}

// ShowExamples ranks the evidence of one assignee signal and publishes it as
// the highlight set.
func (s *Session) ShowExamples(assignee string, kind graph.SignalKind, mode examples.Mode) ([]examples.Example, error) {
	_, sig, ok := s.Payload.FindSignal(assignee, kind)
	if !ok {
		return nil, fmt.Errorf("no %s signal for assignee %q", kind, assignee)
	}
	picked := examples.Select(s.Graph, sig.NodeIDs, mode)
	examples.Publish(s.State, picked)
	s.Camera.FitTo(s.Graph, s.State.Highlight())
	return picked, nil
}

// Resize handles a change of the surface size.
func (s *Session) Resize() viewport.ResizeAction {
	return s.Camera.OnResize(s.Graph, s.State.Selected() != "", s.State.Highlight())
}

// Evidence assembles the report input for one assignee signal.
func (s *Session) Evidence(assignee string, kind graph.SignalKind, mode examples.Mode, now time.Time) (report.Evidence, error) {
	group, sig, ok := s.Payload.FindSignal(assignee, kind)
	if !ok {
		return report.Evidence{}, fmt.Errorf("no %s signal for assignee %q", kind, assignee)
	}
	picked := examples.Select(s.Graph, sig.NodeIDs, mode)
	if len(picked) == 0 {
		return report.Evidence{}, report.ErrNoEvidence
	}
	return report.Evidence{
		Scope:     s.Payload.Scope,
		Assignee:  group.Assignee,
		Signal:    *sig,
		Mode:      mode,
		Examples:  picked,
		Generated: now,
	}, nil
}
