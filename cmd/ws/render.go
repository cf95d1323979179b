package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/interact"
	"github.com/matsen/whitespace/internal/layout"
	"github.com/matsen/whitespace/internal/render"
	"github.com/matsen/whitespace/internal/session"
	"github.com/matsen/whitespace/internal/viz"
)

var (
	renderSelect    string
	renderHover     string
	renderFilter    string
	renderHighlight []string
	renderWidth     int
	renderHeight    int
	renderHTML      bool
	renderOutput    string
	renderWatch     bool
)

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderSelect, "select", "", "Click this node: select it and its neighbors")
	f.StringVar(&renderHover, "hover", "", "Hover this node: show its tooltip")
	f.StringVar(&renderFilter, "filter", "", "Dim nodes not tagged with this signal type")
	f.StringSliceVar(&renderHighlight, "highlight", nil, "Highlight these node ids (repeatable)")
	f.IntVar(&renderWidth, "width", 0, "Canvas width in pixels (default from config)")
	f.IntVar(&renderHeight, "height", 0, "Canvas height in pixels (default from config)")
	f.BoolVar(&renderHTML, "html", false, "Write a standalone HTML page instead of frame JSON")
	f.StringVarP(&renderOutput, "output", "o", "", "Output file path (default: stdout)")
	f.BoolVar(&renderWatch, "watch", false, "Re-render whenever the payload file changes")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <payload.json>",
	Short: "Lay out, fit and reduce a payload into a frame",
	Long: `Build a render session from a payload and emit the reduced frame.

The frame carries every node's screen position, size, color and opacity for
the given interaction state.

Examples:
  ws render payload.json
  ws render payload.json --filter crowd_out
  ws render payload.json --select US20210123456A1 --hover US20210123456A1
  ws render payload.json --highlight A,B,C --html -o graph.html
  ws render payload.json --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

// RenderResult is the JSON output for ws render.
type RenderResult struct {
	Session  string                `json:"session"`
	Fit      FitSummary            `json:"fit"`
	Layout   layout.Result         `json:"layout"`
	Frame    render.Frame          `json:"frame"`
	Tooltip  *interact.Tooltip     `json:"tooltip,omitempty"`
	Panel    *interact.DetailPanel `json:"panel,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
}

// FitSummary reports how the initial camera was obtained.
type FitSummary struct {
	Attempts int    `json:"attempts"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// interaction is the state requested on the command line.
type interaction struct {
	Filter    string
	Highlight []string
	Select    string
	Hover     string
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	path := args[0]
	want := interaction{
		Filter:    renderFilter,
		Highlight: renderHighlight,
		Select:    renderSelect,
		Hover:     renderHover,
	}

	m, s := mustLoadSession(cmd.Context(), path, sessionOptions(cfg, renderWidth, renderHeight))
	defer m.Close()

	if err := emitRender(s, want); err != nil {
		return err
	}
	if !renderWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchRender(ctx, path, m, want)
}

func watchRender(ctx context.Context, path string, m *session.Manager, want interaction) error {
	w, err := session.NewWatcher(path, m, func(s *session.Session) {
		if err := emitRender(s, want); err != nil {
			fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("watching payload: %w", err)
	}
	defer w.Stop()

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// applyInteraction replays the requested state through the session the same
// way pointer events would. Ids missing from the graph produce warnings.
func applyInteraction(s *session.Session, want interaction) ([]string, error) {
	var warnings []string
	if want.Filter != "" {
		if err := s.SetSignalFilter(graph.SignalKind(want.Filter)); err != nil {
			return nil, err
		}
	}
	if len(want.Highlight) > 0 {
		known := make([]string, 0, len(want.Highlight))
		for _, id := range want.Highlight {
			if s.Graph.Has(id) {
				known = append(known, id)
			} else {
				warnings = append(warnings, fmt.Sprintf("cannot highlight %q: not in graph", id))
			}
		}
		if len(known) > 0 {
			s.SetHighlight(known)
		}
	}
	if want.Select != "" {
		if !s.Graph.Has(want.Select) {
			warnings = append(warnings, fmt.Sprintf("cannot select %q: not in graph", want.Select))
		}
		s.Layer.NodeClick(want.Select)
	}
	if want.Hover != "" {
		if !s.Graph.Has(want.Hover) {
			warnings = append(warnings, fmt.Sprintf("cannot hover %q: not in graph", want.Hover))
		}
		s.Layer.NodeEnter(want.Hover)
	}
	return warnings, nil
}

func renderResult(s *session.Session, warnings []string) RenderResult {
	res := RenderResult{
		Session: s.ID.String(),
		Fit: FitSummary{
			Attempts: s.Fit.Attempts,
			Fallback: s.Fit.Fallback,
		},
		Layout:   s.Layout,
		Frame:    s.Frame(),
		Panel:    s.Layer.Panel(),
		Warnings: warnings,
	}
	if s.Fit.Err != nil {
		res.Fit.Error = s.Fit.Err.Error()
	}
	if tt := s.Layer.Tooltip(); tt.Visible {
		res.Tooltip = &tt
	}
	return res
}

func emitRender(s *session.Session, want interaction) error {
	warnings, err := applyInteraction(s, want)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	res := renderResult(s, warnings)

	if renderHTML {
		html, err := viz.GenerateHTML(viz.FromFrame(res.Frame, s.Graph), viz.DefaultOptions())
		if err != nil {
			return fmt.Errorf("generating HTML: %w", err)
		}
		return writeOutput(renderOutput, []byte(html))
	}

	if renderOutput != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding frame: %w", err)
		}
		return writeOutput(renderOutput, data)
	}
	if humanOutput {
		printRenderSummary(res)
		return nil
	}
	if renderWatch {
		return outputJSONCompact(res)
	}
	return outputJSON(res)
}

func printRenderSummary(res RenderResult) {
	f := res.Frame
	fmt.Printf("Session %s: %d nodes, %d edges, mode %s\n", res.Session, len(f.Nodes), len(f.Edges), f.Mode)
	fmt.Printf("Camera x=%.2f y=%.2f zoom=%.3f on %gx%g", f.Camera.X, f.Camera.Y, f.Camera.Zoom, f.Size.Width, f.Size.Height)
	if res.Fit.Fallback {
		fmt.Printf(" (default camera after %d attempts)", res.Fit.Attempts)
	}
	fmt.Println()
	if res.Tooltip != nil {
		fmt.Printf("Hover: %s at (%.1f, %.1f)\n", res.Tooltip.NodeID, res.Tooltip.X, res.Tooltip.Y)
	}
	if res.Panel != nil {
		fmt.Printf("Selected: %s (%d neighbors)\n", res.Panel.ID, len(res.Panel.Neighbors))
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}

// writeOutput writes data to path, or stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if humanOutput {
		fmt.Printf("Written to %s\n", path)
		return nil
	}
	return outputJSON(map[string]string{"output": path})
}
