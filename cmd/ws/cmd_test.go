package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/whitespace/internal/examples"
	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/pdf"
	"github.com/matsen/whitespace/internal/report"
	"github.com/matsen/whitespace/internal/session"
	"github.com/matsen/whitespace/internal/whitespace"
)

const payloadJSON = `{
  "k": "12",
  "assignees": [
    {"assignee": "Acme Corp", "signals": [
      {"type": "crowd_out", "confidence": 0.7, "why": "crowded", "node_ids": ["A", "B", "missing"]},
      {"type": "bridge", "confidence": 0.2, "why": "thin", "node_ids": ["missing"]}
    ]},
    {"assignee": "Beta Ltd", "signals": [
      {"type": "emerging_gap", "status": "medium", "confidence": 0.4, "node_ids": ["C"]}
    ]}
  ],
  "graph": {
    "nodes": [
      {"id": "A", "x": 0, "y": 0, "score": 2, "title": "Anode", "pub_date": "2020-01-01", "signals": ["crowd_out"]},
      {"id": "B", "x": 10, "y": 0, "score": 4, "title": "Binder", "pub_date": "2022-01-01", "signals": ["crowd_out"]},
      {"id": "C", "x": 5, "y": 8, "score": 1, "title": "Cathode"}
    ],
    "edges": [{"source": "A", "target": "B"}, {"source": "B", "target": "C"}]
  }
}`

func decodePayload(t *testing.T) *graph.Payload {
	t.Helper()
	p, err := graph.Decode(strings.NewReader(payloadJSON))
	require.NoError(t, err)
	return p
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	opts := session.DefaultOptions(600, 400)
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return session.New(context.Background(), decodePayload(t), opts)
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid request", fmt.Errorf("wrap: %w", whitespace.ErrInvalidRequest), ExitDataError},
		{"no evidence", report.ErrNoEvidence, ExitDataError},
		{"auth", &whitespace.APIError{StatusCode: 401, Message: "bad token"}, ExitServiceError},
		{"rate limited", whitespace.ErrRateLimited, ExitServiceError},
		{"network", fmt.Errorf("%w: refused", whitespace.ErrNetworkError), ExitServiceError},
		{"server error", &whitespace.APIError{StatusCode: 500, Message: "boom"}, ExitServiceError},
		{"other", fmt.Errorf("disk full"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}

func requestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "analyze"}
	addRequestFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestBuildRequest_Defaults(t *testing.T) {
	req, err := buildRequest(requestCmd(t))
	require.NoError(t, err)
	assert.Equal(t, whitespace.DefaultGraphRequest(), req)
}

func TestBuildRequest_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.yml")
	content := "date_from: \"2020-01-01\"\nlimit: 300\nfocus_keywords: [battery]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	req, err := buildRequest(requestCmd(t, "--request", path, "--limit", "500", "--no-layout", "--cpc", "H01M"))
	require.NoError(t, err)

	assert.Equal(t, "2020-01-01", req.DateFrom)
	assert.Equal(t, 500, req.Limit)
	assert.Equal(t, []string{"battery"}, req.FocusKeywords)
	assert.Equal(t, []string{"H01M"}, req.FocusCPCLike)
	assert.False(t, req.Layout)
	assert.Equal(t, 15, req.Neighbors)
}

func TestBuildRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"limit too high", []string{"--limit", "2001"}},
		{"neighbors zero", []string{"--neighbors", "0"}},
		{"bad date", []string{"--from", "2020/01/01"}},
		{"reversed dates", []string{"--from", "2024-01-01", "--to", "2020-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildRequest(requestCmd(t, tt.args...))
			assert.ErrorIs(t, err, whitespace.ErrInvalidRequest)
			assert.Equal(t, ExitDataError, exitCodeFor(err))
		})
	}
}

func TestSignalRows(t *testing.T) {
	p := decodePayload(t)

	rows := signalRows(p, "")
	require.Len(t, rows, 3)
	assert.Equal(t, SignalRow{
		Assignee:   "Acme Corp",
		Type:       graph.SignalCrowdOut,
		Status:     graph.StatusStrong,
		Confidence: 0.7,
		Why:        "crowded",
		Evidence:   3,
		InGraph:    2,
	}, rows[0])
	assert.Equal(t, graph.StatusWeak, rows[1].Status)
	assert.Equal(t, 0, rows[1].InGraph)

	beta := signalRows(p, "beta ltd")
	require.Len(t, beta, 1)
	assert.Equal(t, graph.StatusMedium, beta[0].Status)

	assert.Empty(t, signalRows(p, "Nobody"))
}

func TestParseSignalFlags(t *testing.T) {
	kind, mode, err := parseSignalFlags("Acme", "bridge", "recent")
	require.NoError(t, err)
	assert.Equal(t, graph.SignalBridge, kind)
	assert.Equal(t, examples.ModeRecent, mode)

	_, _, err = parseSignalFlags("", "bridge", "recent")
	assert.Error(t, err)
	_, _, err = parseSignalFlags("Acme", "convergence", "recent")
	assert.Error(t, err)
	_, _, err = parseSignalFlags("Acme", "bridge", "newest")
	assert.Error(t, err)
}

func TestApplyInteraction(t *testing.T) {
	s := newSession(t)

	warnings, err := applyInteraction(s, interaction{Select: "B", Hover: "C"})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	res := renderResult(s, warnings)
	assert.Equal(t, "selection", res.Frame.Mode)
	assert.Equal(t, "B", res.Frame.Selected)
	require.NotNil(t, res.Panel)
	assert.Equal(t, "B", res.Panel.ID)
	require.NotNil(t, res.Tooltip)
	assert.Equal(t, "C", res.Tooltip.NodeID)
	assert.Equal(t, s.ID.String(), res.Session)
}

func TestApplyInteraction_Warnings(t *testing.T) {
	s := newSession(t)

	warnings, err := applyInteraction(s, interaction{Highlight: []string{"nope"}, Select: "ghost"})
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
	assert.Equal(t, "default", renderResult(s, warnings).Frame.Mode)

	_, err = applyInteraction(s, interaction{Filter: "convergence"})
	assert.Error(t, err)
}

func TestApplyInteraction_HighlightWins(t *testing.T) {
	s := newSession(t)

	_, err := applyInteraction(s, interaction{Filter: "crowd_out", Highlight: []string{"A", "C"}})
	require.NoError(t, err)

	f := renderResult(s, nil).Frame
	assert.Equal(t, "highlight", f.Mode)
	assert.Equal(t, []string{"A", "C"}, f.Highlight)
}

func TestAllEvidence(t *testing.T) {
	s := newSession(t)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	evidence, skipped := allEvidence(s, examples.ModeRelated, now)

	require.Len(t, evidence, 2)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "Acme Corp", evidence[0].Assignee)
	assert.Equal(t, []string{"B", "A"}, examples.IDs(evidence[0].Examples))
	assert.Equal(t, "Beta Ltd", evidence[1].Assignee)
	assert.Equal(t, "12", evidence[1].Scope)
}

func TestWriteReports(t *testing.T) {
	s := newSession(t)
	evidence, _ := allEvidence(s, examples.ModeRecent, time.Now())
	dir := filepath.Join(t.TempDir(), "reports")

	reports, err := writeReports(context.Background(), evidence, dir, "")
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, filepath.Join(dir, "Acme_Corp_crowd_out_recent.pdf"), reports[0].Path)
	assert.Equal(t, filepath.Join(dir, "Beta_Ltd_emerging_gap_recent.pdf"), reports[1].Path)
	for i, r := range reports {
		assert.Equal(t, 1, r.Pages)
		lines, err := pdf.ReadLines(r.Path)
		require.NoError(t, err)
		want, err := report.EvidenceLines(evidence[i])
		require.NoError(t, err)
		assert.Equal(t, report.Layout(want, report.DefaultOptions().WrapWidth), lines)
	}
}

func TestWriteReports_ExplicitPath(t *testing.T) {
	s := newSession(t)
	ev, err := s.Evidence("Acme Corp", graph.SignalCrowdOut, examples.ModeRelated, time.Now())
	require.NoError(t, err)
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")

	reports, err := writeReports(context.Background(), []report.Evidence{ev}, dir, path)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, path, reports[0].Path)
	assert.Equal(t, 2, reports[0].Examples)
	assert.FileExists(t, path)
}

func TestWriteReports_CollidingNamesGetSuffix(t *testing.T) {
	s := newSession(t)
	ev, err := s.Evidence("Acme Corp", graph.SignalCrowdOut, examples.ModeRecent, time.Now())
	require.NoError(t, err)
	dot, comma := ev, ev
	dot.Assignee, comma.Assignee = "Acme Corp.", "Acme Corp,"
	evidence := []report.Evidence{dot, comma}
	dir := t.TempDir()

	reports, err := writeReports(context.Background(), evidence, dir, "")
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, filepath.Join(dir, "Acme_Corp__crowd_out_recent.pdf"), reports[0].Path)
	assert.Equal(t, filepath.Join(dir, "Acme_Corp__crowd_out_recent_2.pdf"), reports[1].Path)
	for i, r := range reports {
		lines, err := pdf.ReadLines(r.Path)
		require.NoError(t, err)
		want, err := report.EvidenceLines(evidence[i])
		require.NoError(t, err)
		assert.Equal(t, report.Layout(want, report.DefaultOptions().WrapWidth), lines)
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "pdf_reader", normalizeKey("PDF-Reader"))
	assert.Equal(t, "canvas_width", normalizeKey("canvas_width"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
