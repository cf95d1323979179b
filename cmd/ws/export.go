package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/whitespace/internal/examples"
	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/pdf"
	"github.com/matsen/whitespace/internal/report"
	"github.com/matsen/whitespace/internal/session"
)

// exportParallelism bounds concurrent report writes for --all.
const exportParallelism = 4

var (
	exportAssignee string
	exportSignal   string
	exportMode     string
	exportAll      bool
	exportDir      string
	exportOutput   string
	exportOpen     bool
)

func init() {
	addSignalFlags(exportCmd, &exportAssignee, &exportSignal, &exportMode)
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Write one report per assignee signal with evidence")
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Directory for generated reports")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Report path (single report only)")
	exportCmd.Flags().BoolVar(&exportOpen, "open", false, "Open written reports in the configured PDF reader")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <payload.json>",
	Short: "Write PDF evidence reports",
	Long: `Write a PDF evidence report for an assignee signal.

The report lists the scope, the signal and its rationale, and the ranked
example filings with lookup URLs. File names are derived from the assignee,
signal and mode unless --output is given.

Examples:
  ws export payload.json --assignee "Acme Corp" --signal crowd_out
  ws export payload.json --assignee "Acme Corp" --signal bridge --mode recent --open
  ws export payload.json --all --mode recent --dir reports/`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

// ExportedReport is one written report.
type ExportedReport struct {
	Path     string `json:"path"`
	Assignee string `json:"assignee"`
	Signal   string `json:"signal"`
	Mode     string `json:"mode"`
	Examples int    `json:"examples"`
	Pages    int    `json:"pages"`
	Bytes    int    `json:"bytes"`
}

// ExportResult is the JSON output for ws export.
type ExportResult struct {
	Reports []ExportedReport `json:"reports"`
	Skipped int              `json:"skipped,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportAll && exportOutput != "" {
		exitWithError(ExitError, "--output cannot be combined with --all")
	}
	var (
		kind graph.SignalKind
		mode examples.Mode
		err  error
	)
	if exportAll {
		mode, err = examples.ParseMode(exportMode)
	} else {
		kind, mode, err = parseSignalFlags(exportAssignee, exportSignal, exportMode)
	}
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	cfg := mustLoadConfig()
	m, s := mustLoadSession(cmd.Context(), args[0], sessionOptions(cfg, 0, 0))
	defer m.Close()

	now := time.Now().UTC()
	var evidence []report.Evidence
	skipped := 0
	if exportAll {
		evidence, skipped = allEvidence(s, mode, now)
		if len(evidence) == 0 {
			exitWithError(ExitDataError, "%v", report.ErrNoEvidence)
		}
	} else {
		ev, err := s.Evidence(exportAssignee, kind, mode, now)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		evidence = []report.Evidence{ev}
	}

	reports, err := writeReports(cmd.Context(), evidence, exportDir, exportOutput)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if exportOpen {
		opener := pdf.NewOpener(cfg.PDFReader)
		for _, r := range reports {
			if err := opener.Open(r.Path); err != nil {
				slog.Warn("could not open report", "path", r.Path, "error", err)
			}
		}
	}

	if humanOutput {
		for _, r := range reports {
			fmt.Printf("Wrote %s (%d examples, %d pages)\n", r.Path, r.Examples, r.Pages)
		}
		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "Skipped %d signals without evidence in the graph\n", skipped)
		}
		return nil
	}
	return outputJSON(ExportResult{Reports: reports, Skipped: skipped})
}

// allEvidence collects the evidence of every assignee signal, counting the
// signals whose filings are all missing from the graph.
func allEvidence(s *session.Session, mode examples.Mode, now time.Time) ([]report.Evidence, int) {
	var out []report.Evidence
	skipped := 0
	for _, group := range s.Payload.Assignees {
		for _, sig := range group.Signals {
			ev, err := s.Evidence(group.Assignee, sig.Type, mode, now)
			if err != nil {
				skipped++
				continue
			}
			out = append(out, ev)
		}
	}
	return out, skipped
}

// writeReports builds and writes one PDF per evidence set. Reports are
// returned in input order.
func writeReports(ctx context.Context, evidence []report.Evidence, dir, output string) ([]ExportedReport, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	paths := reportPaths(evidence, dir, output)
	reports := make([]ExportedReport, len(evidence))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(exportParallelism)
	for i, ev := range evidence {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := writeReport(ev, paths[i])
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// reportPaths assigns each report its file. Names that sanitize to the same
// path get a numeric suffix so no two writes share a file.
func reportPaths(evidence []report.Evidence, dir, output string) []string {
	paths := make([]string, len(evidence))
	used := make(map[string]bool, len(evidence))
	for i, ev := range evidence {
		path := output
		if path == "" {
			path = filepath.Join(dir, report.Filename(ev.Assignee, ev.Signal.Type, ev.Mode))
		}
		base, ext := strings.TrimSuffix(path, filepath.Ext(path)), filepath.Ext(path)
		for n := 2; used[path]; n++ {
			path = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		used[path] = true
		paths[i] = path
	}
	return paths
}

func writeReport(ev report.Evidence, path string) (ExportedReport, error) {
	lines, err := report.EvidenceLines(ev)
	if err != nil {
		return ExportedReport{}, err
	}
	doc, err := report.Build(lines, report.DefaultOptions())
	if err != nil {
		return ExportedReport{}, fmt.Errorf("building report: %w", err)
	}
	if err := os.WriteFile(path, doc.Bytes, 0o644); err != nil {
		return ExportedReport{}, fmt.Errorf("writing %s: %w", path, err)
	}
	return ExportedReport{
		Path:     path,
		Assignee: ev.Assignee,
		Signal:   string(ev.Signal.Type),
		Mode:     string(ev.Mode),
		Examples: len(ev.Examples),
		Pages:    doc.Pages,
		Bytes:    len(doc.Bytes),
	}, nil
}
