package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matsen/whitespace/internal/examples"
	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/ui"
)

var (
	exampleAssignee string
	exampleSignal   string
	exampleMode     string
)

func init() {
	addSignalFlags(examplesCmd, &exampleAssignee, &exampleSignal, &exampleMode)
	rootCmd.AddCommand(examplesCmd)
}

// addSignalFlags registers the flags that pick one assignee signal.
func addSignalFlags(cmd *cobra.Command, assignee, signal, mode *string) {
	cmd.Flags().StringVar(assignee, "assignee", "", "Assignee name")
	cmd.Flags().StringVar(signal, "signal", "", "Signal type: focus_shift, emerging_gap, crowd_out, bridge")
	cmd.Flags().StringVar(mode, "mode", string(examples.ModeRelated), "Sort mode: recent or related")
}

var examplesCmd = &cobra.Command{
	Use:   "examples <payload.json>",
	Short: "Rank the example filings behind an assignee signal",
	Long: `Rank the filings that evidence one assignee signal, keeping the top 8.

Modes:
  recent   newest publication first, then score, then density
  related  highest score first, then density, then publication date

Examples:
  ws examples payload.json --assignee "Acme Corp" --signal crowd_out
  ws examples payload.json --assignee "Acme Corp" --signal bridge --mode recent --human`,
	Args: cobra.ExactArgs(1),
	RunE: runExamples,
}

// ExamplesResult is the JSON output for ws examples.
type ExamplesResult struct {
	Assignee string             `json:"assignee"`
	Signal   graph.SignalKind   `json:"signal"`
	Mode     examples.Mode      `json:"mode"`
	Examples []examples.Example `json:"examples"`
}

// parseSignalFlags validates the assignee/signal/mode flag values.
func parseSignalFlags(assignee, signal, mode string) (graph.SignalKind, examples.Mode, error) {
	if assignee == "" {
		return "", "", fmt.Errorf("--assignee is required")
	}
	kind := graph.SignalKind(signal)
	if !kind.Valid() {
		return "", "", fmt.Errorf("invalid signal %q: must be one of focus_shift, emerging_gap, crowd_out, bridge", signal)
	}
	m, err := examples.ParseMode(mode)
	if err != nil {
		return "", "", err
	}
	return kind, m, nil
}

func runExamples(cmd *cobra.Command, args []string) error {
	kind, mode, err := parseSignalFlags(exampleAssignee, exampleSignal, exampleMode)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	cfg := mustLoadConfig()
	m, s := mustLoadSession(cmd.Context(), args[0], sessionOptions(cfg, 0, 0))
	defer m.Close()

	picked, err := s.ShowExamples(exampleAssignee, kind, mode)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if !humanOutput {
		return outputJSON(ExamplesResult{
			Assignee: exampleAssignee,
			Signal:   kind,
			Mode:     mode,
			Examples: picked,
		})
	}
	if len(picked) == 0 {
		fmt.Fprintln(os.Stderr, "No evidence filings in the graph")
		return nil
	}
	ui.Heading(os.Stdout, fmt.Sprintf("%s: %s (%s)", exampleAssignee, kind, mode))
	ui.Table(os.Stdout, []string{"#", "ID", "DATE", "SCORE", "DENSITY", "TITLE"}, exampleRows(picked))
	return nil
}

func exampleRows(picked []examples.Example) [][]string {
	rows := make([][]string, 0, len(picked))
	for _, ex := range picked {
		date := ex.Date
		if date == "" {
			date = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(ex.Rank),
			ex.ID,
			date,
			formatMetric(ex.Score),
			formatMetric(ex.Density),
			truncate(ex.Title, 50),
		})
	}
	return rows
}
