package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/ui"
)

var signalsAssignee string

func init() {
	signalsCmd.Flags().StringVar(&signalsAssignee, "assignee", "", "Only list signals of this assignee")
	rootCmd.AddCommand(signalsCmd)
}

var signalsCmd = &cobra.Command{
	Use:   "signals <payload.json>",
	Short: "List assignee signals in a payload",
	Long: `List every assignee signal with its status, confidence and how many of
its evidence filings are present in the graph.

Examples:
  ws signals payload.json
  ws signals payload.json --assignee "Acme Corp" --human`,
	Args: cobra.ExactArgs(1),
	RunE: runSignals,
}

// SignalRow is one signal in ws signals output.
type SignalRow struct {
	Assignee   string             `json:"assignee"`
	Type       graph.SignalKind   `json:"type"`
	Status     graph.SignalStatus `json:"status"`
	Confidence float64            `json:"confidence"`
	Why        string             `json:"why,omitempty"`
	Evidence   int                `json:"evidence"`
	InGraph    int                `json:"in_graph"`
}

func runSignals(cmd *cobra.Command, args []string) error {
	p, err := graph.Load(args[0])
	if err != nil {
		exitWithError(ExitDataError, "loading payload: %v", err)
	}

	rows := signalRows(p, signalsAssignee)
	if signalsAssignee != "" && len(rows) == 0 {
		exitWithError(ExitDataError, "no signals for assignee %q", signalsAssignee)
	}

	if !humanOutput {
		return outputJSON(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No signals in payload")
		return nil
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{
			truncate(r.Assignee, 30),
			string(r.Type),
			ui.Status(r.Status),
			fmt.Sprintf("%.2f", r.Confidence),
			fmt.Sprintf("%d/%d", r.InGraph, r.Evidence),
			truncate(r.Why, 50),
		})
	}
	ui.Table(os.Stdout, []string{"ASSIGNEE", "SIGNAL", "STATUS", "CONF", "IN GRAPH", "WHY"}, table)
	return nil
}

// signalRows flattens the payload's assignee signals. An empty assignee
// matches every group; otherwise matching is case-insensitive.
func signalRows(p *graph.Payload, assignee string) []SignalRow {
	present := make(map[string]bool, len(p.Graph.Nodes))
	for _, n := range p.Graph.Nodes {
		present[n.ID] = true
	}

	rows := []SignalRow{}
	for _, group := range p.Assignees {
		if assignee != "" && !strings.EqualFold(group.Assignee, assignee) {
			continue
		}
		for _, sig := range group.Signals {
			in := 0
			for _, id := range sig.NodeIDs {
				if present[id] {
					in++
				}
			}
			rows = append(rows, SignalRow{
				Assignee:   group.Assignee,
				Type:       sig.Type,
				Status:     sig.Status,
				Confidence: sig.Confidence,
				Why:        sig.Why,
				Evidence:   len(sig.NodeIDs),
				InGraph:    in,
			})
		}
	}
	return rows
}
