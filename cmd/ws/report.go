package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/whitespace/internal/pdf"
)

func init() {
	reportCmd.AddCommand(reportTextCmd)
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect generated evidence reports",
}

var reportTextCmd = &cobra.Command{
	Use:   "text <report.pdf>",
	Short: "Print the text lines of a report",
	Long: `Extract the drawn text lines of a PDF report, page by page.

Examples:
  ws report text Acme_Corp_crowd_out_related.pdf --human`,
	Args: cobra.ExactArgs(1),
	RunE: runReportText,
}

// ReportText is the JSON output for ws report text.
type ReportText struct {
	Path  string   `json:"path"`
	Pages int      `json:"pages"`
	Lines []string `json:"lines"`
}

func runReportText(cmd *cobra.Command, args []string) error {
	path := args[0]
	lines, err := pdf.ReadLines(path)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", path, err)
	}
	pages, err := pdf.PageCount(path)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", path, err)
	}

	if humanOutput {
		for _, l := range lines {
			fmt.Println(l)
		}
		return nil
	}
	return outputJSON(ReportText{Path: path, Pages: pages, Lines: lines})
}
