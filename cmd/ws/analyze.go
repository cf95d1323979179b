package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matsen/whitespace/internal/config"
	"github.com/matsen/whitespace/internal/whitespace"
)

var analyzeOutput string

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write the payload to this file instead of stdout")
	addRequestFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// addRequestFlags registers the GraphRequest flags.
func addRequestFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("request", "", "YAML file with request fields (flags override it)")
	f.String("from", "", "Earliest publication date (YYYY-MM-DD)")
	f.String("to", "", "Latest publication date (YYYY-MM-DD)")
	f.Int("neighbors", 0, "Similarity neighbors per node (1-50)")
	f.Int("limit", 0, "Maximum filings in the graph (1-2000)")
	f.Float64("resolution", 0, "Clustering resolution")
	f.StringSlice("keyword", nil, "Focus keyword (repeatable)")
	f.StringSlice("cpc", nil, "Focus CPC prefix (repeatable)")
	f.Bool("no-layout", false, "Skip server-side layout")
	f.Bool("debug", false, "Ask the service for debug detail")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a whitespace analysis and write the graph payload",
	Long: `Send a graph request to the whitespace service and write the payload JSON.

Requests are validated before anything is sent.

Examples:
  ws analyze --from 2020-01-01 --to 2024-12-31 --keyword battery -o payload.json
  ws analyze --request req.yml --limit 500`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	req, err := buildRequest(cmd)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	client := newClient(cfg)
	res, err := client.Graph(cmd.Context(), req)
	if err != nil {
		exitWithError(exitCodeFor(err), "analysis failed: %v", err)
	}

	if analyzeOutput == "" {
		_, err := os.Stdout.Write(append(res.Raw, '\n'))
		return err
	}
	if err := os.WriteFile(analyzeOutput, res.Raw, 0o644); err != nil {
		return fmt.Errorf("writing payload: %w", err)
	}
	if humanOutput {
		fmt.Printf("Wrote %d filings, %d links, %d assignees to %s\n",
			len(res.Payload.Graph.Nodes), len(res.Payload.Graph.Edges), len(res.Payload.Assignees), analyzeOutput)
		return nil
	}
	return outputJSON(AnalyzeResult{
		Output:    analyzeOutput,
		Nodes:     len(res.Payload.Graph.Nodes),
		Edges:     len(res.Payload.Graph.Edges),
		Assignees: len(res.Payload.Assignees),
	})
}

// AnalyzeResult is the JSON output for ws analyze -o.
type AnalyzeResult struct {
	Output    string `json:"output"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	Assignees int    `json:"assignees"`
}

// newClient builds a service client from the config.
func newClient(cfg *config.Config) *whitespace.Client {
	return whitespace.NewClient(
		whitespace.WithBaseURL(cfg.ServiceURL),
		whitespace.WithToken(cfg.APIToken),
		whitespace.WithRateLimit(cfg.RateLimit),
		whitespace.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
}

// buildRequest starts from the service defaults, overlays the --request YAML
// file and then every flag the user set, and validates the result.
func buildRequest(cmd *cobra.Command) (whitespace.GraphRequest, error) {
	req := whitespace.DefaultGraphRequest()
	flags := cmd.Flags()

	if file, _ := flags.GetString("request"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return req, fmt.Errorf("reading request file: %w", err)
		}
		if err := yaml.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("%w: parsing %s: %v", whitespace.ErrInvalidRequest, file, err)
		}
	}

	if flags.Changed("from") {
		req.DateFrom, _ = flags.GetString("from")
	}
	if flags.Changed("to") {
		req.DateTo, _ = flags.GetString("to")
	}
	if flags.Changed("neighbors") {
		req.Neighbors, _ = flags.GetInt("neighbors")
	}
	if flags.Changed("limit") {
		req.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("resolution") {
		req.Resolution, _ = flags.GetFloat64("resolution")
	}
	if flags.Changed("keyword") {
		req.FocusKeywords, _ = flags.GetStringSlice("keyword")
	}
	if flags.Changed("cpc") {
		req.FocusCPCLike, _ = flags.GetStringSlice("cpc")
	}
	if flags.Changed("no-layout") {
		noLayout, _ := flags.GetBool("no-layout")
		req.Layout = !noLayout
	}
	if flags.Changed("debug") {
		req.Debug, _ = flags.GetBool("debug")
	}

	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}
