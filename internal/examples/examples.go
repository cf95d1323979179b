// Package examples ranks the filings that evidence a signal.
package examples

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/matsen/whitespace/internal/graph"
	"github.com/matsen/whitespace/internal/patent"
	"github.com/matsen/whitespace/internal/render"
)

// Cap is the number of examples kept after ranking.
const Cap = 8

// Mode selects the ranking order.
type Mode string

const (
	// ModeRecent ranks by publication date, then score, then density.
	ModeRecent Mode = "recent"
	// ModeRelated ranks by score, then density, then publication date.
	ModeRelated Mode = "related"
)

// Modes lists the supported modes.
var Modes = []Mode{ModeRecent, ModeRelated}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !slices.Contains(Modes, m) {
		return "", fmt.Errorf("invalid mode %q: must be one of recent, related", s)
	}
	return m, nil
}

// Example is one ranked evidence row.
type Example struct {
	Rank     int      `json:"rank"`
	ID       string   `json:"id"`
	Title    string   `json:"title,omitempty"`
	Assignee string   `json:"assignee,omitempty"`
	Date     string   `json:"pub_date,omitempty"`
	Score    *float64 `json:"score,omitempty"`
	Density  *float64 `json:"density,omitempty"`
	URL      string   `json:"url"`
}

// Rank orders the nodes named by ids. Ids missing from g and repeats are
// dropped first. Missing metrics rank last; remaining ties keep input order.
func Rank(g *graph.Graph, ids []string, mode Mode) []Example {
	seen := make(map[string]bool, len(ids))
	nodes := make([]*graph.Node, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if n, ok := g.Node(id); ok {
			nodes = append(nodes, n)
		}
	}

	slices.SortStableFunc(nodes, comparator(mode))

	out := make([]Example, len(nodes))
	for i, n := range nodes {
		out[i] = Example{
			Rank:     i + 1,
			ID:       n.ID,
			Title:    n.Title,
			Assignee: n.Assignee,
			Date:     n.Date,
			Score:    finite(n.Score),
			Density:  finite(n.Density),
			URL:      patent.URL(n.ID),
		}
	}
	return out
}

// Select ranks ids and keeps the first Cap.
func Select(g *graph.Graph, ids []string, mode Mode) []Example {
	ranked := Rank(g, ids, mode)
	if len(ranked) > Cap {
		ranked = ranked[:Cap]
	}
	return ranked
}

// IDs returns the example ids in rank order.
func IDs(examples []Example) []string {
	out := make([]string, len(examples))
	for i, e := range examples {
		out[i] = e.ID
	}
	return out
}

// Publish makes the examples the highlight set of a session.
func Publish(state *render.State, examples []Example) {
	state.SetHighlight(IDs(examples))
}

func comparator(mode Mode) func(a, b *graph.Node) int {
	if mode == ModeRelated {
		return func(a, b *graph.Node) int {
			return cmp.Or(
				desc(a.Score, b.Score),
				desc(a.Density, b.Density),
				desc(a.PubDate, b.PubDate),
			)
		}
	}
	return func(a, b *graph.Node) int {
		return cmp.Or(
			desc(a.PubDate, b.PubDate),
			desc(a.Score, b.Score),
			desc(a.Density, b.Density),
		)
	}
}

// desc orders larger values first. NaN is treated as worst.
func desc(a, b float64) int {
	if math.IsNaN(a) {
		a = graph.Worst
	}
	if math.IsNaN(b) {
		b = graph.Worst
	}
	return cmp.Compare(b, a)
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
