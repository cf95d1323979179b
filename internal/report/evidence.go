package report

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/matsen/whitespace/internal/examples"
	"github.com/matsen/whitespace/internal/graph"
)

// Title is the first line of every report.
const Title = "Whitespace evidence report"

// Evidence is everything a report describes: one signal of one assignee and
// the ranked example filings backing it.
type Evidence struct {
	Scope     string
	Assignee  string
	Signal    graph.Signal
	Mode      examples.Mode
	Examples  []examples.Example
	Generated time.Time
}

// EvidenceLines assembles the report text: a header, the scope summary, and
// one indented block per example.
func EvidenceLines(ev Evidence) ([]string, error) {
	if len(ev.Examples) == 0 {
		return nil, ErrNoEvidence
	}

	lines := []string{Title, ""}
	if !ev.Generated.IsZero() {
		lines = append(lines, "Generated: "+ev.Generated.UTC().Format(time.RFC3339))
	}
	if ev.Scope != "" {
		lines = append(lines, "Scope: k="+ev.Scope)
	}
	lines = append(lines,
		"Assignee: "+orNA(ev.Assignee),
		fmt.Sprintf("Signal: %s (%s, confidence %.2f)", ev.Signal.Type, ev.Signal.Status, ev.Signal.Confidence),
	)
	if ev.Signal.Why != "" {
		lines = append(lines, "Rationale: "+ev.Signal.Why)
	}
	lines = append(lines,
		"Sort mode: "+string(ev.Mode),
		fmt.Sprintf("Examples: %d", len(ev.Examples)),
		"",
	)

	for _, ex := range ev.Examples {
		head := fmt.Sprintf("%d. %s", ex.Rank, ex.ID)
		if ex.Title != "" {
			head += " " + ex.Title
		}
		lines = append(lines,
			head,
			"   Assignee: "+orNA(ex.Assignee),
			"   Published: "+orNA(ex.Date),
			fmt.Sprintf("   Score: %s  Density: %s", metric(ex.Score), metric(ex.Density)),
			"   URL: "+ex.URL,
			"",
		)
	}
	return lines, nil
}

// Filename names the exported file after assignee, signal type and mode.
// Every non-alphanumeric character becomes an underscore.
func Filename(assignee string, kind graph.SignalKind, mode examples.Mode) string {
	base := strings.Join([]string{assignee, string(kind), string(mode)}, "_")
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, base) + ".pdf"
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

func metric(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *v)
}
