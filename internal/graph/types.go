// Package graph turns an analysis payload into the attributed graph owned by a
// render session.
package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Worst is the rank value used for any metric that is missing or not a number.
var Worst = math.Inf(-1)

// Metric is a numeric payload field. It accepts JSON numbers, numeric strings and
// null; anything that does not parse to a finite number decodes to Worst.
type Metric float64

// UnmarshalJSON never fails: bad values become Worst so one malformed field cannot
// reject the whole payload.
func (m *Metric) UnmarshalJSON(data []byte) error {
	*m = Metric(parseMetric(data))
	return nil
}

func parseMetric(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Worst
	}
	text := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Worst
		}
		text = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Worst
	}
	return v
}

// Value returns the metric, or Worst when m is nil.
func (m *Metric) Value() float64 {
	if m == nil {
		return Worst
	}
	return float64(*m)
}

// Finite reports whether the metric is present and usable.
func (m *Metric) Finite() bool {
	if m == nil {
		return false
	}
	v := float64(*m)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Date is a publication date as sent by the service: "YYYY-MM-DD", an RFC 3339
// timestamp, or an integer YYYYMMDD. Days holds days since the Unix epoch, or
// Worst when the value cannot be parsed.
type Date struct {
	Raw  string
	Days float64
}

// UnmarshalJSON never fails; see Metric.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	d.Raw = ""
	d.Days = Worst
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	text := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}
	d.Raw = text
	if t, ok := parseDate(text); ok {
		d.Days = float64(t.Unix() / 86400)
		d.Raw = t.Format(time.DateOnly)
	}
	return nil
}

// MarshalJSON writes the normalized date string, or null.
func (d Date) MarshalJSON() ([]byte, error) {
	if math.IsInf(d.Days, -1) {
		return []byte("null"), nil
	}
	return json.Marshal(d.Raw)
}

func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if len(s) == 8 {
		if _, err := strconv.Atoi(s); err == nil {
			if t, err := time.Parse("20060102", s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Value returns the date in days, or Worst when d is nil.
func (d *Date) Value() float64 {
	if d == nil {
		return Worst
	}
	return d.Days
}

// NodePayload is one node as received from the analytics service.
type NodePayload struct {
	ID        string `json:"id"`
	ClusterID int    `json:"cluster_id"`

	// Score is preferred over Relevance, which is preferred over WhitespaceScore.
	Score           *Metric `json:"score,omitempty"`
	Relevance       *Metric `json:"relevance,omitempty"`
	WhitespaceScore *Metric `json:"whitespace_score,omitempty"`

	Density      *Metric `json:"density,omitempty"`
	LocalDensity *Metric `json:"local_density,omitempty"`

	X *Metric `json:"x,omitempty"`
	Y *Metric `json:"y,omitempty"`

	Assignee string   `json:"assignee,omitempty"`
	Title    string   `json:"title,omitempty"`
	Tooltip  string   `json:"tooltip,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	PubDate  *Date    `json:"pub_date,omitempty"`
	Signals  []string `json:"signals,omitempty"`
}

// ScoreValue resolves the node's primary metric.
func (n NodePayload) ScoreValue() float64 {
	for _, m := range []*Metric{n.Score, n.Relevance, n.WhitespaceScore} {
		if m.Finite() {
			return m.Value()
		}
	}
	return Worst
}

// DensityValue resolves the node's density metric.
func (n NodePayload) DensityValue() float64 {
	for _, m := range []*Metric{n.Density, n.LocalDensity} {
		if m.Finite() {
			return m.Value()
		}
	}
	return Worst
}

// EdgePayload is one edge as received from the analytics service.
type EdgePayload struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight *Metric `json:"weight,omitempty"`
}

// GraphPayload is the node/edge part of a response.
type GraphPayload struct {
	Nodes []NodePayload `json:"nodes"`
	Edges []EdgePayload `json:"edges"`
}

// Payload is a complete analysis response.
type Payload struct {
	Scope     string            `json:"k,omitempty"`
	Assignees []AssigneeSignals `json:"assignees,omitempty"`
	Graph     GraphPayload      `json:"graph"`
	Debug     map[string]any    `json:"debug,omitempty"`
}

// UnmarshalJSON accepts both the full response and a bare {nodes, edges} object.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var wire struct {
		Scope     string            `json:"k"`
		Assignees []AssigneeSignals `json:"assignees"`
		Graph     *GraphPayload     `json:"graph"`
		Nodes     []NodePayload     `json:"nodes"`
		Edges     []EdgePayload     `json:"edges"`
		Debug     map[string]any    `json:"debug"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.Scope = wire.Scope
	p.Assignees = wire.Assignees
	p.Debug = wire.Debug
	if wire.Graph != nil {
		p.Graph = *wire.Graph
	} else {
		p.Graph = GraphPayload{Nodes: wire.Nodes, Edges: wire.Edges}
	}
	for i := range p.Assignees {
		p.Assignees[i].normalize()
	}
	return nil
}

// Decode reads a payload from r.
func Decode(r io.Reader) (*Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	return &p, nil
}

// Load reads a payload from a JSON file.
func Load(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening payload: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// FindSignal returns the signal of the given kind for an assignee. Assignee
// names match exactly first, then case-insensitively.
func (p *Payload) FindSignal(assignee string, kind SignalKind) (*AssigneeSignals, *Signal, bool) {
	group := p.findAssignee(assignee)
	if group == nil {
		return nil, nil, false
	}
	for i := range group.Signals {
		if group.Signals[i].Type == kind {
			return group, &group.Signals[i], true
		}
	}
	return group, nil, false
}

func (p *Payload) findAssignee(name string) *AssigneeSignals {
	for i := range p.Assignees {
		if p.Assignees[i].Assignee == name {
			return &p.Assignees[i]
		}
	}
	for i := range p.Assignees {
		if strings.EqualFold(p.Assignees[i].Assignee, name) {
			return &p.Assignees[i]
		}
	}
	return nil
}
