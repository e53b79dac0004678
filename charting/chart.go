// Package charting builds renderer-agnostic chart specifications. The
// orchestrator treats them as opaque JSON; a frontend turns them into
// whatever plotting library it prefers.
package charting

import (
	"encoding/json"
	"fmt"

	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/schema"
)

// Kind is the trace style.
type Kind string

const (
	KindLine    Kind = "line"
	KindBar     Kind = "bar"
	KindScatter Kind = "scatter"
	// KindPie reads X as slice labels and Y as slice values.
	KindPie Kind = "pie"
)

// ParseKind validates a user-supplied kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindLine, KindBar, KindScatter, KindPie:
		return Kind(s), nil
	case "":
		return KindLine, nil
	}
	return "", fmt.Errorf("charting: unknown kind %q", s)
}

// Series is one plotted trace.
type Series struct {
	Name string    `json:"name,omitempty"`
	Kind Kind      `json:"kind"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
	// Mode refines line traces: lines, markers, lines+markers.
	Mode string `json:"mode,omitempty"`
	// YAxis is "y" (default) or "y2" for the secondary axis.
	YAxis string `json:"yaxis,omitempty"`
}

// Spec is a complete chart description.
type Spec struct {
	Title   string   `json:"title,omitempty"`
	XTitle  string   `json:"x_title,omitempty"`
	YTitle  string   `json:"y_title,omitempty"`
	Y2Title string   `json:"y2_title,omitempty"`
	Series  []Series `json:"series"`
	// HLines are horizontal reference lines on the primary axis.
	HLines []float64 `json:"hlines,omitempty"`
}

// New returns an empty spec with a title.
func New(title string) *Spec {
	return &Spec{Title: title}
}

// Add appends a trace.
func (s *Spec) Add(series Series) *Spec {
	s.Series = append(s.Series, series)
	return s
}

// JSON serializes the spec.
func (s *Spec) JSON() (json.RawMessage, error) {
	bs, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("charting: encode spec: %w", err)
	}
	return bs, nil
}

// Attachment wraps the spec for a reply.
func (s *Spec) Attachment(name string) (schema.Attachment, error) {
	bs, err := s.JSON()
	if err != nil {
		return schema.Attachment{}, err
	}
	return schema.Attachment{Name: name, MIME: "application/json", JSON: bs}, nil
}

// FromTable plots yCols against xCol. Cells that do not coerce to numbers
// become gaps at the matching x position and are dropped from the trace.
func FromTable(t *dataset.Table, xCol string, yCols []string, kind Kind, title string) (*Spec, error) {
	if t == nil || t.Len() == 0 {
		return nil, fmt.Errorf("charting: empty dataset")
	}
	if t.ColumnIndex(xCol) < 0 {
		return nil, fmt.Errorf("charting: unknown x column %q", xCol)
	}
	if len(yCols) == 0 {
		return nil, fmt.Errorf("charting: no y columns")
	}
	xs := t.Strings(xCol)
	spec := New(title)
	spec.XTitle = xCol
	for _, col := range yCols {
		if t.ColumnIndex(col) < 0 {
			return nil, fmt.Errorf("charting: unknown y column %q", col)
		}
		vals, ok := t.Floats(col)
		series := Series{Name: col, Kind: kind}
		if kind == KindLine {
			series.Mode = "lines+markers"
		}
		for i := range vals {
			if !ok[i] {
				continue
			}
			series.X = append(series.X, xs[i])
			series.Y = append(series.Y, vals[i])
		}
		spec.Add(series)
	}
	if len(yCols) == 1 {
		spec.YTitle = yCols[0]
	}
	return spec, nil
}
