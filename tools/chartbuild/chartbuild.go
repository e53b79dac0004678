package chartbuild

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quarkbyte/finagent/charting"
	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// Input describes the chart to build over the loaded dataset. The dataset
// itself always comes from state, processed preferred over raw.
type Input struct {
	schema.Base
	ChartType string         `json:"chart_type" jsonschema:"title=chart_type,description=Chart type: line, bar, scatter or pie." validate:"required"`
	XColumn   string         `json:"x_column" jsonschema:"title=x_column,description=Exact column name for the X axis." validate:"required"`
	YColumns  []string       `json:"y_columns" jsonschema:"title=y_columns,description=Exact column names for the Y axis." validate:"min=1"`
	Title     string         `json:"title" jsonschema:"title=title,description=Descriptive chart title." validate:"required"`
	Table     *dataset.Table `json:"-"`
}

func (in *Input) Resolve(state *conversation.State) {
	if in.Table == nil {
		in.Table = state.Dataset()
	}
}

// Output carries the finished chart spec.
type Output struct {
	schema.Base
	Title string          `json:"title"`
	Chart json.RawMessage `json:"chart"`
}

func (out *Output) Apply(state *conversation.State) {
	state.Chart = out.Chart
}

func (out *Output) Summary() string {
	return fmt.Sprintf("[Interactive chart created: %s.]", out.Title)
}

// Tool charts columns of the loaded dataset on demand. The decision model
// picks the columns from the dataset context it was shown, so unknown
// column names are its mistake and come back as validation failures with
// the available columns spelled out.
type Tool struct {
	tools.Config
}

func New(opts ...tools.Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("build_chart")
	}
	if ret.Description() == "" {
		ret.SetDescription("build_chart(chart_type, x_column, y_columns, title): chart columns of the loaded dataset. Use the exact column names from the dataset context.")
	}
	return ret
}

func (t *Tool) Run(_ context.Context, input *Input) (*Output, error) {
	kind, err := charting.ParseKind(input.ChartType)
	if err != nil {
		return nil, fault.Errorf(fault.Validation, "build_chart", "chart type %q is not supported", input.ChartType)
	}
	if input.Table == nil || input.Table.Len() == 0 {
		return nil, fault.Errorf(fault.Validation, "build_chart", "no dataset available to chart, fetch data first")
	}
	spec, err := charting.FromTable(input.Table, input.XColumn, input.YColumns, kind, input.Title)
	if err != nil {
		return nil, fault.Errorf(fault.Validation, "build_chart", "%v (available columns: %s)", err, strings.Join(input.Table.Columns, ", "))
	}
	payload, err := spec.JSON()
	if err != nil {
		return nil, err
	}
	return &Output{Title: input.Title, Chart: payload}, nil
}
