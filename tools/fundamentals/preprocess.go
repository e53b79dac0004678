package fundamentals

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// derivation adds one computed column. Expressions see the current row's
// numeric columns by name and the previous row's under a prev_ prefix;
// rows run in ascending calendarYear order, so prev_ means the prior year.
type derivation struct {
	name string
	expr string
}

var derivations = []derivation{
	{name: "marginProfit", expr: "netIncomePerShare / revenuePerShare"},
	{name: "revenuePerShare_YoY_Growth", expr: "(revenuePerShare / prev_revenuePerShare - 1) * 100"},
}

// processedColumns is the final column order. Columns whose inputs are
// absent from the raw dataset are skipped rather than failing the run.
var processedColumns = []string{
	"calendarYear", "marketCap", "marginProfit", "roe", "roic",
	"revenuePerShare", "debtToEquity", "revenuePerShare_YoY_Growth", "earningsYield",
}

// PreprocessInput resolves entirely from state; the decision model passes
// no arguments.
type PreprocessInput struct {
	schema.Base
	Table *dataset.Table `json:"-"`
}

func (in *PreprocessInput) Resolve(state *conversation.State) {
	if in.Table == nil {
		in.Table = state.RawDataset
	}
}

// PreprocessOutput carries the derived dataset.
type PreprocessOutput struct {
	schema.Base
	Table   *dataset.Table `json:"table"`
	Dropped int            `json:"dropped_rows"`
}

func (out *PreprocessOutput) Apply(state *conversation.State) {
	state.ProcessedDataset = out.Table
}

func (out *PreprocessOutput) Summary() string {
	return fmt.Sprintf("[Preprocessing complete: %d rows. Columns: %s.]",
		out.Table.Len(), strings.Join(out.Table.Columns, ", "))
}

// PreprocessTool derives the ratio and growth columns the distress model
// and the richer table views consume. Rows missing any final column are
// dropped, which always removes the earliest year (it has no prior row for
// the growth formula).
type PreprocessTool struct {
	tools.Config
}

func NewPreprocess(opts ...tools.Option) *PreprocessTool {
	ret := new(PreprocessTool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("preprocess")
	}
	if ret.Description() == "" {
		ret.SetDescription("preprocess(): derive profit margin and year-over-year growth columns from the loaded fundamentals. Requires fetch_fundamentals first.")
	}
	return ret
}

func (t *PreprocessTool) Run(_ context.Context, input *PreprocessInput) (*PreprocessOutput, error) {
	if input.Table == nil || input.Table.Len() == 0 {
		return nil, fault.Errorf(fault.Validation, "preprocess", "no raw dataset loaded, run fetch_fundamentals first")
	}
	table, dropped, err := Derive(input.Table)
	if err != nil {
		return nil, err
	}
	return &PreprocessOutput{Table: table, Dropped: dropped}, nil
}

// Derive computes the processed view of a raw fundamentals table. It is
// shared with the fundamental comparison, which runs the same pipeline per
// ticker before aligning metrics across entities.
func Derive(raw *dataset.Table) (*dataset.Table, int, error) {
	work := raw.Clone()
	work.SortBy("calendarYear")

	derived, err := deriveColumns(work)
	if err != nil {
		return nil, 0, err
	}

	cols := make([]string, 0, len(processedColumns))
	for _, col := range processedColumns {
		if work.ColumnIndex(col) >= 0 {
			cols = append(cols, col)
			continue
		}
		if _, ok := derived[col]; ok {
			cols = append(cols, col)
		}
	}

	out := dataset.New(cols...)
	dropped := 0
	for i := 0; i < work.Len(); i++ {
		row := make([]any, 0, len(cols))
		complete := true
		for _, col := range cols {
			var cell any
			if values, ok := derived[col]; ok {
				cell = values[i]
			} else {
				cell, _ = work.Value(i, col)
			}
			if cell == nil {
				complete = false
				break
			}
			if col == "calendarYear" {
				cell = dataset.Stringify(cell)
			}
			row = append(row, cell)
		}
		if !complete {
			dropped++
			continue
		}
		if err := out.Append(row...); err != nil {
			return nil, 0, fault.New(fault.Defect, "preprocess", err)
		}
	}
	if out.Len() == 0 {
		return nil, 0, fault.Errorf(fault.Validation, "preprocess", "no rows survived preprocessing, the raw dataset is missing required columns")
	}
	return out, dropped, nil
}

// deriveColumns evaluates every applicable derivation over the sorted
// table. A derivation whose base columns are absent is skipped wholesale;
// a row whose inputs are missing or whose result is not finite yields nil
// and is dropped later with the rest of its row.
func deriveColumns(work *dataset.Table) (map[string][]any, error) {
	derived := make(map[string][]any, len(derivations))
	for _, d := range derivations {
		expr, err := govaluate.NewEvaluableExpression(d.expr)
		if err != nil {
			return nil, fault.New(fault.Defect, "preprocess", err)
		}
		vars := expr.Vars()
		applicable := true
		for _, v := range vars {
			if work.ColumnIndex(strings.TrimPrefix(v, "prev_")) < 0 {
				applicable = false
				break
			}
		}
		if !applicable {
			continue
		}
		values := make([]any, work.Len())
		for i := 0; i < work.Len(); i++ {
			params, ok := rowParams(work, i, vars)
			if !ok {
				continue
			}
			result, err := expr.Evaluate(params)
			if err != nil {
				continue
			}
			if f, ok := result.(float64); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
				values[i] = f
			}
		}
		derived[d.name] = values
	}
	return derived, nil
}

func rowParams(work *dataset.Table, i int, vars []string) (map[string]any, bool) {
	params := make(map[string]any, len(vars))
	for _, v := range vars {
		rowIdx, col := i, v
		if rest, found := strings.CutPrefix(v, "prev_"); found {
			if i == 0 {
				return nil, false
			}
			rowIdx, col = i-1, rest
		}
		cell, _ := work.Value(rowIdx, col)
		f, ok := dataset.Float(cell)
		if !ok {
			return nil, false
		}
		params[v] = f
	}
	return params, true
}
