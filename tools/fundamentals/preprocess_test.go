package fundamentals

import (
	"context"
	"math"
	"testing"

	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/fault"
)

func rawFixture(t *testing.T) *dataset.Table {
	t.Helper()
	table := dataset.New("calendarYear", "marketCap", "netIncomePerShare", "revenuePerShare",
		"roe", "roic", "debtToEquity", "earningsYield")
	// Provider order is newest first; preprocess must sort ascending.
	rows := [][]any{
		{2022, 300.0, 4.5, 15.0, 0.30, 0.25, 0.50, 0.08},
		{2021, 250.0, 3.0, 12.0, 0.28, 0.22, 0.55, 0.07},
		{2020, 200.0, 2.0, 10.0, 0.25, 0.20, 0.60, 0.06},
	}
	for _, row := range rows {
		if err := table.Append(row...); err != nil {
			t.Fatal(err)
		}
	}
	return table
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func cellFloat(t *testing.T, table *dataset.Table, row int, col string) float64 {
	t.Helper()
	v, ok := table.Value(row, col)
	if !ok {
		t.Fatalf("missing cell %s[%d]", col, row)
	}
	f, ok := dataset.Float(v)
	if !ok {
		t.Fatalf("cell %s[%d] is not numeric: %v", col, row, v)
	}
	return f
}

func TestPreprocessDerivations(t *testing.T) {
	tool := NewPreprocess()
	out, err := tool.Run(context.Background(), &PreprocessInput{Table: rawFixture(t)})
	if err != nil {
		t.Fatal(err)
	}
	// The earliest year has no prior row for the growth formula and drops.
	if out.Table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Table.Len())
	}
	if out.Dropped != 1 {
		t.Errorf("expected 1 dropped row, got %d", out.Dropped)
	}
	for i, col := range processedColumns {
		if out.Table.Columns[i] != col {
			t.Fatalf("column %d: expected %s, got %s", i, col, out.Table.Columns[i])
		}
	}
	if year, _ := out.Table.Value(0, "calendarYear"); year != "2021" {
		t.Errorf("expected ascending string years, got %v", year)
	}
	if got := cellFloat(t, out.Table, 0, "marginProfit"); !approx(got, 0.25) {
		t.Errorf("marginProfit 2021: expected 0.25, got %v", got)
	}
	if got := cellFloat(t, out.Table, 0, "revenuePerShare_YoY_Growth"); !approx(got, 20.0) {
		t.Errorf("growth 2021: expected 20, got %v", got)
	}
	if got := cellFloat(t, out.Table, 1, "marginProfit"); !approx(got, 0.3) {
		t.Errorf("marginProfit 2022: expected 0.3, got %v", got)
	}
	if got := cellFloat(t, out.Table, 1, "revenuePerShare_YoY_Growth"); !approx(got, 25.0) {
		t.Errorf("growth 2022: expected 25, got %v", got)
	}
}

func TestPreprocessSkipsUnavailableColumns(t *testing.T) {
	table := dataset.New("calendarYear", "marketCap", "revenuePerShare")
	table.Append(2020, 200.0, 10.0)
	table.Append(2021, 250.0, 12.0)

	tool := NewPreprocess()
	out, err := tool.Run(context.Background(), &PreprocessInput{Table: table})
	if err != nil {
		t.Fatal(err)
	}
	// netIncomePerShare is absent, so marginProfit cannot be derived.
	if out.Table.ColumnIndex("marginProfit") >= 0 {
		t.Error("marginProfit derived without its inputs")
	}
	if out.Table.ColumnIndex("earningsYield") >= 0 {
		t.Error("absent raw column leaked into the output")
	}
	if out.Table.ColumnIndex("revenuePerShare_YoY_Growth") < 0 {
		t.Error("growth column missing despite available inputs")
	}
	if out.Table.Len() != 1 {
		t.Errorf("expected 1 surviving row, got %d", out.Table.Len())
	}
}

func TestPreprocessRequiresDataset(t *testing.T) {
	tool := NewPreprocess()
	_, err := tool.Run(context.Background(), &PreprocessInput{})
	if err == nil {
		t.Fatal("expected error without a raw dataset")
	}
	if fault.KindOf(err) != fault.Validation {
		t.Errorf("expected validation failure, got %v", fault.KindOf(err))
	}
}

func TestPreprocessSingleRowHasNoSurvivors(t *testing.T) {
	table := dataset.New("calendarYear", "netIncomePerShare", "revenuePerShare")
	table.Append(2022, 4.5, 15.0)

	tool := NewPreprocess()
	_, err := tool.Run(context.Background(), &PreprocessInput{Table: table})
	if err == nil {
		t.Fatal("expected error when every row drops")
	}
	if fault.KindOf(err) != fault.Validation {
		t.Errorf("expected validation failure, got %v", fault.KindOf(err))
	}
}
