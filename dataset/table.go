// Package dataset holds the tabular payloads that move between market-data
// tools, the preprocessor and the risk model.
package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Table is an ordered collection of rows over a fixed column list. Column
// order and row order are significant and survive serialization.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// New returns an empty table over the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// FromMaps builds a table from loosely-typed records, keeping only the given
// columns in order. A record missing a column gets a nil cell.
func FromMaps(columns []string, records []map[string]any) *Table {
	t := New(columns...)
	for _, rec := range records {
		row := make([]any, len(columns))
		for i, col := range columns {
			row[i] = rec[col]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of col, -1 when absent.
func (t *Table) ColumnIndex(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every given column is present.
func (t *Table) HasColumns(cols ...string) bool {
	for _, c := range cols {
		if t.ColumnIndex(c) < 0 {
			return false
		}
	}
	return true
}

// Append adds a row. The row length must match the column list.
func (t *Table) Append(row ...any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("dataset: row has %d cells, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Value returns the cell at (row, col).
func (t *Table) Value(row int, col string) (any, bool) {
	idx := t.ColumnIndex(col)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	return t.Rows[row][idx], true
}

// RowMap returns row i keyed by column name.
func (t *Table) RowMap(i int) map[string]any {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	m := make(map[string]any, len(t.Columns))
	for j, col := range t.Columns {
		m[col] = t.Rows[i][j]
	}
	return m
}

// Strings returns col rendered as strings, empty string for nil cells.
func (t *Table) Strings(col string) []string {
	idx := t.ColumnIndex(col)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = Stringify(row[idx])
	}
	return out
}

// Floats returns col coerced to float64. The second slice flags cells that
// could not be coerced.
func (t *Table) Floats(col string) ([]float64, []bool) {
	idx := t.ColumnIndex(col)
	if idx < 0 {
		return nil, nil
	}
	vals := make([]float64, len(t.Rows))
	ok := make([]bool, len(t.Rows))
	for i, row := range t.Rows {
		vals[i], ok[i] = Float(row[idx])
	}
	return vals, ok
}

// Select returns a new table restricted to the given columns, row order
// preserved. Unknown columns are an error.
func (t *Table) Select(cols ...string) (*Table, error) {
	idxs := make([]int, len(cols))
	for i, c := range cols {
		idx := t.ColumnIndex(c)
		if idx < 0 {
			return nil, fmt.Errorf("dataset: unknown column %q", c)
		}
		idxs[i] = idx
	}
	out := New(cols...)
	for _, row := range t.Rows {
		next := make([]any, len(idxs))
		for i, idx := range idxs {
			next[i] = row[idx]
		}
		out.Rows = append(out.Rows, next)
	}
	return out, nil
}

// SortBy orders rows ascending by col, numerically when both cells coerce to
// float64, lexically otherwise. The sort is stable.
func (t *Table) SortBy(col string) {
	idx := t.ColumnIndex(col)
	if idx < 0 {
		return
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i][idx], t.Rows[j][idx]
		fa, oka := Float(a)
		fb, okb := Float(b)
		if oka && okb {
			return fa < fb
		}
		return Stringify(a) < Stringify(b)
	})
}

// Head returns a copy of the first n rows, the whole table when shorter.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := New(t.Columns...)
	for _, row := range t.Rows[:n] {
		next := make([]any, len(row))
		copy(next, row)
		out.Rows = append(out.Rows, next)
	}
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := New(t.Columns...)
	out.Columns = append([]string(nil), t.Columns...)
	for _, row := range t.Rows {
		next := make([]any, len(row))
		copy(next, row)
		out.Rows = append(out.Rows, next)
	}
	return out
}

// Float coerces a cell to float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// Stringify renders a cell for display.
func Stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}
