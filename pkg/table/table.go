// Package table provides the column-major offset matrix that the decision
// tree is trained on. Columns are test points, rows are zones.
package table

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrRaggedColumns is returned when columns do not all match the row count.
var ErrRaggedColumns = errors.New("columns differ in length from row names")

// Table is an immutable matrix of UTC offsets in minutes.
type Table struct {
	columns  [][]float64
	rowNames []string
}

// New builds a table from columns and the names owning each row.
// Every column must have exactly len(rowNames) values.
func New(columns [][]float64, rowNames []string) (*Table, error) {
	for i, col := range columns {
		if len(col) != len(rowNames) {
			return nil, fmt.Errorf("column %d has %d values for %d rows: %w", i, len(col), len(rowNames), ErrRaggedColumns)
		}
	}
	return &Table{columns: columns, rowNames: rowNames}, nil
}

// FromRows builds a table from row-major vectors, one per name. It is the
// usual way to go from per-zone offset vectors to the training table.
func FromRows(names []string, rows [][]float64) (*Table, error) {
	if len(names) != len(rows) {
		return nil, fmt.Errorf("%d names for %d rows: %w", len(names), len(rows), ErrRaggedColumns)
	}
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	columns := make([][]float64, width)
	for c := range columns {
		columns[c] = make([]float64, len(rows))
	}
	for r, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %q has %d values, want %d: %w", names[r], len(row), width, ErrRaggedColumns)
		}
		for c, v := range row {
			columns[c][r] = v
		}
	}
	return &Table{columns: columns, rowNames: names}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rowNames) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// RowNames returns the zone owning each row. Callers must not modify it.
func (t *Table) RowNames() []string { return t.rowNames }

// Column returns the values of column col. Callers must not modify it.
func (t *Table) Column(col int) []float64 { return t.columns[col] }

// Row returns a copy of row r across all columns.
func (t *Table) Row(r int) []float64 {
	row := make([]float64, len(t.columns))
	for c, col := range t.columns {
		row[c] = col[r]
	}
	return row
}

// Entropy returns the base-2 Shannon entropy of the value distribution in
// column col over the current rows. It is 0 iff the column is constant.
func (t *Table) Entropy(col int) float64 {
	column := t.columns[col]
	n := float64(len(column))
	if n == 0 {
		return 0
	}
	counts := make(map[float64]int)
	for _, v := range column {
		counts[v]++
	}
	if len(counts) == 1 {
		return 0
	}
	// Sum in ascending count order so the result depends only on the
	// multiset of counts: equal entropies must compare equal bit for bit.
	freqs := make([]int, 0, len(counts))
	for _, c := range counts {
		freqs = append(freqs, c)
	}
	sort.Ints(freqs)
	h := 0.0
	for _, c := range freqs {
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// SelectSplitColumn returns the column with maximum entropy. Ties go to the
// lowest column index. It returns -1 for a table without columns.
func (t *Table) SelectSplitColumn() int {
	best := -1
	bestEntropy := math.Inf(-1)
	for c := range t.columns {
		if h := t.Entropy(c); h > bestEntropy {
			best, bestEntropy = c, h
		}
	}
	return best
}

// Partition splits the table by the values of column col. Each sub-table
// keeps every column and the names of exactly the rows holding its value,
// in their original order.
func (t *Table) Partition(col int) map[float64]*Table {
	groups := make(map[float64][]int)
	for r, v := range t.columns[col] {
		groups[v] = append(groups[v], r)
	}
	parts := make(map[float64]*Table, len(groups))
	for v, indexes := range groups {
		parts[v] = t.subset(indexes)
	}
	return parts
}

func (t *Table) subset(indexes []int) *Table {
	columns := make([][]float64, len(t.columns))
	for c, col := range t.columns {
		sub := make([]float64, len(indexes))
		for i, r := range indexes {
			sub[i] = col[r]
		}
		columns[c] = sub
	}
	names := make([]string, len(indexes))
	for i, r := range indexes {
		names[i] = t.rowNames[r]
	}
	return &Table{columns: columns, rowNames: names}
}
