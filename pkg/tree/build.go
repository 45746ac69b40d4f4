package tree

import (
	"fmt"
	"sort"

	"github.com/codeGROOVE-dev/tzsniff/pkg/table"
	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
)

// Build trains a decision tree on t. points[i] is the test point of
// column i. Each internal node splits on the maximum-entropy column of its
// rows, so every zone in t ends up in exactly one leaf.
func Build(t *table.Table, points []testpoint.Instant) (Node, error) {
	if t.Width() != len(points) {
		return nil, fmt.Errorf("table has %d columns for %d test points", t.Width(), len(points))
	}
	if t.Len() == 0 {
		return nil, fmt.Errorf("cannot build a tree from an empty table")
	}
	return build(t, points)
}

func build(t *table.Table, points []testpoint.Instant) (Node, error) {
	if t.Len() == 1 {
		return &Leaf{Zone: t.RowNames()[0]}, nil
	}
	col := t.SelectSplitColumn()
	if col < 0 || t.Entropy(col) == 0 {
		rows := append([]string(nil), t.RowNames()...)
		return nil, &DegenerateInputError{Rows: rows}
	}

	parts := t.Partition(col)
	values := make([]float64, 0, len(parts))
	for v := range parts {
		values = append(values, v)
	}
	sort.Float64s(values)

	children := make(map[float64]Node, len(parts))
	for _, v := range values {
		child, err := build(parts[v], points)
		if err != nil {
			return nil, err
		}
		children[v] = child
	}
	return &Internal{TestPoint: points[col], Children: children}, nil
}
