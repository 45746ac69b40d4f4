// Package tree builds, queries and serializes the zone decision tree.
//
// A tree is made of two node kinds. A *Leaf names a single zone. An
// *Internal node probes one test point and routes on the exact offset, in
// minutes, observed there. Children only exist for offsets that occurred in
// the training rows.
package tree

import (
	"fmt"
	"sort"

	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
)

// Node is either a *Leaf or an *Internal.
type Node interface {
	node()
}

// Leaf holds exactly one zone identifier.
type Leaf struct {
	Zone string
}

// Internal routes on the offset observed at TestPoint.
type Internal struct {
	Children  map[float64]Node
	TestPoint testpoint.Instant
}

func (*Leaf) node()     {}
func (*Internal) node() {}

// OffsetFunc reports the UTC offset in minutes of some candidate zone at a
// test point.
type OffsetFunc func(testpoint.Instant) (float64, error)

// Classify walks the tree using offsets from lookup and returns the zone of
// the leaf it reaches. An offset with no matching branch yields a
// *ClassificationError; matching is exact.
func Classify(n Node, lookup OffsetFunc) (string, error) {
	for {
		switch cur := n.(type) {
		case *Leaf:
			return cur.Zone, nil
		case *Internal:
			v, err := lookup(cur.TestPoint)
			if err != nil {
				return "", fmt.Errorf("looking up offset at %s: %w", cur.TestPoint, err)
			}
			child, ok := cur.Children[v]
			if !ok {
				return "", &ClassificationError{TestPoint: cur.TestPoint, Offset: v, Known: SortedOffsets(cur.Children)}
			}
			n = child
		default:
			return "", fmt.Errorf("unexpected node type %T", n)
		}
	}
}

// Depth returns 0 for a leaf and 1 + the deepest child otherwise.
func Depth(n Node) int {
	switch cur := n.(type) {
	case *Leaf:
		return 0
	case *Internal:
		deepest := 0
		for _, child := range cur.Children {
			deepest = max(deepest, Depth(child))
		}
		return deepest + 1
	default:
		panic(fmt.Sprintf("tree: unexpected node type %T", n))
	}
}

// LeafDepths maps every leaf zone to its depth below n.
func LeafDepths(n Node) map[string]int {
	depths := make(map[string]int)
	var walk func(Node, int)
	walk = func(n Node, d int) {
		switch cur := n.(type) {
		case *Leaf:
			depths[cur.Zone] = d
		case *Internal:
			for _, child := range cur.Children {
				walk(child, d+1)
			}
		default:
			panic(fmt.Sprintf("tree: unexpected node type %T", n))
		}
	}
	walk(n, 0)
	return depths
}

// Leaves returns every leaf zone in serialization order. A zone appearing
// twice would indicate a broken tree; Leaves does not hide duplicates.
func Leaves(n Node) []string {
	var zones []string
	var walk func(Node)
	walk = func(n Node) {
		switch cur := n.(type) {
		case *Leaf:
			zones = append(zones, cur.Zone)
		case *Internal:
			for _, v := range SortedOffsets(cur.Children) {
				walk(cur.Children[v])
			}
		default:
			panic(fmt.Sprintf("tree: unexpected node type %T", n))
		}
	}
	walk(n)
	return zones
}

// TestPoints returns the distinct test points probed anywhere in the tree,
// in chronological order.
func TestPoints(n Node) []testpoint.Instant {
	seen := make(map[testpoint.Instant]bool)
	var walk func(Node)
	walk = func(n Node) {
		if in, ok := n.(*Internal); ok {
			seen[in.TestPoint] = true
			for _, child := range in.Children {
				walk(child)
			}
		}
	}
	walk(n)
	points := make([]testpoint.Instant, 0, len(seen))
	for p := range seen {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].String() < points[j].String()
	})
	return points
}

// SortedOffsets returns the child keys in ascending numeric order. This is
// the order children are serialized in.
func SortedOffsets(children map[float64]Node) []float64 {
	keys := make([]float64, 0, len(children))
	for v := range children {
		keys = append(keys, v)
	}
	sort.Float64s(keys)
	return keys
}
