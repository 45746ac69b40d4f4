package equivalency

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/tzsniff/pkg/dedup"
	"github.com/codeGROOVE-dev/tzsniff/pkg/table"
	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
	"github.com/codeGROOVE-dev/tzsniff/pkg/tree"
)

var points = []testpoint.Instant{
	{Year: 2000, Month: time.January, Day: 1, Hour: 0, Minute: 27},
	{Year: 2000, Month: time.February, Day: 1, Hour: 0, Minute: 27},
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func factory(vectors map[string][]float64) LookupFactory {
	return func(zone string) tree.OffsetFunc {
		return func(p testpoint.Instant) (float64, error) {
			vec, ok := vectors[zone]
			if !ok {
				return 0, fmt.Errorf("unknown zone %s", zone)
			}
			for i, q := range points {
				if p == q && i < len(vec) {
					return vec[i], nil
				}
			}
			return 0, fmt.Errorf("no offset at %s", p)
		}
	}
}

// train runs dedup and builds the tree the way the generator does.
func train(t *testing.T, vectors map[string][]float64, priority []string) (tree.Node, []string) {
	t.Helper()
	kept, err := dedup.Dedup(vectors, priority)
	require.NoError(t, err)
	names := make([]string, 0, len(kept))
	for zone := range kept {
		names = append(names, zone)
	}
	sort.Strings(names)
	rows := make([][]float64, len(names))
	for i, zone := range names {
		rows[i] = kept[zone]
	}
	tbl, err := table.FromRows(names, rows)
	require.NoError(t, err)
	root, err := tree.Build(tbl, points)
	require.NoError(t, err)
	return root, names
}

func sortedZones(vectors map[string][]float64) []string {
	zones := make([]string, 0, len(vectors))
	for zone := range vectors {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	return zones
}

func TestResolveDroppedDuplicate(t *testing.T) {
	vectors := map[string][]float64{
		"A": {0, 0},
		"B": {60, 60},
		"C": {0, 60},
		"D": {0, 0},
	}
	root, trained := train(t, vectors, []string{"A"})
	assert.Equal(t, []string{"A", "B", "C"}, trained)

	got, err := Resolve(root, trained, sortedZones(vectors), factory(vectors), quiet())
	require.NoError(t, err)
	assert.Equal(t, Map{"A": {"D"}}, got)
}

func TestResolvePriorityKeepsPreferred(t *testing.T) {
	vectors := map[string][]float64{
		"A": {0, 0},
		"B": {60, 60},
		"C": {0, 60},
		"D": {0, 0},
	}
	root, trained := train(t, vectors, []string{"D"})
	assert.Equal(t, []string{"B", "C", "D"}, trained)

	got, err := Resolve(root, trained, sortedZones(vectors), factory(vectors), quiet())
	require.NoError(t, err)
	assert.Equal(t, Map{"D": {"A"}}, got)
}

func TestResolveSortsAndOmitsEmpty(t *testing.T) {
	vectors := map[string][]float64{
		"Z": {60, 60},
		"B": {60, 60},
		"M": {60, 60},
		"A": {0, 0},
		"C": {0, 60},
	}
	root, trained := train(t, vectors, []string{"M"})

	got, err := Resolve(root, trained, sortedZones(vectors), factory(vectors), quiet())
	require.NoError(t, err)
	assert.Equal(t, Map{"M": {"B", "Z"}}, got)
	assert.NotContains(t, got, "A")
	assert.NotContains(t, got, "C")
}

func TestResolveCollectsFailures(t *testing.T) {
	vectors := map[string][]float64{
		"A": {0, 0},
		"B": {60, 60},
		"C": {0, 60},
	}
	root, trained := train(t, vectors, nil)

	actual := map[string][]float64{
		"A":   {0, 0},
		"B":   {60, 60},
		"C":   {0, 60},
		"D":   {0, 0},
		"X":   {0, 30},
		"Y":   {-60, 0},
		"Gap": nil,
	}
	got, err := Resolve(root, trained, sortedZones(actual), factory(actual), quiet())

	// Partial results survive.
	assert.Equal(t, Map{"A": {"D"}}, got)

	var rerr *ResolveError
	require.ErrorAs(t, err, &rerr)
	require.Len(t, rerr.Failures, 3)

	var cerr *tree.ClassificationError
	require.ErrorAs(t, rerr.Failures[1], &cerr)
	assert.Equal(t, "X", cerr.Zone)
	assert.Equal(t, points[1], cerr.TestPoint)

	require.ErrorAs(t, rerr.Failures[2], &cerr)
	assert.Equal(t, "Y", cerr.Zone)
	assert.Equal(t, points[0], cerr.TestPoint)

	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "3 zones could not be classified")
	assert.False(t, errors.As(rerr.Failures[0], &cerr))
}
