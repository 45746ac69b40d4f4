// Package generator runs the tree generation pipeline:
//
//	LoadInputs → BuildOffsetVectors → Dedup → BuildTree → Serialize →
//	ResolveEquivalencies → (documents written by the caller)
//
// Each stage is an exported function so it can be run and tested on its
// own. Generator.Run chains them.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codeGROOVE-dev/tzsniff/pkg/dedup"
	"github.com/codeGROOVE-dev/tzsniff/pkg/equivalency"
	"github.com/codeGROOVE-dev/tzsniff/pkg/table"
	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
	"github.com/codeGROOVE-dev/tzsniff/pkg/tree"
	"github.com/codeGROOVE-dev/tzsniff/pkg/zoneinfo"
)

// Generator builds a decision tree from a zone source.
type Generator struct {
	logger   *slog.Logger
	source   zoneinfo.Source
	cache    *zoneinfo.VectorCache
	progress func(format string, args ...any)
	points   []testpoint.Instant
	priority []string
	workers  int
}

// Inputs are the validated inputs of a run.
type Inputs struct {
	Zones    []string
	Priority []string
}

// Result holds everything a run produced. On a classification failure Run
// still returns the Result; only Equivalencies is partial.
type Result struct {
	Tree          tree.Node
	Vectors       map[string][]float64
	Kept          map[string][]float64
	Equivalencies equivalency.Map
	Zones         []string
	Trained       []string
	Pretty        []byte
	Compact       []byte
	Depth         int
}

// NewWithLogger creates a generator probing source at points.
func NewWithLogger(logger *slog.Logger, source zoneinfo.Source, points []testpoint.Instant, opts ...Option) *Generator {
	optHolder := &OptionHolder{}
	for _, opt := range opts {
		opt(optHolder)
	}
	if logger == nil {
		logger = slog.Default()
	}
	progress := optHolder.progress
	if progress == nil {
		progress = func(string, ...any) {}
	}
	workers := optHolder.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Generator{
		logger:   logger,
		source:   source,
		cache:    optHolder.cache,
		progress: progress,
		points:   points,
		priority: optHolder.priority,
		workers:  workers,
	}
}

// New creates a generator that logs to slog.Default.
func New(source zoneinfo.Source, points []testpoint.Instant, opts ...Option) *Generator {
	return NewWithLogger(slog.Default(), source, points, opts...)
}

// Run executes the whole pipeline.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	g.progress("Generating %d test points", len(g.points))

	in, err := LoadInputs(g.source, g.priority)
	if err != nil {
		return nil, err
	}
	g.progress("Obtained %d timezones", len(in.Zones))
	g.logger.Info("inputs loaded", "zones", len(in.Zones), "priority", len(in.Priority))

	vectors, err := BuildOffsetVectors(ctx, g.source, in.Zones, g.points, g.workers, g.cache, g.logger)
	if err != nil {
		return nil, err
	}
	if g.cache != nil {
		if err := g.cache.Save(); err != nil {
			g.logger.Warn("failed to save offset cache", "error", err)
		}
	}

	kept, err := dedup.Dedup(vectors, in.Priority)
	if err != nil {
		return nil, err
	}
	g.progress("Found %d unique timezones based on test points", len(kept))

	root, trained, err := BuildTree(kept, g.points)
	if err != nil {
		return nil, err
	}
	depth := tree.Depth(root)
	g.progress("Generated decision tree with depth %d", depth)
	g.logger.Info("tree built", "leaves", len(trained), "depth", depth, "test_points_used", len(tree.TestPoints(root)))

	pretty, compact, err := Serialize(root)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Tree:    root,
		Vectors: vectors,
		Kept:    kept,
		Zones:   in.Zones,
		Trained: trained,
		Pretty:  pretty,
		Compact: compact,
		Depth:   depth,
	}

	equivalencies, resolveErr := ResolveEquivalencies(root, trained, in.Zones, g.source, g.logger)
	result.Equivalencies = equivalencies
	if resolveErr == nil {
		if want := dedup.Classes(vectors, kept); !reflect.DeepEqual(map[string][]string(equivalencies), want) {
			g.logger.Warn("tree equivalencies disagree with offset vector classes", "tree", len(equivalencies), "vectors", len(want))
		}
	}

	g.logger.Info("generation finished", "duration_ms", time.Since(start).Milliseconds())
	return result, resolveErr
}

// LoadInputs enumerates the known zones and validates the priority list
// against them.
func LoadInputs(source zoneinfo.Source, priority []string) (Inputs, error) {
	zones, err := source.Zones()
	if err != nil {
		return Inputs{}, fmt.Errorf("enumerating zones: %w", err)
	}
	if len(zones) == 0 {
		return Inputs{}, errors.New("zone source returned no zones")
	}
	if err := dedup.ValidatePriority(zones, priority); err != nil {
		return Inputs{}, err
	}
	return Inputs{Zones: zones, Priority: priority}, nil
}

// BuildOffsetVectors computes every zone's offsets at points, using up to
// workers goroutines. The result does not depend on scheduling.
func BuildOffsetVectors(ctx context.Context, source zoneinfo.Source, zones []string, points []testpoint.Instant,
	workers int, cache *zoneinfo.VectorCache, logger *slog.Logger,
) (map[string][]float64, error) {
	fingerprints, _ := source.(zoneinfo.Fingerprinter)
	results := make([][]float64, len(zones))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, zone := range zones {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var key string
			if cache != nil && fingerprints != nil {
				if raw, err := fingerprints.Fingerprint(zone); err == nil {
					key = zoneinfo.VectorKey(raw, points)
					if vec, ok := cache.Get(key); ok {
						results[i] = vec
						return nil
					}
				}
			}

			vec := make([]float64, len(points))
			for c, p := range points {
				v, err := source.Offset(zone, p)
				if err != nil {
					return fmt.Errorf("offset of %s at %s: %w", zone, p, err)
				}
				vec[c] = v
			}
			results[i] = vec
			if key != "" {
				cache.Set(key, vec)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vectors := make(map[string][]float64, len(zones))
	for i, zone := range zones {
		vectors[zone] = results[i]
	}
	if logger != nil {
		logger.Debug("offset vectors built", "zones", len(vectors), "points", len(points))
	}
	return vectors, nil
}

// BuildTree trains the decision tree on the deduplicated vectors. It also
// returns the training rows in sorted order.
func BuildTree(kept map[string][]float64, points []testpoint.Instant) (tree.Node, []string, error) {
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
	if err != nil {
		return nil, nil, fmt.Errorf("building table: %w", err)
	}
	root, err := tree.Build(tbl, points)
	if err != nil {
		return nil, nil, fmt.Errorf("building tree: %w", err)
	}
	return root, names, nil
}

// Serialize renders the tree in its pretty and compact forms.
func Serialize(root tree.Node) (pretty, compact []byte, err error) {
	if pretty, err = tree.MarshalPretty(root); err != nil {
		return nil, nil, fmt.Errorf("serializing tree: %w", err)
	}
	if compact, err = tree.MarshalCompact(root); err != nil {
		return nil, nil, fmt.Errorf("serializing tree: %w", err)
	}
	return pretty, compact, nil
}

// ResolveEquivalencies classifies every zone that is not a training row
// using its real offsets.
func ResolveEquivalencies(root tree.Node, trained, zones []string, source zoneinfo.Source, logger *slog.Logger) (equivalency.Map, error) {
	lookup := func(zone string) tree.OffsetFunc {
		return func(p testpoint.Instant) (float64, error) {
			return source.Offset(zone, p)
		}
	}
	return equivalency.Resolve(root, trained, zones, lookup, logger)
}

// MarshalEquivalencies renders the equivalency document: keys sorted,
// two-space indentation, trailing newline.
func MarshalEquivalencies(m equivalency.Map) ([]byte, error) {
	if m == nil {
		m = equivalency.Map{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing equivalencies: %w", err)
	}
	return append(data, '\n'), nil
}
