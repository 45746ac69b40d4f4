// Package equivalency maps each canonical zone to the zones the decision
// tree cannot tell apart from it.
package equivalency

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/codeGROOVE-dev/tzsniff/pkg/tree"
)

// Map is keyed by a leaf zone and lists, sorted, the other zones that
// classify to that leaf. Leaves without equivalents are absent.
type Map map[string][]string

// LookupFactory returns the real offset function of a zone.
type LookupFactory func(zone string) tree.OffsetFunc

// ResolveError collects every zone the tree failed to classify.
type ResolveError struct {
	Failures []error
}

func (e *ResolveError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, err := range e.Failures {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d zones could not be classified:\n%s", len(e.Failures), strings.Join(msgs, "\n"))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *ResolveError) Unwrap() []error { return e.Failures }

// Resolve classifies every zone in all that is not a training row and
// groups it under the leaf it reaches. A zone that fails to classify is
// recorded and skipped; the map built from the rest is always returned,
// along with a *ResolveError when anything failed.
func Resolve(root tree.Node, trained []string, all []string, lookup LookupFactory, logger *slog.Logger) (Map, error) {
	if logger == nil {
		logger = slog.Default()
	}
	isTrained := make(map[string]bool, len(trained))
	for _, zone := range trained {
		isTrained[zone] = true
	}

	out := make(Map)
	var failures []error
	for _, zone := range all {
		if isTrained[zone] {
			continue
		}
		leaf, err := tree.Classify(root, lookup(zone))
		if err != nil {
			var cerr *tree.ClassificationError
			if errors.As(err, &cerr) {
				cerr.Zone = zone
			} else {
				err = fmt.Errorf("%s: %w", zone, err)
			}
			logger.Warn("zone not representable by tree", "zone", zone, "error", err)
			failures = append(failures, err)
			continue
		}
		logger.Debug("zone resolved", "zone", zone, "leaf", leaf)
		out[leaf] = append(out[leaf], zone)
	}

	for leaf, zones := range out {
		if len(zones) == 0 {
			delete(out, leaf)
			continue
		}
		sort.Strings(zones)
	}

	if len(failures) > 0 {
		return out, &ResolveError{Failures: failures}
	}
	return out, nil
}
