// Package dedup collapses zones whose offset vectors are identical so that
// exactly one representative of each equivalence class reaches the tree.
package dedup

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownZone is returned when the priority list names a zone that is not
// in the known zone set. It is a configuration error and fatal to the run.
var ErrUnknownZone = errors.New("priority list names unknown zone")

// ValidatePriority checks every priority entry against the known zones.
// All unknown entries are reported, not just the first.
func ValidatePriority(known []string, priority []string) error {
	set := make(map[string]bool, len(known))
	for _, zone := range known {
		set[zone] = true
	}
	var errs []error
	for _, zone := range priority {
		if !set[zone] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownZone, zone))
		}
	}
	return errors.Join(errs...)
}

// Dedup returns a sub-map of vectors holding one zone per distinct vector.
//
// Within a class the winner is the last zone in sorted order, unless the
// class contains a priority zone: priority entries are applied in order, so
// a later entry beats an earlier one. The priority list is validated first.
func Dedup(vectors map[string][]float64, priority []string) (map[string][]float64, error) {
	zones := make([]string, 0, len(vectors))
	for zone := range vectors {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	if err := ValidatePriority(zones, priority); err != nil {
		return nil, err
	}

	winner := make(map[string]string, len(vectors))
	for _, zone := range zones {
		winner[Key(vectors[zone])] = zone
	}
	for _, zone := range priority {
		winner[Key(vectors[zone])] = zone
	}

	out := make(map[string][]float64, len(winner))
	for _, zone := range winner {
		out[zone] = vectors[zone]
	}
	return out, nil
}

// Classes groups every zone by vector and returns, for each surviving zone in
// deduped, the other members of its class in sorted order. It is a cheap
// cross-check of the tree-based equivalency map.
func Classes(vectors, deduped map[string][]float64) map[string][]string {
	keep := make(map[string]string, len(deduped))
	for zone, vec := range deduped {
		keep[Key(vec)] = zone
	}
	classes := make(map[string][]string)
	for zone, vec := range vectors {
		rep, ok := keep[Key(vec)]
		if !ok || rep == zone {
			continue
		}
		classes[rep] = append(classes[rep], zone)
	}
	for _, members := range classes {
		sort.Strings(members)
	}
	return classes
}

// Key returns a string usable as a map key that is equal for two vectors
// iff they are element-wise equal. Negative zero is folded into zero.
func Key(vec []float64) string {
	var b strings.Builder
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		if v == 0 {
			v = 0
		}
		b.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
	}
	return b.String()
}
