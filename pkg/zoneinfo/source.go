// Package zoneinfo reads zone names and UTC offsets from the tz database.
package zoneinfo

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
)

// ErrUnknownZone is returned for a zone the source has no data for.
var ErrUnknownZone = errors.New("unknown zone")

// Source enumerates zones and reports their offsets.
type Source interface {
	// Zones returns every known zone, sorted.
	Zones() ([]string, error)
	// Offset returns the UTC offset of zone, in minutes, at the wall-clock
	// time at.
	Offset(zone string, at testpoint.Instant) (float64, error)
}

// Fingerprinter is implemented by sources that can identify the exact rule
// data behind a zone, so derived values can be cached across runs.
type Fingerprinter interface {
	Fingerprint(zone string) ([]byte, error)
}

// TZData is a Source backed by a zoneinfo directory. With an empty
// directory it falls back to time.LoadLocation, which also consults the
// embedded database when the binary imports time/tzdata.
type TZData struct {
	logger    *slog.Logger
	locations *otter.Cache[string, *time.Location]
	dir       string
}

// NewTZData returns a source reading TZif files under dir.
func NewTZData(dir string, logger *slog.Logger) *TZData {
	if logger == nil {
		logger = slog.Default()
	}
	return &TZData{
		dir:    dir,
		logger: logger,
		locations: otter.Must(&otter.Options[string, *time.Location]{
			MaximumSize:     4096,
			InitialCapacity: 512,
		}),
	}
}

// Dir returns the zoneinfo directory, which may be empty.
func (s *TZData) Dir() string { return s.dir }

// Zones lists the zones assigned to a country in zone.tab, like most
// consumers of the tz database do. Without a zone table it walks the
// directory for TZif files instead.
func (s *TZData) Zones() ([]string, error) {
	if s.dir == "" {
		return nil, errors.New("zone enumeration needs a zoneinfo directory")
	}
	for _, name := range zoneTables {
		path := filepath.Join(s.dir, name)
		zones, err := readZoneTable(path)
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("zone table not found", "path", path)
			continue
		}
		if err != nil {
			return nil, err
		}
		s.logger.Debug("loaded zone table", "path", path, "zones", len(zones))
		return zones, nil
	}
	s.logger.Info("no zone table found, walking zoneinfo tree", "dir", s.dir)
	return walkZoneinfo(s.dir, s.logger)
}

// Location returns the parsed rules for zone, loading them once.
func (s *TZData) Location(zone string) (*time.Location, error) {
	if loc, ok := s.locations.GetIfPresent(zone); ok {
		return loc, nil
	}

	var loc *time.Location
	if s.dir == "" {
		var err error
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnknownZone, zone, err)
		}
	} else {
		data, err := s.Fingerprint(zone)
		if err != nil {
			return nil, err
		}
		loc, err = time.LoadLocationFromTZData(zone, data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filepath.Join(s.dir, zone), err)
		}
	}
	s.locations.Set(zone, loc)
	s.logger.Debug("location loaded", "zone", zone, "cached", s.locations.EstimatedSize())
	return loc, nil
}

// Fingerprint returns the raw TZif bytes of zone.
func (s *TZData) Fingerprint(zone string) ([]byte, error) {
	if s.dir == "" {
		return nil, errors.New("fingerprints need a zoneinfo directory")
	}
	if !filepath.IsLocal(zone) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	path := filepath.Join(s.dir, zone)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZone, zone)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Offset reports the offset in effect at the wall-clock instant. Ambiguous
// or skipped wall-clock times read as standard time.
func (s *TZData) Offset(zone string, at testpoint.Instant) (float64, error) {
	loc, err := s.Location(zone)
	if err != nil {
		return 0, err
	}
	return OffsetIn(loc, at), nil
}

// transitionWindow bounds how far from a wall-clock instant we look for
// the offsets on either side of a transition.
const transitionWindow = 12 * time.Hour

// OffsetIn returns the offset of loc at the wall-clock instant, in minutes.
// A wall-clock time that occurs twice (fall-back overlap) or not at all
// (spring-forward gap) is read as standard time.
func OffsetIn(loc *time.Location, at testpoint.Instant) float64 {
	return float64(standardOffset(loc, at)) / 60
}

func standardOffset(loc *time.Location, at testpoint.Instant) int {
	resolved := at.In(loc)
	wall := at.In(time.UTC)

	type reading struct {
		offset int
		dst    bool
		valid  bool
	}
	var readings []reading
	for _, probe := range []time.Time{resolved.Add(-transitionWindow), resolved, resolved.Add(transitionWindow)} {
		_, offset := probe.Zone()
		if slices.ContainsFunc(readings, func(r reading) bool { return r.offset == offset }) {
			continue
		}
		// The offset is a valid reading when the instant it implies shows
		// the requested wall clock.
		candidate := wall.Add(-time.Duration(offset) * time.Second).In(loc)
		_, got := candidate.Zone()
		r := reading{offset: offset, dst: probe.IsDST(), valid: got == offset}
		if r.valid {
			r.dst = candidate.IsDST()
		}
		readings = append(readings, r)
	}

	valid := slices.DeleteFunc(slices.Clone(readings), func(r reading) bool { return !r.valid })
	if len(valid) == 1 {
		return valid[0].offset
	}
	if len(valid) > 1 {
		readings = valid
	}
	// Overlap or gap: standard time first, then the smaller offset.
	best := readings[0]
	for _, r := range readings[1:] {
		if (best.dst && !r.dst) || (best.dst == r.dst && r.offset < best.offset) {
			best = r
		}
	}
	return best.offset
}

// Static is a Source over precomputed offset vectors. Vectors[zone][i] is
// the offset at Points[i].
type Static struct {
	Vectors map[string][]float64
	Points  []testpoint.Instant
}

// Zones implements Source.
func (s *Static) Zones() ([]string, error) {
	zones := make([]string, 0, len(s.Vectors))
	for zone := range s.Vectors {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	return zones, nil
}

// Offset implements Source.
func (s *Static) Offset(zone string, at testpoint.Instant) (float64, error) {
	vec, ok := s.Vectors[zone]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownZone, zone)
	}
	for i, p := range s.Points {
		if p == at && i < len(vec) {
			return vec[i], nil
		}
	}
	return 0, fmt.Errorf("%s: no offset recorded at %s", zone, at)
}
