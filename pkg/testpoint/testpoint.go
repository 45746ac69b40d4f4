// Package testpoint defines the naive calendar instants at which zone
// offsets are probed.
package testpoint

import (
	"fmt"
	"time"
)

// isoLayout renders an instant without any zone suffix.
const isoLayout = "2006-01-02T15:04:05"

// Instant is a naive (zone-less) calendar timestamp.
type Instant struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

// String returns the ISO-8601 naive date-time, e.g. "2000-01-01T00:27:00".
func (i Instant) String() string {
	return i.In(time.UTC).Format(isoLayout)
}

// In interprets the instant as wall-clock time in loc.
func (i Instant) In(loc *time.Location) time.Time {
	return time.Date(i.Year, i.Month, i.Day, i.Hour, i.Minute, 0, 0, loc)
}

// MarshalText implements encoding.TextMarshaler.
func (i Instant) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Instant) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Parse reads an ISO-8601 naive date-time. Seconds must be zero since
// instants only carry minute precision.
func Parse(s string) (Instant, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return Instant{}, fmt.Errorf("parsing test point %q: %w", s, err)
	}
	if t.Second() != 0 || t.Nanosecond() != 0 {
		return Instant{}, fmt.Errorf("parsing test point %q: sub-minute precision not supported", s)
	}
	return Instant{Year: t.Year(), Month: t.Month(), Day: t.Day(), Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Monthly returns one instant per month for years in [startYear, endYear),
// each on the given day and wall-clock time.
func Monthly(startYear, endYear, day, hour, minute int) []Instant {
	if endYear <= startYear {
		return nil
	}
	points := make([]Instant, 0, (endYear-startYear)*12)
	for year := startYear; year < endYear; year++ {
		for month := time.January; month <= time.December; month++ {
			points = append(points, Instant{Year: year, Month: month, Day: day, Hour: hour, Minute: minute})
		}
	}
	return points
}
