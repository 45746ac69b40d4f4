// Package tzconvert provides UTC offset conversion and formatting helpers.
// Offsets are carried as minutes east of UTC (float64, since historical
// local mean time offsets include seconds).
package tzconvert

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SecondsToMinutes converts an offset in seconds, as returned by
// time.Time.Zone, to minutes.
// Example: SecondsToMinutes(19800) returns 330 (Asia/Kolkata).
// Example: SecondsToMinutes(-2670) returns -44.5 (Monrovia mean time).
func SecondsToMinutes(secs int) float64 {
	return float64(secs) / 60
}

// MinutesToSeconds converts an offset in minutes back to whole seconds.
func MinutesToSeconds(minutes float64) int {
	return int(math.Round(minutes * 60))
}

// FormatOffset renders an offset in minutes as UTC±hh:mm, adding :ss only
// when the offset has a seconds component.
// Examples:
//   - 0 returns "UTC+00:00"
//   - 330 returns "UTC+05:30"
//   - -300 returns "UTC-05:00"
//   - -44.5 returns "UTC-00:44:30"
func FormatOffset(minutes float64) string {
	secs := MinutesToSeconds(minutes)
	sign := '+'
	if secs < 0 {
		sign = '-'
		secs = -secs
	}
	h, m, s := secs/3600, secs/60%60, secs%60
	if s != 0 {
		return fmt.Sprintf("UTC%c%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, h, m)
}

// ParseOffset extracts an offset in minutes from strings such as
// "UTC", "UTC+8", "UTC-4", "UTC+05:30", "+0530", or "-03:00".
func ParseOffset(s string) (float64, error) {
	rest := strings.TrimSpace(s)
	rest = strings.TrimPrefix(strings.TrimPrefix(rest, "UTC"), "GMT")
	if rest == "" {
		if strings.TrimSpace(s) == "" {
			return 0, fmt.Errorf("empty offset")
		}
		return 0, nil
	}

	sign := 1
	switch rest[0] {
	case '-':
		sign = -1
		rest = rest[1:]
	case '+':
		rest = rest[1:]
	default:
		return 0, fmt.Errorf("offset %q: missing sign", s)
	}

	var hours, mins string
	switch {
	case strings.Contains(rest, ":"):
		hours, mins, _ = strings.Cut(rest, ":")
	case len(rest) == 4:
		hours, mins = rest[:2], rest[2:]
	default:
		hours, mins = rest, "0"
	}
	h, err := strconv.Atoi(hours)
	if err != nil || h > 14 {
		return 0, fmt.Errorf("offset %q: bad hours", s)
	}
	m, err := strconv.Atoi(mins)
	if err != nil || m > 59 {
		return 0, fmt.Errorf("offset %q: bad minutes", s)
	}
	return float64(sign * (h*60 + m)), nil
}

// FixedZone returns a location with a constant offset, named after it.
func FixedZone(minutes float64) *time.Location {
	return time.FixedZone(FormatOffset(minutes), MinutesToSeconds(minutes))
}
