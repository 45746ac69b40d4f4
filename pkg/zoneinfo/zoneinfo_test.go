package zoneinfo

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	january = testpoint.Instant{Year: 2010, Month: time.January, Day: 1, Hour: 0, Minute: 27}
	july    = testpoint.Instant{Year: 2010, Month: time.July, Day: 1, Hour: 0, Minute: 27}
)

func TestParseZoneTable(t *testing.T) {
	table := "# comment line\n" +
		"AD\t+4230+00131\tEurope/Andorra\n" +
		"\n" +
		"AE\t+2518+05518\tAsia/Dubai\n" +
		"OM\t+2336+05835\tAsia/Dubai\n" +
		"US\t+404251-0740023\tAmerica/New_York\tEastern (most areas)\n"

	zones, err := parseZoneTable(strings.NewReader(table))
	require.NoError(t, err)
	assert.Equal(t, []string{"America/New_York", "Asia/Dubai", "Europe/Andorra"}, zones)

	_, err = parseZoneTable(strings.NewReader("AD Europe/Andorra\n"))
	require.Error(t, err)
}

func TestOffsetIn(t *testing.T) {
	tests := []struct {
		name string
		loc  *time.Location
		at   testpoint.Instant
		want float64
	}{
		{"utc", time.UTC, january, 0},
		{"fixed east", time.FixedZone("IST", 330*60), january, 330},
		{"fixed west", time.FixedZone("EST", -300*60), july, -300},
		{"fractional", time.FixedZone("LMT", 3208), january, 3208.0 / 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OffsetIn(tt.loc, tt.at))
		})
	}
}

func TestOffsetInReadsStandardTimeAtTransitions(t *testing.T) {
	tests := []struct {
		name string
		zone string
		at   testpoint.Instant
		want float64
	}{
		{"damascus gap", "Asia/Damascus", testpoint.Instant{Year: 2000, Month: time.April, Day: 1, Minute: 27}, 120},
		{"amman gap", "Asia/Amman", testpoint.Instant{Year: 2016, Month: time.April, Day: 1, Minute: 27}, 120},
		{"havana overlap", "America/Havana", testpoint.Instant{Year: 2015, Month: time.November, Day: 1, Minute: 27}, -300},
		{"paris gap", "Europe/Paris", testpoint.Instant{Year: 2010, Month: time.March, Day: 28, Hour: 2, Minute: 30}, 60},
		{"paris overlap", "Europe/Paris", testpoint.Instant{Year: 2010, Month: time.October, Day: 31, Hour: 2, Minute: 30}, 60},
		{"paris summer", "Europe/Paris", july, 120},
		{"paris winter", "Europe/Paris", january, 60},
		{"kolkata", "Asia/Kolkata", july, 330},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := time.LoadLocation(tt.zone)
			require.NoError(t, err)
			assert.Equal(t, tt.want, OffsetIn(loc, tt.at))
		})
	}
}

// TestTZDataSystem uses the host tz database when one is installed.
func TestTZDataSystem(t *testing.T) {
	dir := "/usr/share/zoneinfo"
	if _, err := os.Stat(filepath.Join(dir, "Europe", "Paris")); err != nil {
		t.Skip("no system zoneinfo")
	}
	src := NewTZData(dir, quiet())

	winter, err := src.Offset("Europe/Paris", january)
	require.NoError(t, err)
	summer, err := src.Offset("Europe/Paris", july)
	require.NoError(t, err)
	assert.Equal(t, 60.0, winter)
	assert.Equal(t, 120.0, summer)

	kolkata, err := src.Offset("Asia/Kolkata", january)
	require.NoError(t, err)
	assert.Equal(t, 330.0, kolkata)

	_, err = src.Offset("Mars/Olympus_Mons", january)
	require.ErrorIs(t, err, ErrUnknownZone)
	_, err = src.Offset("../../etc/passwd", january)
	require.ErrorIs(t, err, ErrUnknownZone)

	zones, err := src.Zones()
	require.NoError(t, err)
	assert.Contains(t, zones, "Europe/Paris")
	assert.NotContains(t, zones, "posixrules")
}

func TestWalkZoneinfo(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	write("Europe/Paris", "TZif2...")
	write("America/Argentina/Salta", "TZif3...")
	write("UTC", "TZif2...")
	write("posix/Europe/Paris", "TZif2...")
	write("right/UTC", "TZif2...")
	write("Factory", "TZif2...")
	write("iso3166.tab", "AD\tAndorra\n")
	write("Notes", "not a zone")
	write("Empty", "")

	zones, err := walkZoneinfo(dir, quiet())
	require.NoError(t, err)
	assert.Equal(t, []string{"America/Argentina/Salta", "Europe/Paris", "UTC"}, zones)

	// Without zone.tab, Zones walks the tree.
	src := NewTZData(dir, quiet())
	zones, err = src.Zones()
	require.NoError(t, err)
	assert.Equal(t, []string{"America/Argentina/Salta", "Europe/Paris", "UTC"}, zones)

	// With one, the table wins.
	write("zone.tab", "FR\t+4852+00220\tEurope/Paris\n")
	zones, err = src.Zones()
	require.NoError(t, err)
	assert.Equal(t, []string{"Europe/Paris"}, zones)
}

func TestStatic(t *testing.T) {
	src := &Static{
		Vectors: map[string][]float64{"B": {60, 120}, "A": {0, 0}},
		Points:  []testpoint.Instant{january, july},
	}
	zones, err := src.Zones()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, zones)

	v, err := src.Offset("B", july)
	require.NoError(t, err)
	assert.Equal(t, 120.0, v)

	_, err = src.Offset("C", july)
	require.ErrorIs(t, err, ErrUnknownZone)
	_, err = src.Offset("A", testpoint.Instant{Year: 1999})
	require.Error(t, err)
}

func TestVectorCachePersists(t *testing.T) {
	dir := t.TempDir()
	points := []testpoint.Instant{january, july}

	c, err := NewVectorCache(dir, quiet())
	require.NoError(t, err)
	key := VectorKey([]byte("TZif2 paris"), points)
	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, []float64{60, 120})
	require.NoError(t, c.Save())

	reopened, err := NewVectorCache(dir, quiet())
	require.NoError(t, err)
	vec, ok := reopened.Get(key)
	require.True(t, ok)
	assert.Equal(t, []float64{60, 120}, vec)

	// Returned vectors are copies.
	vec[0] = -1
	again, _ := reopened.Get(key)
	assert.Equal(t, 60.0, again[0])
}

func TestVectorKey(t *testing.T) {
	points := []testpoint.Instant{january}
	base := VectorKey([]byte("rules"), points)
	assert.Len(t, base, 64)
	assert.Equal(t, base, VectorKey([]byte("rules"), points))
	assert.NotEqual(t, base, VectorKey([]byte("rules v2"), points))
	assert.NotEqual(t, base, VectorKey([]byte("rules"), []testpoint.Instant{july}))
}
