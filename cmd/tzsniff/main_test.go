package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
	"github.com/codeGROOVE-dev/tzsniff/pkg/tree"
)

func TestLogFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		debug   bool
		info    bool
		wantErr bool
	}{
		{"default is errors only", nil, false, false, false},
		{"verbose", []string{"-v"}, true, true, false},
		{"explicit level", []string{"--log-level=info"}, false, true, false},
		{"bad level", []string{"--log-level=loud"}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			var l logFlags
			l.register(fs)
			require.NoError(t, fs.Parse(tt.args))

			logger, err := l.logger()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			ctx := t.Context()
			assert.Equal(t, tt.debug, logger.Handler().Enabled(ctx, -4))
			assert.Equal(t, tt.info, logger.Handler().Enabled(ctx, 0))
		})
	}
}

func TestRunLookupOffsets(t *testing.T) {
	root := &tree.Internal{
		TestPoint: testpoint.Instant{Year: 2010, Month: time.January, Day: 1, Hour: 0, Minute: 27},
		Children: map[float64]tree.Node{
			0:   &tree.Leaf{Zone: "Etc/UTC"},
			330: &tree.Leaf{Zone: "Asia/Kolkata"},
		},
	}
	data, err := tree.MarshalCompact(root)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "tz-tree.min.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	require.NoError(t, runLookup([]string{"--tree", path, "--offset", "UTC+05:30", "--offset", "UTC"}))
	require.NoError(t, runLookup([]string{"--tree", path, "Asia/Kolkata"}))
	require.ErrorContains(t, runLookup([]string{"--tree", path, "--offset", "UTC-03:00"}), "1 of 1 lookups")
	require.Error(t, runLookup([]string{"--tree", path, "Atlantis/Capital"}))
	require.Error(t, runLookup([]string{"--tree", filepath.Join(t.TempDir(), "none.json")}))
}

func TestRunGenerate(t *testing.T) {
	dir := "/usr/share/zoneinfo"
	if _, err := os.Stat(filepath.Join(dir, "zone.tab")); err != nil {
		t.Skip("no system zoneinfo")
	}
	out := t.TempDir()
	args := []string{
		"--zoneinfo", dir,
		"--out-dir", out,
		"--priority", filepath.Join(out, "equivalencies.json"),
		"--start-year", "2010", "--end-year", "2012",
		"--quiet",
	}
	require.NoError(t, runGenerate(t.Context(), args))
	first, err := os.ReadFile(filepath.Join(out, "tz-tree.min.json"))
	require.NoError(t, err)

	// A second run reads the first run's equivalencies as its priority list
	// and reproduces the same documents.
	require.NoError(t, runGenerate(t.Context(), append(args, "--check")))
	second, err := os.ReadFile(filepath.Join(out, "tz-tree.min.json"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, runLookup([]string{"--tree", filepath.Join(out, "tz-tree.json"), "Europe/Paris"}))
}
