// Package config loads generator settings from a YAML file.
//
// The file is selected by the TZSNIFF_CONFIG environment variable or the
// --config flag. Every field is optional; zero values fall back to the
// defaults in Default. Command-line flags override file values.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/codeGROOVE-dev/tzsniff/pkg/constants"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "TZSNIFF_CONFIG"

// Config is the full generator configuration.
type Config struct {
	// Zoneinfo is the tz database directory offsets are read from.
	Zoneinfo string `yaml:"zoneinfo"`

	// Priority is the ordered list of preferred zones. Defaults to the
	// equivalency output of the previous run.
	Priority string `yaml:"priority"`

	// CacheDir persists offset vectors between runs. Empty disables it.
	CacheDir string `yaml:"cache_dir"`

	TestPoints TestPointsConfig `yaml:"test_points"`
	Output     OutputConfig     `yaml:"output"`

	// Workers bounds parallel offset computation. 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// TestPointsConfig selects the monthly probes. EndYear is exclusive.
type TestPointsConfig struct {
	StartYear int `yaml:"start_year"`
	EndYear   int `yaml:"end_year"`
	Day       int `yaml:"day"`
	Hour      int `yaml:"hour"`
	Minute    int `yaml:"minute"`
}

// OutputConfig names the files the generator writes.
type OutputConfig struct {
	Dir          string `yaml:"dir"`
	Tree         string `yaml:"tree"`
	CompactTree  string `yaml:"compact_tree"`
	Equivalences string `yaml:"equivalencies"`

	// CBOR additionally writes a deterministic CBOR tree to CBORTree.
	CBOR     bool   `yaml:"cbor"`
	CBORTree string `yaml:"cbor_tree"`
	// Zstd additionally writes a zstd-compressed compact tree.
	Zstd bool `yaml:"zstd"`
}

// Default returns the settings the original tree was generated with.
func Default() Config {
	return Config{
		Zoneinfo: constants.DefaultZoneinfoDir,
		Priority: constants.EquivalencyFile,
		TestPoints: TestPointsConfig{
			StartYear: constants.StartYear,
			EndYear:   constants.EndYear,
			Day:       constants.TestDay,
			Hour:      constants.TestHour,
			Minute:    constants.TestMinute,
		},
		Output: OutputConfig{
			Dir:          ".",
			Tree:         constants.TreeFile,
			CompactTree:  constants.CompactTreeFile,
			Equivalences: constants.EquivalencyFile,
			CBORTree:     constants.CBORTreeFile,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the settings describe a usable run.
func (c *Config) Validate() error {
	var errs []error
	tp := c.TestPoints
	if tp.EndYear <= tp.StartYear {
		errs = append(errs, fmt.Errorf("test_points: end_year %d must be after start_year %d", tp.EndYear, tp.StartYear))
	}
	if tp.Day < 1 || tp.Day > 28 {
		errs = append(errs, fmt.Errorf("test_points: day %d must be within 1..28", tp.Day))
	}
	if tp.Hour < 0 || tp.Hour > 23 {
		errs = append(errs, fmt.Errorf("test_points: hour %d must be within 0..23", tp.Hour))
	}
	if tp.Minute < 0 || tp.Minute > 59 {
		errs = append(errs, fmt.Errorf("test_points: minute %d must be within 0..59", tp.Minute))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Workers))
	}
	if c.Output.Tree == "" || c.Output.CompactTree == "" || c.Output.Equivalences == "" || (c.Output.CBOR && c.Output.CBORTree == "") {
		errs = append(errs, errors.New("output: file names must not be empty"))
	}
	return errors.Join(errs...)
}
