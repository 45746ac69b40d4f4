package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/codeGROOVE-dev/tzsniff/pkg/config"
	"github.com/codeGROOVE-dev/tzsniff/pkg/equivalency"
	"github.com/codeGROOVE-dev/tzsniff/pkg/generator"
	"github.com/codeGROOVE-dev/tzsniff/pkg/histogram"
	"github.com/codeGROOVE-dev/tzsniff/pkg/output"
	"github.com/codeGROOVE-dev/tzsniff/pkg/priority"
	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
	"github.com/codeGROOVE-dev/tzsniff/pkg/zoneinfo"
)

func runGenerate(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	var (
		logs       logFlags
		configPath = fs.StringP("config", "c", os.Getenv(config.EnvVar), "YAML config file (or set "+config.EnvVar+")")
		zoneDir    = fs.String("zoneinfo", "", "tz database directory (or set ZONEINFO)")
		prio       = fs.String("priority", "", "Priority list; defaults to the equivalency output of the last run")
		outDir     = fs.StringP("out-dir", "o", "", "Directory to write documents to")
		cacheDir   = fs.String("cache-dir", "", "Persist offset vectors here between runs")
		workers    = fs.Int("workers", 0, "Zones computed in parallel (default GOMAXPROCS)")
		startYear  = fs.Int("start-year", 0, "First year of monthly test points")
		endYear    = fs.Int("end-year", 0, "Year after the last monthly test point")
		withCBOR   = fs.Bool("cbor", false, "Also write a CBOR tree")
		withZstd   = fs.Bool("zstd", false, "Also write a zstd-compressed compact tree")
		check      = fs.Bool("check", false, "Fail if the documents on disk differ from a fresh run instead of writing")
		quiet      = fs.BoolP("quiet", "q", false, "Suppress progress output")
		noHist     = fs.Bool("no-histogram", false, "Do not print the depth histogram")
	)
	logs.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logger, err := logs.logger()
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *zoneDir == "" {
		*zoneDir = os.Getenv("ZONEINFO")
	}
	if *zoneDir != "" {
		cfg.Zoneinfo = *zoneDir
	}
	if *prio != "" {
		cfg.Priority = *prio
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if fs.Changed("workers") {
		cfg.Workers = *workers
	}
	if fs.Changed("start-year") {
		cfg.TestPoints.StartYear = *startYear
	}
	if fs.Changed("end-year") {
		cfg.TestPoints.EndYear = *endYear
	}
	cfg.Output.CBOR = cfg.Output.CBOR || *withCBOR
	cfg.Output.Zstd = cfg.Output.Zstd || *withZstd
	if err := cfg.Validate(); err != nil {
		return err
	}

	progress := func(format string, args ...any) {
		if !*quiet {
			color.New(color.FgCyan).Printf(format+"\n", args...)
		}
	}

	preferred, found, err := priority.Load(cfg.Priority)
	if err != nil {
		return err
	}
	if !found {
		logger.Warn("priority list not found, using sorted order only", "path", cfg.Priority)
	}

	opts := []generator.Option{
		generator.WithPriority(preferred),
		generator.WithWorkers(cfg.Workers),
		generator.WithProgress(progress),
	}
	if cfg.CacheDir != "" {
		cache, err := zoneinfo.NewVectorCache(cfg.CacheDir, logger)
		if err != nil {
			return err
		}
		opts = append(opts, generator.WithVectorCache(cache))
	}

	tp := cfg.TestPoints
	points := testpoint.Monthly(tp.StartYear, tp.EndYear, tp.Day, tp.Hour, tp.Minute)
	source := zoneinfo.NewTZData(cfg.Zoneinfo, logger)

	result, runErr := generator.NewWithLogger(logger, source, points, opts...).Run(ctx)
	var resolveErr *equivalency.ResolveError
	if runErr != nil && !errors.As(runErr, &resolveErr) {
		return runErr
	}

	docs, err := result.Documents(cfg.Output)
	if err != nil {
		return err
	}
	writer := output.NewWriter(cfg.Output.Dir, logger)
	if err := generator.WriteOutputs(writer, docs, *check); err != nil {
		return err
	}
	for _, doc := range docs {
		if *check {
			progress("Checked %s", writer.Path(doc.Name))
		} else {
			progress("Wrote %s", writer.Path(doc.Name))
		}
	}

	if !*quiet && !*noHist {
		fmt.Println()
		fmt.Print(histogram.Generate(histogram.Summarize(result.Tree)))
	}

	if resolveErr != nil {
		return resolveErr
	}
	return nil
}
