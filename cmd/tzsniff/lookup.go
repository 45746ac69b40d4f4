package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/codeGROOVE-dev/tzsniff/pkg/constants"
	"github.com/codeGROOVE-dev/tzsniff/pkg/lookup"
	"github.com/codeGROOVE-dev/tzsniff/pkg/tzconvert"
)

func runLookup(args []string) error {
	fs := pflag.NewFlagSet("lookup", pflag.ContinueOnError)
	var logs logFlags
	treePath := fs.StringP("tree", "t", constants.CompactTreeFile, "Tree document (.json, .min.json, .zst or .cbor)")
	offsets := fs.StringSlice("offset", nil, "Look up a fixed UTC offset such as UTC+05:30 (repeatable)")
	logs.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger, err := logs.logger()
	if err != nil {
		return err
	}

	root, err := lookup.Load(*treePath)
	if err != nil {
		return err
	}
	logger.Debug("tree loaded", "path", *treePath)

	var locations []*time.Location
	for _, name := range fs.Args() {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return fmt.Errorf("loading zone %s: %w", name, err)
		}
		locations = append(locations, loc)
	}
	for _, raw := range *offsets {
		minutes, err := tzconvert.ParseOffset(raw)
		if err != nil {
			return err
		}
		locations = append(locations, tzconvert.FixedZone(minutes))
	}
	if len(locations) == 0 {
		locations = append(locations, time.Local)
	}

	misses := 0
	for _, loc := range locations {
		zone, steps, ok := lookup.Trace(root, loc)
		if logs.verbose {
			for _, step := range steps {
				fmt.Printf("   %s  %s\n", step.TestPoint, tzconvert.FormatOffset(step.Offset))
			}
		}
		if !ok {
			misses++
			fmt.Printf("🌍 %s → %s\n", loc, color.YellowString("no match"))
			continue
		}
		fmt.Printf("🌍 %s → %s\n", loc, color.GreenString(zone))
	}
	if misses > 0 {
		return fmt.Errorf("%d of %d lookups matched no branch", misses, len(locations))
	}
	return nil
}
