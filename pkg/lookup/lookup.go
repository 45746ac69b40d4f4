// Package lookup answers "which zone is this?" from a generated tree, the
// way the browser runtime does: read the local offset at each probed test
// point and follow the matching branch.
package lookup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/tzsniff/pkg/output"
	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
	"github.com/codeGROOVE-dev/tzsniff/pkg/tree"
	"github.com/codeGROOVE-dev/tzsniff/pkg/zoneinfo"
)

// Step is one probe made while walking the tree.
type Step struct {
	TestPoint testpoint.Instant
	Offset    float64
}

// Sniff returns the zone loc classifies to. Unlike tree.Classify it treats
// an unknown offset as "no answer" rather than an error.
func Sniff(root tree.Node, loc *time.Location) (string, bool) {
	zone, _, ok := Trace(root, loc)
	return zone, ok
}

// Trace is Sniff plus the probes it made, in order.
func Trace(root tree.Node, loc *time.Location) (zone string, steps []Step, ok bool) {
	zone, err := tree.Classify(root, func(p testpoint.Instant) (float64, error) {
		v := zoneinfo.OffsetIn(loc, p)
		steps = append(steps, Step{TestPoint: p, Offset: v})
		return v, nil
	})
	if err != nil {
		return "", steps, false
	}
	return zone, steps, true
}

// Load reads a tree from path. The format follows the extension: .cbor for
// CBOR, .zst for zstd-compressed JSON, JSON otherwise.
func Load(path string) (tree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	name := path
	if strings.HasSuffix(name, ".zst") {
		if data, err = output.Decompress(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		name = strings.TrimSuffix(name, ".zst")
	}

	var root tree.Node
	if filepath.Ext(name) == ".cbor" {
		root, err = tree.UnmarshalCBOR(data)
	} else {
		root, err = tree.Unmarshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}
