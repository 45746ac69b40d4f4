// Package histogram renders the leaf-depth distribution of a decision tree.
package histogram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/tzsniff/pkg/tree"
)

// maxBar is the widest bar drawn; longer counts are scaled down.
const maxBar = 40

// Summary describes how many probes zones need before they are identified.
type Summary struct {
	Depths     map[int]int
	Leaves     int
	MaxDepth   int
	MeanDepth  float64
	TestPoints int
}

// Summarize counts leaves per depth.
func Summarize(root tree.Node) Summary {
	s := Summary{Depths: make(map[int]int)}
	total := 0
	for _, d := range tree.LeafDepths(root) {
		s.Depths[d]++
		s.Leaves++
		total += d
		s.MaxDepth = max(s.MaxDepth, d)
	}
	if s.Leaves > 0 {
		s.MeanDepth = float64(total) / float64(s.Leaves)
	}
	s.TestPoints = len(tree.TestPoints(root))
	return s
}

// depthColor picks a colour by how close depth is to the deepest leaf.
func depthColor(depth, deepest int) *color.Color {
	switch {
	case deepest == 0 || depth*3 < deepest:
		return color.New(color.FgBlue)
	case depth*3 < deepest*2:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// Generate creates a visual representation of the leaf depths.
func Generate(s Summary) string {
	var output strings.Builder

	output.WriteString("📊 Probes Needed Per Zone\n")
	output.WriteString(strings.Repeat("─", 50) + "\n")

	if s.Leaves == 0 {
		return output.String() + "No leaves\n"
	}

	peak := 0
	depths := make([]int, 0, len(s.Depths))
	for d, count := range s.Depths {
		depths = append(depths, d)
		peak = max(peak, count)
	}
	sort.Ints(depths)

	for _, d := range depths {
		count := s.Depths[d]
		barLength := count
		if peak > maxBar {
			barLength = count * maxBar / peak
		}
		line := fmt.Sprintf("%2d (%3d) ", d, count)
		if barLength == 0 {
			line += color.New(color.FgHiBlack).Sprint("·")
		} else {
			line += depthColor(d, s.MaxDepth).Sprint(strings.Repeat("█", barLength))
		}
		output.WriteString(line + "\n")
	}

	output.WriteString(strings.Repeat("─", 50) + "\n")
	output.WriteString(fmt.Sprintf("%d zones, mean depth %.2f, max depth %d, %d distinct test points\n",
		s.Leaves, s.MeanDepth, s.MaxDepth, s.TestPoints))
	return output.String()
}
