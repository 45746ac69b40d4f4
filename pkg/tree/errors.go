package tree

import (
	"fmt"
	"strings"

	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
)

// ClassificationError reports an offset that matches no trained branch.
type ClassificationError struct {
	Zone      string
	Known     []float64
	TestPoint testpoint.Instant
	Offset    float64
}

func (e *ClassificationError) Error() string {
	who := "candidate"
	if e.Zone != "" {
		who = e.Zone
	}
	return fmt.Sprintf("%s: offset %s at %s matches no branch (known %v)", who, FormatOffset(e.Offset), e.TestPoint, e.Known)
}

// DegenerateInputError reports rows that no column can separate. Dedup
// should have collapsed them before training.
type DegenerateInputError struct {
	Rows []string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("rows have identical offset vectors and cannot be split: %s", strings.Join(e.Rows, ", "))
}
