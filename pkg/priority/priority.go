// Package priority loads the ordered list of preferred zone names.
//
// The list normally comes from the equivalency document of a previous run:
// its keys, in file order, are the zones that won their class last time.
// A plain JSON array of names is accepted too. Both forms may carry //
// and /* */ comments and trailing commas.
package priority

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/jsonc"
)

// ErrFormat is returned for documents that are neither an object nor an
// array of strings.
var ErrFormat = errors.New("priority document must be an object or an array of strings")

// Load reads the priority list at path. A missing file yields an empty list
// and found == false.
func Load(path string) (zones []string, found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	zones, err = Parse(data)
	if err != nil {
		return nil, true, fmt.Errorf("parsing %s: %w", path, err)
	}
	return zones, true, nil
}

// Parse extracts the ordered zone names from a priority document.
func Parse(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, ErrFormat
	}

	var zones []string
	switch delim {
	case '{':
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := tok.(string)
			if !ok {
				return nil, ErrFormat
			}
			zones = append(zones, key)
			// The value (list of equivalent zones) is not needed.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
	case '[':
		for dec.More() {
			var zone string
			if err := dec.Decode(&zone); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFormat, err)
			}
			zones = append(zones, zone)
		}
	default:
		return nil, ErrFormat
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after priority document")
	}
	return zones, nil
}
