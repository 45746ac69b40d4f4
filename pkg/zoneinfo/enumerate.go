package zoneinfo

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// zoneTables are tried in order. zone.tab lists one zone per country
// and region, zone1970.tab is the newer, more merged table.
var zoneTables = []string{"zone.tab", "zone1970.tab"}

// skipped names are TZif files that are not geographic zones.
var skipped = map[string]bool{
	"Factory":    true,
	"localtime":  true,
	"posixrules": true,
}

var tzifMagic = []byte("TZif")

// readZoneTable returns the sorted, distinct zone names (third column) of
// a zone.tab style file.
func readZoneTable(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only
	zones, err := parseZoneTable(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return zones, nil
}

func parseZoneTable(r io.Reader) ([]string, error) {
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: want at least 3 tab-separated fields, got %d", line, len(fields))
		}
		seen[fields[2]] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	zones := make([]string, 0, len(seen))
	for zone := range seen {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	return zones, nil
}

// walkZoneinfo lists every TZif file under dir whose path components are
// capitalized, which excludes the posix/ and right/ mirrors.
func walkZoneinfo(dir string, logger *slog.Logger) ([]string, error) {
	var zones []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		name := d.Name()
		if !capitalized(name) || skipped[name] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || strings.Contains(name, ".") {
			return nil
		}
		ok, err := isTZif(path)
		if err != nil {
			logger.Debug("skipping unreadable file", "path", path, "error", err)
			return nil
		}
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		zones = append(zones, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(zones)
	return zones, nil
}

func capitalized(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

func isTZif(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close() //nolint:errcheck // read-only
	head := make([]byte, len(tzifMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(head, tzifMagic), nil
}
