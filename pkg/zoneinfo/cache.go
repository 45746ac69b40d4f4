package zoneinfo

import (
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/maypok86/otter/v2"
	"github.com/zeebo/blake3"

	"github.com/codeGROOVE-dev/tzsniff/pkg/testpoint"
)

const vectorCacheFile = "offset-vectors.gob"

// VectorCache remembers offset vectors across runs. Entries are keyed by
// the zone's TZif bytes and the test points, so a tzdata upgrade or a new
// test window simply misses.
type VectorCache struct {
	cache  *otter.Cache[string, []float64]
	logger *slog.Logger
	dir    string
	mu     sync.Mutex
}

// NewVectorCache opens the cache stored in dir, creating dir if needed.
func NewVectorCache(dir string, logger *slog.Logger) (*VectorCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := &VectorCache{
		cache: otter.Must(&otter.Options[string, []float64]{
			MaximumSize:     100_000,
			InitialCapacity: 1_000,
		}),
		dir:    dir,
		logger: logger,
	}
	if err := c.loadFromDisk(); err != nil {
		logger.Warn("failed to load offset cache from disk", "error", err)
	}
	logger.Debug("offset cache initialized", "dir", dir, "entries_loaded", c.cache.EstimatedSize())
	return c, nil
}

// VectorKey derives the cache key for a zone's rule data and test points.
func VectorKey(tzif []byte, points []testpoint.Instant) string {
	h := blake3.New()
	h.Write(tzif) //nolint:errcheck // hash writes never fail
	for _, p := range points {
		h.Write([]byte(p.String())) //nolint:errcheck // hash writes never fail
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a copy of the cached vector for key.
func (c *VectorCache) Get(key string) ([]float64, bool) {
	vec, ok := c.cache.GetIfPresent(key)
	if !ok {
		return nil, false
	}
	return append([]float64(nil), vec...), true
}

// Set stores a copy of vec under key.
func (c *VectorCache) Set(key string, vec []float64) {
	c.cache.Set(key, append([]float64(nil), vec...))
}

// Len returns the approximate number of cached vectors.
func (c *VectorCache) Len() int {
	return c.cache.EstimatedSize()
}

func (c *VectorCache) loadFromDisk() error {
	path := filepath.Join(c.dir, vectorCacheFile)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Debug("no existing offset cache file found", "path", path)
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			c.logger.Debug("failed to close cache file", "error", closeErr)
		}
	}()

	var entries map[string][]float64
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("decoding cache file: %w", err)
	}
	for key, vec := range entries {
		c.cache.Set(key, vec)
	}
	c.logger.Debug("loaded offset cache from disk", "path", path, "entries", len(entries))
	return nil
}

// Save writes the cache to disk, replacing the previous file atomically.
func (c *VectorCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.dir, vectorCacheFile)
	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			c.logger.Debug("failed to remove temp file", "error", removeErr)
		}
	}()

	entries := make(map[string][]float64)
	for key, vec := range c.cache.All() {
		entries[key] = vec
	}
	if err := gob.NewEncoder(file).Encode(entries); err != nil {
		file.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("encoding cache to file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("syncing cache file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}
	c.logger.Debug("offset cache saved to disk", "entries", len(entries), "path", path)
	return nil
}
