package generator

import (
	"github.com/codeGROOVE-dev/tzsniff/pkg/zoneinfo"
)

// Option configures a Generator.
type Option func(*OptionHolder)

// OptionHolder holds configuration options.
type OptionHolder struct {
	cache    *zoneinfo.VectorCache
	progress func(format string, args ...any)
	priority []string
	workers  int
}

// WithPriority sets the ordered list of preferred zones. Later entries win
// over earlier ones when they share an offset vector.
func WithPriority(zones []string) Option {
	return func(o *OptionHolder) {
		o.priority = zones
	}
}

// WithWorkers bounds how many zones have their offsets computed at once.
func WithWorkers(n int) Option {
	return func(o *OptionHolder) {
		o.workers = n
	}
}

// WithVectorCache reuses offset vectors computed by earlier runs.
func WithVectorCache(c *zoneinfo.VectorCache) Option {
	return func(o *OptionHolder) {
		o.cache = c
	}
}

// WithProgress sets a callback for human-readable progress lines.
func WithProgress(fn func(format string, args ...any)) Option {
	return func(o *OptionHolder) {
		o.progress = fn
	}
}
