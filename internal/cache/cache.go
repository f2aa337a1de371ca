package cache

import (
	"fmt"
	"strings"
	"time"
)

// Package cache tracks source URLs already attempted in earlier runs so repeat
// cron invocations skip re-scraping pages that were filtered or persisted.
// It is an optimization only; title dedup against the content store remains
// the source of truth.

// SeenCache remembers attempted source URLs with a TTL.
type SeenCache interface {
	Close() error
	SeenURL(url string) (bool, error)
	MarkURL(url string) error
}

// Options controls retention characteristics for concrete cache implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// New creates the configured cache backend.
func New(typ, path string, opts Options) (SeenCache, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopCache{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt cache requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported cache type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopCache struct{}

func (noopCache) Close() error                 { return nil }
func (noopCache) SeenURL(string) (bool, error) { return false, nil }
func (noopCache) MarkURL(string) error         { return nil }
