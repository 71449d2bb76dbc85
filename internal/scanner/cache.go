// Package scanner owns the process-wide detector configuration: a single
// slot holding the detector built for the most recently requested format set.
package scanner

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrBuild reports that the engine could not construct a detector.
var ErrBuild = errors.New("scanner: detector construction failed")

var rebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "framescan_scanner_rebuilds_total",
	Help: "Number of times the cached detector was rebuilt for a new format set",
})

// Config is a detector bound to the format set it was built for.
// A Config is immutable once installed.
type Config struct {
	Formats  barcode.FormatSet
	Detector barcode.Detector
	// Generation increases by one with every rebuild.
	Generation uint64
}

// Cache is a single-slot, lock-guarded detector cache. Reading the current
// config, deciding whether to rebuild and installing the replacement happen
// in one critical section, so concurrent callers with different format sets
// always receive a detector built for their own set.
type Cache struct {
	mu       sync.Mutex
	engine   barcode.Engine
	current  *Config
	rebuilds uint64
}

// NewCache returns an empty cache that builds detectors with engine.
func NewCache(engine barcode.Engine) *Cache {
	return &Cache{engine: engine}
}

var (
	defaultOnce  sync.Once
	defaultCache *Cache
)

// Default returns the process-wide cache backed by the default engine.
func Default() *Cache {
	defaultOnce.Do(func() {
		defaultCache = NewCache(barcode.NewEngine(barcode.EngineOptions{}))
	})
	return defaultCache
}

// Ensure returns a config for formats, building and installing a new one when
// the slot is empty or holds a different format set. The returned config may
// be used after the lock is released; a later rebuild replaces the slot but
// never mutates a config already handed out.
func (c *Cache) Ensure(formats barcode.FormatSet) (*Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.Formats == formats {
		return c.current, nil
	}

	det, err := c.engine.Build(formats)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrBuild, formats, err)
	}

	var previous barcode.FormatSet
	if c.current != nil {
		previous = c.current.Formats
	}
	c.rebuilds++
	c.current = &Config{Formats: formats, Detector: det, Generation: c.rebuilds}
	rebuildsTotal.Inc()
	slog.Info("Scanner rebuilt", "formats", formats.String(), "previous", previous.String(), "generation", c.rebuilds)

	return c.current, nil
}

// Current returns the installed config, or nil before the first Ensure.
func (c *Cache) Current() *Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Rebuilds returns how many detectors the cache has built.
func (c *Cache) Rebuilds() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuilds
}
