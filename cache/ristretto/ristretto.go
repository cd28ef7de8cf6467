package ristretto

import (
	"fmt"

	"github.com/caasmo/actiondispatch/cache"
	"github.com/dgraph-io/ristretto/v2"
)

// Size levels accepted by New.
const (
	LevelSmall     = "small"
	LevelMedium    = "medium"
	LevelLarge     = "large"
	LevelVeryLarge = "very-large"
)

type Cache[V any] struct {
	cache *ristretto.Cache[string, V]
}

var _ cache.Cache[any] = (*Cache[any])(nil)

func (rc *Cache[V]) Get(key string) (V, bool) {
	return rc.cache.Get(key)
}

func (rc *Cache[V]) Set(key string, value V, cost int64) bool {
	return rc.cache.Set(key, value, cost)
}

// Wait blocks until all buffered writes have been applied.
func (rc *Cache[V]) Wait() {
	rc.cache.Wait()
}

func (rc *Cache[V]) Close() {
	rc.cache.Close()
}

func config[V any](level string) (*ristretto.Config[string, V], error) {
	var counters, maxCost int64
	switch level {
	case LevelSmall:
		counters, maxCost = 1e4, 1<<20
	case LevelMedium:
		counters, maxCost = 1e5, 1<<24
	case LevelLarge:
		counters, maxCost = 1e6, 1<<27
	case LevelVeryLarge:
		counters, maxCost = 1e7, 1<<30
	default:
		return nil, fmt.Errorf("ristretto: unknown cache level %q", level)
	}
	return &ristretto.Config[string, V]{
		NumCounters: counters, // number of keys to track frequency of
		MaxCost:     maxCost,
		BufferItems: 64, // number of keys per Get buffer
	}, nil
}

// New creates a cache sized by level: small, medium, large or very-large.
func New[V any](level string) (*Cache[V], error) {
	cfg, err := config[V](level)
	if err != nil {
		return nil, err
	}
	c, err := ristretto.NewCache(cfg)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{cache: c}, nil
}
