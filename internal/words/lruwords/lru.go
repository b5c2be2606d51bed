// Package lruwords wraps a strategy with a bounded memo of Exists results.
package lruwords

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/hotpath/internal/stats"
	"github.com/discochess/hotpath/internal/words"
)

// Compile-time check that Strategy implements words.Strategy.
var _ words.Strategy = (*Strategy)(nil)

// DefaultCapacity is the memo size used when New is given a non-positive capacity.
const DefaultCapacity = 1024

// Stats contains memo statistics.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int // Current number of entries
}

// HitRate returns the hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Strategy memoizes Exists answers of an underlying strategy.
// WordOfTheDay is passed through since its answer changes with the date.
type Strategy struct {
	underlying words.Strategy
	cache      *lru.Cache[string, bool]
	collector  stats.Collector

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Strategy.
type Option func(*Strategy)

// WithCollector reports hits, misses and size to c.
func WithCollector(c stats.Collector) Option {
	return func(s *Strategy) {
		if c != nil {
			s.collector = c
		}
	}
}

// New wraps underlying with a memo holding up to capacity words.
func New(underlying words.Strategy, capacity int, opts ...Option) (*Strategy, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c, err := lru.New[string, bool](capacity)
	if err != nil {
		return nil, err
	}

	s := &Strategy{
		underlying: underlying,
		cache:      c,
		collector:  stats.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the underlying name with an "+lru" suffix.
func (s *Strategy) Name() string {
	return s.underlying.Name() + "+lru"
}

// WordOfTheDay delegates to the underlying strategy.
func (s *Strategy) WordOfTheDay(ctx context.Context) (string, error) {
	return s.underlying.WordOfTheDay(ctx)
}

// Exists checks the memo first. Errors are never memoized.
func (s *Strategy) Exists(ctx context.Context, word string) (bool, error) {
	if ok, hit := s.cache.Get(word); hit {
		s.hits.Add(1)
		s.collector.IncCounter(stats.MetricCacheHits, "", 1)
		return ok, nil
	}

	s.misses.Add(1)
	s.collector.IncCounter(stats.MetricCacheMisses, "", 1)

	ok, err := s.underlying.Exists(ctx, word)
	if err != nil {
		return false, err
	}

	s.cache.Add(word, ok)
	s.collector.SetGauge(stats.MetricCacheSize, "", int64(s.cache.Len()))
	return ok, nil
}

// CacheStats forwards to the underlying strategy when it holds an index.
func (s *Strategy) CacheStats() (words.CacheStats, bool) {
	if p, ok := s.underlying.(words.StatsProvider); ok {
		return p.CacheStats(), true
	}
	return words.CacheStats{}, false
}

// Purge empties the memo.
func (s *Strategy) Purge() {
	s.cache.Purge()
	s.collector.SetGauge(stats.MetricCacheSize, "", 0)
}

// Stats returns memo statistics.
func (s *Strategy) Stats() Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Size:   s.cache.Len(),
	}
}

// Underlying returns the wrapped strategy.
func (s *Strategy) Underlying() words.Strategy {
	return s.underlying
}
