// Package cachedwords implements the eager-cached word lookup strategy.
//
// The word list is read once at construction into a set for Exists and
// an ordered slice for WordOfTheDay. After New returns both are read-only
// and safe for concurrent use without locking.
package cachedwords

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/hotpath/internal/registry"
	"github.com/discochess/hotpath/internal/source"
	"github.com/discochess/hotpath/internal/words"
)

// Compile-time checks.
var (
	_ words.Strategy      = (*Strategy)(nil)
	_ words.StatsProvider = (*Strategy)(nil)
)

// Approximate per-entry overheads used for the memory estimate.
const (
	stringHeaderBytes = 16
	setEntryOverhead  = 8
	maxLineSize       = 1 << 20
)

// Strategy answers lookups from memory.
type Strategy struct {
	set   map[string]struct{}
	list  []string
	index words.IndexFunc

	loadTime time.Duration
	memory   int64
}

type config struct {
	registry *registry.Registry
	index    words.IndexFunc
	logger   *zap.Logger
}

// Option configures a Strategy.
type Option func(*config)

// WithRegistry sets the registry that receives the load measurements.
func WithRegistry(r *registry.Registry) Option {
	return func(c *config) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithIndex overrides today's index, e.g. to pin a date in tests.
func WithIndex(f words.IndexFunc) Option {
	return func(c *config) {
		if f != nil {
			c.index = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// New loads the whole word list from src. It fails with
// words.ErrDataUnavailable if the list cannot be read; an empty dictionary
// is never substituted.
func New(ctx context.Context, src source.Source, opts ...Option) (*Strategy, error) {
	cfg := &config{
		registry: registry.New(),
		index:    words.Today,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	start := time.Now()
	list, err := load(ctx, src)
	if err != nil {
		cfg.logger.Error("loading dictionary failed",
			zap.String("source", src.Name()),
			zap.Error(err),
		)
		return nil, err
	}

	set := make(map[string]struct{}, len(list))
	for _, w := range list {
		set[w] = struct{}{}
	}
	loadTime := time.Since(start)

	s := &Strategy{
		set:      set,
		list:     list,
		index:    cfg.index,
		loadTime: loadTime,
		memory:   estimateMemory(list, len(set)),
	}

	cfg.registry.RecordMethodExecution(words.MethodLoadDictionary, loadTime)
	cfg.registry.RecordMemoryUsage(s.memory)
	cfg.registry.RecordDictionaryWords(int64(len(list)))

	fields := []zap.Field{
		zap.String("source", src.Name()),
		zap.Int("words", len(list)),
		zap.Int("unique", len(set)),
		zap.Duration("load_time", loadTime),
		zap.Int64("memory_bytes", s.memory),
	}
	if info, err := source.Stat(ctx, src); err == nil {
		fields = append(fields, zap.Int64("stored_bytes", info.Size))
	}
	cfg.logger.Info("dictionary loaded", fields...)

	return s, nil
}

// Name returns "cached".
func (s *Strategy) Name() string {
	return "cached"
}

// WordOfTheDay returns the word at today's index, or words.NoWordToday.
func (s *Strategy) WordOfTheDay(ctx context.Context) (string, error) {
	i := s.index()
	if i < 0 || i >= len(s.list) {
		return words.NoWordToday, nil
	}
	return s.list[i], nil
}

// Exists reports whether word is in the set.
func (s *Strategy) Exists(ctx context.Context, word string) (bool, error) {
	_, ok := s.set[word]
	return ok, nil
}

// CacheStats describes the loaded index.
func (s *Strategy) CacheStats() words.CacheStats {
	return words.CacheStats{
		TotalWords:      len(s.list),
		CachedWords:     len(s.set),
		LoadTimeMs:      float64(s.loadTime) / float64(time.Millisecond),
		MemoryUsedBytes: s.memory,
	}
}

func load(ctx context.Context, src source.Source) ([]string, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %w", words.ErrDataUnavailable, src.Name(), err)
	}
	defer rc.Close()

	var list []string
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		list = append(list, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", words.ErrDataUnavailable, src.Name(), err)
	}
	return list, nil
}

// estimateMemory approximates the heap held by the index. Set keys share
// their bytes with the list entries.
func estimateMemory(list []string, unique int) int64 {
	var total int64
	for _, w := range list {
		total += stringHeaderBytes + int64(len(w))
	}
	total += int64(unique) * (stringHeaderBytes + setEntryOverhead)
	return total
}
