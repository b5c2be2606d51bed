// Package hotpath measures a word lookup service and explains where its
// time goes.
//
// A Client wraps a lookup strategy, records every request and timing in a
// lock-free registry, and turns snapshots of that registry into a hot-path
// analysis with ranked method impact and optimization advice.
//
// Example usage:
//
//	opt, err := hotpath.WithWordFile("words.txt", hotpath.ModeScan)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := hotpath.New(opt)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	ok, err := client.Exists(ctx, "apple")
//	...
//	fmt.Println(client.GenerateReport())
package hotpath

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/hotpath/internal/analysis"
	"github.com/discochess/hotpath/internal/registry"
	"github.com/discochess/hotpath/internal/words"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrDataUnavailable indicates the word list is missing or unreadable.
	ErrDataUnavailable = words.ErrDataUnavailable

	// ErrInvalidArgument indicates a percentile was requested over an empty
	// sample or with a NaN rank.
	ErrInvalidArgument = errors.New("hotpath: invalid argument")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("hotpath: client closed")

	// ErrNoStrategy indicates no lookup strategy was configured.
	ErrNoStrategy = errors.New("hotpath: no strategy provided")
)

// Endpoint names recorded per request.
const (
	EndpointWordOfTheDay = "word-of-the-day"
	EndpointWordExists   = "word-exists"
)

// EndpointMethod returns the method name under which the handling time
// of an endpoint call is recorded, e.g. "wordExists_endpoint".
func EndpointMethod(method string) string {
	return method + "_endpoint"
}

// Client measures lookups against a word strategy.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	strategy words.Strategy
	registry *registry.Registry
	analyzer *analysis.Analyzer
	logger   *zap.Logger
	closers  []func() error
	closed   atomic.Bool
}

// New creates a new Client with the given options.
// A strategy is required, either directly with WithStrategy or through
// WithSource, WithWordFile or WithDataDir.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.registry == nil {
		cfg.registry = registry.New(registry.WithCollector(cfg.stats))
	}

	c := &Client{
		strategy: cfg.strategy,
		registry: cfg.registry,
		analyzer: cfg.analyzer,
		logger:   cfg.logger,
		closers:  cfg.closers,
	}

	if c.strategy == nil && cfg.build != nil {
		ctx := cfg.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		s, err := cfg.build(ctx, c.registry, c.logger)
		if err != nil {
			c.closeAll()
			return nil, err
		}
		c.strategy = s
	}
	if c.strategy == nil {
		c.closeAll()
		return nil, ErrNoStrategy
	}

	if cfg.memoCapacity > 0 {
		memo, err := newMemo(c.strategy, cfg.memoCapacity, cfg.stats)
		if err != nil {
			c.closeAll()
			return nil, fmt.Errorf("creating memo: %w", err)
		}
		c.strategy = memo
	}

	c.logger.Debug("client initialized",
		zap.String("strategy", c.strategy.Name()),
	)

	return c, nil
}

// WordOfTheDay returns today's word, or "No word today." when the day
// index is past the end of the list.
func (c *Client) WordOfTheDay(ctx context.Context) (string, error) {
	if c.closed.Load() {
		return "", ErrClosed
	}

	start := time.Now()
	c.registry.RecordRequest(EndpointWordOfTheDay)
	defer func() {
		c.registry.RecordMethodExecution(EndpointMethod(words.MethodWordOfTheDay), time.Since(start))
	}()

	word, err := c.strategy.WordOfTheDay(ctx)
	if err != nil {
		return "", fmt.Errorf("word of the day: %w", err)
	}
	return word, nil
}

// Exists reports whether word is in the list. Matching is exact.
func (c *Client) Exists(ctx context.Context, word string) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosed
	}

	start := time.Now()
	c.registry.RecordRequest(EndpointWordExists)
	defer func() {
		c.registry.RecordMethodExecution(EndpointMethod(words.MethodWordExists), time.Since(start))
	}()

	ok, err := c.strategy.Exists(ctx, word)
	if err != nil {
		return false, fmt.Errorf("word exists %q: %w", word, err)
	}
	return ok, nil
}

// Snapshot returns the current metrics.
func (c *Client) Snapshot() Report {
	return c.registry.Snapshot()
}

// Reset zeroes every counter and forgets every method and endpoint.
func (c *Client) Reset() {
	c.registry.Reset()
	c.logger.Info("metrics reset")
}

// Analyze analyzes the current metrics.
func (c *Client) Analyze() Analysis {
	return c.analyzer.Analyze(c.registry.Snapshot())
}

// GenerateReport renders the full text report for the current metrics.
func (c *Client) GenerateReport() string {
	return c.analyzer.GenerateReport(c.registry.Snapshot())
}

// CacheStats returns the strategy's index statistics. The second result
// is false when the strategy keeps no in-memory index.
func (c *Client) CacheStats() (CacheStats, bool) {
	switch s := c.strategy.(type) {
	case words.StatsProvider:
		return s.CacheStats(), true
	case interface{ CacheStats() (words.CacheStats, bool) }:
		return s.CacheStats()
	}
	return CacheStats{}, false
}

// Registry returns the registry receiving measurements.
func (c *Client) Registry() *registry.Registry {
	return c.registry
}

// Strategy returns the lookup strategy in use.
func (c *Client) Strategy() words.Strategy {
	return c.strategy
}

// Close releases all resources associated with the client.
// After Close, the client should not be used.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return c.closeAll()
}

func (c *Client) closeAll() error {
	var errs []error
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("closing sources: %w", err)
	}
	return nil
}

// Percentile returns the p-th percentile of values using linear
// interpolation between closest ranks. It fails with ErrInvalidArgument
// when values is empty or p is NaN.
func Percentile(values []float64, p float64) (float64, error) {
	v, err := analysis.Percentile(values, p)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return v, nil
}
