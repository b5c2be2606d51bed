package hotpath

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/discochess/hotpath/internal/analysis"
	"github.com/discochess/hotpath/internal/dataset"
	"github.com/discochess/hotpath/internal/registry"
	"github.com/discochess/hotpath/internal/source"
	"github.com/discochess/hotpath/internal/source/disksource"
	"github.com/discochess/hotpath/internal/stats"
	"github.com/discochess/hotpath/internal/words"
	"github.com/discochess/hotpath/internal/words/cachedwords"
	"github.com/discochess/hotpath/internal/words/lruwords"
	"github.com/discochess/hotpath/internal/words/scanwords"
)

// Mode selects the lookup strategy built from a source.
type Mode string

const (
	// ModeScan re-reads the word list on every call.
	ModeScan Mode = "scan"
	// ModeCached loads the word list once into memory.
	ModeCached Mode = "cached"
)

// ParseMode parses "scan" or "cached".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeScan, ModeCached:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidArgument, s)
	}
}

// Option configures a Client.
type Option interface {
	apply(*options)
}

type buildFunc func(ctx context.Context, reg *registry.Registry, logger *zap.Logger) (words.Strategy, error)

// options holds the client configuration.
type options struct {
	strategy     words.Strategy
	build        buildFunc
	ctx          context.Context
	registry     *registry.Registry
	analyzer     *analysis.Analyzer
	stats        stats.Collector
	logger       *zap.Logger
	index        words.IndexFunc
	memoCapacity int
	closers      []func() error
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		analyzer: analysis.NewAnalyzer(),
		stats:    stats.Discard,
		logger:   zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStrategy sets a ready-made lookup strategy. The strategy is measured
// only at the endpoint level unless it records into the client's registry
// itself.
func WithStrategy(s words.Strategy) Option {
	return optionFunc(func(o *options) {
		o.strategy = s
	})
}

// WithSource builds a strategy of the given mode over src. The strategy
// records into the client's registry. src is closed with the client.
func WithSource(src source.Source, mode Mode) Option {
	return optionFunc(func(o *options) {
		o.closers = append(o.closers, src.Close)
		o.build = func(ctx context.Context, reg *registry.Registry, logger *zap.Logger) (words.Strategy, error) {
			switch mode {
			case ModeCached:
				return cachedwords.New(ctx, src,
					cachedwords.WithRegistry(reg),
					cachedwords.WithIndex(o.index),
					cachedwords.WithLogger(logger),
				)
			case ModeScan, "":
				return scanwords.New(src,
					scanwords.WithRegistry(reg),
					scanwords.WithIndex(o.index),
					scanwords.WithLogger(logger),
				), nil
			default:
				return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidArgument, mode)
			}
		}
	})
}

// WithWordFile builds a strategy over a local word list. Compressed files
// are recognised by extension (.zst, .gz).
func WithWordFile(path string, mode Mode) (Option, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	return WithSource(disksource.New(path), mode), nil
}

// WithDataDir builds a strategy over the word list named by the manifest
// in a data directory produced by the build command.
func WithDataDir(dir string, mode Mode) (Option, error) {
	path, err := dataset.WordListPath(dir)
	if err != nil {
		return nil, err
	}
	return WithWordFile(path, mode)
}

// WithContext sets the context used while loading a cached word list.
func WithContext(ctx context.Context) Option {
	return optionFunc(func(o *options) {
		o.ctx = ctx
	})
}

// WithIndex pins the word-of-the-day index, e.g. to simulate a date.
// It applies to strategies built by WithSource.
func WithIndex(f words.IndexFunc) Option {
	return optionFunc(func(o *options) {
		o.index = f
	})
}

// WithRegistry sets the registry. If not set, a new one is created that
// mirrors into the WithStats collector.
func WithRegistry(r *registry.Registry) Option {
	return optionFunc(func(o *options) {
		o.registry = r
	})
}

// WithAnalyzer sets the analyzer used by Analyze and GenerateReport.
func WithAnalyzer(a *analysis.Analyzer) Option {
	return optionFunc(func(o *options) {
		if a != nil {
			o.analyzer = a
		}
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		if c != nil {
			o.stats = c
		}
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		if l != nil {
			o.logger = l
		}
	})
}

// WithMemo wraps the strategy in an LRU memo of Exists answers holding up
// to capacity words. Zero disables the memo.
func WithMemo(capacity int) Option {
	return optionFunc(func(o *options) {
		o.memoCapacity = capacity
	})
}

func newMemo(s words.Strategy, capacity int, c stats.Collector) (words.Strategy, error) {
	return lruwords.New(s, capacity, lruwords.WithCollector(c))
}
