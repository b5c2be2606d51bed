// Package hotpathfx provides an fx module for a configured hotpath client.
package hotpathfx

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/hotpath"
	"github.com/discochess/hotpath/internal/analysis"
	"github.com/discochess/hotpath/internal/config"
	"github.com/discochess/hotpath/internal/stats"
	"github.com/discochess/hotpath/internal/stats/logger"
	statsprom "github.com/discochess/hotpath/internal/stats/prometheus"
	"github.com/discochess/hotpath/internal/words"
)

// Module provides a *hotpath.Client built from a *config.Config.
// Requires a *zap.Logger and a *config.Config to be provided. When a
// prometheus.Registerer is provided too, metrics are also exported there.
var Module = fx.Module("hotpath",
	fx.Provide(
		newStatsCollector,
		newClient,
	),
)

// CollectorParams holds dependencies for the stats collector.
type CollectorParams struct {
	fx.In

	Logger     *zap.Logger
	Registerer prometheus.Registerer `optional:"true"`
}

func newStatsCollector(p CollectorParams) stats.Collector {
	log := logger.New(p.Logger.Named("hotpath.stats"))
	if p.Registerer == nil {
		return log
	}
	return stats.NewMulti(log, statsprom.New(p.Registerer))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    *config.Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *hotpath.Client
}

func newClient(p Params) (Result, error) {
	client, err := NewClient(context.Background(), p.Config, p.Logger.Named("hotpath"), p.Collector)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}

// NewClient builds a client from cfg outside of an fx application.
// A nil collector discards metrics.
func NewClient(ctx context.Context, cfg *config.Config, log *zap.Logger, collector stats.Collector) (*hotpath.Client, error) {
	opts, err := Options(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		hotpath.WithStats(collector),
		hotpath.WithLogger(log),
	)
	return hotpath.New(opts...)
}

// Options translates cfg into client options. The returned options own
// an opened word list source.
func Options(ctx context.Context, cfg *config.Config) ([]hotpath.Option, error) {
	mode, err := hotpath.ParseMode(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	date, ok, err := cfg.SimulatedDate()
	if err != nil {
		return nil, err
	}

	src, err := cfg.OpenSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", cfg.Dataset, err)
	}

	opts := []hotpath.Option{
		hotpath.WithContext(ctx),
		hotpath.WithSource(src, mode),
		hotpath.WithMemo(cfg.LRUSize),
		hotpath.WithAnalyzer(analysis.NewAnalyzer(analysis.WithHotPathRatio(cfg.HotPathRatio))),
	}
	if ok {
		opts = append(opts, hotpath.WithIndex(words.IndexForDate(date)))
	}
	return opts, nil
}
