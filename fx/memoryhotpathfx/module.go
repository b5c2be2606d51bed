// Package memoryhotpathfx provides an fx module for a hotpath client over
// an in-memory word list. Useful for testing.
package memoryhotpathfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/hotpath"
	"github.com/discochess/hotpath/internal/source/memsource"
	"github.com/discochess/hotpath/internal/stats/logger"
)

// Module provides a *hotpath.Client and the *memsource.Source behind it.
// Requires a *zap.Logger. The strategy is scan unless a hotpath.Mode is
// supplied, and the list starts with the words supplied under the name
// "words", if any.
var Module = fx.Module("memoryhotpath",
	fx.Provide(newClient),
)

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Lifecycle fx.Lifecycle
	Mode      hotpath.Mode `optional:"true"`
	Words     []string     `name:"words" optional:"true"`
}

// Result holds the provided client and source.
type Result struct {
	fx.Out

	Client *hotpath.Client
	Source *memsource.Source // exposed for test setup
}

func newClient(p Params) (Result, error) {
	mode := p.Mode
	if mode == "" {
		mode = hotpath.ModeScan
	}
	src := memsource.New(p.Words...)
	log := p.Logger.Named("hotpath")

	client, err := hotpath.New(
		hotpath.WithSource(src, mode),
		hotpath.WithStats(logger.New(log.Named("stats"))),
		hotpath.WithLogger(log),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.StopHook(func(context.Context) error {
		return client.Close()
	}))
	return Result{Client: client, Source: src}, nil
}
