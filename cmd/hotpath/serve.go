package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/discochess/hotpath"
	"github.com/discochess/hotpath/fx/hotpathfx"
	"github.com/discochess/hotpath/internal/config"
	"github.com/discochess/hotpath/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the word endpoints over HTTP",
	Long: `Serve word lookups together with their metrics and analysis.

Endpoints:
  GET /words/word-of-the-day
  GET /words/word-exists?word=WORD
  GET /words/metrics            metrics report (JSON)
  GET /words/analysis           hot-path analysis (text, ?format=json)
  GET /words/reset-metrics      clear all metrics
  GET /words/cache-stats        cache statistics (cached strategy only)
  GET /metrics                  Prometheus exposition
  GET /healthz

Examples:
  hotpath serve --dataset ./data --strategy cached --listen :8080`,
	RunE: runServe,
}

func init() {
	config.RegisterFlags(serveCmd.Flags())
	config.RegisterServeFlags(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	app := fx.New(
		fx.Supply(cfg, log),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		fx.Provide(
			newPrometheusRegistry,
			func(r *prometheus.Registry) prometheus.Registerer { return r },
			func(r *prometheus.Registry) prometheus.Gatherer { return r },
			newHTTPServer,
		),
		hotpathfx.Module,
		fx.Invoke(func(*http.Server) {}),
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

func newPrometheusRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newHTTPServer(lc fx.Lifecycle, cfg *config.Config, client *hotpath.Client, g prometheus.Gatherer, log *zap.Logger) *http.Server {
	h := server.New(client,
		server.WithLogger(log.Named("http")),
		server.WithGatherer(g),
	)
	srv := server.NewHTTPServer(cfg.Listen, h.Handler())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("serving",
				zap.String("addr", ln.Addr().String()),
				zap.String("strategy", client.Strategy().Name()),
			)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
