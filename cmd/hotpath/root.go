package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/hotpath"
	"github.com/discochess/hotpath/fx/hotpathfx"
	"github.com/discochess/hotpath/internal/config"
	"github.com/discochess/hotpath/internal/stats/logger"
)

// Global flags.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "hotpath",
	Short: "Measure word lookups and find their hot path",
	Long: `Hotpath measures a word lookup service: every request, method
timing, file read and string comparison is counted, and the counts are
turned into a hot-path analysis with optimization advice.

Two lookup strategies are available: "scan" re-reads the word list on
every call, "cached" loads it once into memory.

Examples:
  # Is a word in the list?
  hotpath lookup --dataset ./data apple

  # Simulate production traffic and analyze it
  hotpath analyze --dataset ./words.txt --duration 10s

  # Compare scan and cached under the same traffic
  hotpath bench --dataset ./data --format markdown

  # Serve the word endpoints with Prometheus metrics
  hotpath serve --strategy cached --listen :8080`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
}

// loadConfig merges defaults, the config file, HOTPATH_* variables and
// the flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configPath, cmd.Flags())
}

// newLogger returns a development logger when verbose, a production
// logger when production, and a no-op logger otherwise.
func newLogger(cfg *config.Config, production bool) (*zap.Logger, error) {
	switch {
	case cfg.Verbose:
		return zap.NewDevelopment()
	case production:
		return zap.NewProduction()
	default:
		return zap.NewNop(), nil
	}
}

// openClient builds a client from cfg. Recordings are mirrored to the
// logger at debug level.
func openClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (*hotpath.Client, error) {
	return hotpathfx.NewClient(ctx, cfg, log, logger.New(log.Named("stats")))
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
