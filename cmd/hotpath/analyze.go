package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/hotpath/benchmark/load"
	"github.com/discochess/hotpath/internal/config"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Simulate production traffic and analyze the hot path",
	Long: `Replay the production traffic shape against one strategy, then print
the collected metrics and the hot-path analysis.

By default word-exists receives 20 requests per second and
word-of-the-day 1, cycling through a fixed set of probe words.

Examples:
  # Ten seconds of traffic against the scanning strategy
  hotpath analyze --dataset ./words.txt --duration 10s

  # Machine-readable analysis of the cached strategy
  hotpath analyze --dataset ./data --strategy cached --json`,
	RunE: runAnalyze,
}

var (
	analyzeJSON  bool
	analyzeReset bool
	probeWords   []string
)

func init() {
	config.RegisterFlags(analyzeCmd.Flags())
	config.RegisterLoadFlags(analyzeCmd.Flags())
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output metrics and analysis as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeReset, "reset", false, "reset metrics recorded while loading before replaying traffic")
	analyzeCmd.Flags().StringSliceVar(&probeWords, "words", load.DefaultProbeWords, "probe words for word-exists traffic")
	rootCmd.AddCommand(analyzeCmd)
}

func loadConfigFrom(cfg *config.Config) load.Config {
	return load.Config{
		WordExistsRPS:   cfg.WordExistsRPS,
		WordOfTheDayRPS: cfg.WordOfTheDayRPS,
		Duration:        cfg.Duration,
		Workers:         cfg.Workers,
		Words:           probeWords,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	client, err := openClient(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	defer client.Close()

	if analyzeReset {
		client.Reset()
	}

	lc := loadConfigFrom(cfg)
	if !analyzeJSON {
		fmt.Fprintf(os.Stderr, "Simulating %s of traffic against %s (%d word-exists, %d word-of-the-day)...\n",
			lc.Duration, client.Strategy().Name(), lc.Requests(lc.WordExistsRPS), lc.Requests(lc.WordOfTheDayRPS))
	}

	res, err := load.Run(ctx, client, lc)
	if err != nil {
		return err
	}
	log.Info("traffic replayed",
		zap.String("strategy", res.Strategy),
		zap.Int("requests", res.TotalRequests()),
		zap.Duration("elapsed", res.Elapsed),
	)

	if analyzeJSON {
		out := struct {
			Metrics  any `json:"metrics"`
			Analysis any `json:"analysis"`
		}{
			Metrics:  client.Snapshot(),
			Analysis: client.Analyze(),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Print(client.Snapshot().String())
	fmt.Println()
	fmt.Print(client.GenerateReport())
	for endpoint, n := range res.Errors {
		if n > 0 {
			fmt.Printf("\n%d %s requests failed\n", n, endpoint)
		}
	}
	return nil
}
