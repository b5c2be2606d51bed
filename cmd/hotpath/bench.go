package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/discochess/hotpath"
	"github.com/discochess/hotpath/benchmark/analysis"
	"github.com/discochess/hotpath/benchmark/load"
	"github.com/discochess/hotpath/benchmark/reporting"
	"github.com/discochess/hotpath/internal/config"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare lookup strategies under the same traffic",
	Long: `Replay the production traffic shape against each strategy in turn,
check that the strategies answer alike, and compare their latencies
statistically (Mann-Whitney U, Cohen's d, bootstrap confidence interval).

The first strategy is the baseline.

Examples:
  # Scan versus cached, text summary
  hotpath bench --dataset ./data

  # Markdown report written to a file
  hotpath bench --dataset ./data --format markdown --output report.md`,
	RunE: runBench,
}

var (
	benchStrategies []string
	benchFormat     string
	benchOutput     string
	benchIterations int
)

type benchRun struct {
	client   *hotpath.Client
	result   *load.Result
	analysis hotpath.Analysis
	report   string
}

func init() {
	config.RegisterFlags(benchCmd.Flags())
	config.RegisterLoadFlags(benchCmd.Flags())
	benchCmd.Flags().StringSliceVarP(&benchStrategies, "strategies", "s", []string{config.StrategyScan, config.StrategyCached}, "strategies to compare")
	benchCmd.Flags().StringVarP(&benchFormat, "format", "f", "text", "output format: text, markdown")
	benchCmd.Flags().StringVarP(&benchOutput, "output", "o", "", "output file (default: stdout)")
	benchCmd.Flags().IntVar(&benchIterations, "bootstrap", 10000, "bootstrap iterations")
	benchCmd.Flags().StringSliceVar(&probeWords, "words", load.DefaultProbeWords, "probe words for word-exists traffic")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	if len(benchStrategies) < 2 {
		return fmt.Errorf("need at least two strategies, got %d", len(benchStrategies))
	}

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

	runs := make([]*benchRun, 0, len(benchStrategies))
	defer func() {
		for _, r := range runs {
			r.client.Close()
		}
	}()
	for _, name := range benchStrategies {
		sc := *cfg
		sc.Strategy = name
		if err := sc.Validate(); err != nil {
			return err
		}
		client, err := openClient(ctx, &sc, log)
		if err != nil {
			return fmt.Errorf("creating %s client: %w", name, err)
		}
		runs = append(runs, &benchRun{client: client})
	}

	lc := loadConfigFrom(cfg)
	baseline := runs[0]

	mismatches := make([][]load.Mismatch, len(runs))
	for i, r := range runs[1:] {
		m, err := load.CheckEquivalence(ctx, baseline.client, r.client, lc.Words)
		if err != nil {
			return fmt.Errorf("equivalence check: %w", err)
		}
		mismatches[i+1] = m
	}

	results := make([]*load.Result, 0, len(runs))
	for _, r := range runs {
		r.client.Reset()
		fmt.Fprintf(os.Stderr, "Running %s for %s...\n", r.client.Strategy().Name(), lc.Duration)
		res, err := load.Run(ctx, r.client, lc)
		if err != nil {
			return err
		}
		r.result = res
		r.analysis = r.client.Analyze()
		r.report = r.client.GenerateReport()
		results = append(results, res)
	}

	comps := analysis.NewComparer(analysis.WithBootstrapIterations(benchIterations)).
		Baseline(results, baseline.result.Strategy, hotpath.EndpointWordExists)

	var output io.Writer = os.Stdout
	if benchOutput != "" {
		f, err := os.Create(benchOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	switch benchFormat {
	case "markdown":
		return writeMarkdownReport(output, lc, runs, mismatches, comps)
	default:
		return writeTextReport(output, lc, runs, mismatches, comps)
	}
}

func writeTextReport(w io.Writer, lc load.Config, runs []*benchRun, mismatches [][]load.Mismatch, comps []*analysis.Comparison) error {
	fmt.Fprintf(w, "Hotpath Strategy Benchmark\n")
	fmt.Fprintf(w, "==========================\n\n")
	fmt.Fprintf(w, "Duration: %s\n", lc.Duration)
	fmt.Fprintf(w, "Traffic:  %.0f word-exists/s, %.0f word-of-the-day/s\n\n", lc.WordExistsRPS, lc.WordOfTheDayRPS)

	fmt.Fprintf(w, "Results:\n")
	fmt.Fprintf(w, "--------\n\n")

	for i, r := range runs {
		fmt.Fprintf(w, "%s:\n", r.result.Strategy)
		fmt.Fprintf(w, "  Requests:       %d\n", r.result.TotalRequests())
		if s, err := r.result.Summary(hotpath.EndpointWordExists); err == nil {
			fmt.Fprintf(w, "  Mean latency:   %.3f ms\n", s.Mean)
			fmt.Fprintf(w, "  p50 latency:    %.3f ms\n", s.P50)
			fmt.Fprintf(w, "  p99 latency:    %.3f ms\n", s.P99)
		}
		fmt.Fprintf(w, "  Hottest method: %s\n", r.analysis.HottestMethod)
		if i > 0 {
			if len(mismatches[i]) == 0 {
				fmt.Fprintf(w, "  Equivalence:    agrees with %s\n", runs[0].result.Strategy)
			} else {
				fmt.Fprintf(w, "  Equivalence:    %d mismatches\n", len(mismatches[i]))
				for _, m := range mismatches[i] {
					fmt.Fprintf(w, "    %s\n", m)
				}
			}
		}
		fmt.Fprintln(w)
	}

	if len(comps) > 0 {
		fmt.Fprintf(w, "Statistical Analysis:\n")
		fmt.Fprintf(w, "---------------------\n\n")
		for _, c := range comps {
			fmt.Fprintln(w, c.Summary())
			fmt.Fprintln(w)
		}
	}
	return nil
}

func writeMarkdownReport(w io.Writer, lc load.Config, runs []*benchRun, mismatches [][]load.Mismatch, comps []*analysis.Comparison) error {
	results := make([]*load.Result, len(runs))
	for i, r := range runs {
		results[i] = r.result
	}

	report := reporting.NewMarkdownReport(w)
	report.WriteHeader("Hotpath Strategy Benchmark")
	report.WriteMethodology(lc)
	report.WriteSummaryTable(results)

	for i, r := range runs[1:] {
		report.WriteEquivalence(runs[0].result.Strategy, r.result.Strategy, mismatches[i+1])
	}
	for _, c := range comps {
		report.WriteComparison(c)
	}
	for _, r := range runs {
		report.WriteAnalysis(r.result.Strategy, r.analysis, r.report)
		report.WriteDistributionChart(r.result.Strategy, r.result.LatenciesMs(hotpath.EndpointWordExists))
	}

	report.WriteFooter()
	return nil
}
