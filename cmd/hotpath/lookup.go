package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/hotpath/internal/config"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [WORD...]",
	Short: "Check words or print the word of the day",
	Long: `Check whether each WORD is in the word list. With no arguments, print
the word of the day instead.

Matching is exact and case-sensitive.

Examples:
  # Word of the day
  hotpath lookup --dataset ./data

  # Word of the day on a given date
  hotpath lookup --dataset ./data --date 2024-03-01

  # Several words, with the metrics report afterwards
  hotpath lookup --dataset ./words.txt --report cat house xyz123`,
	RunE: runLookup,
}

var (
	outputJSON bool
	showTiming bool
	showReport bool
)

func init() {
	config.RegisterFlags(lookupCmd.Flags())
	lookupCmd.Flags().BoolVar(&outputJSON, "json", false, "output results as JSON")
	lookupCmd.Flags().BoolVar(&showTiming, "timing", false, "show lookup timing")
	lookupCmd.Flags().BoolVar(&showReport, "report", false, "print the metrics and analysis report afterwards")
	rootCmd.AddCommand(lookupCmd)
}

type lookupResult struct {
	Word      string  `json:"word"`
	Exists    *bool   `json:"exists,omitempty"`
	ElapsedMs float64 `json:"elapsed_ms,omitempty"`
}

func runLookup(cmd *cobra.Command, args []string) error {
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

	var results []lookupResult
	if len(args) == 0 {
		start := time.Now()
		word, err := client.WordOfTheDay(ctx)
		if err != nil {
			return fmt.Errorf("lookup failed: %w", err)
		}
		results = append(results, lookupResult{Word: word, ElapsedMs: elapsedMs(start)})
	}
	for _, w := range args {
		start := time.Now()
		ok, err := client.Exists(ctx, w)
		if err != nil {
			return fmt.Errorf("lookup failed: %w", err)
		}
		results = append(results, lookupResult{Word: w, Exists: &ok, ElapsedMs: elapsedMs(start)})
	}

	if outputJSON {
		if !showTiming {
			for i := range results {
				results[i].ElapsedMs = 0
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printLookupText(results)
	}

	if showReport {
		fmt.Println()
		fmt.Print(client.Snapshot().String())
		fmt.Println()
		fmt.Print(client.GenerateReport())
	}
	return nil
}

func printLookupText(results []lookupResult) {
	for _, r := range results {
		switch {
		case r.Exists == nil:
			fmt.Printf("Word of the day: %s\n", r.Word)
		case *r.Exists:
			fmt.Printf("%s: found\n", r.Word)
		default:
			fmt.Printf("%s: not found\n", r.Word)
		}
		if showTiming {
			fmt.Printf("  Time: %.3f ms\n", r.ElapsedMs)
		}
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}
