package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/hotpath/internal/codec"
	"github.com/discochess/hotpath/internal/config"
	"github.com/discochess/hotpath/internal/dataset"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a word list data directory",
	Long: `Download and process a word list into a data directory.

This command will:
1. Download the word list (or use a local file, or generate one)
2. Trim whitespace and drop blank lines
3. Compress the list with the chosen codec
4. Write manifest.json describing the result

The default source is a public English word list:
  ` + dataset.DefaultSourceURL + `

Examples:
  # Build from the default source
  hotpath build --output ./data

  # Build from a local file, uncompressed
  hotpath build --source ./words.txt --output ./data --codec none

  # Generate 100000 synthetic words
  hotpath build --synthetic 100000 --output ./data

  # Build and upload to GCS (for cronjobs)
  hotpath build --output-gcs gs://my-bucket/hotpath`,
	RunE: runBuild,
}

var (
	sourceURL  string
	outputDir  string
	outputGCS  string
	buildCodec string
	dedupe     bool
	synthetic  int
	seed       uint64
)

func init() {
	buildCmd.Flags().StringVar(&sourceURL, "source", dataset.DefaultSourceURL, "source URL or local file path")
	buildCmd.Flags().StringVarP(&outputDir, "output", "o", "./data", "output directory (local builds)")
	buildCmd.Flags().StringVar(&outputGCS, "output-gcs", "", "GCS path for output (gs://bucket/prefix)")
	buildCmd.Flags().StringVar(&buildCodec, "codec", "zstd", "output codec: zstd, gzip or none")
	buildCmd.Flags().BoolVar(&dedupe, "dedupe", false, "drop repeated words")
	buildCmd.Flags().IntVar(&synthetic, "synthetic", 0, "generate N synthetic words instead of reading --source")
	buildCmd.Flags().Uint64Var(&seed, "seed", 1, "seed for --synthetic")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cd, err := codec.ByName(buildCodec)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	log, err := newLogger(&config.Config{Verbose: verbose}, outputGCS != "")
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	localOutput := outputDir
	if outputGCS != "" {
		// Build to temp directory, then upload to GCS.
		tmpDir, err := os.MkdirTemp("", "hotpath-build-*")
		if err != nil {
			return fmt.Errorf("creating temp directory: %w", err)
		}
		defer os.RemoveAll(tmpDir)
		localOutput = tmpDir
	}

	label := sourceURL
	if synthetic > 0 {
		label = fmt.Sprintf("synthetic:%d:%d", synthetic, seed)
	}
	opts := []dataset.Option{
		dataset.WithSourceURL(label),
		dataset.WithOutputDir(localOutput),
		dataset.WithDedupe(dedupe),
		dataset.WithProgress(dataset.DefaultProgressFunc),
		dataset.WithLogger(log),
	}
	if cd != nil {
		opts = append(opts, dataset.WithCodec(cd))
	}
	b := dataset.NewBuilder(opts...)

	localSource := sourceURL
	if synthetic > 0 {
		localSource, err = writeSynthetic(synthetic, seed)
		if err != nil {
			return err
		}
		defer os.Remove(localSource)
	}

	fmt.Printf("Building word list\n")
	if synthetic > 0 {
		fmt.Printf("  Source: %d synthetic words (seed %d)\n", synthetic, seed)
	} else {
		fmt.Printf("  Source: %s\n", sourceURL)
	}
	if outputGCS != "" {
		fmt.Printf("  Output: %s (via local temp)\n", outputGCS)
	} else {
		fmt.Printf("  Output: %s\n", localOutput)
	}
	fmt.Printf("  Codec:  %s\n", buildCodec)
	fmt.Println()

	var m *dataset.Manifest
	if _, statErr := os.Stat(localSource); statErr == nil {
		m, err = b.BuildFromFile(ctx, localSource, time.Time{})
	} else {
		m, err = b.Build(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Printf("\nBuilt %s: %d words (%d unique), %s\n", m.File, m.WordCount, m.UniqueWords, dataset.FormatBytes(m.Bytes))

	if outputGCS != "" {
		fmt.Println()
		fmt.Printf("[Upload] Uploading to %s...\n", outputGCS)

		pub, err := dataset.NewPublisher(ctx, outputGCS, dataset.WithPublishLogger(log))
		if err != nil {
			return fmt.Errorf("creating GCS publisher: %w", err)
		}
		defer pub.Close()

		if err := pub.Publish(ctx, localOutput, dataset.DefaultProgressFunc); err != nil {
			return fmt.Errorf("uploading to GCS: %w", err)
		}

		fmt.Println("[Upload] Done")
	}

	return nil
}

func writeSynthetic(n int, seed uint64) (string, error) {
	f, err := os.CreateTemp("", "hotpath-synthetic-*.txt")
	if err != nil {
		return "", fmt.Errorf("creating synthetic source: %w", err)
	}
	_, werr := f.WriteString(strings.Join(dataset.Synthetic(n, seed), "\n") + "\n")
	if err := f.Close(); werr == nil {
		werr = err
	}
	if werr != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing synthetic source: %w", werr)
	}
	return filepath.Clean(f.Name()), nil
}
