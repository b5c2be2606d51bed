package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/hotpath/internal/config"
	"github.com/discochess/hotpath/internal/dataset"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about a word list",
	Long: `Display statistics about a word list data directory:
- Word count and unique words from the manifest
- Size on disk and compression
- With --load, the in-memory cache statistics of the cached strategy`,
	RunE: runStats,
}

var statsLoad bool

func init() {
	config.RegisterFlags(statsCmd.Flags())
	statsCmd.Flags().BoolVar(&statsLoad, "load", false, "load the list into memory and report cache statistics")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if info, err := os.Stat(cfg.Dataset); err == nil && info.IsDir() {
		if err := printManifest(cfg.Dataset); err != nil {
			return err
		}
	} else if !statsLoad {
		return fmt.Errorf("data directory %q does not exist; run 'hotpath build' first", cfg.Dataset)
	}

	if !statsLoad {
		return nil
	}

	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	cached := *cfg
	cached.Strategy = config.StrategyCached
	client, err := openClient(ctx, &cached, log)
	if err != nil {
		return fmt.Errorf("loading word list: %w", err)
	}
	defer client.Close()

	cs, ok := client.CacheStats()
	if !ok {
		return fmt.Errorf("strategy %s keeps no cache", client.Strategy().Name())
	}
	fmt.Println()
	fmt.Println(cs.String())
	return nil
}

func printManifest(dir string) error {
	m, err := dataset.ReadManifest(dir)
	if err != nil {
		return err
	}

	var onDisk int64
	if info, err := os.Stat(filepath.Join(dir, m.File)); err == nil {
		onDisk = info.Size()
	}

	fmt.Printf("Data directory: %s\n", dir)
	fmt.Printf("Word list:      %s\n", m.File)
	fmt.Printf("Words:          %d\n", m.WordCount)
	fmt.Printf("Unique words:   %d\n", m.UniqueWords)
	fmt.Printf("Raw size:       %s\n", dataset.FormatBytes(m.RawBytes))
	fmt.Printf("Size on disk:   %s\n", dataset.FormatBytes(onDisk))
	if r := m.Ratio(); r > 0 {
		fmt.Printf("Compression:    %s (%.1fx)\n", m.Compression, r)
	}
	if onDisk != m.Bytes {
		fmt.Printf("Warning:        word list is %s on disk, manifest lists %s\n",
			dataset.FormatBytes(onDisk), dataset.FormatBytes(m.Bytes))
	}
	if m.SourceURL != "" {
		fmt.Printf("Source:         %s\n", m.SourceURL)
	}
	if !m.BuiltAt.IsZero() {
		fmt.Printf("Built:          %s\n", m.BuiltAt.Format(time.RFC3339))
	}
	return nil
}
