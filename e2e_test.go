//go:build e2e

package hotpath_test

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/discochess/hotpath"
	"github.com/discochess/hotpath/benchmark/load"
	"github.com/discochess/hotpath/internal/analysis"
)

func TestE2E_RealData(t *testing.T) {
	sourceFile := "./data/words.txt"
	if _, err := os.Stat(sourceFile); os.IsNotExist(err) {
		t.Skip("Skipping: words.txt not found in data/")
	}

	tmpDir, err := os.MkdirTemp("", "hotpath-e2e-*")
	if err != nil {
		t.Fatalf("Error creating temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dataDir := filepath.Join(tmpDir, "data")

	// Step 1: Sample probe words from the source list
	t.Log("📦 Sampling probe words...")
	probes, err := sampleWords(sourceFile, 100)
	if err != nil {
		t.Fatalf("Error sampling words: %v", err)
	}
	probes = append(probes, "xyzzy-not-a-word")
	t.Logf("   Sampled %d words", len(probes))

	// Step 2: Build the data directory
	t.Log("🔨 Building data directory...")
	start := time.Now()
	cmd := exec.Command("go", "run", "./cmd/hotpath", "build",
		"--source", sourceFile,
		"--output", dataDir,
		"--codec", "zstd",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Error building: %v", err)
	}
	t.Logf("   Built in %v", time.Since(start))

	// Step 3: Both strategies must agree
	t.Log("🔍 Testing lookups...")
	ctx := context.Background()

	scan := openClient(t, dataDir, hotpath.ModeScan)
	cached := openClient(t, dataDir, hotpath.ModeCached)

	mismatches, err := load.CheckEquivalence(ctx, scan, cached, probes)
	if err != nil {
		t.Fatalf("CheckEquivalence() error = %v", err)
	}
	for _, m := range mismatches {
		t.Errorf("mismatch: %s", m)
	}

	// Step 4: Short traffic run and analysis
	t.Log("📊 Running traffic...")
	cfg := load.DefaultConfig()
	cfg.Duration = 2 * time.Second
	cfg.Words = probes

	for _, c := range []*hotpath.Client{scan, cached} {
		c.Reset()
		res, err := load.Run(ctx, c, cfg)
		if err != nil {
			t.Fatalf("Run(%s) error = %v", c.Strategy().Name(), err)
		}
		sum, err := res.Summary(hotpath.EndpointWordExists)
		if err != nil {
			t.Fatalf("Summary() error = %v", err)
		}
		t.Logf("   %-8s requests=%d p50=%.3fms p99=%.3fms",
			res.Strategy, res.TotalRequests(), sum.P50, sum.P99)

		an := c.Analyze()
		if c == scan && !hasRule(an, analysis.RuleLinearComparisons) {
			t.Errorf("scan analysis missing %s recommendation", analysis.RuleLinearComparisons)
		}
		if c == cached && hasRule(an, analysis.RuleLinearComparisons) {
			t.Errorf("cached analysis reports %s", analysis.RuleLinearComparisons)
		}
	}
}

func openClient(t *testing.T, dir string, mode hotpath.Mode) *hotpath.Client {
	t.Helper()
	opt, err := hotpath.WithDataDir(dir, mode)
	if err != nil {
		t.Fatalf("WithDataDir() error = %v", err)
	}
	client, err := hotpath.New(opt)
	if err != nil {
		t.Fatalf("New(%s) error = %v", mode, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func hasRule(an hotpath.Analysis, rule analysis.Rule) bool {
	for _, r := range an.Recommendations {
		if r.Rule == rule {
			return true
		}
	}
	return false
}

func sampleWords(path string, count int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(out) < count {
		w := strings.TrimSpace(scanner.Text())
		if w == "" {
			continue
		}
		// Every 50th word spreads probes across the list.
		if n%50 == 0 {
			out = append(out, w)
		}
		n++
	}
	return out, scanner.Err()
}
