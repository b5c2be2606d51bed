package hotpath

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/discochess/hotpath/internal/analysis"
	"github.com/discochess/hotpath/internal/dataset"
	"github.com/discochess/hotpath/internal/registry"
	"github.com/discochess/hotpath/internal/source/memsource"
	"github.com/discochess/hotpath/internal/words"
)

func TestNew_RequiresStrategy(t *testing.T) {
	_, err := New()
	if !errors.Is(err, ErrNoStrategy) {
		t.Errorf("New() error = %v, want ErrNoStrategy", err)
	}
}

func TestNew_CachedMissingData(t *testing.T) {
	src := memsource.New()
	src.Clear()

	_, err := New(WithSource(src, ModeCached))
	if !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("New() error = %v, want ErrDataUnavailable", err)
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"scan", "cached"} {
		if m, err := ParseMode(s); err != nil || string(m) != s {
			t.Errorf("ParseMode(%q) = %q, %v", s, m, err)
		}
	}
	if _, err := ParseMode("hash"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseMode(hash) error = %v, want ErrInvalidArgument", err)
	}
}

func TestClient_ScanRecordsHotPath(t *testing.T) {
	src := memsource.New("apple", "banana", "cherry")
	c, err := New(WithSource(src, ModeScan), WithIndex(words.FixedIndex(1)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	for range 20 {
		if _, err := c.Exists(ctx, "cherry"); err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
	}
	word, err := c.WordOfTheDay(ctx)
	if err != nil {
		t.Fatalf("WordOfTheDay() error = %v", err)
	}
	if word != "banana" {
		t.Errorf("WordOfTheDay() = %q, want %q", word, "banana")
	}

	rep := c.Snapshot()
	if rep.TotalRequests != 21 {
		t.Errorf("TotalRequests = %d, want 21", rep.TotalRequests)
	}
	if got := rep.EndpointCalls(EndpointWordExists); got != 20 {
		t.Errorf("EndpointCalls(word-exists) = %d, want 20", got)
	}
	if rep.FileReads != 21 {
		t.Errorf("FileReads = %d, want 21", rep.FileReads)
	}
	if rep.StringComparisons != 60 {
		t.Errorf("StringComparisons = %d, want 60", rep.StringComparisons)
	}
	if _, ok := rep.Method(EndpointMethod(words.MethodWordExists)); !ok {
		t.Error("endpoint timing for wordExists not recorded")
	}

	an := c.Analyze()
	var sawModerate, sawHotPath bool
	for _, r := range an.Recommendations {
		switch r.Severity {
		case analysis.SeverityModerate:
			sawModerate = true
		case analysis.SeverityHotPath:
			sawHotPath = true
		case analysis.SeverityCritical:
			// One read per request is not redundant.
			t.Errorf("unexpected CRITICAL with %d reads for %d requests", rep.FileReads, rep.TotalRequests)
		}
	}
	if !sawModerate {
		t.Errorf("no MODERATE recommendation for %d comparisons over %d lines", rep.StringComparisons, rep.LinesScanned)
	}
	if !sawHotPath {
		t.Error("no HOT-PATH recommendation for a 20:1 endpoint split")
	}

	if r := c.GenerateReport(); !strings.Contains(r, "HOT PATH ANALYSIS") {
		t.Errorf("GenerateReport() missing header:\n%s", r)
	}
}

func TestClient_CachedHasNoIO(t *testing.T) {
	src := memsource.New("apple", "banana", "apple")
	c, err := New(WithSource(src, ModeCached))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	for range 10 {
		if ok, err := c.Exists(context.Background(), "apple"); err != nil || !ok {
			t.Fatalf("Exists(apple) = %v, %v", ok, err)
		}
	}

	rep := c.Snapshot()
	if rep.FileReads != 0 || rep.StringComparisons != 0 {
		t.Errorf("cached lookups recorded I/O: reads=%d comparisons=%d", rep.FileReads, rep.StringComparisons)
	}

	cs, ok := c.CacheStats()
	if !ok {
		t.Fatal("CacheStats() ok = false for cached strategy")
	}
	if cs.TotalWords != 3 || cs.CachedWords != 2 {
		t.Errorf("CacheStats() = %+v, want 3 total, 2 cached", cs)
	}
}

func TestClient_MemoForwardsCacheStats(t *testing.T) {
	c, err := New(WithSource(memsource.New("a"), ModeCached), WithMemo(4))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if !strings.HasSuffix(c.Strategy().Name(), "+lru") {
		t.Errorf("Strategy().Name() = %q, want memo wrapper", c.Strategy().Name())
	}
	if _, ok := c.CacheStats(); !ok {
		t.Error("CacheStats() ok = false through memo")
	}
}

func TestClient_ScanHasNoCacheStats(t *testing.T) {
	c, err := New(WithSource(memsource.New("a"), ModeScan))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if _, ok := c.CacheStats(); ok {
		t.Error("CacheStats() ok = true for scan strategy")
	}
}

func TestClient_DataUnavailablePropagates(t *testing.T) {
	src := memsource.New("a")
	c, err := New(WithSource(src, ModeScan))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()
	src.Clear()

	if _, err := c.Exists(context.Background(), "a"); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("Exists() error = %v, want ErrDataUnavailable", err)
	}
	if _, err := c.WordOfTheDay(context.Background()); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("WordOfTheDay() error = %v, want ErrDataUnavailable", err)
	}
}

func TestClient_Reset(t *testing.T) {
	reg := registry.New()
	c, err := New(WithSource(memsource.New("a"), ModeScan), WithRegistry(reg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	c.Exists(context.Background(), "a")
	c.Reset()

	rep := c.Snapshot()
	if rep.TotalRequests != 0 || len(rep.Methods) != 0 || rep.FileReads != 0 {
		t.Errorf("after Reset: %+v", rep)
	}
	if c.Registry() != reg {
		t.Error("Registry() returned unexpected registry")
	}

	an := c.Analyze()
	if an.HottestMethod != analysis.UnknownMethod {
		t.Errorf("HottestMethod = %q, want %q", an.HottestMethod, analysis.UnknownMethod)
	}
}

func TestClient_Close(t *testing.T) {
	c, err := New(WithSource(memsource.New("a"), ModeScan))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := c.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() error = %v, want ErrClosed", err)
	}
	if _, err := c.Exists(context.Background(), "a"); !errors.Is(err, ErrClosed) {
		t.Errorf("Exists() after Close error = %v, want ErrClosed", err)
	}
	if _, err := c.WordOfTheDay(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("WordOfTheDay() after Close error = %v, want ErrClosed", err)
	}
}

func TestClient_Concurrent(t *testing.T) {
	c, err := New(WithSource(memsource.New("a", "b", "c"), ModeCached), WithIndex(words.FixedIndex(0)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 250 {
				c.Exists(context.Background(), "b")
				c.WordOfTheDay(context.Background())
			}
		}()
	}
	wg.Wait()

	rep := c.Snapshot()
	if rep.TotalRequests != 8*250*2 {
		t.Errorf("TotalRequests = %d, want %d", rep.TotalRequests, 8*250*2)
	}
	m, ok := rep.Method(EndpointMethod(words.MethodWordExists))
	if !ok || m.Calls != 8*250 {
		t.Errorf("wordExists_endpoint = %+v, %v", m, ok)
	}
}

func TestWithDataDir(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "src.txt")
	if err := os.WriteFile(srcPath, []byte("one\ntwo\nthree\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	dir := t.TempDir()
	if _, err := dataset.NewBuilder(dataset.WithOutputDir(dir), dataset.WithProgress(nil)).
		BuildFromFile(context.Background(), srcPath, time.Time{}); err != nil {
		t.Fatalf("BuildFromFile() error = %v", err)
	}

	for _, mode := range []Mode{ModeScan, ModeCached} {
		t.Run(string(mode), func(t *testing.T) {
			opt, err := WithDataDir(dir, mode)
			if err != nil {
				t.Fatalf("WithDataDir() error = %v", err)
			}
			c, err := New(opt, WithIndex(words.FixedIndex(2)))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer c.Close()

			if ok, err := c.Exists(context.Background(), "two"); err != nil || !ok {
				t.Errorf("Exists(two) = %v, %v", ok, err)
			}
			if w, _ := c.WordOfTheDay(context.Background()); w != "three" {
				t.Errorf("WordOfTheDay() = %q, want three", w)
			}
		})
	}

	if _, err := WithDataDir(t.TempDir(), ModeScan); err == nil {
		t.Error("WithDataDir() expected error without manifest")
	}
}

func TestPercentile(t *testing.T) {
	got, err := Percentile([]float64{40, 10, 30, 20}, 50)
	if err != nil {
		t.Fatalf("Percentile() error = %v", err)
	}
	if got != 25 {
		t.Errorf("Percentile() = %v, want 25", got)
	}

	if _, err := Percentile(nil, 50); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Percentile(nil) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := Percentile([]float64{1}, math.NaN()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Percentile(NaN) error = %v, want ErrInvalidArgument", err)
	}
}
