package lruwords

import (
	"context"
	"errors"
	"testing"

	"github.com/discochess/hotpath/internal/stats"
	"github.com/discochess/hotpath/internal/words"
)

type countingStrategy struct {
	known  map[string]bool
	calls  int
	failOn string
}

var errBoom = errors.New("boom")

func (c *countingStrategy) Name() string { return "fake" }

func (c *countingStrategy) WordOfTheDay(ctx context.Context) (string, error) {
	return "today", nil
}

func (c *countingStrategy) Exists(ctx context.Context, word string) (bool, error) {
	c.calls++
	if word == c.failOn {
		return false, errBoom
	}
	return c.known[word], nil
}

type tally struct {
	stats.Collector
	counters map[string]int64
	gauges   map[string]int64
}

func newTally() *tally {
	return &tally{Collector: stats.Discard, counters: map[string]int64{}, gauges: map[string]int64{}}
}

func (t *tally) IncCounter(metric, key string, delta int64) { t.counters[metric] += delta }
func (t *tally) SetGauge(metric, key string, value int64)   { t.gauges[metric] = value }

func TestStrategy_MemoizesExists(t *testing.T) {
	under := &countingStrategy{known: map[string]bool{"apple": true}}
	col := newTally()

	s, err := New(under, 8, WithCollector(col))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for range 3 {
		if ok, err := s.Exists(context.Background(), "apple"); err != nil || !ok {
			t.Fatalf("Exists(apple) = %v, %v", ok, err)
		}
	}
	if ok, _ := s.Exists(context.Background(), "pear"); ok {
		t.Error("Exists(pear) = true")
	}
	if ok, _ := s.Exists(context.Background(), "pear"); ok {
		t.Error("memoized Exists(pear) = true")
	}

	if under.calls != 2 {
		t.Errorf("underlying called %d times, want 2", under.calls)
	}

	st := s.Stats()
	if st.Hits != 3 || st.Misses != 2 || st.Size != 2 {
		t.Errorf("Stats() = %+v, want 3 hits, 2 misses, size 2", st)
	}
	if got := st.HitRate(); got != 60 {
		t.Errorf("HitRate() = %v, want 60", got)
	}
	if col.counters[stats.MetricCacheHits] != 3 || col.counters[stats.MetricCacheMisses] != 2 {
		t.Errorf("collector counters = %v", col.counters)
	}
	if col.gauges[stats.MetricCacheSize] != 2 {
		t.Errorf("collector size gauge = %d, want 2", col.gauges[stats.MetricCacheSize])
	}
}

func TestStrategy_ErrorsNotMemoized(t *testing.T) {
	under := &countingStrategy{failOn: "bad"}
	s, err := New(under, 4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for range 2 {
		if _, err := s.Exists(context.Background(), "bad"); !errors.Is(err, errBoom) {
			t.Errorf("Exists(bad) error = %v, want errBoom", err)
		}
	}
	if under.calls != 2 {
		t.Errorf("underlying called %d times, want 2", under.calls)
	}
	if s.Stats().Size != 0 {
		t.Errorf("Size = %d, want 0", s.Stats().Size)
	}
}

func TestStrategy_Eviction(t *testing.T) {
	under := &countingStrategy{known: map[string]bool{}}
	s, err := New(under, 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, w := range []string{"a", "b", "c", "a"} {
		s.Exists(context.Background(), w)
	}
	// "a" was evicted by "c" and had to be fetched again.
	if under.calls != 4 {
		t.Errorf("underlying called %d times, want 4", under.calls)
	}

	s.Purge()
	if got := s.Stats().Size; got != 0 {
		t.Errorf("Size after Purge = %d, want 0", got)
	}
}

func TestStrategy_PassThrough(t *testing.T) {
	under := &countingStrategy{}
	s, err := New(under, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := s.Name(); got != "fake+lru" {
		t.Errorf("Name() = %q, want %q", got, "fake+lru")
	}
	if got, _ := s.WordOfTheDay(context.Background()); got != "today" {
		t.Errorf("WordOfTheDay() = %q, want %q", got, "today")
	}
	if _, ok := s.CacheStats(); ok {
		t.Error("CacheStats() ok = true for a strategy without an index")
	}
	if s.Underlying() != words.Strategy(under) {
		t.Error("Underlying() mismatch")
	}
}
