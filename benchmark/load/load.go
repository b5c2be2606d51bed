// Package load drives a word lookup target with paced production-like
// traffic and collects per-request latency samples.
package load

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/discochess/hotpath"
	"github.com/discochess/hotpath/internal/analysis"
)

// DefaultProbeWords are cycled through by word-exists traffic.
var DefaultProbeWords = []string{
	"cat", "house", "dog", "tree", "water",
	"fire", "earth", "air", "love", "peace",
}

// Target is the lookup surface exercised by the simulator.
// *hotpath.Client satisfies it.
type Target interface {
	WordOfTheDay(ctx context.Context) (string, error)
	Exists(ctx context.Context, word string) (bool, error)
}

var _ Target = (*hotpath.Client)(nil)

// ErrDeadlineTooShort is returned when the context deadline falls before
// every scheduled request could be sent.
var ErrDeadlineTooShort = errors.New("load: context deadline ends before the run")

// Config describes a traffic run.
type Config struct {
	// WordExistsRPS is the word-exists arrival rate. Zero disables it.
	WordExistsRPS float64

	// WordOfTheDayRPS is the word-of-the-day arrival rate. Zero disables it.
	WordOfTheDayRPS float64

	// Duration is the simulated wall time. Each stream issues
	// round(rps * Duration) requests.
	Duration time.Duration

	// Workers is the number of concurrent request executors.
	Workers int

	// Words are the probe words for word-exists traffic.
	Words []string
}

// DefaultConfig returns the production traffic shape: 20 word-exists
// requests per word-of-the-day request, for ten seconds.
func DefaultConfig() Config {
	return Config{
		WordExistsRPS:   20,
		WordOfTheDayRPS: 1,
		Duration:        10 * time.Second,
		Workers:         4,
		Words:           DefaultProbeWords,
	}
}

// Requests returns how many requests a stream at rps issues.
func (c Config) Requests(rps float64) int {
	if rps <= 0 || c.Duration <= 0 {
		return 0
	}
	return int(math.Round(rps * c.Duration.Seconds()))
}

// Result holds the samples of one run.
type Result struct {
	Strategy string
	Elapsed  time.Duration

	// Requests and Errors are keyed by endpoint name.
	Requests map[string]int
	Errors   map[string]int

	// Latencies are per-request durations in milliseconds, keyed by
	// endpoint name, in completion order.
	Latencies map[string][]float64
}

// LatenciesMs returns the samples of one endpoint.
func (r *Result) LatenciesMs(endpoint string) []float64 {
	return r.Latencies[endpoint]
}

// All returns every sample across endpoints.
func (r *Result) All() []float64 {
	var out []float64
	for _, v := range r.Latencies {
		out = append(out, v...)
	}
	return out
}

// TotalRequests returns the number of requests issued across endpoints.
func (r *Result) TotalRequests() int {
	var n int
	for _, v := range r.Requests {
		n += v
	}
	return n
}

// LatencySummary condenses a latency sample.
type LatencySummary struct {
	Count int
	Mean  float64
	P50   float64
	P90   float64
	P99   float64
	Max   float64
}

// Summary computes the latency summary of one endpoint.
func (r *Result) Summary(endpoint string) (LatencySummary, error) {
	return Summarize(r.Latencies[endpoint])
}

// Summarize computes a latency summary over ms.
func Summarize(ms []float64) (LatencySummary, error) {
	ps, err := analysis.Percentiles(ms, 50, 90, 99, 100)
	if err != nil {
		return LatencySummary{}, err
	}
	var sum float64
	for _, v := range ms {
		sum += v
	}
	return LatencySummary{
		Count: len(ms),
		Mean:  sum / float64(len(ms)),
		P50:   ps[0],
		P90:   ps[1],
		P99:   ps[2],
		Max:   ps[3],
	}, nil
}

type job struct {
	endpoint string
	word     string
}

type stream struct {
	endpoint string
	limiter  *rate.Limiter
	requests int
	words    []string
}

// Run replays cfg against target and returns the collected samples.
// Request errors are counted, not returned; Run fails when ctx is
// cancelled, when its deadline leaves too little time for the run, or
// when cfg is invalid.
func Run(ctx context.Context, target Target, cfg Config) (*Result, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.WordExistsRPS > 0 && len(cfg.Words) == 0 {
		return nil, errors.New("load: word-exists traffic needs probe words")
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < cfg.Duration {
		return nil, fmt.Errorf("%w: %v left, run takes %v", ErrDeadlineTooShort, time.Until(dl).Round(time.Millisecond), cfg.Duration)
	}

	var streams []stream
	if n := cfg.Requests(cfg.WordOfTheDayRPS); n > 0 {
		streams = append(streams, newStream(hotpath.EndpointWordOfTheDay, cfg.WordOfTheDayRPS, n, nil))
	}
	if n := cfg.Requests(cfg.WordExistsRPS); n > 0 {
		streams = append(streams, newStream(hotpath.EndpointWordExists, cfg.WordExistsRPS, n, cfg.Words))
	}

	res := &Result{
		Requests:  make(map[string]int),
		Errors:    make(map[string]int),
		Latencies: make(map[string][]float64),
	}
	if c, ok := target.(*hotpath.Client); ok {
		res.Strategy = c.Strategy().Name()
	}
	var mu sync.Mutex

	jobs := make(chan job)
	g, gctx := errgroup.WithContext(ctx)

	var producers sync.WaitGroup
	for _, st := range streams {
		producers.Add(1)
		g.Go(func() error {
			defer producers.Done()
			return st.produce(gctx, jobs)
		})
	}
	g.Go(func() error {
		producers.Wait()
		close(jobs)
		return nil
	})

	start := time.Now()
	for range cfg.Workers {
		g.Go(func() error {
			for j := range jobs {
				d, err := execute(gctx, target, j)
				ms := float64(d.Nanoseconds()) / 1e6

				mu.Lock()
				res.Requests[j.endpoint]++
				if err != nil {
					res.Errors[j.endpoint]++
				} else {
					res.Latencies[j.endpoint] = append(res.Latencies[j.endpoint], ms)
				}
				mu.Unlock()
			}
			return nil
		})
	}

	err := g.Wait()
	res.Elapsed = time.Since(start)
	if err == nil {
		err = ctx.Err()
	}
	if errors.Is(err, ErrDeadlineTooShort) {
		return res, err
	}
	if err != nil {
		return res, fmt.Errorf("load: %w", err)
	}
	return res, nil
}

func newStream(endpoint string, rps float64, requests int, words []string) stream {
	return stream{
		endpoint: endpoint,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		requests: requests,
		words:    words,
	}
}

func (s stream) produce(ctx context.Context, jobs chan<- job) error {
	for i := range s.requests {
		if err := s.limiter.Wait(ctx); err != nil {
			// Wait fails early when the next token lands past the deadline.
			if ctx.Err() == nil {
				return fmt.Errorf("%w: %s sent %d of %d", ErrDeadlineTooShort, s.endpoint, i, s.requests)
			}
			return ctx.Err()
		}
		j := job{endpoint: s.endpoint}
		if len(s.words) > 0 {
			j.word = s.words[i%len(s.words)]
		}
		select {
		case jobs <- j:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func execute(ctx context.Context, target Target, j job) (time.Duration, error) {
	start := time.Now()
	var err error
	switch j.endpoint {
	case hotpath.EndpointWordOfTheDay:
		_, err = target.WordOfTheDay(ctx)
	default:
		_, err = target.Exists(ctx, j.word)
	}
	return time.Since(start), err
}
