// Package registry implements the process-wide counter registry that the
// workload strategies record into and that reports are built from.
//
// Every accumulator is updated with a single atomic add. There is no
// registry-wide lock: contention on one metric never blocks recording of
// another, and Snapshot never blocks writers.
package registry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/discochess/hotpath/internal/stats"
)

// Registry holds named and scalar accumulators.
// A Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	methods   sync.Map // string -> *methodAccumulator
	endpoints sync.Map // string -> *endpointCounter

	// seq orders accumulators by first use.
	seq atomic.Uint64

	fileReads         atomic.Uint64
	bytesRead         atomic.Uint64
	fileOpenNanos     atomic.Uint64
	stringComparisons atomic.Uint64
	linesScanned      atomic.Uint64
	requests          atomic.Uint64
	memoryUsed        atomic.Uint64
	dictionaryWords   atomic.Uint64

	collector stats.Collector
}

type methodAccumulator struct {
	seq        uint64
	totalNanos atomic.Uint64
	calls      atomic.Uint64
}

type endpointCounter struct {
	seq   uint64
	calls atomic.Uint64
}

// Option configures a Registry.
type Option func(*Registry)

// WithCollector mirrors every recording into c.
// The registry stays the source of truth for reports.
func WithCollector(c stats.Collector) Option {
	return func(r *Registry) {
		if c != nil {
			r.collector = c
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{collector: stats.Discard}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordMethodExecution adds one call of duration d to the named method.
// The accumulator is created on first use. Negative durations count as zero.
func (r *Registry) RecordMethodExecution(name string, d time.Duration) {
	if d < 0 {
		d = 0
	}
	acc := r.method(name)
	acc.totalNanos.Add(uint64(d))
	acc.calls.Add(1)

	r.collector.IncCounter(stats.MetricMethodCalls, name, 1)
	r.collector.ObserveHistogram(stats.MetricMethodDuration, name, d.Seconds())
}

// RecordFileRead records one file read of bytesRead bytes whose open took openTime.
func (r *Registry) RecordFileRead(bytesRead int64, openTime time.Duration) {
	if bytesRead < 0 {
		bytesRead = 0
	}
	if openTime < 0 {
		openTime = 0
	}
	r.fileReads.Add(1)
	r.bytesRead.Add(uint64(bytesRead))
	r.fileOpenNanos.Add(uint64(openTime))

	r.collector.IncCounter(stats.MetricFileReads, "", 1)
	r.collector.IncCounter(stats.MetricBytesRead, "", bytesRead)
	r.collector.ObserveHistogram(stats.MetricFileOpenTime, "", openTime.Seconds())
}

// RecordStringComparison records a single string equality comparison.
func (r *Registry) RecordStringComparison() {
	r.RecordStringComparisons(1)
}

// RecordStringComparisons records n string comparisons with one atomic add.
func (r *Registry) RecordStringComparisons(n int64) {
	if n <= 0 {
		return
	}
	r.stringComparisons.Add(uint64(n))
	r.collector.IncCounter(stats.MetricStringComparisons, "", n)
}

// RecordLinesScanned adds n scanned lines.
func (r *Registry) RecordLinesScanned(n int64) {
	if n <= 0 {
		return
	}
	r.linesScanned.Add(uint64(n))
	r.collector.IncCounter(stats.MetricLinesScanned, "", n)
}

// RecordRequest counts one request against the named endpoint.
func (r *Registry) RecordRequest(endpoint string) {
	r.requests.Add(1)
	r.endpoint(endpoint).calls.Add(1)
	r.collector.IncCounter(stats.MetricRequests, endpoint, 1)
}

// RecordMemoryUsage adds bytes to the memory footprint total.
func (r *Registry) RecordMemoryUsage(bytes int64) {
	if bytes <= 0 {
		return
	}
	total := r.memoryUsed.Add(uint64(bytes))
	r.collector.SetGauge(stats.MetricMemoryUsed, "", int64(total))
}

// RecordDictionaryWords sets the number of words held by a loaded
// dictionary. Unlike the counters it is a level, so the last call wins.
func (r *Registry) RecordDictionaryWords(n int64) {
	if n < 0 {
		n = 0
	}
	r.dictionaryWords.Store(uint64(n))
	r.collector.SetGauge(stats.MetricDictionaryWords, "", n)
}

// Reset zeroes every accumulator and forgets all method and endpoint names.
// Recordings racing a reset may be lost; Reset is an administrative
// operation and must not be called from the measured path.
func (r *Registry) Reset() {
	r.methods.Clear()
	r.endpoints.Clear()

	r.fileReads.Store(0)
	r.bytesRead.Store(0)
	r.fileOpenNanos.Store(0)
	r.stringComparisons.Store(0)
	r.linesScanned.Store(0)
	r.requests.Store(0)
	r.memoryUsed.Store(0)
	r.dictionaryWords.Store(0)
}

func (r *Registry) method(name string) *methodAccumulator {
	if v, ok := r.methods.Load(name); ok {
		return v.(*methodAccumulator)
	}
	v, _ := r.methods.LoadOrStore(name, &methodAccumulator{seq: r.seq.Add(1)})
	return v.(*methodAccumulator)
}

func (r *Registry) endpoint(name string) *endpointCounter {
	if v, ok := r.endpoints.Load(name); ok {
		return v.(*endpointCounter)
	}
	v, _ := r.endpoints.LoadOrStore(name, &endpointCounter{seq: r.seq.Add(1)})
	return v.(*endpointCounter)
}
