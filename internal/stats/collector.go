// Package stats provides a unified interface for exporting recorded metrics.
package stats

// Metric names mirrored from the registry.
const (
	// Method metrics, keyed by method name.
	MetricMethodCalls    = "hotpath_method_calls_total"
	MetricMethodDuration = "hotpath_method_duration_seconds"

	// File I/O metrics.
	MetricFileReads    = "hotpath_file_reads_total"
	MetricBytesRead    = "hotpath_bytes_read_total"
	MetricFileOpenTime = "hotpath_file_open_seconds"

	// String operation metrics.
	MetricStringComparisons = "hotpath_string_comparisons_total"
	MetricLinesScanned      = "hotpath_lines_scanned_total"

	// Request metrics, keyed by endpoint name.
	MetricRequests = "hotpath_requests_total"

	// Memory metrics.
	MetricMemoryUsed      = "hotpath_memory_used_bytes"
	MetricDictionaryWords = "hotpath_dictionary_words"

	// Memo cache metrics.
	MetricCacheHits   = "hotpath_cache_hits_total"
	MetricCacheMisses = "hotpath_cache_misses_total"
	MetricCacheSize   = "hotpath_cache_size"
)

// KeyLabel returns the label name used for the key dimension of metric,
// or "" if the metric is not keyed.
func KeyLabel(metric string) string {
	switch metric {
	case MetricMethodCalls, MetricMethodDuration:
		return "method"
	case MetricRequests:
		return "endpoint"
	default:
		return ""
	}
}

var help = map[string]string{
	MetricMethodCalls:       "Calls per instrumented method.",
	MetricMethodDuration:    "Wall time per instrumented method call.",
	MetricFileReads:         "Word list reads from the backing source.",
	MetricBytesRead:         "Bytes read from the backing source.",
	MetricFileOpenTime:      "Time to open the backing source.",
	MetricStringComparisons: "Word comparisons performed by lookups.",
	MetricLinesScanned:      "Word list lines visited by lookups.",
	MetricRequests:          "Requests per endpoint.",
	MetricMemoryUsed:        "Bytes held by the cached word list.",
	MetricDictionaryWords:   "Words in the loaded dictionary.",
	MetricCacheHits:         "Memo cache hits.",
	MetricCacheMisses:       "Memo cache misses.",
	MetricCacheSize:         "Entries in the memo cache.",
}

// Help returns a one-line description of metric, or the metric name
// itself when none is registered.
func Help(metric string) string {
	if h, ok := help[metric]; ok {
		return h
	}
	return metric
}

// Collector defines the interface for exporting metrics.
// The key is the value of the metric's key dimension (see KeyLabel) and is
// ignored for metrics without one.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(metric, key string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(metric, key string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(metric, key string, value float64)
}

// Discard is a Collector that drops every recording.
var Discard Collector = discard{}

type discard struct{}

func (discard) IncCounter(string, string, int64)         {}
func (discard) SetGauge(string, string, int64)           {}
func (discard) ObserveHistogram(string, string, float64) {}
