package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MethodStats is the reported state of one method accumulator.
type MethodStats struct {
	Name      string  `json:"name"`
	AverageMs float64 `json:"average_ms"`
	Calls     uint64  `json:"calls"`
}

// EndpointStats is the reported request count of one endpoint.
type EndpointStats struct {
	Name  string `json:"name"`
	Calls uint64 `json:"calls"`
}

// Report is an immutable snapshot of the registry.
// Methods and Endpoints are listed in first-recorded order.
type Report struct {
	Methods           []MethodStats   `json:"methods"`
	FileReads         uint64          `json:"file_reads"`
	BytesRead         uint64          `json:"bytes_read"`
	FileOpenTimeMs    float64         `json:"file_open_time_ms"`
	StringComparisons uint64          `json:"string_comparisons"`
	LinesScanned      uint64          `json:"lines_scanned"`
	TotalRequests     uint64          `json:"total_requests"`
	Endpoints         []EndpointStats `json:"endpoints"`
	MemoryUsedBytes   uint64          `json:"memory_used_bytes"`
	DictionaryWords   uint64          `json:"dictionary_words"`
}

// Snapshot builds a Report from the current accumulator values.
//
// The snapshot is weakly consistent: each field is read once while writers
// keep running, so a method's sum and count may come from slightly different
// instants and its average can be transiently skewed. Snapshot never blocks
// recording and never mutates the registry.
func (r *Registry) Snapshot() Report {
	type seqMethod struct {
		seq uint64
		MethodStats
	}
	var methods []seqMethod
	r.methods.Range(func(k, v any) bool {
		acc := v.(*methodAccumulator)
		calls := acc.calls.Load()
		if calls == 0 {
			// Created but not yet counted; no average is defined.
			return true
		}
		total := acc.totalNanos.Load()
		methods = append(methods, seqMethod{
			seq: acc.seq,
			MethodStats: MethodStats{
				Name:      k.(string),
				AverageMs: float64(total) / float64(calls) / float64(time.Millisecond),
				Calls:     calls,
			},
		})
		return true
	})
	sort.Slice(methods, func(i, j int) bool { return methods[i].seq < methods[j].seq })

	type seqEndpoint struct {
		seq uint64
		EndpointStats
	}
	var endpoints []seqEndpoint
	r.endpoints.Range(func(k, v any) bool {
		ep := v.(*endpointCounter)
		endpoints = append(endpoints, seqEndpoint{
			seq:           ep.seq,
			EndpointStats: EndpointStats{Name: k.(string), Calls: ep.calls.Load()},
		})
		return true
	})
	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i].seq < endpoints[j].seq })

	rep := Report{
		Methods:           make([]MethodStats, len(methods)),
		FileReads:         r.fileReads.Load(),
		BytesRead:         r.bytesRead.Load(),
		FileOpenTimeMs:    float64(r.fileOpenNanos.Load()) / float64(time.Millisecond),
		StringComparisons: r.stringComparisons.Load(),
		LinesScanned:      r.linesScanned.Load(),
		TotalRequests:     r.requests.Load(),
		Endpoints:         make([]EndpointStats, len(endpoints)),
		MemoryUsedBytes:   r.memoryUsed.Load(),
		DictionaryWords:   r.dictionaryWords.Load(),
	}
	for i, m := range methods {
		rep.Methods[i] = m.MethodStats
	}
	for i, e := range endpoints {
		rep.Endpoints[i] = e.EndpointStats
	}
	return rep
}

// Method returns the stats for name, if it has been recorded.
func (r Report) Method(name string) (MethodStats, bool) {
	for _, m := range r.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodStats{}, false
}

// EndpointCalls returns the request count for endpoint, or 0.
func (r Report) EndpointCalls(endpoint string) uint64 {
	for _, e := range r.Endpoints {
		if e.Name == endpoint {
			return e.Calls
		}
	}
	return 0
}

// AverageDurationMs returns average duration per method in milliseconds.
func (r Report) AverageDurationMs() map[string]float64 {
	out := make(map[string]float64, len(r.Methods))
	for _, m := range r.Methods {
		out[m.Name] = m.AverageMs
	}
	return out
}

// CallCounts returns call counts per method.
func (r Report) CallCounts() map[string]uint64 {
	out := make(map[string]uint64, len(r.Methods))
	for _, m := range r.Methods {
		out[m.Name] = m.Calls
	}
	return out
}

// EndpointCounts returns request counts per endpoint.
func (r Report) EndpointCounts() map[string]uint64 {
	out := make(map[string]uint64, len(r.Endpoints))
	for _, e := range r.Endpoints {
		out[e.Name] = e.Calls
	}
	return out
}

// String renders the full metrics dump.
func (r Report) String() string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString("=== PERFORMANCE METRICS REPORT ===\n")

	b.WriteString("\n--- METHOD PERFORMANCE ---\n")
	for _, m := range r.Methods {
		fmt.Fprintf(&b, "%-30s: %8.2f ms (called %d times)\n", m.Name, m.AverageMs, m.Calls)
	}

	b.WriteString("\n--- FILE I/O METRICS ---\n")
	fmt.Fprintf(&b, "Total file reads: %d\n", r.FileReads)
	p.Fprintf(&b, "Total bytes read: %d\n", r.BytesRead)
	fmt.Fprintf(&b, "Total file open time: %.2f ms\n", r.FileOpenTimeMs)

	b.WriteString("\n--- STRING OPERATIONS ---\n")
	p.Fprintf(&b, "Total string comparisons: %d\n", r.StringComparisons)
	p.Fprintf(&b, "Total lines scanned: %d\n", r.LinesScanned)

	b.WriteString("\n--- REQUEST METRICS ---\n")
	fmt.Fprintf(&b, "Total requests: %d\n", r.TotalRequests)
	for _, e := range r.Endpoints {
		fmt.Fprintf(&b, "%-20s: %d requests\n", e.Name, e.Calls)
	}

	b.WriteString("\n--- MEMORY USAGE ---\n")
	p.Fprintf(&b, "Total memory used: %d bytes\n", r.MemoryUsedBytes)
	if r.DictionaryWords > 0 {
		p.Fprintf(&b, "Dictionary words: %d\n", r.DictionaryWords)
	}

	return b.String()
}
