package reporting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/discochess/hotpath"
	"github.com/discochess/hotpath/benchmark/analysis"
	"github.com/discochess/hotpath/benchmark/load"
)

func TestMarkdownReport(t *testing.T) {
	scan := &load.Result{
		Strategy:  "scan",
		Requests:  map[string]int{"word-exists": 3, "word-of-the-day": 1},
		Errors:    map[string]int{"word-of-the-day": 1},
		Latencies: map[string][]float64{"word-exists": {10, 12, 14}},
	}
	cached := &load.Result{
		Strategy:  "cached",
		Requests:  map[string]int{"word-exists": 3},
		Errors:    map[string]int{},
		Latencies: map[string][]float64{"word-exists": {0.1, 0.2, 0.3}},
	}

	var buf bytes.Buffer
	r := NewMarkdownReport(&buf)
	r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	r.WriteHeader("Hot Path Benchmark")
	r.WriteMethodology(load.DefaultConfig())
	r.WriteSummaryTable([]*load.Result{scan, cached})
	r.WriteComparison(analysis.NewComparer(analysis.WithBootstrapIterations(100)).Results(scan, cached, "word-exists"))
	r.WriteEquivalence("scan", "cached", nil)
	r.WriteEquivalence("scan", "cached", []load.Mismatch{{Probe: "exists(cat)", Want: "true", Got: "false"}})
	r.WriteAnalysis("scan", hotpath.Analysis{HottestMethod: "wordExists"}, "report body\n")
	r.WriteDistributionChart("scan", scan.LatenciesMs("word-exists"))
	r.WriteFooter()

	out := buf.String()
	for _, want := range []string{
		"# Hot Path Benchmark",
		"Generated: 2024-01-02T03:04:05Z",
		"20 req/s (200 requests)",
		"| scan | word-exists | 3 | 0 | 12.000 |",
		"| scan | word-of-the-day | 1 | 1 | - |",
		"## scan vs cached (word-exists)",
		"| Samples | 3 | 3 |",
		"scan and cached agree on every probe.",
		"- exists(cat): baseline true, candidate false",
		"- **Hottest method:** wordExists",
		"report body\n```",
		"### scan Distribution",
		"*Report generated by hotpath bench*",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestMakeHistogram(t *testing.T) {
	hist, lo, width := makeHistogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 10)
	if lo != 0 || width != 1 {
		t.Errorf("lo, width = %v, %v, want 0, 1", lo, width)
	}
	total := 0
	for _, c := range hist {
		total += c
	}
	if total != 11 {
		t.Errorf("total = %d, want 11", total)
	}
	if hist[9] != 2 {
		t.Errorf("last bucket = %d, want 2", hist[9])
	}

	hist, _, _ = makeHistogram([]float64{5, 5, 5}, 4)
	if hist[0] != 3 {
		t.Errorf("constant data first bucket = %d, want 3", hist[0])
	}

	hist, _, _ = makeHistogram(nil, 4)
	if len(hist) != 4 {
		t.Errorf("len(hist) = %d, want 4", len(hist))
	}
}
