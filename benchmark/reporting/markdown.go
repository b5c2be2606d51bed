// Package reporting provides report generation for benchmark results.
package reporting

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/discochess/hotpath"
	"github.com/discochess/hotpath/benchmark/analysis"
	"github.com/discochess/hotpath/benchmark/load"
)

// MarkdownReport generates benchmark reports in Markdown format.
type MarkdownReport struct {
	w   io.Writer
	now func() time.Time
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w, now: time.Now}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", r.now().Format(time.RFC3339))
}

// WriteMethodology writes the methodology section.
func (r *MarkdownReport) WriteMethodology(cfg load.Config) {
	fmt.Fprintln(r.w, "## Methodology")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Word-exists traffic:** %.0f req/s (%d requests)\n",
		cfg.WordExistsRPS, cfg.Requests(cfg.WordExistsRPS))
	fmt.Fprintf(r.w, "- **Word-of-the-day traffic:** %.0f req/s (%d requests)\n",
		cfg.WordOfTheDayRPS, cfg.Requests(cfg.WordOfTheDayRPS))
	fmt.Fprintf(r.w, "- **Duration:** %s, %d workers\n", cfg.Duration, cfg.Workers)
	fmt.Fprintf(r.w, "- **Probe words:** %s\n", strings.Join(cfg.Words, ", "))
	fmt.Fprintln(r.w, "- **Metric:** per-request latency in milliseconds (lower is better)")
	fmt.Fprintln(r.w, "- **Statistical tests:** Mann-Whitney U (non-parametric), Cohen's d effect size")
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes one row per run and endpoint.
func (r *MarkdownReport) WriteSummaryTable(results []*load.Result) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Strategy | Endpoint | Requests | Errors | Mean (ms) | p50 (ms) | p90 (ms) | p99 (ms) | Max (ms) |")
	fmt.Fprintln(r.w, "|----------|----------|----------|--------|-----------|----------|----------|----------|----------|")

	for _, res := range results {
		endpoints := make([]string, 0, len(res.Requests))
		for e := range res.Requests {
			endpoints = append(endpoints, e)
		}
		slices.Sort(endpoints)

		for _, e := range endpoints {
			s, err := res.Summary(e)
			if err != nil {
				fmt.Fprintf(r.w, "| %s | %s | %d | %d | - | - | - | - | - |\n",
					res.Strategy, e, res.Requests[e], res.Errors[e])
				continue
			}
			fmt.Fprintf(r.w, "| %s | %s | %d | %d | %.3f | %.3f | %.3f | %.3f | %.3f |\n",
				res.Strategy, e, res.Requests[e], res.Errors[e],
				s.Mean, s.P50, s.P90, s.P99, s.Max)
		}
	}
	fmt.Fprintln(r.w)
}

// statRows are the descriptive statistics shown per comparison.
var statRows = []struct {
	label string
	value func(*analysis.DescriptiveStats) float64
}{
	{"Mean", func(s *analysis.DescriptiveStats) float64 { return s.Mean }},
	{"Median", func(s *analysis.DescriptiveStats) float64 { return s.Median }},
	{"p90", func(s *analysis.DescriptiveStats) float64 { return s.P90 }},
	{"p99", func(s *analysis.DescriptiveStats) float64 { return s.P99 }},
	{"Std Dev", func(s *analysis.DescriptiveStats) float64 { return s.StdDev }},
	{"Min", func(s *analysis.DescriptiveStats) float64 { return s.Min }},
	{"Max", func(s *analysis.DescriptiveStats) float64 { return s.Max }},
}

// WriteComparison writes a baseline versus candidate section.
func (r *MarkdownReport) WriteComparison(comp *analysis.Comparison) {
	fmt.Fprintf(r.w, "## %s vs %s (%s)\n\n", comp.Baseline, comp.Candidate, comp.Endpoint)

	fmt.Fprintf(r.w, "### Descriptive Statistics (ms)\n\n")
	fmt.Fprintf(r.w, "| Metric | %s | %s |\n", comp.Baseline, comp.Candidate)
	fmt.Fprintln(r.w, "|--------|---:|---:|")
	fmt.Fprintf(r.w, "| Samples | %d | %d |\n", comp.BaselineStats.N, comp.CandidateStats.N)
	for _, row := range statRows {
		fmt.Fprintf(r.w, "| %s | %.3f | %.3f |\n", row.label, row.value(comp.BaselineStats), row.value(comp.CandidateStats))
	}
	fmt.Fprintln(r.w)

	ci := comp.BootstrapCI
	fmt.Fprintf(r.w, "### Statistical Analysis\n\n")
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n", comp.MannWhitney.U, comp.MannWhitney.Z, comp.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n", comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **%.0f%% CI for mean difference:** [%.3f, %.3f] ms\n", ci.Confidence*100, ci.LowerBound, ci.UpperBound)
	if comp.Speedup > 0 {
		fmt.Fprintf(r.w, "- **Speedup:** %.1fx\n", comp.Speedup)
	}
	fmt.Fprintln(r.w)

	fmt.Fprintf(r.w, "### Conclusion\n\n")
	if comp.Confident {
		fmt.Fprintf(r.w, "**%s** is significantly faster than %s (p < 0.05, effect size: %s).\n\n",
			comp.Winner, comp.Loser(), comp.EffectSize.Interpretation)
		return
	}
	fmt.Fprintf(r.w, "No statistically significant difference between %s and %s (p >= 0.05).\n\n", comp.Baseline, comp.Candidate)
}

// WriteEquivalence writes the functional equivalence check result.
func (r *MarkdownReport) WriteEquivalence(baseline, candidate string, mismatches []load.Mismatch) {
	fmt.Fprintln(r.w, "## Functional Equivalence")
	fmt.Fprintln(r.w)
	if len(mismatches) == 0 {
		fmt.Fprintf(r.w, "%s and %s agree on every probe.\n\n", baseline, candidate)
		return
	}
	fmt.Fprintf(r.w, "%s and %s disagree on %d probe(s):\n\n", baseline, candidate, len(mismatches))
	for _, m := range mismatches {
		fmt.Fprintf(r.w, "- %s\n", m)
	}
	fmt.Fprintln(r.w)
}

// WriteAnalysis writes a hot-path analysis report as a preformatted block.
func (r *MarkdownReport) WriteAnalysis(strategy string, an hotpath.Analysis, report string) {
	fmt.Fprintf(r.w, "## Hot Path Analysis: %s\n\n", strategy)
	fmt.Fprintf(r.w, "- **Hottest method:** %s\n", an.HottestMethod)
	fmt.Fprintf(r.w, "- **File I/O share:** %.1f%%\n", an.FileIOTimeSharePercent)
	fmt.Fprintf(r.w, "- **String ops share:** %.1f%%\n", an.StringOpsTimeSharePercent)
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "```")
	fmt.Fprint(r.w, strings.TrimRight(report, "\n"))
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

// WriteDistributionChart writes an ASCII latency histogram.
func (r *MarkdownReport) WriteDistributionChart(name string, ms []float64) {
	fmt.Fprintf(r.w, "### %s Distribution\n\n", name)
	fmt.Fprintln(r.w, "```")

	hist, lo, width := makeHistogram(ms, 10)
	maxCount := 0
	for _, count := range hist {
		if count > maxCount {
			maxCount = count
		}
	}

	const barWidth = 40
	for i, count := range hist {
		barLen := 0
		if maxCount > 0 {
			barLen = count * barWidth / maxCount
		}
		bar := strings.Repeat("█", barLen)
		from := lo + float64(i)*width
		fmt.Fprintf(r.w, "%8.3f-%8.3f ms │ %s %d\n", from, from+width, bar, count)
	}

	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

// makeHistogram buckets data evenly between its min and max. It returns
// the counts, the lower bound and the bucket width.
func makeHistogram(data []float64, buckets int) ([]int, float64, float64) {
	hist := make([]int, buckets)
	if len(data) == 0 {
		return hist, 0, 0
	}

	lo, hi := slices.Min(data), slices.Max(data)
	if hi == lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(buckets)

	for _, v := range data {
		bucket := int((v - lo) / width)
		if bucket >= buckets {
			bucket = buckets - 1
		}
		hist[bucket]++
	}
	return hist, lo, width
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by hotpath bench*")
}
