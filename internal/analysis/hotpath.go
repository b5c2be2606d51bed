package analysis

import (
	"sort"
	"time"

	"github.com/discochess/hotpath/internal/registry"
)

// UnknownMethod is reported as the hottest method when nothing was recorded.
const UnknownMethod = "unknown"

// Heuristics holds the fixed costs used to approximate the share of time
// spent on string comparisons. The defaults are illustrative, not
// calibrated; replace them with measured values when available.
type Heuristics struct {
	// ComparisonCost is the assumed cost of one string comparison.
	ComparisonCost time.Duration

	// RequestBaseline is the assumed total cost of one request.
	RequestBaseline time.Duration
}

// DefaultHeuristics assumes 5ns per comparison and 1ms per request.
var DefaultHeuristics = Heuristics{
	ComparisonCost:  5 * time.Nanosecond,
	RequestBaseline: time.Millisecond,
}

// MethodImpact is a method's aggregate cost: average duration times calls.
type MethodImpact struct {
	Name     string  `json:"name"`
	ImpactMs float64 `json:"impact_ms"`
}

// HotPathAnalysis is the derived view of one report.
type HotPathAnalysis struct {
	HottestMethod string `json:"hottest_method"`

	// Impacts lists every method in first-recorded order.
	Impacts []MethodImpact `json:"impacts"`

	FileIOTimeSharePercent    float64 `json:"file_io_time_share_percent"`
	StringOpsTimeSharePercent float64 `json:"string_ops_time_share_percent"`

	Recommendations []Recommendation `json:"recommendations"`
}

// ImpactByMethod returns impact in milliseconds keyed by method name.
func (a HotPathAnalysis) ImpactByMethod() map[string]float64 {
	out := make(map[string]float64, len(a.Impacts))
	for _, m := range a.Impacts {
		out[m.Name] = m.ImpactMs
	}
	return out
}

// ImpactsDescending returns the impacts sorted by impact, highest first.
// Equal impacts keep first-recorded order.
func (a HotPathAnalysis) ImpactsDescending() []MethodImpact {
	sorted := make([]MethodImpact, len(a.Impacts))
	copy(sorted, a.Impacts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ImpactMs > sorted[j].ImpactMs
	})
	return sorted
}

// Analyzer turns registry reports into hot-path analyses.
// An Analyzer holds only configuration and is safe for concurrent use.
type Analyzer struct {
	heuristics   Heuristics
	hotPathRatio float64
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithHeuristics replaces the string-ops cost heuristic.
func WithHeuristics(h Heuristics) Option {
	return func(a *Analyzer) {
		a.heuristics = h
	}
}

// WithHotPathRatio sets the endpoint traffic ratio above which the dominant
// endpoint is flagged. Default is 10.
func WithHotPathRatio(ratio float64) Option {
	return func(a *Analyzer) {
		if ratio > 0 {
			a.hotPathRatio = ratio
		}
	}
}

// NewAnalyzer creates an Analyzer with the given options.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		heuristics:   DefaultHeuristics,
		hotPathRatio: 10,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze ranks methods by impact, derives time shares and evaluates every
// recommendation rule. It is deterministic for a given report.
func (a *Analyzer) Analyze(rep registry.Report) HotPathAnalysis {
	out := HotPathAnalysis{
		HottestMethod: UnknownMethod,
		Impacts:       make([]MethodImpact, 0, len(rep.Methods)),
	}

	var best float64
	var totalAvgMs float64
	for i, m := range rep.Methods {
		impact := m.AverageMs * float64(m.Calls)
		out.Impacts = append(out.Impacts, MethodImpact{Name: m.Name, ImpactMs: impact})
		// Strict comparison keeps the first-recorded method on ties.
		if i == 0 || impact > best {
			best = impact
			out.HottestMethod = m.Name
		}
		totalAvgMs += m.AverageMs
	}

	if totalAvgMs > 0 {
		out.FileIOTimeSharePercent = rep.FileOpenTimeMs / totalAvgMs * 100
	}
	out.StringOpsTimeSharePercent = a.stringOpsShare(rep)
	out.Recommendations = a.recommend(rep)

	return out
}

func (a *Analyzer) stringOpsShare(rep registry.Report) float64 {
	if rep.TotalRequests == 0 || a.heuristics.RequestBaseline <= 0 {
		return 0
	}
	estimated := float64(rep.StringComparisons) * float64(a.heuristics.ComparisonCost)
	budget := float64(rep.TotalRequests) * float64(a.heuristics.RequestBaseline)
	return estimated / budget * 100
}
