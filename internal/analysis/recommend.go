package analysis

import (
	"fmt"
	"strings"

	"github.com/discochess/hotpath/internal/registry"
)

// Severity grades a recommendation.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityModerate Severity = "MODERATE"
	SeverityInfo     Severity = "INFO"
	SeverityHotPath  Severity = "HOT-PATH"
	SeverityOK       Severity = "OK"
)

// Rule identifies which check produced a recommendation.
type Rule string

const (
	RuleRedundantReads    Rule = "redundant-reads"
	RuleLinearComparisons Rule = "linear-comparisons"
	RuleMemoryFootprint   Rule = "memory-footprint"
	RuleDominantEndpoint  Rule = "dominant-endpoint"
	RuleNoIssues          Rule = "no-issues"
)

// Recommendation is one finding of the rule engine.
type Recommendation struct {
	Rule     Rule     `json:"rule"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Details  []string `json:"details,omitempty"`
}

// String renders the recommendation as an indented block.
func (r Recommendation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", r.Severity, r.Title)
	for _, d := range r.Details {
		fmt.Fprintf(&b, "   %s\n", d)
	}
	return b.String()
}

// recommend evaluates every rule independently; all applicable rules fire.
func (a *Analyzer) recommend(rep registry.Report) []Recommendation {
	var recs []Recommendation

	if rep.FileReads > rep.TotalRequests {
		recs = append(recs, Recommendation{
			Rule:     RuleRedundantReads,
			Severity: SeverityCritical,
			Title:    "File is being read multiple times per request!",
			Details: []string{
				"Recommendation: Cache the dictionary in memory behind a set-like index",
				"Expected improvement: 90-99% reduction in response time",
			},
		})
	}

	if float64(rep.StringComparisons) > 0.8*float64(rep.LinesScanned) {
		recs = append(recs, Recommendation{
			Rule:     RuleLinearComparisons,
			Severity: SeverityModerate,
			Title:    "High number of string comparisons detected",
			Details: []string{
				"Recommendation: Use an indexed O(1) lookup instead of a linear search",
				"Expected improvement: 95-99% reduction in lookup time",
			},
		})
	}

	if rep.MemoryUsedBytes > 0 {
		recs = append(recs, Recommendation{
			Rule:     RuleMemoryFootprint,
			Severity: SeverityInfo,
			Title:    "Consider memory usage patterns",
			Details: []string{
				fmt.Sprintf("Current memory usage: %d bytes", rep.MemoryUsedBytes),
				"Recommendation: Monitor memory usage with the caching solution",
			},
		})
	}

	if rec, ok := a.dominantEndpoint(rep); ok {
		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Rule:     RuleNoIssues,
			Severity: SeverityOK,
			Title:    "No critical performance issues detected.",
		})
	}

	return recs
}

// dominantEndpoint flags the busiest endpoint when its traffic exceeds the
// quietest tracked endpoint's by more than the configured ratio.
// Needs at least two tracked endpoints.
func (a *Analyzer) dominantEndpoint(rep registry.Report) (Recommendation, bool) {
	if len(rep.Endpoints) < 2 {
		return Recommendation{}, false
	}

	busiest, quietest := rep.Endpoints[0], rep.Endpoints[0]
	for _, e := range rep.Endpoints[1:] {
		if e.Calls > busiest.Calls {
			busiest = e
		}
		if e.Calls < quietest.Calls {
			quietest = e
		}
	}

	if float64(busiest.Calls) <= a.hotPathRatio*float64(quietest.Calls) {
		return Recommendation{}, false
	}

	traffic := fmt.Sprintf("Traffic ratio: %d vs %d requests (%s)", busiest.Calls, quietest.Calls, quietest.Name)
	if quietest.Calls > 0 {
		traffic += fmt.Sprintf(", %.1fx", float64(busiest.Calls)/float64(quietest.Calls))
	}

	return Recommendation{
		Rule:     RuleDominantEndpoint,
		Severity: SeverityHotPath,
		Title:    fmt.Sprintf("Hot path identified: %s endpoint", routePath(busiest.Name)),
		Details: []string{
			traffic,
			"Priority: HIGH - This endpoint needs immediate optimization",
		},
	}, true
}

// routePath renders an endpoint name as a URL path, keeping names that
// are already paths as given.
func routePath(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}
