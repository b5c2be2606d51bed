package analysis

import (
	"fmt"
	"strings"

	"github.com/discochess/hotpath/benchmark/load"
)

// Tie is the winner reported when neither side is faster.
const Tie = "tie"

// Comparison is the statistical comparison of one endpoint's latencies
// between a baseline strategy and a candidate.
type Comparison struct {
	Endpoint       string
	Baseline       string
	Candidate      string
	BaselineStats  *DescriptiveStats
	CandidateStats *DescriptiveStats
	MannWhitney    *MannWhitneyResult
	EffectSize     *EffectSize
	BootstrapCI    *BootstrapResult // baseline minus candidate, in ms

	// Speedup is the baseline mean over the candidate mean; above 1 the
	// candidate is faster.
	Speedup float64
	// Winner is the strategy with the lower mean, or Tie.
	Winner string
	// Confident reports that the difference is statistically significant.
	Confident bool
}

// Loser returns the strategy that is not the winner, or Tie.
func (c *Comparison) Loser() string {
	switch c.Winner {
	case c.Baseline:
		return c.Candidate
	case c.Candidate:
		return c.Baseline
	}
	return Tie
}

// Summary renders the comparison as an indented text block.
func (c *Comparison) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s vs %s (%s):\n", c.Baseline, c.Candidate, c.Endpoint)
	for _, side := range []struct {
		name string
		s    *DescriptiveStats
	}{{c.Baseline, c.BaselineStats}, {c.Candidate, c.CandidateStats}} {
		fmt.Fprintf(&b, "  %s: n=%d mean=%.3fms p50=%.3fms p99=%.3fms\n",
			side.name, side.s.N, side.s.Mean, side.s.Median, side.s.P99)
	}

	diff := c.BaselineStats.Mean - c.CandidateStats.Mean
	fmt.Fprintf(&b, "  Difference: %.3fms", diff)
	if c.CandidateStats.Mean > 0 {
		fmt.Fprintf(&b, " (%.1f%% of %s), speedup %.1fx", diff/c.CandidateStats.Mean*100, c.Candidate, c.Speedup)
	}
	fmt.Fprintf(&b, "\n  %.0f%% CI: [%.3f, %.3f]ms\n",
		c.BootstrapCI.Confidence*100, c.BootstrapCI.LowerBound, c.BootstrapCI.UpperBound)
	fmt.Fprintf(&b, "  Effect size: %.2f (%s)\n", c.EffectSize.CohensD, c.EffectSize.Interpretation)

	verdict := "not statistically significant"
	if c.MannWhitney.Significant {
		verdict = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}
	fmt.Fprintf(&b, "  Result: %s, %s", c.Winner, verdict)
	return b.String()
}

// Comparer runs comparisons with fixed bootstrap settings.
type Comparer struct {
	iterations int
	confidence float64
}

// ComparerOption configures a Comparer.
type ComparerOption func(*Comparer)

// WithBootstrapIterations sets the number of bootstrap resamples.
// Default 10000.
func WithBootstrapIterations(n int) ComparerOption {
	return func(c *Comparer) {
		if n > 0 {
			c.iterations = n
		}
	}
}

// WithConfidence sets the confidence level of the bootstrap interval.
// Default 0.95.
func WithConfidence(level float64) ComparerOption {
	return func(c *Comparer) {
		if level > 0 && level < 1 {
			c.confidence = level
		}
	}
}

// NewComparer returns a Comparer with the given options applied.
func NewComparer(opts ...ComparerOption) *Comparer {
	c := &Comparer{iterations: 10000, confidence: 0.95}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Results compares the endpoint latencies of two traffic runs.
func (c *Comparer) Results(baseline, candidate *load.Result, endpoint string) *Comparison {
	return c.Samples(endpoint,
		baseline.Strategy, baseline.LatenciesMs(endpoint),
		candidate.Strategy, candidate.LatenciesMs(endpoint),
	)
}

// Samples compares two latency samples in milliseconds. An empty sample
// on either side is a tie.
func (c *Comparer) Samples(endpoint, baseName string, base []float64, candName string, cand []float64) *Comparison {
	out := &Comparison{
		Endpoint:       endpoint,
		Baseline:       baseName,
		Candidate:      candName,
		BaselineStats:  Describe(base),
		CandidateStats: Describe(cand),
		MannWhitney:    MannWhitneyU(base, cand),
		EffectSize:     ComputeEffectSize(base, cand),
		BootstrapCI:    BootstrapConfidenceInterval(base, cand, c.iterations, c.confidence),
		Winner:         Tie,
	}

	bm, cm := out.BaselineStats.Mean, out.CandidateStats.Mean
	if cm > 0 {
		out.Speedup = bm / cm
	}
	if len(base) == 0 || len(cand) == 0 || bm == cm {
		return out
	}
	out.Winner = baseName
	if cm < bm {
		out.Winner = candName
	}
	out.Confident = out.MannWhitney.Significant
	return out
}

// Baseline compares every other run against the run named baseline.
// It returns nil when no run carries that name.
func (c *Comparer) Baseline(results []*load.Result, baseline, endpoint string) []*Comparison {
	idx := -1
	for i, r := range results {
		if r.Strategy == baseline {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	out := make([]*Comparison, 0, len(results)-1)
	for i, r := range results {
		if i != idx {
			out = append(out, c.Results(results[idx], r, endpoint))
		}
	}
	return out
}
