// Package analysis compares latency samples collected from lookup strategies.
package analysis

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	hpanalysis "github.com/discochess/hotpath/internal/analysis"
)

// significanceLevel is the p-value below which a difference counts.
const significanceLevel = 0.05

// MannWhitneyResult contains the result of a Mann-Whitney U test.
type MannWhitneyResult struct {
	U           float64 // smaller of the two U statistics
	Z           float64 // normal approximation, tie corrected
	PValue      float64 // two-tailed
	Significant bool    // PValue < 0.05
}

// MannWhitneyU tests whether two latency samples come from different
// distributions. Sub-millisecond timings collide often, so the variance
// of U is corrected for ties.
func MannWhitneyU(a, b []float64) *MannWhitneyResult {
	if len(a) == 0 || len(b) == 0 {
		return &MannWhitneyResult{PValue: 1}
	}
	n1, n2 := float64(len(a)), float64(len(b))

	type obs struct {
		v     float64
		fromA bool
	}
	pooled := make([]obs, 0, len(a)+len(b))
	for _, v := range a {
		pooled = append(pooled, obs{v, true})
	}
	for _, v := range b {
		pooled = append(pooled, obs{v, false})
	}
	slices.SortFunc(pooled, func(x, y obs) int { return cmp.Compare(x.v, y.v) })

	var rankSumA, tieTerm float64
	for lo := 0; lo < len(pooled); {
		hi := lo + 1
		for hi < len(pooled) && pooled[hi].v == pooled[lo].v {
			hi++
		}
		// Ranks lo+1..hi share their average.
		rank := float64(lo+hi+1) / 2
		for _, o := range pooled[lo:hi] {
			if o.fromA {
				rankSumA += rank
			}
		}
		t := float64(hi - lo)
		tieTerm += t*t*t - t
		lo = hi
	}

	uA := rankSumA - n1*(n1+1)/2
	u := math.Min(uA, n1*n2-uA)

	n := n1 + n2
	mu := n1 * n2 / 2
	sigma := math.Sqrt(n1 * n2 / 12 * ((n + 1) - tieTerm/(n*(n-1))))

	res := &MannWhitneyResult{U: u, PValue: 1}
	if sigma > 0 {
		res.Z = (u - mu) / sigma
		res.PValue = 2 * distuv.UnitNormal.CDF(-math.Abs(res.Z))
	}
	res.Significant = res.PValue < significanceLevel
	return res
}

// EffectSize contains effect size metrics.
type EffectSize struct {
	CohensD        float64 // (mean1 - mean2) / pooled standard deviation
	Interpretation string  // negligible, small, medium, large
}

// ComputeEffectSize computes Cohen's d of a over b.
func ComputeEffectSize(a, b []float64) *EffectSize {
	if len(a) == 0 || len(b) == 0 {
		return &EffectSize{Interpretation: "undefined"}
	}

	meanA, varA := meanVariance(a)
	meanB, varB := meanVariance(b)
	n1, n2 := float64(len(a)), float64(len(b))

	var d float64
	if dof := n1 + n2 - 2; dof > 0 {
		if pooled := math.Sqrt(((n1-1)*varA + (n2-1)*varB) / dof); pooled > 0 {
			d = (meanA - meanB) / pooled
		}
	}
	return &EffectSize{CohensD: d, Interpretation: interpretCohensD(math.Abs(d))}
}

// meanVariance is stat.MeanVariance with a zero variance for single
// observations instead of NaN.
func meanVariance(x []float64) (mean, variance float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanVariance(x, nil)
}

func interpretCohensD(d float64) string {
	switch {
	case d < 0.2:
		return "negligible"
	case d < 0.5:
		return "small"
	case d < 0.8:
		return "medium"
	}
	return "large"
}

// BootstrapResult is a bootstrap confidence interval for the mean difference.
type BootstrapResult struct {
	MeanDiff   float64
	LowerBound float64
	UpperBound float64
	Confidence float64 // e.g. 0.95
}

// bootstrapSeed keeps intervals reproducible between runs.
const bootstrapSeed = 0x5eed

// BootstrapConfidenceInterval estimates a percentile bootstrap interval
// for mean(a) - mean(b).
func BootstrapConfidenceInterval(a, b []float64, iterations int, confidence float64) *BootstrapResult {
	res := &BootstrapResult{Confidence: confidence}
	if len(a) == 0 || len(b) == 0 || iterations <= 0 {
		return res
	}
	res.MeanDiff = stat.Mean(a, nil) - stat.Mean(b, nil)

	rng := rand.New(rand.NewPCG(bootstrapSeed, uint64(iterations)))
	bufA := make([]float64, len(a))
	bufB := make([]float64, len(b))
	diffs := make([]float64, iterations)
	for i := range diffs {
		resample(rng, a, bufA)
		resample(rng, b, bufB)
		diffs[i] = stat.Mean(bufA, nil) - stat.Mean(bufB, nil)
	}
	slices.Sort(diffs)

	tail := (1 - confidence) / 2
	res.LowerBound = stat.Quantile(tail, stat.Empirical, diffs, nil)
	res.UpperBound = stat.Quantile(1-tail, stat.Empirical, diffs, nil)
	return res
}

// resample fills dst with draws from sample, with replacement.
func resample(rng *rand.Rand, sample, dst []float64) {
	for i := range dst {
		dst[i] = sample[rng.IntN(len(sample))]
	}
}

// DescriptiveStats summarises one latency sample.
type DescriptiveStats struct {
	N      int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	P25    float64
	P75    float64
	P90    float64
	P99    float64
}

var describedPercentiles = []float64{0, 25, 50, 75, 90, 99, 100}

// Describe computes descriptive statistics for a sample. Percentiles
// interpolate between closest ranks, as in the hot-path reports.
func Describe(sample []float64) *DescriptiveStats {
	ps, err := hpanalysis.Percentiles(sample, describedPercentiles...)
	if err != nil {
		return &DescriptiveStats{}
	}
	mean, variance := meanVariance(sample)
	return &DescriptiveStats{
		N:      len(sample),
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Min:    ps[0],
		P25:    ps[1],
		Median: ps[2],
		P75:    ps[3],
		P90:    ps[4],
		P99:    ps[5],
		Max:    ps[6],
	}
}
