package analysis

import (
	"math"
	"testing"
)

var (
	fast    = []float64{1, 2, 3, 4, 5}
	slow    = []float64{10, 11, 12, 13, 14}
	shifted = []float64{4, 5, 6, 7, 8}
)

func TestMannWhitneyU(t *testing.T) {
	tests := []struct {
		name  string
		a, b  []float64
		wantU float64
		signf bool
	}{
		{"identical", fast, fast, 12.5, false},
		{"disjoint", fast, slow, 0, true},
		{"overlapping", []float64{3, 4, 5, 6, 7}, shifted, 8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MannWhitneyU(tt.a, tt.b)
			if got.U != tt.wantU {
				t.Errorf("U = %v, want %v", got.U, tt.wantU)
			}
			if got.Significant != tt.signf {
				t.Errorf("Significant = %v, want %v (p=%f)", got.Significant, tt.signf, got.PValue)
			}
		})
	}
}

func TestMannWhitneyU_Ties(t *testing.T) {
	// Heavy ties shrink the variance of U, so the corrected |Z| must be
	// larger than the uncorrected one.
	a := []float64{1, 1, 1, 1, 2, 2}
	b := []float64{2, 2, 3, 3, 3, 3}

	got := MannWhitneyU(a, b)

	n1, n2 := 6.0, 6.0
	plain := (got.U - n1*n2/2) / math.Sqrt(n1*n2*(n1+n2+1)/12)
	if math.Abs(got.Z) <= math.Abs(plain) {
		t.Errorf("|Z| = %f, want more than uncorrected %f", math.Abs(got.Z), math.Abs(plain))
	}
	if !got.Significant {
		t.Errorf("Significant = false (p=%f)", got.PValue)
	}
}

func TestMannWhitneyU_Empty(t *testing.T) {
	got := MannWhitneyU(nil, fast)
	if got.U != 0 || got.PValue != 1 || got.Significant {
		t.Errorf("MannWhitneyU(empty) = %+v", got)
	}
}

func TestComputeEffectSize(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want string
	}{
		{"large", fast, slow, "large"},
		{"negligible", []float64{5, 5, 5, 5, 5}, []float64{5.1, 5, 4.9, 5, 5}, "negligible"},
		{"constant", []float64{2, 2}, []float64{2, 2}, "negligible"},
		{"empty", nil, fast, "undefined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEffectSize(tt.a, tt.b)
			if got.Interpretation != tt.want {
				t.Errorf("Interpretation = %s, want %s (d=%f)", got.Interpretation, tt.want, got.CohensD)
			}
		})
	}

	if d := ComputeEffectSize(fast, slow).CohensD; d >= 0 {
		t.Errorf("CohensD(fast, slow) = %f, want negative", d)
	}
}

func TestDescribe(t *testing.T) {
	got := Describe([]float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1})

	checks := []struct {
		name      string
		got, want float64
	}{
		{"Mean", got.Mean, 5.5},
		{"Min", got.Min, 1},
		{"Max", got.Max, 10},
		{"Median", got.Median, 5.5},
		{"P25", got.P25, 3.25},
		{"P90", got.P90, 9.1},
		{"StdDev", got.StdDev, math.Sqrt(55.0 / 6)},
	}
	if got.N != 10 {
		t.Errorf("N = %d, want 10", got.N)
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %f, want %f", c.name, c.got, c.want)
		}
	}
}

func TestDescribe_Small(t *testing.T) {
	if got := Describe(nil); got.N != 0 {
		t.Errorf("Describe(nil).N = %d, want 0", got.N)
	}
	got := Describe([]float64{3})
	if got.N != 1 || got.Mean != 3 || got.StdDev != 0 || got.P99 != 3 {
		t.Errorf("Describe([3]) = %+v", got)
	}
}

func TestBootstrapConfidenceInterval(t *testing.T) {
	got := BootstrapConfidenceInterval(fast, slow, 2000, 0.95)

	if got.MeanDiff != -9 {
		t.Errorf("MeanDiff = %f, want -9", got.MeanDiff)
	}
	if got.LowerBound > got.MeanDiff || got.UpperBound < got.MeanDiff {
		t.Errorf("CI [%f, %f] excludes %f", got.LowerBound, got.UpperBound, got.MeanDiff)
	}
	// Disjoint samples: every resampled difference is negative.
	if got.UpperBound >= 0 {
		t.Errorf("UpperBound = %f, want negative", got.UpperBound)
	}

	if again := BootstrapConfidenceInterval(fast, slow, 2000, 0.95); *again != *got {
		t.Errorf("not reproducible: %+v vs %+v", again, got)
	}
	if empty := BootstrapConfidenceInterval(nil, slow, 100, 0.9); empty.Confidence != 0.9 || empty.MeanDiff != 0 {
		t.Errorf("BootstrapConfidenceInterval(empty) = %+v", empty)
	}
}
