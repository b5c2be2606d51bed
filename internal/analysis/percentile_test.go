package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"median of five", []float64{10, 20, 30, 40, 50}, 50, 30},
		{"unsorted input", []float64{50, 10, 40, 20, 30}, 50, 30},
		{"p0 is min", []float64{7, 3, 9, 1}, 0, 1},
		{"p100 is max", []float64{7, 3, 9, 1}, 100, 9},
		{"negative p is min", []float64{7, 3, 9, 1}, -5, 1},
		{"p above 100 is max", []float64{7, 3, 9, 1}, 150, 9},
		{"interpolated p25", []float64{10, 20, 30, 40}, 25, 17.5},
		{"interpolated p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 90, 9.1},
		{"singleton any p", []float64{42}, 73, 42},
		{"duplicates", []float64{5, 5, 5, 5}, 60, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Percentile(tt.values, tt.p)
			if err != nil {
				t.Fatalf("Percentile() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentile_Empty(t *testing.T) {
	_, err := Percentile(nil, 50)
	if !errors.Is(err, ErrEmptySample) {
		t.Errorf("Percentile(nil) error = %v, want ErrEmptySample", err)
	}
}

func TestPercentile_NaN(t *testing.T) {
	_, err := Percentile([]float64{1, 2}, math.NaN())
	if !errors.Is(err, ErrInvalidPercentile) {
		t.Errorf("Percentile(NaN) error = %v, want ErrInvalidPercentile", err)
	}
}

func TestPercentile_DoesNotModifyInput(t *testing.T) {
	values := []float64{3, 1, 2}
	if _, err := Percentile(values, 50); err != nil {
		t.Fatal(err)
	}
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input mutated: %v", values)
	}
}

func TestPercentile_IdempotentOnSortedSingleton(t *testing.T) {
	values := []float64{8}
	first, _ := Percentile(values, 50)
	second, _ := Percentile([]float64{first}, 50)
	if first != second || first != 8 {
		t.Errorf("got %v then %v, want 8 both times", first, second)
	}
}

func TestPercentiles(t *testing.T) {
	got, err := Percentiles([]float64{50, 40, 30, 20, 10}, 0, 50, 100)
	if err != nil {
		t.Fatalf("Percentiles() error = %v", err)
	}
	want := []float64{10, 30, 50}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Percentiles()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := Percentiles(nil, 50); !errors.Is(err, ErrEmptySample) {
		t.Errorf("Percentiles(nil) error = %v, want ErrEmptySample", err)
	}
}
