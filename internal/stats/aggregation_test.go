package stats

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5}, 5},
		{"several", []float64{100, 150, 200}, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.values); got != tt.want {
				t.Errorf("Mean() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestVariance(t *testing.T) {
	if got := Variance([]float64{5}); got != 0 {
		t.Errorf("Variance of one sample = %f, want 0", got)
	}

	got := Variance([]float64{100, 200})
	if math.Abs(got-5000) > 0.001 {
		t.Errorf("Variance(100, 200) = %f, want 5000", got)
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if got := CoefficientOfVariation([]float64{100, 100, 100}); got != 0 {
		t.Errorf("CV of identical samples = %f, want 0", got)
	}

	spread := CoefficientOfVariation([]float64{50, 150})
	tight := CoefficientOfVariation([]float64{95, 105})
	if spread <= tight {
		t.Errorf("expected wider spread to score higher CV: %f vs %f", spread, tight)
	}
}

func TestMedian(t *testing.T) {
	if got := Median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("Median odd = %f, want 2", got)
	}
	if got := Median([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("Median even = %f, want 2.5", got)
	}

	// Median must not mutate its input
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 {
		t.Error("Median mutated its input slice")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{-1, 0, 5, 0},
		{6, 0, 5, 5},
		{3, 0, 5, 3},
	}

	for _, tt := range tests {
		if got := Clamp(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("Clamp(%f) = %f, want %f", tt.v, got, tt.want)
		}
	}
}
