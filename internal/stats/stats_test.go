package stats

import (
	"math"
	"testing"
)

func TestBasicAggregates(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	if got := Sum(values); got != 10 {
		t.Errorf("Sum() = %v, want 10", got)
	}
	if got := Mean(values); got != 2.5 {
		t.Errorf("Mean() = %v, want 2.5", got)
	}
	if got := Max(values); got != 4 {
		t.Errorf("Max() = %v, want 4", got)
	}
	if got := Median(values); got != 2.5 {
		t.Errorf("Median() = %v, want 2.5", got)
	}
	if got := Median([]float64{5, 1, 3}); got != 3 {
		t.Errorf("Median() of odd length = %v, want 3", got)
	}
	if values[0] != 4 {
		t.Error("Median() must not reorder its input")
	}

	for name, fn := range map[string]func([]float64) float64{"Mean": Mean, "Max": Max, "Median": Median} {
		if got := fn(nil); got != 0 {
			t.Errorf("%s(nil) = %v, want 0", name, got)
		}
	}
}

func TestPositive(t *testing.T) {
	got := Positive([]float64{0, -1, 2.5, math.NaN(), math.Inf(1), 7})
	if len(got) != 2 || got[0] != 2.5 || got[1] != 7 {
		t.Errorf("Positive() = %v, want [2.5 7]", got)
	}
}

func TestClampAndRound(t *testing.T) {
	if got := Clamp(120, 0, 100); got != 100 {
		t.Errorf("Clamp(120) = %v", got)
	}
	if got := Clamp(-3, 0, 100); got != 0 {
		t.Errorf("Clamp(-3) = %v", got)
	}
	if got := Round(3.14159, 2); got != 3.14 {
		t.Errorf("Round(3.14159, 2) = %v", got)
	}
	if got := Round(2.45, 1); got != 2.5 {
		t.Errorf("Round(2.45, 1) = %v", got)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}
	tests := map[float64]float64{0: 10, 25: 20, 50: 30, 90: 46, 100: 50, 150: 50}
	for p, want := range tests {
		if got := Percentile(values, p); math.Abs(got-want) > 1e-9 {
			t.Errorf("Percentile(%v) = %v, want %v", p, got, want)
		}
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile(nil) = %v", got)
	}
}
