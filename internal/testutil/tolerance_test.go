package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	d, err := MaxAbsDiff([]float64{1, 2, 3}, []float64{1, 2.5, 3})
	if err != nil {
		t.Fatal(err)
	}
	if d != 0.5 {
		t.Fatalf("MaxAbsDiff = %v, want 0.5", d)
	}

	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v, want 0", got)
	}

	s := DeterministicSine(1000, 48000, 1.0, 48000)
	if got := RMS(s); math.Abs(got-1/math.Sqrt2) > 1e-3 {
		t.Fatalf("sine RMS = %v, want about 0.707", got)
	}
}

func TestPeakAbs(t *testing.T) {
	if got := PeakAbs([]float64{0.1, -0.9, 0.5}); got != 0.9 {
		t.Fatalf("PeakAbs = %v, want 0.9", got)
	}
}
