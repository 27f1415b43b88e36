package ladder

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-ladder/dsp/ladder/numeric"
	"github.com/cwbudde/algo-ladder/internal/testutil"
)

func TestNewZDFVec4Validation(t *testing.T) {
	if _, err := NewZDFVec4(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestZDFVec4MatchesScalar(t *testing.T) {
	scalar, err := NewZDF(48000, WithCutoffHz(2000), WithResonance(0.6))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	vec, err := NewZDFVec4(48000, WithCutoffHz(2000), WithResonance(0.6))
	if err != nil {
		t.Fatalf("NewZDFVec4() error = %v", err)
	}

	in := testutil.DeterministicSine(440, 48000, 0.8, 512)

	for i, x := range in {
		want := scalar.ProcessSample(x)
		got := vec.ProcessSample(numeric.Splat(float32(x)))

		for lane := range numeric.Lanes {
			if d := math.Abs(float64(got[lane]) - want); d > 1e-4 {
				t.Fatalf("sample %d lane %d: got %g, want %g (diff %g)",
					i, lane, got[lane], want, d)
			}
		}
	}
}

func TestZDFVec4PerLaneCutoff(t *testing.T) {
	vec, err := NewZDFVec4(48000, WithResonance(0))
	if err != nil {
		t.Fatalf("NewZDFVec4() error = %v", err)
	}

	cutoffs := [numeric.Lanes]float64{200, 1000, 4000, 12000}
	for lane, hz := range cutoffs {
		vec.SetLaneCutoffHz(lane, hz)
	}

	for lane, hz := range cutoffs {
		if got := vec.LaneCutoffHz(lane); got != hz {
			t.Fatalf("lane %d cutoff = %v, want %v", lane, got, hz)
		}
	}

	// a short impulse response accumulates more energy in lanes with a
	// wider passband, so RMS must rise monotonically with lane cutoff
	var energy [numeric.Lanes]float64

	for i := range 1024 {
		var x float32
		if i == 0 {
			x = 1
		}

		out := vec.ProcessSample(numeric.Splat(x))
		for lane := range numeric.Lanes {
			energy[lane] += float64(out[lane]) * float64(out[lane])
		}
	}

	for lane := 1; lane < numeric.Lanes; lane++ {
		if energy[lane] <= energy[lane-1] {
			t.Fatalf("lane %d energy %g not above lane %d energy %g",
				lane, energy[lane], lane-1, energy[lane-1])
		}
	}
}

func TestZDFVec4PerLaneResonance(t *testing.T) {
	vec, err := NewZDFVec4(48000, WithCutoffHz(1000))
	if err != nil {
		t.Fatalf("NewZDFVec4() error = %v", err)
	}

	vec.SetLaneResonance(0, 0)
	vec.SetLaneResonance(3, 0.95)

	if got := vec.LaneResonance(0); got != 0 {
		t.Fatalf("lane 0 resonance = %v, want 0", got)
	}

	if got := vec.LaneResonance(3); got != 0.95 {
		t.Fatalf("lane 3 resonance = %v, want 0.95", got)
	}

	// out-of-range lanes are ignored
	vec.SetLaneResonance(-1, 1)
	vec.SetLaneResonance(numeric.Lanes, 1)

	if got := vec.LaneResonance(-1); got != 0 {
		t.Fatalf("invalid lane read = %v, want 0", got)
	}
}

func TestZDFVec4SanitizesLanes(t *testing.T) {
	vec, err := NewZDFVec4(48000)
	if err != nil {
		t.Fatalf("NewZDFVec4() error = %v", err)
	}

	in := numeric.V4{float32(math.NaN()), float32(math.Inf(1)), 0.5, -0.5}
	out := vec.ProcessSample(in)

	for lane := range numeric.Lanes {
		v := float64(out[lane])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("lane %d leaked non-finite value %v", lane, v)
		}
	}
}

func TestZDFVec4ModeFallback(t *testing.T) {
	vec, err := NewZDFVec4(48000, WithMode(ModeHP24))
	if err != nil {
		t.Fatalf("NewZDFVec4() error = %v", err)
	}

	vec.SetMode(Mode(-1))

	if got := vec.Mode(); got != ModeHP24 {
		t.Fatalf("invalid mode replaced previous: got %v", got)
	}
}

func TestZDFVec4SelfOscillationBounded(t *testing.T) {
	vec, err := NewZDFVec4(48000, WithCutoffHz(1000), WithResonance(1))
	if err != nil {
		t.Fatalf("NewZDFVec4() error = %v", err)
	}

	for i := range 100000 {
		var x float32
		if i == 0 {
			x = 1
		}

		out := vec.ProcessSample(numeric.Splat(x))
		for lane := range numeric.Lanes {
			v := float64(out[lane])
			if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 100 {
				t.Fatalf("lane %d diverged at sample %d: %v", lane, i, v)
			}
		}
	}
}

func TestZDFVec4ResetDeterminism(t *testing.T) {
	vec, err := NewZDFVec4(48000, WithCutoffHz(3000), WithResonance(0.8))
	if err != nil {
		t.Fatalf("NewZDFVec4() error = %v", err)
	}

	in := testutil.DeterministicNoise(9, 0.7, 256)

	first := make([]numeric.V4, len(in))
	for i, x := range in {
		first[i] = vec.ProcessSample(numeric.Splat(float32(x)))
	}

	vec.Reset()

	for i, x := range in {
		got := vec.ProcessSample(numeric.Splat(float32(x)))
		if got != first[i] {
			t.Fatalf("sample %d differs after reset", i)
		}
	}
}
