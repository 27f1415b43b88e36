package ladder

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-ladder/internal/testutil"
	"github.com/cwbudde/algo-ladder/measure/response"
)

func TestNewZDFValidation(t *testing.T) {
	if _, err := NewZDF(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	if _, err := NewZDF(-48000); err == nil {
		t.Fatal("expected error for negative sample rate")
	}

	if _, err := NewZDF(math.NaN()); err == nil {
		t.Fatal("expected error for NaN sample rate")
	}
}

func TestZDFSettersClamp(t *testing.T) {
	f, err := NewZDF(48000)
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	f.SetCutoffHz(1e9)
	if got := f.CutoffHz(); got != 0.45*48000 {
		t.Fatalf("CutoffHz = %v, want %v", got, 0.45*48000)
	}

	f.SetCutoffHz(1)
	if got := f.CutoffHz(); got != 20 {
		t.Fatalf("CutoffHz = %v, want 20", got)
	}

	f.SetResonance(7)
	if got := f.Resonance(); got != 1 {
		t.Fatalf("Resonance = %v, want 1", got)
	}

	f.SetResonance(-3)
	if got := f.Resonance(); got != 0 {
		t.Fatalf("Resonance = %v, want 0", got)
	}

	f.SetDrive(2)
	if got := f.Drive(); got != 1 {
		t.Fatalf("Drive = %v, want 1", got)
	}
}

func TestZDFClampIdempotent(t *testing.T) {
	f, err := NewZDF(48000)
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	f.SetCutoffHz(1e9)
	once := f.CutoffHz()
	f.SetCutoffHz(once)

	if got := f.CutoffHz(); got != once {
		t.Fatalf("re-setting a clamped value moved it: %v -> %v", once, got)
	}
}

func TestZDFSettersIgnoreNonFinite(t *testing.T) {
	f, err := NewZDF(48000, WithCutoffHz(2000), WithResonance(0.5))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	f.SetCutoffHz(math.NaN())
	f.SetResonance(math.Inf(1))
	f.SetDrive(math.NaN())

	if f.CutoffHz() != 2000 || f.Resonance() != 0.5 || f.Drive() != 0 {
		t.Fatalf("non-finite setter changed parameters: %v %v %v",
			f.CutoffHz(), f.Resonance(), f.Drive())
	}
}

func TestZDFModeFallback(t *testing.T) {
	f, err := NewZDF(48000, WithMode(ModeBP12))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	f.SetMode(Mode(99))

	if got := f.Mode(); got != ModeBP12 {
		t.Fatalf("invalid mode replaced previous: got %v, want %v", got, ModeBP12)
	}
}

func TestZDFDCGainUnity(t *testing.T) {
	f, err := NewZDF(48000, WithCutoffHz(1000), WithResonance(0))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	var out float64
	for range 48000 {
		out = f.ProcessSample(1)
	}

	if math.Abs(out-1) > 1e-6 {
		t.Fatalf("DC gain = %v, want 1", out)
	}
}

func TestZDFDCGainWithResonance(t *testing.T) {
	// with feedback gain k the DC gain settles to 1/(1+k)
	f, err := NewZDF(48000, WithCutoffHz(1000), WithResonance(0.5))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	var out float64
	for range 48000 {
		out = f.ProcessSample(1)
	}

	want := 1.0 / 3.0
	if math.Abs(out-want) > 1e-6 {
		t.Fatalf("DC gain = %v, want %v", out, want)
	}
}

func TestZDFCutoffAccuracy(t *testing.T) {
	const (
		sampleRate = 48000.0
		cutoff     = 1000.0
	)

	f, err := NewZDF(sampleRate, WithCutoffHz(cutoff), WithResonance(0))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	ir := testutil.Impulse(16384, 0)
	f.ProcessInPlace(ir)

	// four cascaded one-pole sections each contribute -3.01 dB at fc
	db, err := response.GainDBAtHz(ir, cutoff, sampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(db+12.04) > 0.5 {
		t.Fatalf("gain at cutoff = %.3f dB, want about -12.04 dB", db)
	}

	passband, err := response.GainDBAtHz(ir, 100, sampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(passband) > 0.2 {
		t.Fatalf("passband gain = %.3f dB, want about 0 dB", passband)
	}
}

func TestZDFRolloffSlope(t *testing.T) {
	const sampleRate = 48000.0

	f, err := NewZDF(sampleRate, WithCutoffHz(500), WithResonance(0))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	ir := testutil.Impulse(16384, 0)
	f.ProcessInPlace(ir)

	oneOctave, err := response.GainDBAtHz(ir, 4000, sampleRate)
	if err != nil {
		t.Fatal(err)
	}

	twoOctaves, err := response.GainDBAtHz(ir, 8000, sampleRate)
	if err != nil {
		t.Fatal(err)
	}

	// well above cutoff the slope approaches 24 dB per octave
	slope := oneOctave - twoOctaves
	if slope < 20 || slope > 28 {
		t.Fatalf("rolloff slope = %.2f dB/octave, want about 24", slope)
	}
}

func TestZDFHighpassResponse(t *testing.T) {
	const sampleRate = 48000.0

	f, err := NewZDF(sampleRate, WithCutoffHz(1000), WithResonance(0), WithMode(ModeHP24))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	// DC is fully rejected
	var out float64
	for range 48000 {
		out = f.ProcessSample(1)
	}

	if math.Abs(out) > 1e-6 {
		t.Fatalf("HP24 DC output = %v, want 0", out)
	}

	f.Reset()

	ir := testutil.Impulse(16384, 0)
	f.ProcessInPlace(ir)

	high, err := response.GainDBAtHz(ir, 20000, sampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(high) > 0.5 {
		t.Fatalf("HP24 gain at 20 kHz = %.3f dB, want about 0 dB", high)
	}
}

func TestZDFBandpassRejectsDC(t *testing.T) {
	f, err := NewZDF(48000, WithCutoffHz(1000), WithResonance(0), WithMode(ModeBP12))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	var out float64
	for range 48000 {
		out = f.ProcessSample(1)
	}

	if math.Abs(out) > 1e-6 {
		t.Fatalf("BP12 DC output = %v, want 0", out)
	}
}

func TestZDFSelfOscillation(t *testing.T) {
	const (
		sampleRate = 48000.0
		cutoff     = 1000.0
	)

	f, err := NewZDF(sampleRate, WithCutoffHz(cutoff), WithResonance(1))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	out := testutil.Impulse(16384, 0)
	f.ProcessInPlace(out)

	testutil.RequireFinite(t, out)

	if peak := testutil.PeakAbs(out); peak > 100 {
		t.Fatalf("self-oscillation diverged: peak %v", peak)
	}

	// the loop rings at the cutoff frequency
	tail := out[8192:]

	freq, err := response.DominantFrequencyHz(tail, sampleRate)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(freq-cutoff) > cutoff*0.05 {
		t.Fatalf("oscillation at %.1f Hz, want about %.1f Hz", freq, cutoff)
	}

	// amplitude must stay bounded far past the analysis window
	rest := make([]float64, 200000)
	f.ProcessInPlace(rest)

	testutil.RequireFinite(t, rest)

	if peak := testutil.PeakAbs(rest); peak > 100 {
		t.Fatalf("oscillation grew unbounded: peak %v after %d samples", peak, len(rest))
	}
}

func TestZDFLongRunStability(t *testing.T) {
	f, err := NewZDF(48000, WithCutoffHz(8000), WithResonance(0.95), WithDrive(0.8))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	in := testutil.DeterministicNoise(7, 1.0, 100000)
	f.ProcessInPlace(in)

	testutil.RequireFinite(t, in)
}

func TestZDFSanitizesInput(t *testing.T) {
	f, err := NewZDF(48000)
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	y := f.ProcessSample(math.NaN())
	if math.IsNaN(y) || math.IsInf(y, 0) {
		t.Fatalf("NaN input leaked: %v", y)
	}

	y = f.ProcessSample(math.Inf(1))
	if math.IsNaN(y) || math.IsInf(y, 0) {
		t.Fatalf("Inf input leaked: %v", y)
	}

	// state must stay usable afterwards
	for i := range 64 {
		y = f.ProcessSample(math.Sin(float64(i) / 3))
		if math.IsNaN(y) {
			t.Fatalf("state corrupted at %d", i)
		}
	}
}

func TestZDFResetDeterminism(t *testing.T) {
	f, err := NewZDF(48000, WithCutoffHz(2400), WithResonance(0.7))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	in := testutil.DeterministicNoise(3, 0.8, 512)

	first := make([]float64, len(in))
	f.ProcessTo(first, in)

	f.Reset()

	second := make([]float64, len(in))
	f.ProcessTo(second, in)

	testutil.RequireSliceNearlyEqual(t, second, first, 0)
}

func TestZDFStateRoundTrip(t *testing.T) {
	f, err := NewZDF(48000, WithCutoffHz(1200), WithResonance(0.9))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	for i := range 96 {
		_ = f.ProcessSample(math.Sin(2 * math.Pi * float64(i) / 29))
	}

	s := f.State()

	clone, err := NewZDF(48000, WithCutoffHz(1200), WithResonance(0.9))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	if err := clone.SetState(s); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	for i := range 128 {
		x := math.Sin(2*math.Pi*float64(i)/31) + 0.2*math.Sin(2*math.Pi*float64(i)/7)

		y1 := f.ProcessSample(x)

		y2 := clone.ProcessSample(x)
		if math.Abs(y1-y2) > 1e-12 {
			t.Fatalf("state mismatch at %d: %g vs %g", i, y1, y2)
		}
	}
}

func TestZDFSetStateRejectsNonFinite(t *testing.T) {
	f, err := NewZDF(48000)
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	st := ZDFState{}

	st.Stage[0] = math.NaN()
	if err := f.SetState(st); err == nil {
		t.Fatal("expected error for NaN stage")
	}

	st = ZDFState{}

	st.Z[2] = math.Inf(-1)
	if err := f.SetState(st); err == nil {
		t.Fatal("expected error for Inf integrator state")
	}

	st = ZDFState{PrevInput: math.NaN()}
	if err := f.SetState(st); err == nil {
		t.Fatal("expected error for NaN previous input")
	}
}

func TestZDFProcessInPlaceMatchesSample(t *testing.T) {
	f1, err := NewZDF(48000, WithCutoffHz(2400), WithResonance(0.8), WithDrive(0.5))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	f2, err := NewZDF(48000, WithCutoffHz(2400), WithResonance(0.8), WithDrive(0.5))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	in := make([]float64, 384)
	for i := range in {
		in[i] = 0.65*math.Sin(2*math.Pi*float64(i)/47) + 0.12*math.Sin(2*math.Pi*float64(i)/11)
	}

	want := make([]float64, len(in))
	for i, x := range in {
		want[i] = f1.ProcessSample(x)
	}

	got := append([]float64(nil), in...)
	f2.ProcessInPlace(got)

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestZDFOversampling(t *testing.T) {
	f, err := NewZDF(48000, WithCutoffHz(2000), WithResonance(0.6), WithOversampling(4))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	if got := f.Oversampling(); got != 4 {
		t.Fatalf("Oversampling = %d, want 4", got)
	}

	in := testutil.DeterministicNoise(11, 0.7, 4096)
	f.ProcessInPlace(in)
	testutil.RequireFinite(t, in)

	// invalid factors are ignored
	f.SetOversampling(3)

	if got := f.Oversampling(); got != 4 {
		t.Fatalf("invalid oversampling accepted: %d", got)
	}
}

func TestZDFOversamplingKeepsTuning(t *testing.T) {
	const (
		sampleRate = 48000.0
		cutoff     = 1000.0
	)

	f, err := NewZDF(sampleRate, WithCutoffHz(cutoff), WithResonance(0), WithOversampling(2))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	ir := testutil.Impulse(16384, 0)
	f.ProcessInPlace(ir)

	db, err := response.GainDBAtHz(ir, cutoff, sampleRate)
	if err != nil {
		t.Fatal(err)
	}

	// the warp coefficient is derived at the oversampled rate, so the
	// corner must not shift; the anti-alias sections add a little loss
	if math.Abs(db+12.04) > 1.5 {
		t.Fatalf("gain at cutoff = %.3f dB, want about -12 dB", db)
	}
}

func TestZDFSetSampleRate(t *testing.T) {
	f, err := NewZDF(48000, WithCutoffHz(40000))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	// clamped against the original rate
	if got := f.CutoffHz(); got != 0.45*48000 {
		t.Fatalf("CutoffHz = %v, want %v", got, 0.45*48000)
	}

	f.SetSampleRate(96000)

	f.SetCutoffHz(40000)
	if got := f.CutoffHz(); got != 40000 {
		t.Fatalf("CutoffHz = %v, want 40000 at 96 kHz", got)
	}

	f.SetSampleRate(0)
	if got := f.SampleRate(); got != 96000 {
		t.Fatalf("invalid sample rate accepted: %v", got)
	}
}

func TestStereoIndependentChannels(t *testing.T) {
	s, err := NewStereo(48000, WithCutoffHz(2000), WithResonance(0.5))
	if err != nil {
		t.Fatalf("NewStereo() error = %v", err)
	}

	mono, err := NewZDF(48000, WithCutoffHz(2000), WithResonance(0.5))
	if err != nil {
		t.Fatalf("NewZDF() error = %v", err)
	}

	left := testutil.DeterministicSine(440, 48000, 0.8, 256)
	right := testutil.DeterministicNoise(5, 0.5, 256)

	wantLeft := make([]float64, len(left))
	mono.ProcessTo(wantLeft, left)

	s.ProcessInPlace(left, right)

	// the left channel matches a mono filter fed the same signal, so the
	// right channel's state never leaks across
	testutil.RequireSliceNearlyEqual(t, left, wantLeft, 1e-12)
	testutil.RequireFinite(t, right)
}

func TestStereoReset(t *testing.T) {
	s, err := NewStereo(48000, WithCutoffHz(3000), WithResonance(0.9))
	if err != nil {
		t.Fatalf("NewStereo() error = %v", err)
	}

	l1, r1 := s.ProcessSample(0.5, -0.5)

	s.Reset()

	l2, r2 := s.ProcessSample(0.5, -0.5)
	if l1 != l2 || r1 != r2 {
		t.Fatalf("reset not deterministic: (%g,%g) vs (%g,%g)", l1, r1, l2, r2)
	}
}
