package ladder

import (
	"fmt"
	"math/rand/v2"

	"github.com/cwbudde/algo-ladder/dsp/ladder/numeric"
)

// nlDriveGainRange maps drive in [0, 1] to an input pre-gain of up to
// 1 + nlDriveGainRange, pushing the saturation stages harder.
const nlDriveGainRange = 3.0

// NonlinearState contains the explicit runtime state of a scalar
// nonlinear filter for save/restore workflows.
type NonlinearState struct {
	PrevInput     float64
	Cutoff        float64
	ResonanceCoef float64
	Stage         [4]float64
	Saturation    float64
	Stage4Delayed float64
	Stage4Tap     float64
	OutputTap     float64
}

// Nonlinear is the double-precision scalar nonlinear ladder filter.
//
// Unlike the ZDF family, cutoff and resonance arrive per sample as part
// of the dataflow: ProcessSample takes (input, envelope, resonance,
// noise). The envelope is a MIDI-style control in roughly [0, 127] and
// maps to normalized cutoff through an exponential polynomial; the
// resonance control is clamped to [0, 1] internally. Both are smoothed
// with one-pole ramps before use. The noise input is scaled by 1e-11 and
// keeps the recursion off exact zero.
type Nonlinear struct {
	sampleRate float64
	drive      float64
	mode       NonlinearMode
	rng        *rand.Rand

	core nlCore[float64, numeric.Float64]
}

// NewNonlinear constructs a scalar nonlinear ladder filter. Only a
// non-positive or non-finite sample rate is an error.
func NewNonlinear(sampleRate float64, opts ...Option) (*Nonlinear, error) {
	if !validSampleRate(sampleRate) {
		return nil, fmt.Errorf("ladder: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	f := &Nonlinear{
		sampleRate: sampleRate,
		mode:       cfg.nlMode,
		rng:        cfg.rng,
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	f.core.init(sampleRate)
	f.SetDrive(cfg.drive)

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *Nonlinear) SampleRate() float64 { return f.sampleRate }

// Drive returns the clamped input drive in [0, 1].
func (f *Nonlinear) Drive() float64 { return f.drive }

// Mode returns the current response mode tag, as set. An unknown tag is
// kept but selects the default low-pass combination at output time.
func (f *Nonlinear) Mode() NonlinearMode { return f.mode }

// SetDrive clamps d to [0, 1]. Drive applies as an input pre-gain of
// 1 + 3*d ahead of the saturation stages.
func (f *Nonlinear) SetDrive(d float64) {
	if !isFinite(d) {
		return
	}

	f.drive = clampUnit(d)
}

// SetMode switches the response mode. Any tag is accepted; unknown tags
// degrade to the default low-pass combination without disturbing the
// pipeline.
func (f *Nonlinear) SetMode(m NonlinearMode) { f.mode = m }

// SetSampleRate updates the sample rate and the derived frequency
// scaling. Invalid rates are ignored.
func (f *Nonlinear) SetSampleRate(sampleRate float64) {
	if !validSampleRate(sampleRate) {
		return
	}

	f.sampleRate = sampleRate
	f.core.setSampleRate(sampleRate)
}

// Reset zeroes all history registers and restarts parameter smoothing
// from the construction state.
func (f *Nonlinear) Reset() {
	f.core.reset()
}

// State returns a copy of the current processor state.
func (f *Nonlinear) State() NonlinearState {
	return NonlinearState{
		PrevInput:     f.core.prevInput,
		Cutoff:        f.core.cutoff,
		ResonanceCoef: f.core.resCoef,
		Stage:         f.core.stage,
		Saturation:    f.core.sat,
		Stage4Delayed: f.core.delayed4,
		Stage4Tap:     f.core.comb1,
		OutputTap:     f.core.comb2,
	}
}

// SetState restores an externally saved processor state.
func (f *Nonlinear) SetState(state NonlinearState) error {
	fields := []float64{
		state.PrevInput, state.Cutoff, state.ResonanceCoef,
		state.Saturation, state.Stage4Delayed, state.Stage4Tap, state.OutputTap,
		state.Stage[0], state.Stage[1], state.Stage[2], state.Stage[3],
	}
	for _, v := range fields {
		if !isFinite(v) {
			return fmt.Errorf("ladder: state contains NaN or Inf")
		}
	}

	f.core.prevInput = state.PrevInput
	f.core.cutoff = state.Cutoff
	f.core.resCoef = state.ResonanceCoef
	f.core.stage = state.Stage
	f.core.sat = state.Saturation
	f.core.delayed4 = state.Stage4Delayed
	f.core.comb1 = state.Stage4Tap
	f.core.comb2 = state.OutputTap

	return nil
}

// ProcessSample processes one sample with per-sample controls. The noise
// input feeds the thermal-noise injection; pass 0 for a bit-exact
// deterministic run.
func (f *Nonlinear) ProcessSample(input, envelope, resonance, noise float64) float64 {
	input = sanitizeInput(input) * (1 + nlDriveGainRange*f.drive)

	return f.core.process(input, envelope, resonance, noise, f.mode)
}

// ProcessInPlace processes a mono buffer in place with fixed envelope and
// resonance controls, drawing thermal noise from the filter's generator.
func (f *Nonlinear) ProcessInPlace(buf []float64, envelope, resonance float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i], envelope, resonance, f.noise())
	}
}

// ProcessTo processes src into dst with fixed envelope and resonance
// controls. Both slices must have the same length.
func (f *Nonlinear) ProcessTo(dst, src []float64, envelope, resonance float64) {
	n := len(src)
	if n == 0 {
		return
	}

	_ = dst[n-1]
	for i, x := range src {
		dst[i] = f.ProcessSample(x, envelope, resonance, f.noise())
	}
}

func (f *Nonlinear) noise() float64 {
	return f.rng.Float64()*2 - 1
}
