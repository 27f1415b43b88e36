package ladder

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-ladder/dsp/ladder/numeric"
)

// NonlinearVec4 runs four independent nonlinear filter voices in lock
// step, one per lane. Input, envelope, resonance and noise are all
// per-lane, so the four voices can track entirely different controls;
// drive and mode are shared across lanes.
type NonlinearVec4 struct {
	sampleRate float64
	drive      float64
	driveGain  numeric.V4
	mode       NonlinearMode

	core nlCore[numeric.V4, numeric.Vec4]
}

// NewNonlinearVec4 constructs a four-voice nonlinear ladder filter.
func NewNonlinearVec4(sampleRate float64, opts ...Option) (*NonlinearVec4, error) {
	if !validSampleRate(sampleRate) {
		return nil, fmt.Errorf("ladder: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	f := &NonlinearVec4{
		sampleRate: sampleRate,
		mode:       cfg.nlMode,
	}
	f.core.init(sampleRate)
	f.SetDrive(cfg.drive)

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *NonlinearVec4) SampleRate() float64 { return f.sampleRate }

// Drive returns the clamped input drive in [0, 1], shared by all lanes.
func (f *NonlinearVec4) Drive() float64 { return f.drive }

// Mode returns the current response mode tag, shared by all lanes.
func (f *NonlinearVec4) Mode() NonlinearMode { return f.mode }

// SetDrive clamps d to [0, 1] and applies it to all lanes as an input
// pre-gain of 1 + 3*d.
func (f *NonlinearVec4) SetDrive(d float64) {
	if !isFinite(d) {
		return
	}

	f.drive = clampUnit(d)
	f.driveGain = numeric.Splat(float32(1 + nlDriveGainRange*f.drive))
}

// SetMode switches the response mode for all lanes. Unknown tags degrade
// to the default low-pass combination.
func (f *NonlinearVec4) SetMode(m NonlinearMode) { f.mode = m }

// SetSampleRate updates the sample rate for all lanes. Invalid rates are
// ignored.
func (f *NonlinearVec4) SetSampleRate(sampleRate float64) {
	if !validSampleRate(sampleRate) {
		return
	}

	f.sampleRate = sampleRate
	f.core.setSampleRate(sampleRate)
}

// Reset zeroes all lane states.
func (f *NonlinearVec4) Reset() {
	f.core.reset()
}

// ProcessSample processes one sample per lane. NaN or Inf input lanes
// are replaced with silence before entering the recursion.
func (f *NonlinearVec4) ProcessSample(input, envelope, resonance, noise numeric.V4) numeric.V4 {
	for i := range input {
		if math.IsNaN(float64(input[i])) || math.IsInf(float64(input[i]), 0) {
			input[i] = 0
		}
	}

	var ops numeric.Vec4
	input = ops.Mul(input, f.driveGain)

	return f.core.process(input, envelope, resonance, noise, f.mode)
}
