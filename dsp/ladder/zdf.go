package ladder

import (
	"fmt"

	"github.com/cwbudde/algo-ladder/dsp/biquad"
	"github.com/cwbudde/algo-ladder/dsp/ladder/numeric"
)

// ZDFState contains the explicit runtime state of a scalar ZDF filter for
// save/restore workflows.
type ZDFState struct {
	Stage     [4]float64
	Z         [4]float64
	PrevInput float64
}

// ZDF is the double-precision scalar ZDF ladder filter.
//
// Parameters are set out of band; ProcessSample takes only the input
// sample. Setters clamp silently and recompute derived coefficients
// eagerly, so a change is effective on the next processed sample.
type ZDF struct {
	sampleRate float64

	cutoffHz  float64
	resonance float64
	drive     float64

	overSampling int
	prevInput    float64

	core zdfCore[float64, numeric.Float64]

	antiAliasUp   *biquad.Section
	antiAliasDown *biquad.Section
}

// NewZDF constructs a scalar ZDF ladder filter. Only a non-positive or
// non-finite sample rate is an error; every parameter option clamps.
func NewZDF(sampleRate float64, opts ...Option) (*ZDF, error) {
	if !validSampleRate(sampleRate) {
		return nil, fmt.Errorf("ladder: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	f := &ZDF{
		sampleRate:   sampleRate,
		overSampling: cfg.overSampling,
	}
	f.core.mode = cfg.mode

	f.SetCutoffHz(cfg.cutoffHz)
	f.SetResonance(cfg.resonance)
	f.SetDrive(cfg.drive)
	f.buildAntiAliasFilters()

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *ZDF) SampleRate() float64 { return f.sampleRate }

// CutoffHz returns the clamped cutoff frequency in Hz.
func (f *ZDF) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns the clamped resonance in [0, 1].
func (f *ZDF) Resonance() float64 { return f.resonance }

// Drive returns the clamped feedback drive in [0, 1].
func (f *ZDF) Drive() float64 { return f.drive }

// Mode returns the current response mode.
func (f *ZDF) Mode() Mode { return f.core.mode }

// Oversampling returns the anti-aliased oversampling factor.
func (f *ZDF) Oversampling() int { return f.overSampling }

// SetCutoffHz clamps hz to [20, 0.45*fs] and recomputes the warp
// coefficient immediately.
func (f *ZDF) SetCutoffHz(hz float64) {
	if !isFinite(hz) {
		return
	}

	osRate := f.sampleRate * float64(f.overSampling)
	f.cutoffHz = clampCutoff(hz, f.sampleRate)
	f.core.setWarp(warpCoefficient(f.cutoffHz, osRate))
}

// SetResonance clamps r to [0, 1] and recomputes the feedback gain.
func (f *ZDF) SetResonance(r float64) {
	if !isFinite(r) {
		return
	}

	f.resonance = clampUnit(r)
	f.core.setFeedbackGain(f.resonance * feedbackGainScale)
}

// SetDrive clamps d to [0, 1]. Values at or below the bypass threshold
// keep the feedback path linear.
func (f *ZDF) SetDrive(d float64) {
	if !isFinite(d) {
		return
	}

	f.drive = clampUnit(d)
	f.core.setDrive(f.drive, f.drive > driveBypassThreshold)
}

// SetMode switches the response mode. Invalid modes are ignored and the
// previous mode is kept; switching never resets or recomputes the stage
// pipeline.
func (f *ZDF) SetMode(m Mode) {
	if validMode(m) {
		f.core.mode = m
	}
}

// SetSampleRate updates the sample rate and recomputes the warp
// coefficient for the current cutoff. Invalid rates are ignored.
func (f *ZDF) SetSampleRate(sampleRate float64) {
	if !validSampleRate(sampleRate) {
		return
	}

	f.sampleRate = sampleRate
	f.SetCutoffHz(f.cutoffHz)
	f.buildAntiAliasFilters()
}

// SetOversampling updates the oversampling factor, rebuilding the warp
// coefficient and anti-alias filters. Invalid factors are ignored.
func (f *ZDF) SetOversampling(factor int) {
	if !validOversampling(factor) {
		return
	}

	f.overSampling = factor
	f.SetCutoffHz(f.cutoffHz)
	f.buildAntiAliasFilters()
}

// Reset zeroes all filter state.
func (f *ZDF) Reset() {
	f.core.reset()
	f.prevInput = 0

	if f.antiAliasUp != nil {
		f.antiAliasUp.Reset()
	}

	if f.antiAliasDown != nil {
		f.antiAliasDown.Reset()
	}
}

// State returns a copy of the current processor state.
func (f *ZDF) State() ZDFState {
	return ZDFState{
		Stage:     f.core.stage,
		Z:         f.core.z,
		PrevInput: f.prevInput,
	}
}

// SetState restores an externally saved processor state.
func (f *ZDF) SetState(state ZDFState) error {
	for i := range state.Stage {
		if !isFinite(state.Stage[i]) || !isFinite(state.Z[i]) {
			return fmt.Errorf("ladder: state contains NaN or Inf")
		}
	}

	if !isFinite(state.PrevInput) {
		return fmt.Errorf("ladder: state contains NaN or Inf")
	}

	f.core.stage = state.Stage
	f.core.z = state.Z
	f.prevInput = state.PrevInput

	return nil
}

// ProcessSample processes one sample.
func (f *ZDF) ProcessSample(input float64) float64 {
	input = sanitizeInput(input)

	if f.overSampling <= 1 {
		f.prevInput = input
		return f.core.process(input)
	}

	prev := f.prevInput
	delta := (input - prev) / float64(f.overSampling)

	var out float64

	for i := range f.overSampling {
		subInput := prev + delta*float64(i+1)
		if f.antiAliasUp != nil {
			subInput = f.antiAliasUp.ProcessSample(subInput)
		}

		subOutput := f.core.process(subInput)
		if f.antiAliasDown != nil {
			subOutput = f.antiAliasDown.ProcessSample(subOutput)
		}

		out = subOutput
	}

	f.prevInput = input

	return out
}

// ProcessInPlace processes a mono buffer in place.
func (f *ZDF) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// ProcessTo processes src into dst. Both slices must have the same length.
func (f *ZDF) ProcessTo(dst, src []float64) {
	n := len(src)
	if n == 0 {
		return
	}

	_ = dst[n-1]
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
}

func (f *ZDF) buildAntiAliasFilters() {
	if f.overSampling <= 1 {
		f.antiAliasUp = nil
		f.antiAliasDown = nil

		return
	}

	osRate := f.sampleRate * float64(f.overSampling)

	antiAliasHz := f.sampleRate * 0.225
	if antiAliasHz >= osRate*0.5 {
		antiAliasHz = osRate * 0.225
	}

	coeff := biquad.Lowpass(antiAliasHz, biquad.ButterworthQ, osRate)
	f.antiAliasUp = biquad.NewSection(coeff)
	f.antiAliasDown = biquad.NewSection(coeff)
}

// Stereo runs one independent ZDF filter state per channel.
type Stereo struct {
	left  *ZDF
	right *ZDF
}

// NewStereo constructs a stereo helper with independent left/right state.
func NewStereo(sampleRate float64, opts ...Option) (*Stereo, error) {
	left, err := NewZDF(sampleRate, opts...)
	if err != nil {
		return nil, err
	}

	right, err := NewZDF(sampleRate, opts...)
	if err != nil {
		return nil, err
	}

	return &Stereo{left: left, right: right}, nil
}

// Left returns the left-channel filter.
func (s *Stereo) Left() *ZDF { return s.left }

// Right returns the right-channel filter.
func (s *Stereo) Right() *ZDF { return s.right }

// Reset clears both channel states.
func (s *Stereo) Reset() {
	s.left.Reset()
	s.right.Reset()
}

// ProcessSample processes one stereo sample frame.
func (s *Stereo) ProcessSample(leftIn, rightIn float64) (leftOut, rightOut float64) {
	return s.left.ProcessSample(leftIn), s.right.ProcessSample(rightIn)
}

// ProcessInPlace processes stereo planar buffers in place.
func (s *Stereo) ProcessInPlace(left, right []float64) {
	n := len(left)
	if n == 0 {
		return
	}

	_ = right[n-1]

	for i := range n {
		left[i], right[i] = s.ProcessSample(left[i], right[i])
	}
}
