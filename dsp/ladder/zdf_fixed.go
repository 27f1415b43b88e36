package ladder

import (
	"fmt"

	"github.com/cwbudde/algo-ladder/dsp/ladder/numeric"
)

// ZDFFixed is the Q16.16 fixed-point ZDF ladder filter, suitable for
// targets without an FPU. Audio samples are Q16.16; control parameters
// are still set in engineering units and quantized once per change.
//
// Every input sample is offset by a configurable bias (one raw Q16 step
// by default), keeping the input word off exact zero. The offset injects
// a DC bias of bias*2^-16; pass WithFixedInputBias(0) to disable it when
// downstream DC blocking is unavailable.
type ZDFFixed struct {
	sampleRate float64

	cutoffHz  float64
	resonance float64
	drive     float64
	bias      numeric.Q16

	core zdfCore[numeric.Q16, numeric.Q16Ops]
}

// NewZDFFixed constructs a Q16.16 ZDF ladder filter.
func NewZDFFixed(sampleRate float64, opts ...Option) (*ZDFFixed, error) {
	if !validSampleRate(sampleRate) {
		return nil, fmt.Errorf("ladder: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	f := &ZDFFixed{
		sampleRate: sampleRate,
		bias:       cfg.fixedBias,
	}
	f.core.mode = cfg.mode

	f.SetCutoffHz(cfg.cutoffHz)
	f.SetResonance(cfg.resonance)
	f.SetDrive(cfg.drive)

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *ZDFFixed) SampleRate() float64 { return f.sampleRate }

// CutoffHz returns the clamped cutoff frequency in Hz.
func (f *ZDFFixed) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns the clamped resonance in [0, 1].
func (f *ZDFFixed) Resonance() float64 { return f.resonance }

// Drive returns the clamped feedback drive in [0, 1].
func (f *ZDFFixed) Drive() float64 { return f.drive }

// Mode returns the current response mode.
func (f *ZDFFixed) Mode() Mode { return f.core.mode }

// InputBias returns the raw Q16.16 anti-denormalization offset.
func (f *ZDFFixed) InputBias() numeric.Q16 { return f.bias }

// SetCutoffHz clamps hz to [20, 0.45*fs]. The stage coefficient and its
// cascade powers are derived in float64 and quantized to Q16.16; the
// fixed-point reciprocal then forms the feedback normalizer, keeping the
// fixed backend tuned the same way as the float backends.
func (f *ZDFFixed) SetCutoffHz(hz float64) {
	if !isFinite(hz) {
		return
	}

	f.cutoffHz = clampCutoff(hz, f.sampleRate)
	f.core.setWarp(warpCoefficient(f.cutoffHz, f.sampleRate))
}

// SetResonance clamps r to [0, 1] and requantizes the feedback gain.
func (f *ZDFFixed) SetResonance(r float64) {
	if !isFinite(r) {
		return
	}

	f.resonance = clampUnit(r)
	f.core.setFeedbackGain(numeric.Q16FromFloat(f.resonance * feedbackGainScale))
}

// SetDrive clamps d to [0, 1].
func (f *ZDFFixed) SetDrive(d float64) {
	if !isFinite(d) {
		return
	}

	f.drive = clampUnit(d)
	f.core.setDrive(numeric.Q16FromFloat(f.drive), f.drive > driveBypassThreshold)
}

// SetMode switches the response mode; invalid modes keep the previous
// mode.
func (f *ZDFFixed) SetMode(m Mode) {
	if validMode(m) {
		f.core.mode = m
	}
}

// SetSampleRate updates the sample rate and requantizes the warp
// coefficient. Invalid rates are ignored.
func (f *ZDFFixed) SetSampleRate(sampleRate float64) {
	if !validSampleRate(sampleRate) {
		return
	}

	f.sampleRate = sampleRate
	f.SetCutoffHz(f.cutoffHz)
}

// SetInputBias updates the anti-denormalization offset.
func (f *ZDFFixed) SetInputBias(bias numeric.Q16) { f.bias = bias }

// Reset zeroes all filter state.
func (f *ZDFFixed) Reset() { f.core.reset() }

// ProcessSample processes one Q16.16 sample.
func (f *ZDFFixed) ProcessSample(input numeric.Q16) numeric.Q16 {
	return f.core.process(input + f.bias)
}

// ProcessSampleFloat converts input from float64, processes it and
// converts the result back. Intended for tests and offline use; the
// real-time path should feed Q16 samples directly.
func (f *ZDFFixed) ProcessSampleFloat(input float64) float64 {
	return f.ProcessSample(numeric.Q16FromFloat(sanitizeInput(input))).Float()
}
