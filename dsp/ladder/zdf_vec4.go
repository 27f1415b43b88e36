package ladder

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-ladder/dsp/ladder/numeric"
)

// ZDFVec4 advances four independent ZDF ladder channels in lock-step.
// Cutoff and resonance may differ per lane; the response mode and drive
// are shared across the lane group. One ProcessSample call advances all
// four lanes; there is no partial-completion state.
type ZDFVec4 struct {
	sampleRate float64

	cutoffHz  [numeric.Lanes]float64
	resonance [numeric.Lanes]float64
	drive     float64

	core zdfCore[numeric.V4, numeric.Vec4]
}

// NewZDFVec4 constructs a four-lane ZDF ladder filter. All lanes start
// with the same configured parameters; use the per-lane setters to spread
// them.
func NewZDFVec4(sampleRate float64, opts ...Option) (*ZDFVec4, error) {
	if !validSampleRate(sampleRate) {
		return nil, fmt.Errorf("ladder: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	f := &ZDFVec4{sampleRate: sampleRate}
	f.core.mode = cfg.mode

	f.SetCutoffHz(cfg.cutoffHz)
	f.SetResonance(cfg.resonance)
	f.SetDrive(cfg.drive)

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *ZDFVec4) SampleRate() float64 { return f.sampleRate }

// Mode returns the lane-shared response mode.
func (f *ZDFVec4) Mode() Mode { return f.core.mode }

// LaneCutoffHz returns the clamped cutoff of one lane.
func (f *ZDFVec4) LaneCutoffHz(lane int) float64 {
	if lane < 0 || lane >= numeric.Lanes {
		return 0
	}

	return f.cutoffHz[lane]
}

// LaneResonance returns the clamped resonance of one lane.
func (f *ZDFVec4) LaneResonance(lane int) float64 {
	if lane < 0 || lane >= numeric.Lanes {
		return 0
	}

	return f.resonance[lane]
}

// SetCutoffHz sets the same cutoff on all four lanes.
func (f *ZDFVec4) SetCutoffHz(hz float64) {
	if !isFinite(hz) {
		return
	}

	clamped := clampCutoff(hz, f.sampleRate)
	for lane := range f.cutoffHz {
		f.cutoffHz[lane] = clamped
	}

	f.rebuildAlpha()
}

// SetLaneCutoffHz sets the cutoff of a single lane. Out-of-range lane
// indices are ignored.
func (f *ZDFVec4) SetLaneCutoffHz(lane int, hz float64) {
	if lane < 0 || lane >= numeric.Lanes || !isFinite(hz) {
		return
	}

	f.cutoffHz[lane] = clampCutoff(hz, f.sampleRate)
	f.rebuildAlpha()
}

// SetResonance sets the same resonance on all four lanes.
func (f *ZDFVec4) SetResonance(r float64) {
	if !isFinite(r) {
		return
	}

	clamped := clampUnit(r)
	for lane := range f.resonance {
		f.resonance[lane] = clamped
	}

	f.rebuildFeedback()
}

// SetLaneResonance sets the resonance of a single lane.
func (f *ZDFVec4) SetLaneResonance(lane int, r float64) {
	if lane < 0 || lane >= numeric.Lanes || !isFinite(r) {
		return
	}

	f.resonance[lane] = clampUnit(r)
	f.rebuildFeedback()
}

// SetDrive sets the lane-shared feedback drive in [0, 1].
func (f *ZDFVec4) SetDrive(d float64) {
	if !isFinite(d) {
		return
	}

	f.drive = clampUnit(d)
	f.core.setDrive(numeric.Splat(float32(f.drive)), f.drive > driveBypassThreshold)
}

// SetMode switches the lane-shared response mode; invalid modes keep the
// previous mode.
func (f *ZDFVec4) SetMode(m Mode) {
	if validMode(m) {
		f.core.mode = m
	}
}

// SetSampleRate updates the sample rate and rebuilds all lane
// coefficients. Invalid rates are ignored.
func (f *ZDFVec4) SetSampleRate(sampleRate float64) {
	if !validSampleRate(sampleRate) {
		return
	}

	f.sampleRate = sampleRate
	for lane := range f.cutoffHz {
		f.cutoffHz[lane] = clampCutoff(f.cutoffHz[lane], sampleRate)
	}

	f.rebuildAlpha()
}

// Reset zeroes all lanes.
func (f *ZDFVec4) Reset() { f.core.reset() }

// ProcessSample advances all four lanes by one sample.
func (f *ZDFVec4) ProcessSample(input numeric.V4) numeric.V4 {
	for i, v := range input {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			input[i] = 0
		}
	}

	return f.core.process(input)
}

// rebuildAlpha packs the per-lane warp factors and derives the stage
// coefficient through the vector Recip strategy.
func (f *ZDFVec4) rebuildAlpha() {
	ops := f.core.ops

	var g numeric.V4
	for lane, hz := range f.cutoffHz {
		g[lane] = float32(warpCoefficient(hz, f.sampleRate))
	}

	one := numeric.Splat(1)
	f.core.setAlpha(ops.Mul(g, ops.Recip(ops.Add(one, g))))
}

func (f *ZDFVec4) rebuildFeedback() {
	var k numeric.V4
	for lane, r := range f.resonance {
		k[lane] = float32(r * feedbackGainScale)
	}

	f.core.setFeedbackGain(k)
}
