package ladder

import (
	"math"

	"github.com/cwbudde/algo-ladder/dsp/core"
)

const (
	defaultCutoffHz  = 1000.0
	defaultResonance = 0.5
	defaultDrive     = 0.0

	minCutoffHz = 20.0
	// upper cutoff bound relative to the sample rate; 10% safety margin
	// below Nyquist
	cutoffNyquistRatio = 0.45

	// feedback gain per unit resonance, compensating the 24 dB cumulative
	// attenuation of the four stages
	feedbackGainScale = 4.0

	// drive settings at or below this bypass the feedback saturator
	driveBypassThreshold = 1e-3
)

// clampCutoff limits a cutoff request to [20 Hz, 0.45*fs].
func clampCutoff(hz, sampleRate float64) float64 {
	return core.Clamp(hz, minCutoffHz, cutoffNyquistRatio*sampleRate)
}

// clampUnit limits resonance and drive requests to [0, 1].
func clampUnit(v float64) float64 {
	return core.Clamp(v, 0, 1)
}

// warpCoefficient computes the frequency pre-warp factor G = tan(pi*fc/fs)
// so the digital cutoff matches the analog prototype exactly at fc.
func warpCoefficient(cutoffHz, sampleRate float64) float64 {
	return math.Tan(math.Pi * cutoffHz / sampleRate)
}

func validSampleRate(sampleRate float64) bool {
	return sampleRate > 0 && !math.IsNaN(sampleRate) && !math.IsInf(sampleRate, 0)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// sanitizeInput replaces non-finite samples with silence before they can
// enter recursive state.
func sanitizeInput(v float64) float64 {
	if !isFinite(v) {
		return 0
	}

	return v
}
