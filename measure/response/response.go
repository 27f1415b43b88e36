// Package response measures magnitude responses and spectral peaks of
// filter output signals. It is the measurement companion used by the
// ladder filter tests and the demo tool.
package response

import (
	"errors"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ladder/dsp/core"
)

// Errors returned by response functions.
var (
	ErrEmptySignal       = errors.New("response: signal is empty")
	ErrInvalidSampleRate = errors.New("response: sample rate must be positive")
	ErrInvalidFrequency  = errors.New("response: frequency must be in (0, Nyquist)")
)

// NextPow2 returns the smallest power of two >= n (minimum 1).
func NextPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}

	return size
}

// Spectrum computes the forward FFT of signal, zero-padded to the next
// power of two.
func Spectrum(signal []float64) ([]complex128, error) {
	if len(signal) == 0 {
		return nil, ErrEmptySignal
	}

	fftSize := NextPow2(len(signal))

	in := make([]complex128, fftSize)
	for i, v := range signal {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, err
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, err
	}

	return out, nil
}

// Magnitude computes the single-sided magnitude spectrum of signal,
// bins [0 .. N/2] of the zero-padded FFT.
func Magnitude(signal []float64) ([]float64, error) {
	spec, err := Spectrum(signal)
	if err != nil {
		return nil, err
	}

	half := len(spec)/2 + 1
	re := make([]float64, half)
	im := make([]float64, half)

	for i := range half {
		re[i] = real(spec[i])
		im[i] = imag(spec[i])
	}

	out := core.EnsureLen(nil, half)
	vecmath.Magnitude(out, re, im)

	return out, nil
}

// DominantFrequencyHz returns the frequency of the strongest non-DC bin
// in signal's magnitude spectrum, refined by parabolic interpolation of
// the neighboring bins.
func DominantFrequencyHz(signal []float64, sampleRate float64) (float64, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, ErrInvalidSampleRate
	}

	mag, err := Magnitude(signal)
	if err != nil {
		return 0, err
	}

	fftSize := 2 * (len(mag) - 1)
	if fftSize < 2 {
		return 0, ErrEmptySignal
	}

	peakBin := 1
	for i := 2; i < len(mag); i++ {
		if mag[i] > mag[peakBin] {
			peakBin = i
		}
	}

	binHz := sampleRate / float64(fftSize)
	offset := 0.0

	if peakBin > 1 && peakBin < len(mag)-1 {
		alpha := mag[peakBin-1]
		beta := mag[peakBin]
		gamma := mag[peakBin+1]

		denom := alpha - 2*beta + gamma
		if denom != 0 {
			offset = 0.5 * (alpha - gamma) / denom
		}
	}

	return (float64(peakBin) + offset) * binHz, nil
}

// GainAtHz evaluates the magnitude of the transfer function described by
// the impulse response ir at freqHz, using a direct single-frequency DFT.
// The ir must be long enough for the response to have decayed; truncation
// biases the result.
func GainAtHz(ir []float64, freqHz, sampleRate float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptySignal
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, ErrInvalidSampleRate
	}

	if freqHz <= 0 || freqHz >= sampleRate/2 {
		return 0, ErrInvalidFrequency
	}

	omega := 2 * math.Pi * freqHz / sampleRate

	var sumRe, sumIm float64

	for n, v := range ir {
		phi := omega * float64(n)
		sumRe += v * math.Cos(phi)
		sumIm -= v * math.Sin(phi)
	}

	return math.Hypot(sumRe, sumIm), nil
}

// GainDBAtHz is GainAtHz expressed in dB (20*log10 convention).
func GainDBAtHz(ir []float64, freqHz, sampleRate float64) (float64, error) {
	gain, err := GainAtHz(ir, freqHz, sampleRate)
	if err != nil {
		return 0, err
	}

	return core.LinearToDB(gain), nil
}
