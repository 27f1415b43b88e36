package ladder

import (
	"math/rand/v2"

	"github.com/cwbudde/algo-ladder/dsp/ladder/numeric"
)

type config struct {
	cutoffHz     float64
	resonance    float64
	drive        float64
	mode         Mode
	nlMode       NonlinearMode
	overSampling int
	fixedBias    numeric.Q16
	rng          *rand.Rand
}

func defaultConfig() config {
	return config{
		cutoffHz:     defaultCutoffHz,
		resonance:    defaultResonance,
		drive:        defaultDrive,
		mode:         ModeLP24,
		nlMode:       NonlinearLP24,
		overSampling: 1,
		fixedBias:    1,
	}
}

// Option mutates constructor configuration. Out-of-range values are
// clamped, never rejected, matching the behavior of the setters.
type Option func(*config)

// WithCutoffHz sets the initial cutoff frequency in Hz.
func WithCutoffHz(hz float64) Option {
	return func(cfg *config) {
		if isFinite(hz) {
			cfg.cutoffHz = hz
		}
	}
}

// WithResonance sets the initial resonance in [0, 1].
func WithResonance(r float64) Option {
	return func(cfg *config) {
		if isFinite(r) {
			cfg.resonance = r
		}
	}
}

// WithDrive sets the initial feedback drive in [0, 1].
func WithDrive(d float64) Option {
	return func(cfg *config) {
		if isFinite(d) {
			cfg.drive = d
		}
	}
}

// WithMode sets the initial ZDF-family response mode. Invalid modes are
// ignored, keeping the default.
func WithMode(m Mode) Option {
	return func(cfg *config) {
		if validMode(m) {
			cfg.mode = m
		}
	}
}

// WithNonlinearMode sets the initial nonlinear-family response mode. Any
// tag is accepted; unknown tags select the default low-pass combination
// at output time.
func WithNonlinearMode(m NonlinearMode) Option {
	return func(cfg *config) {
		cfg.nlMode = m
	}
}

// WithOversampling sets the anti-aliased oversampling factor of the
// scalar ZDF filter. Allowed values: 1, 2, 4, 8; others are ignored.
func WithOversampling(factor int) Option {
	return func(cfg *config) {
		if validOversampling(factor) {
			cfg.overSampling = factor
		}
	}
}

// WithFixedInputBias sets the raw Q16.16 offset the fixed-point backend
// adds to every input sample, keeping the input word itself off exact
// zero. The default of one raw step injects a bias of 2^-16; zero
// disables the offset entirely.
func WithFixedInputBias(bias numeric.Q16) Option {
	return func(cfg *config) {
		cfg.fixedBias = bias
	}
}

// WithRNG sets a deterministic random number generator for the thermal
// noise drawn by the nonlinear block helpers, for reproducible output.
func WithRNG(rng *rand.Rand) Option {
	return func(cfg *config) {
		cfg.rng = rng
	}
}

func validOversampling(factor int) bool {
	return factor == 1 || factor == 2 || factor == 4 || factor == 8
}
