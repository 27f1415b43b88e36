package ladder

// Mode selects the response of the ZDF family. Outputs are formed from
// already-computed stage values, so switching modes never recomputes the
// stage pipeline.
type Mode int

const (
	// ModeLP24 is the classic 24 dB/octave low-pass (final stage output).
	ModeLP24 Mode = iota
	// ModeBP12 is a 12 dB/octave band-pass (stage 3 minus stage 4).
	ModeBP12
	// ModeHP24 is a 24 dB/octave high-pass (input minus final stage).
	ModeHP24
)

func (m Mode) String() string {
	switch m {
	case ModeLP24:
		return "lp24"
	case ModeBP12:
		return "bp12"
	case ModeHP24:
		return "hp24"
	default:
		return "unknown"
	}
}

func validMode(m Mode) bool {
	return m >= ModeLP24 && m <= ModeHP24
}

// NonlinearMode selects the response of the nonlinear family. The six
// responses are linear combinations of intermediate values from both
// iteration passes and the previous sample.
//
// Unlike the ZDF family, which ignores invalid modes at set time, the
// nonlinear family stores whatever tag it is given and substitutes the
// default low-pass combination at output-selection time. The asymmetry is
// intentional and covered by tests; callers relying on "set invalid, keep
// previous" semantics must use the ZDF family.
type NonlinearMode int

const (
	// NonlinearLP24 is the default 24 dB/octave low-pass combination.
	NonlinearLP24 NonlinearMode = iota
	// NonlinearHP24 is the 24 dB/octave high-pass combination.
	NonlinearHP24
	// NonlinearBP24 is the 24 dB/octave band-pass combination.
	NonlinearBP24
	// NonlinearLP18 is the 18 dB/octave low-pass (third-section tap).
	NonlinearLP18
	// NonlinearBP18 is the 18 dB/octave band-pass combination.
	NonlinearBP18
	// NonlinearHP6 is the 6 dB/octave high-pass (first-section difference).
	NonlinearHP6
)

func (m NonlinearMode) String() string {
	switch m {
	case NonlinearLP24:
		return "lp24"
	case NonlinearHP24:
		return "hp24"
	case NonlinearBP24:
		return "bp24"
	case NonlinearLP18:
		return "lp18"
	case NonlinearBP18:
		return "bp18"
	case NonlinearHP6:
		return "hp6"
	default:
		return "unknown"
	}
}
