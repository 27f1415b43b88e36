package numeric

const (
	// Denormal flush thresholds. Double-precision state decays well below
	// the float32 subnormal range before it hurts, hence the tighter bound.
	flushThreshold64 = 1e-18
	flushThreshold32 = 1e-30
)

// Float64 is the double-precision scalar backend.
type Float64 struct{}

// FromFloat converts a control value; identity for float64.
func (Float64) FromFloat(v float64) float64 { return v }

func (Float64) Add(a, b float64) float64 { return a + b }

func (Float64) Sub(a, b float64) float64 { return a - b }

func (Float64) Mul(a, b float64) float64 { return a * b }

func (Float64) MulAdd(a, b, c float64) float64 { return a*b + c }

func (Float64) Recip(x float64) float64 { return 1 / x }

// Saturate applies the tanh feedback limiter. Under the fastmath build tag
// the exact tanh is replaced by an algo-approx based evaluation.
func (Float64) Saturate(x float64) float64 { return tanh64(x) }

func (Float64) Clamp1(x float64) float64 {
	if x > 1 {
		return 1
	}

	if x < -1 {
		return -1
	}

	return x
}

func (Float64) Min(a, b float64) float64 {
	if a < b {
		return a
	}

	return b
}

func (Float64) Max(a, b float64) float64 {
	if a > b {
		return a
	}

	return b
}

func (Float64) Flush(x float64) float64 {
	if x > -flushThreshold64 && x < flushThreshold64 {
		return 0
	}

	return x
}

// Float32 is the single-precision scalar backend.
type Float32 struct{}

func (Float32) FromFloat(v float64) float32 { return float32(v) }

func (Float32) Add(a, b float32) float32 { return a + b }

func (Float32) Sub(a, b float32) float32 { return a - b }

func (Float32) Mul(a, b float32) float32 { return a * b }

func (Float32) MulAdd(a, b, c float32) float32 { return a*b + c }

func (Float32) Recip(x float32) float32 { return 1 / x }

func (Float32) Saturate(x float32) float32 { return float32(tanh64(float64(x))) }

func (Float32) Clamp1(x float32) float32 {
	if x > 1 {
		return 1
	}

	if x < -1 {
		return -1
	}

	return x
}

func (Float32) Min(a, b float32) float32 {
	if a < b {
		return a
	}

	return b
}

func (Float32) Max(a, b float32) float32 {
	if a > b {
		return a
	}

	return b
}

func (Float32) Flush(x float32) float32 {
	if x > -flushThreshold32 && x < flushThreshold32 {
		return 0
	}

	return x
}
