package numeric

// Ops is the numeric-strategy contract shared by all ladder filter cores.
// T is the sample type of the backend: float64, float32, V4 or Q16.
//
// Implementations must be pure value types: every method depends only on
// its arguments, performs no allocation and touches no shared state.
type Ops[T any] interface {
	// FromFloat converts a float64 control value or coefficient to T.
	// Vector backends broadcast the value across all lanes.
	FromFloat(v float64) T

	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T

	// MulAdd returns a*b + c. Backends are free to fuse or to evaluate
	// it as two operations; cross-backend tolerance absorbs the
	// difference.
	MulAdd(a, b, c T) T

	// Recip returns 1/x using the backend's division strategy: exact
	// division for scalar floats, Newton-Raphson refinement for vector
	// lanes, 64-bit integer division for fixed point.
	Recip(x T) T

	// Saturate is the backend's smooth feedback limiter, tanh-shaped
	// for float backends and a quadratic polynomial for fixed point.
	Saturate(x T) T

	// Clamp1 hard-limits x to [-1, 1].
	Clamp1(x T) T

	Min(a, b T) T
	Max(a, b T) T

	// Flush replaces denormal-magnitude values with exact zero before
	// they are stored into recursive filter state.
	Flush(x T) T
}
