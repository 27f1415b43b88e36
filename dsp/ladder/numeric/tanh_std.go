//go:build !fastmath

package numeric

import "math"

// tanh64 computes tanh(x) using the standard library.
func tanh64(x float64) float64 {
	return math.Tanh(x)
}
