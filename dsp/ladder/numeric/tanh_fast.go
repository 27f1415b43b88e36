//go:build fastmath

package numeric

import (
	"github.com/meko-christian/algo-approx"
)

// tanh64 computes tanh(x) using fast exponential approximation.
// Uses the identity: tanh(x) = 1 - 2/(e^(2x) + 1)
//
// FastExp loses accuracy for large arguments, but tanh saturates long
// before that matters; |x| >= 9 is clamped to the asymptote.
func tanh64(x float64) float64 {
	if x >= 9 {
		return 1
	}

	if x <= -9 {
		return -1
	}

	return 1 - 2/(approx.FastExp(2*x)+1)
}
