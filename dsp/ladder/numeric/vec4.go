package numeric

import "math"

// Lanes is the width of the vector backend.
const Lanes = 4

// V4 is a group of four independent float32 channel lanes processed in
// lock-step. There is no inter-lane coupling anywhere in the filter math;
// the grouping exists purely so one process call advances four voices.
type V4 [Lanes]float32

// Splat broadcasts v across all four lanes.
func Splat(v float32) V4 {
	return V4{v, v, v, v}
}

// Vec4 is the four-lane vector backend.
type Vec4 struct{}

func (Vec4) FromFloat(v float64) V4 {
	return Splat(float32(v))
}

func (Vec4) Add(a, b V4) V4 {
	return V4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

func (Vec4) Sub(a, b V4) V4 {
	return V4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}

func (Vec4) Mul(a, b V4) V4 {
	return V4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

func (Vec4) MulAdd(a, b, c V4) V4 {
	return V4{a[0]*b[0] + c[0], a[1]*b[1] + c[1], a[2]*b[2] + c[2], a[3]*b[3] + c[3]}
}

// Recip computes 1/x per lane from a bit-level seed refined by two
// Newton-Raphson iterations, mirroring hardware reciprocal-estimate
// instructions. Accuracy after refinement is roughly 24 bits.
func (Vec4) Recip(x V4) V4 {
	return V4{recip32(x[0]), recip32(x[1]), recip32(x[2]), recip32(x[3])}
}

// Saturate applies the rational tanh approximation x(27+x^2)/(27+9x^2),
// with the division evaluated through Recip so the vector path never
// issues a native divide.
func (v Vec4) Saturate(x V4) V4 {
	var out V4

	for i, xi := range x {
		if xi > 3 {
			out[i] = 1
			continue
		}

		if xi < -3 {
			out[i] = -1
			continue
		}

		x2 := xi * xi
		out[i] = xi * (27 + x2) * recip32(27+9*x2)
	}

	return out
}

func (Vec4) Clamp1(x V4) V4 {
	var out V4

	for i, xi := range x {
		switch {
		case xi > 1:
			out[i] = 1
		case xi < -1:
			out[i] = -1
		default:
			out[i] = xi
		}
	}

	return out
}

func (Vec4) Min(a, b V4) V4 {
	var out V4

	for i := range a {
		if a[i] < b[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}

	return out
}

func (Vec4) Max(a, b V4) V4 {
	var out V4

	for i := range a {
		if a[i] > b[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}

	return out
}

func (Vec4) Flush(x V4) V4 {
	var out V4

	for i, xi := range x {
		if xi > -flushThreshold32 && xi < flushThreshold32 {
			out[i] = 0
		} else {
			out[i] = xi
		}
	}

	return out
}

// reciprocal seed constant, see the classic exponent-flip derivation for
// 1/x initial estimates.
const recipSeed = 0x7EF311C3

// recip32 returns an approximate 1/x for finite nonzero x. The seed is
// obtained by subtracting the operand bits from a magic constant, then
// refined by two Newton-Raphson steps r' = r*(2 - x*r).
func recip32(x float32) float32 {
	neg := math.Signbit(float64(x))
	if neg {
		x = -x
	}

	r := math.Float32frombits(recipSeed - math.Float32bits(x))
	r *= 2 - x*r
	r *= 2 - x*r

	if neg {
		return -r
	}

	return r
}
