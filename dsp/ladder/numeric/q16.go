package numeric

import "math"

// Q16 is a Q16.16 fixed-point sample: 16 integer bits, 16 fractional bits.
type Q16 int32

const (
	// Q16One is the fixed-point representation of 1.0.
	Q16One Q16 = 1 << 16

	q16Shift = 16
	q16Max   = Q16(math.MaxInt32)
	q16Min   = Q16(math.MinInt32)

	// saturation knee of the quadratic soft clip, 2.0 in Q16.16
	q16SatKnee = 2 * Q16One
)

// Q16FromFloat converts v to Q16.16, clamping to the representable range.
func Q16FromFloat(v float64) Q16 {
	scaled := math.Round(v * float64(Q16One))
	if scaled >= float64(q16Max) {
		return q16Max
	}

	if scaled <= float64(q16Min) {
		return q16Min
	}

	return Q16(scaled)
}

// Float converts q back to float64.
func (q Q16) Float() float64 {
	return float64(q) / float64(Q16One)
}

// Q16Ops is the Q16.16 fixed-point backend. Every multiply widens to
// 64 bits and renormalizes with a 16-bit right shift; overflow beyond
// Q16.16 range wraps like the integer hardware it models.
type Q16Ops struct{}

func (Q16Ops) FromFloat(v float64) Q16 { return Q16FromFloat(v) }

func (Q16Ops) Add(a, b Q16) Q16 { return a + b }

func (Q16Ops) Sub(a, b Q16) Q16 { return a - b }

func (Q16Ops) Mul(a, b Q16) Q16 {
	return Q16((int64(a) * int64(b)) >> q16Shift)
}

func (o Q16Ops) MulAdd(a, b, c Q16) Q16 {
	return o.Mul(a, b) + c
}

// Recip returns 1/x in Q16.16 via 64-bit integer division. A zero operand
// returns the largest representable value instead of trapping; the callers
// only ever invert 1+G, which is >= 1.
func (Q16Ops) Recip(x Q16) Q16 {
	if x == 0 {
		return q16Max
	}

	r := (int64(1) << (2 * q16Shift)) / int64(x)
	if r > int64(q16Max) {
		return q16Max
	}

	if r < int64(q16Min) {
		return q16Min
	}

	return Q16(r)
}

// Saturate replaces the smooth tanh curve with an odd quadratic polynomial
// y = x - x*|x|/4 on |x| <= 2, flat at +-1 beyond the knee. The curve
// matches tanh slope at the origin closely enough for feedback limiting
// while using only one multiply and one shift.
func (Q16Ops) Saturate(x Q16) Q16 {
	neg := x < 0

	ax := x
	if neg {
		ax = -x
	}

	if ax >= q16SatKnee {
		if neg {
			return -Q16One
		}

		return Q16One
	}

	y := ax - Q16((int64(ax)*int64(ax))>>(q16Shift+2))
	if neg {
		return -y
	}

	return y
}

func (Q16Ops) Clamp1(x Q16) Q16 {
	if x > Q16One {
		return Q16One
	}

	if x < -Q16One {
		return -Q16One
	}

	return x
}

func (Q16Ops) Min(a, b Q16) Q16 {
	if a < b {
		return a
	}

	return b
}

func (Q16Ops) Max(a, b Q16) Q16 {
	if a > b {
		return a
	}

	return b
}

// Flush is the identity: integer state quantizes to exact zero on its own,
// there is no subnormal range to guard against.
func (Q16Ops) Flush(x Q16) Q16 { return x }
