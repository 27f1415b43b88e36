package ladder

import (
	"github.com/cwbudde/algo-ladder/dsp/ladder/numeric"
)

// zdfCore is the backend-generic ZDF ladder: four cascaded trapezoidal
// integrator stages with the resonance loop closed in the same sample.
// Each stage output is linear in its input, y = alpha*u + (1-alpha)*z,
// so the cascade output splits into alpha^4*u0 plus the zero-input
// response S of the stored integrator states; the feedback equation
// u0 = x - k*y4 then solves in closed form. All backends share this
// exact topology; only the arithmetic substrate differs.
type zdfCore[T any, O numeric.Ops[T]] struct {
	ops O

	// alpha is the premultiplied stage coefficient G/(1+G), derived from
	// the warp factor G = tan(pi*fc/fs). beta is 1-alpha; the alpha
	// powers carry the stage states through the cascade closed form.
	alpha  T
	beta   T
	alpha2 T
	alpha3 T
	alpha4 T
	// k is the feedback gain, resonance scaled by 4 to compensate the
	// cumulative 24 dB attenuation of the four stages. fbNorm is the
	// feedback normalizer 1/(1 + k*alpha^4), taken through the backend's
	// Recip strategy at coefficient-update time.
	k      T
	fbNorm T
	// drive scales the feedback sample before tanh saturation. driveOn
	// caches the bypass decision so clean settings skip the saturator.
	drive   T
	driveOn bool

	mode Mode

	stage [4]T
	z     [4]T
}

// setWarp derives alpha and its cascade powers from the scalar warp
// factor G, in float64 so low-cutoff powers survive quantization in the
// fixed backend. Vector wrappers with per-lane cutoff pack their own
// alpha via setAlpha instead.
func (c *zdfCore[T, O]) setWarp(g float64) {
	a := g / (1 + g)

	c.alpha = c.ops.FromFloat(a)
	c.beta = c.ops.FromFloat(1 - a)
	c.alpha2 = c.ops.FromFloat(a * a)
	c.alpha3 = c.ops.FromFloat(a * a * a)
	c.alpha4 = c.ops.FromFloat(a * a * a * a)
	c.refreshFeedback()
}

func (c *zdfCore[T, O]) setAlpha(alpha T) {
	ops := c.ops

	c.alpha = alpha
	c.beta = ops.Sub(ops.FromFloat(1), alpha)
	c.alpha2 = ops.Mul(alpha, alpha)
	c.alpha3 = ops.Mul(c.alpha2, alpha)
	c.alpha4 = ops.Mul(c.alpha2, c.alpha2)
	c.refreshFeedback()
}

func (c *zdfCore[T, O]) setFeedbackGain(k T) {
	c.k = k
	c.refreshFeedback()
}

func (c *zdfCore[T, O]) refreshFeedback() {
	ops := c.ops
	c.fbNorm = ops.Recip(ops.Add(ops.FromFloat(1), ops.Mul(c.k, c.alpha4)))
}

func (c *zdfCore[T, O]) setDrive(drive T, on bool) {
	c.drive = drive
	c.driveOn = on
}

func (c *zdfCore[T, O]) reset() {
	var zero T

	for i := range c.stage {
		c.stage[i] = zero
		c.z[i] = zero
	}
}

// process advances the ladder by one sample and returns the output for
// the current mode. O(1), allocation free.
func (c *zdfCore[T, O]) process(x T) T {
	ops := c.ops

	// Zero-input response of the cascade, tapped from the current
	// integrator states so the loop closes without a unit delay.
	s := ops.Mul(c.beta, ops.MulAdd(c.alpha3, c.z[0],
		ops.MulAdd(c.alpha2, c.z[1],
			ops.MulAdd(c.alpha, c.z[2], c.z[3]))))

	u := ops.Mul(ops.Sub(x, ops.Mul(c.k, s)), c.fbNorm)
	if c.driveOn {
		// Saturation breaks the closed form; the linear solution
		// predicts the feedback sample and one corrector pass applies
		// the saturated version.
		y4 := ops.MulAdd(c.alpha4, u, s)
		fb := ops.Saturate(ops.Mul(y4, c.drive))
		u = ops.Sub(x, ops.Mul(c.k, fb))
	}

	for i := range c.stage {
		v := ops.Mul(ops.Sub(u, c.z[i]), c.alpha)
		y := ops.Flush(ops.Add(v, c.z[i]))
		c.stage[i] = y
		c.z[i] = ops.Flush(ops.Add(y, v))
		u = y
	}

	switch c.mode {
	case ModeBP12:
		return ops.Sub(c.stage[2], c.stage[3])
	case ModeHP24:
		return ops.Sub(x, c.stage[3])
	default:
		return c.stage[3]
	}
}
