package ladder

import (
	"math"

	"github.com/cwbudde/algo-ladder/dsp/ladder/numeric"
)

// nlConsts caches every model constant in backend representation so the
// per-sample path never converts from float64.
type nlConsts[T any] struct {
	zero, one, half, quarter T
	two, four, six, eight    T

	// envelope-to-cutoff mapping
	envScale, envOffset, inv127, envMax T

	// cutoff polynomial, exp-segment approximation raised to the 32nd
	// power by repeated squaring
	fcP0, fcP1, fcP2, fcP3 T

	// resonance scaling / feedback compensation polynomials
	rsQuad, rsCubicBias, rsLinear       T
	fbBase, fbC0, fbC1, fbC2            T
	inScaleBase, inScaleGain            T
	resTargetGain, resFloor             T

	// feedback saturator with one-sample memory
	satGain, satMemory T

	// per-stage couplings
	stageBleed T // 0.3 inter-stage state bleed
	cubicThird T // cubic soft-clip coefficient

	noiseScale T

	// LP24 output combination weights
	lpNew, lpOld, lpFb T
}

func newNLConsts[T any, O numeric.Ops[T]](ops O) nlConsts[T] {
	return nlConsts[T]{
		zero:    ops.FromFloat(0),
		one:     ops.FromFloat(1),
		half:    ops.FromFloat(0.5),
		quarter: ops.FromFloat(0.25),
		two:     ops.FromFloat(2),
		four:    ops.FromFloat(4),
		six:     ops.FromFloat(6),
		eight:   ops.FromFloat(8),

		envScale:  ops.FromFloat(0.90193),
		envOffset: ops.FromFloat(7.29),
		inv127:    ops.FromFloat(1.0 / 127.0),
		envMax:    ops.FromFloat(0.99),

		fcP0: ops.FromFloat(0.99999636),
		fcP1: ops.FromFloat(0.031261316),
		fcP2: ops.FromFloat(0.00048274797),
		fcP3: ops.FromFloat(5.949053e-06),

		rsQuad:      ops.FromFloat(0.3),
		rsCubicBias: ops.FromFloat(-0.74375),
		rsLinear:    ops.FromFloat(1.25),

		fbBase: ops.FromFloat(1.4),
		fbC0:   ops.FromFloat(0.108),
		fbC1:   ops.FromFloat(-0.164),
		fbC2:   ops.FromFloat(-0.069),

		inScaleBase: ops.FromFloat(0.18),
		inScaleGain: ops.FromFloat(0.25),

		resTargetGain: ops.FromFloat(1.05),
		resFloor:      ops.FromFloat(1e-05),

		satGain:   ops.FromFloat(0.062),
		satMemory: ops.FromFloat(0.993),

		stageBleed: ops.FromFloat(0.3),
		cubicThird: ops.FromFloat(0.3333333),

		noiseScale: ops.FromFloat(1e-11),

		lpNew: ops.FromFloat(0.19),
		lpOld: ops.FromFloat(0.57),
		lpFb:  ops.FromFloat(0.52),
	}
}

// nlCore is the backend-generic dual-iteration nonlinear ladder. The
// feedback term depends on the current sample's own output; instead of
// solving the implicit equation, the model runs two sequential passes per
// sample: pass 1 approximates the feedback from the previous sample's
// history, pass 2 recomputes it from the just-produced provisional values
// and yields the stored state.
type nlCore[T any, O numeric.Ops[T]] struct {
	ops O
	k   nlConsts[T]

	// sample-rate derived scaling: freqScale = sqrt(clamp(12.5/fs,
	// 1e-4, 1)), warpFactor = -log(freqScale)
	freqScale  T
	warpFactor T

	// smoothed control state
	cutoff  T
	resCoef T

	// history registers
	prevInput T
	stage     [4]T
	sat       T
	delayed4  T
	comb1     T
	comb2     T
}

func (c *nlCore[T, O]) init(sampleRate float64) {
	c.k = newNLConsts[T, O](c.ops)
	c.setSampleRate(sampleRate)
	c.reset()
}

func (c *nlCore[T, O]) setSampleRate(sampleRate float64) {
	scale := math.Sqrt(math.Min(1.0, math.Max(0.0001, 12.5/sampleRate)))
	c.freqScale = c.ops.FromFloat(scale)
	c.warpFactor = c.ops.FromFloat(-math.Log(scale))
}

func (c *nlCore[T, O]) reset() {
	var zero T

	c.prevInput = zero
	c.resCoef = zero
	c.sat = zero
	c.delayed4 = zero
	c.comb1 = zero
	c.comb2 = zero

	for i := range c.stage {
		c.stage[i] = zero
	}

	// the smoothed cutoff starts fully open, as at construction
	c.cutoff = c.k.one
}

// process runs both iteration passes and returns the output selected by
// mode. Unknown modes select the default low-pass combination.
//
//nolint:funlen,cyclop
func (c *nlCore[T, O]) process(input, envelope, resonance, noise T, mode NonlinearMode) T {
	ops := c.ops
	k := &c.k

	// envelope to normalized cutoff: linear MIDI-style scaling, warp
	// compensation, then a cubic exp-segment polynomial raised to the
	// 32nd power by repeated squaring
	env := ops.Mul(ops.MulAdd(envelope, k.envScale, k.envOffset), k.inv127)
	env = ops.Min(ops.Max(env, k.zero), k.envMax)
	warped := ops.Mul(env, c.warpFactor)

	poly := ops.MulAdd(warped, k.fcP3, k.fcP2)
	poly = ops.MulAdd(warped, poly, k.fcP1)
	poly = ops.MulAdd(warped, poly, k.fcP0)

	sq := ops.Mul(poly, poly)     // ^2
	sq = ops.Mul(sq, sq)          // ^4
	sq = ops.Mul(sq, sq)          // ^8
	sq = ops.Mul(sq, sq)          // ^16
	sq = ops.Mul(sq, sq)          // ^32
	target := ops.Mul(sq, c.freqScale)

	// one-pole smoothing against zipper noise
	fc := ops.Flush(ops.MulAdd(ops.Sub(target, c.cutoff), k.half, c.cutoff))

	// frequency-dependent resonance compensation so perceived resonance
	// stays consistent across the cutoff range
	fc2 := ops.Mul(fc, fc)
	comp := ops.Mul(fc2, ops.Sub(k.one, c.resCoef))
	compRes := ops.MulAdd(comp, comp, fc2)

	rs := ops.MulAdd(k.rsQuad, compRes, k.rsCubicBias)
	rs = ops.MulAdd(rs, compRes, k.rsLinear)
	rs = ops.Mul(rs, compRes)

	fbPoly := ops.MulAdd(k.fbC2, rs, k.fbC1)
	fbPoly = ops.MulAdd(fbPoly, rs, k.fbC0)
	fbPoly = ops.Mul(ops.MulAdd(fbPoly, rs, k.fbBase), rs)
	fbStrength := ops.Mul(c.resCoef, fbPoly)

	inScale := ops.MulAdd(ops.Mul(fbStrength, fbStrength), k.inScaleGain, k.inScaleBase)
	invRS := ops.Sub(k.one, rs)

	targetRes := ops.Mul(k.resTargetGain, ops.Min(k.one, ops.Max(k.resFloor, resonance)))
	resCoef := ops.Flush(ops.MulAdd(ops.Sub(targetRes, c.resCoef), k.quarter, c.resCoef))

	// pass 1: feedback approximated from the previous sample's history
	noisy := ops.MulAdd(k.noiseScale, noise, input)
	prev := ops.Flush(c.prevInput)
	fbSignal := ops.Sub(ops.Mul(prev, inScale), ops.Mul(fbStrength, c.comb1))

	curSat := ops.Clamp1(ops.MulAdd(ops.Mul(k.satGain, fbSignal), fbSignal, ops.Mul(k.satMemory, c.sat)))
	satCurve := ops.Add(ops.Sub(k.one, curSat), ops.Mul(ops.Mul(k.half, curSat), curSat))
	satFb := ops.Mul(fbSignal, satCurve)

	s1In := ops.MulAdd(satFb, rs, ops.Mul(invRS, c.stage[0]))
	s1InBleed := ops.Mul(s1In, k.stageBleed)
	s1Bleed := ops.Mul(c.stage[0], k.stageBleed)
	s3Bleed := ops.Mul(c.stage[2], k.stageBleed)
	s4Bleed := ops.Mul(c.stage[3], k.stageBleed)

	s2In := ops.Add(s1In, s1Bleed)
	s2Out := ops.MulAdd(s2In, rs, ops.Mul(invRS, c.stage[1]))
	s2OutBleed := ops.Mul(s2Out, k.stageBleed)
	s2Bleed := ops.Mul(c.stage[1], k.stageBleed)

	// the third section soft-clips with a cubic rather than the smooth
	// quadratic curve used in the feedback path
	s3In := ops.Clamp1(ops.Add(s2Out, s2Bleed))
	cubic := ops.Mul(s3In, ops.Sub(k.one, ops.Mul(ops.Mul(k.cubicThird, s3In), s3In)))
	s3Out := ops.MulAdd(cubic, rs, ops.Mul(invRS, c.stage[2]))

	s4In := ops.Add(s3Out, s3Bleed)
	s4Out := ops.MulAdd(s4In, rs, ops.Mul(invRS, c.stage[3]))
	s4Final := ops.Add(s4Out, s4Bleed)

	// pass 2: feedback recomputed from the noise-injected current input
	// and the provisional pass-1 values
	impFb := ops.Sub(ops.Mul(noisy, inScale), ops.Mul(fbStrength, s4Final))
	updSat := ops.Clamp1(ops.MulAdd(ops.Mul(k.satGain, impFb), impFb, ops.Mul(k.satMemory, curSat)))
	updCurve := ops.Add(ops.Sub(k.one, updSat), ops.Mul(ops.Mul(k.half, updSat), updSat))
	updFb := ops.Mul(impFb, updCurve)

	u1 := ops.MulAdd(updFb, rs, ops.Mul(invRS, s1In))
	u1w := ops.Add(u1, s1InBleed)
	u2 := ops.MulAdd(u1w, rs, ops.Mul(invRS, s2Out))
	u2w := ops.Add(u2, s2OutBleed)

	stageDiff := ops.Mul(k.two, ops.Sub(u1w, u2w))

	u2wC := ops.Clamp1(u2w)
	updCubic := ops.Mul(u2wC, ops.Sub(k.one, ops.Mul(ops.Mul(k.cubicThird, u2wC), u2wC)))
	u3 := ops.MulAdd(updCubic, rs, ops.Mul(invRS, s3Out))

	stageSum := ops.Add(ops.Sub(satFb, ops.Mul(k.two, u1w)), u2w)

	s4OutBleed := ops.Mul(s4Out, k.stageBleed)
	s3OutBleed := ops.Mul(s3Out, k.stageBleed)
	u3w := ops.Add(u3, s3OutBleed)
	u4 := ops.MulAdd(u3w, rs, ops.Mul(invRS, s4Out))
	u4w := ops.Add(u4, s4OutBleed)

	lp24 := ops.Sub(
		ops.Add(
			ops.Mul(k.lpNew, ops.Add(u4w, c.delayed4)),
			ops.Mul(k.lpOld, ops.Add(s4Final, c.comb1)),
		),
		ops.Mul(k.lpFb, c.comb2),
	)

	var out T

	switch mode {
	case NonlinearHP24:
		out = ops.Add(
			ops.Add(ops.Sub(satFb, ops.Mul(k.four, ops.Add(u1w, u3w))), ops.Mul(k.six, u2w)),
			lp24,
		)
	case NonlinearBP24:
		out = ops.Sub(ops.Mul(k.four, ops.Add(u2w, lp24)), ops.Mul(k.eight, u3w))
	case NonlinearLP18:
		out = u2w
	case NonlinearBP18:
		out = stageSum
	case NonlinearHP6:
		out = stageDiff
	default:
		out = lp24
	}

	c.prevInput = ops.Flush(noisy)
	c.cutoff = fc
	c.resCoef = resCoef
	c.stage[0] = ops.Flush(u1)
	c.stage[1] = ops.Flush(u2)
	c.stage[2] = ops.Flush(u3)
	c.stage[3] = ops.Flush(u4)
	c.sat = ops.Flush(updSat)
	c.delayed4 = ops.Flush(s4Final)
	c.comb1 = ops.Flush(u4w)
	c.comb2 = ops.Flush(lp24)

	return out
}
