// Package ladder provides digital emulations of the four-pole resonant
// Moog transistor ladder filter.
//
// Two algorithm families are implemented:
//
//   - ZDF family (ZDF, ZDFVec4, ZDFFixed): four cascaded trapezoidal
//     (TPT) integrator stages with frequency pre-warping and optional
//     tanh-saturated feedback. Parameters are set out of band; the
//     per-sample call is ProcessSample(input).
//   - Nonlinear family (Nonlinear, NonlinearVec4): the dual-iteration
//     Huovilainen-style model with thermal-noise injection, per-stage
//     saturation and six output modes. Reflecting its dataflow-patch
//     origin, cutoff and resonance arrive as per-sample control signals:
//     ProcessSample(input, envelope, resonance, noise).
//
// Both families share one generic core each, instantiated over the
// arithmetic backends in the numeric subpackage (scalar float, four
// float32 lanes, Q16.16 fixed point), so all backends compute the same
// mathematics and agree within backend-appropriate tolerance.
//
// Parameter setters clamp out-of-range values silently and recompute
// derived coefficients eagerly; nothing in the per-sample path allocates,
// locks or reports errors. Instances are single-threaded: calls to
// setters, ProcessSample and Reset on the same instance must be
// externally serialized.
package ladder
