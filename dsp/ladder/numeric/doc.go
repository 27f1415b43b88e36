// Package numeric supplies the arithmetic substrates for the ladder filter
// cores. A single generic algorithm in dsp/ladder is instantiated over one
// of the Ops implementations in this package:
//
//   - Float64 / Float32: direct scalar IEEE-754 evaluation.
//   - Vec4: four independent float32 lanes advancing in lock-step, with
//     division replaced by a reciprocal estimate refined by two
//     Newton-Raphson iterations.
//   - Q16Ops: Q16.16 fixed point, every multiply renormalized by a 16-bit
//     right shift and the smooth saturation curve replaced by a quadratic
//     polynomial.
//
// All Ops implementations are zero-size value types; methods never allocate
// and never branch on shared state, so they are safe for real-time audio
// threads.
package numeric
