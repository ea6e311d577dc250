// Package analysis characterises recorded and live n-body runs.
//
//   - [PowerSpectrum] and [DominantPeriod]: orbital periods from sampled
//     distances
//   - [LyapunovExponent]: sensitivity to initial conditions via
//     trajectory separation
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(sys, dt, duration, 1e3)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
