// Package physics implements the gravitational N-body model.
//
// The package provides:
//
//   - [Body]: a point mass with position, velocity and an opaque asset id
//   - [System]: an ordered set of bodies advanced with [System.Step]
//   - [Load] and [Encoder]: the plain-text persistence format
//
// # Integration
//
// [System.Step] uses semi-implicit Euler. Forces are computed once per
// unordered pair and applied with opposite signs, then each body's velocity
// is updated before its position:
//
//	sys, err := physics.Load(os.Stdin)
//	if err != nil {
//	    return err
//	}
//	for t := 0.0; t < T; t += dt {
//	    sys.Step(dt)
//	}
//	sys.WriteTo(os.Stdout)
//
// # Coincident Bodies
//
// By default two bodies at the same position produce NaN forces, matching
// the plain inverse-square law. Use [WithMinSeparation] to clamp the pair
// distance instead.
package physics
