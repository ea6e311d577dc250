package analysis

import (
	"errors"
	"math"

	"github.com/san-kum/nbodysim/internal/physics"
)

var ErrNoBodies = errors.New("analysis: system has no bodies")

// renormalizeAt bounds how far the shadow trajectory may drift, as a
// multiple of the initial perturbation, before it is pulled back.
const renormalizeAt = 1e3

// LyapunovExponent estimates the largest Lyapunov exponent of sys using the
// trajectory separation method. A shadow copy has its first body displaced
// by perturbation metres along x, both are stepped with dt until duration,
// and the mean log growth of the position-space separation is returned in
// 1/s. sys itself is not modified.
func LyapunovExponent(sys *physics.System, dt, duration, perturbation float64) (float64, error) {
	snap := sys.Snapshot()
	if len(snap.Bodies) == 0 {
		return 0, ErrNoBodies
	}
	if !(dt > 0) || !(duration > 0) || !(perturbation > 0) {
		return 0, errors.New("analysis: dt, duration and perturbation must be positive")
	}

	opts := []physics.Option{physics.WithMinSeparation(sys.MinSeparation())}
	ref := physics.New(snap.Radius, snap.Bodies, opts...)

	shadowBodies, err := displace(snap.Bodies, perturbation)
	if err != nil {
		return 0, err
	}
	shadow := physics.New(snap.Radius, shadowBodies, opts...)

	d0 := perturbation
	sumLog := 0.0
	t := 0.0

	for t < duration {
		ref.Step(dt)
		shadow.Step(dt)
		t += dt

		sep := separation(ref.Snapshot(), shadow.Snapshot())
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}
		if sep > d0*renormalizeAt {
			sumLog += math.Log(sep / d0)
			shadow, err = rescale(ref.Snapshot(), shadow.Snapshot(), d0/sep, opts)
			if err != nil {
				return 0, err
			}
		} else if t >= duration && sep > 0 {
			sumLog += math.Log(sep / d0)
		}
	}

	if t == 0 {
		return 0, nil
	}
	return sumLog / t, nil
}

func displace(bodies []physics.Body, dx float64) ([]physics.Body, error) {
	out := make([]physics.Body, len(bodies))
	copy(out, bodies)
	b := bodies[0]
	p, v := b.Position(), b.Velocity()
	moved, err := physics.NewBody(p.X+dx, p.Y, v.X, v.Y, b.Mass(), b.Asset())
	if err != nil {
		return nil, err
	}
	out[0] = moved
	return out, nil
}

func separation(a, b physics.Snapshot) float64 {
	sum := 0.0
	for i := range a.Bodies {
		d := b.Bodies[i].Position().Sub(a.Bodies[i].Position())
		sum += d.Dot(d)
	}
	return math.Sqrt(sum)
}

// rescale pulls every shadow body's position and velocity back toward the
// reference by factor.
func rescale(ref, shadow physics.Snapshot, factor float64, opts []physics.Option) (*physics.System, error) {
	bodies := make([]physics.Body, len(ref.Bodies))
	for i, r := range ref.Bodies {
		s := shadow.Bodies[i]
		p := r.Position().Add(s.Position().Sub(r.Position()).Scale(factor))
		v := r.Velocity().Add(s.Velocity().Sub(r.Velocity()).Scale(factor))
		b, err := physics.NewBody(p.X, p.Y, v.X, v.Y, s.Mass(), s.Asset())
		if err != nil {
			return nil, err
		}
		bodies[i] = b
	}
	return physics.New(shadow.Radius, bodies, opts...), nil
}
