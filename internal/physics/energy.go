package physics

import "math"

// Energy returns total kinetic plus gravitational potential energy in joules.
func (s *System) Energy() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.bodies)
	ke := 0.0
	pe := 0.0
	for i := 0; i < n; i++ {
		bi := s.bodies[i]
		ke += 0.5 * bi.mass * bi.vel.Dot(bi.vel)

		for j := i + 1; j < n; j++ {
			bj := s.bodies[j]
			r := bj.pos.Sub(bi.pos).Norm()
			r = math.Max(r, s.minSep)
			pe -= G * bi.mass * bj.mass / r
		}
	}
	return ke + pe
}

// Momentum returns the total linear momentum in kg·m/s.
func (s *System) Momentum() Vec2 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var p Vec2
	for _, b := range s.bodies {
		p = p.Add(b.vel.Scale(b.mass))
	}
	return p
}

// AngularMomentum returns the z component of total angular momentum about
// the origin.
func (s *System) AngularMomentum() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	L := 0.0
	for _, b := range s.bodies {
		L += b.mass * b.pos.Cross(b.vel)
	}
	return L
}
