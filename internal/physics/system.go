package physics

import (
	"fmt"
	"math"
	"sync"
)

// G is the gravitational constant in m^3 kg^-1 s^-2.
const G = 6.67e-11

// System is an ordered set of bodies advanced together in time. It owns its
// bodies exclusively; callers only ever receive copies.
//
// A System is safe for concurrent use: Step holds the write lock for the
// whole force and update pass, so readers never observe a half-stepped state.
type System struct {
	mu     sync.RWMutex
	bodies []Body
	radius float64
	minSep float64
	fx, fy []float64
}

// Option configures a System.
type Option func(*System)

// WithMinSeparation clamps the pair distance used in the force law to d.
// With the default of zero, coincident bodies produce non-finite forces.
func WithMinSeparation(d float64) Option {
	return func(s *System) {
		if d > 0 {
			s.minSep = d
		}
	}
}

// New returns a System holding copies of bodies. radius is used only for
// display scaling.
func New(radius float64, bodies []Body, opts ...Option) *System {
	s := &System{
		bodies: make([]Body, len(bodies)),
		radius: radius,
	}
	copy(s.bodies, bodies)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of bodies.
func (s *System) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bodies)
}

// Radius returns the world radius.
func (s *System) Radius() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.radius
}

// MinSeparation returns the configured distance floor, zero if unset.
func (s *System) MinSeparation() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minSep
}

// BodyAt returns a copy of the i-th body.
func (s *System) BodyAt(i int) (Body, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.bodies) {
		return Body{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.bodies))
	}
	return s.bodies[i], nil
}

// Forces returns the net gravitational force on every body at the current
// positions, without advancing the system.
func (s *System) Forces() []Vec2 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.bodies)
	fx := make([]float64, n)
	fy := make([]float64, n)
	s.accumulate(fx, fy)
	out := make([]Vec2, n)
	for i := range out {
		out[i] = Vec2{fx[i], fy[i]}
	}
	return out
}

// Step advances every body by dt using semi-implicit Euler: velocities are
// updated from the forces at the current positions, then positions move with
// the updated velocities.
func (s *System) Step(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.bodies)
	if n == 0 {
		return
	}
	if cap(s.fx) < n {
		s.fx = make([]float64, n)
		s.fy = make([]float64, n)
	}
	fx, fy := s.fx[:n], s.fy[:n]
	for i := range fx {
		fx[i], fy[i] = 0, 0
	}

	s.accumulate(fx, fy)

	for i := range s.bodies {
		b := &s.bodies[i]
		b.ApplyAcceleration(fx[i]/b.mass, fy[i]/b.mass, dt)
		b.AdvancePosition(dt)
	}
}

// accumulate adds the pairwise forces into fx, fy. Each pair is visited once
// and its contribution is applied with opposite signs, so the forces sum to
// zero exactly.
func (s *System) accumulate(fx, fy []float64) {
	n := len(s.bodies)
	for i := 0; i < n; i++ {
		bi := &s.bodies[i]
		for j := i + 1; j < n; j++ {
			bj := &s.bodies[j]

			dx := bj.pos.X - bi.pos.X
			dy := bj.pos.Y - bi.pos.Y
			r := math.Sqrt(dx*dx + dy*dy)
			if r < s.minSep {
				r = s.minSep
			}

			f := G * bi.mass * bj.mass / (r * r)
			fxij := f * dx / r
			fyij := f * dy / r

			fx[i] += fxij
			fy[i] += fyij
			fx[j] -= fxij
			fy[j] -= fyij
		}
	}
}

// Snapshot is a point-in-time copy of a System for presentation code.
type Snapshot struct {
	Radius float64
	Bodies []Body
}

// Snapshot copies the radius and all bodies under a single read lock.
func (s *System) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bodies := make([]Body, len(s.bodies))
	copy(bodies, s.bodies)
	return Snapshot{Radius: s.radius, Bodies: bodies}
}

// Valid reports whether every position and velocity is finite.
func (s *System) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bodies {
		for _, v := range [...]float64{b.pos.X, b.pos.Y, b.vel.X, b.vel.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
