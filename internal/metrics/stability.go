package metrics

import (
	"github.com/san-kum/nbodysim/internal/physics"
)

// Containment is the fraction of observations in which every body stayed
// within factor times the world radius of the origin.
type Containment struct {
	name       string
	factor     float64
	violations int
	samples    int
}

func NewContainment(factor float64) *Containment {
	return &Containment{
		name:   "containment",
		factor: factor,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(sys *physics.System, t float64) {
	c.samples++
	snap := sys.Snapshot()
	limit := snap.Radius * c.factor
	for _, b := range snap.Bodies {
		if b.Position().Norm() > limit {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

// ClosestApproach records the smallest distance seen between any two bodies.
type ClosestApproach struct {
	name string
	min  float64
	seen bool
}

func NewClosestApproach() *ClosestApproach {
	return &ClosestApproach{name: "closest_approach"}
}

func (c *ClosestApproach) Name() string { return c.name }

func (c *ClosestApproach) Observe(sys *physics.System, t float64) {
	bodies := sys.Snapshot().Bodies
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			d := bodies[j].Position().Sub(bodies[i].Position()).Norm()
			if !c.seen || d < c.min {
				c.min = d
				c.seen = true
			}
		}
	}
}

// Value is zero when fewer than two bodies were ever observed.
func (c *ClosestApproach) Value() float64 {
	return c.min
}

func (c *ClosestApproach) Reset() {
	c.min = 0
	c.seen = false
}

// Defaults returns the metrics reported for every run.
func Defaults() []Metric {
	return []Metric{
		NewEnergyDrift(),
		NewMomentumDrift(),
		NewContainment(1.0),
		NewClosestApproach(),
	}
}

// Metric mirrors sim.Metric so this package does not depend on the driver.
type Metric interface {
	Name() string
	Observe(sys *physics.System, t float64)
	Value() float64
	Reset()
}
