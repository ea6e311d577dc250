package metrics

import (
	"math"

	"github.com/san-kum/nbodysim/internal/physics"
)

// EnergyDrift tracks the largest relative change in total energy seen
// since the first observation.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(sys *physics.System, t float64) {
	energy := sys.Energy()

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the largest change in total linear momentum,
// relative to the sum of the bodies' initial momentum magnitudes.
type MomentumDrift struct {
	name     string
	initial  physics.Vec2
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(sys *physics.System, t float64) {
	p := sys.Momentum()

	if m.samples == 0 {
		m.initial = p
		for _, b := range sys.Snapshot().Bodies {
			m.scale += b.Mass() * b.Velocity().Norm()
		}
	}
	m.samples++

	if m.scale > 0 {
		m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Norm()/m.scale)
	}
}

func (m *MomentumDrift) Value() float64 {
	return m.maxDrift
}

func (m *MomentumDrift) Reset() {
	m.initial = physics.Vec2{}
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}
