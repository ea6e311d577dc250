package sim

import "github.com/san-kum/nbodysim/internal/physics"

// JulianYear is one Julian year in seconds. Runs never advance past it.
const JulianYear = 31557600.0

// Metric accumulates a scalar over the course of a run.
type Metric interface {
	Name() string
	Observe(sys *physics.System, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(sys *physics.System, step int, t float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(sys *physics.System, step int, t float64)

func (f ObserverFunc) OnStep(sys *physics.System, step int, t float64) { f(sys, step, t) }

type Config struct {
	// Duration is the requested simulated time T in seconds.
	Duration float64
	// Dt is the nominal step size in seconds.
	Dt float64
	// Limit caps the simulated time. The final step is shortened so the
	// clock lands exactly on it. Zero means JulianYear.
	Limit float64
	// RecordEvery keeps a snapshot every n steps. Zero disables recording;
	// the initial and final states are always kept when enabled.
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Duration:      JulianYear,
		Dt:            25000,
		Limit:         JulianYear,
		ValidateState: true,
	}
}

// Sample is a recorded point on the trajectory.
type Sample struct {
	Step int
	Time float64
	physics.Snapshot
}

type Result struct {
	Samples     []Sample
	Metrics     map[string]float64
	StepsTaken  int
	Elapsed     float64
	EnergyDrift float64
}
