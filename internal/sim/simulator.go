package sim

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/nbodysim/internal/physics"
)

type Simulator struct {
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    log.New(io.Discard),
	}
}

func (s *Simulator) AddMetric(m Metric)           { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)       { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(logger *log.Logger) { s.logger = logger }

// Run steps sys until the simulated clock reaches min(cfg.Duration, limit).
// The final step is shortened only when it would cross the limit, so a run
// may end up to one dt past Duration but never past the limit.
func (s *Simulator) Run(ctx context.Context, sys *physics.System, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = JulianYear
	}
	end := math.Min(cfg.Duration, limit)

	result := &Result{
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(sys, 0)
	}

	t := 0.0
	if cfg.RecordEvery > 0 {
		result.Samples = append(result.Samples, Sample{Step: 0, Time: t, Snapshot: sys.Snapshot()})
	}

	initialEnergy := sys.Energy()
	s.logger.Debug("run started", "bodies", sys.Len(), "duration", end, "dt", cfg.Dt)

	step := 0
	for t < end {
		select {
		case <-ctx.Done():
			s.finish(result, sys, initialEnergy, t)
			return result, ctx.Err()
		default:
		}

		h := cfg.Dt
		clipped := false
		if remaining := limit - t; h >= remaining {
			h = remaining
			clipped = true
		}

		sys.Step(h)
		step++
		if clipped {
			t = limit
		} else {
			t += h
		}
		result.StepsTaken = step

		if cfg.ValidateState && !sys.Valid() {
			s.finish(result, sys, initialEnergy, t)
			return result, &StepError{Step: step, Time: t, Wrapped: ErrNonFinite}
		}

		for _, m := range s.metrics {
			m.Observe(sys, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(sys, step, t)
		}

		if cfg.RecordEvery > 0 && step%cfg.RecordEvery == 0 {
			result.Samples = append(result.Samples, Sample{Step: step, Time: t, Snapshot: sys.Snapshot()})
		}
	}

	if cfg.RecordEvery > 0 && step%cfg.RecordEvery != 0 {
		result.Samples = append(result.Samples, Sample{Step: step, Time: t, Snapshot: sys.Snapshot()})
	}

	s.finish(result, sys, initialEnergy, t)
	s.logger.Debug("run finished", "steps", step, "elapsed", FormatElapsed(t), "energy_drift", result.EnergyDrift)
	return result, nil
}

func (s *Simulator) finish(result *Result, sys *physics.System, initialEnergy, t float64) {
	result.Elapsed = t

	finalEnergy := sys.Energy()
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("%w: record interval must not be negative, got %d", ErrInvalidConfig, cfg.RecordEvery)
	}
	return nil
}
