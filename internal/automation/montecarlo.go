package automation

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

// MonteCarloConfig defines Monte Carlo simulation parameters.
type MonteCarloConfig struct {
	// Perturbation is the largest relative change applied to each position
	// and velocity component, scaled by that body's position or speed.
	Perturbation float64
	NumTrials    int
	Sim          sim.Config
	Seed         int64
	// Containment is the multiple of the world radius a body may reach
	// before the trial counts as unstable. Zero means 1.
	Containment float64
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	TrialID int
	Initial physics.Snapshot
	Final   physics.Snapshot
	Stable  bool
	Err     error
}

// RunMonteCarlo runs cfg.NumTrials randomly perturbed copies of base. A
// trial that goes non-finite is recorded as unstable rather than aborting
// the batch.
func RunMonteCarlo(ctx context.Context, base physics.Snapshot, cfg MonteCarloConfig, opts ...physics.Option) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	limit := base.Radius
	if cfg.Containment > 0 {
		limit *= cfg.Containment
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		bodies, err := perturb(base.Bodies, cfg.Perturbation, rng)
		if err != nil {
			return results, err
		}
		sys := physics.New(base.Radius, bodies, opts...)
		initial := sys.Snapshot()

		_, err = sim.New().Run(ctx, sys, cfg.Sim)
		var stepErr *sim.StepError
		if err != nil && !errors.As(err, &stepErr) {
			return results, err
		}

		final := sys.Snapshot()
		results = append(results, MonteCarloResult{
			TrialID: trial,
			Initial: initial,
			Final:   final,
			Stable:  err == nil && contained(final, limit),
			Err:     err,
		})
	}

	return results, nil
}

func perturb(bodies []physics.Body, amount float64, rng *rand.Rand) ([]physics.Body, error) {
	out := make([]physics.Body, len(bodies))
	jitter := func(scale float64) float64 {
		return (rng.Float64() - 0.5) * 2 * amount * scale
	}
	for i, b := range bodies {
		p, v := b.Position(), b.Velocity()
		pn, vn := p.Norm(), v.Norm()
		nb, err := physics.NewBody(
			p.X+jitter(pn), p.Y+jitter(pn),
			v.X+jitter(vn), v.Y+jitter(vn),
			b.Mass(), b.Asset())
		if err != nil {
			return nil, err
		}
		out[i] = nb
	}
	return out, nil
}

func contained(snap physics.Snapshot, limit float64) bool {
	for _, b := range snap.Bodies {
		if b.Position().Norm() > limit {
			return false
		}
	}
	return true
}

// MonteCarloStats computes summary statistics from Monte Carlo results.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
