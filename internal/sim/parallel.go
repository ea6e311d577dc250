package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/san-kum/nbodysim/internal/physics"
)

// Ensemble runs independent copies of one initial state under several
// configurations at once, one goroutine per configuration.
type Ensemble struct {
	newMetrics func() []Metric
	opts       []physics.Option
	logger     *log.Logger
}

// NewEnsemble returns an ensemble whose runs each get fresh metrics from
// newMetrics, which may be nil.
func NewEnsemble(newMetrics func() []Metric, opts ...physics.Option) *Ensemble {
	return &Ensemble{newMetrics: newMetrics, opts: opts}
}

func (e *Ensemble) SetLogger(logger *log.Logger) { e.logger = logger }

// Run simulates snap once per entry of cfgs. Results are returned in the
// order of cfgs. If any run fails the first error, in cfgs order, is
// returned alongside every result that was produced.
func (e *Ensemble) Run(ctx context.Context, snap physics.Snapshot, cfgs []Config) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i := range cfgs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sim := New()
			if e.logger != nil {
				sim.SetLogger(e.logger.With("run", idx))
			}
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					sim.AddMetric(m)
				}
			}

			sys := physics.New(snap.Radius, snap.Bodies, e.opts...)
			results[idx], errs[idx] = sim.Run(ctx, sys, cfgs[idx])
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("run %d (dt=%g): %w", i, cfgs[i].Dt, err)
		}
	}

	return results, nil
}
