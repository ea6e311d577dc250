package sim

import (
	"github.com/charmbracelet/log"

	"github.com/san-kum/nbodysim/internal/physics"
)

// ProgressLogger logs the simulated clock and total energy every n steps.
type ProgressLogger struct {
	logger *log.Logger
	every  int
}

func NewProgressLogger(logger *log.Logger, every int) *ProgressLogger {
	if every < 1 {
		every = 1
	}
	return &ProgressLogger{logger: logger, every: every}
}

func (p *ProgressLogger) OnStep(sys *physics.System, step int, t float64) {
	if step%p.every != 0 {
		return
	}
	p.logger.Info("progress", "step", step, "elapsed", FormatElapsed(t), "energy", sys.Energy())
}
