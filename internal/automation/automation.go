package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/storage"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	// dir resolves relative input paths.
	dir string
}

// ScenarioStep is a single run in a scenario. Exactly one of Preset, Input
// or Continue selects the starting state; Continue picks up the final state
// of the previous step.
type ScenarioStep struct {
	Name          string  `yaml:"name"`
	Preset        string  `yaml:"preset"`
	Input         string  `yaml:"input"`
	Continue      bool    `yaml:"continue"`
	Duration      float64 `yaml:"duration"`
	Dt            float64 `yaml:"dt"`
	MinSeparation float64 `yaml:"min_separation"`
	RecordEvery   int     `yaml:"record_every"`
	Save          bool    `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	scenario.dir = filepath.Dir(path)

	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return errors.New("scenario has no steps")
	}
	for i, step := range s.Steps {
		sources := 0
		for _, set := range []bool{step.Preset != "", step.Input != "", step.Continue} {
			if set {
				sources++
			}
		}
		if sources != 1 {
			return fmt.Errorf("step %d: exactly one of preset, input or continue is required", i+1)
		}
		if step.Continue && i == 0 {
			return fmt.Errorf("step %d: nothing to continue from", i+1)
		}
		if step.Preset != "" {
			p := config.GetPreset(step.Preset)
			if p == nil {
				return fmt.Errorf("step %d: unknown preset %q", i+1, step.Preset)
			}
		} else if !(step.Dt > 0) || !(step.Duration > 0) {
			return fmt.Errorf("step %d: dt and duration must be positive", i+1)
		}
		if step.Dt < 0 || step.Duration < 0 || step.MinSeparation < 0 || step.RecordEvery < 0 {
			return fmt.Errorf("step %d: negative values are not allowed", i+1)
		}
	}
	return nil
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name   string
	RunID  string
	Final  physics.Snapshot
	Result *sim.Result
}

// Runner executes scenarios. A nil Store disables saving.
type Runner struct {
	Store      *storage.Store
	Logger     *log.Logger
	NewMetrics func() []sim.Metric
}

// RunScenario executes all steps in order, stopping at the first failure.
// Results of the steps that completed are returned along with the error.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	results := make([]StepResult, 0, len(scenario.Steps))
	var previous physics.Snapshot

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logger.Info("running step", "step", i+1, "of", len(scenario.Steps), "name", name)

		sys, source, err := scenario.initialState(step, previous)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		cfg := sim.DefaultConfig()
		cfg.Duration, cfg.Dt = step.Duration, step.Dt
		if p := config.GetPreset(step.Preset); p != nil {
			if cfg.Dt == 0 {
				cfg.Dt = p.Dt
			}
			if cfg.Duration == 0 {
				cfg.Duration = p.Duration
			}
		}
		if step.Save {
			cfg.RecordEvery = step.RecordEvery
			if cfg.RecordEvery == 0 {
				cfg.RecordEvery = config.DefaultRecordEvery
			}
		}

		s := sim.New()
		s.SetLogger(logger.With("step", name))
		if r.NewMetrics != nil {
			for _, m := range r.NewMetrics() {
				s.AddMetric(m)
			}
		}

		initial := sys.Snapshot()
		result, err := s.Run(ctx, sys, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Final: sys.Snapshot(), Result: result}
		if step.Save && r.Store != nil {
			sr.RunID, err = r.Store.Save(storage.Run{
				Source:        source,
				Dt:            cfg.Dt,
				Duration:      cfg.Duration,
				MinSeparation: step.MinSeparation,
				Initial:       initial,
				Final:         sr.Final,
				Result:        result,
			})
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, sr)
		previous = sr.Final
	}

	return results, nil
}

func (s *Scenario) initialState(step ScenarioStep, previous physics.Snapshot) (*physics.System, string, error) {
	opts := []physics.Option{physics.WithMinSeparation(step.MinSeparation)}

	switch {
	case step.Continue:
		return physics.New(previous.Radius, previous.Bodies, opts...), "continue", nil
	case step.Preset != "":
		r, err := config.GetPreset(step.Preset).Open()
		if err != nil {
			return nil, "", err
		}
		sys, err := physics.Load(r, opts...)
		return sys, step.Preset, err
	default:
		path := step.Input
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		sys, err := physics.Load(f, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		name := filepath.Base(path)
		return sys, name[:len(name)-len(filepath.Ext(name))], nil
	}
}
