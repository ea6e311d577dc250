package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/pborman/uuid"

	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	initialFile    = "initial.txt"
	finalFile      = "final.txt"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	UUID          string             `json:"uuid"`
	Source        string             `json:"source"`
	Timestamp     time.Time          `json:"timestamp"`
	Bodies        int                `json:"bodies"`
	Assets        []string           `json:"assets"`
	Radius        float64            `json:"radius"`
	Dt            float64            `json:"dt"`
	Duration      float64            `json:"duration"`
	Elapsed       float64            `json:"elapsed"`
	Steps         int                `json:"steps"`
	MinSeparation float64            `json:"min_separation,omitempty"`
	EnergyDrift   float64            `json:"energy_drift"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Run is everything persisted for one simulation.
type Run struct {
	Source        string
	Dt            float64
	Duration      float64
	MinSeparation float64
	Initial       physics.Snapshot
	Final         physics.Snapshot
	Result        *sim.Result
}

// Save writes a new run directory and returns its id.
func (s *Store) Save(run Run) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	runID, runDir, err := s.createRunDir(run.Source)
	if err != nil {
		return "", err
	}

	assets := make([]string, len(run.Initial.Bodies))
	for i, b := range run.Initial.Bodies {
		assets[i] = b.Asset()
	}

	meta := RunMetadata{
		ID:            runID,
		UUID:          uuid.NewRandom().String(),
		Source:        run.Source,
		Timestamp:     time.Now(),
		Bodies:        len(run.Initial.Bodies),
		Assets:        assets,
		Radius:        run.Initial.Radius,
		Dt:            run.Dt,
		Duration:      run.Duration,
		MinSeparation: run.MinSeparation,
		Metrics:       map[string]float64{},
	}
	if run.Result != nil {
		meta.Elapsed = run.Result.Elapsed
		meta.Steps = run.Result.StepsTaken
		meta.EnergyDrift = run.Result.EnergyDrift
		meta.Metrics = run.Result.Metrics
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSnapshot(filepath.Join(runDir, initialFile), run.Initial); err != nil {
		return "", err
	}
	if err := writeSnapshot(filepath.Join(runDir, finalFile), run.Final); err != nil {
		return "", err
	}

	var samples []sim.Sample
	if run.Result != nil {
		samples = run.Result.Samples
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), meta.Bodies, samples); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) createRunDir(source string) (string, string, error) {
	base := fmt.Sprintf("%s_%d", source, time.Now().Unix())
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s-%d", base, i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// archivePrecision is enough digits for a float64 to load back unchanged.
const archivePrecision = 16

func writeSnapshot(path string, snap physics.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := physics.NewEncoder(f)
	enc.SetPrecision(archivePrecision)
	if _, err := enc.EncodeSnapshot(snap); err != nil {
		return err
	}
	return f.Close()
}

func writeTrajectory(path string, bodies int, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"step", "time"}
	for i := 0; i < bodies; i++ {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, smp := range samples {
		row := []string{strconv.Itoa(smp.Step), formatFloat(smp.Time)}
		for _, b := range smp.Bodies {
			p, v := b.Position(), b.Velocity()
			row = append(row, formatFloat(p.X), formatFloat(p.Y), formatFloat(v.X), formatFloat(v.Y))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'e', 9, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadInitial decodes the state the run started from.
func (s *Store) LoadInitial(runID string) (*physics.System, error) {
	return loadSystem(filepath.Join(s.baseDir, runID, initialFile))
}

// LoadFinal decodes the state the run ended in.
func (s *Store) LoadFinal(runID string) (*physics.System, error) {
	return loadSystem(filepath.Join(s.baseDir, runID, finalFile))
}

func loadSystem(path string) (*physics.System, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sys, err := physics.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sys, nil
}

// Trajectory is the recorded motion of every body.
type Trajectory struct {
	Steps      []int
	Times      []float64
	Positions  [][]physics.Vec2
	Velocities [][]physics.Vec2
}

// Track returns the positions of body i over time.
func (t *Trajectory) Track(i int) []physics.Vec2 {
	track := make([]physics.Vec2, 0, len(t.Positions))
	for _, row := range t.Positions {
		if i < len(row) {
			track = append(track, row[i])
		}
	}
	return track
}

func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{}
	if len(records) < 2 {
		return traj, nil
	}

	for n, record := range records[1:] {
		if len(record) < 2 || (len(record)-2)%4 != 0 {
			return nil, fmt.Errorf("%s row %d: unexpected column count %d", trajectoryFile, n+1, len(record))
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", trajectoryFile, n+1, err)
		}
		vals := make([]float64, len(record)-1)
		for j, field := range record[1:] {
			vals[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", trajectoryFile, n+1, err)
			}
		}

		bodies := (len(vals) - 1) / 4
		pos := make([]physics.Vec2, bodies)
		vel := make([]physics.Vec2, bodies)
		for i := 0; i < bodies; i++ {
			off := 1 + i*4
			pos[i] = physics.Vec2{X: vals[off], Y: vals[off+1]}
			vel[i] = physics.Vec2{X: vals[off+2], Y: vals[off+3]}
		}

		traj.Steps = append(traj.Steps, step)
		traj.Times = append(traj.Times, vals[0])
		traj.Positions = append(traj.Positions, pos)
		traj.Velocities = append(traj.Velocities, vel)
	}

	return traj, nil
}
