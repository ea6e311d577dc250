package storage

import (
	"encoding/json"
	"io"
)

type ExportBody struct {
	Asset      string       `json:"asset"`
	Positions  [][2]float64 `json:"positions"`
	Velocities [][2]float64 `json:"velocities"`
}

type ExportData struct {
	ID       string             `json:"id"`
	Source   string             `json:"source"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Radius   float64            `json:"radius"`
	Steps    []int              `json:"steps"`
	Times    []float64          `json:"times"`
	Bodies   []ExportBody       `json:"bodies"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run's metadata and trajectory as one JSON document,
// grouped by body.
func ExportJSON(w io.Writer, meta *RunMetadata, traj *Trajectory) error {
	data := ExportData{
		ID:       meta.ID,
		Source:   meta.Source,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Radius:   meta.Radius,
		Steps:    traj.Steps,
		Times:    traj.Times,
		Bodies:   make([]ExportBody, meta.Bodies),
		Metrics:  meta.Metrics,
	}

	for i := range data.Bodies {
		b := &data.Bodies[i]
		if i < len(meta.Assets) {
			b.Asset = meta.Assets[i]
		}
		b.Positions = make([][2]float64, 0, len(traj.Positions))
		b.Velocities = make([][2]float64, 0, len(traj.Velocities))
		for n := range traj.Positions {
			if i >= len(traj.Positions[n]) {
				continue
			}
			p, v := traj.Positions[n][i], traj.Velocities[n][i]
			b.Positions = append(b.Positions, [2]float64{p.X, p.Y})
			b.Velocities = append(b.Velocities, [2]float64{v.X, v.Y})
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
