package config

import (
	"bytes"
	"embed"
	"io"
	"sort"
)

//go:embed universes/*.txt
var universes embed.FS

// Preset is a built-in initial state with a suggested step and duration.
type Preset struct {
	Name        string
	Description string
	File        string
	Dt          float64
	Duration    float64
}

// Open returns the preset's universe in the persistence format.
func (p *Preset) Open() (io.Reader, error) {
	data, err := universes.ReadFile("universes/" + p.File)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

var Presets = map[string]*Preset{
	"planets": {
		Name: "planets", Description: "sun with the four inner planets",
		File: "planets.txt", Dt: 25000, Duration: 31557600,
	},
	"binary": {
		Name: "binary", Description: "two equal suns in a circular orbit",
		File: "binary.txt", Dt: 20000, Duration: 31557600,
	},
	"sun-earth": {
		Name: "sun-earth", Description: "sun and earth only",
		File: "sun-earth.txt", Dt: 25000, Duration: 31557600,
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
