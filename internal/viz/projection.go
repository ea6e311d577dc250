package viz

import (
	"math"

	"github.com/san-kum/nbodysim/internal/physics"
)

// Marker size bounds in screen pixels.
const (
	baseMarker = 8.0
	minMarker  = 4.0
	maxMarker  = 20.0
)

// Projection maps world coordinates onto a Width x Height pixel surface
// centred on the origin, with y pointing up in the world and down on screen.
// The world radius spans 40% of the width so orbits at the edge still fit.
type Projection struct {
	Width, Height float64
	Radius        float64
}

func NewProjection(width, height int, radius float64) Projection {
	return Projection{Width: float64(width), Height: float64(height), Radius: radius}
}

// Scale is screen pixels per metre.
func (p Projection) Scale() float64 {
	if p.Radius <= 0 {
		return 0
	}
	return p.Width / (2.5 * p.Radius)
}

func (p Projection) ToScreen(v physics.Vec2) (x, y float64) {
	s := p.Scale()
	return v.X*s + p.Width/2, p.Height/2 - v.Y*s
}

// MarkerSize returns the on-screen diameter in pixels for a body of the
// given mass, growing with the log of mass relative to 1e20 kg.
func MarkerSize(mass float64) float64 {
	size := baseMarker * (math.Log10(mass/1e20) + 1)
	return math.Max(minMarker, math.Min(size, maxMarker))
}
