package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/nbodysim/internal/physics"
)

// referenceWidth is the window width, in pixels, that marker sizes are
// defined against.
const referenceWidth = 600.0

// Frame draws snapshots onto a Braille canvas of Width x Height cells.
type Frame struct {
	Width, Height int
	Title         string
	Theme         Theme
	Legend        bool
}

func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Theme:  ThemeDeepSpace,
		Legend: true,
	}
}

// Draw plots trails and bodies onto a fresh canvas.
func (f *Frame) Draw(snap physics.Snapshot, trails [][]physics.Vec2) *Canvas {
	c := NewCanvas(f.Width, f.Height)
	w, h := c.Dots()
	proj := NewProjection(w, h, snap.Radius)

	for _, track := range trails {
		for i := 1; i < len(track); i++ {
			x0, y0 := proj.ToScreen(track[i-1])
			x1, y1 := proj.ToScreen(track[i])
			if !onSurface(x0, y0, w, h) && !onSurface(x1, y1, w, h) {
				continue
			}
			c.DrawLine(int(x0), int(y0), int(x1), int(y1))
		}
	}

	dotsPerPixel := float64(w) / referenceWidth
	for _, b := range snap.Bodies {
		x, y := proj.ToScreen(b.Position())
		if !onSurface(x, y, w, h) {
			continue
		}
		c.FillCircle(int(x), int(y), MarkerSize(b.Mass())/2*dotsPerPixel)
	}
	return c
}

// Render draws the snapshot and wraps it in a themed panel.
func (f *Frame) Render(snap physics.Snapshot, trails [][]physics.Vec2) string {
	st := newStyles(f.Theme)
	parts := make([]string, 0, 3)
	if f.Title != "" {
		parts = append(parts, st.title.Render(f.Title))
	}
	parts = append(parts, st.canvas.Render(f.Draw(snap, trails).String()))
	if f.Legend && len(snap.Bodies) > 0 {
		parts = append(parts, f.legend(st, snap))
	}
	return st.panel.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (f *Frame) legend(st styles, snap physics.Snapshot) string {
	var b strings.Builder
	for i, body := range snap.Bodies {
		if i > 0 {
			b.WriteByte('\n')
		}
		p := body.Position()
		b.WriteString(st.value.Render(fmt.Sprintf("%-12s", body.Asset())))
		b.WriteString(st.label.Render(fmt.Sprintf(" m=%.3e  x=%+.3e  y=%+.3e", body.Mass(), p.X, p.Y)))
	}
	return b.String()
}

// onSurface guards the float to int conversion; far-away bodies can
// project to values outside the int range.
func onSurface(x, y float64, w, h int) bool {
	return x >= 0 && y >= 0 && x < float64(w) && y < float64(h)
}
