package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/viz"
)

const background = "#0a0a0a"

// Stroke colours cycled across bodies.
var palette = []string{
	"#ffd166", "#00ccff", "#ef476f", "#06d6a0", "#f78c6b", "#a78bfa", "#ffffff",
}

// CanvasToSVG converts a Braille canvas to SVG, drawing each set dot as a
// circle of the given size.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Dots()
	width := float64(w) * scale
	height := float64(h) * scale

	var sb strings.Builder
	writeHeader(&sb, width, height)
	sb.WriteString(`<g fill="#00ff00">` + "\n")

	dotRadius := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoriesToSVG draws one path per body track and a marker at the last
// position of each, using the same projection as the terminal frame. Assets
// label the markers when provided.
func TrajectoriesToSVG(tracks [][]physics.Vec2, masses []float64, assets []string, radius float64, size int) string {
	proj := viz.NewProjection(size, size, radius)
	scale := float64(size) / 600

	var sb strings.Builder
	writeHeader(&sb, float64(size), float64(size))

	for i, track := range tracks {
		if len(track) == 0 {
			continue
		}
		color := palette[i%len(palette)]

		if len(track) > 1 {
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-opacity="0.6" stroke-width="1" d="`, color)
			for j, p := range track {
				x, y := proj.ToScreen(p)
				if j == 0 {
					fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
				} else {
					fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
				}
			}
			sb.WriteString("\"/>\n")
		}

		r := 4.0
		if i < len(masses) {
			r = viz.MarkerSize(masses[i]) / 2
		}
		x, y := proj.ToScreen(track[len(track)-1])
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", x, y, r*scale, color)

		if i < len(assets) && assets[i] != "" {
			fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\" fill=\"%s\" font-family=\"monospace\" font-size=\"10\">%s</text>\n",
				x+r*scale+2, y-2, color, escape(assets[i]))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return xmlEscaper.Replace(s) }
