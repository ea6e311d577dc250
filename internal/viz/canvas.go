package viz

import (
	"strings"
)

const brailleBlank = 0x2800

// Dot bits of a Braille cell, indexed [row][col]:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of Braille cells, each holding 2x4 dots. Coordinates
// passed to drawing methods are in dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (w, h int) {
	return c.Width * 2, c.Height * 4
}

// Set turns on the dot at (x, y). Out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	row, col, bit, ok := c.locate(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= bit
}

// Unset turns off the dot at (x, y).
func (c *Canvas) Unset(x, y int) {
	row, col, bit, ok := c.locate(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &^= bit
	c.Grid[row][col] |= brailleBlank
}

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.locate(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) locate(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, pixelMap[y%4][x%2], true
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// FillCircle sets every dot within r of (cx, cy). A radius below one dot
// still marks the centre.
func (c *Canvas) FillCircle(cx, cy int, r float64) {
	c.Set(cx, cy)
	ri := int(r)
	r2 := r * r
	for dy := -ri; dy <= ri; dy++ {
		for dx := -ri; dx <= ri; dx++ {
			if float64(dx*dx+dy*dy) <= r2 {
				c.Set(cx+dx, cy+dy)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
