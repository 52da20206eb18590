package viz

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = rune(0x2800)

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

// Dots is the canvas size in sub-pixel dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at sub-pixel (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a solid Bresenham line.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	c.drawPattern(x0, y0, x1, y1, 1, 0)
}

// DrawDashed draws a line that lights on dots and skips off dots in turn.
func (c *Canvas) DrawDashed(x0, y0, x1, y1, on, off int) {
	c.drawPattern(x0, y0, x1, y1, on, off)
}

func (c *Canvas) drawPattern(x0, y0, x1, y1, on, off int) {
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
	period := on + off

	for i := 0; ; i++ {
		if off == 0 || i%period < on {
			c.Set(x0, y0)
		}
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

// DrawCircle outlines a circle of radius r dots.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	steps := int(2*math.Pi*float64(r)) + 8
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.Set(cx+int(math.Round(float64(r)*math.Cos(a))), cy+int(math.Round(float64(r)*math.Sin(a))))
	}
}

// FillCircle fills a disc of radius r dots.
func (c *Canvas) FillCircle(cx, cy, r int) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				c.Set(cx+x, cy+y)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Viewport maps world coordinates (y down) onto canvas dots, preserving
// aspect ratio.
type Viewport struct {
	Origin mgl64.Vec2
	Scale  float64
}

// Fit returns the viewport that shows a world of worldW x worldH on c.
func Fit(c *Canvas, worldW, worldH float64) Viewport {
	w, h := c.Dots()
	if worldW <= 0 || worldH <= 0 {
		return Viewport{Scale: 1}
	}
	return Viewport{Scale: math.Min(float64(w)/worldW, float64(h)/worldH)}
}

func (v Viewport) Project(p mgl64.Vec2) (int, int) {
	q := p.Sub(v.Origin).Mul(v.Scale)
	return int(math.Round(q[0])), int(math.Round(q[1]))
}

func (v Viewport) Length(l float64) int {
	return int(math.Round(l * v.Scale))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
