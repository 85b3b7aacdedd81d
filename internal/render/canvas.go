package render

import (
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Canvas is a grid of Braille cells, 2x4 dots each. Every cell takes the
// color of its nearest plotted dot.
type Canvas struct {
	cols, rows int
	bits       []uint8
	depth      []float64
	color      []colorful.Color
}

// NewCanvas creates a canvas of cols x rows terminal cells.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the cell size and clears the canvas.
func (c *Canvas) Resize(cols, rows int) {
	cols, rows = max(1, cols), max(1, rows)
	if cols != c.cols || rows != c.rows {
		c.cols, c.rows = cols, rows
		n := cols * rows
		c.bits = make([]uint8, n)
		c.depth = make([]float64, n)
		c.color = make([]colorful.Color, n)
	}
	c.Clear()
}

// Clear removes every dot.
func (c *Canvas) Clear() {
	for i := range c.bits {
		c.bits[i] = 0
		c.depth[i] = math.Inf(1)
	}
}

// Dots returns the dot resolution.
func (c *Canvas) Dots() (w, h int) { return c.cols * 2, c.rows * 4 }

// Plot sets dot (x, y). Dots outside the canvas are ignored.
func (c *Canvas) Plot(x, y int, depth float64, col colorful.Color) {
	w, h := c.Dots()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	i := (y/4)*c.cols + x/2
	c.bits[i] |= 1 << brailleBits[x%2][y%4]
	if depth < c.depth[i] {
		c.depth[i] = depth
		c.color[i] = col
	}
}

// Lit reports whether dot (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	w, h := c.Dots()
	if x < 0 || y < 0 || x >= w || y >= h {
		return false
	}
	return c.bits[(y/4)*c.cols+x/2]&(1<<brailleBits[x%2][y%4]) != 0
}

// String renders the canvas as rows of Braille runes with color sequences
// for profile.
func (c *Canvas) String(profile termenv.Profile) string {
	rows := make([]string, c.rows)
	for r := range c.rows {
		var line strings.Builder
		st := newANSIState(profile)
		for col := range c.cols {
			i := r*c.cols + col
			if c.bits[i] == 0 {
				st.reset(&line)
				line.WriteByte(' ')
				continue
			}
			st.use(&line, c.color[i])
			line.WriteRune(rune(0x2800 + int(c.bits[i])))
		}
		st.reset(&line)
		rows[r] = line.String()
	}
	return strings.Join(rows, "\n")
}
