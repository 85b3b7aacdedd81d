package glyph

import (
	"image"

	"github.com/olivier-w/wishcake/internal/geom"
)

// coverageThreshold is the alpha at which a raster cell counts as inside.
const coverageThreshold = 128

// extrude turns a coverage mask into a closed solid: front and back faces
// built from horizontal runs, plus one wall quad for every cell edge that
// borders empty space. cell is the world size of one pixel.
func extrude(mask *image.Alpha, cell, depth float64) *geom.Mesh {
	b := mask.Bounds()
	inside := func(x, y int) bool {
		if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
			return false
		}
		return mask.AlphaAt(x, y).A >= coverageThreshold
	}
	// Image rows grow downward; world Y grows upward.
	at := func(x, y int, z float64) geom.Vec3 {
		return geom.Vec3{X: float64(x) * cell, Y: -float64(y) * cell, Z: z}
	}

	m := &geom.Mesh{}
	quad := func(a, b, c, d geom.Vec3) {
		m.Triangles = append(m.Triangles, geom.Triangle{A: a, B: b, C: c}, geom.Triangle{A: a, B: c, C: d})
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; {
			if !inside(x, y) {
				x++
				continue
			}
			start := x
			for x < b.Max.X && inside(x, y) {
				x++
			}
			quad(at(start, y+1, depth), at(x, y+1, depth), at(x, y, depth), at(start, y, depth))
			quad(at(start, y, 0), at(x, y, 0), at(x, y+1, 0), at(start, y+1, 0))
		}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !inside(x, y) {
				continue
			}
			if !inside(x, y-1) {
				quad(at(x, y, 0), at(x+1, y, 0), at(x+1, y, depth), at(x, y, depth))
			}
			if !inside(x, y+1) {
				quad(at(x+1, y+1, 0), at(x, y+1, 0), at(x, y+1, depth), at(x+1, y+1, depth))
			}
			if !inside(x-1, y) {
				quad(at(x, y+1, 0), at(x, y, 0), at(x, y, depth), at(x, y+1, depth))
			}
			if !inside(x+1, y) {
				quad(at(x+1, y, 0), at(x+1, y+1, 0), at(x+1, y+1, depth), at(x+1, y, depth))
			}
		}
	}
	return m
}
