// Package scene assembles the particle fields of the main cake scene and
// exposes them as colored layers for a renderer.
package scene

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/olivier-w/wishcake/internal/particle"
)

// Layer is one colored group of world-space particles. Points is a flat
// [x, y, z, scale] buffer as produced by particle.Field.AppendTransforms.
type Layer struct {
	Name   string
	Color  colorful.Color
	Points []float32
}

// Len returns how many particles the layer holds.
func (l Layer) Len() int { return len(l.Points) / particle.Stride }

// At returns the i-th transform.
func (l Layer) At(i int) particle.Transform { return particle.TransformAt(l.Points, i) }

// Count returns how many particles would be drawn.
func (l Layer) Count() int {
	n := 0
	for i := 3; i < len(l.Points); i += particle.Stride {
		if l.Points[i] > 0 {
			n++
		}
	}
	return n
}
