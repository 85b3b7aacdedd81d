package render

import (
	"math"

	"github.com/muesli/termenv"

	"github.com/olivier-w/wishcake/internal/scene"
)

// minScale hides particles too small to read as a dot.
const minScale = 0.005

// Renderer draws layers through a camera.
type Renderer struct {
	Camera  *Camera
	profile termenv.Profile
	canvas  *Canvas
}

// NewRenderer renders with the default camera for profile.
func NewRenderer(profile termenv.Profile) *Renderer {
	return &Renderer{
		Camera:  DefaultCamera(),
		profile: profile,
		canvas:  NewCanvas(1, 1),
	}
}

// brightness maps particle scale to color intensity.
func brightness(scale float64) float64 {
	return min(1, 0.3+scale*4)
}

// Draw projects every layer and returns the frame.
func (r *Renderer) Draw(layers []scene.Layer, cols, rows int) string {
	r.Rasterize(layers, cols, rows)
	return r.canvas.String(r.profile)
}

// Rasterize plots layers onto the canvas without encoding it.
func (r *Renderer) Rasterize(layers []scene.Layer, cols, rows int) *Canvas {
	r.canvas.Resize(cols, rows)
	w, h := r.canvas.Dots()
	v := r.Camera.view(float64(w) / float64(h))

	for _, l := range layers {
		for i := range l.Len() {
			t := l.At(i)
			if t.Scale < minScale {
				continue
			}
			x, y, depth, ok := v.project(t.Position)
			if !ok {
				continue
			}
			dx := int(math.Floor((x + 1) / 2 * float64(w)))
			dy := int(math.Floor((1 - y) / 2 * float64(h)))
			r.canvas.Plot(dx, dy, depth, shade(l.Color, brightness(t.Scale)))
		}
	}
	return r.canvas
}
