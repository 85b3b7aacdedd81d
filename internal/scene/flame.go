package scene

import (
	"math/rand/v2"

	"github.com/charmbracelet/harmonica"

	"github.com/olivier-w/wishcake/internal/candle"
	"github.com/olivier-w/wishcake/internal/geom"
)

const (
	flameFrequency = 6.0
	flameDamping   = 1.0
)

// flames eases every candle flame toward the scale implied by the candle
// state and shakes them while blowing.
type flames struct {
	base   []geom.Vec3 // flame roots in cake space
	shake  []float64
	scale  []float64
	vel    []float64
	light  float64
	spring harmonica.Spring
	dt     float64

	blowScale float64
	shakeAmp  float64
	lightMax  float64
	lightRate float64
}

func newFlames(roots []geom.Vec3, blowScale, shakeAmp, lightMax, lightRate float64) *flames {
	f := &flames{
		base:      roots,
		shake:     make([]float64, len(roots)),
		scale:     make([]float64, len(roots)),
		vel:       make([]float64, len(roots)),
		light:     lightMax,
		blowScale: blowScale,
		shakeAmp:  shakeAmp,
		lightMax:  lightMax,
		lightRate: lightRate,
	}
	for i := range f.scale {
		f.scale[i] = 1
	}
	return f
}

func (f *flames) target(state candle.State) (scale, light float64) {
	switch state {
	case candle.Extinguished:
		return 0, 0
	case candle.Blowing:
		return f.blowScale, f.lightMax
	default:
		return 1, f.lightMax
	}
}

func (f *flames) step(delta float64, state candle.State, volume float64, rng *rand.Rand) {
	if delta <= 0 {
		return
	}
	if delta != f.dt {
		f.spring = harmonica.NewSpring(delta, flameFrequency, flameDamping)
		f.dt = delta
	}

	scale, light := f.target(state)
	for i := range f.scale {
		f.scale[i], f.vel[i] = f.spring.Update(f.scale[i], f.vel[i], scale)
		// Springs overshoot slightly; a flame never renders negative.
		if scale == 0 && f.scale[i] < 0 {
			f.scale[i], f.vel[i] = 0, 0
		}
		if state == candle.Blowing {
			f.shake[i] = (rng.Float64() - 0.5) * volume * f.shakeAmp
		} else {
			f.shake[i] = 0
		}
	}

	f.light += (light - f.light) * min(1, delta*f.lightRate)
}

// root returns flame i's current root, shaken along X and Z.
func (f *flames) root(i int) geom.Vec3 {
	r := f.base[i]
	r.X += f.shake[i]
	r.Z += f.shake[i]
	return r
}
