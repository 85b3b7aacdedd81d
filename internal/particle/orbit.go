package particle

import (
	"math"
	"math/rand/v2"

	"github.com/olivier-w/wishcake/internal/geom"
)

// OrbitConfig describes a cloud of points circling the Y axis.
type OrbitConfig struct {
	Count        int
	Origin       geom.Vec3
	Radius       Range
	Height       Range // vertical offset around the origin
	AngularSpeed Range
	Size         Range
	Phase        Range // float phase offset
	// SpeedFactor scales AngularSpeed into radians per second.
	SpeedFactor float64
	// FloatAmplitude is the vertical bob amplitude.
	FloatAmplitude float64
}

// DefaultOrbit is the slow bubble ring around the cake.
func DefaultOrbit() OrbitConfig {
	return OrbitConfig{
		Count:          120,
		Radius:         Range{6, 18},
		Height:         Range{-7.5, 7.5},
		AngularSpeed:   Range{0.1, 0.5},
		Size:           Range{0.1, 0.6},
		Phase:          Range{0, 100},
		SpeedFactor:    0.2,
		FloatAmplitude: 0.5,
	}
}

type orbitState struct {
	params   []orbitParams
	floatAmp float64
}

type orbitParams struct {
	radius float64
	angle  float64
	y      float64
	speed  float64
}

// NewOrbit builds an orbit field and places every particle at t=0.
func NewOrbit(cfg OrbitConfig, rng *rand.Rand) *Field {
	rng = ensureRand(rng)
	f := newField(ModeOrbit, cfg.Origin, cfg.Count)
	f.orbit = &orbitState{
		params:   make([]orbitParams, len(f.particles)),
		floatAmp: cfg.FloatAmplitude,
	}
	for i := range f.particles {
		f.orbit.params[i] = orbitParams{
			radius: cfg.Radius.random(rng),
			angle:  rng.Float64() * 2 * math.Pi,
			y:      cfg.Height.random(rng),
			speed:  cfg.AngularSpeed.random(rng) * cfg.SpeedFactor,
		}
		f.base[i] = cfg.Size.random(rng)
		p := &f.particles[i]
		p.PhaseSeed = cfg.Phase.random(rng)
		p.Scale = f.base[i]
		p.Life = 1
	}
	f.stepOrbit()
	return f
}

func (f *Field) stepOrbit() {
	t := f.elapsed
	amp := f.orbit.floatAmp
	for i := range f.particles {
		o := f.orbit.params[i]
		p := &f.particles[i]
		s, c := math.Sincos(o.angle + t*o.speed)
		p.Position = geom.Vec3{
			X: c * o.radius,
			Y: o.y + math.Sin(t+p.PhaseSeed)*amp,
			Z: s * o.radius,
		}
	}
}
