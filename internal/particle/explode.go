package particle

import (
	"math"
	"math/rand/v2"

	"github.com/olivier-w/wishcake/internal/geom"
)

// ExplodeConfig describes a single firework burst.
type ExplodeConfig struct {
	Count      int
	Origin     geom.Vec3
	Speed      Range // initial speed, world units per step
	ScaleBase  Range
	Gravity    float64 // Y velocity lost per second
	Decay      float64 // life lost per second
	StartDelay float64 // seconds before the burst appears
}

// DefaultExplode is one 150-point firework.
func DefaultExplode() ExplodeConfig {
	return ExplodeConfig{
		Count:     150,
		Speed:     Range{0.2, 0.5},
		ScaleBase: Range{0.5, 1},
		Gravity:   0.4,
		Decay:     0.8,
	}
}

type explodeState struct {
	delay   float64
	gravity float64
	decay   float64
}

// NewExplosion builds a burst with one fixed random velocity per particle,
// directions uniform on the unit sphere.
func NewExplosion(cfg ExplodeConfig, rng *rand.Rand) *Field {
	rng = ensureRand(rng)
	f := newField(ModeExplode, cfg.Origin, cfg.Count)
	f.explode = &explodeState{
		delay:   math.Max(0, cfg.StartDelay),
		gravity: cfg.Gravity,
		decay:   cfg.Decay,
	}
	for i := range f.particles {
		f.base[i] = cfg.ScaleBase.random(rng)
		f.particles[i] = Particle{
			Velocity: unitSphere(rng).Scale(cfg.Speed.random(rng)),
			Life:     1,
			Scale:    f.base[i],
		}
	}
	return f
}

func unitSphere(rng *rand.Rand) geom.Vec3 {
	z := rng.Float64()*2 - 1
	phi := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	s, c := math.Sincos(phi)
	return geom.Vec3{X: r * c, Y: r * s, Z: z}
}

func (f *Field) stepExplode(delta float64) {
	st := f.explode
	if f.elapsed < st.delay {
		return
	}
	for i := range f.particles {
		p := &f.particles[i]
		if p.Life <= 0 {
			p.Scale = 0
			continue
		}
		p.Position = p.Position.Add(p.Velocity)
		p.Velocity.Y -= delta * st.gravity
		p.Life -= delta * st.decay
		p.Scale = math.Max(0, p.Life*f.base[i])
	}
}

// Expired reports whether every particle of an explosion has burnt out.
func (f *Field) Expired() bool {
	if f.explode == nil {
		return false
	}
	for i := range f.particles {
		if f.particles[i].Life > 0 {
			return false
		}
	}
	return f.elapsed >= f.explode.delay
}
