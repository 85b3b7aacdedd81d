package particle

import (
	"math/rand/v2"

	"github.com/olivier-w/wishcake/internal/geom"
)

// HoldConfig describes static decoration placed on sampled surface points.
type HoldConfig struct {
	Origin geom.Vec3
	Scale  float64
	// Jitter multiplies Scale per particle.
	Jitter Range
}

// DefaultHold gives each point a scale between 0.6 and 1.4 of the base.
func DefaultHold(scale float64) HoldConfig {
	return HoldConfig{Scale: scale, Jitter: Range{0.6, 1.4}}
}

// NewSurfaceHold pins one particle to each point. The field never moves.
func NewSurfaceHold(points []geom.Vec3, cfg HoldConfig, rng *rand.Rand) *Field {
	rng = ensureRand(rng)
	f := newField(ModeSurfaceHold, cfg.Origin, len(points))
	for i, pt := range points {
		f.base[i] = cfg.Scale * cfg.Jitter.random(rng)
		f.particles[i] = Particle{
			Position: pt,
			Target:   pt,
			Scale:    f.base[i],
			Life:     1,
		}
	}
	return f
}
