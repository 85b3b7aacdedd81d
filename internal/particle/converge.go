package particle

import (
	"math"
	"math/rand/v2"

	"github.com/olivier-w/wishcake/internal/geom"
)

// ConvergeConfig describes points that fly in from a scattered cloud,
// assemble on their targets, shimmer, then burst away.
type ConvergeConfig struct {
	Origin geom.Vec3
	// Spawn points are drawn uniformly from SpawnCenter ± SpawnExtent.
	SpawnCenter geom.Vec3
	SpawnExtent geom.Vec3
	Speed       Range   // per-particle approach speed
	Rate        float64 // approach fraction per step is Speed*Rate
	BaseScale   float64
	ScaleJitter Range
	Burst       Range   // outward speed once dispersing
	ForwardBias float64 // added to the Z velocity at burst
	Shimmer     float64 // hold-phase jitter amplitude
	ShimmerFreq float64

	FadeIn       float64 // seconds of scale ramp-in
	GatherUntil  float64 // end of the approach phase
	HoldUntil    float64 // end of the shimmer phase
	FadeOutRate  float64 // scale loss per second after HoldUntil
	CompleteWhen float64 // completion fires once elapsed exceeds this
}

// DefaultConverge matches the countdown digits.
func DefaultConverge() ConvergeConfig {
	return ConvergeConfig{
		SpawnCenter:  geom.Vec3{Z: 20},
		SpawnExtent:  geom.Vec3{X: 20, Y: 20, Z: 10},
		Speed:        Range{0.03, 0.07},
		Rate:         3.5,
		BaseScale:    0.12,
		ScaleJitter:  Range{0.5, 1},
		Burst:        Range{0.3, 0.9},
		ForwardBias:  0.8,
		Shimmer:      0.1,
		ShimmerFreq:  5,
		FadeIn:       0.5,
		GatherUntil:  0.8,
		HoldUntil:    1.5,
		FadeOutRate:  1.5,
		CompleteWhen: 2.0,
	}
}

type convergeState struct {
	cfg      ConvergeConfig
	speed    []float64
	burst    []float64
	launched bool
}

// NewConvergeDisperse builds one particle per target. An empty target set
// yields an empty field that still completes on schedule.
func NewConvergeDisperse(targets []geom.Vec3, cfg ConvergeConfig, rng *rand.Rand) *Field {
	rng = ensureRand(rng)
	f := newField(ModeConvergeDisperse, cfg.Origin, len(targets))
	st := &convergeState{
		cfg:   cfg,
		speed: make([]float64, len(targets)),
		burst: make([]float64, len(targets)),
	}
	span := func(c, e float64) float64 { return c + (rng.Float64()-0.5)*2*e }
	for i, tgt := range targets {
		f.particles[i] = Particle{
			Position: geom.Vec3{
				X: span(cfg.SpawnCenter.X, cfg.SpawnExtent.X),
				Y: span(cfg.SpawnCenter.Y, cfg.SpawnExtent.Y),
				Z: span(cfg.SpawnCenter.Z, cfg.SpawnExtent.Z),
			},
			Target:    tgt,
			Life:      1,
			PhaseSeed: float64(i),
		}
		st.speed[i] = cfg.Speed.random(rng)
		st.burst[i] = cfg.Burst.random(rng)
		f.base[i] = cfg.BaseScale * cfg.ScaleJitter.random(rng)
	}
	f.converge = st
	return f
}

func (f *Field) stepConverge() {
	st := f.converge
	cfg := st.cfg
	t := f.elapsed

	launch := t >= cfg.HoldUntil && !st.launched
	if launch {
		st.launched = true
	}

	scale := 1.0
	switch {
	case t < cfg.FadeIn:
		scale = t / cfg.FadeIn
	case t > cfg.HoldUntil:
		scale = math.Max(0, 1-(t-cfg.HoldUntil)*cfg.FadeOutRate)
	}

	for i := range f.particles {
		p := &f.particles[i]
		switch {
		case t < cfg.GatherUntil:
			p.Position = p.Position.Lerp(p.Target, st.speed[i]*cfg.Rate)
		case t < cfg.HoldUntil:
			phase := t*cfg.ShimmerFreq + p.PhaseSeed
			p.Position.X = p.Target.X + math.Sin(phase)*cfg.Shimmer
			p.Position.Y = p.Target.Y + math.Cos(phase)*cfg.Shimmer
		default:
			if launch {
				p.Velocity = p.Position.Normalize().Scale(st.burst[i])
				p.Velocity.Z += cfg.ForwardBias
			}
			p.Position = p.Position.Add(p.Velocity)
		}
		p.Scale = f.base[i] * scale
	}

	if t > cfg.CompleteWhen {
		f.complete()
	}
}
