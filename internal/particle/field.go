// Package particle owns fixed-size particle collections and advances them
// once per frame according to a single motion mode.
//
// A Field generates all of its random data (targets, spawn points,
// velocities, scale jitter) at construction. Step is deterministic given the
// field and the delta, and the rendering layer only ever sees copies.
package particle

import (
	"math/rand/v2"

	"github.com/olivier-w/wishcake/internal/geom"
)

// MaxDelta caps a single step, so a resumed tab or a stalled terminal does
// not fling particles across the scene.
const MaxDelta = 0.1

// Mode selects how a field moves its particles.
type Mode uint8

const (
	ModeOrbit            Mode = iota // endless orbit around the Y axis
	ModeSurfaceHold                  // static points on a sampled surface
	ModeConvergeDisperse             // gather on targets, shimmer, then burst away
	ModeExplode                      // radial burst with gravity and fading life
)

func (m Mode) String() string {
	switch m {
	case ModeOrbit:
		return "orbit"
	case ModeSurfaceHold:
		return "surface-hold"
	case ModeConvergeDisperse:
		return "converge-disperse"
	case ModeExplode:
		return "explode"
	default:
		return "unknown"
	}
}

// Range is a min/max interval sampled uniformly.
type Range struct {
	Min, Max float64
}

func (r Range) random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Particle is the simulation state of one point. Scale is the rendered
// scale for the current frame.
type Particle struct {
	Position  geom.Vec3
	Velocity  geom.Vec3
	Target    geom.Vec3
	Scale     float64
	Life      float64
	PhaseSeed float64
}

// Transform is what the renderer draws for one particle: a world-space
// position and a uniform scale.
type Transform struct {
	Position geom.Vec3
	Scale    float64
}

// Field is a fixed-size particle collection sharing one mode. The particle
// count never changes after construction.
type Field struct {
	mode      Mode
	origin    geom.Vec3
	particles []Particle
	base      []float64 // per-particle base scale
	elapsed   float64

	orbit    *orbitState
	converge *convergeState
	explode  *explodeState

	done       bool
	onComplete func()
}

func newField(mode Mode, origin geom.Vec3, n int) *Field {
	if n < 0 {
		n = 0
	}
	return &Field{
		mode:      mode,
		origin:    origin,
		particles: make([]Particle, n),
		base:      make([]float64, n),
	}
}

// Mode returns the field's motion mode.
func (f *Field) Mode() Mode { return f.mode }

// Len returns the fixed particle count.
func (f *Field) Len() int { return len(f.particles) }

// Elapsed returns the field-local simulated time in seconds.
func (f *Field) Elapsed() float64 { return f.elapsed }

// Origin returns the world offset applied to every particle.
func (f *Field) Origin() geom.Vec3 { return f.origin }

// Done reports whether the field has signalled completion.
func (f *Field) Done() bool { return f.done }

// OnComplete registers fn to run once when the field completes. Only
// converge-disperse fields complete.
func (f *Field) OnComplete(fn func()) { f.onComplete = fn }

// Visible reports whether the field draws anything this frame. Explosion
// fields stay invisible until their start delay has elapsed.
func (f *Field) Visible() bool {
	if f.explode != nil {
		return f.elapsed >= f.explode.delay
	}
	return true
}

// Step advances the field by delta seconds. Negative deltas count as zero and
// large ones are capped at MaxDelta. A zero step changes nothing.
func (f *Field) Step(delta float64) {
	if !(delta > 0) {
		return
	}
	if delta > MaxDelta {
		delta = MaxDelta
	}

	f.elapsed += delta
	switch f.mode {
	case ModeOrbit:
		f.stepOrbit()
	case ModeSurfaceHold:
		// Positions were placed at construction.
	case ModeConvergeDisperse:
		f.stepConverge()
	case ModeExplode:
		f.stepExplode(delta)
	}
}

func (f *Field) complete() {
	if f.done {
		return
	}
	f.done = true
	if f.onComplete != nil {
		f.onComplete()
	}
}

// Particles returns a copy of the particle state, in field-local space.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Stride is the number of floats per particle in a transform buffer.
const Stride = 4

// AppendTransforms appends this frame's world transforms to dst as a flat
// [x, y, z, scale] * N buffer, ready for instanced drawing. The buffer is a
// copy; writing to it never touches the field. Nothing is appended while
// the field is not visible.
func (f *Field) AppendTransforms(dst []float32) []float32 {
	if !f.Visible() {
		return dst
	}
	for i := range f.particles {
		p := &f.particles[i]
		dst = append(dst,
			float32(f.origin.X+p.Position.X),
			float32(f.origin.Y+p.Position.Y),
			float32(f.origin.Z+p.Position.Z),
			float32(p.Scale),
		)
	}
	return dst
}

// TransformAt decodes the i-th transform of a flat buffer.
func TransformAt(buf []float32, i int) Transform {
	o := i * Stride
	return Transform{
		Position: geom.Vec3{X: float64(buf[o]), Y: float64(buf[o+1]), Z: float64(buf[o+2])},
		Scale:    float64(buf[o+3]),
	}
}

// NewRand returns a PCG-backed source. Zero seeds pick random ones.
func NewRand(seed1, seed2 uint64) *rand.Rand {
	if seed1 == 0 && seed2 == 0 {
		seed1, seed2 = rand.Uint64(), rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed1, seed2))
}

func ensureRand(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return NewRand(0, 0)
	}
	return rng
}
