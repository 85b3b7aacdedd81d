package scene

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/olivier-w/wishcake/internal/candle"
	"github.com/olivier-w/wishcake/internal/config"
	"github.com/olivier-w/wishcake/internal/geom"
	"github.com/olivier-w/wishcake/internal/particle"
	"github.com/olivier-w/wishcake/internal/sampler"
)

const (
	flameRadius = 0.06
	flameHeight = 0.3
)

type tier struct {
	name  string
	field *particle.Field
	color colorful.Color
}

// Cake is the main scene: sampled tiers and candles that spin slowly,
// flames that follow the candle state, and a ring of bubbles.
type Cake struct {
	cfg    config.Cake
	logger *slog.Logger
	rng    *rand.Rand

	tiers   []tier
	candles []*particle.Field
	flame   []*particle.Field // one cone per candle, in flame-local space
	bubbles *particle.Field
	flames  *flames

	candleColor colorful.Color
	flameColor  colorful.Color
	bubbleColor colorful.Color

	yaw float64
}

// NewCake samples every surface once. A surface that cannot be sampled is
// logged and left empty.
func NewCake(cfg config.Cake, rng *rand.Rand, logger *slog.Logger) (*Cake, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = particle.NewRand(0, 0)
	}
	c := &Cake{cfg: cfg, logger: logger, rng: rng}

	var err error
	if c.candleColor, err = config.ParseColor(cfg.CandleColor); err != nil {
		return nil, fmt.Errorf("candle color: %w", err)
	}
	if c.flameColor, err = config.ParseColor(cfg.FlameColor); err != nil {
		return nil, fmt.Errorf("flame color: %w", err)
	}
	if c.bubbleColor, err = config.ParseColor(cfg.BubbleColor); err != nil {
		return nil, fmt.Errorf("bubble color: %w", err)
	}

	for i, t := range cfg.Tiers {
		col, err := config.ParseColor(t.Color)
		if err != nil {
			return nil, fmt.Errorf("tier %d color: %w", i, err)
		}
		mesh := geom.Cylinder(t.Radius, t.Radius, t.Height, cfg.RadialSegments)
		hold := particle.DefaultHold(1)
		hold.Origin = geom.Vec3{Y: t.Y}
		c.tiers = append(c.tiers, tier{
			name:  fmt.Sprintf("tier-%d", i),
			field: c.sampleHold(mesh, t.Count, hold, fmt.Sprintf("tier %d", i)),
			color: col,
		})
	}

	candleMesh := geom.Cylinder(cfg.CandleRadius, cfg.CandleRadius, cfg.CandleHeight, cfg.CandleSegments)
	flameMesh := geom.Cylinder(0, flameRadius, flameHeight, cfg.CandleSegments/2)
	flameMesh.Translate(geom.Vec3{Y: flameHeight / 2})

	roots := make([]geom.Vec3, cfg.Candles)
	for i := range cfg.Candles {
		angle := float64(i) / float64(cfg.Candles) * 2 * math.Pi
		pos := geom.Vec3{
			X: math.Cos(angle) * cfg.CandleRing,
			Y: cfg.CandleY,
			Z: math.Sin(angle) * cfg.CandleRing,
		}
		hold := particle.DefaultHold(cfg.CandleScale)
		hold.Origin = pos
		c.candles = append(c.candles, c.sampleHold(candleMesh, cfg.CandleParticles, hold, fmt.Sprintf("candle %d", i)))

		c.flame = append(c.flame, c.sampleHold(flameMesh, cfg.FlameParticles, particle.DefaultHold(1), fmt.Sprintf("flame %d", i)))
		roots[i] = pos.Add(geom.Vec3{Y: cfg.FlameLift})
	}
	c.flames = newFlames(roots, cfg.FlameBlowScale, cfg.FlameShake, cfg.FlameLight, cfg.FlameLightRate)

	orbit := particle.DefaultOrbit()
	orbit.Count = cfg.Bubbles
	c.bubbles = particle.NewOrbit(orbit, rng)

	logger.Debug("cake sampled", "tiers", len(c.tiers), "candles", len(c.candles), "bubbles", c.bubbles.Len())
	return c, nil
}

func (c *Cake) sampleHold(mesh *geom.Mesh, count int, hold particle.HoldConfig, what string) *particle.Field {
	pts, err := sampler.Sample(mesh, count, c.rng)
	if err != nil {
		c.logger.Warn("surface left empty", "surface", what, "error", err)
		pts = nil
	}
	return particle.NewSurfaceHold(pts, hold, c.rng)
}

// Step advances rotation, bubbles and flames by delta seconds.
func (c *Cake) Step(delta float64, state candle.State, volume float64) {
	if delta <= 0 {
		return
	}
	delta = min(delta, particle.MaxDelta)
	c.yaw += delta * c.cfg.SpinRate
	c.bubbles.Step(delta)
	for _, t := range c.tiers {
		t.field.Step(delta)
	}
	c.flames.step(delta, state, volume, c.rng)
}

// Yaw returns the current spin angle in radians.
func (c *Cake) Yaw() float64 { return c.yaw }

// Light returns the flame light intensity.
func (c *Cake) Light() float64 { return c.flames.light }

// FlameScale returns the rendered scale of flame i.
func (c *Cake) FlameScale(i int) float64 { return c.flames.scale[i] }

// Flames returns the number of candle flames.
func (c *Cake) Flames() int { return len(c.flames.scale) }

// toWorld spins a cake-space point with the cake and applies the offset.
func (c *Cake) toWorld(p geom.Vec3) geom.Vec3 {
	return p.RotateY(c.yaw).Add(c.cfg.Offset)
}

// Layers returns fresh world-space transform buffers, back to front.
func (c *Cake) Layers() []Layer {
	layers := []Layer{{
		Name:   "bubbles",
		Color:  c.bubbleColor,
		Points: c.bubbles.AppendTransforms(nil),
	}}

	for _, t := range c.tiers {
		layers = append(layers, Layer{
			Name:   t.name,
			Color:  t.color,
			Points: c.spin(t.field.AppendTransforms(nil)),
		})
	}

	var candles []float32
	for _, f := range c.candles {
		candles = f.AppendTransforms(candles)
	}
	layers = append(layers, Layer{Name: "candles", Color: c.candleColor, Points: c.spin(candles)})

	var flames []float32
	for i, f := range c.flame {
		s := c.flames.scale[i]
		if s <= 0 {
			continue
		}
		root := c.flames.root(i)
		for _, p := range f.Particles() {
			w := c.toWorld(root.Add(p.Position.Scale(s)))
			flames = append(flames, float32(w.X), float32(w.Y), float32(w.Z), float32(p.Scale*s))
		}
	}
	glow := colorful.Color{R: 0.3, G: 0.1, B: 0}.BlendLab(c.flameColor, min(1, c.flames.light/c.cfg.FlameLight))
	layers = append(layers, Layer{Name: "flames", Color: glow.Clamped(), Points: flames})

	return layers
}

// spin moves a cake-space buffer into world space in place.
func (c *Cake) spin(buf []float32) []float32 {
	for o := 0; o+particle.Stride <= len(buf); o += particle.Stride {
		w := c.toWorld(geom.Vec3{X: float64(buf[o]), Y: float64(buf[o+1]), Z: float64(buf[o+2])})
		buf[o], buf[o+1], buf[o+2] = float32(w.X), float32(w.Y), float32(w.Z)
	}
	return buf
}
