// Package config collects every tuned constant of the experience in one
// place. Default returns the reference values; hosts may adjust fields
// before handing the config to the engine.
package config

import (
	"errors"
	"fmt"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/olivier-w/wishcake/internal/geom"
)

// Config is the full engine configuration.
type Config struct {
	Audio    Audio
	Candle   Candle
	Choreo   Choreo
	Cake     Cake
	Greeting Greeting
}

// Audio tunes microphone analysis and the smoothed blowing signal.
type Audio struct {
	SampleRate float64
	// FFTSize is the analysis window; half of it is the number of bins.
	FFTSize int
	// SmoothingTimeConstant blends successive spectra (0 = none).
	SmoothingTimeConstant float64
	MinDecibels           float64
	MaxDecibels           float64
	// Sensitivity is the mean bin byte value that maps to a full signal.
	Sensitivity float64
	// Retain is the share of the previous smoothed value kept each tick.
	Retain float64
	// AnalysisInterval is the analysis tick period.
	AnalysisInterval time.Duration
	// Cues enables the synthesized extinguish chime and firework pops.
	Cues bool
}

// Candle tunes the blowing state machine.
type Candle struct {
	Grace           time.Duration
	BlowThreshold   float64
	GustThreshold   float64
	ExtinguishAfter float64 // seconds of accumulated blowing
	DecayFactor     float64 // blowing credit lost per second of silence, relative to accumulation
}

// Firework is one burst of the finale.
type Firework struct {
	Position geom.Vec3
	Color    string
	Delay    time.Duration
}

// Choreo tunes stage timing and the finale.
type Choreo struct {
	Loading        time.Duration
	GestureScan    time.Duration
	Gesture        time.Duration
	CountdownFrom  int
	DigitParticles int
	DigitColor     string
	GreetingDelay  time.Duration
	FireworksDelay time.Duration
	LetterDelay    time.Duration
	Fireworks      []Firework
}

// Tier is one sampled cylinder of the cake.
type Tier struct {
	Radius float64
	Height float64
	Y      float64
	Count  int
	Color  string
}

// Cake describes the main scene.
type Cake struct {
	Offset          geom.Vec3
	SpinRate        float64 // radians per second around Y
	Tiers           []Tier
	Candles         int
	CandleRing      float64
	CandleY         float64
	CandleRadius    float64
	CandleHeight    float64
	CandleParticles int
	CandleScale     float64
	CandleColor     string
	FlameLift       float64
	FlameColor      string
	BubbleColor     string
	FlameParticles  int
	Bubbles         int
	RadialSegments  int
	CandleSegments  int
	FlameShake      float64
	FlameBlowScale  float64
	FlameLight      float64
	FlameLightRate  float64
}

// Greeting holds the overlay text shown after the candles go out.
type Greeting struct {
	Title              string
	Subtitle           string
	LetterTitle        string
	Letter             string
	TypewriterInterval time.Duration
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Audio: Audio{
			SampleRate:            44100,
			FFTSize:               256,
			SmoothingTimeConstant: 0.8,
			MinDecibels:           -100,
			MaxDecibels:           -30,
			Sensitivity:           50,
			Retain:                0.8,
			AnalysisInterval:      time.Second / 60,
			Cues:                  true,
		},
		Candle: Candle{
			Grace:           3 * time.Second,
			BlowThreshold:   0.35,
			GustThreshold:   0.9,
			ExtinguishAfter: 1.2,
			DecayFactor:     3,
		},
		Choreo: Choreo{
			Loading:        1500 * time.Millisecond,
			GestureScan:    3500 * time.Millisecond,
			Gesture:        5 * time.Second,
			CountdownFrom:  3,
			DigitParticles: 350,
			DigitColor:     "#00BFFF",
			GreetingDelay:  500 * time.Millisecond,
			FireworksDelay: 300 * time.Millisecond,
			LetterDelay:    4 * time.Second,
			Fireworks: []Firework{
				{Position: geom.Vec3{X: 0, Y: 7, Z: 0}, Color: "#FFD700", Delay: 0},
				{Position: geom.Vec3{X: 0, Y: 8, Z: 1}, Color: "#FF4500", Delay: 300 * time.Millisecond},
				{Position: geom.Vec3{X: -5, Y: 7, Z: -3}, Color: "#FF1493", Delay: 600 * time.Millisecond},
				{Position: geom.Vec3{X: 5, Y: 9, Z: 2}, Color: "#00BFFF", Delay: 900 * time.Millisecond},
				{Position: geom.Vec3{X: -6, Y: 10, Z: 3}, Color: "#FF69B4", Delay: 1200 * time.Millisecond},
				{Position: geom.Vec3{X: 6, Y: 8, Z: -4}, Color: "#9400D3", Delay: 1500 * time.Millisecond},
				{Position: geom.Vec3{X: 0, Y: 12, Z: 0}, Color: "#FFFFFF", Delay: 1800 * time.Millisecond},
			},
		},
		Cake: Cake{
			Offset:   geom.Vec3{Y: -1.2},
			SpinRate: 0.15,
			Tiers: []Tier{
				{Radius: 1.8, Height: 0.8, Y: 0.4, Count: 5000, Color: "#FFC0CB"},
				{Radius: 1.3, Height: 0.8, Y: 1.2, Count: 3500, Color: "#FF69B4"},
				{Radius: 0.8, Height: 0.8, Y: 2.0, Count: 2000, Color: "#FF1493"},
			},
			Candles:         6,
			CandleRing:      0.5,
			CandleY:         2.45,
			CandleRadius:    0.04,
			CandleHeight:    0.5,
			CandleParticles: 300,
			CandleScale:     0.6,
			CandleColor:     "#FFF8DC",
			FlameLift:       0.25,
			FlameColor:      "#FFD700",
			BubbleColor:     "#FF69B4",
			FlameParticles:  48,
			Bubbles:         120,
			RadialSegments:  64,
			CandleSegments:  32,
			FlameShake:      0.5,
			FlameBlowScale:  0.85,
			FlameLight:      1.2,
			FlameLightRate:  3,
		},
		Greeting: Greeting{
			Title:              "Happy Birthday",
			Subtitle:           "make a wish",
			LetterTitle:        "A letter for you",
			Letter:             defaultLetter,
			TypewriterInterval: 50 * time.Millisecond,
		},
	}
}

const defaultLetter = `Happy birthday!

When the fireworks light up, I hope you shine just as bright.

The candlelight, the cake and the magic of this moment are all for you.

Wishing you peace and joy, this year and every year.`

// Validate reports every out-of-range value at once.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	a := c.Audio
	check(a.SampleRate > 0, "audio: sample rate %v must be positive", a.SampleRate)
	check(a.FFTSize >= 32 && a.FFTSize&(a.FFTSize-1) == 0, "audio: fft size %d must be a power of two >= 32", a.FFTSize)
	check(a.SmoothingTimeConstant >= 0 && a.SmoothingTimeConstant < 1, "audio: smoothing %v must be in [0,1)", a.SmoothingTimeConstant)
	check(a.MaxDecibels > a.MinDecibels, "audio: max decibels %v must exceed min %v", a.MaxDecibels, a.MinDecibels)
	check(a.Sensitivity > 0, "audio: sensitivity %v must be positive", a.Sensitivity)
	check(a.Retain >= 0 && a.Retain < 1, "audio: retain %v must be in [0,1)", a.Retain)
	check(a.AnalysisInterval > 0, "audio: analysis interval must be positive")

	k := c.Candle
	check(k.Grace >= 0, "candle: grace must not be negative")
	check(k.BlowThreshold > 0 && k.BlowThreshold < k.GustThreshold, "candle: blow threshold %v must be in (0, gust %v)", k.BlowThreshold, k.GustThreshold)
	check(k.ExtinguishAfter > 0, "candle: extinguish duration must be positive")
	check(k.DecayFactor >= 0, "candle: decay factor must not be negative")

	ch := c.Choreo
	check(ch.Gesture >= ch.GestureScan, "choreo: gesture %v shorter than its scan %v", ch.Gesture, ch.GestureScan)
	check(ch.CountdownFrom >= 0 && ch.CountdownFrom <= 9, "choreo: countdown %d must be a single digit", ch.CountdownFrom)
	check(ch.DigitParticles >= 0, "choreo: digit particles must not be negative")
	errs = append(errs, checkColor("choreo: digit", ch.DigitColor))
	for i, fw := range ch.Fireworks {
		check(fw.Delay >= 0, "choreo: firework %d delay must not be negative", i)
		errs = append(errs, checkColor(fmt.Sprintf("choreo: firework %d", i), fw.Color))
	}

	ck := c.Cake
	for i, t := range ck.Tiers {
		check(t.Radius > 0 && t.Height > 0, "cake: tier %d has no volume", i)
		check(t.Count >= 0, "cake: tier %d count must not be negative", i)
		errs = append(errs, checkColor(fmt.Sprintf("cake: tier %d", i), t.Color))
	}
	check(ck.Candles >= 0, "cake: candle count must not be negative")
	check(ck.CandleParticles >= 0 && ck.FlameParticles >= 0 && ck.Bubbles >= 0, "cake: particle counts must not be negative")
	check(ck.FlameLight > 0, "cake: flame light %v must be positive", ck.FlameLight)
	check(ck.RadialSegments >= 3 && ck.CandleSegments >= 3, "cake: cylinders need at least 3 segments")
	errs = append(errs,
		checkColor("cake: candle", ck.CandleColor),
		checkColor("cake: flame", ck.FlameColor),
		checkColor("cake: bubble", ck.BubbleColor),
	)

	return errors.Join(errs...)
}

func checkColor(what, hex string) error {
	if _, err := ParseColor(hex); err != nil {
		return fmt.Errorf("%s color: %w", what, err)
	}
	return nil
}

// ParseColor parses a #RRGGBB color.
func ParseColor(hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("parsing %q: %w", hex, err)
	}
	return c, nil
}
