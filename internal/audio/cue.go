package audio

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

const (
	cueSampleRate = 44100
	cueChannels   = 2
)

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   cueSampleRate,
			ChannelCount: cueChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Cues plays short synthesized sounds. A nil *Cues is silent.
type Cues struct {
	ctx    *oto.Context
	logger *slog.Logger

	chime []byte
	pops  map[int][]byte

	mu      sync.Mutex
	playing []*oto.Player
}

// NewCues opens the default output device and pre-renders the chime.
func NewCues(logger *slog.Logger) (*Cues, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, err := initOto()
	if err != nil {
		return nil, fmt.Errorf("opening audio output: %w", err)
	}
	chime, err := chimePCM(cueSampleRate)
	if err != nil {
		return nil, err
	}
	return &Cues{
		ctx:    ctx,
		logger: logger,
		chime:  chime,
		pops:   make(map[int][]byte),
	}, nil
}

// Chime plays the extinguish cue.
func (c *Cues) Chime() {
	if c == nil {
		return
	}
	c.play(c.chime)
}

// Pop plays a firework burst cue. Higher variants pop at a higher pitch.
func (c *Cues) Pop(variant int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	pcm, ok := c.pops[variant]
	c.mu.Unlock()
	if !ok {
		var err error
		pcm, err = popPCM(cueSampleRate, 180+40*float64(variant))
		if err != nil {
			c.logger.Warn("rendering pop cue", "error", err)
			return
		}
		c.mu.Lock()
		c.pops[variant] = pcm
		c.mu.Unlock()
	}
	c.play(pcm)
}

func (c *Cues) play(pcm []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.playing[:0]
	for _, p := range c.playing {
		if p.IsPlaying() {
			live = append(live, p)
		}
	}
	c.playing = live

	p := c.ctx.NewPlayer(bytes.NewReader(pcm))
	p.SetVolume(0.5)
	p.Play()
	c.playing = append(c.playing, p)
}

func chimePCM(rate int) ([]byte, error) {
	sr := beep.SampleRate(rate)
	dur := 600 * time.Millisecond

	low, err := generators.SineTone(sr, 1046.5)
	if err != nil {
		return nil, fmt.Errorf("chime fundamental: %w", err)
	}
	high, err := generators.SineTone(sr, 1318.5)
	if err != nil {
		return nil, fmt.Errorf("chime overtone: %w", err)
	}
	mixed := beep.Mix(
		volume(decay(beep.Take(sr.N(dur), low), sr, 0.25), 0.6),
		volume(decay(beep.Take(sr.N(dur), high), sr, 0.15), 0.3),
	)
	return renderS16(beep.Take(sr.N(dur), mixed)), nil
}

func popPCM(rate int, freq float64) ([]byte, error) {
	sr := beep.SampleRate(rate)
	dur := 140 * time.Millisecond

	tone, err := generators.SineTone(sr, freq)
	if err != nil {
		return nil, fmt.Errorf("pop tone: %w", err)
	}
	s := beep.Seq(
		volume(decay(beep.Take(sr.N(dur), tone), sr, 0.04), 0.7),
		beep.Silence(sr.N(20*time.Millisecond)),
	)
	return renderS16(s), nil
}

// decay applies an exponential envelope with time constant tau seconds.
func decay(s beep.Streamer, sr beep.SampleRate, tau float64) beep.Streamer {
	pos := 0
	step := 1 / float64(sr)
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range n {
			g := math.Exp(-float64(pos) * step / tau)
			samples[i][0] *= g
			samples[i][1] *= g
			pos++
		}
		return n, ok
	})
}

func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

// renderS16 drains s into interleaved little-endian int16 stereo.
func renderS16(s beep.Streamer) []byte {
	var out []byte
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := range n {
			for ch := range cueChannels {
				v := max(-1, min(1, buf[i][ch]))
				x := int16(v * math.MaxInt16)
				out = append(out, byte(x), byte(x>>8))
			}
		}
		if !ok || n == 0 {
			return out
		}
	}
}
