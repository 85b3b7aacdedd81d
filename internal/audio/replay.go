package audio

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Replay feeds a recorded clip into the ring on simulated time instead of
// a live device. After the clip ends it feeds silence.
type Replay struct {
	samples []float32
	rate    float64
	pos     int
	carry   float64
	ring    *Ring
	loop    bool
}

// NewReplay wraps mono samples recorded at rate.
func NewReplay(samples []float32, rate float64) *Replay {
	return &Replay{samples: samples, rate: rate}
}

// OpenWAV decodes a PCM WAV file, mixing all channels down to mono.
func OpenWAV(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate < 1 {
		return nil, fmt.Errorf("WAV file has no usable format")
	}
	return NewReplay(mixDown(buf, int(dec.BitDepth)), float64(buf.Format.SampleRate)), nil
}

func mixDown(buf *audio.IntBuffer, bitDepth int) []float32 {
	chans := buf.Format.NumChannels
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	full := float64(int(1) << (bitDepth - 1))

	frames := len(buf.Data) / chans
	out := make([]float32, frames)
	for i := range frames {
		var sum float64
		for c := range chans {
			sum += float64(buf.Data[i*chans+c])
		}
		out[i] = float32(sum / float64(chans) / full)
	}
	return out
}

// SetLoop makes the clip restart after it ends.
func (r *Replay) SetLoop(loop bool) { r.loop = loop }

// Start attaches the ring. Nothing is written until Advance.
func (r *Replay) Start(ring *Ring) error {
	r.ring = ring
	return nil
}

// Advance writes dt worth of samples.
func (r *Replay) Advance(dt time.Duration) {
	if r.ring == nil || dt <= 0 {
		return
	}
	r.carry += dt.Seconds() * r.rate
	n := int(r.carry)
	r.carry -= float64(n)
	if n == 0 {
		return
	}

	chunk := make([]float32, n)
	for i := range chunk {
		if r.pos >= len(r.samples) {
			if !r.loop || len(r.samples) == 0 {
				break
			}
			r.pos = 0
		}
		chunk[i] = r.samples[r.pos]
		r.pos++
	}
	r.ring.Write(chunk)
}

// Done reports whether a non-looping clip has been fully played.
func (r *Replay) Done() bool { return !r.loop && r.pos >= len(r.samples) }

// Close is a no-op.
func (r *Replay) Close() error { return nil }
