package audio

import (
	"math"
	"testing"
)

func sine(n int, freq, rate, amp float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}
	return out
}

func TestAnalyserSilenceIsZero(t *testing.T) {
	a := NewAnalyser(256, 0.8, -100, -30)
	if e := a.Energy(make([]float32, 256)); e != 0 {
		t.Fatalf("expected zero energy for silence, got %v", e)
	}
	if a.Bins() != 128 {
		t.Fatalf("expected 128 bins, got %d", a.Bins())
	}
}

func TestAnalyserLoudToneHasEnergy(t *testing.T) {
	a := NewAnalyser(256, 0, -100, -30)
	data := a.Process(sine(256, 2000, 44100, 0.8))

	// 2000 Hz at 44.1 kHz / 256 sits near bin 11.6.
	if data[12] != 255 {
		t.Fatalf("expected loud tone to saturate its bin, got %d", data[12])
	}
	if data[60] >= data[12] {
		t.Fatalf("expected distant bin below the tone, got %d", data[60])
	}
}

func TestAnalyserNoiseBeatsQuiet(t *testing.T) {
	loud := NewAnalyser(256, 0, -100, -30)
	quiet := NewAnalyser(256, 0, -100, -30)

	rng := newTestNoise(7)
	noise := make([]float32, 256)
	soft := make([]float32, 256)
	for i := range noise {
		v := rng()
		noise[i] = v * 0.9
		soft[i] = v * 0.0005
	}

	el, eq := loud.Energy(noise), quiet.Energy(soft)
	if el <= eq {
		t.Fatalf("expected loud noise energy %v to exceed quiet %v", el, eq)
	}
	if el < 50 {
		t.Fatalf("expected broadband noise to reach full-signal energy, got %v", el)
	}
}

func TestAnalyserSmoothingCarriesHistory(t *testing.T) {
	a := NewAnalyser(256, 0.8, -100, -30)
	tone := sine(256, 2000, 44100, 0.8)
	a.Energy(tone)
	after := a.Energy(make([]float32, 256))
	if after == 0 {
		t.Fatal("expected smoothing to keep energy after one silent window")
	}
	a.Reset()
	if e := a.Energy(make([]float32, 256)); e != 0 {
		t.Fatalf("expected zero energy after Reset, got %v", e)
	}
}

// newTestNoise is a tiny deterministic LCG in [-1,1).
func newTestNoise(seed uint32) func() float32 {
	s := seed
	return func() float32 {
		s = s*1664525 + 1013904223
		return float32(s>>8)/float32(1<<23) - 1
	}
}
