package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Analyser reduces a window of time-domain samples to byte-scaled
// frequency magnitudes: Blackman window, FFT, magnitude/N, temporal
// smoothing across calls, then a linear map of [minDB, maxDB] onto 0..255.
type Analyser struct {
	size      int
	smoothing float64
	minDB     float64
	maxDB     float64
	window    []float64
	frame     []float64
	smoothed  []float64
	bytes     []uint8
}

// NewAnalyser creates an analyser for windows of size samples. size must
// be a power of two.
func NewAnalyser(size int, smoothing, minDB, maxDB float64) *Analyser {
	return &Analyser{
		size:      size,
		smoothing: smoothing,
		minDB:     minDB,
		maxDB:     maxDB,
		window:    window.Blackman(size),
		frame:     make([]float64, size),
		smoothed:  make([]float64, size/2),
		bytes:     make([]uint8, size/2),
	}
}

// Size returns the window length in samples.
func (a *Analyser) Size() int { return a.size }

// Bins returns the number of frequency bins.
func (a *Analyser) Bins() int { return a.size / 2 }

// Process analyses samples (shorter input is zero-padded at the front)
// and returns the byte frequency data. The returned slice is reused by the
// next call.
func (a *Analyser) Process(samples []float32) []uint8 {
	pad := a.size - len(samples)
	for i := range a.size {
		var s float64
		if j := i - pad; j >= 0 && j < len(samples) {
			s = float64(samples[j])
		}
		a.frame[i] = s * a.window[i]
	}

	spectrum := fft.FFTReal(a.frame)

	n := float64(a.size)
	scale := 255 / (a.maxDB - a.minDB)
	for k := range a.smoothed {
		mag := cmplx.Abs(spectrum[k]) / n
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag

		db := math.Inf(-1)
		if a.smoothed[k] > 0 {
			db = 20 * math.Log10(a.smoothed[k])
		}
		v := math.Floor(scale * (db - a.minDB))
		switch {
		case math.IsNaN(v) || v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		a.bytes[k] = uint8(v)
	}
	return a.bytes
}

// Energy returns the mean of the byte frequency data for samples, the raw
// reading fed to the Smoother.
func (a *Analyser) Energy(samples []float32) float64 {
	data := a.Process(samples)
	if len(data) == 0 {
		return 0
	}
	var sum int
	for _, b := range data {
		sum += int(b)
	}
	return float64(sum) / float64(len(data))
}

// Reset clears the temporal smoothing history.
func (a *Analyser) Reset() {
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}
