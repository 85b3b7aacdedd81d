package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// ErrDeviceUnavailable is returned when no microphone stream can be opened.
var ErrDeviceUnavailable = errors.New("audio input device unavailable")

// Source delivers mono samples into a ring.
type Source interface {
	Start(ring *Ring) error
	Close() error
}

// Mic captures the default input device through PortAudio.
type Mic struct {
	sampleRate float64
	frames     int

	stream *portaudio.Stream
	ring   *Ring
	mu     sync.Mutex
}

// NewMic describes a default-device capture at sampleRate, delivering
// frames samples per callback.
func NewMic(sampleRate float64, frames int) *Mic {
	return &Mic{sampleRate: sampleRate, frames: frames}
}

// Start initializes PortAudio and opens a one-channel input stream.
func (m *Mic) Start(ring *Ring) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	m.ring = ring

	stream, err := portaudio.OpenDefaultStream(1, 0, m.sampleRate, m.frames, m.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("%w: opening input stream: %v", ErrDeviceUnavailable, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("%w: starting input stream: %v", ErrDeviceUnavailable, err)
	}
	m.stream = stream
	return nil
}

// process runs on the PortAudio callback thread.
func (m *Mic) process(in []float32) {
	m.ring.Write(in)
}

// Close stops the stream and releases PortAudio.
func (m *Mic) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return nil
	}
	var errs []error
	if err := m.stream.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping input stream: %w", err))
	}
	if err := m.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing input stream: %w", err))
	}
	m.stream = nil
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, fmt.Errorf("terminating portaudio: %w", err))
	}
	return errors.Join(errs...)
}
