package audio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/olivier-w/wishcake/internal/config"
)

type advancer interface {
	Advance(dt time.Duration)
}

// Session owns one input source and the analysis chain reading from it.
// Tick and Level are called from the event loop only; the source writes
// into the ring from its own goroutine.
type Session struct {
	src      Source
	ring     *Ring
	analyser *Analyser
	smoother *Smoother
	window   []float32
	manual   float64
	logger   *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open acquires the default microphone. Failure wraps ErrDeviceUnavailable.
func Open(ctx context.Context, cfg config.Audio, logger *slog.Logger) (*Session, error) {
	return OpenSource(ctx, NewMic(cfg.SampleRate, cfg.FFTSize), cfg, logger)
}

// OpenSource starts src and builds a session around it.
func OpenSource(ctx context.Context, src Source, cfg config.Audio, logger *slog.Logger) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := newSession(src, cfg, logger)
	if err := src.Start(s.ring); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		src.Close()
		return nil, err
	}
	s.logger.Info("audio session opened", "fft_size", cfg.FFTSize, "sample_rate", cfg.SampleRate)
	return s, nil
}

// Silent returns a session with no source. Its level only moves through
// Blow.
func Silent(cfg config.Audio, logger *slog.Logger) *Session {
	return newSession(nil, cfg, logger)
}

func newSession(src Source, cfg config.Audio, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		src:      src,
		ring:     NewRing(cfg.FFTSize * 8),
		analyser: NewAnalyser(cfg.FFTSize, cfg.SmoothingTimeConstant, cfg.MinDecibels, cfg.MaxDecibels),
		smoother: NewSmoother(cfg.Sensitivity, cfg.Retain),
		window:   make([]float32, cfg.FFTSize),
		logger:   logger,
	}
}

// Live reports whether a real source feeds the session.
func (s *Session) Live() bool { return s.src != nil }

// Blow injects manual energy for the next tick, as if the source had
// produced it. Readings combine by maximum.
func (s *Session) Blow(raw float64) {
	s.manual = max(s.manual, raw)
}

// Tick runs one analysis step and returns the smoothed level.
func (s *Session) Tick(dt time.Duration) float64 {
	var raw float64
	if s.src != nil {
		if a, ok := s.src.(advancer); ok {
			a.Advance(dt)
		}
		s.ring.Latest(s.window)
		raw = s.analyser.Energy(s.window)
	}
	raw = max(raw, s.manual)
	s.manual = 0
	return s.smoother.Update(raw)
}

// Level returns the latest smoothed value in [0,1].
func (s *Session) Level() float64 { return s.smoother.Value() }

// Close releases the source. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.src != nil {
			s.closeErr = s.src.Close()
			s.logger.Info("audio session closed")
		}
	})
	return s.closeErr
}
