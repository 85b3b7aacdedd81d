package audio

import (
	"math"
	"testing"
)

func TestSmootherConvergesToFullScale(t *testing.T) {
	s := NewSmoother(50, 0.8)
	for range 60 {
		s.Update(255)
	}
	if got := s.Value(); math.Abs(got-1) > 1e-4 {
		t.Fatalf("expected ~1 after sustained loud input, got %v", got)
	}
}

func TestSmootherStepResponse(t *testing.T) {
	s := NewSmoother(50, 0.8)
	if got := s.Update(50); math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("expected first update 0.2, got %v", got)
	}
	if got := s.Update(50); math.Abs(got-0.36) > 1e-12 {
		t.Fatalf("expected second update 0.36, got %v", got)
	}
}

func TestSmootherDecaysGeometrically(t *testing.T) {
	s := NewSmoother(50, 0.8)
	for range 60 {
		s.Update(100)
	}
	start := s.Value()
	for range 10 {
		s.Update(0)
	}
	want := start * math.Pow(0.8, 10)
	if got := s.Value(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v after 10 silent ticks, got %v", want, got)
	}
}

func TestSmootherClampsInput(t *testing.T) {
	s := NewSmoother(50, 0.8)
	s.Update(-100)
	if s.Value() != 0 {
		t.Fatalf("expected negative input to read as 0, got %v", s.Value())
	}
	for range 200 {
		s.Update(1e9)
	}
	if s.Value() > 1 {
		t.Fatalf("expected value to stay within [0,1], got %v", s.Value())
	}
}

func TestMeterAttackAndPeakHold(t *testing.T) {
	var m Meter
	m.Update(1)
	if m.Level() < 0.59 || m.Level() > 0.61 {
		t.Fatalf("expected fast attack to 0.6, got %v", m.Level())
	}
	peak := m.Peak()
	m.Update(0)
	if m.Level() >= peak {
		t.Fatalf("expected release below peak, got level %v peak %v", m.Level(), peak)
	}
	if m.Peak() != peak-meterPeakDecay {
		t.Fatalf("expected peak to decay by %v, got %v", meterPeakDecay, m.Peak())
	}
}
