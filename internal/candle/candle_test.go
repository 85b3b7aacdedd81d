package candle

import (
	"log/slog"
	"testing"

	"github.com/olivier-w/wishcake/internal/config"
)

const frame = 1.0 / 60

func activeMachine(t *testing.T) (*Machine, *int) {
	t.Helper()
	m := New(config.Default().Candle, slog.New(slog.DiscardHandler))
	fired := 0
	m.OnExtinguish(func() { fired++ })
	m.Activate()
	// Run out the 3s grace period in silence.
	for range 181 {
		m.Update(0, frame)
	}
	if m.InGrace() {
		t.Fatal("expected grace period to be over")
	}
	return m, &fired
}

func TestUpdateBeforeActivateIsNoop(t *testing.T) {
	m := New(config.Default().Candle, nil)
	for range 600 {
		m.Update(1, frame)
	}
	if m.State() != Lit {
		t.Fatalf("expected lit before activation, got %v", m.State())
	}
}

func TestGraceIgnoresLoudInput(t *testing.T) {
	m := New(config.Default().Candle, nil)
	m.Activate()
	for range 170 {
		m.Update(1, frame)
	}
	if m.State() != Lit {
		t.Fatalf("expected lit during grace, got %v", m.State())
	}
}

func TestInstantGustExtinguishes(t *testing.T) {
	m, fired := activeMachine(t)
	m.Update(0.95, frame)
	if m.State() != Extinguished {
		t.Fatalf("expected extinguished after a gust, got %v", m.State())
	}
	if *fired != 1 {
		t.Fatalf("expected one notification, got %d", *fired)
	}
}

func TestSustainedBlowExtinguishes(t *testing.T) {
	m, fired := activeMachine(t)

	frames := 0
	for m.State() != Extinguished && frames < 600 {
		m.Update(0.5, frame)
		frames++
	}
	secs := float64(frames) * frame
	if secs < 1.2 || secs > 1.25 {
		t.Fatalf("expected extinguish just after 1.2s of blowing, took %.3fs", secs)
	}
	if *fired != 1 {
		t.Fatalf("expected one notification, got %d", *fired)
	}
}

func TestBlowThenSilenceRecovers(t *testing.T) {
	m, fired := activeMachine(t)

	for range 60 { // 1s
		m.Update(0.5, frame)
	}
	if m.State() != Blowing {
		t.Fatalf("expected blowing, got %v", m.State())
	}

	m.Update(0.1, frame)
	if m.State() != Lit {
		t.Fatalf("expected lit once blowing stops, got %v", m.State())
	}

	for range 30 { // decay x3 drains 1s of credit in a third of a second
		m.Update(0, frame)
	}
	if m.BlowTime() != 0 {
		t.Fatalf("expected credit drained, got %v", m.BlowTime())
	}
	if *fired != 0 {
		t.Fatalf("expected no notification, got %d", *fired)
	}

	// Another 1s blow starts from zero credit and still falls short.
	for range 60 {
		m.Update(0.5, frame)
	}
	if m.State() == Extinguished {
		t.Fatal("expected candles to survive two short blows")
	}
}

func TestUpdatesAfterExtinguishAreNoops(t *testing.T) {
	m, fired := activeMachine(t)
	m.Update(1, frame)
	credit := m.BlowTime()
	for range 100 {
		m.Update(1, frame)
		m.Update(0, frame)
	}
	if m.State() != Extinguished || m.BlowTime() != credit {
		t.Fatalf("expected frozen state, got %v with credit %v", m.State(), m.BlowTime())
	}
	if *fired != 1 {
		t.Fatalf("expected one notification, got %d", *fired)
	}
}

func TestBlowThresholdIsExclusive(t *testing.T) {
	m, _ := activeMachine(t)
	m.Update(0.35, frame)
	if m.State() != Lit {
		t.Fatalf("expected volume at threshold to stay lit, got %v", m.State())
	}
	m.Update(0.89, frame)
	if m.State() != Blowing {
		t.Fatalf("expected blowing just under the gust threshold, got %v", m.State())
	}
}

func TestGustAtThresholdExtinguishesOnFourthUpdate(t *testing.T) {
	m, fired := activeMachine(t)
	for i, v := range []float64{0, 0, 0, 0.9} {
		m.Update(v, frame)
		if i < 3 && m.State() != Lit {
			t.Fatalf("update %d: expected lit, got %v", i+1, m.State())
		}
	}
	if m.State() != Extinguished {
		t.Fatalf("expected extinguished on the 4th update, got %v", m.State())
	}
	if *fired != 1 {
		t.Fatalf("expected one notification, got %d", *fired)
	}
}
