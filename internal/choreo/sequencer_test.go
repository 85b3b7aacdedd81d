package choreo

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/olivier-w/wishcake/internal/candle"
	"github.com/olivier-w/wishcake/internal/config"
	"github.com/olivier-w/wishcake/internal/geom"
	"github.com/olivier-w/wishcake/internal/particle"
)

const frame = 16 * time.Millisecond

type blockGlyphs struct {
	err   error
	calls []int
}

func (b *blockGlyphs) Digit(n int) (*geom.Mesh, error) {
	b.calls = append(b.calls, n)
	if b.err != nil {
		return nil, b.err
	}
	return geom.Cylinder(1, 1, 2, 8), nil
}

type recorder struct {
	s      *Sequencer
	events []Event
	at     []time.Duration
}

func (r *recorder) record(ev Event) {
	r.events = append(r.events, ev)
	r.at = append(r.at, r.s.clock.now)
}

func (r *recorder) first(kind EventKind) (Event, time.Duration, bool) {
	for i, ev := range r.events {
		if ev.Kind == kind {
			return ev, r.at[i], true
		}
	}
	return Event{}, 0, false
}

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func newTestSequencer(t *testing.T, glyphs GlyphProvider, listen func()) (*Sequencer, *recorder) {
	t.Helper()
	s, err := New(Options{
		Config:         config.Default(),
		Glyphs:         glyphs,
		StartListening: listen,
		Rand:           particle.NewRand(11, 12),
		Logger:         slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := &recorder{s: s}
	s.Subscribe(r.record)
	return s, r
}

func run(s *Sequencer, d time.Duration, volume float64) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		s.Tick(frame, volume)
	}
}

func runUntil(t *testing.T, s *Sequencer, limit time.Duration, volume float64, done func() bool) {
	t.Helper()
	for elapsed := time.Duration(0); !done(); elapsed += frame {
		if elapsed > limit {
			t.Fatalf("condition not reached within %v", limit)
		}
		s.Tick(frame, volume)
	}
}

// toMainCake walks through every stage with the countdown skipped.
func toMainCake(t *testing.T, s *Sequencer) {
	t.Helper()
	s.Advance()
	runUntil(t, s, 10*time.Second, 0, func() bool { return s.Stage() == StageCountdown })
	s.Skip()
	if s.Stage() != StageMainCake {
		t.Fatalf("expected main stage after skip, got %v", s.Stage())
	}
}

func TestIntroWaitsForAdvance(t *testing.T) {
	s, _ := newTestSequencer(t, nil, nil)
	run(s, 10*time.Second, 0)
	if s.Stage() != StageIntro {
		t.Fatalf("expected intro to wait, got %v", s.Stage())
	}
	s.Skip()
	if s.Stage() != StageIntro {
		t.Fatalf("expected skip to be ignored in intro, got %v", s.Stage())
	}
}

func TestLoadingAndGestureTiming(t *testing.T) {
	s, r := newTestSequencer(t, &blockGlyphs{}, nil)
	s.Advance()
	if s.Stage() != StageLoading {
		t.Fatalf("expected loading, got %v", s.Stage())
	}

	run(s, 752*time.Millisecond, 0)
	if p := s.LoadingProgress(); p < 45 || p > 55 {
		t.Fatalf("expected progress near 50%% halfway, got %v", p)
	}

	runUntil(t, s, 2*time.Second, 0, func() bool { return s.Stage() == StageGesture })
	_, enteredGesture, _ := r.first(EventGesture)
	if enteredGesture < 1500*time.Millisecond || enteredGesture > 1500*time.Millisecond+frame {
		t.Fatalf("expected gesture at 1.5s, got %v", enteredGesture)
	}
	if s.LoadingProgress() != 100 {
		t.Fatalf("expected full progress on leaving loading, got %v", s.LoadingProgress())
	}
	if s.Gesture() != GestureScanning {
		t.Fatalf("expected scanning, got %v", s.Gesture())
	}

	runUntil(t, s, 4*time.Second, 0, func() bool { return s.Gesture() == GestureDetected })
	if e := s.StageElapsed(); e < 3500*time.Millisecond || e > 3500*time.Millisecond+frame {
		t.Fatalf("expected detection at 3.5s into the stage, got %v", e)
	}
	if s.Stage() != StageGesture {
		t.Fatalf("expected to stay in gesture after detection, got %v", s.Stage())
	}

	runUntil(t, s, 2*time.Second, 0, func() bool { return s.Stage() == StageCountdown })
	if s.Countdown() != 3 {
		t.Fatalf("expected countdown to start at 3, got %d", s.Countdown())
	}
}

func TestCountdownChainsDigitsByCompletion(t *testing.T) {
	glyphs := &blockGlyphs{}
	listened := 0
	s, r := newTestSequencer(t, glyphs, func() { listened++ })
	s.Advance()
	runUntil(t, s, 10*time.Second, 0, func() bool { return s.Stage() == StageCountdown })
	start := s.clock.now

	if n := s.Digit().Len(); n != 350 {
		t.Fatalf("expected 350 digit particles, got %d", n)
	}
	runUntil(t, s, 10*time.Second, 0, func() bool { return s.Stage() == StageMainCake })

	var digits []int
	for _, ev := range r.events {
		if ev.Kind == EventCountdown {
			digits = append(digits, ev.Value)
		}
	}
	if len(digits) != 3 || digits[0] != 3 || digits[1] != 2 || digits[2] != 1 {
		t.Fatalf("expected digits 3,2,1, got %v", digits)
	}
	if len(glyphs.calls) != 3 {
		t.Fatalf("expected one glyph per digit, got %v", glyphs.calls)
	}

	// Each digit completes on the first step past 2s.
	took := s.clock.now - start
	if took < 6*time.Second-3*frame || took > 6*time.Second+3*2*frame {
		t.Fatalf("expected countdown to take just over 6s, took %v", took)
	}
	if listened != 1 {
		t.Fatalf("expected StartListening once, got %d", listened)
	}
	if s.Digit() != nil || s.Countdown() != 0 {
		t.Fatal("expected digit field discarded after the countdown")
	}
	if s.CandleState() != candle.Lit || !s.CandleGrace() {
		t.Fatal("expected candles lit and in grace on entering the main stage")
	}
}

func TestSkipOnlyFromCountdown(t *testing.T) {
	listened := 0
	s, _ := newTestSequencer(t, &blockGlyphs{}, func() { listened++ })
	s.Advance()
	s.Skip()
	if s.Stage() != StageLoading {
		t.Fatalf("expected skip ignored in loading, got %v", s.Stage())
	}
	runUntil(t, s, 10*time.Second, 0, func() bool { return s.Stage() == StageCountdown })
	run(s, time.Second, 0)
	s.Skip()
	if s.Stage() != StageMainCake {
		t.Fatalf("expected main stage, got %v", s.Stage())
	}
	if listened != 1 {
		t.Fatalf("expected StartListening once, got %d", listened)
	}
	run(s, 10*time.Second, 0)
	s.Skip()
	s.Advance()
	if s.Stage() != StageMainCake || listened != 1 {
		t.Fatalf("expected main stage to be terminal, got %v", s.Stage())
	}
}

func TestBrokenGlyphsStillCountDown(t *testing.T) {
	glyphs := &blockGlyphs{err: errors.New("no font")}
	s, _ := newTestSequencer(t, glyphs, nil)
	s.Advance()
	runUntil(t, s, 10*time.Second, 0, func() bool { return s.Stage() == StageCountdown })
	if s.Digit().Len() != 0 {
		t.Fatalf("expected empty digit field, got %d particles", s.Digit().Len())
	}
	runUntil(t, s, 7*time.Second, 0, func() bool { return s.Stage() == StageMainCake })
}

func TestExtinguishTimeline(t *testing.T) {
	s, r := newTestSequencer(t, nil, nil)
	toMainCake(t, s)

	// Loud input during the grace period is ignored.
	run(s, 2*time.Second, 1)
	if s.CandleState() != candle.Lit {
		t.Fatalf("expected candles lit during grace, got %v", s.CandleState())
	}
	run(s, 1200*time.Millisecond, 0)
	s.Tick(frame, 0.95)
	if s.CandleState() != candle.Extinguished {
		t.Fatalf("expected gust to extinguish, got %v", s.CandleState())
	}
	_, out, ok := r.first(EventExtinguished)
	if !ok {
		t.Fatal("expected extinguished event")
	}

	run(s, 480*time.Millisecond, 0)
	if s.GreetingVisible() {
		t.Fatal("expected greeting to wait 500ms")
	}
	run(s, 6*time.Second, 0)

	_, greet, _ := r.first(EventGreeting)
	_, fire, _ := r.first(EventFireworks)
	_, letter, _ := r.first(EventLetter)
	if d := greet - out; d != 500*time.Millisecond {
		t.Fatalf("expected greeting 500ms after extinguish, got %v", d)
	}
	if d := fire - greet; d != 300*time.Millisecond {
		t.Fatalf("expected fireworks 300ms after greeting, got %v", d)
	}
	if d := letter - fire; d != 4*time.Second {
		t.Fatalf("expected letter 4s after fireworks, got %v", d)
	}

	for _, k := range []EventKind{EventExtinguished, EventGreeting, EventFireworks, EventLetter} {
		if n := r.count(k); n != 1 {
			t.Fatalf("expected one %v event, got %d", k, n)
		}
	}
	if !s.GreetingVisible() || !s.FireworksTriggered() || !s.LetterAvailable() {
		t.Fatal("expected every epilogue flag set")
	}

	var bursts []int
	var burstAt []time.Duration
	for i, ev := range r.events {
		if ev.Kind == EventBurst {
			bursts = append(bursts, ev.Value)
			burstAt = append(burstAt, r.at[i])
		}
	}
	if len(bursts) != 7 {
		t.Fatalf("expected 7 bursts, got %v", bursts)
	}
	for i := range bursts {
		if bursts[i] != i {
			t.Fatalf("expected bursts in order, got %v", bursts)
		}
		want := fire + time.Duration(i)*300*time.Millisecond
		if burstAt[i] < want || burstAt[i] > want+2*frame {
			t.Fatalf("burst %d at %v, want ~%v", i, burstAt[i], want)
		}
	}
}

func TestExtinguishTimelineWithCoarseTicks(t *testing.T) {
	s, r := newTestSequencer(t, nil, nil)
	toMainCake(t, s)
	run(s, 3100*time.Millisecond, 0)
	s.Tick(frame, 1)
	_, out, ok := r.first(EventExtinguished)
	if !ok {
		t.Fatal("expected extinguished event")
	}

	for range 24 {
		s.Tick(250*time.Millisecond, 0)
	}
	_, greet, _ := r.first(EventGreeting)
	_, fire, _ := r.first(EventFireworks)
	_, letter, _ := r.first(EventLetter)
	got := []time.Duration{greet - out, fire - out, letter - out}
	want := []time.Duration{500 * time.Millisecond, 800 * time.Millisecond, 4800 * time.Millisecond}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected offsets %v, got %v", want, got)
		}
	}
}

func TestFireworksBurnOut(t *testing.T) {
	s, _ := newTestSequencer(t, nil, nil)
	toMainCake(t, s)
	run(s, 3100*time.Millisecond, 0)
	s.Tick(frame, 1)
	runUntil(t, s, 2*time.Second, 0, s.FireworksTriggered)

	if n := s.ActiveFireworks(); n != 7 {
		t.Fatalf("expected 7 pending bursts, got %d", n)
	}
	if len(s.Layers()) != 1 {
		t.Fatalf("expected only the first burst drawn, got %d layers", len(s.Layers()))
	}
	// The last burst starts at 1.8s and burns for 1.25s.
	run(s, 3500*time.Millisecond, 0)
	if n := s.ActiveFireworks(); n != 0 {
		t.Fatalf("expected every burst discarded, got %d", n)
	}
}

func TestCloseStopsEverything(t *testing.T) {
	s, r := newTestSequencer(t, nil, nil)
	toMainCake(t, s)
	run(s, 3100*time.Millisecond, 0)
	s.Tick(frame, 1)
	run(s, time.Second, 0)
	if !s.FireworksTriggered() {
		t.Fatal("expected fireworks before close")
	}

	s.Close()
	s.Close()
	before := len(r.events)
	run(s, 10*time.Second, 0)
	if s.LetterAvailable() {
		t.Fatal("expected letter timer cancelled by Close")
	}
	if len(r.events) != before {
		t.Fatalf("expected no events after close, got %d more", len(r.events)-before)
	}
	if err := s.Advance(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if len(s.Layers()) != 0 {
		t.Fatal("expected nothing to draw after close")
	}
}

func TestCountdownLayer(t *testing.T) {
	s, _ := newTestSequencer(t, &blockGlyphs{}, nil)
	s.Advance()
	runUntil(t, s, 10*time.Second, 0, func() bool { return s.Stage() == StageCountdown })
	layers := s.Layers()
	if len(layers) != 1 || layers[0].Name != "digit-3" {
		t.Fatalf("expected a single digit-3 layer, got %+v", layers)
	}
	if n := layers[0].Len(); n != 350 {
		t.Fatalf("expected 350 transforms, got %d", n)
	}
}

func TestNewRejectsBadColors(t *testing.T) {
	cfg := config.Default()
	cfg.Choreo.Fireworks[2].Color = "bad"
	if _, err := New(Options{Config: cfg}); err == nil {
		t.Fatal("expected error for bad firework color")
	}
}
