package ui

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/olivier-w/wishcake/internal/audio"
	"github.com/olivier-w/wishcake/internal/candle"
	"github.com/olivier-w/wishcake/internal/choreo"
	"github.com/olivier-w/wishcake/internal/config"
	"github.com/olivier-w/wishcake/internal/particle"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m, err := New(Options{
		Config:  config.Default(),
		Name:    "Sam",
		Profile: termenv.Ascii,
		Rand:    particle.NewRand(5, 6),
		Logger:  slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next, _ := m.handleMsg(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// advance feeds interleaved frame and analysis ticks covering d.
func advance(m Model, at *time.Time, d time.Duration) Model {
	for end := at.Add(d); at.Before(end); {
		*at = at.Add(frameInterval)
		m, _ = m.handleMsg(frameMsg(*at))
		m, _ = m.handleMsg(analysisMsg(*at))
	}
	return m
}

func toMainCake(t *testing.T, m Model, at *time.Time) (Model, tea.Cmd) {
	t.Helper()
	m, _ = m.handleMsg(key("enter"))
	m = advance(m, at, 6600*time.Millisecond)
	if m.seq.Stage() != choreo.StageCountdown {
		t.Fatalf("expected countdown, got %v", m.seq.Stage())
	}
	return m.handleMsg(key("s"))
}

func TestEnterStartsLoading(t *testing.T) {
	m := newTestModel(t)
	if !strings.Contains(m.View(), "press enter to begin") {
		t.Fatal("expected intro prompt")
	}
	m, _ = m.handleMsg(key("enter"))
	if m.seq.Stage() != choreo.StageLoading {
		t.Fatalf("expected loading, got %v", m.seq.Stage())
	}

	at := t0
	m = advance(m, &at, 800*time.Millisecond)
	if !strings.Contains(m.View(), "%") {
		t.Fatal("expected loading percentage in view")
	}
}

func TestSkipRequestsListeningOnce(t *testing.T) {
	m := newTestModel(t)
	at := t0
	m, cmd := toMainCake(t, m, &at)
	if m.seq.Stage() != choreo.StageMainCake {
		t.Fatalf("expected main stage, got %v", m.seq.Stage())
	}
	if cmd == nil {
		t.Fatal("expected listen command")
	}
	if _, ok := cmd().(ListenRequestedMsg); !ok {
		t.Fatal("expected ListenRequestedMsg")
	}

	_, cmd = m.handleMsg(key("s"))
	if cmd != nil {
		t.Fatal("expected no second listen request")
	}
}

func TestSessionMsgSwapsSession(t *testing.T) {
	m := newTestModel(t)
	first := m.Session()
	next := audio.Silent(config.Default().Audio, nil)
	m, _ = m.handleMsg(SessionMsg{Session: next})
	if m.Session() != next || m.Session() == first {
		t.Fatal("expected the new session to be in use")
	}
}

func TestBlowKeyExtinguishesAndLetterOpens(t *testing.T) {
	m := newTestModel(t)
	at := t0
	m, _ = toMainCake(t, m, &at)

	m, _ = m.handleMsg(key("b"))
	m = advance(m, &at, 3100*time.Millisecond)
	if m.seq.CandleState() != candle.Lit {
		t.Fatalf("expected blowing ignored during grace, got %v", m.seq.CandleState())
	}

	for range 10 {
		m, _ = m.handleMsg(key("b"))
		m = advance(m, &at, 200*time.Millisecond)
		if m.seq.CandleState() == candle.Extinguished {
			break
		}
	}
	if m.seq.CandleState() != candle.Extinguished {
		t.Fatalf("expected blow key to extinguish, got %v", m.seq.CandleState())
	}

	m, _ = m.handleMsg(key("l"))
	if m.letterOpen {
		t.Fatal("expected letter locked before it is available")
	}

	m = advance(m, &at, 6*time.Second)
	if !m.seq.GreetingVisible() || !m.seq.LetterAvailable() {
		t.Fatal("expected greeting and letter after the timeline")
	}
	if !strings.Contains(m.View(), "Happy Birthday, Sam!") {
		t.Fatal("expected greeting with name in view")
	}

	m, _ = m.handleMsg(key("l"))
	if !m.letterOpen {
		t.Fatal("expected letter to open")
	}
	m = advance(m, &at, 100*time.Millisecond)
	if strings.Contains(m.View(), "Happy Birthday, Sam!") {
		t.Fatal("expected greeting hidden while the letter is open")
	}
	if !strings.Contains(m.View(), "A letter for you") {
		t.Fatal("expected the letter box")
	}
}

func TestCameraKeysOnlyInMainStage(t *testing.T) {
	m := newTestModel(t)
	yaw := m.renderer.Camera.Yaw
	m, _ = m.handleMsg(key("left"))
	if m.renderer.Camera.Yaw != yaw {
		t.Fatal("expected camera locked outside the main stage")
	}

	at := t0
	m, _ = toMainCake(t, m, &at)
	m, _ = m.handleMsg(key("left"))
	if m.renderer.Camera.Yaw == yaw {
		t.Fatal("expected camera to orbit in the main stage")
	}
	m, _ = m.handleMsg(key("0"))
	if m.renderer.Camera.Yaw != yaw {
		t.Fatal("expected camera reset")
	}
}

func TestQuitClosesSequencer(t *testing.T) {
	m := newTestModel(t)
	m, cmd := m.handleMsg(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !m.seq.Closed() {
		t.Fatal("expected sequencer closed on quit")
	}
	if m.View() != "" {
		t.Fatal("expected empty view after quit")
	}
}

func TestTypewriter(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, ""},
		{49 * time.Millisecond, ""},
		{50 * time.Millisecond, "h"},
		{160 * time.Millisecond, "hé!"},
		{time.Second, "hé!"},
	}
	for _, tc := range cases {
		if got := typewriter("hé!", tc.elapsed, 50*time.Millisecond); got != tc.want {
			t.Fatalf("typewriter at %v: expected %q, got %q", tc.elapsed, tc.want, got)
		}
	}
}

func TestRenderMeterWidth(t *testing.T) {
	bar := renderMeter(0.5, 0.8, 20)
	if n := len([]rune(bar)); n != 20 {
		t.Fatalf("expected 20 runes, got %d", n)
	}
	if !strings.Contains(bar, "╸") {
		t.Fatal("expected a peak marker")
	}
}

func TestStepPassesStallsThrough(t *testing.T) {
	dt, _ := step(t0, t0.Add(time.Second))
	if dt != time.Second {
		t.Fatalf("expected 1s, got %v", dt)
	}
	dt, _ = step(t0, t0.Add(-time.Second))
	if dt != 0 {
		t.Fatalf("expected 0 for clock skew, got %v", dt)
	}
	dt, last := step(time.Time{}, t0)
	if dt != frameInterval || !last.Equal(t0) {
		t.Fatalf("expected first step of one frame, got %v", dt)
	}
}

func TestTimelineKeepsWallClockAcrossStall(t *testing.T) {
	m := newTestModel(t)
	at := t0
	m, _ = toMainCake(t, m, &at)
	m = advance(m, &at, 3100*time.Millisecond)
	for range 10 {
		m, _ = m.handleMsg(key("b"))
		m = advance(m, &at, 200*time.Millisecond)
		if m.seq.CandleState() == candle.Extinguished {
			break
		}
	}
	if m.seq.CandleState() != candle.Extinguished {
		t.Fatalf("expected extinguished, got %v", m.seq.CandleState())
	}

	// One late frame covering 5s must land the whole epilogue.
	at = at.Add(5 * time.Second)
	m, _ = m.handleMsg(frameMsg(at))
	if !m.seq.GreetingVisible() || !m.seq.FireworksTriggered() || !m.seq.LetterAvailable() {
		t.Fatal("expected greeting, fireworks and letter after a 5s stall")
	}
}
