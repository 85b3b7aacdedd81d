package choreo

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/olivier-w/wishcake/internal/candle"
	"github.com/olivier-w/wishcake/internal/config"
	"github.com/olivier-w/wishcake/internal/geom"
	"github.com/olivier-w/wishcake/internal/particle"
	"github.com/olivier-w/wishcake/internal/scene"
)

// GlyphProvider supplies a closed mesh for a countdown digit.
type GlyphProvider interface {
	Digit(n int) (*geom.Mesh, error)
}

// Options configures a Sequencer.
type Options struct {
	Config config.Config
	// Glyphs may be nil, in which case digits render empty but the
	// countdown still runs on schedule.
	Glyphs GlyphProvider
	// Cake is stepped and drawn during the main stage. Optional.
	Cake *scene.Cake
	// StartListening runs once when the main stage is entered.
	StartListening func()
	Rand           *rand.Rand
	Logger         *slog.Logger
}

type trigger int

const (
	triggerAdvance trigger = iota
	triggerElapsed
	triggerDone
	triggerSkip
)

func (t trigger) String() string {
	switch t {
	case triggerAdvance:
		return "advance"
	case triggerElapsed:
		return "elapsed"
	case triggerDone:
		return "done"
	case triggerSkip:
		return "skip"
	default:
		return "unknown"
	}
}

type transition struct {
	from  Stage
	guard trigger
	to    Stage
	enter func(*Sequencer)
}

// stageTable is the only path between stages. Skip is the single jump.
func stageTable() []transition {
	return []transition{
		{StageIntro, triggerAdvance, StageLoading, (*Sequencer).enterLoading},
		{StageLoading, triggerElapsed, StageGesture, (*Sequencer).enterGesture},
		{StageGesture, triggerElapsed, StageCountdown, (*Sequencer).enterCountdown},
		{StageCountdown, triggerDone, StageMainCake, (*Sequencer).enterMainCake},
		{StageCountdown, triggerSkip, StageMainCake, (*Sequencer).enterMainCake},
	}
}

type firework struct {
	born  time.Duration
	index int
	field *particle.Field
	color colorful.Color
	shown bool
}

// Sequencer drives every stage from a single Tick on simulated time. It is
// not safe for concurrent use; the host calls it from one goroutine.
type Sequencer struct {
	cfg    config.Config
	glyphs GlyphProvider
	cake   *scene.Cake
	listen func()
	rng    *rand.Rand
	logger *slog.Logger

	table  []transition
	clock  *scheduler
	candle *candle.Machine
	subs   []func(Event)
	closed bool

	stage     Stage
	entered   time.Duration
	progress  *gween.Tween
	loading   float64
	gesture   GestureStatus
	countdown int
	digit     *particle.Field
	digitBorn time.Duration
	digitDone bool

	digitColor     colorful.Color
	fireworkColors []colorful.Color
	fireworks      []*firework

	greeting  bool
	triggered bool
	letter    bool
}

// New builds a sequencer in the intro stage.
func New(opts Options) (*Sequencer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = particle.NewRand(0, 0)
	}

	s := &Sequencer{
		cfg:    opts.Config,
		glyphs: opts.Glyphs,
		cake:   opts.Cake,
		listen: opts.StartListening,
		rng:    rng,
		logger: logger,
		table:  stageTable(),
		clock:  newScheduler(),
		candle: candle.New(opts.Config.Candle, logger),
	}

	var err error
	if s.digitColor, err = config.ParseColor(s.cfg.Choreo.DigitColor); err != nil {
		return nil, fmt.Errorf("digit color: %w", err)
	}
	for i, fw := range s.cfg.Choreo.Fireworks {
		c, err := config.ParseColor(fw.Color)
		if err != nil {
			return nil, fmt.Errorf("firework %d color: %w", i, err)
		}
		s.fireworkColors = append(s.fireworkColors, c)
	}

	s.candle.OnExtinguish(s.onExtinguish)
	return s, nil
}

// ErrClosed is returned by operations on a closed sequencer.
var ErrClosed = errors.New("sequencer closed")

// Subscribe registers fn for every later event.
func (s *Sequencer) Subscribe(fn func(Event)) {
	s.subs = append(s.subs, fn)
}

func (s *Sequencer) emit(kind EventKind, value int) {
	ev := Event{Kind: kind, Stage: s.stage, Value: value}
	for _, fn := range s.subs {
		fn(ev)
	}
}

// Advance is the user's "start" action. It only has an effect in the
// intro stage.
func (s *Sequencer) Advance() error {
	if s.closed {
		return ErrClosed
	}
	s.fire(triggerAdvance)
	return nil
}

// Skip jumps from the countdown straight to the main stage.
func (s *Sequencer) Skip() error {
	if s.closed {
		return ErrClosed
	}
	s.fire(triggerSkip)
	return nil
}

// fire applies the first transition matching the current stage and t.
func (s *Sequencer) fire(t trigger) bool {
	for _, tr := range s.table {
		if tr.from != s.stage || tr.guard != t {
			continue
		}
		s.leave(s.stage)
		s.logger.Info("stage change", "from", s.stage, "to", tr.to, "trigger", t)
		s.stage = tr.to
		s.entered = s.clock.now
		s.emit(EventStage, int(tr.to))
		tr.enter(s)
		return true
	}
	s.logger.Debug("trigger ignored", "stage", s.stage, "trigger", t)
	return false
}

func (s *Sequencer) leave(stage Stage) {
	if n := s.clock.cancelScope(stage); n > 0 {
		s.logger.Debug("cancelled stage timers", "stage", stage, "count", n)
	}
	switch stage {
	case StageLoading:
		s.progress = nil
	case StageCountdown:
		s.digit = nil
		s.digitDone = false
		s.countdown = 0
	}
}

func (s *Sequencer) enterLoading() {
	s.loading = 0
	s.progress = gween.New(0, 100, float32(s.cfg.Choreo.Loading.Seconds()), ease.Linear)
	s.clock.after(StageLoading, "loading", s.cfg.Choreo.Loading, func() {
		s.loading = 100
		s.fire(triggerElapsed)
	})
}

func (s *Sequencer) enterGesture() {
	s.setGesture(GestureScanning)
	s.clock.after(StageGesture, "gesture-detected", s.cfg.Choreo.GestureScan, func() {
		s.setGesture(GestureDetected)
	})
	s.clock.after(StageGesture, "gesture-done", s.cfg.Choreo.Gesture, func() {
		s.fire(triggerElapsed)
	})
}

func (s *Sequencer) setGesture(g GestureStatus) {
	s.gesture = g
	s.logger.Debug("gesture status", "status", g)
	s.emit(EventGesture, int(g))
}

func (s *Sequencer) enterCountdown() {
	if s.cfg.Choreo.CountdownFrom < 1 {
		s.fire(triggerDone)
		return
	}
	s.spawnDigit(s.cfg.Choreo.CountdownFrom)
}

func (s *Sequencer) enterMainCake() {
	if s.listen != nil {
		s.listen()
	}
	s.candle.Activate()
}

// Tick advances simulated time by dt with the latest smoothed volume.
// Fields created by a timer during this Tick move only for the time left
// after that timer's deadline.
func (s *Sequencer) Tick(dt time.Duration, volume float64) {
	if s.closed || dt <= 0 {
		return
	}
	s.clock.advance(dt)
	if s.closed {
		return
	}
	delta := dt.Seconds()

	switch s.stage {
	case StageLoading:
		if s.progress != nil {
			v, _ := s.progress.Update(float32(delta))
			s.loading = min(100, float64(v))
		}
	case StageCountdown:
		s.stepCountdown(delta)
	case StageMainCake:
		s.candle.Update(volume, delta)
		if s.cake != nil {
			s.cake.Step(delta, s.candle.State(), volume)
		}
		s.stepFireworks(delta)
	}
}

// age clips a step of delta seconds to the time since born.
func (s *Sequencer) age(born time.Duration, delta float64) float64 {
	return min(delta, (s.clock.now - born).Seconds())
}

// Close cancels every timer and drops every field. Later Ticks do nothing.
func (s *Sequencer) Close() {
	if s.closed {
		return
	}
	s.clock.close()
	s.closed = true
	s.digit = nil
	s.fireworks = nil
	s.logger.Debug("sequencer closed")
}

// Closed reports whether Close has been called.
func (s *Sequencer) Closed() bool { return s.closed }

// Stage returns the current stage.
func (s *Sequencer) Stage() Stage { return s.stage }

// StageElapsed returns simulated time spent in the current stage.
func (s *Sequencer) StageElapsed() time.Duration { return s.clock.now - s.entered }

// CandleState returns the candle machine's state.
func (s *Sequencer) CandleState() candle.State { return s.candle.State() }

// CandleGrace reports whether the candles still ignore blowing.
func (s *Sequencer) CandleGrace() bool { return s.candle.InGrace() }

// Countdown returns the digit being shown, or 0 outside the countdown.
func (s *Sequencer) Countdown() int { return s.countdown }

// Gesture returns the gesture scan status.
func (s *Sequencer) Gesture() GestureStatus { return s.gesture }

// LoadingProgress returns loading progress in percent.
func (s *Sequencer) LoadingProgress() float64 { return s.loading }

// GreetingVisible reports whether the greeting has been revealed.
func (s *Sequencer) GreetingVisible() bool { return s.greeting }

// FireworksTriggered reports whether the finale has started.
func (s *Sequencer) FireworksTriggered() bool { return s.triggered }

// LetterAvailable reports whether the letter may be opened.
func (s *Sequencer) LetterAvailable() bool { return s.letter }

// Layers returns the particle layers to draw for the current stage.
func (s *Sequencer) Layers() []scene.Layer {
	var layers []scene.Layer
	switch s.stage {
	case StageCountdown:
		if s.digit != nil {
			layers = append(layers, scene.Layer{
				Name:   fmt.Sprintf("digit-%d", s.countdown),
				Color:  s.digitColor,
				Points: s.digit.AppendTransforms(nil),
			})
		}
	case StageMainCake:
		if s.cake != nil {
			layers = append(layers, s.cake.Layers()...)
		}
		for _, fw := range s.fireworks {
			if !fw.field.Visible() {
				continue
			}
			layers = append(layers, scene.Layer{
				Name:   fmt.Sprintf("firework-%d", fw.index),
				Color:  fw.color,
				Points: fw.field.AppendTransforms(nil),
			})
		}
	}
	return layers
}
