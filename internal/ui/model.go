package ui

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/olivier-w/wishcake/internal/audio"
	"github.com/olivier-w/wishcake/internal/choreo"
	"github.com/olivier-w/wishcake/internal/config"
	"github.com/olivier-w/wishcake/internal/render"
	"github.com/olivier-w/wishcake/internal/scene"
)

const (
	blowHold      = 250 * time.Millisecond
	blowEnergy    = 255
	orbitStep     = 0.08
	zoomStep      = 1.1
	hintThreshold = 0.2
	revealTime    = 0.8 // seconds for the greeting to fade in
)

// Options configures a Model.
type Options struct {
	Config config.Config
	Glyphs choreo.GlyphProvider
	Cake   *scene.Cake
	// Session is the initial audio session, usually audio.Silent until
	// the microphone opens.
	Session *audio.Session
	Cues    *audio.Cues
	Name    string
	Profile termenv.Profile
	Rand    *rand.Rand
	Logger  *slog.Logger
}

// inbox collects sequencer callbacks between updates.
type inbox struct {
	events []choreo.Event
	listen bool
}

// Model is the Bubbletea model hosting the whole experience.
type Model struct {
	cfg      config.Config
	seq      *choreo.Sequencer
	renderer *render.Renderer
	session  *audio.Session
	cues     *audio.Cues
	name     string
	logger   *slog.Logger
	inbox    *inbox

	meter     *audio.Meter
	spinner   spinner.Model
	progress  progress.Model
	reveal    *gween.Tween
	revealed  float64
	blowUntil time.Time

	letterOpen   bool
	letterOpened time.Time

	lastFrame    time.Time
	lastAnalysis time.Time
	now          time.Time

	width    int
	height   int
	quitting bool
}

// New builds the sequencer and the model around it.
func New(opts Options) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	box := &inbox{}
	seq, err := choreo.New(choreo.Options{
		Config:         opts.Config,
		Glyphs:         opts.Glyphs,
		Cake:           opts.Cake,
		StartListening: func() { box.listen = true },
		Rand:           opts.Rand,
		Logger:         logger,
	})
	if err != nil {
		return Model{}, err
	}
	seq.Subscribe(func(ev choreo.Event) {
		box.events = append(box.events, ev)
	})

	session := opts.Session
	if session == nil {
		session = audio.Silent(opts.Config.Audio, logger)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#00BFFF"))

	p := progress.New(
		progress.WithScaledGradient("#FFC0CB", "#FF1493"),
		progress.WithoutPercentage(),
	)

	r := render.NewRenderer(opts.Profile)

	return Model{
		cfg:      opts.Config,
		seq:      seq,
		renderer: r,
		session:  session,
		cues:     opts.Cues,
		name:     opts.Name,
		logger:   logger,
		inbox:    box,
		meter:    &audio.Meter{},
		spinner:  s,
		progress: p,
	}, nil
}

// Sequencer exposes the driven sequencer.
func (m Model) Sequencer() *choreo.Sequencer { return m.seq }

// Session returns the audio session currently in use.
func (m Model) Session() *audio.Session { return m.session }

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(),
		analysisCmd(m.cfg.Audio.AnalysisInterval),
		m.spinner.Tick,
		tea.SetWindowTitle(windowTitle(m.name)),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		var dt time.Duration
		dt, m.lastFrame = step(m.lastFrame, time.Time(msg))
		m.now = time.Time(msg)
		m.seq.Tick(dt, m.session.Level())
		if m.reveal != nil {
			v, done := m.reveal.Update(float32(dt.Seconds()))
			m.revealed = float64(v)
			if done {
				m.reveal = nil
			}
		}
		cmd := m.drain()
		if m.seq.Closed() {
			return m, cmd
		}
		return m, tea.Batch(cmd, frameCmd())

	case analysisMsg:
		var dt time.Duration
		dt, m.lastAnalysis = step(m.lastAnalysis, time.Time(msg))
		if time.Time(msg).Before(m.blowUntil) {
			m.session.Blow(blowEnergy)
		}
		m.meter.Update(m.session.Tick(dt))
		if m.seq.Closed() {
			return m, nil
		}
		return m, analysisCmd(m.cfg.Audio.AnalysisInterval)

	case SessionMsg:
		if msg.Session != nil {
			old := m.session
			m.session = msg.Session
			if old != nil && old != msg.Session {
				old.Close()
			}
			m.logger.Info("listening", "live", msg.Session.Live())
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.seq.Stage() <= choreo.StageGesture {
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(60, max(20, msg.Width-8))
		return m, nil
	}

	return m, nil
}

// drain handles sequencer callbacks collected during the last tick.
func (m *Model) drain() tea.Cmd {
	var cmds []tea.Cmd
	for _, ev := range m.inbox.events {
		switch ev.Kind {
		case choreo.EventExtinguished:
			m.cues.Chime()
		case choreo.EventGreeting:
			m.reveal = gween.New(0, 1, revealTime, ease.OutCubic)
			m.revealed = 0
		case choreo.EventBurst:
			m.cues.Pop(ev.Value)
		}
	}
	m.inbox.events = m.inbox.events[:0]
	if m.inbox.listen {
		m.inbox.listen = false
		cmds = append(cmds, listenCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.seq.Close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	stage := m.seq.Stage()
	switch msg.String() {
	case "enter", " ":
		m.seq.Advance()
		return m, m.drain()
	case "s":
		m.seq.Skip()
		return m, m.drain()
	}

	if stage != choreo.StageMainCake {
		return m, nil
	}

	cam := m.renderer.Camera
	switch msg.String() {
	case "left", "h":
		cam.Orbit(-orbitStep, 0)
	case "right":
		cam.Orbit(orbitStep, 0)
	case "up", "k":
		cam.Orbit(0, orbitStep)
	case "down", "j":
		cam.Orbit(0, -orbitStep)
	case "+", "=":
		cam.Zoom(1 / zoomStep)
	case "-":
		cam.Zoom(zoomStep)
	case "0":
		cam.Reset()
	case "b":
		m.blowUntil = m.now.Add(blowHold)
	case "l":
		if m.seq.LetterAvailable() {
			m.letterOpen = !m.letterOpen
			m.letterOpened = m.now
		}
	}
	return m, nil
}
