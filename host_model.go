package main

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/wishcake/internal/audio"
	"github.com/olivier-w/wishcake/internal/ui"
)

type sessionOpenedMsg struct {
	session *audio.Session
	err     error
}

// hostModel wraps the experience and owns the microphone lifecycle: it
// opens the device off the update loop when the main stage asks for it.
type hostModel struct {
	ui      ui.Model
	open    openFunc
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	opening bool
	opened  bool
}

func newHostModel(model ui.Model, open openFunc, logger *slog.Logger) hostModel {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return hostModel{
		ui:     model,
		open:   open,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (m hostModel) Init() tea.Cmd {
	return m.ui.Init()
}

func (m hostModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.ListenRequestedMsg:
		if m.opening || m.opened || m.open == nil {
			return m, nil
		}
		m.opening = true
		return m, openSessionCmd(m.ctx, m.open)

	case sessionOpenedMsg:
		m.opening = false
		if msg.err != nil {
			switch {
			case errors.Is(msg.err, context.Canceled):
			case errors.Is(msg.err, audio.ErrDeviceUnavailable):
				m.logger.Warn("microphone unavailable, falling back to the blow key", "err", msg.err)
			default:
				m.logger.Warn("audio session failed", "err", msg.err)
			}
			return m, nil
		}
		if m.ctx.Err() != nil {
			msg.session.Close()
			return m, nil
		}
		m.opened = true
		return m.forward(ui.SessionMsg{Session: msg.session})

	case tea.KeyMsg:
		if hostIsQuit(msg) {
			m.cancel()
		}
	}

	return m.forward(msg)
}

func (m hostModel) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.ui.Update(msg)
	if next, ok := model.(ui.Model); ok {
		m.ui = next
	}
	return m, cmd
}

func (m hostModel) View() string {
	return m.ui.View()
}

// close releases whatever session the experience ended with.
func (m hostModel) close() error {
	m.cancel()
	if s := m.ui.Session(); s != nil {
		return s.Close()
	}
	return nil
}

func hostIsQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}
