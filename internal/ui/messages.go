package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/wishcake/internal/audio"
)

const frameInterval = 16 * time.Millisecond

type frameMsg time.Time
type analysisMsg time.Time

// ListenRequestedMsg asks the host to open the microphone. It is sent
// once, when the main stage begins.
type ListenRequestedMsg struct{}

// SessionMsg hands the model a freshly opened audio session.
type SessionMsg struct {
	Session *audio.Session
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func analysisCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return analysisMsg(t)
	})
}

func listenCmd() tea.Cmd {
	return func() tea.Msg { return ListenRequestedMsg{} }
}

// step returns the time since last and the new last. Stalls pass through
// whole; particle fields cap their own integration step.
func step(last, now time.Time) (time.Duration, time.Time) {
	if last.IsZero() {
		return frameInterval, now
	}
	return max(0, now.Sub(last)), now
}
