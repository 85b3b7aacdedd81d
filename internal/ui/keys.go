package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/wishcake/internal/choreo"
)

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(stage choreo.Stage, letterReady bool) string {
	switch stage {
	case choreo.StageIntro:
		return "enter begin  q quit"
	case choreo.StageCountdown:
		return "s skip  q quit"
	case choreo.StageMainCake:
		s := "←/→/↑/↓ orbit  +/- zoom  0 reset  b blow"
		if letterReady {
			s += "  l letter"
		}
		return s + "  q quit"
	default:
		return "q quit"
	}
}
