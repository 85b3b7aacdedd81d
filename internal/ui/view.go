package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/olivier-w/wishcake/internal/candle"
	"github.com/olivier-w/wishcake/internal/choreo"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w < 20 {
		w = defaultWidth
	}
	if h < 8 {
		h = defaultHeight
	}
	return w, h
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	w, h := m.size()

	switch m.seq.Stage() {
	case choreo.StageIntro:
		return m.centered(w, h, m.introView())
	case choreo.StageLoading:
		return m.centered(w, h, m.loadingView())
	case choreo.StageGesture:
		return m.centered(w, h, m.gestureView())
	}

	top := m.topLine()
	bottom := m.bottomLines()
	rows := h - 2 - len(bottom)
	if rows < 1 {
		rows = 1
	}

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("\n")
	if m.letterOpen && m.seq.LetterAvailable() {
		b.WriteString(lipgloss.Place(w, rows, lipgloss.Center, lipgloss.Center, m.letterView(w)))
	} else {
		b.WriteString(m.renderer.Draw(m.seq.Layers(), w, rows))
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(bottom, "\n"))
	return b.String()
}

func (m Model) centered(w, h int, block string) string {
	help := "  " + helpStyle.Render(helpText(m.seq.Stage(), false))
	body := lipgloss.Place(w, h-1, lipgloss.Center, lipgloss.Center, block)
	return body + "\n" + help
}

func (m Model) introView() string {
	title := titleStyle.Render("✦ a little something for you ✦")
	if m.name != "" {
		title = titleStyle.Render(fmt.Sprintf("✦ a little something for %s ✦", m.name))
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		subtitleStyle.Render("turn your sound on and find a quiet spot"),
		"",
		hintStyle.Render("press enter to begin"),
	)
}

func (m Model) loadingView() string {
	pct := m.seq.LoadingProgress()
	return lipgloss.JoinVertical(lipgloss.Center,
		statusStyle.Render("preparing the party"),
		"",
		m.progress.ViewAs(pct/100)+fmt.Sprintf("  %3.0f%%", pct),
	)
}

func (m Model) gestureView() string {
	line := m.spinner.View() + " " + statusStyle.Render("looking for you...")
	if m.seq.Gesture() == choreo.GestureDetected {
		line = hintStyle.Render("✓ there you are")
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		subtitleStyle.Render("wave hello"),
		"",
		line,
	)
}

func (m Model) topLine() string {
	if m.seq.Stage() == choreo.StageCountdown {
		return "  " + headerStyle.Render(fmt.Sprintf("get ready  %d", m.seq.Countdown()))
	}
	if m.seq.GreetingVisible() && !m.letterOpen {
		return "  " + m.greetingLine()
	}
	return "  " + headerStyle.Render("wishcake")
}

func (m Model) greetingLine() string {
	g := m.cfg.Greeting
	title := g.Title
	if m.name != "" {
		title += ", " + m.name
	}
	title += "!"

	// Fade from the background toward the title pink as the reveal runs.
	from := colorful.Color{R: 0.15, G: 0.05, B: 0.1}
	to, _ := colorful.Hex("#FF69B4")
	c := from.BlendLab(to, m.revealed).Clamped()
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Hex()))

	line := style.Render(title)
	if g.Subtitle != "" && m.revealed >= 1 {
		line += "  " + subtitleStyle.Render(g.Subtitle)
	}
	return line
}

func (m Model) bottomLines() []string {
	lines := []string{"  " + m.statusLine()}
	lines = append(lines, "  "+helpStyle.Render(helpText(m.seq.Stage(), m.seq.LetterAvailable())))
	return lines
}

func (m Model) statusLine() string {
	if m.seq.Stage() == choreo.StageCountdown {
		return statusStyle.Render(" ")
	}

	switch m.seq.CandleState() {
	case candle.Extinguished:
		switch {
		case m.letterOpen && m.letterDone():
			return hintStyle.Render("press l to close the letter")
		case m.letterOpen:
			return statusStyle.Render("...")
		case m.seq.LetterAvailable():
			return hintStyle.Render("there's a letter for you, press l")
		case m.seq.FireworksTriggered():
			return statusStyle.Render("✺ ✺ ✺")
		default:
			return statusStyle.Render("✧ wish made ✧")
		}
	}

	if m.seq.CandleGrace() {
		return statusStyle.Render("close your eyes and make a wish...")
	}

	level := m.session.Level()
	meter := renderMeter(m.meter.Level(), m.meter.Peak(), 20)
	if level > hintThreshold {
		return hintStyle.Render("gathering... keep blowing ") + statusStyle.Render(meter)
	}
	prompt := "blow out the candles"
	if !m.session.Live() {
		prompt += " (hold b)"
	}
	return statusStyle.Render(prompt+" ") + helpStyle.Render(meter)
}

func (m Model) letterView(w int) string {
	g := m.cfg.Greeting
	body := typewriter(g.Letter, m.now.Sub(m.letterOpened), g.TypewriterInterval)
	width := min(60, max(20, w-10))
	content := lipgloss.JoinVertical(lipgloss.Left,
		letterTitleStyle.Render(g.LetterTitle),
		"",
		lipgloss.NewStyle().Width(width).Render(body),
	)
	return letterStyle.Render(content)
}

// letterDone reports whether the typewriter has revealed the whole letter.
func (m Model) letterDone() bool {
	g := m.cfg.Greeting
	need := time.Duration(len([]rune(g.Letter))) * g.TypewriterInterval
	return m.letterOpen && m.now.Sub(m.letterOpened) >= need
}
