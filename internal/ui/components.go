package ui

import (
	"strings"
	"time"
)

// renderMeter draws level as a bar with a peak marker.
func renderMeter(level, peak float64, width int) string {
	if width < 10 {
		width = 10
	}
	clamp := func(v float64) int {
		v = min(1, max(0, v))
		return int(v * float64(width))
	}
	filled := clamp(level)
	mark := clamp(peak)

	var b strings.Builder
	for i := range width {
		switch {
		case i < filled:
			b.WriteString("━")
		case i == mark && mark > 0:
			b.WriteString("╸")
		default:
			b.WriteString("─")
		}
	}
	return b.String()
}

// typewriter returns the prefix of text revealed after elapsed at one rune
// per interval.
func typewriter(text string, elapsed, interval time.Duration) string {
	if interval <= 0 {
		return text
	}
	n := int(elapsed / interval)
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if n >= len(runes) {
		return text
	}
	return string(runes[:n])
}

func windowTitle(name string) string {
	if name == "" {
		return "wishcake"
	}
	return "🎂 " + name + " — wishcake"
}
