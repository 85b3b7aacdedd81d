package main

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/wishcake/internal/audio"
	"github.com/olivier-w/wishcake/internal/config"
)

type openFunc func(ctx context.Context) (*audio.Session, error)

// sessionOpener returns the microphone opener, or a recorded clip opener
// when replayPath is set.
func sessionOpener(cfg config.Audio, replayPath string, logger *slog.Logger) openFunc {
	if replayPath == "" {
		return func(ctx context.Context) (*audio.Session, error) {
			return audio.Open(ctx, cfg, logger)
		}
	}
	return func(ctx context.Context) (*audio.Session, error) {
		r, err := audio.OpenWAV(replayPath)
		if err != nil {
			return nil, fmt.Errorf("opening replay %s: %w", replayPath, err)
		}
		return audio.OpenSource(ctx, r, cfg, logger)
	}
}

func openSessionCmd(ctx context.Context, open openFunc) tea.Cmd {
	return func() tea.Msg {
		s, err := open(ctx)
		return sessionOpenedMsg{session: s, err: err}
	}
}
