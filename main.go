package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/wishcake/internal/audio"
	"github.com/olivier-w/wishcake/internal/config"
	"github.com/olivier-w/wishcake/internal/glyph"
	"github.com/olivier-w/wishcake/internal/particle"
	"github.com/olivier-w/wishcake/internal/scene"
	"github.com/olivier-w/wishcake/internal/ui"
)

func main() {
	logger, closeLog, err := newLogger(os.Getenv("WISHCAKE_DEBUG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	name := strings.TrimSpace(os.Getenv("WISHCAKE_NAME"))
	if len(os.Args) > 1 {
		name = strings.TrimSpace(strings.Join(os.Args[1:], " "))
	}

	if err := run(name, os.Getenv("WISHCAKE_REPLAY"), logger); err != nil {
		closeLog()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(name, replayPath string, logger *slog.Logger) error {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	glyphs, err := glyph.NewProvider(glyph.DefaultOptions())
	if err != nil {
		return fmt.Errorf("loading digit font: %w", err)
	}

	seed := uint64(time.Now().UnixNano())
	rng := particle.NewRand(seed, seed>>17|1)

	cake, err := scene.NewCake(cfg.Cake, rng, logger)
	if err != nil {
		return fmt.Errorf("building cake: %w", err)
	}

	var cues *audio.Cues
	if cfg.Audio.Cues {
		cues, err = audio.NewCues(logger)
		if err != nil {
			logger.Warn("audio cues disabled", "err", err)
			cues = nil
		}
	}

	model, err := ui.New(ui.Options{
		Config:  cfg,
		Glyphs:  glyphs,
		Cake:    cake,
		Session: audio.Silent(cfg.Audio, logger),
		Cues:    cues,
		Name:    name,
		Profile: lipgloss.ColorProfile(),
		Rand:    rng,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	host := newHostModel(model, sessionOpener(cfg.Audio, replayPath, logger), logger)
	program := tea.NewProgram(host, tea.WithAltScreen())

	final, err := program.Run()
	if h, ok := final.(hostModel); ok {
		if cerr := h.close(); cerr != nil {
			logger.Warn("closing audio session", "err", cerr)
		}
	} else {
		host.close()
	}
	return err
}

// newLogger writes to a debug file when debug names one ("1" picks
// wishcake.log) and discards otherwise, keeping the alt screen clean.
func newLogger(debug string) (*slog.Logger, func() error, error) {
	if debug == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	path := debug
	if path == "1" || strings.EqualFold(path, "true") {
		path = "wishcake.log"
	}
	f, err := tea.LogToFile(path, "wishcake")
	if err != nil {
		return nil, nil, fmt.Errorf("opening debug log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
	return logger, f.Close, nil
}
