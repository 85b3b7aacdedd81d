// Package candle implements the blowing state machine that decides when
// the candles go out.
package candle

import (
	"log/slog"
	"time"

	"github.com/olivier-w/wishcake/internal/config"
)

// State is the flame state shared by every candle.
type State int

const (
	Lit State = iota
	Blowing
	Extinguished
)

func (s State) String() string {
	switch s {
	case Lit:
		return "lit"
	case Blowing:
		return "blowing"
	case Extinguished:
		return "extinguished"
	default:
		return "unknown"
	}
}

// Machine moves LIT ↔ BLOWING → EXTINGUISHED from the smoothed volume.
// It is not safe for concurrent use.
type Machine struct {
	cfg    config.Candle
	logger *slog.Logger

	state     State
	active    bool
	sinceOn   time.Duration
	blowTime  float64
	listeners []func()
}

// New creates an inactive machine in the LIT state.
func New(cfg config.Candle, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{cfg: cfg, logger: logger}
}

// OnExtinguish registers fn to run once when the candles go out.
func (m *Machine) OnExtinguish(fn func()) {
	m.listeners = append(m.listeners, fn)
}

// Activate starts the grace clock. Calling it again has no effect.
func (m *Machine) Activate() {
	if m.active {
		return
	}
	m.active = true
	m.logger.Debug("candle machine active", "grace", m.cfg.Grace)
}

// Active reports whether Activate has been called.
func (m *Machine) Active() bool { return m.active }

// State returns the current state.
func (m *Machine) State() State { return m.state }

// BlowTime returns the accumulated blowing credit in seconds.
func (m *Machine) BlowTime() float64 { return m.blowTime }

// InGrace reports whether the machine is active but still ignoring input.
func (m *Machine) InGrace() bool { return m.active && m.sinceOn < m.cfg.Grace }

// Update feeds one frame of volume with delta seconds elapsed.
func (m *Machine) Update(volume, delta float64) {
	if !m.active || m.state == Extinguished {
		return
	}
	delta = max(0, delta)

	if m.sinceOn < m.cfg.Grace {
		m.sinceOn += time.Duration(delta * float64(time.Second))
		return
	}

	if volume > m.cfg.BlowThreshold {
		if m.state != Blowing {
			m.logger.Debug("candles blowing", "volume", volume)
		}
		m.state = Blowing
		m.blowTime += delta
	} else {
		if m.state == Blowing {
			m.state = Lit
		}
		m.blowTime = max(0, m.blowTime-delta*m.cfg.DecayFactor)
	}

	// A gust counts from the threshold itself; blowing must exceed it.
	if m.blowTime > m.cfg.ExtinguishAfter || volume >= m.cfg.GustThreshold {
		m.extinguish(volume)
	}
}

func (m *Machine) extinguish(volume float64) {
	m.state = Extinguished
	m.logger.Info("candles extinguished", "volume", volume, "blow_time", m.blowTime)
	for _, fn := range m.listeners {
		fn()
	}
	m.listeners = nil
}
