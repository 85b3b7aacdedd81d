package choreo

import (
	"github.com/olivier-w/wishcake/internal/geom"
	"github.com/olivier-w/wishcake/internal/particle"
	"github.com/olivier-w/wishcake/internal/sampler"
)

// spawnDigit replaces the digit field with one converging onto v. A digit
// whose surface cannot be sampled becomes an empty field that still
// completes on schedule.
func (s *Sequencer) spawnDigit(v int) {
	targets, err := s.digitTargets(v)
	if err != nil {
		s.logger.Warn("countdown digit left empty", "digit", v, "error", err)
	}

	f := particle.NewConvergeDisperse(targets, particle.DefaultConverge(), s.rng)
	f.OnComplete(func() { s.digitDone = true })

	s.countdown = v
	s.digit = f
	s.digitBorn = s.clock.now
	s.digitDone = false
	s.logger.Info("countdown", "digit", v, "particles", f.Len())
	s.emit(EventCountdown, v)
}

func (s *Sequencer) digitTargets(v int) ([]geom.Vec3, error) {
	if s.glyphs == nil {
		return nil, nil
	}
	mesh, err := s.glyphs.Digit(v)
	if err != nil {
		return nil, err
	}
	return sampler.Sample(mesh, s.cfg.Choreo.DigitParticles, s.rng)
}

func (s *Sequencer) stepCountdown(delta float64) {
	if s.digit == nil {
		return
	}
	s.digit.Step(s.age(s.digitBorn, delta))
	if !s.digitDone {
		return
	}
	if s.countdown > 1 {
		s.spawnDigit(s.countdown - 1)
		return
	}
	s.fire(triggerDone)
}

// Digit returns the live digit field, or nil outside the countdown.
func (s *Sequencer) Digit() *particle.Field { return s.digit }
