package choreo

import (
	"github.com/olivier-w/wishcake/internal/particle"
)

// onExtinguish starts the post-extinguish timeline. Each step schedules
// the next, so the offsets chain: greeting, then fireworks, then letter.
func (s *Sequencer) onExtinguish() {
	s.emit(EventExtinguished, 0)
	s.clock.after(StageMainCake, "greeting", s.cfg.Choreo.GreetingDelay, func() {
		s.greeting = true
		s.logger.Info("greeting revealed")
		s.emit(EventGreeting, 0)

		s.clock.after(StageMainCake, "fireworks", s.cfg.Choreo.FireworksDelay, func() {
			s.launchFireworks()

			s.clock.after(StageMainCake, "letter", s.cfg.Choreo.LetterDelay, func() {
				s.letter = true
				s.logger.Info("letter available")
				s.emit(EventLetter, 0)
			})
		})
	})
}

func (s *Sequencer) launchFireworks() {
	if s.triggered {
		return
	}
	s.triggered = true
	for i, fw := range s.cfg.Choreo.Fireworks {
		cfg := particle.DefaultExplode()
		cfg.Origin = fw.Position
		cfg.StartDelay = fw.Delay.Seconds()
		s.fireworks = append(s.fireworks, &firework{
			born:  s.clock.now,
			index: i,
			field: particle.NewExplosion(cfg, s.rng),
			color: s.fireworkColors[i],
		})
	}
	s.logger.Info("fireworks triggered", "bursts", len(s.fireworks))
	s.emit(EventFireworks, len(s.fireworks))
}

// stepFireworks advances every burst and discards the spent ones.
func (s *Sequencer) stepFireworks(delta float64) {
	live := s.fireworks[:0]
	for _, fw := range s.fireworks {
		fw.field.Step(s.age(fw.born, delta))
		if fw.field.Visible() && !fw.shown {
			fw.shown = true
			s.logger.Debug("firework burst", "index", fw.index)
			s.emit(EventBurst, fw.index)
		}
		if fw.field.Expired() {
			continue
		}
		live = append(live, fw)
	}
	clear(s.fireworks[len(live):])
	s.fireworks = live
}

// ActiveFireworks returns how many bursts are pending or still burning.
func (s *Sequencer) ActiveFireworks() int { return len(s.fireworks) }
