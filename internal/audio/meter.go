package audio

// Meter follows a level with fast attack, slow release and a decaying
// peak hold, for display.
type Meter struct {
	level float64
	peak  float64
}

const (
	meterAttack    = 0.6
	meterRelease   = 0.15
	meterPeakDecay = 0.02
)

// Update folds in one reading.
func (m *Meter) Update(v float64) {
	if v > m.level {
		m.level = m.level*(1-meterAttack) + v*meterAttack
	} else {
		m.level = m.level*(1-meterRelease) + v*meterRelease
	}

	if m.level > m.peak {
		m.peak = m.level
	} else {
		m.peak = max(0, m.peak-meterPeakDecay)
	}
}

// Level returns the displayed level.
func (m *Meter) Level() float64 { return m.level }

// Peak returns the held peak.
func (m *Meter) Peak() float64 { return m.peak }
