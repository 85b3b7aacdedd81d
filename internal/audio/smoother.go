package audio

// Smoother turns raw analyser energy into the damped blowing signal in
// [0,1]. It is not safe for concurrent use.
type Smoother struct {
	k      float64
	retain float64
	value  float64
}

// NewSmoother creates a smoother that maps raw energy k to a full signal
// and keeps retain of the previous output each update.
func NewSmoother(k, retain float64) *Smoother {
	if k <= 0 {
		k = 1
	}
	return &Smoother{k: k, retain: retain}
}

// Update folds one raw reading into the signal and returns the new value.
func (s *Smoother) Update(raw float64) float64 {
	norm := max(0, raw) / s.k
	norm = min(1, norm)
	s.value = s.value*s.retain + norm*(1-s.retain)
	return s.value
}

// Value returns the latest output.
func (s *Smoother) Value() float64 { return s.value }

// Reset zeroes the signal.
func (s *Smoother) Reset() { s.value = 0 }
