package choreo

import (
	"slices"
	"time"
)

// timer fires fn once when the simulated clock reaches at.
type timer struct {
	name      string
	at        time.Duration
	fn        func()
	seq       uint64
	fired     bool
	cancelled bool
}

// Cancel stops the timer if it has not fired yet.
func (t *timer) Cancel() { t.cancelled = true }

// scheduler runs fire-once timers on simulated time. Every timer belongs to
// a scope; cancelling the scope cancels its pending timers.
type scheduler struct {
	now    time.Duration
	seq    uint64
	timers []*timer
	scopes map[Stage][]*timer
	closed bool
}

func newScheduler() *scheduler {
	return &scheduler{scopes: make(map[Stage][]*timer)}
}

// after schedules fn to run d from now within scope.
func (s *scheduler) after(scope Stage, name string, d time.Duration, fn func()) *timer {
	if s.closed {
		return &timer{name: name, cancelled: true}
	}
	s.seq++
	t := &timer{name: name, at: s.now + max(0, d), fn: fn, seq: s.seq}
	s.timers = append(s.timers, t)
	s.scopes[scope] = append(s.scopes[scope], t)
	return t
}

// cancelScope cancels every pending timer of scope.
func (s *scheduler) cancelScope(scope Stage) int {
	n := 0
	for _, t := range s.scopes[scope] {
		if !t.fired && !t.cancelled {
			t.cancelled = true
			n++
		}
	}
	delete(s.scopes, scope)
	s.prune()
	return n
}

// close cancels everything. Later calls to after return inert timers.
func (s *scheduler) close() {
	for _, t := range s.timers {
		t.cancelled = true
	}
	s.timers = nil
	s.scopes = make(map[Stage][]*timer)
	s.closed = true
}

// advance moves the clock by dt and fires due timers in deadline order.
// Each callback sees the clock at its own deadline, so timers it schedules
// are anchored there and run in the same advance if already due.
func (s *scheduler) advance(dt time.Duration) {
	if s.closed {
		return
	}
	end := s.now + max(0, dt)
	for {
		next := s.due(end)
		if next == nil {
			break
		}
		next.fired = true
		s.now = max(s.now, next.at)
		next.fn()
		if s.closed {
			s.now = end
			return
		}
	}
	s.now = end
	s.prune()
}

func (s *scheduler) due(end time.Duration) *timer {
	var best *timer
	for _, t := range s.timers {
		if t.fired || t.cancelled || t.at > end {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *scheduler) prune() {
	s.timers = slices.DeleteFunc(s.timers, func(t *timer) bool {
		return t.fired || t.cancelled
	})
}

// pending reports how many timers are waiting.
func (s *scheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.fired && !t.cancelled {
			n++
		}
	}
	return n
}
