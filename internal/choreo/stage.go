// Package choreo sequences the experience: the stage machine from intro to
// the main cake, the countdown digits, and the timeline that follows the
// candles going out.
package choreo

import "fmt"

// Stage is one screen of the experience.
type Stage int

const (
	StageIntro Stage = iota
	StageLoading
	StageGesture
	StageCountdown
	StageMainCake
)

func (s Stage) String() string {
	switch s {
	case StageIntro:
		return "intro"
	case StageLoading:
		return "loading"
	case StageGesture:
		return "gesture"
	case StageCountdown:
		return "countdown"
	case StageMainCake:
		return "main_cake"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// GestureStatus is the gesture screen's scan state.
type GestureStatus int

const (
	GestureIdle GestureStatus = iota
	GestureScanning
	GestureDetected
)

func (g GestureStatus) String() string {
	switch g {
	case GestureScanning:
		return "scanning"
	case GestureDetected:
		return "detected"
	default:
		return "idle"
	}
}

// EventKind identifies a sequencer notification.
type EventKind int

const (
	EventStage EventKind = iota
	EventGesture
	EventCountdown
	EventExtinguished
	EventGreeting
	EventFireworks
	EventBurst
	EventLetter
)

func (k EventKind) String() string {
	switch k {
	case EventStage:
		return "stage"
	case EventGesture:
		return "gesture"
	case EventCountdown:
		return "countdown"
	case EventExtinguished:
		return "extinguished"
	case EventGreeting:
		return "greeting"
	case EventFireworks:
		return "fireworks"
	case EventBurst:
		return "burst"
	case EventLetter:
		return "letter"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers synchronously from Tick, Advance or
// Skip. Value carries the countdown digit or the burst index.
type Event struct {
	Kind  EventKind
	Stage Stage
	Value int
}
