package events

import "time"

// Event type constants for kelindar/event.
const (
	TypePhaseStarted uint32 = iota + 1
	TypePhaseFinished
	TypeSessionFinished
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// Session results carried by SessionFinishedEvent.
const (
	ResultCompleted   = "completed"
	ResultInterrupted = "interrupted"
	ResultDeviceError = "device_error"
)

// PhaseStartedEvent is published once the light shows the phase color.
type PhaseStartedEvent struct {
	Kind      string        `json:"kind"`
	Set       int           `json:"set"`
	Rep       int           `json:"rep"`
	Duration  time.Duration `json:"duration"`
	Color     string        `json:"color"`
	Timestamp time.Time     `json:"timestamp"`
}

// Type returns the event type identifier for PhaseStartedEvent.
func (e PhaseStartedEvent) Type() uint32 { return TypePhaseStarted }

// PhaseFinishedEvent is published after the phase sleep and flash complete.
type PhaseFinishedEvent struct {
	Kind      string    `json:"kind"`
	Set       int       `json:"set"`
	Rep       int       `json:"rep"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for PhaseFinishedEvent.
func (e PhaseFinishedEvent) Type() uint32 { return TypePhaseFinished }

// SessionFinishedEvent is published when a run ends, successfully or not.
type SessionFinishedEvent struct {
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for SessionFinishedEvent.
func (e SessionFinishedEvent) Type() uint32 { return TypeSessionFinished }
