package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting.
// Handlers run on the dispatcher's goroutines, so publishing never blocks on them.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case PhaseStartedEvent:
		event.Publish(b.dispatcher, e)
	case PhaseFinishedEvent:
		event.Publish(b.dispatcher, e)
	case SessionFinishedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler for the event type in its signature and
// returns an unsubscribe function. Unknown handler types get a no-op.
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(PhaseStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PhaseFinishedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SessionFinishedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
