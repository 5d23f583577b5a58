package outbox

import "context"

// Event is a named domain event carried over the in-process bus.
type Event interface {
	EventName() string
}

// Handler consumes one delivered event.
type Handler func(ctx context.Context, e Event) error

// Publisher hands an event to the bus for fanout.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers a handler for a given event name.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
