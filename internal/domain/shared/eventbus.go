package shared

import "context"

// EventHandler processes domain events delivered by the bus.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants. Empty means
	// all events.
	EventTypes() []string
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers handlers for domain events.
type EventSubscriber interface {
	// Subscribe registers a handler for the given event types. With
	// none given, the handler's EventTypes() applies.
	Subscribe(handler EventHandler, eventTypes ...string)
}

// EventBus is the full pub/sub surface with lifecycle control.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
