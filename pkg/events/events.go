package events

import (
	"context"
	"time"
)

// Event represents a generic event in the system.
type Event interface {
	// Type returns the event type identifier (e.g. "poll.failed").
	Type() string
	// Timestamp returns when the event occurred.
	Timestamp() time.Time
	// Metadata returns additional context-specific data.
	Metadata() map[string]any
	// ID returns a unique identifier for this event.
	ID() string
}

// Handler processes events of a specific type.
type Handler func(ctx context.Context, event Event) error

// Bus provides a generic interface for publishing and subscribing to events.
type Bus interface {
	// Publish publishes an event to the bus.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a handler for events of a specific type and
	// returns an unsubscribe function.
	Subscribe(eventType string, handler Handler) (UnsubscribeFunc, error)

	// Close gracefully shuts down the event bus.
	Close() error
}

// UnsubscribeFunc removes a previously registered handler.
type UnsubscribeFunc func() error
