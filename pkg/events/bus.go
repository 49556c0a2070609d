package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	gookitEvent "github.com/gookit/event"

	applogger "github.com/meshwatch/meshwatch/pkg/logger"
)

// gookitBus implements Bus using gookit/event as the underlying implementation.
type gookitBus struct {
	manager     *gookitEvent.Manager
	logger      *applogger.Logger
	subscribers map[string][]Handler
	mu          sync.RWMutex
	closed      bool
}

// NewGookitBus creates a new event bus backed by gookit/event.
func NewGookitBus(logger *applogger.Logger) Bus {
	if logger == nil {
		logger = applogger.NewNop()
	}

	return &gookitBus{
		manager:     gookitEvent.NewManager("meshwatch"),
		logger:      logger,
		subscribers: make(map[string][]Handler),
	}
}

// Publish publishes an event to the bus.
func (b *gookitBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("event bus is closed")
	}
	b.mu.RUnlock()

	b.logger.Debug("publishing event",
		slog.String("type", event.Type()),
		slog.String("id", event.ID()))

	err, _ := b.manager.Fire(event.Type(), gookitEvent.M{"payload": event})
	if err != nil {
		b.logger.Error("failed to publish event",
			slog.String("type", event.Type()),
			slog.String("id", event.ID()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subscribe registers a handler for events of a specific type.
func (b *gookitBus) Subscribe(eventType string, handler Handler) (UnsubscribeFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("event bus is closed")
	}

	listener := gookitEvent.ListenerFunc(func(e gookitEvent.Event) error {
		if payload, ok := e.Get("payload").(Event); ok {
			return handler(context.Background(), payload)
		}
		return fmt.Errorf("invalid event payload received: %T", e.Get("payload"))
	})

	b.manager.On(eventType, listener, gookitEvent.Normal)
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)

	b.logger.Debug("subscribed to event type", slog.String("type", eventType))

	return func() error {
		return b.unsubscribe(eventType, handler)
	}, nil
}

func (b *gookitBus) unsubscribe(eventType string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers, exists := b.subscribers[eventType]
	if !exists {
		return fmt.Errorf("no handlers found for event type: %s", eventType)
	}

	for i, h := range handlers {
		if fmt.Sprintf("%p", h) == fmt.Sprintf("%p", handler) {
			b.subscribers[eventType] = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}
	if len(b.subscribers[eventType]) == 0 {
		delete(b.subscribers, eventType)
	}

	return nil
}

// Close gracefully shuts down the event bus.
func (b *gookitBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.subscribers = make(map[string][]Handler)
	b.manager.Clear()
	b.closed = true
	return nil
}
