// Package eventbus provides implementations of the EventBus interface.
// This package contains the synchronous event bus implementation.
package eventbus

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// ErrClosed is returned by Close when the bus was already closed.
var ErrClosed = errors.New("event bus already closed")

// wildcard is the pseudo event type used for SubscribeAll handlers.
const wildcard domain.EventType = "*"

// SyncEventBus is a synchronous implementation of the EventBus interface.
// Events are delivered on the publisher's goroutine, type-specific handlers first,
// then wildcard handlers, each group in subscription order.
//
// Thread-safety: This implementation is thread-safe. Handlers run without the
// bus lock held, so a handler may publish, subscribe or unsubscribe.
//
// Slow handlers block the publisher. The transport publishes progress from its
// polling goroutine, so handlers that do real work must hand off to a goroutine.
type SyncEventBus struct {
	logger *slog.Logger

	// subs holds every live subscription in subscription order
	subs []subscription

	// mu protects subs and closed
	mu sync.RWMutex

	closed bool
}

type subscription struct {
	id        domain.SubscriptionID
	eventType domain.EventType
	handler   domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus.
// A nil logger discards handler diagnostics.
func NewSyncEventBus(logger *slog.Logger) *SyncEventBus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SyncEventBus{
		logger: logger.With(slog.String("component", "eventbus")),
	}
}

// Publish publishes an event to all subscribers of that event type.
//
// If the event bus is closed, this method does nothing.
//
// Panics in handlers are recovered and logged, but do not stop other handlers
// from being called.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	eventType := event.Type()
	var typed, all []subscription
	for _, sub := range bus.subs {
		switch sub.eventType {
		case eventType:
			typed = append(typed, sub)
		case wildcard:
			all = append(all, sub)
		}
	}
	bus.mu.RUnlock()

	for _, sub := range typed {
		bus.callHandler(sub, event)
	}
	for _, sub := range all {
		bus.callHandler(sub, event)
	}
}

func (bus *SyncEventBus) callHandler(sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)))
		}
	}()
	sub.handler(event)
}

// Subscribe registers a handler for events of the specified type.
// Returns a unique subscription ID that can be used to unsubscribe.
//
// Subscribing to a closed bus returns an empty ID and registers nothing.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}
	return bus.add(eventType, handler)
}

// SubscribeAll registers a handler that receives all events regardless of type.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}
	return bus.add(wildcard, handler)
}

func (bus *SyncEventBus) add(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		bus.logger.Warn("subscribe on closed event bus", slog.String("event_type", string(eventType)))
		return ""
	}

	id := domain.SubscriptionID(uuid.NewString())
	bus.subs = append(bus.subs, subscription{id: id, eventType: eventType, handler: handler})
	return id
}

// Unsubscribe removes a previously registered event handler.
// If the subscription ID is invalid or already unsubscribed, this is a no-op.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.subs = slices.DeleteFunc(bus.subs, func(s subscription) bool { return s.id == id })
}

// HasSubscribers returns true if there are any active subscriptions for the given event type,
// wildcard subscriptions included.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	return slices.ContainsFunc(bus.subs, func(s subscription) bool {
		return s.eventType == eventType || s.eventType == wildcard
	})
}

// Close shuts down the event bus and clears all subscriptions.
//
// Returns ErrClosed if already closed.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrClosed
	}
	bus.closed = true
	bus.subs = nil
	return nil
}

// SubscriberCount returns the number of active subscriptions, wildcard ones included.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs)
}

// Verify that SyncEventBus implements the EventBus interface
var _ ports.EventBus = (*SyncEventBus)(nil)
