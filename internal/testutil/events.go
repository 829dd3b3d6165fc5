package testutil

import (
	"sync"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// EventRecorder captures every event published on a bus.
type EventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

// RecordEvents subscribes a recorder to all events on bus.
func RecordEvents(bus ports.EventBus) *EventRecorder {
	r := &EventRecorder{}
	bus.SubscribeAll(func(e domain.Event) {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	})
	return r
}

// Of returns the recorded events of one type, in publish order.
func (r *EventRecorder) Of(eventType domain.EventType) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Event
	for _, e := range r.events {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events of one type were recorded.
func (r *EventRecorder) Count(eventType domain.EventType) int {
	return len(r.Of(eventType))
}

// Reset forgets everything recorded so far.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
