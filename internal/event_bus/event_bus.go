package event_bus

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType is an identifier for events.
type EventType string

// Event is the envelope used by the bus. Data is kept as any to allow
// different payload types on the same bus.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      any
}

// NewEvent creates a new Event with the given type and data.
// The timestamp is set to the current time automatically.
func NewEvent(eventType EventType, data any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type handler func(Event) error

// EventBus is a concurrency-safe synchronous event dispatcher.
// All handlers are executed sequentially during Publish.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType]map[uint64]handler
	nextID      uint64
}

// NewEventBus creates an empty EventBus.
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType]map[uint64]handler),
	}
}

// Subscribe registers a handler for the given eventType. It returns an
// unsubscribe function that removes the handler when called.
func (eb *EventBus) Subscribe(eventType EventType, h func(Event) error) (unsubscribe func()) {
	eb.mu.Lock()
	eb.nextID++
	id := eb.nextID

	if eb.subscribers[eventType] == nil {
		eb.subscribers[eventType] = make(map[uint64]handler)
	}
	eb.subscribers[eventType][id] = handler(h)
	eb.mu.Unlock()

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()

		if handlers := eb.subscribers[eventType]; handlers != nil {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(eb.subscribers, eventType)
			}
		}
	}
}

// Publish sends the event to all handlers registered for event.Type synchronously,
// in registration order. Handler errors are collected; publishing continues past
// a failing handler. Panics in handlers are recovered and treated as errors.
func (eb *EventBus) Publish(e Event) error {
	eb.mu.RLock()
	handlers := make([]handler, 0, len(eb.subscribers[e.Type]))
	for _, h := range eb.subscribers[e.Type] {
		handlers = append(handlers, h)
	}
	eb.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("handler panic for event %s: %v", e.Type, r)
					log.Error(err)
				}
			}()
			return h(e)
		}()
		if err != nil {
			log.Errorf("EventBus: handler error for event %s: %v", e.Type, err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("event %s: %d handler(s) failed: %v", e.Type, len(errs), errs)
	}

	return nil
}
