package core

import (
	"fmt"
	"log/slog"
	"sync"
)

// EventType names an adapter notification.
type EventType string

const (
	EventTrajectoryLoaded   EventType = "onTrajectoryLoaded"
	EventTrajectoryError    EventType = "onTrajectoryError"
	EventValidationComplete EventType = "onValidationComplete"
)

// EventTypes lists every event the adapter emits.
var EventTypes = []EventType{EventTrajectoryLoaded, EventTrajectoryError, EventValidationComplete}

// Event is the payload handed to listeners. Fields not relevant to Type
// are zero.
type Event struct {
	Type   EventType `json:"event"`
	Kind   Kind      `json:"type"`
	Source string    `json:"source,omitempty"`

	// onTrajectoryLoaded
	TrajectoryID string    `json:"id,omitempty"`
	Points       int       `json:"points,omitempty"`
	Simulation   int       `json:"simulation,omitempty"` // 1-based Monte-Carlo count after append
	Metadata     *Metadata `json:"metadata,omitempty"`

	// onValidationComplete
	Report *ValidationReport `json:"validation,omitempty"`

	// onTrajectoryError
	Err error `json:"-"`
}

// Listener receives events. A returned error is logged and otherwise
// ignored.
type Listener func(Event) error

// eventBus dispatches events synchronously in registration order.
type eventBus struct {
	logger *slog.Logger

	mu        sync.RWMutex
	listeners map[EventType][]Listener
}

func newEventBus(logger *slog.Logger) *eventBus {
	b := &eventBus{
		logger:    logger,
		listeners: make(map[EventType][]Listener, len(EventTypes)),
	}
	for _, t := range EventTypes {
		b.listeners[t] = nil
	}
	return b
}

// on registers fn for t. Unknown event types are ignored and reported as
// false.
func (b *eventBus) on(t EventType, fn Listener) bool {
	if fn == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.listeners[t]; !ok {
		return false
	}
	b.listeners[t] = append(b.listeners[t], fn)
	return true
}

// emit invokes every listener of ev.Type. Each call is isolated: an error
// or panic is logged and the next listener still runs. It returns the
// number of listeners that failed.
func (b *eventBus) emit(ev Event) int {
	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners[ev.Type]...)
	b.mu.RUnlock()

	failed := 0
	for i, fn := range listeners {
		if err := invoke(fn, ev); err != nil {
			failed++
			b.logger.Error("event listener failed",
				"event", string(ev.Type),
				"listener", i,
				"error", err,
			)
		}
	}
	return failed
}

// invoke calls fn, converting a panic into an error.
func invoke(fn Listener, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return fn(ev)
}
