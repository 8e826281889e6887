package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Envelope is an event as delivered to bus subscribers, tagged with the
// session that produced it and its position in that session's stream.
type Envelope struct {
	SessionID string
	Sequence  uint64
	Event     Event
	Published time.Time
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Envelope)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType Type
	Callback  Listener
}

// Bus provides a synchronous publish/subscribe implementation with type filtering.
type Bus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[Type][]TypedListener
	nextHandle     int
	now            func() time.Time
}

// NewBus constructs a fresh event bus instance.
func NewBus() *Bus {
	return &Bus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[Type][]TypedListener),
		now:            time.Now,
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *Bus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *Bus) SubscribeTyped(eventType Type, callback Listener) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered with Subscribe or SubscribeTyped.
func (bus *Bus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the envelope to all registered listeners synchronously.
// Catch-all listeners run first, in subscription order, then typed listeners.
func (bus *Bus) Publish(env Envelope) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	if env.Published.IsZero() {
		env.Published = bus.now()
	}

	for handle := 0; handle < bus.nextHandle; handle++ {
		if listener, ok := bus.listeners[handle]; ok {
			listener(env)
		}
	}

	if env.Event == nil {
		return
	}
	for _, listener := range bus.typedListeners[env.Event.EventType()] {
		listener.Callback(env)
	}
}

// ForSession returns an Emitter that publishes every event on the bus
// tagged with sessionID and a per-session sequence number starting at 1.
func (bus *Bus) ForSession(sessionID string) Emitter {
	return &sessionEmitter{bus: bus, sessionID: sessionID}
}

type sessionEmitter struct {
	bus       *Bus
	sessionID string
	sequence  atomic.Uint64
}

func (e *sessionEmitter) Emit(evt Event) {
	e.bus.Publish(Envelope{
		SessionID: e.sessionID,
		Sequence:  e.sequence.Add(1),
		Event:     evt,
	})
}
