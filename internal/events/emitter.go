// Package events defines the notifications game sessions emit after a
// successful mutation, and the sinks that receive them.
//
// Emission is synchronous and ordered. Sessions never read their own events
// back, and nothing is emitted on a failed call.
package events

// Emitter receives events at the point of mutation.
type Emitter interface {
	Emit(evt Event)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(evt Event)

// Emit calls f(evt).
func (f EmitterFunc) Emit(evt Event) {
	f(evt)
}

type discard struct{}

func (discard) Emit(Event) {}

// Discard drops every event.
var Discard Emitter = discard{}

// OrDiscard returns e, or Discard when e is nil.
func OrDiscard(e Emitter) Emitter {
	if e == nil {
		return Discard
	}
	return e
}

// Recorder buffers emitted events in order until drained.
type Recorder struct {
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{events: make([]Event, 0)}
}

// Emit appends evt to the buffer.
func (r *Recorder) Emit(evt Event) {
	r.events = append(r.events, evt)
}

// Events returns a copy of the buffered events.
func (r *Recorder) Events() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the type of each buffered event in order.
func (r *Recorder) Types() []Type {
	types := make([]Type, 0, len(r.events))
	for _, evt := range r.events {
		types = append(types, evt.EventType())
	}
	return types
}

// Len returns the number of buffered events.
func (r *Recorder) Len() int {
	return len(r.events)
}

// Drain returns the buffered events and empties the buffer.
func (r *Recorder) Drain() []Event {
	out := r.events
	r.events = make([]Event, 0)
	return out
}

// Tee fans every event out to each emitter in order.
func Tee(emitters ...Emitter) Emitter {
	return EmitterFunc(func(evt Event) {
		for _, e := range emitters {
			if e != nil {
				e.Emit(evt)
			}
		}
	})
}
