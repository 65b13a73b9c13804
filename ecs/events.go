package ecs

import "slices"

// Event is anything with a topic to dispatch on. All other fields are opaque to the dispatcher.
type Event interface {
	Topic() string
}

// Message is a ready-made Event carrying an arbitrary payload.
type Message struct {
	Name    string
	Payload any
}

// Topic implements Event.
func (m Message) Topic() string { return m.Name }

// Handler processes an event.
type Handler func(Event)

// EventMode selects when emitted events reach their handlers.
type EventMode uint8

const (
	// Queued buffers events until the next Tick. This is the default.
	Queued EventMode = iota
	// Immediate dispatches events synchronously inside Emit.
	Immediate
)

func (m EventMode) String() string {
	if m == Immediate {
		return "immediate"
	}
	return "queued"
}

// Subscription identifies a registered handler or listener.
type Subscription struct {
	Id          uint64
	unsubscribe func() bool
}

// Unsubscribe removes the handler. It reports whether the handler was still registered.
func (s Subscription) Unsubscribe() bool {
	if s.unsubscribe == nil {
		return false
	}
	return s.unsubscribe()
}

type handlerEntry struct {
	id uint64
	fn Handler
}

// EventSystem dispatches events to handlers keyed by topic.
type EventSystem struct {
	mode     EventMode
	handlers map[string][]handlerEntry
	nextId   uint64

	// events emitted during Tick go into back and are delivered next Tick
	front, back []Event
	ticking     bool
}

// NewEventSystem creates a dispatcher in the given mode.
func NewEventSystem(mode EventMode) *EventSystem {
	return &EventSystem{
		mode:     mode,
		handlers: make(map[string][]handlerEntry),
	}
}

// Mode returns the dispatch mode.
func (es *EventSystem) Mode() EventMode { return es.mode }

// Pending returns the number of queued events.
func (es *EventSystem) Pending() int { return len(es.back) }

// On subscribes h to topic. Handlers for a topic run in subscription order.
func (es *EventSystem) On(topic string, h Handler) Subscription {
	es.nextId++
	id := es.nextId
	es.handlers[topic] = append(es.handlers[topic], handlerEntry{id: id, fn: h})
	return Subscription{
		Id:          id,
		unsubscribe: func() bool { return es.RemoveHandler(topic, id) },
	}
}

// RemoveHandler removes the handler with id from topic.
func (es *EventSystem) RemoveHandler(topic string, id uint64) bool {
	handlers, ok := es.handlers[topic]
	if !ok {
		return false
	}
	i := slices.IndexFunc(handlers, func(h handlerEntry) bool { return h.id == id })
	if i < 0 {
		return false
	}
	if len(handlers) == 1 {
		delete(es.handlers, topic)
		return true
	}
	// copy on write; a dispatch in progress keeps ranging over the old slice
	es.handlers[topic] = slices.Delete(slices.Clone(handlers), i, i+1)
	return true
}

// Emit dispatches ev now in Immediate mode, or buffers it for the next Tick.
func (es *EventSystem) Emit(ev Event) {
	if es.mode == Immediate {
		es.dispatch(ev)
		return
	}
	es.back = append(es.back, ev)
}

// Tick delivers the events buffered before the call, in emission order.
func (es *EventSystem) Tick() {
	if es.ticking || len(es.back) == 0 {
		return
	}
	es.ticking = true
	defer func() { es.ticking = false }()

	es.front, es.back = es.back, es.front[:0]
	for i, ev := range es.front {
		es.dispatch(ev)
		es.front[i] = nil
	}
	es.front = es.front[:0]
}

func (es *EventSystem) dispatch(ev Event) {
	for _, h := range es.handlers[ev.Topic()] {
		h.fn(ev)
	}
}

// Reset drops every handler and buffered event.
func (es *EventSystem) Reset() {
	clear(es.handlers)
	clear(es.back)
	es.back = es.back[:0]
}
