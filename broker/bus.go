package broker

import "sync"

// Handler receives every event published on a subscribed topic.
type Handler func(Event)

// Bus is the in-process event dispatcher. Dispatch is synchronous: Publish
// returns after every subscriber has run, which keeps mutation -> reload
// ordering deterministic.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]Handler)}
}

// Subscribe registers h on topic and returns a function that removes the
// subscription. Safe to call the returned function more than once.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

func (b *Bus) Publish(topic string, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// DefaultBus carries all change events inside the process.
var DefaultBus = NewBus()

// Publish dispatches on the default bus and mirrors the event to NATS when a
// producer is connected.
func Publish(topic string, event Event) {
	DefaultBus.Publish(topic, event)
	mirrorToNats(topic, event)
}

func Subscribe(topic string, h Handler) func() {
	return DefaultBus.Subscribe(topic, h)
}
