package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Subscription receives events of the types it was registered for.
type Subscription struct {
	id     uint64
	types  map[EventType]struct{}
	ch     chan Event
	bus    *Bus
	closed atomic.Bool
}

// Chan returns the channel on which matching events are delivered. The
// channel is closed when the subscription or the bus is closed.
func (s *Subscription) Chan() <-chan Event {
	return s.ch
}

// Unsubscribe removes this subscription from the bus and closes its
// channel. Safe to call multiple times.
func (s *Subscription) Unsubscribe() {
	if s.bus != nil {
		s.bus.Unsubscribe(s)
	}
}

// Bus is a fan-out Sink: relayers and embedders subscribe to the event
// types they care about and receive them on buffered channels. All
// methods are safe for concurrent use.
type Bus struct {
	mu         sync.RWMutex
	subs       map[uint64]*Subscription
	nextID     uint64
	bufferSize int
	closed     bool
}

// NewBus creates a Bus. bufferSize controls the channel buffer for each
// subscription; use 0 for unbuffered channels.
func NewBus(bufferSize int) *Bus {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &Bus{
		subs:       make(map[uint64]*Subscription),
		bufferSize: bufferSize,
	}
}

// Subscribe registers for events of a single type.
func (b *Bus) Subscribe(typ EventType) *Subscription {
	return b.SubscribeMultiple(typ)
}

// SubscribeMultiple registers for events matching any of the given
// types. On a closed bus the returned subscription is already closed.
func (b *Bus) SubscribeMultiple(types ...EventType) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub := &Subscription{
			ch:    make(chan Event),
			types: make(map[EventType]struct{}),
		}
		sub.closed.Store(true)
		close(sub.ch)
		return sub
	}

	b.nextID++
	typeSet := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		typeSet[t] = struct{}{}
	}

	sub := &Subscription{
		id:    b.nextID,
		types: typeSet,
		ch:    make(chan Event, b.bufferSize),
		bus:   b,
	}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes the given subscription and closes its channel.
// Safe to call multiple times or with nil.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	// The atomic swap closes the channel exactly once even under
	// concurrent Unsubscribe and Close.
	if !sub.closed.CompareAndSwap(false, true) {
		return
	}

	b.mu.Lock()
	delete(b.subs, sub.id)
	b.mu.Unlock()

	close(sub.ch)
}

// Emit delivers the event to every matching subscriber without
// blocking. A subscriber whose buffer is full misses the event. This is
// the Sink entry point used by the state machines.
func (b *Bus) Emit(typ EventType, data interface{}) {
	b.deliver(typ, data, false)
}

// Publish delivers the event to every matching subscriber, blocking
// while any subscriber's buffer is full. Embedders that need lossless
// delivery call this directly.
func (b *Bus) Publish(typ EventType, data interface{}) {
	b.deliver(typ, data, true)
}

func (b *Bus) deliver(typ EventType, data interface{}, block bool) {
	event := Event{
		Type:      typ,
		Data:      data,
		Timestamp: time.Now(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, sub := range b.subs {
		if sub.closed.Load() {
			continue
		}
		if _, ok := sub.types[typ]; !ok {
			continue
		}
		if block {
			sub.ch <- event
		} else {
			select {
			case sub.ch <- event:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of active subscriptions for the
// given event type.
func (b *Bus) SubscriberCount(typ EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, sub := range b.subs {
		if sub.closed.Load() {
			continue
		}
		if _, ok := sub.types[typ]; ok {
			count++
		}
	}
	return count
}

// Close shuts down the bus. All subscription channels are closed and
// later emits are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true

	toClose := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		toClose = append(toClose, sub)
	}
	b.subs = make(map[uint64]*Subscription)
	b.mu.Unlock()

	for _, sub := range toClose {
		if sub.closed.CompareAndSwap(false, true) {
			close(sub.ch)
		}
	}
}
