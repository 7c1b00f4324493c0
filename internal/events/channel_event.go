package events

import (
	"sync"
)

// DeliveryPolicy decides what Notify does when a listener channel is full
type DeliveryPolicy int

const (
	// DeliverSkipIfFull drops the new value for that listener
	DeliverSkipIfFull DeliveryPolicy = iota
	// DeliverReplaceStale discards the buffered value and sends the new one, so
	// a slow listener always wakes up to the most recent state
	DeliverReplaceStale
)

// ChannelEvent provides pub/sub behavior using channels
// T is the type of the value sent to channels
type ChannelEvent[T any] struct {
	mu                    sync.RWMutex
	channels              map[uint64]chan T
	nextID                uint64
	policy                DeliveryPolicy
	sendLastEventOnListen bool
	lastEvent             *T
}

// NewChannelEvent creates a ChannelEvent that skips full listeners.
// sendLastEventOnListen: if true, the last Notify value is sent to new listeners
// as soon as they register
func NewChannelEvent[T any](sendLastEventOnListen bool) *ChannelEvent[T] {
	return NewChannelEventWithPolicy[T](sendLastEventOnListen, DeliverSkipIfFull)
}

// NewChannelEventWithPolicy creates a ChannelEvent with an explicit delivery policy
func NewChannelEventWithPolicy[T any](sendLastEventOnListen bool, policy DeliveryPolicy) *ChannelEvent[T] {
	return &ChannelEvent[T]{
		channels:              make(map[uint64]chan T),
		policy:                policy,
		sendLastEventOnListen: sendLastEventOnListen,
	}
}

// Listen registers a buffered channel to receive values when Notify is invoked.
// Returns a deregistration function; calling it more than once is safe.
func (e *ChannelEvent[T]) Listen(ch chan T) func() {
	if ch == nil {
		panic("channel cannot be nil")
	}
	if cap(ch) == 0 {
		panic("channel must be buffered")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.channels[id] = ch
	var last *T
	if e.sendLastEventOnListen && e.lastEvent != nil {
		v := *e.lastEvent
		last = &v
	}
	e.mu.Unlock()

	// Outside the lock: a full channel must not stall other publishers
	if last != nil {
		e.deliver(ch, *last)
	}

	return func() {
		e.mu.Lock()
		delete(e.channels, id)
		e.mu.Unlock()
	}
}

// Notify sends value to every registered channel without blocking
func (e *ChannelEvent[T]) Notify(value T) {
	e.mu.Lock()
	if e.sendLastEventOnListen {
		v := value
		e.lastEvent = &v
	}
	targets := make([]chan T, 0, len(e.channels))
	for _, ch := range e.channels {
		targets = append(targets, ch)
	}
	e.mu.Unlock()

	for _, ch := range targets {
		e.deliver(ch, value)
	}
}

func (e *ChannelEvent[T]) deliver(ch chan T, value T) {
	for {
		select {
		case ch <- value:
			return
		default:
		}
		if e.policy == DeliverSkipIfFull {
			return
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Last returns the last notified value, if the event remembers it
func (e *ChannelEvent[T]) Last() (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastEvent == nil {
		var zero T
		return zero, false
	}
	return *e.lastEvent, true
}

// ListenerCount returns the current number of registered listeners
func (e *ChannelEvent[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.channels)
}
