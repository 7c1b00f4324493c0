package events

import (
	"sync"
)

type callbackEntry[T any] struct {
	id uint64
	fn func(T)
}

// CallbackEvent provides pub/sub behavior with type-safe callbacks.
// Callbacks run synchronously on the notifying goroutine, in registration order.
type CallbackEvent[T any] struct {
	mu        sync.RWMutex
	listeners []callbackEntry[T]
	nextID    uint64
}

// NewCallbackEvent creates a new CallbackEvent instance
func NewCallbackEvent[T any]() *CallbackEvent[T] {
	return &CallbackEvent[T]{}
}

// Listen registers a callback function to be called when Notify is invoked.
// Returns a deregistration function; calling it more than once is safe.
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("callback cannot be nil")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners = append(e.listeners, callbackEntry[T]{id: id, fn: callback})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every registered callback with value and returns how many ran.
// The listener list is copied first, so callbacks may unregister themselves.
func (e *CallbackEvent[T]) Notify(value T) int {
	e.mu.RLock()
	listeners := make([]callbackEntry[T], len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.RUnlock()

	for _, l := range listeners {
		l.fn(value)
	}
	return len(listeners)
}

// ListenerCount returns the current number of registered listeners
func (e *CallbackEvent[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}
