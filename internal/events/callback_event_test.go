package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallbackEvent(t *testing.T) {
	event := NewCallbackEvent[string]()
	require.NotNil(t, event)
	assert.Equal(t, 0, event.ListenerCount())
	assert.Equal(t, 0, event.Notify("nobody listening"))
}

func TestCallbackEvent_Listen_Notify_Basic(t *testing.T) {
	event := NewCallbackEvent[string]()

	received := make([]string, 0)
	unregister := event.Listen(func(value string) {
		received = append(received, value)
	})
	assert.Equal(t, 1, event.ListenerCount())

	assert.Equal(t, 1, event.Notify("test1"))
	assert.Equal(t, 1, event.Notify("test2"))
	assert.Equal(t, []string{"test1", "test2"}, received)

	unregister()
	assert.Equal(t, 0, event.ListenerCount())

	assert.Equal(t, 0, event.Notify("test3"))
	// Should still be 2 since listener was removed
	assert.Len(t, received, 2)
}

func TestCallbackEvent_RegistrationOrder(t *testing.T) {
	event := NewCallbackEvent[int]()

	var order []string
	unregisterA := event.Listen(func(int) { order = append(order, "a") })
	unregisterB := event.Listen(func(int) { order = append(order, "b") })
	unregisterC := event.Listen(func(int) { order = append(order, "c") })

	event.Notify(1)
	assert.Equal(t, []string{"a", "b", "c"}, order)

	// Removing the middle listener keeps the others in order
	unregisterB()
	order = nil
	event.Notify(2)
	assert.Equal(t, []string{"a", "c"}, order)

	unregisterA()
	unregisterC()
}

func TestCallbackEvent_UnregisterDuringNotify(t *testing.T) {
	event := NewCallbackEvent[string]()

	received := make([]string, 0)
	var unregister func()
	unregister = event.Listen(func(value string) {
		received = append(received, value)
		if value == "unregister" {
			unregister()
		}
	})

	event.Notify("test1")
	event.Notify("unregister")
	event.Notify("test2")

	assert.Equal(t, []string{"test1", "unregister"}, received)
	assert.Equal(t, 0, event.ListenerCount())
}

func TestCallbackEvent_MultipleUnregisterCalls(t *testing.T) {
	event := NewCallbackEvent[string]()

	unregisterA := event.Listen(func(string) {})
	unregisterB := event.Listen(func(string) {})
	assert.Equal(t, 2, event.ListenerCount())

	unregisterA()
	unregisterA()
	unregisterA()
	assert.Equal(t, 1, event.ListenerCount())

	unregisterB()
	assert.Equal(t, 0, event.ListenerCount())
}

func TestCallbackEvent_ConcurrentAccess(t *testing.T) {
	event := NewCallbackEvent[int]()

	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0

	wg.Add(10)
	for i := 0; i < 10; i++ {
		go func() {
			defer wg.Done()
			event.Listen(func(int) {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, event.ListenerCount())

	wg.Add(5)
	for i := 0; i < 5; i++ {
		go func(value int) {
			defer wg.Done()
			event.Notify(value)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	assert.Equal(t, 50, count)
	mu.Unlock()
}

func TestCallbackEvent_Listen_NilCallback(t *testing.T) {
	event := NewCallbackEvent[string]()

	assert.Panics(t, func() {
		event.Listen(nil)
	})
}
