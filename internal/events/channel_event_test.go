package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChannelEvent(t *testing.T) {
	event := NewChannelEvent[string](false)
	require.NotNil(t, event)
	assert.Equal(t, 0, event.ListenerCount())
	assert.False(t, event.sendLastEventOnListen)
	assert.Equal(t, DeliverSkipIfFull, event.policy)

	event2 := NewChannelEventWithPolicy[int](true, DeliverReplaceStale)
	require.NotNil(t, event2)
	assert.True(t, event2.sendLastEventOnListen)
	assert.Equal(t, DeliverReplaceStale, event2.policy)
}

func TestChannelEvent_Listen_Notify_Basic(t *testing.T) {
	event := NewChannelEvent[string](false)

	ch := make(chan string, 10)
	unregister := event.Listen(ch)
	assert.Equal(t, 1, event.ListenerCount())

	event.Notify("test1")
	event.Notify("test2")

	// Sends are synchronous and non-blocking, the values are already buffered
	require.Len(t, ch, 2)
	assert.Equal(t, "test1", <-ch)
	assert.Equal(t, "test2", <-ch)

	unregister()
	assert.Equal(t, 0, event.ListenerCount())

	event.Notify("test3")
	assert.Len(t, ch, 0)
}

func TestChannelEvent_SendLastEventOnListen(t *testing.T) {
	event := NewChannelEvent[string](true)

	ch1 := make(chan string, 10)
	unregister1 := event.Listen(ch1)
	// Notify hasn't been called yet, nothing to replay
	assert.Len(t, ch1, 0)
	_, ok := event.Last()
	assert.False(t, ok)

	event.Notify("first-event")
	assert.Equal(t, "first-event", <-ch1)

	last, ok := event.Last()
	assert.True(t, ok)
	assert.Equal(t, "first-event", last)

	// A late listener receives the last event immediately
	ch2 := make(chan string, 10)
	unregister2 := event.Listen(ch2)
	require.Len(t, ch2, 1)
	assert.Equal(t, "first-event", <-ch2)

	event.Notify("second-event")
	assert.Equal(t, "second-event", <-ch1)
	assert.Equal(t, "second-event", <-ch2)

	unregister1()
	unregister2()
}

func TestChannelEvent_SendLastEventOnListen_False(t *testing.T) {
	event := NewChannelEvent[string](false)

	event.Notify("first-event")

	ch := make(chan string, 10)
	unregister := event.Listen(ch)
	assert.Len(t, ch, 0)

	event.Notify("second-event")
	assert.Equal(t, "second-event", <-ch)

	unregister()
}

func TestChannelEvent_Listen_InvalidChannel(t *testing.T) {
	event := NewChannelEvent[string](false)

	assert.Panics(t, func() {
		event.Listen(nil)
	})
	assert.Panics(t, func() {
		event.Listen(make(chan string))
	})
}

func TestChannelEvent_FullChannel_Skip(t *testing.T) {
	event := NewChannelEvent[string](false)

	ch := make(chan string, 1)
	unregister := event.Listen(ch)

	ch <- "blocking"

	// Skipped since the channel is full
	event.Notify("test1")
	event.Notify("test2")
	assert.Len(t, ch, 1)
	assert.Equal(t, "blocking", <-ch)

	event.Notify("test3")
	assert.Equal(t, "test3", <-ch)

	unregister()
}

func TestChannelEvent_FullChannel_ReplaceStale(t *testing.T) {
	event := NewChannelEventWithPolicy[int](false, DeliverReplaceStale)

	ch := make(chan int, 1)
	unregister := event.Listen(ch)

	for i := 1; i <= 5; i++ {
		event.Notify(i)
	}

	// Only the newest value survives
	require.Len(t, ch, 1)
	assert.Equal(t, 5, <-ch)

	unregister()
}

func TestChannelEvent_ConcurrentAccess(t *testing.T) {
	event := NewChannelEvent[int](false)

	channels := make([]chan int, 10)
	unregisters := make([]func(), 10)
	for i := range channels {
		channels[i] = make(chan int, 100)
		unregisters[i] = event.Listen(channels[i])
	}
	assert.Equal(t, 10, event.ListenerCount())

	var wg sync.WaitGroup
	wg.Add(5)
	for i := 0; i < 5; i++ {
		go func(value int) {
			defer wg.Done()
			event.Notify(value)
		}(i)
	}
	wg.Wait()

	for i, ch := range channels {
		assert.Len(t, ch, 5, "channel %d", i)
	}

	for _, unregister := range unregisters {
		unregister()
	}
	assert.Equal(t, 0, event.ListenerCount())
}
