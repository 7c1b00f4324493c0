package input

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDebounceStrategy(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want DebounceStrategy
	}{
		{"rearm", DebounceRearm},
		{"Timer", DebounceRearm},
		{"busy-wait", DebounceBusyWait},
		{" blocking ", DebounceBusyWait},
	} {
		got, err := ParseDebounceStrategy(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseDebounceStrategy("sometimes")
	assert.Error(t, err)

	assert.Equal(t, "rearm", DebounceRearm.String())
	assert.Equal(t, "busy-wait", DebounceBusyWait.String())
}

func TestNewButton_Defaults(t *testing.T) {
	b := NewButton("confirm", 0, DebounceRearm, clock.NewMock())
	assert.Equal(t, "confirm", b.Name())
	assert.Equal(t, DefaultDebounce, b.Window())
	assert.True(t, b.Armed())
	assert.False(t, b.Pending())
	assert.False(t, b.Take())

	assert.Panics(t, func() { NewButton("x", time.Millisecond, DebounceRearm, nil) })
}

func TestButton_Rearm_TakeIsOneShot(t *testing.T) {
	mock := clock.NewMock()
	b := NewButton("count", 200*time.Millisecond, DebounceRearm, mock)

	b.OnEdge()
	assert.True(t, b.Pending())
	assert.True(t, b.Take())
	assert.False(t, b.Take(), "a press must only be read once")
	assert.Equal(t, Stats{Accepted: 1, Taken: 1}, b.Stats())
}

func TestButton_Rearm_BouncesCollapse(t *testing.T) {
	mock := clock.NewMock()
	b := NewButton("count", 200*time.Millisecond, DebounceRearm, mock)

	b.OnEdge()
	for i := 0; i < 5; i++ {
		mock.Add(10 * time.Millisecond)
		b.OnEdge()
	}
	assert.False(t, b.Armed())

	assert.True(t, b.Take())
	assert.False(t, b.Take())
	assert.Equal(t, Stats{Accepted: 1, Suppressed: 5, Taken: 1}, b.Stats())

	// Past the window the input is armed again
	mock.Add(200 * time.Millisecond)
	require.Eventually(t, b.Armed, time.Second, time.Millisecond)
}

func TestButton_Rearm_SpacedEdgesEachCount(t *testing.T) {
	mock := clock.NewMock()
	b := NewButton("count", 200*time.Millisecond, DebounceRearm, mock)

	for i := 0; i < 4; i++ {
		require.Eventually(t, b.Armed, time.Second, time.Millisecond)
		b.OnEdge()
		assert.True(t, b.Take(), "edge %d", i)
		mock.Add(250 * time.Millisecond)
	}
	assert.Equal(t, uint64(4), b.Stats().Accepted)
	assert.Equal(t, uint64(0), b.Stats().Suppressed)
}

func TestButton_Rearm_UnreadPressIsNotQueued(t *testing.T) {
	mock := clock.NewMock()
	b := NewButton("confirm", 200*time.Millisecond, DebounceRearm, mock)

	b.OnEdge()
	mock.Add(250 * time.Millisecond)
	require.Eventually(t, b.Armed, time.Second, time.Millisecond)
	b.OnEdge()

	// Two accepted presses, but only one outstanding flag
	assert.Equal(t, uint64(2), b.Stats().Accepted)
	assert.True(t, b.Take())
	assert.False(t, b.Take())
}

func TestButton_Stop_CancelsRearm(t *testing.T) {
	mock := clock.NewMock()
	b := NewButton("confirm", 200*time.Millisecond, DebounceRearm, mock)

	b.OnEdge()
	b.Stop()
	mock.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.False(t, b.Armed())

	// Further edges stay suppressed
	b.OnEdge()
	assert.Equal(t, uint64(1), b.Stats().Suppressed)
}

func TestButton_BusyWait_TwoPressesWithin50ms(t *testing.T) {
	b := NewButton("count", 200*time.Millisecond, DebounceBusyWait, clock.New())

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.OnEdge()
	}()
	require.Eventually(t, func() bool { return !b.Armed() }, time.Second, time.Millisecond)

	// Second bounce 10-50ms later arrives while the first is still waiting out the window
	time.Sleep(10 * time.Millisecond)
	b.OnEdge()

	// The flag is only raised once the window has passed
	assert.False(t, b.Pending())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("busy-wait edge handler never returned")
	}

	assert.True(t, b.Armed())
	assert.True(t, b.Take())
	assert.False(t, b.Take())
	assert.Equal(t, Stats{Accepted: 1, Suppressed: 1, Taken: 1}, b.Stats())
}

func TestButton_BusyWait_SpacedEdgesEachCount(t *testing.T) {
	b := NewButton("count", 20*time.Millisecond, DebounceBusyWait, clock.New())

	for i := 0; i < 3; i++ {
		b.OnEdge() // blocks for the window, like the ISR would
		assert.True(t, b.Take(), "edge %d", i)
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, uint64(3), b.Stats().Accepted)
}
