// Package input turns raw falling edges from a push button into one-shot,
// debounced press flags.
//
// OnEdge runs in interrupt context (a GPIO interrupt on the Pico, a dedicated
// goroutine in the simulator). Take runs in the cooperative main loop. The two
// sides only share atomics: OnEdge is the only writer of true to the pending
// flag, Take the only writer of false, and Take clears with an atomic swap so
// a press can never be read twice or cleared unread.
package input

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultDebounce is the quiescence window after an accepted edge
const DefaultDebounce = 200 * time.Millisecond

// DebounceStrategy selects how the quiescence window is enforced
type DebounceStrategy int

const (
	// DebounceRearm accepts the edge immediately and re-enables edges from a
	// timer once the window has passed. OnEdge never blocks.
	DebounceRearm DebounceStrategy = iota
	// DebounceBusyWait disables edges, blocks the caller for the window, then
	// raises the flag and re-enables edges.
	DebounceBusyWait
)

func (s DebounceStrategy) String() string {
	switch s {
	case DebounceRearm:
		return "rearm"
	case DebounceBusyWait:
		return "busy-wait"
	default:
		return fmt.Sprintf("DebounceStrategy(%d)", int(s))
	}
}

// ParseDebounceStrategy parses the names produced by DebounceStrategy.String
func ParseDebounceStrategy(name string) (DebounceStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rearm", "timer":
		return DebounceRearm, nil
	case "busy-wait", "busywait", "blocking":
		return DebounceBusyWait, nil
	default:
		return 0, fmt.Errorf("unknown debounce strategy %q", name)
	}
}

// Stats counts what a button has seen since it was created
type Stats struct {
	Accepted   uint64 // edges that raised the pending flag
	Suppressed uint64 // edges that arrived while the input was disarmed
	Taken      uint64 // presses consumed by Take
}

// Button is a debounced edge input with a one-shot pending flag
type Button struct {
	name     string
	window   time.Duration
	strategy DebounceStrategy
	clock    clock.Clock

	pending atomic.Bool
	armed   atomic.Bool

	accepted   atomic.Uint64
	suppressed atomic.Uint64
	taken      atomic.Uint64

	// rearm timer, only touched from edge context and Stop
	timerMu sync.Mutex
	timer   *clock.Timer
	stopped bool
}

// NewButton creates an armed button. A zero window falls back to DefaultDebounce.
func NewButton(name string, window time.Duration, strategy DebounceStrategy, clk clock.Clock) *Button {
	if clk == nil {
		panic("Button: clock cannot be nil")
	}
	if window <= 0 {
		window = DefaultDebounce
	}
	b := &Button{
		name:     name,
		window:   window,
		strategy: strategy,
		clock:    clk,
	}
	b.armed.Store(true)
	return b
}

// Name returns the label given at construction
func (b *Button) Name() string { return b.name }

// Window returns the debounce window
func (b *Button) Window() time.Duration { return b.window }

// Strategy returns the debounce strategy
func (b *Button) Strategy() DebounceStrategy { return b.strategy }

// OnEdge handles one falling edge. Edges arriving inside the debounce window of
// an accepted edge are suppressed.
func (b *Button) OnEdge() {
	// Disarming is the "disable this pin's interrupt" step; the CAS makes sure
	// only one edge per window gets past it.
	if !b.armed.CompareAndSwap(true, false) {
		b.suppressed.Add(1)
		return
	}

	switch b.strategy {
	case DebounceBusyWait:
		b.clock.Sleep(b.window)
		b.press()
		b.armed.Store(true)
	default:
		b.press()
		b.scheduleRearm()
	}
}

func (b *Button) press() {
	b.accepted.Add(1)
	b.pending.Store(true)
}

func (b *Button) scheduleRearm() {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()
	if b.stopped {
		return
	}
	b.timer = b.clock.AfterFunc(b.window, func() {
		b.armed.Store(true)
	})
}

// Take reports whether a press happened since the last call and clears it
func (b *Button) Take() bool {
	if b.pending.Swap(false) {
		b.taken.Add(1)
		return true
	}
	return false
}

// Pending reports the flag without consuming it
func (b *Button) Pending() bool { return b.pending.Load() }

// Armed reports whether the next edge would be accepted
func (b *Button) Armed() bool { return b.armed.Load() }

// Stats returns a copy of the edge counters
func (b *Button) Stats() Stats {
	return Stats{
		Accepted:   b.accepted.Load(),
		Suppressed: b.suppressed.Load(),
		Taken:      b.taken.Load(),
	}
}

// Stop cancels a pending re-arm. The button stays disarmed if one was pending.
func (b *Button) Stop() {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()
	b.stopped = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
