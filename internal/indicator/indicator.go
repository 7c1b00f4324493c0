// Package indicator drives a three-channel RGB LED that can be off, solid or
// blinking. Blinking is paced by a periodic tick that runs outside the caller's
// goroutine, standing in for a hardware repeating timer.
package indicator

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/lowaak/smart-trainer/rep-coach/internal/go_func_utils"
)

// DefaultBlinkPeriod is the time between blink phase toggles
const DefaultBlinkPeriod = 500 * time.Millisecond

// Mode is the indicator's behavior
type Mode int

const (
	ModeOff Mode = iota
	ModeSolid
	ModeBlink
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeSolid:
		return "solid"
	case ModeBlink:
		return "blink"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Output energizes the three LED channels. Implementations must not block.
type Output interface {
	Drive(c Color)
}

// State is a point-in-time copy of the indicator
type State struct {
	Mode  Mode
	Color Color // target color
	Lit   bool  // blink phase, always true for solid
	Out   Color // what is currently driven
}

// Indicator owns the LED mode/color/phase and the blink tick source
type Indicator struct {
	out    Output
	clock  clock.Clock
	period time.Duration
	logger *log.Logger

	// mu plays the part of masking the timer interrupt: Set and OnTick never
	// interleave their state update and output drive.
	mu     sync.Mutex
	mode   Mode
	color  Color
	lit    bool
	driven Color

	// setMu serializes Set and Close, which own the tick source. OnTick never
	// takes it, so stopTicks can wait for a tick in flight.
	setMu    sync.Mutex
	ticker   *clock.Ticker
	tickDone chan struct{}
	ticks    sync.WaitGroup
}

// New creates an indicator with all channels de-energized.
// A zero period falls back to DefaultBlinkPeriod.
func New(out Output, clk clock.Clock, period time.Duration, logger *log.Logger) *Indicator {
	if out == nil {
		panic("Indicator: output cannot be nil")
	}
	if clk == nil {
		panic("Indicator: clock cannot be nil")
	}
	if logger == nil {
		panic("Indicator: logger cannot be nil")
	}
	if period <= 0 {
		period = DefaultBlinkPeriod
	}
	ind := &Indicator{
		out:    out,
		clock:  clk,
		period: period,
		logger: logger,
	}
	ind.drive(Dark)
	return ind
}

// Period returns the blink period
func (ind *Indicator) Period() time.Duration { return ind.period }

// Set changes the target color and mode and applies it immediately.
// Entering blink restarts the tick source from scratch; off and solid stop it.
// Safe to call from several goroutines.
func (ind *Indicator) Set(c Color, mode Mode) {
	ind.setMu.Lock()
	defer ind.setMu.Unlock()
	ind.stopTicks()

	ind.mu.Lock()
	ind.color = c
	ind.mode = mode
	switch mode {
	case ModeSolid:
		ind.lit = true
		ind.drive(c)
	case ModeBlink:
		// Start on the lit phase so the change is visible right away
		ind.lit = true
		ind.drive(c)
	default:
		ind.mode = ModeOff
		ind.lit = false
		ind.drive(Dark)
	}
	ind.mu.Unlock()

	if mode == ModeBlink {
		ind.startTicks()
	}
}

// OnTick toggles the blink phase. Ticks that arrive after the indicator left
// blink mode are ignored.
func (ind *Indicator) OnTick() {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	if ind.mode != ModeBlink {
		return
	}
	ind.lit = !ind.lit
	if ind.lit {
		ind.drive(ind.color)
	} else {
		ind.drive(Dark)
	}
}

// State returns a copy of the current indicator state
func (ind *Indicator) State() State {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return State{Mode: ind.mode, Color: ind.color, Lit: ind.lit, Out: ind.driven}
}

// Close stops blinking and de-energizes the LED
func (ind *Indicator) Close() {
	ind.Set(Dark, ModeOff)
}

// drive must be called with mu held (or before the indicator is shared)
func (ind *Indicator) drive(c Color) {
	ind.driven = c
	ind.out.Drive(c)
}

// startTicks and stopTicks must be called with setMu held
func (ind *Indicator) startTicks() {
	ticker := ind.clock.Ticker(ind.period)
	done := make(chan struct{})
	ind.ticker = ticker
	ind.tickDone = done

	ind.ticks.Add(1)
	go_func_utils.SafeGoNamed(ind.logger, "indicator tick", func() {
		defer ind.ticks.Done()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ind.OnTick()
			}
		}
	})
}

func (ind *Indicator) stopTicks() {
	if ind.ticker == nil {
		return
	}
	ind.ticker.Stop()
	close(ind.tickDone)
	ind.ticker = nil
	ind.tickDone = nil
	// A tick may already be inside OnTick; wait so the old source is fully
	// gone before the new mode is applied.
	ind.ticks.Wait()
}
