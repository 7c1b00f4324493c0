package session

import (
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/lowaak/smart-trainer/rep-coach/internal/events"
	"github.com/lowaak/smart-trainer/rep-coach/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/rep-coach/internal/indicator"
)

// DefaultCycleInterval is the pause at the end of every driver cycle
const DefaultCycleInterval = time.Second

// Indicator is the part of the blink indicator the driver uses
type Indicator interface {
	Set(c indicator.Color, mode indicator.Mode)
	Close()
}

// DriverSnapshot is published after every cycle
type DriverSnapshot struct {
	Snapshot
	Cycle uint64
}

// Driver is the cooperative main loop: one handler call, one transition and
// one fixed pause per cycle. It never waits on an input.
type Driver struct {
	session   *Session
	indicator Indicator
	clock     clock.Clock
	interval  time.Duration
	logger    *log.Logger

	// Loop state (protected by mu)
	mu        sync.RWMutex
	cycle     uint64
	signalled bool
	lastPhase Phase
	snapshot  DriverSnapshot

	snapshotEvent *events.ChannelEvent[DriverSnapshot]

	// Goroutine management
	doneChan     chan struct{} // Closed to signal shutdown
	wg           sync.WaitGroup
	startOnce    sync.Once
	shutdownOnce sync.Once
}

// NewDriverArg holds the arguments for creating a new Driver
type NewDriverArg struct {
	Session   *Session
	Indicator Indicator
	Clock     clock.Clock
	Interval  time.Duration // zero means DefaultCycleInterval
	Logger    *log.Logger
}

// NewDriver creates a stopped driver; call Start to run the loop
func NewDriver(args NewDriverArg) *Driver {
	if args.Session == nil {
		panic("SessionDriver: session cannot be nil")
	}
	if args.Indicator == nil {
		panic("SessionDriver: indicator cannot be nil")
	}
	if args.Clock == nil {
		panic("SessionDriver: clock cannot be nil")
	}
	if args.Logger == nil {
		panic("SessionDriver: logger cannot be nil")
	}
	interval := args.Interval
	if interval <= 0 {
		interval = DefaultCycleInterval
	}

	d := &Driver{
		session:       args.Session,
		indicator:     args.Indicator,
		clock:         args.Clock,
		interval:      interval,
		logger:        args.Logger,
		snapshotEvent: events.NewChannelEventWithPolicy[DriverSnapshot](true, events.DeliverReplaceStale),
		doneChan:      make(chan struct{}),
	}
	d.session.OnTransition(d.logTransition)
	return d
}

// Session returns the driven session
func (d *Driver) Session() *Session { return d.session }

// Interval returns the pause between cycles
func (d *Driver) Interval() time.Duration { return d.interval }

// Step runs exactly one cycle. The handler sees every flag raised since the
// previous cycle and the transition sees what the handler just did.
// Step must only be called from one goroutine; Start uses the loop goroutine.
func (d *Driver) Step() DriverSnapshot {
	d.session.Handle()
	d.session.Transition()

	state := d.session.State()

	d.mu.Lock()
	d.cycle++
	applySignal := !d.signalled || d.lastPhase != state.Phase()
	d.signalled = true
	d.lastPhase = state.Phase()
	d.snapshot = DriverSnapshot{Snapshot: d.session.Snapshot(), Cycle: d.cycle}
	snap := d.snapshot
	d.mu.Unlock()

	// Only on phase change, so a blinking state keeps its rhythm across cycles
	if applySignal {
		sig := state.Signal()
		d.indicator.Set(sig.Color, sig.Mode)
	}

	d.snapshotEvent.Notify(snap)
	return snap
}

// Start launches the loop goroutine. Later calls are ignored.
func (d *Driver) Start() {
	d.startOnce.Do(func() {
		d.logger.Printf("SessionDriver: starting (cycle every %v)", d.interval)
		d.wg.Add(1)
		go_func_utils.SafeGoNamed(d.logger, "session driver", d.runLoop)
	})
}

// Shutdown stops the loop, waits for it and turns the indicator off.
// Safe to call multiple times - only the first call has effect
func (d *Driver) Shutdown() {
	d.shutdownOnce.Do(func() {
		d.logger.Printf("SessionDriver: Shutting down")
		close(d.doneChan)
		d.wg.Wait()
		d.indicator.Close()
		d.logger.Printf("SessionDriver: Shutdown complete")
	})
}

// LatestSnapshot returns the snapshot of the last completed cycle
func (d *Driver) LatestSnapshot() DriverSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// ListenToSnapshots registers a buffered channel for per-cycle snapshots.
// Slow listeners only ever see the newest one.
// Returns a deregistration function that can be called to remove the listener
func (d *Driver) ListenToSnapshots(ch chan DriverSnapshot) func() {
	return d.snapshotEvent.Listen(ch)
}

func (d *Driver) runLoop() {
	defer d.wg.Done()

	for {
		select {
		case <-d.doneChan:
			d.logger.Printf("SessionDriver: Goroutine exiting")
			return
		default:
		}

		d.Step()

		select {
		case <-d.doneChan:
			d.logger.Printf("SessionDriver: Goroutine exiting")
			return
		case <-d.clock.After(d.interval):
		}
	}
}

func (d *Driver) logTransition(t Transition) {
	if t.Changed() {
		d.logger.Printf("SessionDriver: %s -> %s (series %d, reps %d)", t.From, t.To, t.CurrentSeries, t.RepetitionsDone)
	}
}
