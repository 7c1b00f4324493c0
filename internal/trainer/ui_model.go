package trainer

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/smart-trainer/rep-coach/internal/events"
	"github.com/lowaak/smart-trainer/rep-coach/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/rep-coach/internal/indicator"
	"github.com/lowaak/smart-trainer/rep-coach/internal/input"
	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

// DisplayLines is the content of the four-line display
type DisplayLines [4]string

// ButtonStats holds the edge counters per button
type ButtonStats map[ButtonID]input.Stats

// UIModel is the simulator's hardware stand-in and view model. It is the
// display sink and the LED output of the core, and republishes session
// snapshots for the view.
type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	displayEvent          *events.ChannelEvent[DisplayLines]
	display               DisplayLines
	ledEvent              *events.ChannelEvent[indicator.Color]
	led                   indicator.Color
	snapshotEvent         *events.ChannelEvent[session.DriverSnapshot]
	snapshot              session.DriverSnapshot
	buttonStatsEvent      *events.ChannelEvent[ButtonStats]
	buttonStats           ButtonStats
	reportEvent           *events.ChannelEvent[session.Report]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

// Verify UIModel is usable as the core's display and LED
var (
	_ session.Display  = (*UIModel)(nil)
	_ indicator.Output = (*UIModel)(nil)
)

func NewUIModel(logger *log.Logger, uiLogChan <-chan string) *UIModel {
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		displayEvent:          events.NewChannelEventWithPolicy[DisplayLines](true, events.DeliverReplaceStale),
		ledEvent:              events.NewChannelEventWithPolicy[indicator.Color](true, events.DeliverReplaceStale),
		snapshotEvent:         events.NewChannelEventWithPolicy[session.DriverSnapshot](true, events.DeliverReplaceStale),
		buttonStatsEvent:      events.NewChannelEventWithPolicy[ButtonStats](true, events.DeliverReplaceStale),
		buttonStats:           make(ButtonStats),
		reportEvent:           events.NewChannelEvent[session.Report](true),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
	}

	// Read from the UI log channel and populate logLines
	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, func() { model.readFromLogChannel(ctx, uiLogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// Render implements session.Display
func (m *UIModel) Render(lines [4]string) {
	m.mu.Lock()
	if m.display == DisplayLines(lines) {
		m.mu.Unlock()
		return
	}
	m.display = lines
	m.mu.Unlock()

	m.displayEvent.Notify(lines)
}

// GetDisplay returns the current display content
func (m *UIModel) GetDisplay() DisplayLines {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.display
}

// ListenToDisplay registers a channel to receive display content changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToDisplay(ch chan DisplayLines) func() {
	return m.displayEvent.Listen(ch)
}

// Drive implements indicator.Output. It runs on the blink tick goroutine too,
// so it only records and notifies.
func (m *UIModel) Drive(c indicator.Color) {
	m.mu.Lock()
	if m.led == c {
		m.mu.Unlock()
		return
	}
	m.led = c
	m.mu.Unlock()

	m.ledEvent.Notify(c)
}

// GetLED returns the color currently driven on the LED
func (m *UIModel) GetLED() indicator.Color {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.led
}

// ListenToLED registers a channel to receive LED output changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLED(ch chan indicator.Color) func() {
	return m.ledEvent.Listen(ch)
}

// SetSnapshot stores the latest session snapshot and notifies listeners
func (m *UIModel) SetSnapshot(snap session.DriverSnapshot) {
	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()

	m.snapshotEvent.Notify(snap)
}

// GetSnapshot returns the latest session snapshot
func (m *UIModel) GetSnapshot() session.DriverSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// ListenToSnapshot registers a channel to receive session snapshots
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToSnapshot(ch chan session.DriverSnapshot) func() {
	return m.snapshotEvent.Listen(ch)
}

// SetButtonStats stores the edge counters of one button and notifies listeners
func (m *UIModel) SetButtonStats(id ButtonID, stats input.Stats) {
	m.mu.Lock()
	if old, ok := m.buttonStats[id]; ok && old == stats {
		m.mu.Unlock()
		return
	}
	m.buttonStats[id] = stats
	statsCopy := make(ButtonStats, len(m.buttonStats))
	for k, v := range m.buttonStats {
		statsCopy[k] = v
	}
	m.mu.Unlock()

	m.buttonStatsEvent.Notify(statsCopy)
}

// GetButtonStats returns a copy of the edge counters
func (m *UIModel) GetButtonStats() ButtonStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(ButtonStats, len(m.buttonStats))
	for k, v := range m.buttonStats {
		result[k] = v
	}
	return result
}

// ListenToButtonStats registers a channel to receive edge counter changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToButtonStats(ch chan ButtonStats) func() {
	return m.buttonStatsEvent.Listen(ch)
}

// AddReport publishes a finished session report
func (m *UIModel) AddReport(r session.Report) {
	m.reportEvent.Notify(r)
}

// ListenToReports registers a channel to receive finished session reports
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToReports(ch chan session.Report) func() {
	return m.reportEvent.Listen(ch)
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToCloseApplication(ch chan struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// FollowDriver copies every driver snapshot into the model until Shutdown
func (m *UIModel) FollowDriver(driver *session.Driver) {
	if driver == nil {
		panic("UIModel: driver cannot be nil")
	}
	m.wg.Add(1)
	go_func_utils.SafeGo(m.logger, func() { m.listenToDriver(m.ctx, driver) })
}

func (m *UIModel) listenToDriver(ctx context.Context, driver *session.Driver) {
	defer m.wg.Done()

	ch := make(chan session.DriverSnapshot, 1)
	unregister := driver.ListenToSnapshots(ch)
	defer unregister()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			m.SetSnapshot(snap)
		}
	}
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				// Channel closed
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				// Remove oldest lines, keep the most recent maxLogLines
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			// Notify listeners for immediate display
			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}

	if n >= len(m.logLines) {
		result := make([]string, len(m.logLines))
		copy(result, m.logLines)
		return result
	}

	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}
