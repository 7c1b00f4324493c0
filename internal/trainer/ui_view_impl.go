package trainer

import (
	"github.com/lowaak/smart-trainer/rep-coach/internal/indicator"
	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

// UIViewImpl defines the interface for framework-specific UI implementations
type UIViewImpl interface {
	// Initialize is called after construction to set up framework-specific widgets
	// controller is used to handle UI events
	Initialize(controller *UIController)

	// SetupKeyboardHandlers sets up keyboard event handlers
	// controller is used to handle keyboard events
	SetupKeyboardHandlers(controller *UIController)

	// Run starts the UI framework and blocks until it exits
	Run() error

	// Stop stops the UI framework
	Stop()

	// Draw refreshes/redraws the UI
	Draw() error

	// --- Simulated hardware ---

	// SetDisplay shows the four display lines, already fitted to the panel width
	SetDisplay(lines DisplayLines)

	// SetLED paints the LED swatch
	SetLED(c indicator.Color)

	// --- Session status ---

	UpdateSnapshot(snap session.DriverSnapshot)
	UpdateButtonStats(stats ButtonStats)
	AddReport(r session.Report)

	// --- Log View ---

	// GetLogViewHeight returns the visible height of the log view
	GetLogViewHeight() int

	// ClearLogView clears the log view
	ClearLogView()

	// WriteLogLine writes a line to the log view
	WriteLogLine(line string) error
}
