package trainer

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/smart-trainer/rep-coach/internal/indicator"
	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

// maxShownReports bounds the report history panel
const maxShownReports = 5

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger *log.Logger
	app    *tview.Application

	// Shared components
	logView  *tview.TextView
	mainFlex *tview.Flex // Main layout: device on left, logs on right

	// Simulated device
	displayPanel *tview.TextView
	ledPanel     *tview.TextView
	keysPanel    *tview.TextView

	// Session status
	statusPanel  *tview.TextView
	buttonsPanel *tview.TextView
	reportsPanel *tview.TextView
	reports      []session.Report
}

func NewCursesUIView(logger *log.Logger, app *tview.Application) *CursesUIViewImpl {
	if logger == nil {
		panic("CursesUIView: logger cannot be nil")
	}
	if app == nil {
		panic("CursesUIView: app cannot be nil")
	}
	return &CursesUIViewImpl{
		logger: logger,
		app:    app,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// Note: Don't use SetChangedFunc with app.Draw() - it can hang during shutdown
	// when the app has been stopped but log messages are still being written.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.displayPanel = tview.NewTextView().
		SetDynamicColors(false).
		SetTextAlign(tview.AlignLeft)
	ui.displayPanel.SetBorder(true).SetTitle(" Display ")

	ui.ledPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	ui.ledPanel.SetBorder(true).SetTitle(" LED ")
	ui.SetLED(indicator.Dark)

	ui.keysPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	ui.keysPanel.SetText(formatKeyLegend())

	ui.statusPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.statusPanel.SetBorder(true).SetTitle(" Session ")
	ui.UpdateSnapshot(session.DriverSnapshot{})

	ui.buttonsPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.buttonsPanel.SetBorder(true).SetTitle(" Buttons ")

	ui.reportsPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.reportsPanel.SetBorder(true).SetTitle(" Reports ")
	ui.updateReportsDisplay()

	// Device row: display next to its LED
	deviceRow := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.displayPanel, displayWidth+2, 0, false).
		AddItem(ui.ledPanel, 0, 1, false)

	statusRow := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.statusPanel, 0, 1, false).
		AddItem(ui.buttonsPanel, 0, 1, false)

	leftColumn := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(deviceRow, 6, 0, false).
		AddItem(statusRow, 0, 1, false).
		AddItem(ui.reportsPanel, 0, 1, false).
		AddItem(ui.keysPanel, 1, 0, false)

	ui.mainFlex = tview.NewFlex().
		AddItem(leftColumn, 0, 1, true).
		AddItem(ui.logView, 0, 1, false)
}

func formatKeyLegend() string {
	byButton := map[ButtonID][]string{}
	for _, b := range AllKeyBindings {
		byButton[b.Button] = append(byButton[b.Button], "[yellow]"+b.DisplayName+"[white]")
	}
	return fmt.Sprintf("%s Confirm  |  %s Count  |  [yellow]Esc[white]/[yellow]Q[white] Quit",
		strings.Join(byButton[ButtonConfirm], "/"),
		strings.Join(byButton[ButtonCount], "/"))
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Escape to quit
		if event.Key() == tcell.KeyEscape || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			controller.OnEscapeKey()
			return nil
		}

		if id, ok := GetButtonByKey(event.Key(), event.Rune()); ok {
			controller.PressButton(id)
			return nil
		}

		return event
	})
}

// SetDisplay shows the four display lines
func (ui *CursesUIViewImpl) SetDisplay(lines DisplayLines) {
	ui.displayPanel.SetText(strings.Join(lines[:], "\n"))
}

// SetLED paints the LED swatch in the driven color
func (ui *CursesUIViewImpl) SetLED(c indicator.Color) {
	if c.IsDark() {
		ui.ledPanel.SetText("\n[gray]○ off[white]")
		return
	}
	ui.ledPanel.SetText(fmt.Sprintf("\n[%s]●●●[white]\n%s", c.Hex(), c.Hex()))
}

// UpdateSnapshot updates the session status panel
func (ui *CursesUIViewImpl) UpdateSnapshot(snap session.DriverSnapshot) {
	if ui.statusPanel == nil {
		return
	}
	if snap.Cycle == 0 {
		ui.statusPanel.SetText("\n  [gray]Waiting for the first cycle...[white]")
		return
	}

	text := "\n"
	if info, ok := GetPhaseInfo(snap.Phase); ok {
		text += fmt.Sprintf("  [gray]Phase:[white]    [yellow]%s[white]\n", info.DisplayName)
		text += fmt.Sprintf("  [gray]%s[white]\n\n", info.Hint)
	} else {
		text += fmt.Sprintf("  [gray]Phase:[white]    [yellow]%s[white]\n\n", snap.Phase)
	}
	text += fmt.Sprintf("  [gray]Series:[white]   %d / %d\n", snap.CurrentSeries, snap.TotalSeries)
	text += fmt.Sprintf("  [gray]Reps:[white]     %d / %d\n", snap.RepetitionsDone, snap.TotalReps)
	text += fmt.Sprintf("  [gray]Signal:[white]   [%s]%s[white] %s\n", snap.Signal.Color.Hex(), snap.Signal.Color.Hex(), snap.Signal.Mode)
	text += fmt.Sprintf("  [gray]Sessions:[white] %d\n", snap.SessionsCompleted)
	text += fmt.Sprintf("  [gray]Cycle:[white]    %d\n", snap.Cycle)

	ui.statusPanel.SetText(text)
}

// UpdateButtonStats updates the edge counters panel
func (ui *CursesUIViewImpl) UpdateButtonStats(stats ButtonStats) {
	if ui.buttonsPanel == nil {
		return
	}
	text := "\n"
	for _, id := range []ButtonID{ButtonConfirm, ButtonCount} {
		s := stats[id]
		text += fmt.Sprintf("  [yellow]%-7s[white] accepted %d  bounced %d  taken %d\n", id, s.Accepted, s.Suppressed, s.Taken)
	}
	ui.buttonsPanel.SetText(text)
}

// AddReport prepends a finished session to the report history
func (ui *CursesUIViewImpl) AddReport(r session.Report) {
	ui.reports = append([]session.Report{r}, ui.reports...)
	if len(ui.reports) > maxShownReports {
		ui.reports = ui.reports[:maxShownReports]
	}
	ui.updateReportsDisplay()
}

func (ui *CursesUIViewImpl) updateReportsDisplay() {
	if len(ui.reports) == 0 {
		ui.reportsPanel.SetText("\n  [gray]No session finished yet[white]")
		return
	}
	text := "\n"
	for _, r := range ui.reports {
		text += fmt.Sprintf("  [green]#%d[white] %s  %dx%d = [yellow]%d[white] reps in %s\n",
			r.SessionNumber,
			r.FinishedAt.Format("15:04:05"),
			r.SeriesCompleted, r.RepsPerSeries, r.TotalReps,
			formatDurationMMSS(r.Duration()))
	}
	ui.reportsPanel.SetText(text)
}

// formatDurationMMSS formats a duration as MM:SS
func formatDurationMMSS(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	ui.app.SetRoot(ui.mainFlex, true)
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}
