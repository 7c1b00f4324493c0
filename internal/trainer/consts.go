package trainer

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

// ButtonID names one of the two physical inputs
type ButtonID string

const (
	ButtonConfirm ButtonID = "confirm"
	ButtonCount   ButtonID = "count"
)

// KeyBinding maps a key to a simulated button edge
type KeyBinding struct {
	Button      ButtonID
	DisplayName string
	Key         tcell.Key // tcell.KeyRune when Rune is used
	Rune        rune
}

// AllKeyBindings lists the keys that raise edges, in legend order
var AllKeyBindings = []KeyBinding{
	{Button: ButtonConfirm, DisplayName: "Enter", Key: tcell.KeyEnter},
	{Button: ButtonConfirm, DisplayName: "C", Key: tcell.KeyRune, Rune: 'c'},
	{Button: ButtonCount, DisplayName: "Space", Key: tcell.KeyRune, Rune: ' '},
	{Button: ButtonCount, DisplayName: "R", Key: tcell.KeyRune, Rune: 'r'},
}

// GetButtonByKey returns the button bound to a key event
func GetButtonByKey(key tcell.Key, r rune) (ButtonID, bool) {
	for _, b := range AllKeyBindings {
		if b.Key != key {
			continue
		}
		if key != tcell.KeyRune || b.Rune == r {
			return b.Button, true
		}
	}
	return "", false
}

// PhaseInfo contains display information for a session phase
type PhaseInfo struct {
	Phase       session.Phase
	DisplayName string
	Hint        string
}

// AllPhases defines the display info for every phase in order
var AllPhases = []PhaseInfo{
	{Phase: session.PhaseAuth, DisplayName: "Authentication", Hint: "Press confirm to authenticate"},
	{Phase: session.PhaseExerciseStart, DisplayName: "Exercise Start", Hint: "Press confirm to start"},
	{Phase: session.PhaseInSeries, DisplayName: "In Series", Hint: "Press count for every repetition"},
	{Phase: session.PhaseRest, DisplayName: "Rest", Hint: "Breathe"},
	{Phase: session.PhaseFinish, DisplayName: "Finished", Hint: "Report on its way"},
}

// GetPhaseInfo returns the info for a given phase
func GetPhaseInfo(phase session.Phase) (PhaseInfo, bool) {
	for _, info := range AllPhases {
		if info.Phase == phase {
			return info, true
		}
	}
	return PhaseInfo{}, false
}

const (
	// maxLogLines bounds the in-memory log tail
	maxLogLines = 1000
	// displayWidth is the character width of the simulated OLED
	displayWidth = 21
)
