package trainer

import (
	"testing"
	"time"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
)

func TestNewCursesUIView_Validation(t *testing.T) {
	assert.Panics(t, func() { NewCursesUIView(nil, tview.NewApplication()) })
	assert.Panics(t, func() { NewCursesUIView(discardLogger(), nil) })
	assert.NotNil(t, NewCursesUIView(discardLogger(), tview.NewApplication()))
}

func TestFormatDurationMMSS(t *testing.T) {
	assert.Equal(t, "00:00", formatDurationMMSS(0))
	assert.Equal(t, "03:05", formatDurationMMSS(3*time.Minute+5*time.Second))
}
