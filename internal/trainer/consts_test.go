package trainer

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"

	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

func TestGetButtonByKey(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want ButtonID
		ok   bool
	}{
		{tcell.KeyEnter, 0, ButtonConfirm, true},
		{tcell.KeyRune, 'c', ButtonConfirm, true},
		{tcell.KeyRune, ' ', ButtonCount, true},
		{tcell.KeyRune, 'r', ButtonCount, true},
		{tcell.KeyRune, 'x', "", false},
		{tcell.KeyTab, 0, "", false},
	}
	for _, tt := range tests {
		got, ok := GetButtonByKey(tt.key, tt.r)
		assert.Equal(t, tt.ok, ok, "key %v rune %q", tt.key, tt.r)
		assert.Equal(t, tt.want, got, "key %v rune %q", tt.key, tt.r)
	}
}

func TestAllPhasesCoverEveryState(t *testing.T) {
	assert.Len(t, AllPhases, len(session.States))
	for _, st := range session.States {
		info, ok := GetPhaseInfo(st.Phase())
		assert.True(t, ok, st.Phase().String())
		assert.NotEmpty(t, info.DisplayName)
	}
	_, ok := GetPhaseInfo(session.Phase(99))
	assert.False(t, ok)
}

func TestFormatKeyLegend(t *testing.T) {
	legend := formatKeyLegend()
	assert.Contains(t, legend, "Enter")
	assert.Contains(t, legend, "Space")
	assert.Contains(t, legend, "Quit")
}
