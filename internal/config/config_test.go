package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/rep-coach/internal/input"
	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

const fileYAML = `
session:
  total_reps: 10
  total_series: 4
input:
  debounce_strategy: busy-wait
report:
  journal: /tmp/reports.jsonl
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, session.DefaultConfig(), cfg.SessionConfig())
	assert.Equal(t, 200*time.Millisecond, cfg.DebounceWindow())
	assert.Equal(t, input.DebounceRearm, cfg.DebounceStrategy())
	assert.Equal(t, 500*time.Millisecond, cfg.BlinkPeriod())
	assert.Equal(t, time.Second, cfg.CycleInterval())
	assert.Equal(t, "", cfg.Report.Journal)
	assert.False(t, cfg.BLE.Enabled)
	assert.Equal(t, "Rep Coach", cfg.BLE.Name)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
}

func TestLoad_FlagDefaultsMatchConstants(t *testing.T) {
	fs := NewFlagSet("test")
	require.NoError(t, fs.Parse(nil))
	cfg, err := Load(fs)
	require.NoError(t, err)

	fromNil, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, fromNil, cfg)
}

func TestLoad_File(t *testing.T) {
	fs := NewFlagSet("test")
	require.NoError(t, fs.Parse([]string{"--config", writeTemp(t, fileYAML)}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Session.TotalReps)
	assert.Equal(t, 4, cfg.Session.TotalSeries)
	assert.Equal(t, input.DebounceBusyWait, cfg.DebounceStrategy())
	assert.Equal(t, "/tmp/reports.jsonl", cfg.Report.Journal)
	// Keys missing from the file keep their defaults
	assert.Equal(t, 200, cfg.Input.DebounceMs)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("REPCOACH_SESSION_TOTAL_REPS", "8")
	t.Setenv("REPCOACH_BLE_ENABLED", "true")

	fs := NewFlagSet("test")
	require.NoError(t, fs.Parse([]string{"--config", writeTemp(t, fileYAML)}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Session.TotalReps)
	assert.Equal(t, 4, cfg.Session.TotalSeries)
	assert.True(t, cfg.BLE.Enabled)
}

func TestLoad_FlagsOverrideEnvAndFile(t *testing.T) {
	t.Setenv("REPCOACH_SESSION_TOTAL_REPS", "8")

	fs := NewFlagSet("test")
	require.NoError(t, fs.Parse([]string{
		"--config", writeTemp(t, fileYAML),
		"--total-reps", "5",
		"--debounce-strategy", "rearm",
		"--journal", "reports.jsonl",
	}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Session.TotalReps)
	assert.Equal(t, input.DebounceRearm, cfg.DebounceStrategy())
	assert.Equal(t, "reports.jsonl", cfg.Report.Journal)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero reps", []string{"--total-reps", "0"}, "session.total_reps"},
		{"negative series", []string{"--total-series", "-1"}, "session.total_series"},
		{"zero debounce", []string{"--debounce-ms", "0"}, "input.debounce_ms"},
		{"unknown strategy", []string{"--debounce-strategy", "magic"}, "input.debounce_strategy"},
		{"zero blink", []string{"--blink-period-ms", "0"}, "indicator.blink_period_ms"},
		{"zero cycle", []string{"--cycle-interval-ms", "0"}, "driver.cycle_interval_ms"},
		{"ble without name", []string{"--ble", "--ble-name", ""}, "ble.name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewFlagSet("test")
			require.NoError(t, fs.Parse(tt.args))
			_, err := Load(fs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	fs := NewFlagSet("test")
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))
	_, err := Load(fs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}
