// Package config loads the rep coach settings from defaults, an optional YAML
// file, REPCOACH_ environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/smart-trainer/rep-coach/internal/ble"
	"github.com/lowaak/smart-trainer/rep-coach/internal/indicator"
	"github.com/lowaak/smart-trainer/rep-coach/internal/input"
	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

// EnvPrefix prefixes every environment override, e.g. REPCOACH_SESSION_TOTAL_REPS
const EnvPrefix = "REPCOACH"

type Config struct {
	Session   SessionConfig   `mapstructure:"session"`
	Input     InputConfig     `mapstructure:"input"`
	Indicator IndicatorConfig `mapstructure:"indicator"`
	Driver    DriverConfig    `mapstructure:"driver"`
	Log       LogConfig       `mapstructure:"log"`
	Report    ReportConfig    `mapstructure:"report"`
	BLE       BLEConfig       `mapstructure:"ble"`
}

type SessionConfig struct {
	TotalReps   int `mapstructure:"total_reps"`
	TotalSeries int `mapstructure:"total_series"`
}

type InputConfig struct {
	DebounceMs       int    `mapstructure:"debounce_ms"`
	DebounceStrategy string `mapstructure:"debounce_strategy"`
}

type IndicatorConfig struct {
	BlinkPeriodMs int `mapstructure:"blink_period_ms"`
}

type DriverConfig struct {
	CycleIntervalMs int `mapstructure:"cycle_interval_ms"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type ReportConfig struct {
	// Journal is the JSON-lines report file; empty disables it
	Journal string `mapstructure:"journal"`
}

type BLEConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Name    string `mapstructure:"name"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"total-reps":        "session.total_reps",
	"total-series":      "session.total_series",
	"debounce-ms":       "input.debounce_ms",
	"debounce-strategy": "input.debounce_strategy",
	"blink-period-ms":   "indicator.blink_period_ms",
	"cycle-interval-ms": "driver.cycle_interval_ms",
	"log-file":          "log.file",
	"journal":           "report.journal",
	"ble":               "ble.enabled",
	"ble-name":          "ble.name",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("session.total_reps", session.DefaultTotalReps)
	v.SetDefault("session.total_series", session.DefaultTotalSeries)
	v.SetDefault("input.debounce_ms", int(input.DefaultDebounce/time.Millisecond))
	v.SetDefault("input.debounce_strategy", input.DebounceRearm.String())
	v.SetDefault("indicator.blink_period_ms", int(indicator.DefaultBlinkPeriod/time.Millisecond))
	v.SetDefault("driver.cycle_interval_ms", int(session.DefaultCycleInterval/time.Millisecond))
	v.SetDefault("log.file", "rep_coach.log")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("report.journal", "")
	v.SetDefault("ble.enabled", false)
	v.SetDefault("ble.name", ble.DefaultLocalName)
}

// NewFlagSet returns the command line flags understood by Load
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.Int("total-reps", session.DefaultTotalReps, "repetitions per series")
	fs.Int("total-series", session.DefaultTotalSeries, "series per exercise")
	fs.Int("debounce-ms", int(input.DefaultDebounce/time.Millisecond), "button debounce window in milliseconds")
	fs.String("debounce-strategy", input.DebounceRearm.String(), "debounce strategy: rearm or busy-wait")
	fs.Int("blink-period-ms", int(indicator.DefaultBlinkPeriod/time.Millisecond), "LED blink half period in milliseconds")
	fs.Int("cycle-interval-ms", int(session.DefaultCycleInterval/time.Millisecond), "pause between main loop cycles in milliseconds")
	fs.String("log-file", "rep_coach.log", "rotating log file")
	fs.String("journal", "", "JSON-lines report journal (empty disables it)")
	fs.Bool("ble", false, "publish reports over BLE")
	fs.String("ble-name", ble.DefaultLocalName, "BLE local name")
	return fs
}

// Load builds the configuration. flags may be nil; only flags that were set on
// the command line override file and environment values.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}

		if path, err := flags.GetString("config"); err == nil && path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the core cannot run with
func (c *Config) Validate() error {
	if c.Session.TotalReps <= 0 {
		return errors.New("session.total_reps must be positive")
	}
	if c.Session.TotalSeries <= 0 {
		return errors.New("session.total_series must be positive")
	}
	if c.Input.DebounceMs <= 0 {
		return errors.New("input.debounce_ms must be positive")
	}
	if _, err := input.ParseDebounceStrategy(c.Input.DebounceStrategy); err != nil {
		return fmt.Errorf("input.debounce_strategy: %w", err)
	}
	if c.Indicator.BlinkPeriodMs <= 0 {
		return errors.New("indicator.blink_period_ms must be positive")
	}
	if c.Driver.CycleIntervalMs <= 0 {
		return errors.New("driver.cycle_interval_ms must be positive")
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return errors.New("log.max_size_mb and log.max_backups cannot be negative")
	}
	if c.BLE.Enabled && c.BLE.Name == "" {
		return errors.New("ble.name is required when ble.enabled is set")
	}
	return nil
}

// SessionConfig returns the exercise shape
func (c *Config) SessionConfig() session.Config {
	return session.Config{TotalReps: c.Session.TotalReps, TotalSeries: c.Session.TotalSeries}
}

// DebounceWindow returns the button quiescence window
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Input.DebounceMs) * time.Millisecond
}

// DebounceStrategy returns the parsed strategy; Validate guarantees it parses
func (c *Config) DebounceStrategy() input.DebounceStrategy {
	s, _ := input.ParseDebounceStrategy(c.Input.DebounceStrategy)
	return s
}

func (c *Config) BlinkPeriod() time.Duration {
	return time.Duration(c.Indicator.BlinkPeriodMs) * time.Millisecond
}

func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Driver.CycleIntervalMs) * time.Millisecond
}
