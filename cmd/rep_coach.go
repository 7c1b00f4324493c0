package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/rivo/tview"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lowaak/smart-trainer/rep-coach/internal/ble"
	"github.com/lowaak/smart-trainer/rep-coach/internal/config"
	"github.com/lowaak/smart-trainer/rep-coach/internal/indicator"
	"github.com/lowaak/smart-trainer/rep-coach/internal/input"
	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
	"github.com/lowaak/smart-trainer/rep-coach/internal/trainer"
)

func main() {
	flags := config.NewFlagSet("rep_coach")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg, err := config.Load(flags)
	must("load config", err)

	// The curses UI owns stdout, so logs go to a rotating file and the log panel
	fileLog := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}
	defer fileLog.Close()
	uiLog := trainer.NewUILogWriter(256)
	logger := log.New(io.MultiWriter(fileLog, uiLog), "", log.Ltime|log.Lmicroseconds)
	logger.Printf("Starting rep coach: %dx%d, debounce %v (%s)",
		cfg.Session.TotalSeries, cfg.Session.TotalReps, cfg.DebounceWindow(), cfg.DebounceStrategy())

	clk := clock.New()
	model := trainer.NewUIModel(logger, uiLog.Lines())

	confirm := input.NewButton(string(trainer.ButtonConfirm), cfg.DebounceWindow(), cfg.DebounceStrategy(), clk)
	count := input.NewButton(string(trainer.ButtonCount), cfg.DebounceWindow(), cfg.DebounceStrategy(), clk)
	led := indicator.New(model, clk, cfg.BlinkPeriod(), logger)

	sess := session.New(session.NewSessionArg{
		Config:  cfg.SessionConfig(),
		Display: model,
		Confirm: confirm,
		Count:   count,
		Clock:   clk,
		Logger:  logger,
	})
	sess.OnReport(model.AddReport)

	if cfg.Report.Journal != "" {
		journal := trainer.NewReportJournal(cfg.Report.Journal, logger)
		previous, err := journal.Load()
		if err != nil {
			logger.Printf("ReportJournal: %v", err)
		}
		logger.Printf("ReportJournal: %d earlier sessions in %s", len(previous), journal.Path())
		sess.OnReport(journal.Hook)
	}

	driver := session.NewDriver(session.NewDriverArg{
		Session:   sess,
		Indicator: led,
		Clock:     clk,
		Interval:  cfg.CycleInterval(),
		Logger:    logger,
	})
	model.FollowDriver(driver)

	controller := trainer.NewUIController(trainer.NewUIControllerArg{
		Model:   model,
		Confirm: confirm,
		Count:   count,
		Logger:  logger,
	})

	var peripheral *ble.ReportPeripheral
	if cfg.BLE.Enabled {
		peripheral = startPeripheral(cfg.BLE.Name, controller, logger)
		if peripheral != nil {
			sess.OnReport(peripheral.Hook)
		}
	}

	app := tview.NewApplication()
	view := trainer.NewCursesUIView(logger, app)
	base := trainer.NewBaseUIView(trainer.NewBaseUIViewArg{
		UIViewImpl:   view,
		UIModel:      model,
		UIController: controller,
		Logger:       logger,
	})

	driver.Start()
	runErr := base.Run()

	// Stop the producers first, then the views that consume them
	driver.Shutdown()
	if peripheral != nil {
		if err := peripheral.Stop(); err != nil {
			logger.Printf("ReportPeripheral: %v", err)
		}
	}
	controller.Shutdown()
	base.Shutdown()
	model.Shutdown()
	uiLog.Close()

	must("run UI", runErr)
}

// startPeripheral brings up the BLE report service. BLE is optional, so a
// failure only disables it.
func startPeripheral(name string, controller *trainer.UIController, logger *log.Logger) *ble.ReportPeripheral {
	peripheral := ble.NewReportPeripheral(ble.NewReportPeripheralArg{
		Radio:     ble.DefaultRadio(),
		LocalName: name,
		Logger:    logger,
	})
	if err := peripheral.Start(); err != nil {
		logger.Printf("ReportPeripheral: BLE disabled: %v", err)
		return nil
	}
	peripheral.ListenToRemoteButtons(func(b ble.RemoteButton) {
		switch b {
		case ble.RemoteConfirm:
			controller.PressButton(trainer.ButtonConfirm)
		case ble.RemoteCount:
			controller.PressButton(trainer.ButtonCount)
		}
	})
	return peripheral
}

func must(action string, err error) {
	if err != nil {
		panic("failed to " + action + ": " + err.Error())
	}
}
