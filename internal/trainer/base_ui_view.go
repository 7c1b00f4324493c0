package trainer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/rep-coach/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/rep-coach/internal/indicator"
	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

// BaseUIView contains the base logic shared by all UI implementations
type BaseUIView struct {
	uiViewImpl   UIViewImpl
	uiModel      *UIModel
	uiController *UIController
	context      context.Context
	cancelFunc   context.CancelFunc
	waitGroup    sync.WaitGroup
	logger       *log.Logger
}

// NewBaseUIViewArg holds the arguments for creating a new BaseUIView
type NewBaseUIViewArg struct {
	UIViewImpl   UIViewImpl
	UIModel      *UIModel
	UIController *UIController
	Logger       *log.Logger
}

// NewBaseUIView creates a new BaseUIView with the given implementation
func NewBaseUIView(args NewBaseUIViewArg) *BaseUIView {
	if args.Logger == nil {
		panic("BaseUIView: logger cannot be nil")
	}
	if args.UIViewImpl == nil {
		panic("BaseUIView: UIViewImpl cannot be nil")
	}
	if args.UIModel == nil {
		panic("BaseUIView: UIModel cannot be nil")
	}
	if args.UIController == nil {
		panic("BaseUIView: UIController cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())

	base := &BaseUIView{
		uiViewImpl:   args.UIViewImpl,
		uiModel:      args.UIModel,
		uiController: args.UIController,
		context:      ctx,
		cancelFunc:   cancel,
		logger:       args.Logger,
	}

	// Initialize framework-specific widgets
	args.UIViewImpl.Initialize(args.UIController)

	// Set up keyboard handlers
	args.UIViewImpl.SetupKeyboardHandlers(args.UIController)

	// Initial display from model state
	args.UIViewImpl.SetDisplay(fitDisplayLines(args.UIModel.GetDisplay()))
	args.UIViewImpl.SetLED(args.UIModel.GetLED())
	args.UIViewImpl.UpdateButtonStats(args.UIModel.GetButtonStats())

	// Set up periodic resize check and initial display
	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, func() { base.monitorLogResize() })
	base.updateLogDisplay()

	base.setupEventListeners()

	return base
}

// forward runs apply for every value published on a model event until the
// view shuts down, then redraws
func forward[T any](base *BaseUIView, listen func(chan T) func(), apply func(T)) {
	ch := make(chan T, 1)
	unregister := listen(ch)
	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, func() {
		defer base.waitGroup.Done()
		defer unregister()
		for {
			select {
			case <-base.context.Done():
				return
			case v, ok := <-ch:
				if !ok {
					return
				}
				apply(v)
				if err := base.uiViewImpl.Draw(); err != nil {
					base.logger.Printf("BaseUIView: Error drawing: %v", err)
				}
			}
		}
	})
}

func (base *BaseUIView) setupEventListeners() {
	// When a new log arrives, update the display to show the tail
	forward(base, base.uiModel.ListenToLog, func(string) {
		base.updateLogDisplay()
	})

	forward(base, base.uiModel.ListenToDisplay, func(lines DisplayLines) {
		base.uiViewImpl.SetDisplay(fitDisplayLines(lines))
	})

	forward(base, base.uiModel.ListenToLED, func(c indicator.Color) {
		base.uiViewImpl.SetLED(c)
	})

	forward(base, base.uiModel.ListenToSnapshot, func(snap session.DriverSnapshot) {
		base.uiViewImpl.UpdateSnapshot(snap)
	})

	forward(base, base.uiModel.ListenToButtonStats, func(stats ButtonStats) {
		base.uiViewImpl.UpdateButtonStats(stats)
	})

	forward(base, base.uiModel.ListenToReports, func(r session.Report) {
		base.uiViewImpl.AddReport(r)
	})

	// Listen to close application event from model
	closeChan := make(chan struct{}, 1)
	closeUnregister := base.uiModel.ListenToCloseApplication(closeChan)
	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, func() {
		defer base.waitGroup.Done()
		defer closeUnregister()
		select {
		case <-base.context.Done():
			return
		case _, ok := <-closeChan:
			if !ok {
				return
			}
			// Stop the UI implementation
			base.uiViewImpl.Stop()
		}
	})
}

func (base *BaseUIView) updateLogDisplay() {
	// Get the visible height of the log view
	height := base.uiViewImpl.GetLogViewHeight()
	if height <= 0 {
		return
	}

	// Get the tail of logs that fit in the visible area
	logLines := base.uiModel.GetLogTail(height)

	// Clear and update the log view
	base.uiViewImpl.ClearLogView()
	for _, line := range logLines {
		if err := base.uiViewImpl.WriteLogLine(line); err != nil {
			base.logger.Printf("BaseUIView: Error writing to log view: %v", err)
		}
	}
}

func (base *BaseUIView) monitorLogResize() {
	defer base.waitGroup.Done()
	var lastHeight int
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-base.context.Done():
			return
		case <-ticker.C:
			height := base.uiViewImpl.GetLogViewHeight()
			if height != lastHeight && height > 0 {
				lastHeight = height
				base.updateLogDisplay()
				if err := base.uiViewImpl.Draw(); err != nil {
					base.logger.Printf("BaseUIView: Error drawing: %v", err)
				}
			}
		}
	}
}

// Shutdown stops all goroutines and waits for them to finish
func (base *BaseUIView) Shutdown() {
	base.logger.Println("BaseUIView: Shutting down")
	base.cancelFunc()
	base.waitGroup.Wait()
	base.logger.Println("BaseUIView: Shutdown complete")
}

// Run starts the UI and blocks until it exits
func (base *BaseUIView) Run() error {
	return base.uiViewImpl.Run()
}

// fitDisplayLines cuts every line to the panel width, like the real display
// which has no wrapping
func fitDisplayLines(lines DisplayLines) DisplayLines {
	var out DisplayLines
	for i, line := range lines {
		r := []rune(line)
		if len(r) > displayWidth {
			r = r[:displayWidth]
		}
		out[i] = string(r)
	}
	return out
}
