package trainer

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/smart-trainer/rep-coach/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/rep-coach/internal/input"
	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

// UIController turns key presses into button edges and keeps the model's
// button counters current
type UIController struct {
	model   *UIModel
	buttons map[ButtonID]*input.Button
	logger  *log.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// In-flight edges; closed stops new ones once Shutdown begins
	edgeMu sync.Mutex
	edgeWg sync.WaitGroup
	closed bool
}

// NewUIControllerArg holds the arguments for creating a new UIController
type NewUIControllerArg struct {
	Model   *UIModel
	Confirm *input.Button
	Count   *input.Button
	Logger  *log.Logger
}

// NewUIController creates a new UIController with the given dependencies
func NewUIController(args NewUIControllerArg) *UIController {
	if args.Model == nil {
		panic("UIController: model cannot be nil")
	}
	if args.Confirm == nil {
		panic("UIController: confirm button cannot be nil")
	}
	if args.Count == nil {
		panic("UIController: count button cannot be nil")
	}
	if args.Logger == nil {
		panic("UIController: logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &UIController{
		model: args.Model,
		buttons: map[ButtonID]*input.Button{
			ButtonConfirm: args.Confirm,
			ButtonCount:   args.Count,
		},
		logger: args.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
	c.publishButtonStats()

	c.wg.Add(1)
	go_func_utils.SafeGo(c.logger, func() { c.listenToSnapshots() })

	return c
}

// listenToSnapshots refreshes the counters once per cycle, since Take runs on
// the driver goroutine
func (c *UIController) listenToSnapshots() {
	defer c.wg.Done()

	ch := make(chan session.DriverSnapshot, 1)
	unregister := c.model.ListenToSnapshot(ch)
	defer unregister()

	for {
		select {
		case <-c.ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			c.publishButtonStats()
		}
	}
}

// PressButton raises one falling edge on a button. The edge is handled on its
// own goroutine, like an interrupt, so a busy-wait debounce never stalls the UI.
func (c *UIController) PressButton(id ButtonID) {
	button, ok := c.buttons[id]
	if !ok {
		c.logger.Printf("UIController: unknown button %q", id)
		return
	}

	c.edgeMu.Lock()
	if c.closed {
		c.edgeMu.Unlock()
		return
	}
	c.edgeWg.Add(1)
	c.edgeMu.Unlock()

	go_func_utils.SafeGoNamed(c.logger, "edge "+string(id), func() {
		defer c.edgeWg.Done()
		button.OnEdge()
		c.publishButtonStats()
	})
}

// OnEscapeKey handles when the Escape key is pressed
func (c *UIController) OnEscapeKey() {
	c.model.RequestCloseApplication()
}

func (c *UIController) publishButtonStats() {
	for id, button := range c.buttons {
		c.model.SetButtonStats(id, button.Stats())
	}
}

// Shutdown waits for in-flight edges and stops the re-arm timers
func (c *UIController) Shutdown() {
	c.cancel()
	c.wg.Wait()

	c.edgeMu.Lock()
	c.closed = true
	c.edgeMu.Unlock()
	c.edgeWg.Wait()
	for _, button := range c.buttons {
		button.Stop()
	}
	c.logger.Println("UIController: Shutdown complete")
}
