//go:build tinygo

// Firmware for the rep coach board: a Raspberry Pi Pico with two push buttons,
// an RGB LED and the display mirrored to the USB serial console.
package main

import (
	"fmt"
	"log"
	"machine"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/lowaak/smart-trainer/rep-coach/internal/indicator"
	"github.com/lowaak/smart-trainer/rep-coach/internal/input"
	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

const (
	confirmPin = machine.GPIO5
	countPin   = machine.GPIO6

	redPin   = machine.GPIO11
	greenPin = machine.GPIO12
	bluePin  = machine.GPIO13

	// How often edges latched by the interrupt handlers are delivered
	edgePollInterval = 5 * time.Millisecond
)

// pinLED drives a common-cathode RGB LED, one GPIO per channel
type pinLED struct {
	r, g, b machine.Pin
}

func newPinLED(r, g, b machine.Pin) *pinLED {
	for _, p := range []machine.Pin{r, g, b} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}
	return &pinLED{r: r, g: g, b: b}
}

func (l *pinLED) Drive(c indicator.Color) {
	l.r.Set(c.R > 0)
	l.g.Set(c.G > 0)
	l.b.Set(c.B > 0)
}

// serialDisplay prints a frame on the serial console whenever it changes
type serialDisplay struct {
	last [4]string
}

func (d *serialDisplay) Render(lines [4]string) {
	if lines == d.last {
		return
	}
	d.last = lines
	fmt.Printf("+---------------------+\n")
	for _, line := range lines {
		fmt.Printf("|%-21.21s|\n", line)
	}
	fmt.Printf("+---------------------+\n")
}

// edgeLatch counts falling edges seen by an interrupt handler. Interrupt
// handlers must not allocate or block, so they only bump the counter and a
// goroutine feeds the edges to the button.
type edgeLatch struct {
	edges  atomic.Uint32
	button *input.Button
}

func (l *edgeLatch) bind(pin machine.Pin) error {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return pin.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		l.edges.Add(1)
	})
}

func (l *edgeLatch) drain() {
	for n := l.edges.Swap(0); n > 0; n-- {
		l.button.OnEdge()
	}
}

func main() {
	// Let serial port stabilise.
	time.Sleep(time.Second)

	logger := log.New(machine.Serial, "", 0)
	logger.Println("rep coach: starting")

	defer func() {
		if r := recover(); r != nil {
			logger.Printf("flatline: %v", r)
			led := newPinLED(redPin, greenPin, bluePin)
			for {
				led.Drive(indicator.Red)
				time.Sleep(100 * time.Millisecond)
				led.Drive(indicator.Dark)
				time.Sleep(100 * time.Millisecond)
			}
		}
	}()

	clk := clock.New()
	confirm := &edgeLatch{button: input.NewButton("confirm", input.DefaultDebounce, input.DebounceRearm, clk)}
	count := &edgeLatch{button: input.NewButton("count", input.DefaultDebounce, input.DebounceRearm, clk)}
	must("bind confirm button", confirm.bind(confirmPin))
	must("bind count button", count.bind(countPin))

	sess := session.New(session.NewSessionArg{
		Config:  session.DefaultConfig(),
		Display: &serialDisplay{},
		Confirm: confirm.button,
		Count:   count.button,
		Clock:   clk,
		Logger:  logger,
	})
	sess.OnReport(func(r session.Report) {
		logger.Printf("report: session %d, %d series x %d reps, %d total",
			r.SessionNumber, r.SeriesCompleted, r.RepsPerSeries, r.TotalReps)
	})

	driver := session.NewDriver(session.NewDriverArg{
		Session:   sess,
		Indicator: indicator.New(newPinLED(redPin, greenPin, bluePin), clk, indicator.DefaultBlinkPeriod, logger),
		Clock:     clk,
		Logger:    logger,
	})
	driver.Start()

	for {
		confirm.drain()
		count.drain()
		time.Sleep(edgePollInterval)
	}
}

func must(action string, err error) {
	if err != nil {
		panic("failed to " + action + ": " + err.Error())
	}
}
