package go_func_utils

import (
	"log"
	"runtime/debug"
)

// SafeGo runs fn on its own goroutine
func SafeGo(logger *log.Logger, fn func()) {
	SafeGoNamed(logger, "goroutine", fn)
}

// SafeGoNamed runs fn on its own goroutine, labelling any panic report with name.
// Edge handlers and blink ticks all run through here, so the label says which
// "interrupt" blew up.
func SafeGoNamed(logger *log.Logger, name string, fn func()) {
	// the curses UI swallows up errors to stdout, so capture the panic in our
	// logger before crashing out again...
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				panic(r)
			}
		}()
		fn()
	}()
}
