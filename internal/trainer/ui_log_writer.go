package trainer

import (
	"sync"
	"sync/atomic"
)

// UILogWriter is an io.Writer that forwards every write to the UI log panel
// as one line. Writes never block: when the panel falls behind, lines are
// dropped and counted.
type UILogWriter struct {
	ch      chan string
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

func NewUILogWriter(buffer int) *UILogWriter {
	if buffer <= 0 {
		buffer = 1
	}
	return &UILogWriter{ch: make(chan string, buffer)}
}

// Lines returns the channel to hand to NewUIModel
func (w *UILogWriter) Lines() <-chan string { return w.ch }

// Write implements io.Writer
func (w *UILogWriter) Write(p []byte) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return len(p), nil
	}
	select {
	case w.ch <- string(p):
	default:
		w.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped returns how many lines were discarded
func (w *UILogWriter) Dropped() uint64 { return w.dropped.Load() }

// Close closes the line channel. Later writes are discarded.
func (w *UILogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.ch)
	}
	return nil
}
