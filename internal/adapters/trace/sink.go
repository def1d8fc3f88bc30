// Package trace implements the diagnostic trace sink.
package trace

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.trai.ch/asmres/internal/core/ports"
)

var _ ports.TraceSink = (*Sink)(nil)

// Sink queues trace lines and hands them to an emit function from a single goroutine.
// Tracef never blocks on the consumer, and lines are emitted in the order they were traced.
// A disabled Sink drops lines without formatting them.
type Sink struct {
	emit    func(line string)
	enabled atomic.Bool

	mu      sync.Mutex
	queue   []string
	closed  bool
	wake    chan struct{}
	drained chan struct{}
}

// NewSink creates a disabled Sink that delivers lines to emit.
func NewSink(emit func(line string)) *Sink {
	s := &Sink{
		emit:    emit,
		wake:    make(chan struct{}, 1),
		drained: make(chan struct{}),
	}
	go s.run()
	return s
}

// SetEnabled turns tracing on or off.
func (s *Sink) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
}

// Enabled reports whether lines are currently recorded.
func (s *Sink) Enabled() bool {
	return s.enabled.Load()
}

// Tracef formats and queues a line.
func (s *Sink) Tracef(format string, args ...any) {
	if !s.enabled.Load() {
		return
	}
	line := fmt.Sprintf(format, args...)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, line)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	s.mu.Unlock()
}

// Close emits every queued line and stops the consumer.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.drained
		return nil
	}
	s.closed = true
	close(s.wake)
	s.mu.Unlock()

	<-s.drained
	return nil
}

func (s *Sink) run() {
	defer close(s.drained)

	for range s.wake {
		s.flush()
	}
	s.flush()
}

func (s *Sink) flush() {
	for {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		s.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, line := range batch {
			s.emit(line)
		}
	}
}
