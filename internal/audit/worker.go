package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultBuffer = 256

// AsyncPublisher buffers events on a channel and drains them to the wrapped
// publisher on a background goroutine, so domain logic never waits on sink
// latency. Emit drops the event when the buffer is full. Emit must not be
// called after Close.
type AsyncPublisher struct {
	next   Publisher
	events chan Event
	logger *slog.Logger
	done   chan struct{}
	once   sync.Once
}

func NewAsyncPublisher(next Publisher, buffer int, logger *slog.Logger) *AsyncPublisher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &AsyncPublisher{
		next:   next,
		events: make(chan Event, buffer),
		logger: logger,
		done:   make(chan struct{}),
	}
	go p.drain()
	return p
}

func (p *AsyncPublisher) Emit(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.events <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event",
			"action", event.Action,
			"subject", event.Subject,
		)
	}
	return nil
}

func (p *AsyncPublisher) drain() {
	defer close(p.done)
	for event := range p.events {
		if err := p.next.Emit(context.Background(), event); err != nil {
			p.logger.Warn("audit emit failed",
				"action", event.Action,
				"error", err.Error(),
			)
		}
	}
}

// Close flushes buffered events and stops the worker.
func (p *AsyncPublisher) Close() {
	p.once.Do(func() { close(p.events) })
	<-p.done
}
