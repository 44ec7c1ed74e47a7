package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrQueueFull is returned when the async publisher has no room for another event.
var ErrQueueFull = errors.New("mqtt: publish queue full")

// AsyncPublisher queues events and hands them to the wrapped publisher from a
// single goroutine, so callers never wait on the broker. Each delivery gets
// its own timeout, detached from the caller's context.
type AsyncPublisher struct {
	next    Publisher
	timeout time.Duration
	queue   chan Event
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsync starts the delivery goroutine. size bounds the number of queued events.
func NewAsync(next Publisher, size int, timeout time.Duration) *AsyncPublisher {
	if size < 1 {
		size = 1
	}
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	p := &AsyncPublisher{
		next:    next,
		timeout: timeout,
		queue:   make(chan Event, size),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for ev := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.next.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).Str("entity", ev.Entity).Str("action", ev.Action).Int64("id", ev.ID).
				Msg("failed to publish event")
		}
		cancel()
	}
}

// Publish enqueues the event without blocking. The context is ignored.
func (p *AsyncPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrNotConnected
	}
	select {
	case p.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close delivers whatever is still queued, then closes the wrapped publisher.
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.next.Close()
}
