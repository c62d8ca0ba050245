// Package eventbus delivers committed domain events to in-process
// subscribers, such as the Kafka forwarder.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dispatch/internal/core/domain/model/job"
)

// Handler receives one event. Returned errors are reported to the publisher
// but do not stop delivery to other handlers.
type Handler func(ctx context.Context, event job.Event) error

// Bus implements ports.EventPublisher. Handlers run synchronously in
// subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	all      []Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers h for the named events, or for every event when no
// name is given.
//
// Example:
//
//	bus.Subscribe(forwarder.Handle)
//	bus.Subscribe(onDelivered, job.EventDelivered)
func (b *Bus) Subscribe(h Handler, names ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(names) == 0 {
		b.all = append(b.all, h)
		return
	}
	for _, name := range names {
		b.handlers[name] = append(b.handlers[name], h)
	}
}

// Publish hands each event to its handlers and joins their errors.
func (b *Bus) Publish(ctx context.Context, events ...job.Event) error {
	var errs []error
	for _, event := range events {
		for _, h := range b.handlersFor(event.EventName()) {
			if err := h(ctx, event); err != nil {
				errs = append(errs, fmt.Errorf("%s for job %s: %w", event.EventName(), event.JobID(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) handlersFor(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Handler, 0, len(b.all)+len(b.handlers[name]))
	out = append(out, b.all...)
	return append(out, b.handlers[name]...)
}
