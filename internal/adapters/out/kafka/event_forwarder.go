// Package kafka forwards committed job events to a Kafka topic as JSON,
// keyed by job id so every job's events stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/observability"

	kafkago "github.com/segmentio/kafka-go"
)

const (
	DefaultTopic        = "dispatch.job-events"
	DefaultQueueSize    = 1024
	defaultWriteTimeout = 2 * time.Second
	defaultBatchTimeout = 10 * time.Millisecond
	maxBatch            = 100
)

var (
	// ErrForwarderQueueFull is returned by Handle when events arrive faster
	// than the broker accepts them. The event is dropped.
	ErrForwarderQueueFull = errors.New("kafka forwarder queue is full")
	// ErrForwarderClosed is returned by Handle after Close.
	ErrForwarderClosed = errors.New("kafka forwarder is closed")
)

// MessageWriter is the part of *kafkago.Writer the forwarder needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// EventMessage is the JSON value of a forwarded event. CourierID and the
// status pair are set only for the events that carry them.
type EventMessage struct {
	Type       string    `json:"type"`
	JobID      string    `json:"jobId"`
	CourierID  string    `json:"courierId,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventForwarder writes events to Kafka. Its Handle method is subscribed to
// the in-process event bus and only enqueues; a background goroutine writes
// batches, so a slow or unreachable broker never holds up a transition.
type EventForwarder struct {
	writer  MessageWriter
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan kafkago.Message
	done   chan struct{}
}

// NewWriter builds a writer for topic on brokers. The forwarder already
// batches, so the writer flushes almost immediately.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           defaultBatchTimeout,
		WriteTimeout:           defaultWriteTimeout,
		AllowAutoTopicCreation: true,
	}
}

// NewEventForwarder starts the background writer. A non-positive queueSize
// means DefaultQueueSize.
func NewEventForwarder(writer MessageWriter, queueSize int, logger *slog.Logger) *EventForwarder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	f := &EventForwarder{
		writer:  writer,
		timeout: defaultWriteTimeout,
		logger:  logger.With("component", "KafkaEventForwarder"),
		queue:   make(chan kafkago.Message, queueSize),
		done:    make(chan struct{}),
	}
	go f.run()
	return f
}

// Handle encodes the event and queues it without waiting for the broker.
func (f *EventForwarder) Handle(_ context.Context, event job.Event) error {
	value, err := json.Marshal(encode(event))
	if err != nil {
		return err
	}
	msg := kafkago.Message{
		Key:   []byte(event.JobID().String()),
		Value: value,
		Time:  event.OccurredAt(),
		Headers: []kafkago.Header{
			{Key: "event", Value: []byte(event.EventName())},
		},
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrForwarderClosed
	}
	select {
	case f.queue <- msg:
		return nil
	default:
		observability.EventForwardFailuresTotal.WithLabelValues("queue_full").Inc()
		return ErrForwarderQueueFull
	}
}

// Close stops accepting events, flushes the queue and closes the writer.
func (f *EventForwarder) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	close(f.queue)
	f.mu.Unlock()

	<-f.done
	return f.writer.Close()
}

func (f *EventForwarder) run() {
	defer close(f.done)
	for msg := range f.queue {
		batch := f.collect(msg)
		f.write(batch)
	}
}

// collect takes first plus whatever is already queued, up to maxBatch.
func (f *EventForwarder) collect(first kafkago.Message) []kafkago.Message {
	batch := []kafkago.Message{first}
	for len(batch) < maxBatch {
		select {
		case msg, ok := <-f.queue:
			if !ok {
				return batch
			}
			batch = append(batch, msg)
		default:
			return batch
		}
	}
	return batch
}

func (f *EventForwarder) write(batch []kafkago.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if err := f.writer.WriteMessages(ctx, batch...); err != nil {
		observability.EventForwardFailuresTotal.WithLabelValues("write").Add(float64(len(batch)))
		f.logger.Warn("failed to forward events", "count", len(batch), "error", err)
		return
	}
	observability.EventsForwardedTotal.Add(float64(len(batch)))
}

func encode(event job.Event) EventMessage {
	msg := EventMessage{
		Type:       event.EventName(),
		JobID:      event.JobID().String(),
		OccurredAt: event.OccurredAt().UTC(),
	}

	switch e := event.(type) {
	case job.StatusChanged:
		msg.From = e.From.String()
		msg.To = e.To.String()
	case job.AcceptedEvent:
		msg.CourierID = e.Courier.String()
	case job.DeliveredEvent:
		msg.CourierID = e.Courier.String()
	}

	return msg
}
