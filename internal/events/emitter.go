package events

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const emitterQueueSize = 256

// Emitter publishes in the background from a single worker, so events reach
// the publisher in the order they were emitted. A failed publish is logged
// and never surfaces to the request that produced the event.
type Emitter struct {
	publisher Publisher
	timeout   time.Duration
	log       logrus.FieldLogger

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

func NewEmitter(publisher Publisher, log logrus.FieldLogger) *Emitter {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &Emitter{
		publisher: publisher,
		timeout:   5 * time.Second,
		log:       log,
		queue:     make(chan Event, emitterQueueSize),
		done:      make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Emitter) run() {
	defer close(e.done)
	for event := range e.queue {
		e.publish(event)
	}
}

func (e *Emitter) publish(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	if err := e.publisher.Publish(ctx, event); err != nil {
		e.log.WithFields(logrus.Fields{
			"event_type":   event.Type,
			"aggregate_id": event.AggregateID,
			"error":        err.Error(),
		}).Warn("Failed to publish domain event")
	}
}

// Emit queues events behind every earlier one. It blocks while the queue is
// full. Events emitted after Close are dropped with a warning.
func (e *Emitter) Emit(events ...Event) {
	if e == nil {
		return
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		for _, event := range events {
			e.log.WithFields(logrus.Fields{
				"event_type":   event.Type,
				"aggregate_id": event.AggregateID,
			}).Warn("Emitter closed, dropping domain event")
		}
		return
	}
	for _, event := range events {
		e.queue <- event
	}
}

// Close drains queued events and then closes the publisher.
func (e *Emitter) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	<-e.done
	return e.publisher.Close()
}
