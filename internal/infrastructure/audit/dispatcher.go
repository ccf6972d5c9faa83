// Package audit delivers security events to the external monitoring
// collaborators. Delivery is asynchronous and must never fail or slow the
// operation that produced the event.
package audit

import (
	"context"
	"sync"

	"github.com/turtacn/authcore/internal/domain/models"
	"github.com/turtacn/authcore/internal/domain/service"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/logger"
)

// Sink receives audit events. Sinks are fed from a single dispatch goroutine
// and may block briefly; slow sinks delay other sinks, not callers.
type Sink interface {
	Write(ctx context.Context, event models.AuditEvent) error
	Name() string
	Close() error
}

// Dispatcher fans events out to its sinks through a bounded queue. When the
// queue is full, non-security events are dropped and counted; reuse-detection
// and family-revocation events block until enqueued.
type Dispatcher struct {
	sinks []Sink
	queue chan models.AuditEvent
	log   logger.Logger

	wg       sync.WaitGroup
	closed   chan struct{}
	dropped  int64
	droppedM sync.Mutex
}

// NewDispatcher starts the dispatch goroutine.
func NewDispatcher(sinks []Sink, queueSize int, log logger.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	d := &Dispatcher{
		sinks:  sinks,
		queue:  make(chan models.AuditEvent, queueSize),
		log:    log.WithComponent("audit"),
		closed: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

var _ service.AuditService = (*Dispatcher)(nil)

// Emit queues the event for delivery.
func (d *Dispatcher) Emit(ctx context.Context, event models.AuditEvent) {
	select {
	case <-d.closed:
		return
	default:
	}

	if isSecurityCritical(event.Type) {
		// Loss of these events would hide an active attack.
		select {
		case d.queue <- event:
		case <-d.closed:
		}
		return
	}

	select {
	case d.queue <- event:
	default:
		d.droppedM.Lock()
		d.dropped++
		n := d.dropped
		d.droppedM.Unlock()
		d.log.Warn(ctx, "audit queue full, event dropped",
			logger.String("event_type", string(event.Type)),
			logger.Int64("dropped_total", n),
		)
	}
}

// Dropped reports how many events were shed under backpressure.
func (d *Dispatcher) Dropped() int64 {
	d.droppedM.Lock()
	defer d.droppedM.Unlock()
	return d.dropped
}

// Close drains the queue and closes the sinks.
func (d *Dispatcher) Close() error {
	close(d.closed)
	d.wg.Wait()

	var firstErr error
	for _, sink := range d.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.closed:
			for {
				select {
				case event := <-d.queue:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(event models.AuditEvent) {
	ctx := context.Background()
	for _, sink := range d.sinks {
		if err := sink.Write(ctx, event); err != nil {
			d.log.Error(ctx, "audit sink write failed", err,
				logger.String("sink", sink.Name()),
				logger.String("event_type", string(event.Type)),
			)
		}
	}
}

func isSecurityCritical(eventType constants.AuditEventType) bool {
	switch eventType {
	case constants.EventTypeReuseDetected, constants.EventTypeFamilyRevoked:
		return true
	}
	return false
}
