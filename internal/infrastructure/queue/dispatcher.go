package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/codeplatform/auth-service/internal/core/domain"
	"github.com/codeplatform/auth-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher delivers audit events to a fixed set of workers off the request
// path, sharding by email so events for one account are recorded in order.
type Dispatcher struct {
	workers  []chan domain.AuditEvent
	recorder ports.AuditRecorder
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ports.AuditRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.AuditEvent, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its email. When that
// worker's buffer is full the event is dropped: the audit trail is best
// effort and must never block a signup or signin.
func (d *Dispatcher) Enqueue(event domain.AuditEvent) {
	select {
	case d.workers[d.shardIndex(event.Email)] <- event:
	default:
		d.log.Warn().
			Str("action", event.Action).
			Str("email", event.Email).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps an email deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.recorder.Record(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("email", event.Email).
					Int("worker_id", id).
					Msg("audit event delivery failed")
			}
		}
	}
}
