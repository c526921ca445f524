package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/api/metrics"
	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher fans audit events out to a fixed set of workers using consistent
// hashing on the actor id, so one actor's events are always persisted in the
// order they were recorded. It implements ports.AuditRecorder; Record never
// blocks the request path: when a worker's buffer is full the event is
// dropped and counted, never waited on.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	store   ports.AuditStore
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ports.AuditStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// after flushing any events still buffered in their channels.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(len(d.workers))
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has exited. Call after cancelling the Start
// context to make sure buffered events reached the store.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues an event to the worker responsible for its actor.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	i := d.shardIndex(event.ActorID)
	select {
	case d.workers[i] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	default:
		metrics.AuditFailuresTotal.Inc()
		d.log.Warn().
			Str("actor_id", event.ActorID).
			Str("action", string(event.Action)).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps an actor id deterministically to a worker index.
func (d *Dispatcher) shardIndex(actorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actorID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.flush(id, ch)
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			d.persist(id, &event)
		}
	}
}

// flush persists whatever is still buffered after cancellation. Inserts run
// on a fresh context because the worker context is already done.
func (d *Dispatcher) flush(id int, ch <-chan domain.AuditEvent) {
	for {
		select {
		case event := <-ch:
			d.persist(id, &event)
		default:
			return
		}
	}
}

func (d *Dispatcher) persist(id int, event *domain.AuditEvent) {
	if err := d.store.Insert(context.Background(), event); err != nil {
		metrics.AuditFailuresTotal.Inc()
		d.log.Error().Err(err).
			Str("actor_id", event.ActorID).
			Int("worker_id", id).
			Msg("audit event persistence failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues(string(event.Action)).Inc()
}
