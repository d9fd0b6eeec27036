package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/pacgrid/internal/model"
	"github.com/freeeve/pacgrid/internal/repository"
)

// recordTimeout bounds a single database write.
const recordTimeout = 2 * time.Second

// Telemetry fans processed ticks out to spectators and the decision store on
// its own goroutine. Publish never blocks: when the queue is full the record
// is dropped, so a slow sidecar cannot delay game output.
type Telemetry struct {
	queue       chan *model.TickRecord
	broadcaster Broadcaster
	recorder    repository.DecisionRepository

	dropped   atomic.Int64
	processed atomic.Int64
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewTelemetry creates a Telemetry with a queue of the given size. A nil
// recorder disables storage.
func NewTelemetry(size int, b Broadcaster, recorder repository.DecisionRepository) *Telemetry {
	if b == nil {
		b = NoopBroadcaster{}
	}
	return &Telemetry{
		queue:       make(chan *model.TickRecord, size),
		broadcaster: b,
		recorder:    recorder,
	}
}

// Start begins draining the queue until Close is called or ctx is cancelled.
func (t *Telemetry) Start(ctx context.Context) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.run(ctx)
	}()
}

func (t *Telemetry) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-t.queue:
			if !ok {
				return
			}
			t.handle(ctx, rec)
		}
	}
}

func (t *Telemetry) handle(ctx context.Context, rec *model.TickRecord) {
	t.broadcaster.BroadcastTick(rec)
	if t.recorder != nil {
		wctx, cancel := context.WithTimeout(ctx, recordTimeout)
		if err := t.recorder.RecordTick(wctx, rec); err != nil {
			log.Warn().Err(err).Str("matchId", rec.MatchID).Int("tick", rec.Tick).Msg("Failed to record tick")
		}
		cancel()
	}
	t.processed.Add(1)
}

// Publish queues rec, reporting false if it was dropped.
func (t *Telemetry) Publish(rec *model.TickRecord) bool {
	select {
	case t.queue <- rec:
		return true
	default:
		n := t.dropped.Add(1)
		log.Warn().Int("tick", rec.Tick).Int64("dropped", n).Msg("Dropping tick telemetry, queue full")
		return false
	}
}

// Close stops accepting records and waits for queued ones to drain.
// Publish must not be called after Close.
func (t *Telemetry) Close() {
	t.closeOnce.Do(func() { close(t.queue) })
	t.wg.Wait()
}

// Dropped returns the number of records discarded because the queue was full.
func (t *Telemetry) Dropped() int64 { return t.dropped.Load() }

// Processed returns the number of records delivered.
func (t *Telemetry) Processed() int64 { return t.processed.Load() }
