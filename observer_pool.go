package xsail

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// queuedEvent pairs an event with the observer list current when it was
// raised, so observers added later never see older events.
type queuedEvent struct {
	event     Event
	observers []Observer
}

// ObserverPool hands bus events to observers on a fixed set of goroutines.
// Notify never waits: an event that finds the buffer full is dropped and
// counted.
type ObserverPool struct {
	queue   chan queuedEvent
	quit    chan struct{}
	stop    sync.Once
	done    sync.WaitGroup
	workers int

	closed    atomic.Bool
	dropped   atomic.Uint64
	processed atomic.Uint64
	panics    atomic.Uint64
}

// NewObserverPool starts workers goroutines reading from a buffer of
// bufferSize events. Non-positive arguments select 4 workers and 1000 slots.
// Cancelling ctx stops the workers like Close, after the buffer drains.
func NewObserverPool(ctx context.Context, workers, bufferSize int) *ObserverPool {
	if workers < 1 {
		workers = 4
	}
	if bufferSize < 1 {
		bufferSize = 1000
	}

	op := &ObserverPool{
		queue:   make(chan queuedEvent, bufferSize),
		quit:    make(chan struct{}),
		workers: workers,
	}
	op.done.Add(workers)
	for range workers {
		go op.run()
	}
	context.AfterFunc(ctx, op.shutdown)
	return op
}

// Notify queues e for observers.
func (op *ObserverPool) Notify(e Event, observers []Observer) {
	if len(observers) == 0 || op.closed.Load() {
		return
	}
	select {
	case op.queue <- queuedEvent{event: e, observers: observers}:
	default:
		op.dropped.Add(1)
	}
}

func (op *ObserverPool) shutdown() {
	op.stop.Do(func() {
		op.closed.Store(true)
		close(op.quit)
	})
}

func (op *ObserverPool) run() {
	defer op.done.Done()
	for {
		select {
		case qe := <-op.queue:
			op.deliver(qe)
		case <-op.quit:
			for {
				select {
				case qe := <-op.queue:
					op.deliver(qe)
				default:
					return
				}
			}
		}
	}
}

func (op *ObserverPool) deliver(qe queuedEvent) {
	for _, o := range qe.observers {
		if o != nil && callObserver(o, qe.event) {
			op.panics.Add(1)
		}
	}
	op.processed.Add(1)
}

// Close stops accepting events and waits for the buffered ones to be
// delivered. It returns ErrObserverPoolShutdownTimeout if that takes longer
// than timeout; the workers still finish in the background.
func (op *ObserverPool) Close(timeout time.Duration) error {
	op.shutdown()

	finished := make(chan struct{})
	go func() {
		op.done.Wait()
		close(finished)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-finished:
		return nil
	case <-t.C:
		return ErrObserverPoolShutdownTimeout
	}
}

func (op *ObserverPool) Stats() PoolStats {
	return PoolStats{
		Dropped:      op.dropped.Load(),
		Processed:    op.processed.Load(),
		Panics:       op.panics.Load(),
		ActiveEvents: len(op.queue),
		Workers:      op.workers,
		BufferSize:   cap(op.queue),
	}
}
