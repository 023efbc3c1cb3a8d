package xsail

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"
	"github.com/trickstertwo/xlog"
)

var _ HealthChecker = (*MessageBus)(nil)

// MessageBus routes messages from producers to registered nodes. Nodes are
// registered first, then Run freezes the registry and dispatches queued
// messages one at a time on the calling goroutine.
type MessageBus struct {
	clock   xclock.Clock
	logger  *xlog.Logger
	cfg     Config
	deliver Deliver

	queue *messageQueue

	regMu sync.Mutex
	reg   registry

	running atomic.Bool
	stopped atomic.Bool

	observerPool *ObserverPool
	observersMu  sync.Mutex
	observers    []Observer // copy-on-write

	metrics busMetrics
}

// busMetrics uses lock-free atomics.
type busMetrics struct {
	sent          atomic.Uint64
	dispatched    atomic.Uint64
	deliveries    atomic.Uint64
	undeliverable atomic.Uint64
	unrouted      atomic.Uint64
	faults        atomic.Uint64
	obsPanics     atomic.Uint64
	registered    atomic.Int64
	dispatchNs    atomic.Int64
}

// NewMessageBus returns a bus with default configuration.
func NewMessageBus() *MessageBus {
	b, _ := NewBusBuilder().Build()
	return b
}

// RegisterNode adds node to the registry if it is not present and subscribes
// it to each of types. Calling it again with the same node only adds
// subscriptions. It panics with ErrRegisterAfterRun once Run has started and
// with ErrDuplicateNodeID when another node already holds the same identity.
func (b *MessageBus) RegisterNode(node Node, types ...MessageType) {
	if node == nil {
		return
	}
	if b.running.Load() {
		panic(ErrRegisterAfterRun)
	}
	b.regMu.Lock()
	defer b.regMu.Unlock()
	b.reg.add(node, types)
	b.metrics.registered.Store(int64(len(b.reg.nodes)))
}

// Running reports whether Run has been called.
func (b *MessageBus) Running() bool { return b.running.Load() }

// Run dispatches messages until ctx is done and returns ctx.Err(). With a
// context that is never cancelled it does not return. A second call returns
// ErrAlreadyRunning.
func (b *MessageBus) Run(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	b.regMu.Lock()
	rt := b.reg.freeze()
	n := len(b.reg.nodes)
	b.regMu.Unlock()

	dctx := InjectAll(ctx, NodeNone, b.logger, b.clock)
	b.logger.Info().Float64("nodes", float64(n)).Msg("xsail: message bus running")
	b.notify(Event{Type: BusStarted})

	defer func() {
		b.stopped.Store(true)
		b.notify(Event{Type: BusStopped})
		b.logger.Info().Msg("xsail: message bus stopped")
		b.closeObservers()
	}()

	for {
		msg, err := b.queue.pop(ctx)
		if err != nil {
			return err
		}
		b.dispatch(dctx, rt, msg)
	}
}

func (b *MessageBus) dispatch(ctx context.Context, rt routes, msg Message) {
	start := b.clock.Now()
	defer b.metrics.dispatched.Add(1)

	targets := rt.match(msg)
	if len(targets) == 0 {
		if msg.Destination() != NodeNone {
			b.metrics.undeliverable.Add(1)
			b.logger.Debug().
				Str("type", msg.Type().String()).
				Str("destination", msg.Destination().String()).
				Msg("xsail: destination not registered, message dropped")
			b.notify(eventFor(MessageUndeliverable, msg))
		} else {
			b.metrics.unrouted.Add(1)
			b.notify(eventFor(MessageUnrouted, msg))
		}
		return
	}

	for _, n := range targets {
		b.deliverTo(ctx, n, msg)
	}

	d := b.clock.Since(start)
	b.recordDispatchTime(d.Nanoseconds())
	e := eventFor(MessageDispatched, msg)
	e.Recipients = len(targets)
	e.Duration = d
	b.notify(e)
}

// deliverTo runs one delivery. A panic escaping the middleware chain is
// recovered here as well so the next node still receives the message.
func (b *MessageBus) deliverTo(ctx context.Context, n Node, msg Message) {
	b.metrics.deliveries.Add(1)
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &HandlerPanicError{Node: n.NodeID(), Value: r}
			}
		}()
		return b.deliver(ctx, n, msg)
	}()
	if err == nil {
		return
	}
	b.metrics.faults.Add(1)
	b.logger.Warn().
		Str("node", n.NodeID().String()).
		Str("type", msg.Type().String()).
		Err(err).
		Msg("xsail: message handler failed")
	e := eventFor(HandlerFault, msg)
	e.Node = n.NodeID()
	e.Err = err
	b.notify(e)
}

func eventFor(t EventType, msg Message) Event {
	return Event{
		Type:        t,
		MessageType: msg.Type(),
		Source:      msg.Source(),
		Destination: msg.Destination(),
	}
}

// GetMetrics returns a snapshot of the bus counters.
func (b *MessageBus) GetMetrics() Metrics {
	m := Metrics{
		Sent:              b.metrics.sent.Load(),
		Dispatched:        b.metrics.dispatched.Load(),
		Deliveries:        b.metrics.deliveries.Load(),
		Undeliverable:     b.metrics.undeliverable.Load(),
		Unrouted:          b.metrics.unrouted.Load(),
		HandlerFaults:     b.metrics.faults.Load(),
		QueueDepth:        b.queue.len(),
		Registered:        int(b.metrics.registered.Load()),
		AvgDispatchTimeMs: float64(b.metrics.dispatchNs.Load()) / 1e6,
	}
	m.ObserverPanics = b.metrics.obsPanics.Load()
	if b.observerPool != nil {
		ps := b.observerPool.Stats()
		m.EventsDropped = ps.Dropped
		m.ObserverPanics += ps.Panics
	}
	return m
}

// Health reports "unhealthy" when the bus is not dispatching, "degraded"
// when more than 5% of deliveries faulted or the queue is above its
// high-water mark, and "healthy" otherwise.
func (b *MessageBus) Health(ctx context.Context) HealthStatus {
	now := b.clock.Now()
	metrics := b.GetMetrics()
	switch {
	case !b.running.Load():
		return HealthStatus{Status: "unhealthy", Metrics: metrics, Timestamp: now, Message: "bus not running"}
	case b.stopped.Load():
		return HealthStatus{Status: "unhealthy", Metrics: metrics, Timestamp: now, Message: "bus stopped"}
	}

	status := "healthy"
	msg := ""
	if metrics.HandlerFaults > 0 && metrics.Deliveries > 0 {
		if float64(metrics.HandlerFaults)/float64(metrics.Deliveries) > 0.05 {
			status = "degraded"
			msg = "handler fault rate above 5%"
		}
	}
	if metrics.QueueDepth > b.cfg.QueueHighWater {
		status = "degraded"
		msg = "queue above high-water mark"
	}
	return HealthStatus{Status: status, Metrics: metrics, Timestamp: now, Message: msg}
}

// Close releases the observer pool. It is only needed when Run was never
// called; Run releases the pool itself when it returns.
func (b *MessageBus) Close() error {
	return b.closeObservers()
}

func (b *MessageBus) closeObservers() error {
	if b.observerPool == nil {
		return nil
	}
	if err := b.observerPool.Close(5 * time.Second); err != nil {
		b.logger.Warn().Err(err).Msg("xsail: observer pool shutdown timeout")
		return err
	}
	return nil
}

// AddObserver registers an observer (thread-safe).
func (b *MessageBus) AddObserver(obs Observer) {
	if obs == nil {
		return
	}
	b.observersMu.Lock()
	next := make([]Observer, 0, len(b.observers)+1)
	next = append(next, b.observers...)
	b.observers = append(next, obs)
	b.observersMu.Unlock()
}

// RemoveObserver removes an observer.
func (b *MessageBus) RemoveObserver(obs Observer) {
	if obs == nil {
		return
	}
	b.observersMu.Lock()
	defer b.observersMu.Unlock()
	i := slices.IndexFunc(b.observers, func(o Observer) bool { return sameObserver(o, obs) })
	if i >= 0 {
		b.observers = slices.Delete(slices.Clone(b.observers), i, i+1)
	}
}

// sameObserver compares observers without panicking on uncomparable
// implementations such as ObserverFunc.
func sameObserver(a, b Observer) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// notify hands e to the observer pool, or calls observers inline when the
// bus was built without one.
func (b *MessageBus) notify(e Event) {
	obs := b.currentObservers()
	if len(obs) == 0 {
		return
	}
	if b.observerPool != nil {
		b.observerPool.Notify(e, obs)
		return
	}
	for _, o := range obs {
		if callObserver(o, e) {
			b.metrics.obsPanics.Add(1)
		}
	}
}

func (b *MessageBus) currentObservers() []Observer {
	b.observersMu.Lock()
	defer b.observersMu.Unlock()
	return b.observers
}

// recordDispatchTime keeps an exponential moving average of dispatch latency.
func (b *MessageBus) recordDispatchTime(ns int64) {
	const alpha = 0.2
	current := b.metrics.dispatchNs.Load()
	if current == 0 {
		b.metrics.dispatchNs.Store(ns)
		return
	}
	b.metrics.dispatchNs.Store(int64(float64(ns)*alpha + float64(current)*(1-alpha)))
}
