// Package bridge relays messages between buses in different processes over
// an xsail.Transport.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/trickstertwo/xlog"

	"github.com/trickstertwo/xsail"
)

// Bus is the part of a MessageBus the bridge needs.
type Bus interface {
	xsail.Sender
	RegisterNode(node xsail.Node, types ...xsail.MessageType)
}

// Stats counts bridge traffic.
type Stats struct {
	Sent          uint64 // frames published
	Received      uint64 // messages injected into the local bus
	Dropped       uint64 // outbound frames dropped on a full buffer
	Invalid       uint64 // inbound frames that did not decode to a valid message
	Echo          uint64 // injected messages not relayed back out
	Self          uint64 // inbound frames carrying our own origin
	PublishErrors uint64
	Pending       int // injected messages still expected back from the bus
}

// Bridge is an active node that publishes the messages it receives and
// injects frames from other buses into its own.
type Bridge struct {
	*xsail.ActiveNode

	bus    Bus
	tr     xsail.Transport
	cfg    Config
	logger *xlog.Logger
	out    chan []byte

	mu       sync.Mutex
	injected map[xsail.Message]struct{}
	sub      xsail.Subscription

	sent, received, dropped, invalid, echo, self, pubErrs atomic.Uint64
}

// New registers a bridge on bus for cfg.Types. It must be called before the
// bus runs.
func New(bus Bus, tr xsail.Transport, cfg Config) (*Bridge, error) {
	if bus == nil {
		return nil, xsail.ErrNilBus
	}
	if tr == nil {
		return nil, errors.New("bridge: nil transport")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		if env, ok := bus.(interface{ Logger() *xlog.Logger }); ok {
			logger = env.Logger()
		} else {
			logger = xlog.Default()
		}
	}
	b := &Bridge{
		ActiveNode: xsail.NewActiveNode(cfg.NodeID, bus),
		bus:        bus,
		tr:         tr,
		cfg:        cfg,
		logger:     logger.With(xlog.Str("bridge", cfg.Origin), xlog.Str("topic", cfg.Topic)),
		out:        make(chan []byte, cfg.Buffer),
		injected:   make(map[xsail.Message]struct{}),
	}
	bus.RegisterNode(b, cfg.Types...)
	return b, nil
}

// Origin is the identity stamped on published frames.
func (b *Bridge) Origin() string { return b.cfg.Origin }

// Transport returns the transport the bridge publishes to. Stop does not
// close it.
func (b *Bridge) Transport() xsail.Transport { return b.tr }

// ProcessMessage queues msg for publishing without blocking dispatch.
func (b *Bridge) ProcessMessage(msg xsail.Message) {
	if b.consumeInjected(msg) {
		b.echo.Add(1)
		return
	}
	select {
	case b.out <- xsail.Encode(msg):
	default:
		b.dropped.Add(1)
	}
}

// Start subscribes to the topic and starts the publishing loop.
func (b *Bridge) Start(ctx context.Context) error {
	sub, err := b.tr.Subscribe(ctx, b.cfg.Topic, b.cfg.Origin, b.handleFrame)
	if err != nil {
		return fmt.Errorf("bridge: subscribe %q: %w", b.cfg.Topic, err)
	}
	if err := b.RunLoopContext(ctx, b.publishLoop); err != nil {
		_ = sub.Close()
		return err
	}
	b.mu.Lock()
	b.sub = sub
	b.mu.Unlock()
	b.logger.Info().Msg("xsail: bridge started")
	return nil
}

// Stop ends the loop and the subscription and waits for both. Injected
// messages the bus never handed back are forgotten.
func (b *Bridge) Stop() {
	b.ActiveNode.Stop()
	_ = b.Wait()
	b.mu.Lock()
	sub := b.sub
	b.sub = nil
	b.mu.Unlock()
	if sub != nil {
		if err := sub.Close(); err != nil {
			b.logger.Warn().Err(err).Msg("xsail: bridge subscription close failed")
		}
	}
	b.mu.Lock()
	clear(b.injected)
	b.mu.Unlock()
}

func (b *Bridge) Stats() Stats {
	b.mu.Lock()
	pending := len(b.injected)
	b.mu.Unlock()
	return Stats{
		Sent:          b.sent.Load(),
		Received:      b.received.Load(),
		Dropped:       b.dropped.Load(),
		Invalid:       b.invalid.Load(),
		Echo:          b.echo.Load(),
		Self:          b.self.Load(),
		PublishErrors: b.pubErrs.Load(),
		Pending:       pending,
	}
}

func (b *Bridge) publishLoop(ctx context.Context) error {
	batch := make([]xsail.Frame, 0, b.cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-b.out:
			batch = append(batch[:0], xsail.Frame{Origin: b.cfg.Origin, Data: data})
		fill:
			for len(batch) < b.cfg.BatchSize {
				select {
				case data := <-b.out:
					batch = append(batch, xsail.Frame{Origin: b.cfg.Origin, Data: data})
				default:
					break fill
				}
			}
			if err := b.tr.Publish(ctx, b.cfg.Topic, batch...); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				b.pubErrs.Add(1)
				b.logger.Warn().Err(err).Float64("frames", float64(len(batch))).Msg("xsail: bridge publish failed")
				continue
			}
			b.sent.Add(uint64(len(batch)))
		}
	}
}

func (b *Bridge) handleFrame(_ context.Context, f xsail.Frame) error {
	if f.Origin == b.cfg.Origin {
		b.self.Add(1)
		return nil
	}
	msg, err := xsail.Decode(f.Data)
	if err != nil {
		b.invalid.Add(1)
		b.logger.Debug().Err(err).Str("origin", f.Origin).Msg("xsail: bridge dropped undecodable frame")
		return nil
	}
	if !msg.Valid() {
		b.invalid.Add(1)
		b.logger.Debug().Str("type", msg.Type().String()).Str("origin", f.Origin).Msg("xsail: bridge dropped invalid message")
		return nil
	}
	if b.willReceive(msg) {
		if !reflect.TypeOf(msg).Comparable() {
			b.invalid.Add(1)
			return nil
		}
		b.mu.Lock()
		b.injected[msg] = struct{}{}
		b.mu.Unlock()
	}
	b.received.Add(1)
	b.bus.SendMessage(msg)
	return nil
}

// willReceive reports whether the local bus will deliver msg back to us.
func (b *Bridge) willReceive(msg xsail.Message) bool {
	if dst := msg.Destination(); dst != xsail.NodeNone {
		return dst == b.cfg.NodeID
	}
	return slices.Contains(b.cfg.Types, msg.Type())
}

func (b *Bridge) consumeInjected(msg xsail.Message) bool {
	if !reflect.TypeOf(msg).Comparable() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.injected[msg]; ok {
		delete(b.injected, msg)
		return true
	}
	return false
}
