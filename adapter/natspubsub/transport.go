package natspubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/trickstertwo/xsail"
)

// HeaderOrigin carries Frame.Origin on each NATS message.
const HeaderOrigin = "Xsail-Origin"

// ErrClosed is returned by a closed transport.
var ErrClosed = errors.New("natspubsub: transport is closed")

// Transport carries frames over core NATS subjects. Delivery is at most
// once: frames published while a subscriber is away are not replayed.
type Transport struct {
	cfg   Config
	nc    *nats.Conn
	owned bool

	closed atomic.Bool
	mu     sync.Mutex
	subs   map[*subscription]struct{}

	published     atomic.Uint64
	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
}

// Stats is a snapshot of transport counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	HandlerErrors uint64
}

// NewTransport dials cfg.URL.
func NewTransport(cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(cfg.MaxReconnects),
	)
	if err != nil {
		return nil, fmt.Errorf("natspubsub: connect %s: %w", cfg.URL, err)
	}
	t := NewTransportWithConn(nc, cfg)
	t.owned = true
	return t, nil
}

// NewTransportWithConn wraps an existing connection. Close leaves nc open.
func NewTransportWithConn(nc *nats.Conn, cfg Config) *Transport {
	return &Transport{cfg: cfg, nc: nc, subs: make(map[*subscription]struct{})}
}

func (t *Transport) subject(topic string) string { return t.cfg.SubjectPrefix + "." + topic }

// Publish sends each frame as one NATS message and flushes.
func (t *Transport) Publish(ctx context.Context, topic string, frames ...xsail.Frame) error {
	if t.closed.Load() {
		return ErrClosed
	}
	subject := t.subject(topic)
	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := &nats.Msg{
			Subject: subject,
			Data:    f.Data,
			Header:  nats.Header{},
		}
		msg.Header.Set(HeaderOrigin, f.Origin)
		if err := t.nc.PublishMsg(msg); err != nil {
			return fmt.Errorf("natspubsub: publish %q: %w", subject, err)
		}
		t.published.Add(1)
	}
	if t.cfg.FlushTimeout > 0 && len(frames) > 0 {
		fctx, cancel := context.WithTimeout(ctx, t.cfg.FlushTimeout)
		defer cancel()
		if err := t.nc.FlushWithContext(fctx); err != nil {
			return fmt.Errorf("natspubsub: flush: %w", err)
		}
	}
	return nil
}

type subscription struct {
	once sync.Once
	t    *Transport
	sub  *nats.Subscription
	stop func() bool
}

func (s *subscription) Close() error {
	s.stop()
	return s.close()
}

func (s *subscription) close() error {
	var err error
	s.once.Do(func() {
		s.t.mu.Lock()
		delete(s.t.subs, s)
		s.t.mu.Unlock()
		if uerr := s.sub.Unsubscribe(); uerr != nil && !errors.Is(uerr, nats.ErrConnectionClosed) && !errors.Is(uerr, nats.ErrBadSubscription) {
			err = uerr
		}
	})
	return err
}

// Subscribe delivers frames on topic to handler in arrival order. A
// non-empty group joins a NATS queue group: members of one group share the
// stream, distinct groups each see every frame.
func (t *Transport) Subscribe(ctx context.Context, topic, group string, handler xsail.FrameHandler) (xsail.Subscription, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}
	subject := t.subject(topic)
	cb := func(m *nats.Msg) {
		if ctx.Err() != nil {
			return
		}
		f := xsail.Frame{Origin: m.Header.Get(HeaderOrigin), Data: m.Data}
		if err := handler(ctx, f); err != nil {
			t.handlerErrors.Add(1)
			return
		}
		t.delivered.Add(1)
	}

	var (
		ns  *nats.Subscription
		err error
	)
	if group != "" {
		ns, err = t.nc.QueueSubscribe(subject, group, cb)
	} else {
		ns, err = t.nc.Subscribe(subject, cb)
	}
	if err != nil {
		return nil, fmt.Errorf("natspubsub: subscribe %q: %w", subject, err)
	}
	// Make the interest visible to the server before returning.
	if err := t.nc.Flush(); err != nil {
		_ = ns.Unsubscribe()
		return nil, fmt.Errorf("natspubsub: subscribe %q: %w", subject, err)
	}

	s := &subscription{t: t, sub: ns}
	s.stop = context.AfterFunc(ctx, func() { _ = s.close() })
	t.mu.Lock()
	t.subs[s] = struct{}{}
	t.mu.Unlock()
	return s, nil
}

func (t *Transport) Stats() Stats {
	return Stats{
		Published:     t.published.Load(),
		Delivered:     t.delivered.Load(),
		HandlerErrors: t.handlerErrors.Load(),
	}
}

// Close unsubscribes everything and closes the connection if the transport
// opened it.
func (t *Transport) Close(_ context.Context) error {
	if t.closed.Swap(true) {
		return nil
	}
	t.mu.Lock()
	subs := make([]*subscription, 0, len(t.subs))
	for s := range t.subs {
		subs = append(subs, s)
	}
	t.mu.Unlock()
	for _, s := range subs {
		_ = s.Close()
	}
	if t.owned {
		t.nc.Close()
	}
	return nil
}
