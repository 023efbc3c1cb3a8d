package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/trickstertwo/xsail"
)

const TransportName = "memory"

func init() {
	if err := xsail.RegisterTransport(TransportName, func(cfg map[string]any) (xsail.Transport, error) {
		c := ConfigFromMap(cfg)
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return NewTransport(c), nil
	}); err != nil {
		panic(fmt.Errorf("xsail/memory: failed to register transport: %w", err))
	}
}

// ErrClosed is returned by a closed transport.
var ErrClosed = errors.New("memory transport is closed")

// Config controls memory transport behavior.
type Config struct {
	// BufferSize is the per-group queue size (default: 1024). Publish blocks
	// while a group's queue is full.
	BufferSize int
}

func Defaults() Config {
	return Config{BufferSize: 1024}
}

func (c Config) Validate() error {
	if c.BufferSize < 1 {
		return fmt.Errorf("config: buffer_size must be >= 1, got %d", c.BufferSize)
	}
	return nil
}

func ConfigFromMap(cfg map[string]any) Config {
	c := Defaults()
	switch v := cfg["buffer_size"].(type) {
	case int:
		c.BufferSize = v
	case int64:
		c.BufferSize = int(v)
	case float64:
		c.BufferSize = int(v)
	}
	return c
}

// toMap converts Config to the generic map expected by the transport factory.
func (c Config) toMap() map[string]any {
	return map[string]any{
		"buffer_size": c.BufferSize,
	}
}

// Transport fans frames out to every group subscribed to a topic within one
// process. Each group has a single worker, so frames reach a group in
// publish order.
type Transport struct {
	cfg Config

	mu     sync.RWMutex
	topics map[string]*topic

	closed atomic.Bool

	published atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
}

var _ xsail.Transport = (*Transport)(nil)

func NewTransport(cfg Config) *Transport {
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1024
	}
	return &Transport{cfg: cfg, topics: make(map[string]*topic)}
}

// Publish fans out frames to all groups of the topic. Frames published to a
// topic without subscribers are discarded.
func (t *Transport) Publish(ctx context.Context, name string, frames ...xsail.Frame) error {
	if t.closed.Load() {
		return ErrClosed
	}
	t.mu.RLock()
	top, ok := t.topics[name]
	t.mu.RUnlock()
	if !ok {
		return nil
	}

	top.mu.RLock()
	defer top.mu.RUnlock()
	for _, f := range frames {
		for _, g := range top.groups {
			select {
			case g.queue <- f:
			case <-g.done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		t.published.Add(1)
	}
	return nil
}

// Subscribe starts a worker for group on topic. A second subscription to the
// same group replaces the first.
func (t *Transport) Subscribe(ctx context.Context, name, group string, handler xsail.FrameHandler) (xsail.Subscription, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}
	if handler == nil {
		return nil, errors.New("memory: nil handler")
	}

	top := t.ensureTopic(name)
	g := &groupQueue{
		name:  group,
		queue: make(chan xsail.Frame, t.cfg.BufferSize),
		done:  make(chan struct{}),
	}
	top.mu.Lock()
	if old, ok := top.groups[group]; ok {
		old.stop()
	}
	top.groups[group] = g
	top.mu.Unlock()

	innerCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t.worker(innerCtx, g, handler)
	}()

	var once sync.Once
	return subscription(func() error {
		once.Do(func() {
			g.stop()
			top.mu.Lock()
			if top.groups[group] == g {
				delete(top.groups, group)
			}
			top.mu.Unlock()
			cancel()
			wg.Wait()
		})
		return nil
	}), nil
}

func (t *Transport) worker(ctx context.Context, g *groupQueue, handler xsail.FrameHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-g.done:
			return
		case f := <-g.queue:
			if err := handler(ctx, f); err != nil {
				t.failed.Add(1)
				continue
			}
			t.delivered.Add(1)
		}
	}
}

// Close drops all topics. Running workers stop.
func (t *Transport) Close(_ context.Context) error {
	if t.closed.Swap(true) {
		return nil
	}
	t.mu.Lock()
	for _, top := range t.topics {
		top.mu.Lock()
		for _, g := range top.groups {
			g.stop()
		}
		top.mu.Unlock()
	}
	t.topics = make(map[string]*topic)
	t.mu.Unlock()
	return nil
}

// Stats returns transport telemetry.
type Stats struct {
	Published uint64
	Delivered uint64
	Failed    uint64
}

func (t *Transport) Stats() Stats {
	return Stats{
		Published: t.published.Load(),
		Delivered: t.delivered.Load(),
		Failed:    t.failed.Load(),
	}
}

type subscription func() error

func (s subscription) Close() error { return s() }

type topic struct {
	mu     sync.RWMutex
	groups map[string]*groupQueue
}

type groupQueue struct {
	name     string
	queue    chan xsail.Frame
	done     chan struct{}
	stopOnce sync.Once
}

func (g *groupQueue) stop() { g.stopOnce.Do(func() { close(g.done) }) }

func (t *Transport) ensureTopic(name string) *topic {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tp, ok := t.topics[name]; ok {
		return tp
	}
	tp := &topic{groups: make(map[string]*groupQueue)}
	t.topics[name] = tp
	return tp
}
