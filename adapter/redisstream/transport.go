package redisstream

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trickstertwo/xsail"
)

// ErrClosed is returned by a closed transport.
var ErrClosed = errors.New("redisstream: transport is closed")

type transport struct {
	cfg    Config
	client *redis.Client

	closed atomic.Bool

	mu   sync.Mutex
	subs map[*subscription]struct{}

	metrics *transportMetrics
}

// transportMetrics tracks performance telemetry
type transportMetrics struct {
	published     atomic.Uint64
	consumed      atomic.Uint64
	acked         atomic.Uint64
	handlerErrors atomic.Uint64
	malformed     atomic.Uint64
	publishErrors atomic.Uint64
	consumeErrors atomic.Uint64
	ackErrors     atomic.Uint64
}

// Stats is a snapshot of transport counters.
type Stats struct {
	Published     uint64
	Consumed      uint64
	Acked         uint64
	HandlerErrors uint64
	Malformed     uint64
	PublishErrors uint64
	ConsumeErrors uint64
}

// NewTransport connects to Redis and verifies the connection with PING.
func NewTransport(cfg Config) (xsail.Transport, error) {
	return newTransport(cfg)
}

func newTransport(cfg Config) (*transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := &redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
	}

	if cfg.TLS {
		opts.TLSConfig = &tls.Config{
			MinVersion:    tls.VersionTLS12,
			ServerName:    cfg.TLSServerName,
			Renegotiation: tls.RenegotiateNever,
		}
	}

	client := redis.NewClient(opts)
	if err := ping(client); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &transport{
		cfg:     cfg,
		client:  client,
		subs:    make(map[*subscription]struct{}),
		metrics: &transportMetrics{},
	}, nil
}

func (t *transport) stream(topic string) string { return t.cfg.StreamPrefix + topic }

// Publish appends frames to the topic stream with pipelined XADD.
func (t *transport) Publish(ctx context.Context, topic string, frames ...xsail.Frame) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if len(frames) == 0 {
		return nil
	}

	pipe := t.client.Pipeline()
	stream := t.stream(topic)

	for _, f := range frames {
		args := &redis.XAddArgs{
			Stream: stream,
			ID:     "*",
			Values: encodeFrame(f),
		}
		// Approximate trimming to keep stream bounded
		if t.cfg.MaxLenApprox > 0 {
			args.MaxLen = t.cfg.MaxLenApprox
			args.Approx = true
		}
		pipe.XAdd(ctx, args)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		t.metrics.publishErrors.Add(uint64(len(frames)))
		return fmt.Errorf("redisstream: publish %q: %w", stream, err)
	}

	t.metrics.published.Add(uint64(len(frames)))
	return nil
}

type subscription struct {
	once  sync.Once
	close func() error
}

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() { err = s.close() })
	return err
}

// Subscribe reads the topic stream through consumer group group, which is
// created at the stream tail when AutoCreate is set. A single poller calls
// handler in stream order and acknowledges each entry once handler returns
// nil.
func (t *transport) Subscribe(ctx context.Context, topic, group string, handler xsail.FrameHandler) (xsail.Subscription, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}
	if group == "" {
		return nil, errors.New("redisstream: group required")
	}
	stream := t.stream(topic)

	if t.cfg.AutoCreate {
		if err := t.client.XGroupCreateMkStream(ctx, stream, group, "$").Err(); err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			return nil, fmt.Errorf("redisstream: create group %q on %q: %w", group, stream, err)
		}
	}

	innerCtx, cancel := context.WithCancel(ctx)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		t.pollerLoop(innerCtx, stream, group, handler)
	}()

	sub := &subscription{}
	sub.close = func() error {
		cancel()
		<-pollerDone
		t.mu.Lock()
		delete(t.subs, sub)
		t.mu.Unlock()
		if !t.cfg.DestroyGroupOnClose || t.closed.Load() {
			return nil
		}
		dctx, dcancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer dcancel()
		if err := t.client.XGroupDestroy(dctx, stream, group).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redisstream: destroy group %q: %w", group, err)
		}
		return nil
	}

	t.mu.Lock()
	t.subs[sub] = struct{}{}
	t.mu.Unlock()
	return sub, nil
}

// pollerLoop reads new entries for group and hands them to handler.
func (t *transport) pollerLoop(ctx context.Context, stream, group string, handler xsail.FrameHandler) {
	xArgs := &redis.XReadGroupArgs{
		Group:    group,
		Consumer: t.cfg.Consumer,
		Streams:  []string{stream, ">"},
		Count:    int64(t.cfg.BatchSize),
		Block:    t.cfg.Block,
	}

	backoff := 100 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		res, err := t.client.XReadGroup(ctx, xArgs).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			if errors.Is(err, redis.Nil) {
				// Block timeout (expected), continue polling
				backoff = 100 * time.Millisecond
				continue
			}

			t.metrics.consumeErrors.Add(1)
			timer := time.NewTimer(backoff)
			select {
			case <-timer.C:
				backoff = min(backoff*2, maxBackoff)
			case <-ctx.Done():
				timer.Stop()
				return
			}
			continue
		}

		backoff = 100 * time.Millisecond

		for _, s := range res {
			ids := make([]string, 0, len(s.Messages))
			for _, entry := range s.Messages {
				t.metrics.consumed.Add(1)
				f, err := decodeFrame(entry.Values)
				if err != nil {
					t.metrics.malformed.Add(1)
					ids = append(ids, entry.ID)
					continue
				}
				if err := handler(ctx, f); err != nil {
					t.metrics.handlerErrors.Add(1)
					continue
				}
				ids = append(ids, entry.ID)
			}
			t.ack(ctx, stream, group, ids)
		}
	}
}

// Stats returns a snapshot of the transport counters.
func (t *transport) Stats() Stats {
	return Stats{
		Published:     t.metrics.published.Load(),
		Consumed:      t.metrics.consumed.Load(),
		Acked:         t.metrics.acked.Load(),
		HandlerErrors: t.metrics.handlerErrors.Load(),
		Malformed:     t.metrics.malformed.Load(),
		PublishErrors: t.metrics.publishErrors.Load(),
		ConsumeErrors: t.metrics.consumeErrors.Load(),
	}
}

// Close stops open subscriptions and closes the client.
func (t *transport) Close(_ context.Context) error {
	t.mu.Lock()
	subs := make([]*subscription, 0, len(t.subs))
	for s := range t.subs {
		subs = append(subs, s)
	}
	t.mu.Unlock()
	for _, s := range subs {
		_ = s.Close()
	}

	if t.closed.Swap(true) {
		return nil
	}
	return t.client.Close()
}

func ping(c *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := c.Ping(ctx).Result()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("redis ping timeout: %w", err)
		}
		return err
	}

	if strings.ToUpper(res) != "PONG" {
		return fmt.Errorf("unexpected redis ping result: %s", res)
	}

	return nil
}
