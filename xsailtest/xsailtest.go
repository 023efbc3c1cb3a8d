// Package xsailtest provides helpers for testing nodes and buses.
package xsailtest

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trickstertwo/xlog"
	"github.com/trickstertwo/xlog/adapter/zerolog"

	"github.com/trickstertwo/xsail"
)

// Recorder is a node that keeps every message it receives.
type Recorder struct {
	id xsail.NodeID

	mu   sync.Mutex
	msgs []xsail.Message
	hook func(xsail.Message)
}

func NewRecorder(id xsail.NodeID) *Recorder {
	return &Recorder{id: id}
}

// OnMessage installs fn to run inside ProcessMessage, after recording.
func (r *Recorder) OnMessage(fn func(xsail.Message)) *Recorder {
	r.mu.Lock()
	r.hook = fn
	r.mu.Unlock()
	return r
}

func (r *Recorder) NodeID() xsail.NodeID { return r.id }

func (r *Recorder) ProcessMessage(msg xsail.Message) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	hook := r.hook
	r.mu.Unlock()
	if hook != nil {
		hook(msg)
	}
}

// Messages returns a copy of the recorded messages in arrival order.
func (r *Recorder) Messages() []xsail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]xsail.Message(nil), r.msgs...)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

// Count returns how many messages of type t were received.
func (r *Recorder) Count(t xsail.MessageType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.Type() == t {
			n++
		}
	}
	return n
}

// WaitFor fails the test unless the recorder holds at least n messages
// within timeout.
func (r *Recorder) WaitFor(t testing.TB, n int, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool { return r.Len() >= n }, timeout, time.Millisecond,
		"node %s received %d of %d messages", r.id, r.Len(), n)
}

// Logger returns a debug-level logger that discards its output.
func Logger(t testing.TB) *xlog.Logger {
	t.Helper()
	return LoggerTo(io.Discard)
}

// LoggerTo returns a debug-level logger writing JSON lines to w.
func LoggerTo(w io.Writer) *xlog.Logger {
	return zerolog.Use(zerolog.Config{
		MinLevel: xlog.LevelDebug,
		Console:  false,
		Writer:   w,
	})
}

// NewBus builds a bus with a test logger.
func NewBus(t testing.TB, b *xsail.BusBuilder) *xsail.MessageBus {
	t.Helper()
	if b == nil {
		b = xsail.NewBusBuilder()
	}
	bus, err := b.WithLogger(Logger(t)).Build()
	require.NoError(t, err)
	return bus
}

// RunBus runs bus on a background goroutine until the test ends. It returns
// once the bus is dispatching.
func RunBus(t testing.TB, bus *xsail.MessageBus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- bus.Run(ctx) }()
	require.Eventually(t, bus.Running, time.Second, time.Millisecond)

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errc:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("bus.Run: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("bus.Run did not return after cancel")
		}
	})
}

// Drain waits until the bus has dispatched every message sent so far.
func Drain(t testing.TB, bus *xsail.MessageBus, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		m := bus.GetMetrics()
		return m.QueueDepth == 0 && m.Dispatched == m.Sent
	}, timeout, time.Millisecond)
}
