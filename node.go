package xsail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/trickstertwo/xclock"
	"github.com/trickstertwo/xlog"
)

// BaseNode carries the identity and bus reference shared by concrete nodes.
// Embed it and implement ProcessMessage.
type BaseNode struct {
	id  NodeID
	bus Sender
}

func NewBaseNode(id NodeID, bus Sender) BaseNode {
	return BaseNode{id: id, bus: bus}
}

func (n *BaseNode) NodeID() NodeID { return n.id }
func (n *BaseNode) Bus() Sender    { return n.bus }

// Send forwards msg to the bus, if any.
func (n *BaseNode) Send(msg Message) {
	if n.bus != nil {
		n.bus.SendMessage(msg)
	}
}

// Logger returns the bus logger.
func (b *MessageBus) Logger() *xlog.Logger { return b.logger }

// Clock returns the bus clock.
func (b *MessageBus) Clock() xclock.Clock { return b.clock }

type environment interface {
	Logger() *xlog.Logger
	Clock() xclock.Clock
}

// LoopFunc is the body of an active node. It returns when ctx is done or
// when the loop has nothing more to do.
type LoopFunc func(ctx context.Context) error

// ActiveNode is a node with its own goroutine. It still receives messages
// through ProcessMessage on the dispatch goroutine, so state shared with the
// loop must be guarded by the embedding type.
type ActiveNode struct {
	BaseNode

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

func NewActiveNode(id NodeID, bus Sender) *ActiveNode {
	return &ActiveNode{BaseNode: NewBaseNode(id, bus), done: make(chan struct{})}
}

// RunLoop starts fn on a new goroutine. It returns ErrNodeStarted if the
// node has already been started.
func (n *ActiveNode) RunLoop(fn LoopFunc) error {
	return n.RunLoopContext(context.Background(), fn)
}

// RunLoopContext is RunLoop with a parent context; cancelling it stops the loop.
func (n *ActiveNode) RunLoopContext(parent context.Context, fn LoopFunc) error {
	if fn == nil {
		return errors.New("xsail: nil loop func")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started {
		return fmt.Errorf("%w: %s", ErrNodeStarted, n.id)
	}
	if n.done == nil {
		n.done = make(chan struct{})
	}
	n.started = true

	logger, clock := xlog.Default(), xclock.Default()
	if env, ok := n.bus.(environment); ok {
		logger, clock = env.Logger(), env.Clock()
	}
	logger = logger.With(xlog.Str("node", n.id.String()))

	ctx, cancel := context.WithCancel(InjectAll(parent, n.id, logger, clock))
	n.cancel = cancel
	go n.run(ctx, fn, logger)
	return nil
}

func (n *ActiveNode) run(ctx context.Context, fn LoopFunc, logger *xlog.Logger) {
	defer close(n.done)
	defer n.cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("xsail: panic in %s loop: %v", n.id, r)
			}
		}()
		return fn(ctx)
	}()

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		logger.Debug().Msg("xsail: active node loop ended")
		err = nil
	default:
		logger.Error().Err(err).Msg("xsail: active node loop failed")
	}
	n.mu.Lock()
	n.err = err
	n.mu.Unlock()
}

// Stop asks the loop to end. It does not wait; use Wait or Done.
func (n *ActiveNode) Stop() {
	n.mu.Lock()
	cancel := n.cancel
	n.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed when the loop has returned.
func (n *ActiveNode) Done() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.done == nil {
		n.done = make(chan struct{})
	}
	return n.done
}

// Wait blocks until the loop returns and reports its error. Cancellation is
// not an error. Wait returns immediately for a node that was never started.
func (n *ActiveNode) Wait() error {
	n.mu.Lock()
	started, done := n.started, n.done
	n.mu.Unlock()
	if !started {
		return nil
	}
	<-done
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

// Running reports whether the loop goroutine is alive.
func (n *ActiveNode) Running() bool {
	n.mu.Lock()
	started, done := n.started, n.done
	n.mu.Unlock()
	if !started {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// StopAndWait stops the loop and waits for it to return.
func (n *ActiveNode) StopAndWait() error {
	n.Stop()
	return n.Wait()
}
