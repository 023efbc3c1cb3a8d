package xsail

import (
	"context"
	"sync"
)

// messageQueue is an unbounded FIFO shared by producers and the dispatcher.
// The mutex is held only for an append or a pop; wake carries at most one
// pending signal so a blocked pop never misses a push.
type messageQueue struct {
	mu    sync.Mutex
	items []Message
	head  int
	wake  chan struct{}
}

func newMessageQueue() *messageQueue {
	return &messageQueue{wake: make(chan struct{}, 1)}
}

func (q *messageQueue) push(m Message) {
	q.mu.Lock()
	q.items = append(q.items, m)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// tryPop removes the oldest message without blocking.
func (q *messageQueue) tryPop() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head == len(q.items) {
		return nil, false
	}
	m := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= 1024 && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return m, true
}

// pop blocks until a message is available or ctx is done.
func (q *messageQueue) pop(ctx context.Context) (Message, error) {
	for {
		if m, ok := q.tryPop(); ok {
			return m, nil
		}
		select {
		case <-q.wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *messageQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// SendMessage enqueues msg for dispatch. It is safe from any goroutine,
// including ProcessMessage and active node loops, and may be called before
// Run; messages sent early are delivered once the bus starts. A nil message
// is ignored.
//
// The producer only holds short locks. MessageSent events are raised
// through the observer pool and are not emitted on a bus without one.
func (b *MessageBus) SendMessage(msg Message) {
	if msg == nil {
		return
	}
	b.metrics.sent.Add(1)
	b.queue.push(msg)
	if b.observerPool == nil {
		return
	}
	b.observerPool.Notify(Event{
		Type:        MessageSent,
		MessageType: msg.Type(),
		Source:      msg.Source(),
		Destination: msg.Destination(),
	}, b.currentObservers())
}
