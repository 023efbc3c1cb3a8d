package xsail

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Frame is a serialized message on its way between processes. Origin names
// the publishing bridge so it can ignore its own traffic.
type Frame struct {
	Origin string
	Data   []byte
}

// FrameHandler processes one inbound frame. A non-nil error leaves the frame
// unacknowledged on transports that support acknowledgement.
type FrameHandler func(ctx context.Context, f Frame) error

// Subscription represents an active subscription that can be closed.
type Subscription interface {
	Close() error
}

// Transport is the Strategy interface for carrying frames between buses.
type Transport interface {
	// Publish sends frames to a topic in order.
	Publish(ctx context.Context, topic string, frames ...Frame) error
	// Subscribe delivers frames on topic to handler from a background
	// goroutine until ctx ends or the subscription is closed. group names
	// the receiving instance; each group sees every frame.
	Subscribe(ctx context.Context, topic, group string, handler FrameHandler) (Subscription, error)
	// Close releases resources.
	Close(ctx context.Context) error
}

// TransportFactory constructs transports from a config blob.
type TransportFactory func(cfg map[string]any) (Transport, error)

var (
	transportRegistryMu sync.RWMutex
	transportRegistry   = map[string]TransportFactory{}
)

// RegisterTransport registers a backend adapter.
func RegisterTransport(name string, factory TransportFactory) error {
	if name == "" {
		return errors.New("transport name must not be empty")
	}
	if factory == nil {
		return errors.New("transport factory must not be nil")
	}
	transportRegistryMu.Lock()
	transportRegistry[name] = factory
	transportRegistryMu.Unlock()
	return nil
}

// NewTransport constructs a transport by name with config.
func NewTransport(name string, cfg map[string]any) (Transport, error) {
	transportRegistryMu.RLock()
	f, ok := transportRegistry[name]
	transportRegistryMu.RUnlock()
	if !ok {
		return nil, ErrUnknownTransport{name: name}
	}
	return f(cfg)
}

// Transports lists the registered transport names, sorted.
func Transports() []string {
	transportRegistryMu.RLock()
	defer transportRegistryMu.RUnlock()
	names := make([]string, 0, len(transportRegistry))
	for n := range transportRegistry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
