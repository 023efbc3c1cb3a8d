package xsail

import "context"

// Node is a participant on the bus. ProcessMessage runs on the dispatch
// goroutine; it must not block indefinitely and must not call RegisterNode.
// Implementations are pointer types: the bus keeps the reference it was given.
type Node interface {
	NodeID() NodeID
	ProcessMessage(msg Message)
}

// Initializer is implemented by nodes that need a setup step before the bus
// runs, such as opening a device.
type Initializer interface {
	Init() error
}

// Sender is the producer side of the bus.
type Sender interface {
	SendMessage(msg Message)
}

// Observer receives bus lifecycle events. Implementations should be non-blocking.
type Observer interface {
	OnEvent(e Event)
}

// HealthChecker provides health status for production monitoring.
type HealthChecker interface {
	Health(ctx context.Context) HealthStatus
}

// API represents the complete xsail bus surface.
type API interface {
	Sender
	HealthChecker
	RegisterNode(node Node, types ...MessageType)
	Run(ctx context.Context) error
	Running() bool
	GetMetrics() Metrics
	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
}

var _ API = (*MessageBus)(nil)
