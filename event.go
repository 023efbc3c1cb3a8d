package xsail

import "time"

// EventType enumerates bus lifecycle events for the Observer pattern.
type EventType string

const (
	BusStarted           EventType = "bus_started"
	BusStopped           EventType = "bus_stopped"
	MessageSent          EventType = "message_sent"
	MessageDispatched    EventType = "message_dispatched"
	MessageUndeliverable EventType = "message_undeliverable"
	MessageUnrouted      EventType = "message_unrouted"
	HandlerFault         EventType = "handler_fault"
)

// Event carries telemetry for observers.
type Event struct {
	Type        EventType
	MessageType MessageType
	Source      NodeID
	Destination NodeID
	Node        NodeID // receiver, for HandlerFault
	Recipients  int    // deliveries made, for MessageDispatched
	Duration    time.Duration
	Err         error
}

// callObserver runs o.OnEvent and reports whether it panicked. Observer
// panics never reach the dispatch loop or a producer.
func callObserver(o Observer, e Event) (panicked bool) {
	defer func() {
		if recover() != nil {
			panicked = true
		}
	}()
	o.OnEvent(e)
	return false
}
