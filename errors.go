package xsail

import (
	"errors"
	"fmt"
)

type ErrUnknownTransport struct{ name string }

func (e ErrUnknownTransport) Error() string { return fmt.Sprintf("unknown transport: %s", e.name) }

var (
	// ErrShortBuffer is returned by Decode when the header cannot be read.
	ErrShortBuffer = errors.New("xsail: buffer shorter than message header")
	// ErrUnknownMessageType is returned by Decode when no decoder is registered for the tag.
	ErrUnknownMessageType = errors.New("xsail: unknown message type")

	ErrAlreadyRunning   = errors.New("xsail: bus already running")
	ErrRegisterAfterRun = errors.New("xsail: node registered after bus started")
	ErrDuplicateNodeID  = errors.New("xsail: node identity already registered")
	ErrNodeStarted      = errors.New("xsail: active node already started")
	ErrNilBus           = errors.New("xsail: nil bus")

	ErrObserverPoolShutdownTimeout = errors.New("xsail: observer pool shutdown timeout")
)

// HandlerPanicError wraps a value recovered from ProcessMessage.
type HandlerPanicError struct {
	Node  NodeID
	Value any
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("xsail: panic in %s: %v", e.Node, e.Value)
}
