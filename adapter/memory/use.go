package memory

import (
	"fmt"

	"github.com/trickstertwo/xsail"
	"github.com/trickstertwo/xsail/bridge"
)

// Use builds the in-memory transport through the registry and attaches a
// bridge to bus. Buses in one process sharing the returned transport see
// each other's traffic.
//
// Example:
//
//	tr, br := memory.Use(nil, busA, memory.Defaults(), bridge.WithTypes(xsail.MessageStateMessage))
//	_, brB := memory.Use(tr, busB, memory.Defaults(), bridge.WithTypes(xsail.MessageStateMessage))
//
// A nil shared transport creates a new one.
func Use(shared *Transport, bus bridge.Bus, cfg Config, opts ...bridge.Option) (*Transport, *bridge.Bridge) {
	tr := shared
	if tr == nil {
		t, err := xsail.NewTransport(TransportName, cfg.toMap())
		if err != nil {
			panic(fmt.Errorf("memory.Use: %w", err))
		}
		tr = t.(*Transport)
	}
	br, err := bridge.New(bus, tr, bridge.Defaults().Apply(opts...))
	if err != nil {
		panic(fmt.Errorf("memory.Use: %w", err))
	}
	return tr, br
}
