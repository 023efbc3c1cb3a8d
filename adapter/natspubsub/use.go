package natspubsub

import (
	"fmt"

	"github.com/trickstertwo/xsail"
	"github.com/trickstertwo/xsail/bridge"
)

const TransportName = "nats"

func init() {
	if err := xsail.RegisterTransport(TransportName, func(cfg map[string]any) (xsail.Transport, error) {
		return NewTransport(ConfigFromMap(cfg))
	}); err != nil {
		panic(fmt.Errorf("xsail: failed to register transport %q: %w", TransportName, err))
	}
}

// Use dials NATS through the transport registry and attaches a bridge to
// bus. It panics if the server is unreachable or the config is invalid.
func Use(bus bridge.Bus, cfg Config, opts ...bridge.Option) *bridge.Bridge {
	tr, err := xsail.NewTransport(TransportName, cfg.toMap())
	if err != nil {
		panic(fmt.Errorf("natspubsub.Use: %w", err))
	}
	br, err := bridge.New(bus, tr, bridge.Defaults().Apply(opts...))
	if err != nil {
		panic(fmt.Errorf("natspubsub.Use: %w", err))
	}
	return br
}
