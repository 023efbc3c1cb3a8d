package redisstream

import (
	"fmt"

	"github.com/trickstertwo/xsail"
	"github.com/trickstertwo/xsail/bridge"
)

const TransportName = "redis-streams"

func init() {
	if err := xsail.RegisterTransport(TransportName, func(cfg map[string]any) (xsail.Transport, error) {
		return NewTransport(ConfigFromMap(cfg))
	}); err != nil {
		panic(fmt.Errorf("xsail: failed to register transport %q: %w", TransportName, err))
	}
}

// Use connects to Redis through the transport registry and attaches a
// bridge to bus. It panics if Redis is unreachable or the config is invalid.
func Use(bus bridge.Bus, cfg Config, opts ...bridge.Option) *bridge.Bridge {
	tr, err := xsail.NewTransport(TransportName, cfg.toMap())
	if err != nil {
		panic(fmt.Errorf("redisstream.Use: %w", err))
	}
	br, err := bridge.New(bus, tr, bridge.Defaults().Apply(opts...))
	if err != nil {
		panic(fmt.Errorf("redisstream.Use: %w", err))
	}
	return br
}
