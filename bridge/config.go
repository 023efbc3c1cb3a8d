package bridge

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/trickstertwo/xlog"

	"github.com/trickstertwo/xsail"
)

// Config controls a Bridge.
type Config struct {
	// NodeID the bridge registers under (default NodeBridge).
	NodeID xsail.NodeID
	// Topic shared by all bridged buses (default "xsail").
	Topic string
	// Types relayed outbound. Messages addressed to NodeID are relayed too.
	Types []xsail.MessageType
	// Buffer is the outbound frame queue. Frames beyond it are dropped.
	Buffer int
	// BatchSize caps frames per Publish call.
	BatchSize int
	// Origin identifies this bridge in frames (default: random UUID).
	Origin string
	// Logger defaults to the bus logger.
	Logger *xlog.Logger
}

// Defaults returns a Config with a fresh origin.
func Defaults() Config {
	return Config{
		NodeID:    xsail.NodeBridge,
		Topic:     "xsail",
		Buffer:    1024,
		BatchSize: 64,
		Origin:    uuid.NewString(),
	}
}

// Validate checks Config.
func (c Config) Validate() error {
	if c.NodeID == xsail.NodeNone {
		return fmt.Errorf("config: node_id must not be None")
	}
	if c.Topic == "" {
		return fmt.Errorf("config: topic required")
	}
	if c.Buffer < 1 {
		return fmt.Errorf("config: buffer must be >= 1, got %d", c.Buffer)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("config: batch_size must be >= 1, got %d", c.BatchSize)
	}
	if c.Origin == "" {
		return fmt.Errorf("config: origin required")
	}
	return nil
}

// Option adjusts a Config.
type Option func(*Config)

func WithTopic(topic string) Option { return func(c *Config) { c.Topic = topic } }

func WithTypes(types ...xsail.MessageType) Option {
	return func(c *Config) { c.Types = append(c.Types, types...) }
}

func WithNodeID(id xsail.NodeID) Option { return func(c *Config) { c.NodeID = id } }

func WithBuffer(n int) Option { return func(c *Config) { c.Buffer = n } }

func WithOrigin(origin string) Option { return func(c *Config) { c.Origin = origin } }

func WithLogger(l *xlog.Logger) Option { return func(c *Config) { c.Logger = l } }

// Apply returns c with opts applied.
func (c Config) Apply(opts ...Option) Config {
	for _, o := range opts {
		if o != nil {
			o(&c)
		}
	}
	return c
}
