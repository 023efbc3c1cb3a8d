package xsail

import (
	"fmt"
	"time"
)

// Config tunes a MessageBus.
type Config struct {
	// ObserverWorkers and ObserverBuffer size the async observer pool.
	// ObserverWorkers == 0 notifies observers synchronously.
	ObserverWorkers int
	ObserverBuffer  int

	// SlowHandlerThreshold warns about deliveries slower than this. 0 disables.
	SlowHandlerThreshold time.Duration

	// QueueHighWater marks the bus degraded when more messages are waiting.
	QueueHighWater int
}

// Defaults returns the configuration used by NewBusBuilder.
func Defaults() Config {
	return Config{
		ObserverWorkers:      0,
		ObserverBuffer:       1024,
		SlowHandlerThreshold: 50 * time.Millisecond,
		QueueHighWater:       10000,
	}
}

// Validate checks Config for obvious mistakes.
func (c Config) Validate() error {
	if c.ObserverWorkers < 0 {
		return fmt.Errorf("config: observer_workers must be >= 0, got %d", c.ObserverWorkers)
	}
	if c.ObserverWorkers > 0 && c.ObserverBuffer < 1 {
		return fmt.Errorf("config: observer_buffer must be >= 1 when observer_workers is set, got %d", c.ObserverBuffer)
	}
	if c.SlowHandlerThreshold < 0 {
		return fmt.Errorf("config: slow_handler_threshold must be >= 0, got %v", c.SlowHandlerThreshold)
	}
	if c.QueueHighWater < 1 {
		return fmt.Errorf("config: queue_high_water must be >= 1, got %d", c.QueueHighWater)
	}
	return nil
}

// ConfigFromMap reads a generic map (for example decoded from a file) over Defaults.
func ConfigFromMap(m map[string]any) Config {
	c := Defaults()
	if v, ok := m["observer_workers"].(int); ok && v >= 0 {
		c.ObserverWorkers = v
	}
	if v, ok := m["observer_buffer"].(int); ok && v > 0 {
		c.ObserverBuffer = v
	}
	switch v := m["slow_handler_threshold"].(type) {
	case time.Duration:
		c.SlowHandlerThreshold = v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			c.SlowHandlerThreshold = d
		}
	}
	if v, ok := m["queue_high_water"].(int); ok && v > 0 {
		c.QueueHighWater = v
	}
	return c
}
