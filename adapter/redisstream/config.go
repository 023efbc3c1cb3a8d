package redisstream

import (
	"fmt"
	"os"
	"time"
)

// Config for the Redis Streams transport.
type Config struct {
	// Connection
	Addr          string
	Username      string
	Password      string
	DB            int
	TLS           bool
	TLSServerName string

	// StreamPrefix is prepended to topics to form stream keys.
	StreamPrefix string

	// Consumer
	Consumer   string
	BatchSize  int
	Block      time.Duration
	AutoCreate bool
	// DestroyGroupOnClose removes the per-instance consumer group when the
	// subscription closes.
	DestroyGroupOnClose bool

	// MaxLenApprox trims streams with XADD MAXLEN ~ (0 disables).
	MaxLenApprox int64
}

// Defaults returns a Config for a local Redis.
func Defaults() Config {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "xsail"
	}
	return Config{
		Addr:                "127.0.0.1:6379",
		StreamPrefix:        "xsail:",
		Consumer:            fmt.Sprintf("xsail-%s-%d", hostname, os.Getpid()),
		BatchSize:           128,
		Block:               2 * time.Second,
		AutoCreate:          true,
		DestroyGroupOnClose: true,
		MaxLenApprox:        100000,
	}
}

// Validate checks Config.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr required")
	}
	if c.Consumer == "" {
		return fmt.Errorf("config: consumer required")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("config: batch_size must be >= 1, got %d", c.BatchSize)
	}
	if c.Block <= 0 {
		return fmt.Errorf("config: block must be > 0, got %v", c.Block)
	}
	if c.MaxLenApprox < 0 {
		return fmt.Errorf("config: max_len_approx must be >= 0, got %d", c.MaxLenApprox)
	}
	return nil
}

// toMap converts Config to generic map for transport factory.
func (c Config) toMap() map[string]any {
	return map[string]any{
		"addr":                   c.Addr,
		"username":               c.Username,
		"password":               c.Password,
		"db":                     c.DB,
		"tls":                    c.TLS,
		"tls_server_name":        c.TLSServerName,
		"stream_prefix":          c.StreamPrefix,
		"consumer":               c.Consumer,
		"batch_size":             c.BatchSize,
		"block":                  c.Block,
		"auto_create":            c.AutoCreate,
		"destroy_group_on_close": c.DestroyGroupOnClose,
		"max_len_approx":         c.MaxLenApprox,
	}
}

// ConfigFromMap converts a generic map to Config over Defaults.
func ConfigFromMap(m map[string]any) Config {
	c := Defaults()

	if v, ok := m["addr"].(string); ok && v != "" {
		c.Addr = v
	}
	if v, ok := m["username"].(string); ok {
		c.Username = v
	}
	if v, ok := m["password"].(string); ok {
		c.Password = v
	}
	if v, ok := m["db"].(int); ok {
		c.DB = v
	}
	if v, ok := m["tls"].(bool); ok {
		c.TLS = v
	}
	if v, ok := m["tls_server_name"].(string); ok {
		c.TLSServerName = v
	}
	if v, ok := m["stream_prefix"].(string); ok {
		c.StreamPrefix = v
	}
	if v, ok := m["consumer"].(string); ok && v != "" {
		c.Consumer = v
	}
	if v, ok := m["batch_size"].(int); ok && v > 0 {
		c.BatchSize = v
	}
	switch v := m["block"].(type) {
	case time.Duration:
		if v > 0 {
			c.Block = v
		}
	case string:
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Block = d
		}
	}
	if v, ok := m["auto_create"].(bool); ok {
		c.AutoCreate = v
	}
	if v, ok := m["destroy_group_on_close"].(bool); ok {
		c.DestroyGroupOnClose = v
	}
	switch v := m["max_len_approx"].(type) {
	case int64:
		c.MaxLenApprox = v
	case int:
		c.MaxLenApprox = int64(v)
	}

	return c
}
