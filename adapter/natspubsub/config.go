package natspubsub

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Config for the NATS transport.
type Config struct {
	// URL of the NATS server (default nats.DefaultURL).
	URL string
	// SubjectPrefix is prepended to topics: "<prefix>.<topic>".
	SubjectPrefix string
	// Name is the connection name reported to the server.
	Name string
	// Timeout bounds the initial dial.
	Timeout time.Duration
	// FlushTimeout bounds the flush after each Publish (0 disables).
	FlushTimeout time.Duration
	// MaxReconnects, -1 for unlimited.
	MaxReconnects int
}

func Defaults() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "xsail",
		Name:          "xsail",
		Timeout:       2 * time.Second,
		FlushTimeout:  time.Second,
		MaxReconnects: -1,
	}
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("config: url required")
	}
	if c.SubjectPrefix == "" {
		return fmt.Errorf("config: subject_prefix required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be > 0, got %v", c.Timeout)
	}
	if c.FlushTimeout < 0 {
		return fmt.Errorf("config: flush_timeout must be >= 0, got %v", c.FlushTimeout)
	}
	return nil
}

func (c Config) toMap() map[string]any {
	return map[string]any{
		"url":            c.URL,
		"subject_prefix": c.SubjectPrefix,
		"name":           c.Name,
		"timeout":        c.Timeout,
		"flush_timeout":  c.FlushTimeout,
		"max_reconnects": c.MaxReconnects,
	}
}

// ConfigFromMap converts a generic map to Config over Defaults.
func ConfigFromMap(m map[string]any) Config {
	c := Defaults()
	if v, ok := m["url"].(string); ok && v != "" {
		c.URL = v
	}
	if v, ok := m["subject_prefix"].(string); ok && v != "" {
		c.SubjectPrefix = v
	}
	if v, ok := m["name"].(string); ok {
		c.Name = v
	}
	if d, ok := duration(m["timeout"]); ok && d > 0 {
		c.Timeout = d
	}
	if d, ok := duration(m["flush_timeout"]); ok {
		c.FlushTimeout = d
	}
	if v, ok := m["max_reconnects"].(int); ok {
		c.MaxReconnects = v
	}
	return c
}

func duration(v any) (time.Duration, bool) {
	switch d := v.(type) {
	case time.Duration:
		return d, true
	case string:
		p, err := time.ParseDuration(d)
		return p, err == nil
	}
	return 0, false
}
