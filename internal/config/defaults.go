package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultTCPAddr      = "0.0.0.0:3000"
	DefaultInboxSize    = 256
	DefaultPollInterval = 100 * time.Millisecond
	DefaultWriteTimeout = 100 * time.Millisecond
	DefaultMaxFrameSize = 1 << 20
	DefaultLogLevel     = "info"
	DefaultLogEncoding  = "json"
)

func (c *Config) applyDefaults() {
	if c.TCPAddr == "" {
		c.TCPAddr = DefaultTCPAddr
	}
	if c.InboxSize == 0 {
		c.InboxSize = DefaultInboxSize
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.MaxFrameSize == 0 {
		c.MaxFrameSize = DefaultMaxFrameSize
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogEncoding == "" {
		c.LogEncoding = DefaultLogEncoding
	}
}
