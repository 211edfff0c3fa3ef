package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := validateAddr("tcp_addr", c.TCPAddr, true); err != nil {
		return err
	}
	if err := validateAddr("ws_addr", c.WSAddr, false); err != nil {
		return err
	}
	if err := validateAddr("http_addr", c.HTTPAddr, false); err != nil {
		return err
	}
	if c.InboxSize < 1 {
		return errors.New("inbox_size must be >= 1")
	}
	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be > 0")
	}
	if c.WriteTimeout < 0 {
		return errors.New("write_timeout must be >= 0")
	}
	if c.MaxFrameSize < 1 {
		return fmt.Errorf("max_frame_size must be >= 1, got %d", c.MaxFrameSize)
	}
	switch c.LogEncoding {
	case "json", "console":
	default:
		return fmt.Errorf("log_encoding must be json or console, got %q", c.LogEncoding)
	}
	return nil
}

func validateAddr(field, addr string, required bool) error {
	if addr == "" {
		if required {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}
