package transport

import (
	"time"

	"github.com/hongjun500/tcp-chat/internal/protocol"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultWriteTimeout = 100 * time.Millisecond
)

// Options configures transports (shared across TCP/WS where applicable)
type Options struct {
	PollInterval time.Duration // read deadline per decode attempt; bounds how long a reader waits before rechecking ctx
	WriteTimeout time.Duration // per-write deadline; a write that cannot finish in time drops the peer. 0 to disable
	MaxFrameSize int           // declared payload limit in bytes, default 1MB
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.WriteTimeout < 0 {
		o.WriteTimeout = 0
	}
	if o.MaxFrameSize <= 0 {
		o.MaxFrameSize = protocol.DefaultMaxFrameSize
	}
	return o
}
