package transport

import (
	"context"
	"errors"

	"github.com/hongjun500/tcp-chat/internal/chat"
	"github.com/hongjun500/tcp-chat/internal/observe"
	"github.com/hongjun500/tcp-chat/internal/protocol"
)

const (
	Tcp       = "tcp"
	WebSocket = "websocket"
)

// Gateway 接收传输层新建的会话，由 chat.Dispatcher 实现
type Gateway interface {
	Join(ctx context.Context, s chat.Session) error
}

// Transport 统一的传输层接口
// 负责特定协议(TCP/WebSocket)的网络通信实现
type Transport interface {
	Name() string
	Start(ctx context.Context, addr string, gateway Gateway, opt Options) error
}

// exitReason 读协程退出原因，用于指标标签
func exitReason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrConnectionClosed):
		return "closed"
	case errors.Is(err, protocol.ErrInvalidFrame):
		return "invalid_frame"
	case errors.Is(err, protocol.ErrFrameTooLarge):
		return "too_large"
	case errors.Is(err, chat.ErrChannelUnavailable):
		return "dispatcher_gone"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "shutdown"
	default:
		return "io"
	}
}

func recordExit(err error) error {
	observe.IncReaderExit(exitReason(err))
	return err
}
