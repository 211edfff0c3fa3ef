package chat

import (
	"context"
	"errors"

	"github.com/hongjun500/tcp-chat/internal/protocol"
)

// ErrChannelUnavailable Dispatcher 已退出，读协程无法再投递消息
var ErrChannelUnavailable = errors.New("dispatcher channel unavailable")

// Peer 连接的写端，只在 Dispatcher 协程中被调用
type Peer interface {
	Addr() string
	WriteFrame(frame []byte) error
	Close() error
}

// Session 一条已接受的连接。
// 写端（Peer）交给 Dispatcher 持有，读端由 Serve 在独立协程中驱动，
// 两端不会被同一协程以外的地方并发修改。
type Session interface {
	Peer
	ID() string
	Serve(ctx context.Context, sink Sink) error
}

// Inbound 读协程解出的一条消息，附带来源地址
type Inbound struct {
	Addr    string
	Message protocol.Message
}

// Sink 读协程向 Dispatcher 投递消息的入口
type Sink interface {
	Deliver(ctx context.Context, in Inbound) error
}
