package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/hongjun500/tcp-chat/internal/observe"
	"github.com/hongjun500/tcp-chat/internal/protocol"
	"github.com/hongjun500/tcp-chat/pkg/logger"
)

const defaultInboxSize = 256

// Dispatcher 单协程控制循环。
// 昵称表与 live 集合只在 Run 所在协程中读写，读协程只通过 inbox 投递不可变消息，
// 所以连接写端与昵称表都不需要锁。
type Dispatcher struct {
	joins chan Session
	inbox chan Inbound
	done  chan struct{}

	registry *Registry
	live     []Peer
	readers  sync.WaitGroup
}

// NewDispatcher inboxSize <= 0 时使用默认值 256
func NewDispatcher(inboxSize int) *Dispatcher {
	if inboxSize <= 0 {
		inboxSize = defaultInboxSize
	}
	return &Dispatcher{
		joins:    make(chan Session),
		inbox:    make(chan Inbound, inboxSize),
		done:     make(chan struct{}),
		registry: NewRegistry(),
	}
}

// Done Run 退出后关闭
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

// Join 把新接受的连接交给 Dispatcher
func (d *Dispatcher) Join(ctx context.Context, s Session) error {
	select {
	case d.joins <- s:
		return nil
	case <-d.done:
		return ErrChannelUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deliver 实现 Sink，供读协程投递消息
func (d *Dispatcher) Deliver(ctx context.Context, in Inbound) error {
	// inbox 有缓冲，先确认 Dispatcher 仍在运行
	select {
	case <-d.done:
		return ErrChannelUnavailable
	default:
	}
	select {
	case d.inbox <- in:
		return nil
	case <-d.done:
		return ErrChannelUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run 每轮处理一个事件（新连接或一条消息），直到 ctx 取消。只能调用一次。
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)
	logger.S().Infow("dispatcher_started")
	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return ctx.Err()
		case s := <-d.joins:
			d.accept(ctx, s)
		case in := <-d.inbox:
			d.handle(in)
		}
	}
}

func (d *Dispatcher) accept(ctx context.Context, s Session) {
	addr := s.Addr()
	logger.S().Infow("client_connected", "addr", addr, "session", s.ID())
	d.registry.Add(addr)
	d.live = append(d.live, s)
	observe.SetRegistered(d.registry.Len())
	observe.SetOnline(len(d.live))

	d.readers.Add(1)
	go func() {
		defer d.readers.Done()
		err := s.Serve(ctx, d)
		logger.S().Infow("closing_connection", "addr", addr, "session", s.ID(), "reason", err)
	}()
}

func (d *Dispatcher) handle(in Inbound) {
	msg := in.Message
	logger.S().Infow("message_received", "addr", in.Addr, "type", msg.Type, "body", msg.Body)
	observe.IncMessage(msg.Type.String())

	// 出站消息按栈处理：后压入的先广播
	var outbound []protocol.Message
	switch msg.Type {
	case protocol.ChatMessage:
		name := d.registry.Name(in.Addr)
		logger.S().Infow("chat", "name", name, "body", msg.Body)
		outbound = append(outbound, protocol.NewMessage(protocol.ChatMessage, fmt.Sprintf("[%s]: %s", name, msg.Body)))
	case protocol.RegName:
		name := msg.Body
		d.registry.SetName(in.Addr, name)
		observe.SetRegistered(d.registry.Len())
		outbound = append(outbound, protocol.NewMessage(protocol.ChatMessage, fmt.Sprintf("[Server]: Hello %s!", name)))
		outbound = append(outbound, msg)
	default:
		logger.S().Warnw("unknown_message_type", "addr", in.Addr, "type", msg.Type)
		return
	}

	for len(outbound) > 0 {
		next := outbound[len(outbound)-1]
		outbound = outbound[:len(outbound)-1]
		d.live = Broadcast(d.live, protocol.Encode(next))
	}
	observe.SetOnline(len(d.live))
}

func (d *Dispatcher) shutdown() {
	for _, p := range d.live {
		_ = p.Close()
	}
	d.live = nil
	observe.SetOnline(0)
	d.readers.Wait()
	logger.S().Infow("dispatcher_stopped")
}
