package transport

import (
	"context"
	"errors"
	"net"

	"github.com/hongjun500/tcp-chat/internal/chat"
	"github.com/hongjun500/tcp-chat/pkg/logger"
)

// TCPServer implements Transport using 8-byte length-prefixed frames
type TCPServer struct{}

func (s *TCPServer) Name() string { return Tcp }

func (s *TCPServer) Start(ctx context.Context, addr string, gateway Gateway, opt Options) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	logger.S().Infow("tcp_listen", "addr", ln.Addr().String())
	return s.Serve(ctx, ln, gateway, opt)
}

// Serve accepts connections from ln and hands each one to the gateway until
// ctx is cancelled or the gateway stops.
func (s *TCPServer) Serve(ctx context.Context, ln net.Listener, gateway Gateway, opt Options) error {
	go func() { <-ctx.Done(); _ = ln.Close() }()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			logger.S().Warnw("tcp_accept_error", "err", err)
			continue
		}
		sess := newTCPSession(conn, opt)
		if err := gateway.Join(ctx, sess); err != nil {
			_ = conn.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, chat.ErrChannelUnavailable) {
				_ = ln.Close()
				return err
			}
			logger.S().Warnw("tcp_join_error", "addr", sess.Addr(), "err", err)
		}
	}
}
