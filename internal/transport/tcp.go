package transport

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/hongjun500/tcp-chat/internal/chat"
	"github.com/hongjun500/tcp-chat/internal/protocol"
	"github.com/hongjun500/tcp-chat/pkg/logger"
)

// tcpSession implements chat.Session over a single net.Conn.
// Serve is the only reader; WriteFrame is only called from the dispatcher.
type tcpSession struct {
	id   string
	addr string
	conn net.Conn
	opt  Options
}

func newTCPSession(conn net.Conn, opt Options) *tcpSession {
	return &tcpSession{
		id:   uuid.NewString(),
		addr: conn.RemoteAddr().String(),
		conn: conn,
		opt:  opt.withDefaults(),
	}
}

func (s *tcpSession) ID() string   { return s.id }
func (s *tcpSession) Addr() string { return s.addr }
func (s *tcpSession) Close() error { return s.conn.Close() }

// WriteFrame writes one whole frame. Missing the write deadline counts as a
// failed write.
func (s *tcpSession) WriteFrame(frame []byte) error {
	if s.opt.WriteTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.opt.WriteTimeout)); err != nil {
			return err
		}
	}
	_, err := s.conn.Write(frame)
	return err
}

// Serve is the connection reader loop. Each attempt reads until the frame is
// complete or the poll interval elapses; a timeout is transient. Any fatal
// error ends the loop and closes the connection, which the dispatcher notices
// on its next write.
func (s *tcpSession) Serve(ctx context.Context, sink chat.Sink) error {
	defer s.conn.Close()
	dec := protocol.NewDecoder(s.conn, s.opt.MaxFrameSize)
	for {
		if err := ctx.Err(); err != nil {
			return recordExit(err)
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.opt.PollInterval))
		msg, err := dec.Decode()
		switch {
		case err == nil:
			logger.S().Debugw("frame_decoded", "addr", s.addr, "session", s.id, "msg", msg.String())
			if err := sink.Deliver(ctx, chat.Inbound{Addr: s.addr, Message: msg}); err != nil {
				return recordExit(err)
			}
		case protocol.IsTransient(err):
		default:
			return recordExit(err)
		}
	}
}
