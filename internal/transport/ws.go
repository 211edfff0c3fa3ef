package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hongjun500/tcp-chat/internal/chat"
	"github.com/hongjun500/tcp-chat/internal/protocol"
	"github.com/hongjun500/tcp-chat/pkg/logger"
)

const (
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

// wsSession implements chat.Session for WebSocket connections.
// Every binary message carries exactly one frame in the TCP wire format.
type wsSession struct {
	id        string
	addr      string
	conn      *websocket.Conn
	opt       Options
	closeOnce sync.Once
	closeChan chan struct{}
}

// WebSocketServer implements Transport using WebSocket connections
type WebSocketServer struct {
	Path string // WebSocket endpoint path, defaults to "/ws"
}

func (w *wsSession) ID() string   { return w.id }
func (w *wsSession) Addr() string { return w.addr }

func (w *wsSession) WriteFrame(frame []byte) error {
	if w.opt.WriteTimeout > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.opt.WriteTimeout))
	}
	return w.conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (w *wsSession) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.conn.Close()
		close(w.closeChan)
	})
	return err
}

// Serve reads one frame per binary message. Reads block until a message, a
// pong deadline or ctx cancellation; there is no transient state because
// websocket messages always arrive whole.
func (w *wsSession) Serve(ctx context.Context, sink chat.Sink) error {
	defer w.Close()
	go func() {
		select {
		case <-ctx.Done():
			_ = w.Close()
		case <-w.closeChan:
		}
	}()
	_ = w.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go w.keepalive()

	for {
		mt, data, err := w.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return recordExit(ctx.Err())
			}
			return recordExit(classifyWSError(err))
		}
		if mt != websocket.BinaryMessage {
			return recordExit(fmt.Errorf("%w: websocket message type %d", protocol.ErrInvalidFrame, mt))
		}
		msg, err := protocol.DecodeFrame(data)
		if err != nil {
			return recordExit(err)
		}
		if err := sink.Deliver(ctx, chat.Inbound{Addr: w.addr, Message: msg}); err != nil {
			return recordExit(err)
		}
	}
}

func (w *wsSession) keepalive() {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = w.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		case <-w.closeChan:
			return
		}
	}
}

func classifyWSError(err error) error {
	var ce *websocket.CloseError
	if errors.As(err, &ce) || errors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("%w: %w", protocol.ErrConnectionClosed, err)
	}
	if errors.Is(err, websocket.ErrReadLimit) {
		return fmt.Errorf("%w: %w", protocol.ErrFrameTooLarge, err)
	}
	return fmt.Errorf("%w: %w", protocol.ErrIO, err)
}

func (ws *WebSocketServer) Name() string {
	return WebSocket
}

// Handler returns the upgrade handler; sessions are joined to gateway.
func (ws *WebSocketServer) Handler(ctx context.Context, gateway Gateway, opt Options) http.Handler {
	opt = opt.withDefaults()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	path := ws.Path
	if path == "" {
		path = "/ws"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.S().Warnw("ws_upgrade_error", "remote", r.RemoteAddr, "err", err)
			return
		}
		conn.SetReadLimit(int64(protocol.PrefixSize + opt.MaxFrameSize))
		sess := &wsSession{
			id:        uuid.NewString(),
			addr:      conn.RemoteAddr().String(),
			conn:      conn,
			opt:       opt,
			closeChan: make(chan struct{}),
		}
		if err := gateway.Join(ctx, sess); err != nil {
			logger.S().Warnw("ws_join_error", "addr", sess.addr, "err", err)
			_ = sess.Close()
		}
	})
	return mux
}

func (ws *WebSocketServer) Start(ctx context.Context, addr string, gateway Gateway, opt Options) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           ws.Handler(ctx, gateway, opt),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.S().Infow("websocket_listen", "addr", addr, "path", ws.Path)

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
