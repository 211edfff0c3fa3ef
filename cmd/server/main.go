package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/hongjun500/tcp-chat/internal/chat"
	"github.com/hongjun500/tcp-chat/internal/config"
	"github.com/hongjun500/tcp-chat/internal/observe"
	"github.com/hongjun500/tcp-chat/internal/transport"
	"github.com/hongjun500/tcp-chat/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.S().Fatalw("load_config", "err", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogEncoding); err != nil {
		logger.S().Fatalw("configure_logger", "err", err)
	}
	defer func() { _ = logger.L().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt := transport.Options{
		PollInterval: cfg.PollInterval,
		WriteTimeout: cfg.WriteTimeout,
		MaxFrameSize: cfg.MaxFrameSize,
	}
	dispatcher := chat.NewDispatcher(cfg.InboxSize)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(ctx) })

	tcp := &transport.TCPServer{}
	g.Go(func() error { return tcp.Start(ctx, cfg.TCPAddr, dispatcher, opt) })

	if cfg.WSAddr != "" {
		ws := &transport.WebSocketServer{Path: "/ws"}
		g.Go(func() error { return ws.Start(ctx, cfg.WSAddr, dispatcher, opt) })
	}
	if cfg.HTTPAddr != "" {
		g.Go(func() error {
			logger.S().Infow("http_listen", "addr", cfg.HTTPAddr)
			return observe.StartHTTP(ctx, cfg.HTTPAddr)
		})
	}

	logger.S().Infow("server_started", "tcp", cfg.TCPAddr, "ws", cfg.WSAddr, "http", cfg.HTTPAddr)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.S().Errorw("server_exit", "err", err)
		_ = logger.L().Sync()
		os.Exit(1)
	}
	logger.S().Infow("server_stopped")
}
