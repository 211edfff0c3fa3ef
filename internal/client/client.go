package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hongjun500/tcp-chat/internal/protocol"
	"github.com/hongjun500/tcp-chat/pkg/logger"
)

// QuitCommand 输入该行即结束发送循环，不会发送给服务端
const QuitCommand = ":quit"

const defaultPollInterval = 100 * time.Millisecond

// Dial 连接服务端，失败时按指数退避重试 retries 次
func Dial(ctx context.Context, addr string, retries uint64) (net.Conn, error) {
	var conn net.Conn
	op := func() error {
		var d net.Dialer
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
	notify := func(err error, wait time.Duration) {
		logger.S().Warnw("dial_retry", "addr", addr, "err", err, "wait", wait)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return conn, nil
}

// Client 交互式客户端：一个协程收消息并打印，一个协程读输入并发送
type Client struct {
	conn         net.Conn
	out          io.Writer
	PollInterval time.Duration
}

func New(conn net.Conn, out io.Writer) *Client {
	return &Client{conn: conn, out: out, PollInterval: defaultPollInterval}
}

// Run 先发送 REG_NAME，再把 input 的每一行作为 CHAT_MESSAGE 发送。
// 输入 ":quit" 或输入结束时返回 nil；与服务端的连接断开时返回对应错误。
func (c *Client) Run(ctx context.Context, name string, input io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recvErr := make(chan error, 1)
	go func() { recvErr <- c.receive(ctx) }()

	sendErr := make(chan error, 1)
	go func() { sendErr <- c.send(name, input) }()

	select {
	case err := <-sendErr:
		cancel()
		<-recvErr
		return err
	case err := <-recvErr:
		return err
	}
}

func (c *Client) send(name string, input io.Reader) error {
	reg := protocol.NewMessage(protocol.RegName, strings.TrimRight(name, " \t\r\n"))
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if err := protocol.WriteMessage(c.conn, reg); err != nil {
		return fmt.Errorf("send name: %w", err)
	}

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		content := strings.TrimSpace(scanner.Text())
		if content == QuitCommand {
			return nil
		}
		// 空行会编码成只有头部的非法帧，直接跳过
		if content == "" {
			continue
		}
		if err := protocol.WriteMessage(c.conn, protocol.NewMessage(protocol.ChatMessage, content)); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return scanner.Err()
}

func (c *Client) receive(ctx context.Context) error {
	interval := c.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	dec := protocol.NewDecoder(c.conn, 0)
	for {
		if ctx.Err() != nil {
			return nil
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(interval))
		msg, err := dec.Decode()
		switch {
		case err == nil:
			if msg.Type == protocol.ChatMessage {
				fmt.Fprintln(c.out, msg.Body)
			}
		case protocol.IsTransient(err):
		default:
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(c.out, "connection with server was severed, reason: %v\n", err)
			return err
		}
	}
}
