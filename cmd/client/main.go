package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hongjun500/tcp-chat/internal/client"
	"github.com/hongjun500/tcp-chat/pkg/logger"
)

func prompt(in *bufio.Reader, text string) (string, error) {
	fmt.Print(text)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func main() {
	retries := flag.Uint64("retries", 3, "dial retries before giving up")
	flag.Parse()

	// 交互式终端只输出告警以上的日志
	if err := logger.Configure("warn", "console"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdin := bufio.NewReader(os.Stdin)
	host, err := prompt(stdin, "Enter TCP Chat Server Host: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read host: %v\n", err)
		os.Exit(1)
	}

	conn, err := client.Dial(ctx, host, *retries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to %s: %v\n", host, err)
		os.Exit(1)
	}
	defer conn.Close()
	fmt.Printf("Successfully connected to the server(%s)\n", conn.RemoteAddr())

	name, err := prompt(stdin, "Enter your name: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read name: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Write a Message")

	if err := client.New(conn, os.Stdout).Run(ctx, name, stdin); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Println("bye bye!")
}
