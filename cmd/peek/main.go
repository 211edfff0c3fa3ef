package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/hongjun500/tcp-chat/internal/protocol"
)

// peek 以只读方式接入聊天服务，打印收到的每一帧
func main() {
	var (
		addr = flag.String("addr", "localhost:3000", "server address")
		max  = flag.Int("max", protocol.DefaultMaxFrameSize, "max frame size in bytes")
		name = flag.String("name", "", "register under this name before listening")
	)
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if *name != "" {
		if err := protocol.WriteMessage(conn, protocol.NewMessage(protocol.RegName, *name)); err != nil {
			fmt.Fprintf(os.Stderr, "register error: %v\n", err)
			os.Exit(1)
		}
	}

	dec := protocol.NewDecoder(conn, *max)
	for {
		msg, err := dec.Decode()
		if err != nil {
			if protocol.IsTransient(err) {
				continue
			}
			fmt.Fprintf(os.Stderr, "read frame error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Frame:\n")
		fmt.Printf("  length: %d\n", msg.Length)
		fmt.Printf("  type:   %s\n", msg.Type)
		fmt.Printf("  body:   %s\n", msg.Body)
	}
}
