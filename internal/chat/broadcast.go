package chat

import (
	"github.com/hongjun500/tcp-chat/internal/observe"
	"github.com/hongjun500/tcp-chat/pkg/logger"
)

// Broadcast 向 live 中每个连接同步写入一次完整帧。
// 写失败（包括写超时）的连接会被关闭并从返回的集合中剔除，之后不再重试。
// 返回值保持原有顺序，调用方应以它替换原集合。
func Broadcast(live []Peer, frame []byte) []Peer {
	alive := make([]Peer, 0, len(live))
	for _, p := range live {
		if err := p.WriteFrame(frame); err != nil {
			logger.S().Infow("client_disconnected", "addr", p.Addr(), "err", err)
			_ = p.Close()
			observe.IncPruned()
			continue
		}
		observe.IncBroadcastFrame()
		alive = append(alive, p)
	}
	return alive
}
